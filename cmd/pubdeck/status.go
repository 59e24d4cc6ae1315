package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/pubdeck/pubdeck/pkg/pubcli"
)

// status renders the daemon's startup readiness as a progress bar, polling
// until every required dependency has loaded.
func status(ctx *cli.Context) error {
	client, err := pubcli.NewClient()
	if err != nil {
		return err
	}
	defer client.Disconnect()

	resp, err := client.Ready()
	if err != nil {
		return err
	}
	state := resp.State
	if !state.GlobalLoading {
		fmt.Println("Daemon is ready.")
		reportFailures(state.Failed)
		return nil
	}

	p := mpb.New(mpb.WithWidth(64), mpb.WithRefreshRate(120*time.Millisecond))
	barStyle := mpb.BarStyle().Lbound("╢").Filler("█").Tip("█").Padding("░").Rbound("╟")
	bar := p.New(100,
		barStyle,
		mpb.PrependDecorators(
			decor.Name("Loading", decor.WC{W: 8, C: decor.DindentRight}),
			decor.OnComplete(decor.Percentage(decor.WC{W: 5}), "Ready"),
		),
		mpb.AppendDecorators(
			decor.Any(func(decor.Statistics) string {
				s := string(state.CurrentPhase)
				if state.HasEstimate {
					s += " eta " + state.EstimatedTimeLeft.Round(time.Second).String()
				}
				return s
			}),
		),
	)
	bar.EnableTriggerComplete()

	for state.GlobalLoading {
		bar.SetCurrent(int64(state.Progress))
		time.Sleep(300 * time.Millisecond)
		resp, err = client.Ready()
		if err != nil {
			bar.Abort(false)
			p.Wait()
			return err
		}
		state = resp.State
	}
	bar.SetCurrent(100)
	p.Wait()
	reportFailures(state.Failed)
	return nil
}

func reportFailures(failed []string) {
	for _, id := range failed {
		fmt.Printf("warning: dependency %s failed to load\n", id)
	}
}
