package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli"

	"github.com/pubdeck/pubdeck/common"
	"github.com/pubdeck/pubdeck/pkg/pubcli"
	"github.com/pubdeck/pubdeck/pkg/publib"
)

const timeLayout = "2006-01-02 15:04"

var createFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "user, u",
		Usage: "owner user id",
	},
	cli.StringFlag{
		Name:  "text, t",
		Usage: "publication text",
	},
	cli.StringFlag{
		Name:  "platforms, p",
		Usage: "comma-separated target platforms (facebook,instagram)",
	},
	cli.StringFlag{
		Name:  "tags",
		Usage: "comma-separated hashtags",
	},
	cli.StringFlag{
		Name:  "at",
		Usage: "schedule time (" + timeLayout + ", local)",
	},
	cli.StringFlag{
		Name:  "cron",
		Usage: "cron expression for recurring publishing",
	},
	cli.StringSliceFlag{
		Name:  "media, m",
		Usage: "media files to upload and attach (repeatable)",
	},
}

func parsePlatforms(s string) ([]publib.Platform, error) {
	if s == "" {
		return nil, errors.New("at least one platform is required")
	}
	var out []publib.Platform
	for _, part := range strings.Split(s, ",") {
		p := publib.Platform(strings.TrimSpace(part))
		if !p.Valid() {
			return nil, fmt.Errorf("unknown platform: %s", p)
		}
		out = append(out, p)
	}
	return out, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func create(ctx *cli.Context) error {
	platforms, err := parsePlatforms(ctx.String("platforms"))
	if err != nil {
		return err
	}
	userId := ctx.String("user")
	if userId == "" {
		return errors.New("--user is required")
	}

	client, err := pubcli.NewClient()
	if err != nil {
		return err
	}
	defer client.Disconnect()

	content := publib.Content{
		Text:     ctx.String("text"),
		Hashtags: splitList(ctx.String("tags")),
	}

	// Upload media first so the publication references ready assets.
	for _, path := range ctx.StringSlice("media") {
		resp, err := client.UploadAsset(userId, path)
		if err != nil {
			return err
		}
		url, err := resp.Asset.PreferredURL()
		if err != nil {
			return err
		}
		content.Media = append(content.Media, publib.MediaItem{
			AssetID: resp.Asset.Id,
			URL:     url,
			Type:    resp.Asset.Type,
		})
		fmt.Printf("Uploaded %s as asset %s\n", path, resp.Asset.Id)
	}

	opts := &pubcli.CreateOpts{CronExpr: ctx.String("cron")}
	if at := ctx.String("at"); at != "" {
		t, err := time.ParseInLocation(timeLayout, at, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --at: %w", err)
		}
		opts.ScheduledAt = t
	}

	resp, err := client.Create(userId, content, platforms, opts)
	if err != nil {
		return err
	}
	p := resp.Publication
	fmt.Printf("Created publication %s (%s)\n", p.Id, p.Status)
	if !p.ScheduledAt.IsZero() {
		fmt.Printf("Scheduled for %s\n", p.ScheduledAt.Local().Format(timeLayout))
	}
	return nil
}

var listFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "user, u",
		Usage: "filter by owner user id",
	},
	cli.StringFlag{
		Name:  "status, s",
		Usage: "comma-separated statuses to show",
	},
	cli.StringFlag{
		Name:  "platform, p",
		Usage: "filter by target platform",
	},
}

func list(ctx *cli.Context) error {
	client, err := pubcli.NewClient()
	if err != nil {
		return err
	}
	defer client.Disconnect()

	opts := &pubcli.ListOpts{
		UserId:   ctx.String("user"),
		Platform: publib.Platform(ctx.String("platform")),
	}
	for _, s := range splitList(ctx.String("status")) {
		opts.Statuses = append(opts.Statuses, publib.Status(s))
	}

	resp, err := client.List(opts)
	if err != nil {
		return err
	}
	if len(resp.Publications) == 0 {
		fmt.Println("No publications found.")
		return nil
	}
	for _, p := range resp.Publications {
		line := fmt.Sprintf("%s  %-10s  %s", p.Id, p.Status, firstLine(p.Content.Text))
		if !p.ScheduledAt.IsZero() {
			line += "  @ " + p.ScheduledAt.Local().Format(timeLayout)
		}
		fmt.Println(line)
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 48 {
		s = s[:48] + "..."
	}
	return s
}

var calendarFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "from",
		Usage: "range start (" + timeLayout + ", local)",
	},
	cli.StringFlag{
		Name:  "to",
		Usage: "range end (" + timeLayout + ", local)",
	},
}

func calendar(ctx *cli.Context) error {
	now := time.Now()
	from := now.AddDate(0, 0, -now.Day()+1).Truncate(24 * time.Hour)
	to := from.AddDate(0, 1, 0)
	if v := ctx.String("from"); v != "" {
		t, err := time.ParseInLocation(timeLayout, v, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --from: %w", err)
		}
		from = t
	}
	if v := ctx.String("to"); v != "" {
		t, err := time.ParseInLocation(timeLayout, v, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --to: %w", err)
		}
		to = t
	}

	client, err := pubcli.NewClient()
	if err != nil {
		return err
	}
	defer client.Disconnect()

	resp, err := client.Events(from, to, nil)
	if err != nil {
		return err
	}
	if len(resp.Events) == 0 {
		fmt.Println("No events in range.")
		return nil
	}
	for _, e := range resp.Events {
		fmt.Printf("%s  %-10s  %s\n", e.Start.Local().Format(timeLayout), e.Publication.Status, e.Title)
	}
	return nil
}

var scheduleFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "at",
		Usage: "schedule time (" + timeLayout + ", local)",
	},
	cli.StringFlag{
		Name:  "cron",
		Usage: "cron expression for recurring publishing",
	},
}

func schedule(ctx *cli.Context) error {
	id := ctx.Args().First()
	if id == "" {
		return errors.New("publication id is required")
	}
	at, err := time.ParseInLocation(timeLayout, ctx.String("at"), time.Local)
	if err != nil {
		return fmt.Errorf("invalid --at: %w", err)
	}

	client, err := pubcli.NewClient()
	if err != nil {
		return err
	}
	defer client.Disconnect()

	resp, err := client.Schedule(id, at, ctx.String("cron"))
	if err != nil {
		return err
	}
	fmt.Printf("Scheduled %s for %s\n", resp.Publication.Id, at.Format(timeLayout))
	return nil
}

var rescheduleFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "at",
		Usage: "new start time (" + timeLayout + ", local)",
	},
}

func reschedule(ctx *cli.Context) error {
	id := ctx.Args().First()
	if id == "" {
		return errors.New("publication id is required")
	}
	at, err := time.ParseInLocation(timeLayout, ctx.String("at"), time.Local)
	if err != nil {
		return fmt.Errorf("invalid --at: %w", err)
	}

	client, err := pubcli.NewClient()
	if err != nil {
		return err
	}
	defer client.Disconnect()

	resp, err := client.Reschedule(id, at)
	if err != nil {
		return err
	}
	fmt.Printf("Moved %s to %s\n", resp.Publication.Id, at.Format(timeLayout))
	return nil
}

func cancel(ctx *cli.Context) error {
	id := ctx.Args().First()
	if id == "" {
		return errors.New("publication id is required")
	}
	client, err := pubcli.NewClient()
	if err != nil {
		return err
	}
	defer client.Disconnect()

	resp, err := client.Cancel(id)
	if err != nil {
		return err
	}
	fmt.Printf("Cancelled %s\n", resp.Publication.Id)
	return nil
}

// publishNow triggers publishing and then listens for status pushes until
// the publication reaches a final state.
func publishNow(ctx *cli.Context) error {
	id := ctx.Args().First()
	if id == "" {
		return errors.New("publication id is required")
	}
	client, err := pubcli.NewClient()
	if err != nil {
		return err
	}

	client.AddHandler(common.UPDATE_STATUS, pubcli.NewStatusHandler("", func(u *common.StatusUpdate) error {
		if u.PublicationId != id {
			return nil
		}
		switch u.NewStatus {
		case publib.StatusPublished:
			fmt.Println("Published.")
			return pubcli.ErrDisconnect
		case publib.StatusFailed:
			if u.Error != "" {
				return fmt.Errorf("publish failed: %s", u.Error)
			}
			return errors.New("publish failed")
		default:
			fmt.Printf("Status: %s\n", u.NewStatus)
			return nil
		}
	}))

	if _, err = client.PublishNow(id); err != nil {
		client.Disconnect()
		return err
	}
	fmt.Printf("Publishing %s...\n", id)
	err = client.Listen()
	if err == pubcli.ErrDisconnect {
		return nil
	}
	return err
}

func deletePublication(ctx *cli.Context) error {
	id := ctx.Args().First()
	if id == "" {
		return errors.New("publication id is required")
	}
	client, err := pubcli.NewClient()
	if err != nil {
		return err
	}
	defer client.Disconnect()

	if _, err := client.Delete(id); err != nil {
		return err
	}
	fmt.Printf("Deleted %s\n", id)
	return nil
}

func getVersion(ctx *cli.Context) error {
	fmt.Println("pubdeck", VERSION)
	client, err := pubcli.NewClient()
	if err != nil {
		// Daemon not running; local version is still useful.
		return nil
	}
	defer client.Disconnect()
	if resp, err := client.Version(); err == nil {
		fmt.Println("pubdeckd", resp.Version)
	}
	return nil
}
