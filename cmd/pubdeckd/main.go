package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"github.com/pubdeck/pubdeck/common"
	"github.com/pubdeck/pubdeck/internal/config"
	"github.com/pubdeck/pubdeck/internal/daemon"
	"github.com/pubdeck/pubdeck/pkg/logger"
)

const VERSION = "v0.1.0"

const DESCRIPTION = `
Pubdeck is a publication scheduling daemon for social platforms.
It stores drafts, schedules them for future publishing, uploads
media assets, and pushes live status updates to connected clients.
`

func runDaemon(cliCtx *cli.Context) error {
	cfg := config.Load()
	if v := cliCtx.String("db"); v != "" {
		cfg.Database.Path = v
	}
	if v := cliCtx.Int("port"); v != 0 {
		cfg.Server.Port = v
	}
	if v := cliCtx.String("rpc-secret"); v != "" {
		cfg.RPC.Secret = v
	}

	if os.Getenv(common.DebugEnv) != "" {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}
	lg := logger.NewStandardLogger(log.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	return daemon.Run(ctx, cfg, lg, VERSION)
}

func main() {
	app := cli.App{
		Name:        "pubdeckd",
		HelpName:    "pubdeckd",
		Usage:       "publication scheduling daemon",
		Version:     VERSION,
		Description: DESCRIPTION,
		Action:      runDaemon,
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "db",
				Usage: "path to the publications database",
			},
			cli.IntFlag{
				Name:  "port",
				Usage: "tcp fallback port for the socket server",
			},
			cli.StringFlag{
				Name:   "rpc-secret",
				Usage:  "bearer secret for the browser JSON-RPC surface",
				EnvVar: "PUBDECK_RPC_SECRET",
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Printf("pubdeckd: %s\n", err.Error())
		os.Exit(1)
	}
}
