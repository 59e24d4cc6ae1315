package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

const VERSION = "v0.1.0"

const DESCRIPTION = `
Pubdeck is a scheduling tool for social publications. Draft a post
once, target several platforms, schedule it for later or publish it
right away, and follow its progress live from the terminal.
`

func main() {
	app := cli.App{
		Name:        "Pubdeck",
		HelpName:    "pubdeck",
		Usage:       "a social publication scheduler",
		Version:     VERSION,
		UsageText:   "pubdeck <command> [arguments...]",
		Description: DESCRIPTION,
		Commands: []cli.Command{
			{
				Name:    "create",
				Aliases: []string{"c"},
				Usage:   "create a draft or scheduled publication",
				Action:  create,
				Flags:   createFlags,
			},
			{
				Name:    "list",
				Aliases: []string{"l"},
				Usage:   "display publications",
				Action:  list,
				Flags:   listFlags,
			},
			{
				Name:   "calendar",
				Usage:  "display calendar events for a date range",
				Action: calendar,
				Flags:  calendarFlags,
			},
			{
				Name:   "schedule",
				Usage:  "schedule a publication for a future time",
				Action: schedule,
				Flags:  scheduleFlags,
			},
			{
				Name:   "reschedule",
				Usage:  "move a scheduled publication to a new time",
				Action: reschedule,
				Flags:  rescheduleFlags,
			},
			{
				Name:   "cancel",
				Usage:  "cancel a publication",
				Action: cancel,
			},
			{
				Name:    "publish",
				Aliases: []string{"p"},
				Usage:   "publish immediately and follow progress",
				Action:  publishNow,
			},
			{
				Name:   "delete",
				Usage:  "delete a publication",
				Action: deletePublication,
			},
			{
				Name:    "upload",
				Aliases: []string{"u"},
				Usage:   "upload a media asset and wait for processing",
				Action:  upload,
				Flags:   uploadFlags,
			},
			{
				Name:   "connect",
				Usage:  "connect a platform account",
				Action: connectAccount,
				Flags:  connectFlags,
			},
			{
				Name:   "accounts",
				Usage:  "list connected platform accounts",
				Action: accounts,
			},
			{
				Name:   "status",
				Usage:  "show daemon readiness",
				Action: status,
			},
			{
				Name:    "version",
				Aliases: []string{"v"},
				Usage:   "prints installed version of pubdeck",
				Action:  getVersion,
			},
		},
		HideVersion: true,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Printf("pubdeck: %s\n", err.Error())
		os.Exit(1)
	}
}
