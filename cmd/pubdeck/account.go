package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli"

	"github.com/pubdeck/pubdeck/common"
	"github.com/pubdeck/pubdeck/pkg/pubcli"
	"github.com/pubdeck/pubdeck/pkg/publib"
)

var connectFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "platform, p",
		Usage: "platform name (facebook, instagram)",
	},
	cli.StringFlag{
		Name:  "account, a",
		Usage: "platform account id",
	},
	cli.StringFlag{
		Name:  "user, u",
		Usage: "owner user id",
	},
	cli.StringFlag{
		Name:   "token, t",
		Usage:  "platform access token",
		EnvVar: "PUBDECK_ACCESS_TOKEN",
	},
	cli.StringFlag{
		Name:  "expires",
		Usage: "token expiry (" + timeLayout + ", local)",
	},
}

func connectAccount(ctx *cli.Context) error {
	params := &common.ConnectParams{
		Platform:    publib.Platform(ctx.String("platform")),
		AccountId:   ctx.String("account"),
		UserId:      ctx.String("user"),
		AccessToken: ctx.String("token"),
	}
	if v := ctx.String("expires"); v != "" {
		t, err := time.ParseInLocation(timeLayout, v, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --expires: %w", err)
		}
		params.ExpiresAt = t
	}
	if params.AccessToken == "" {
		return errors.New("--token is required")
	}

	client, err := pubcli.NewClient()
	if err != nil {
		return err
	}
	defer client.Disconnect()

	info, err := client.ConnectAccount(params)
	if err != nil {
		return err
	}
	fmt.Printf("Connected %s account %s\n", info.Platform, info.AccountId)
	return nil
}

func accounts(ctx *cli.Context) error {
	client, err := pubcli.NewClient()
	if err != nil {
		return err
	}
	defer client.Disconnect()

	resp, err := client.ListAccounts()
	if err != nil {
		return err
	}
	if len(resp.Accounts) == 0 {
		fmt.Println("No accounts connected.")
		return nil
	}
	for _, a := range resp.Accounts {
		line := fmt.Sprintf("%-10s  %s", a.Platform, a.AccountId)
		if a.UserId != "" {
			line += "  (" + a.UserId + ")"
		}
		if !a.ExpiresAt.IsZero() {
			line += "  expires " + a.ExpiresAt.Local().Format(timeLayout)
		}
		fmt.Println(line)
	}
	return nil
}
