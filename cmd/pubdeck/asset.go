package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli"

	"github.com/pubdeck/pubdeck/pkg/pubcli"
)

var uploadFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "user, u",
		Usage: "owner user id",
	},
}

func upload(ctx *cli.Context) error {
	path := ctx.Args().First()
	if path == "" {
		return errors.New("file path is required")
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

	fmt.Printf("Uploading %s...\n", path)
	resp, err := client.UploadAsset(userId, path)
	if err != nil {
		return err
	}
	a := resp.Asset
	url, err := a.PreferredURL()
	if err != nil {
		return err
	}
	fmt.Printf("Asset %s ready (%s)\n%s\n", a.Id, a.Type, url)
	return nil
}
