// Command guardctl signs in to a REST backend and keeps the session on disk (or in
// Redis) for later commands.
//
// Usage:
//
//	guardctl login --email sam@shop.io --password secret
//	guardctl whoami
//	guardctl can PRODUCT_CREATE ORDER_VIEW
//	guardctl can --role ADMIN
//	guardctl serve
//	guardctl logout
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "guardctl:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "guardctl",
		Usage: "manage a client-side goGuard session",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML config file",
				EnvVars: []string{"GOGUARD_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "dotenv file loaded before the config",
			},
		},
		Commands: []*cli.Command{
			loginCommand(),
			registerCommand(),
			logoutCommand(),
			whoamiCommand(),
			canCommand(),
			serveCommand(),
		},
	}
}
