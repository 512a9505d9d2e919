package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/MrEthical07/goGuard/client"
	"github.com/MrEthical07/goGuard/guard"
	"github.com/MrEthical07/goGuard/internal/dashboard"
	"github.com/MrEthical07/goGuard/permission"
)

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "sign in and store the session",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Required: true},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, EnvVars: []string{"GOGUARD_PASSWORD"}, Required: true},
		},
		Action: withEnv(func(c *cli.Context, e *env) error {
			res, err := e.client.Login(c.Context, client.Credentials{
				Email:    c.String("email"),
				Password: c.String("password"),
			})
			if err != nil {
				return describe(err)
			}
			printSignedIn(res)
			return nil
		}),
	}
}

func registerCommand() *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "create an account and store the session",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name"},
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Required: true},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, EnvVars: []string{"GOGUARD_PASSWORD"}, Required: true},
			&cli.StringFlag{Name: "role", Usage: "requested role, if the backend accepts one"},
		},
		Action: withEnv(func(c *cli.Context, e *env) error {
			res, err := e.client.Register(c.Context, client.Registration{
				Name:     c.String("name"),
				Email:    c.String("email"),
				Password: c.String("password"),
				Role:     c.String("role"),
			})
			if err != nil {
				return describe(err)
			}
			printSignedIn(res)
			return nil
		}),
	}
}

func printSignedIn(res goGuard.LoginResult) {
	fmt.Printf("signed in as %s (%s)\n", res.Identity.DisplayName, res.Identity.Role)
	if res.Demo {
		fmt.Println("warning: demo identity, the backend did not issue a token")
	}
}

func logoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "sign out and remove the stored session",
		Action: withEnv(func(c *cli.Context, e *env) error {
			if err := e.client.Logout(c.Context); err != nil {
				return err
			}
			fmt.Println("signed out")
			return nil
		}),
	}
}

type whoamiOutput struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Email       string            `json:"email,omitempty"`
	Role        string            `json:"role"`
	Permissions []string          `json:"permissions"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

func whoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "show the stored identity",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "refresh", Usage: "fetch the current profile from the backend first"},
			&cli.BoolFlag{Name: "json"},
		},
		Action: withEnv(func(c *cli.Context, e *env) error {
			var (
				id  goGuard.Identity
				ok  bool
				err error
			)
			if c.Bool("refresh") {
				id, err = e.client.CurrentUser(c.Context)
				if err != nil {
					return describe(err)
				}
				ok = true
			} else {
				id, ok = e.engine.Identity()
			}
			if !ok {
				return cli.Exit("not signed in", 1)
			}

			out := whoamiOutput{
				ID:          id.ID,
				Name:        id.DisplayName,
				Email:       id.Email,
				Role:        string(id.Role),
				Permissions: id.Permissions.Keys(),
				Attributes:  id.Attributes,
			}
			if c.Bool("json") {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			fmt.Printf("id:          %s\nname:        %s\nemail:       %s\nrole:        %s\npermissions: %s\n",
				out.ID, out.Name, out.Email, out.Role, strings.Join(out.Permissions, ", "))
			return nil
		}),
	}
}

func canCommand() *cli.Command {
	return &cli.Command{
		Name:      "can",
		Usage:     "check permissions of the stored session; exits 2 when denied",
		ArgsUsage: "PERMISSION...",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "any", Usage: "require any one permission instead of all"},
			&cli.StringSliceFlag{Name: "role", Usage: "accepted role (repeatable)"},
		},
		Action: withEnv(func(c *cli.Context, e *env) error {
			req := requirementFrom(c.StringSlice("role"), c.Args().Slice(), c.Bool("any"))
			d := guard.Decide(e.engine, req)
			fmt.Println(d.State)
			if d.State != guard.Authorized {
				return cli.Exit("", 2)
			}
			return nil
		}),
	}
}

func requirementFrom(roles, perms []string, matchAny bool) guard.Requirement {
	var req guard.Requirement
	for _, r := range roles {
		req.AnyRoles = append(req.AnyRoles, permission.CanonicalRole(r))
	}
	if matchAny {
		req.AnyPermissions = perms
	} else {
		req.AllPermissions = perms
	}
	return req
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the guarded dashboard",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "listen", Usage: "address, overrides the config"},
		},
		Action: withEnv(func(c *cli.Context, e *env) error {
			addr := e.cfg.Dashboard.Listen
			if c.IsSet("listen") {
				addr = c.String("listen")
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           dashboard.New(e.client, dashboard.PresetPages(e.cfg.Preset), e.cfg.Logger(os.Stderr)),
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				fmt.Printf("dashboard on http://%s\n", addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-c.Context.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		}),
	}
}

// describe turns client errors into short CLI messages.
func describe(err error) error {
	var rej *client.RejectedError
	switch {
	case errors.As(err, &rej):
		return cli.Exit(fmt.Sprintf("%s (HTTP %d)", rej.Message, rej.Status), 1)
	case errors.Is(err, goGuard.ErrNoIdentity):
		return cli.Exit("the backend response did not contain a session token", 1)
	case errors.Is(err, goGuard.ErrNotAuthenticated):
		return cli.Exit("not signed in", 1)
	case errors.Is(err, goGuard.ErrSessionPersist):
		return cli.Exit("signed in, but the session could not be saved: "+err.Error(), 1)
	}
	return err
}
