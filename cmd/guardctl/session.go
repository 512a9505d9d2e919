package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/MrEthical07/goGuard/client"
	"github.com/MrEthical07/goGuard/internal/cliconfig"
)

// env is everything a command needs, opened from the global flags.
type env struct {
	cfg    *cliconfig.File
	engine *goGuard.Engine
	client *client.Client
	close  func() error
}

func openEnv(c *cli.Context) (*env, error) {
	cfg, err := cliconfig.Load(c.String("config"), c.String("env-file"))
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger(os.Stderr)

	backend, closeBackend, err := cfg.OpenBackend(c.Context)
	if err != nil {
		return nil, err
	}

	engine, err := goGuard.New().
		WithConfig(cfg.EngineConfig()).
		WithBackend(backend).
		WithLogger(logger).
		WithAuditSink(goGuard.NewSlogSink(logger)).
		WithMetricsEnabled(true).
		Build()
	if err != nil {
		_ = closeBackend()
		return nil, err
	}

	ctx := goGuard.WithSource(c.Context, "cli")
	res := engine.Hydrate(ctx)
	if res.Outcome == goGuard.HydratePurged {
		fmt.Fprintf(os.Stderr, "stored session discarded (%s)\n", res.Reason)
	}

	cc := cfg.ClientConfig()
	cc.Logger = logger
	cc.OnSessionExpired = func(req *http.Request, status int) {
		fctx, cancel := context.WithTimeout(req.Context(), time.Second)
		defer cancel()
		if err := engine.FlushAudit(fctx); err != nil {
			logger.Warn("audit flush failed", "error", err)
		}
		fmt.Fprintf(os.Stderr, "session expired (backend returned %d); sign in again\n", status)
	}
	cl, err := client.New(engine, cc)
	if err != nil {
		engine.Close()
		_ = closeBackend()
		return nil, err
	}

	return &env{
		cfg:    cfg,
		engine: engine,
		client: cl,
		close: func() error {
			engine.Close()
			return closeBackend()
		},
	}, nil
}

// withEnv wraps a command action with openEnv and cleanup.
func withEnv(fn func(c *cli.Context, e *env) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		e, err := openEnv(c)
		if err != nil {
			return err
		}
		defer e.close()
		c.Context = goGuard.WithSource(c.Context, "cli")
		return fn(c, e)
	}
}
