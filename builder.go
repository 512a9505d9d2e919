package goGuard

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/MrEthical07/goGuard/normalize"
	"github.com/MrEthical07/goGuard/permission"
	"github.com/MrEthical07/goGuard/session"
)

// Builder assembles an Engine.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config  Config
	backend session.Backend

	logger    *slog.Logger
	auditSink AuditSink
	clock     func() time.Time

	built bool
}

// New returns a Builder holding DefaultConfig.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithBackend sets the session storage backend. Required.
func (b *Builder) WithBackend(backend session.Backend) *Builder {
	b.backend = backend
	return b
}

// WithLogger sets the structured logger. Without one the Engine logs nothing.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithAuditSink sets the audit destination and enables auditing.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = sink != nil
	return b
}

// WithMetricsEnabled toggles in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the hydrate latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// WithClock overrides time.Now, for token expiry checks and audit timestamps.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.clock = now
	return b
}

// Build validates the configuration and returns an Engine in the loading state. Call
// Engine.Hydrate before serving guarded routes.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if b.backend == nil {
		return nil, errors.New("session backend required")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// -------- CATALOG --------
	catalog, err := buildCatalog(cfg.Roles)
	if err != nil {
		return nil, err
	}

	// -------- NORMALIZER --------
	normalizer, err := normalize.New(normalize.Config{
		Catalog:           catalog,
		AllowDemoFallback: cfg.Normalize.AllowDemoFallback,
		DemoPermissions:   cfg.Roles.DemoPermissions,
	})
	if err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	clock := b.clock
	if clock == nil {
		clock = time.Now
	}

	engine := &Engine{
		config:     cfg,
		catalog:    catalog,
		store:      session.NewStore(b.backend, cfg.Session.KeyPrefix),
		normalizer: normalizer,
		logger:     logger.With("component", "goguard"),
		now:        clock,
		loading:    true,
	}
	engine.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)

	b.built = true

	return engine, nil
}

func buildCatalog(rc RolesConfig) (*permission.Catalog, error) {
	catalog, err := permission.NewCatalog(rc.Roles...)
	if err != nil {
		return nil, err
	}
	for _, p := range rc.Permissions {
		if err := catalog.RegisterPermission(p); err != nil {
			return nil, err
		}
	}
	for alias, target := range rc.Aliases {
		if err := catalog.RegisterAlias(alias, target); err != nil {
			return nil, err
		}
	}
	if rc.DefaultRole != "" {
		if err := catalog.SetDefaultRole(rc.DefaultRole); err != nil {
			return nil, err
		}
	}
	catalog.Freeze()
	return catalog, nil
}
