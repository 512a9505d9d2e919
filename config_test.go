package goGuard

import (
	"testing"
	"time"

	"github.com/MrEthical07/goGuard/permission"
	"github.com/MrEthical07/goGuard/session"
)

func TestDefaultConfigNeedsRoles(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected default config without roles to fail validation")
	}
}

func TestPresetsValidateAndBuild(t *testing.T) {
	for _, name := range []string{"admission", "college", "grocery", "library", "budget"} {
		t.Run(name, func(t *testing.T) {
			cfg, ok := Preset(name)
			if !ok {
				t.Fatalf("preset %q missing", name)
			}
			if err := cfg.Validate(); err != nil {
				t.Fatalf("preset %q invalid: %v", name, err)
			}
			e, err := New().WithConfig(cfg).WithBackend(session.NewMemoryBackend()).Build()
			if err != nil {
				t.Fatalf("preset %q build failed: %v", name, err)
			}
			if e.Catalog().DefaultRole() == "" {
				t.Fatalf("preset %q has no default role", name)
			}
			e.Close()
		})
	}

	if _, ok := Preset("unknown"); ok {
		t.Fatal("unknown preset must not resolve")
	}
}

func TestConfigValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"prefix whitespace", func(c *Config) { c.Session.KeyPrefix = "my app." }},
		{"prefix slash", func(c *Config) { c.Session.KeyPrefix = "app/" }},
		{"negative leeway", func(c *Config) { c.Session.ExpiryLeeway = -time.Second }},
		{"huge leeway", func(c *Config) { c.Session.ExpiryLeeway = time.Hour }},
		{"empty role name", func(c *Config) { c.Roles.Roles = append(c.Roles.Roles, "  ") }},
		{"unknown default role", func(c *Config) { c.Roles.DefaultRole = "GHOST" }},
		{"alias to unknown role", func(c *Config) { c.Roles.Aliases["BOSS"] = "OWNER" }},
		{"demo without default role", func(c *Config) {
			c.Roles.DefaultRole = ""
			c.Normalize.AllowDemoFallback = true
		}},
		{"relative login path", func(c *Config) { c.Guard.LoginPath = "login" }},
		{"negative retry after", func(c *Config) { c.Guard.RetryAfter = -time.Second }},
		{"audit without buffer", func(c *Config) {
			c.Audit.Enabled = true
			c.Audit.BufferSize = 0
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := GroceryConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestBuildRejectsUnknownDemoPermission(t *testing.T) {
	cfg := GroceryConfig()
	cfg.Normalize.AllowDemoFallback = true
	cfg.Roles.DemoPermissions = permission.Table{"CUSTOMER": {"TELEPORT"}}

	if _, err := New().WithConfig(cfg).WithBackend(session.NewMemoryBackend()).Build(); err == nil {
		t.Fatal("expected build error for a demo permission outside the catalog")
	}
}

func TestBuildRequiresBackend(t *testing.T) {
	if _, err := New().WithConfig(GroceryConfig()).Build(); err == nil {
		t.Fatal("expected error without a backend")
	}
}

func TestBuilderSingleUse(t *testing.T) {
	b := New().WithConfig(GroceryConfig()).WithBackend(session.NewMemoryBackend())
	e, err := b.Build()
	if err != nil {
		t.Fatalf("first build: %v", err)
	}
	defer e.Close()
	if _, err := b.Build(); err == nil {
		t.Fatal("expected second Build to fail")
	}
}

func TestConfigIsCopied(t *testing.T) {
	cfg := GroceryConfig()
	e, err := New().WithConfig(cfg).WithBackend(session.NewMemoryBackend()).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer e.Close()

	cfg.Transport.PublicPaths[0] = "/mutated"
	cfg.Roles.Aliases["MANAGER"] = "ADMIN"

	got := e.Config()
	if got.Transport.PublicPaths[0] != "/auth/login" {
		t.Fatalf("public paths aliased caller slice: %v", got.Transport.PublicPaths)
	}
	if role, _ := e.Catalog().Lookup("MANAGER"); role != "SELLER" {
		t.Fatalf("alias aliased caller map: %q", role)
	}

	got.Roles.Roles[0] = "CHANGED"
	if e.Config().Roles.Roles[0] != "ADMIN" {
		t.Fatal("Config must return a copy")
	}
}
