package cliconfig

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/MrEthical07/goGuard/session"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GOGUARD_CONFIG", "")

	cfg, err := Load("", "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Preset != "grocery" || cfg.Session.Storage != StorageFile {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	ec := cfg.EngineConfig()
	if ec.Session.KeyPrefix != "grocery." {
		t.Fatalf("expected grocery preset, got prefix %q", ec.Session.KeyPrefix)
	}
	if len(ec.Transport.PublicPaths) != 2 || ec.Transport.PublicPaths[0] != "/auth/login" {
		t.Fatalf("expected login/register public paths, got %v", ec.Transport.PublicPaths)
	}
}

func TestLoadYAMLThenEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeFile(t, "guard.yaml", `
preset: library
log_level: debug
backend:
  base_url: https://api.library.test
  login_path: /v1/login
  register_path: /v1/signup
  timeout: 5s
  retry_get_without_auth_on_500: true
session:
  storage: file
  dir: /tmp/goguard-test
`)
	t.Setenv("GOGUARD_BASE_URL", "https://staging.library.test")
	t.Setenv("GOGUARD_ALLOW_DEMO", "true")

	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend.BaseURL != "https://staging.library.test" {
		t.Fatalf("env override not applied: %q", cfg.Backend.BaseURL)
	}

	ec := cfg.EngineConfig()
	if ec.Session.KeyPrefix != "library." || !ec.Normalize.AllowDemoFallback || !ec.Transport.RetryGETWithoutAuthOn500 {
		t.Fatalf("unexpected engine config %+v", ec)
	}
	if len(ec.Transport.PublicPaths) != 2 || ec.Transport.PublicPaths[1] != "/v1/signup" {
		t.Fatalf("unexpected public paths %v", ec.Transport.PublicPaths)
	}
	if err := ec.Validate(); err != nil {
		t.Fatalf("engine config invalid: %v", err)
	}

	cc := cfg.ClientConfig()
	if cc.LoginPath != "/v1/login" || cc.Timeout != 5*time.Second {
		t.Fatalf("unexpected client config %+v", cc)
	}
	if !cfg.Logger(os.Stderr).Enabled(context.Background(), -4) {
		t.Fatal("expected debug logging enabled")
	}
}

func TestLoadEnvFile(t *testing.T) {
	t.Chdir(t.TempDir())
	envPath := writeFile(t, "guard.env", "GOGUARD_PRESET=budget\nGOGUARD_PUBLIC_PATHS=/login, /signup\n")
	t.Setenv("GOGUARD_PRESET", "")
	t.Setenv("GOGUARD_PUBLIC_PATHS", "")
	// godotenv does not override variables that are set, even to empty.
	os.Unsetenv("GOGUARD_PRESET")
	os.Unsetenv("GOGUARD_PUBLIC_PATHS")

	cfg, err := Load("", envPath)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Preset != "budget" {
		t.Fatalf("expected env file preset, got %q", cfg.Preset)
	}
	paths := cfg.EngineConfig().Transport.PublicPaths
	if len(paths) != 2 || paths[1] != "/signup" {
		t.Fatalf("unexpected public paths %v", paths)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*File)
	}{
		{"preset", func(f *File) { f.Preset = "casino" }},
		{"base url", func(f *File) { f.Backend.BaseURL = "api.test" }},
		{"timeout", func(f *File) { f.Backend.Timeout = "soon" }},
		{"storage", func(f *File) { f.Session.Storage = "cookie" }},
		{"redis addr", func(f *File) { f.Session.Storage = StorageRedis }},
		{"redis ttl", func(f *File) {
			f.Session.Storage = StorageRedis
			f.Session.RedisAddr = "127.0.0.1:6379"
			f.Session.RedisTTL = "forever"
		}},
		{"log level", func(f *File) { f.LogLevel = "loud" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestOpenBackendFile(t *testing.T) {
	cfg := Default()
	cfg.Session.Dir = t.TempDir()

	b, closeFn, err := cfg.OpenBackend(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer closeFn()
	if _, ok := b.(*session.FileBackend); !ok {
		t.Fatalf("expected FileBackend, got %T", b)
	}
}

func TestOpenBackendRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := Default()
	cfg.Session.Storage = StorageRedis
	cfg.Session.RedisAddr = mr.Addr()
	cfg.Session.RedisTTL = "1h"

	b, closeFn, err := cfg.OpenBackend(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer closeFn()

	if err := b.Set(context.Background(), "grocery.token", "abc"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.Exists("goguard:grocery.token") {
		t.Fatalf("expected prefixed key in redis, have %v", mr.Keys())
	}
}
