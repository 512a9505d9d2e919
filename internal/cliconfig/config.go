// Package cliconfig loads the configuration shared by the goGuard command-line tools.
//
// Configuration comes from an optional YAML file (the --config flag or GOGUARD_CONFIG)
// and is then overridden by GOGUARD_* environment variables. A .env file in the
// working directory, or the one named by --env-file, is loaded into the environment
// first and never overrides variables that are already set.
package cliconfig

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/MrEthical07/goGuard/client"
)

// Storage backends.
const (
	StorageFile  = "file"
	StorageRedis = "redis"
)

// File is the on-disk configuration.
type File struct {
	// Preset selects the role catalog: admission, grocery, library or budget.
	Preset string `yaml:"preset"`

	Backend BackendConfig `yaml:"backend"`
	Session SessionConfig `yaml:"session"`

	// AllowDemoFallback signs in with a local demo identity when the backend response
	// carries no token. Development only.
	AllowDemoFallback bool `yaml:"allow_demo_fallback"`

	Dashboard DashboardConfig `yaml:"dashboard"`

	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level"`
}

// BackendConfig describes the REST backend.
type BackendConfig struct {
	BaseURL      string   `yaml:"base_url"`
	LoginPath    string   `yaml:"login_path"`
	RegisterPath string   `yaml:"register_path"`
	MePath       string   `yaml:"me_path"`
	LogoutPath   string   `yaml:"logout_path"`
	PublicPaths  []string `yaml:"public_paths"`
	Timeout      string   `yaml:"timeout"`

	// RetryGETWithoutAuthOn500 retries a failed GET once without credentials.
	RetryGETWithoutAuthOn500 bool `yaml:"retry_get_without_auth_on_500"`
}

// SessionConfig describes where the session record lives.
type SessionConfig struct {
	Storage string `yaml:"storage"`
	Dir     string `yaml:"dir"`

	RedisAddr   string `yaml:"redis_addr"`
	RedisPrefix string `yaml:"redis_prefix"`
	RedisTTL    string `yaml:"redis_ttl"`
}

// DashboardConfig configures `guardctl serve`.
type DashboardConfig struct {
	Listen string `yaml:"listen"`
}

// Default returns the configuration used when no file is given.
func Default() *File {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return &File{
		Preset: "grocery",
		Backend: BackendConfig{
			BaseURL:      "http://127.0.0.1:8080",
			LoginPath:    "/auth/login",
			RegisterPath: "/auth/register",
			MePath:       "/auth/me",
			Timeout:      "15s",
		},
		Session: SessionConfig{
			Storage:     StorageFile,
			Dir:         filepath.Join(dir, "goguard"),
			RedisPrefix: "goguard",
		},
		Dashboard: DashboardConfig{
			Listen: "127.0.0.1:7070",
		},
		LogLevel: "warn",
	}
}

// Load reads envFile (optional), then the YAML file at path (or GOGUARD_CONFIG when
// path is empty), then applies GOGUARD_* overrides and validates the result.
func Load(path, envFile string) (*File, error) {
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}

	cfg := Default()
	if path == "" {
		path = os.Getenv("GOGUARD_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadEnvFile(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func (f *File) applyEnv() {
	setString(&f.Preset, "GOGUARD_PRESET")
	setString(&f.Backend.BaseURL, "GOGUARD_BASE_URL")
	setString(&f.Backend.Timeout, "GOGUARD_TIMEOUT")
	setString(&f.Session.Storage, "GOGUARD_STORAGE")
	setString(&f.Session.Dir, "GOGUARD_SESSION_DIR")
	setString(&f.Session.RedisAddr, "GOGUARD_REDIS_ADDR")
	setString(&f.Dashboard.Listen, "GOGUARD_LISTEN")
	setString(&f.LogLevel, "GOGUARD_LOG_LEVEL")
	setBool(&f.AllowDemoFallback, "GOGUARD_ALLOW_DEMO")
	if v := strings.TrimSpace(os.Getenv("GOGUARD_PUBLIC_PATHS")); v != "" {
		f.Backend.PublicPaths = splitList(v)
	}
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate reports the first invalid setting.
func (f *File) Validate() error {
	if _, ok := goGuard.Preset(f.Preset); !ok {
		return fmt.Errorf("unknown preset %q", f.Preset)
	}
	if !strings.HasPrefix(f.Backend.BaseURL, "http://") && !strings.HasPrefix(f.Backend.BaseURL, "https://") {
		return fmt.Errorf("backend base_url must be an http(s) URL, got %q", f.Backend.BaseURL)
	}
	if _, err := f.timeout(); err != nil {
		return err
	}
	switch f.Session.Storage {
	case StorageFile:
		if f.Session.Dir == "" {
			return errors.New("session dir required for file storage")
		}
	case StorageRedis:
		if f.Session.RedisAddr == "" {
			return errors.New("session redis_addr required for redis storage")
		}
		if _, err := f.redisTTL(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown session storage %q", f.Session.Storage)
	}
	if _, err := parseLevel(f.LogLevel); err != nil {
		return err
	}
	return nil
}

func (f *File) timeout() (time.Duration, error) {
	if f.Backend.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(f.Backend.Timeout)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid backend timeout %q", f.Backend.Timeout)
	}
	return d, nil
}

func (f *File) redisTTL() (time.Duration, error) {
	if f.Session.RedisTTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(f.Session.RedisTTL)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid session redis_ttl %q", f.Session.RedisTTL)
	}
	return d, nil
}

// EngineConfig returns the preset with the file's overrides applied.
func (f *File) EngineConfig() goGuard.Config {
	cfg, _ := goGuard.Preset(f.Preset)
	cfg.Normalize.AllowDemoFallback = f.AllowDemoFallback
	cfg.Transport.RetryGETWithoutAuthOn500 = f.Backend.RetryGETWithoutAuthOn500
	if len(f.Backend.PublicPaths) > 0 {
		cfg.Transport.PublicPaths = append([]string(nil), f.Backend.PublicPaths...)
	} else {
		cfg.Transport.PublicPaths = nonEmpty(f.Backend.LoginPath, f.Backend.RegisterPath)
	}
	return cfg
}

// ClientConfig returns the backend client settings.
func (f *File) ClientConfig() client.Config {
	timeout, _ := f.timeout()
	return client.Config{
		BaseURL:      f.Backend.BaseURL,
		LoginPath:    f.Backend.LoginPath,
		RegisterPath: f.Backend.RegisterPath,
		MePath:       f.Backend.MePath,
		LogoutPath:   f.Backend.LogoutPath,
		Timeout:      timeout,
	}
}

// Logger returns a text logger on w at the configured level.
func (f *File) Logger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(f.LogLevel)
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelWarn, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q", s)
	}
	return level, nil
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
