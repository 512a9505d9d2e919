package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	goGuard "github.com/MrEthical07/goGuard"
)

const maxBodyBytes = 1 << 20

// Config configures a Client. Paths are joined onto BaseURL.
type Config struct {
	BaseURL      string
	LoginPath    string
	RegisterPath string
	MePath       string
	// LogoutPath is optional. When set, Logout notifies the backend before the local
	// session is cleared.
	LogoutPath string

	// HTTPClient supplies the base transport and timeout. Its Transport is wrapped, the
	// client itself is not modified.
	HTTPClient *http.Client
	Timeout    time.Duration

	// OnSessionExpired runs once when a backend rejection signs the session out.
	OnSessionExpired func(req *http.Request, status int)
	Logger           *slog.Logger
}

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the register request body.
type Registration struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// RejectedError is a non-2xx backend response.
type RejectedError struct {
	Status  int
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("backend rejected request: %d %s", e.Status, e.Message)
}

// Client is a backend client bound to one Engine. It is safe for concurrent use.
type Client struct {
	engine *goGuard.Engine
	cfg    Config
	base   string
	http   *http.Client
	logger *slog.Logger
}

// New returns a Client for engine.
func New(engine *goGuard.Engine, cfg Config) (*Client, error) {
	if engine == nil {
		return nil, goGuard.ErrEngineNotReady
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		return nil, errors.New("client: BaseURL must be an http(s) URL")
	}
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/auth/login"
	}
	if cfg.RegisterPath == "" {
		cfg.RegisterPath = "/auth/register"
	}
	if cfg.MePath == "" {
		cfg.MePath = "/auth/me"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var rt http.RoundTripper
	hc := &http.Client{Timeout: cfg.Timeout}
	if cfg.HTTPClient != nil {
		rt = cfg.HTTPClient.Transport
		hc.CheckRedirect = cfg.HTTPClient.CheckRedirect
		hc.Jar = cfg.HTTPClient.Jar
		if cfg.HTTPClient.Timeout > 0 {
			hc.Timeout = cfg.HTTPClient.Timeout
		}
	}
	hc.Transport = engine.Transport(rt, cfg.OnSessionExpired)

	return &Client{
		engine: engine,
		cfg:    cfg,
		base:   base,
		http:   hc,
		logger: logger.With("component", "goguard.client"),
	}, nil
}

// Engine returns the session the Client acts for.
func (c *Client) Engine() *goGuard.Engine {
	return c.engine
}

// Login posts creds to the login endpoint and signs in with the response.
func (c *Client) Login(ctx context.Context, creds Credentials) (goGuard.LoginResult, error) {
	body, err := c.send(ctx, http.MethodPost, c.cfg.LoginPath, creds)
	if err != nil {
		return goGuard.LoginResult{}, err
	}
	return c.engine.LoginResponse(ctx, body)
}

// Register posts reg to the register endpoint and signs in with the response.
func (c *Client) Register(ctx context.Context, reg Registration) (goGuard.LoginResult, error) {
	body, err := c.send(ctx, http.MethodPost, c.cfg.RegisterPath, reg)
	if err != nil {
		return goGuard.LoginResult{}, err
	}
	return c.engine.RegisterResponse(ctx, body)
}

// CurrentUser fetches the current user, merges it into the session and returns the
// updated identity. A signed-out session returns ErrNotAuthenticated without a request.
func (c *Client) CurrentUser(ctx context.Context) (goGuard.Identity, error) {
	if !c.engine.IsAuthenticated() {
		return goGuard.Identity{}, goGuard.ErrNotAuthenticated
	}
	body, err := c.send(ctx, http.MethodGet, c.cfg.MePath, nil)
	if err != nil {
		return goGuard.Identity{}, err
	}
	if err := c.engine.ProfileResponse(ctx, body); err != nil {
		return goGuard.Identity{}, err
	}
	id, ok := c.engine.Identity()
	if !ok {
		return goGuard.Identity{}, goGuard.ErrNotAuthenticated
	}
	return id, nil
}

// Logout signs the session out. A failed backend notification is logged and does not
// keep the local session alive.
func (c *Client) Logout(ctx context.Context) error {
	if c.cfg.LogoutPath != "" && c.engine.IsAuthenticated() {
		if _, err := c.send(ctx, http.MethodPost, c.cfg.LogoutPath, nil); err != nil {
			c.logger.Warn("backend logout failed", "error", err)
		}
	}
	return c.engine.Logout(ctx)
}

// Do sends in as JSON to path and decodes the response into out. Either may be nil.
func (c *Client) Do(ctx context.Context, method, path string, in, out any) error {
	body, err := c.send(ctx, method, path, in)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, in any) ([]byte, error) {
	var reader io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("backend rejected request", "method", method, "path", path, "status", resp.StatusCode)
		return nil, &RejectedError{Status: resp.StatusCode, Message: errorMessage(body, resp.StatusCode)}
	}
	return body, nil
}

func (c *Client) url(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.base + path
}

// errorMessage pulls a human-readable message out of an error body. Backends use
// "message", "error" or {"error":{"message":...}}.
func errorMessage(body []byte, status int) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil {
		if s, ok := payload["message"].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
		switch v := payload["error"].(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		case map[string]any:
			if s, ok := v["message"].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return http.StatusText(status)
}
