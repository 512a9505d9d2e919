package transport

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// Invalidation reasons passed to the Invalidator.
const (
	ReasonUnauthorized = "backend_401"
	ReasonForbidden    = "backend_403"
)

// TokenSource supplies the current session token.
type TokenSource interface {
	Token() (string, bool)
}

// Invalidator clears the session that sent token. It reports whether an identity was
// cleared. An empty token means the request carried no credentials.
type Invalidator interface {
	InvalidateToken(ctx context.Context, token, reason string) bool
}

// Config configures a Transport.
type Config struct {
	// PublicPaths are path suffixes that never carry credentials, e.g. "/auth/login".
	PublicPaths []string

	// RetryGETWithoutAuthOn500 retries a GET answered with 500 once without the
	// Authorization header. Some backends fail on stale credentials for public reads.
	RetryGETWithoutAuthOn500 bool

	// OnSessionExpired runs after a 401/403 cleared the session. It receives the
	// rejected request and the response status.
	OnSessionExpired func(req *http.Request, status int)

	Logger *slog.Logger
}

// Transport is an http.RoundTripper bound to one session.
type Transport struct {
	base   http.RoundTripper
	tokens TokenSource
	inval  Invalidator
	cfg    Config
	public []string
}

// New wraps base. A nil base selects http.DefaultTransport.
func New(base http.RoundTripper, tokens TokenSource, inval Invalidator, cfg Config) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	public := make([]string, 0, len(cfg.PublicPaths))
	for _, p := range cfg.PublicPaths {
		p = strings.TrimRight(strings.TrimSpace(p), "/")
		if p != "" {
			public = append(public, p)
		}
	}
	return &Transport{base: base, tokens: tokens, inval: inval, cfg: cfg, public: public}
}

// IsPublic reports whether path matches one of the configured public paths.
func (t *Transport) IsPublic(path string) bool {
	path = strings.TrimRight(path, "/")
	for _, p := range t.public {
		if strings.HasSuffix(path, p) {
			return true
		}
	}
	return false
}

// RoundTrip implements http.RoundTripper. The caller's request is never modified.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	public := t.IsPublic(req.URL.Path)

	out := req.Clone(req.Context())
	sent, authed := "", false
	if public {
		out.Header.Del("Authorization")
	} else if tok, ok := t.token(); ok {
		out.Header.Set("Authorization", "Bearer "+tok)
		sent, authed = tok, true
	}

	resp, err := t.base.RoundTrip(out)
	if err != nil {
		return nil, err
	}

	if authed && t.cfg.RetryGETWithoutAuthOn500 && resp.StatusCode == http.StatusInternalServerError && req.Method == http.MethodGet && (req.Body == nil || req.Body == http.NoBody) {
		drain(resp)
		retry := req.Clone(req.Context())
		retry.Header.Del("Authorization")
		t.cfg.Logger.Debug("retrying GET without credentials", "path", req.URL.Path)
		return t.base.RoundTrip(retry)
	}

	if !public && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
		t.reject(req, sent, resp.StatusCode)
	}
	return resp, nil
}

func (t *Transport) token() (string, bool) {
	if t.tokens == nil {
		return "", false
	}
	tok, ok := t.tokens.Token()
	if !ok || tok == "" {
		return "", false
	}
	return tok, true
}

func (t *Transport) reject(req *http.Request, sent string, status int) {
	if t.inval == nil {
		return
	}
	reason := ReasonUnauthorized
	if status == http.StatusForbidden {
		reason = ReasonForbidden
	}
	if !t.inval.InvalidateToken(req.Context(), sent, reason) {
		return
	}
	t.cfg.Logger.Info("session cleared by backend rejection", "status", status, "path", req.URL.Path)
	if t.cfg.OnSessionExpired != nil {
		t.cfg.OnSessionExpired(req, status)
	}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
