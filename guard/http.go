package guard

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/MrEthical07/goGuard/session"
)

const (
	defaultLoginPath  = "/login"
	defaultRetryAfter = 1

	loadingPage   = "<!doctype html><title>Loading</title><p>Loading…</p>\n"
	forbiddenPage = "<!doctype html><title>Access denied</title><h1>Access denied</h1><p>You do not have permission to view this page.</p>\n"
)

// Recorder observes guard decisions. *goGuard.Engine implements it.
type Recorder interface {
	RecordGuardDecision(state string)
}

// Options configures [Require].
type Options struct {
	// LoginPath receives unauthenticated visitors. Defaults to "/login".
	LoginPath string

	// Forbidden renders the access-denied view. It must not redirect. When nil a fixed
	// 403 page is written.
	Forbidden http.Handler

	// RetryAfter is the Retry-After value in seconds sent while loading.
	RetryAfter int

	Recorder Recorder
}

type identityContextKey struct{}

// IdentityFromContext returns the identity an authorized request was admitted with.
func IdentityFromContext(ctx context.Context) (session.Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(session.Identity)
	return id, ok
}

// Require returns middleware that admits only requests meeting req.
func Require(v View, req Requirement, opts Options) func(http.Handler) http.Handler {
	if opts.LoginPath == "" {
		opts.LoginPath = defaultLoginPath
	}
	if opts.RetryAfter <= 0 {
		opts.RetryAfter = defaultRetryAfter
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := Decide(v, req)
			if opts.Recorder != nil {
				opts.Recorder.RecordGuardDecision(d.State.String())
			}

			switch d.State {
			case Loading:
				w.Header().Set("Retry-After", strconv.Itoa(opts.RetryAfter))
				w.Header().Set("Cache-Control", "no-store")
				writePage(w, http.StatusServiceUnavailable, loadingPage)
			case Unauthenticated:
				http.Redirect(w, r, LoginURL(opts.LoginPath, r.URL.RequestURI()), http.StatusFound)
			case Forbidden:
				if opts.Forbidden != nil {
					opts.Forbidden.ServeHTTP(w, r)
					return
				}
				writePage(w, http.StatusForbidden, forbiddenPage)
			default:
				ctx := context.WithValue(r.Context(), identityContextKey{}, d.Identity)
				next.ServeHTTP(w, r.WithContext(ctx))
			}
		})
	}
}

// LoginURL builds the login redirect target carrying the original location in "from".
func LoginURL(loginPath, from string) string {
	if from == "" || from == loginPath {
		return loginPath
	}
	sep := "?"
	if strings.Contains(loginPath, "?") {
		sep = "&"
	}
	return loginPath + sep + "from=" + url.QueryEscape(from)
}

// SafeReturnPath returns from when it is a same-origin absolute path and fallback
// otherwise. It keeps a crafted "from" parameter from redirecting off-site after login.
func SafeReturnPath(from, fallback string) string {
	if fallback == "" {
		fallback = "/"
	}
	if from == "" || from[0] != '/' || strings.HasPrefix(from, "//") || strings.ContainsAny(from, "\\\r\n") {
		return fallback
	}
	u, err := url.Parse(from)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil {
		return fallback
	}
	return from
}

func writePage(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
