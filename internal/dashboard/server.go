// Package dashboard is the local web dashboard served by `guardctl serve`. Every page
// is guarded by the session Engine; navigation links the user cannot open are hidden.
package dashboard

import (
	"crypto/subtle"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/MrEthical07/goGuard/client"
	"github.com/MrEthical07/goGuard/guard"
	"github.com/MrEthical07/goGuard/metrics/export/prometheus"
)

// Server is the dashboard HTTP handler.
type Server struct {
	engine *goGuard.Engine
	client *client.Client
	pages  []Page
	logger *slog.Logger
	router chi.Router

	// formToken is embedded in every form and required on every POST.
	formToken string
}

// New returns a Server for pages. c is used for sign-in and sign-out.
func New(c *client.Client, pages []Page, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		engine: c.Engine(),
		client: c,
		pages:  pages,
		logger: logger.With("component", "dashboard"),
		router: chi.NewRouter(),

		formToken: uuid.NewString(),
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(auditContext)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Handle("/metrics", prometheus.New(s.engine).Handler())

	r.Get("/login", s.loginForm)
	r.Group(func(r chi.Router) {
		r.Use(http.NewCrossOriginProtection().Handler)
		r.Use(s.requireFormToken)
		r.Post("/login", s.login)
		r.Post("/logout", s.logout)
	})

	forbidden := http.HandlerFunc(s.forbidden)
	for _, p := range s.pages {
		r.With(s.engine.Require(p.Requirement, forbidden)).Get(p.Path, s.page(p))
	}
}

func auditContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := goGuard.WithSource(r.Context(), "dashboard")
		ctx = goGuard.WithRequestID(ctx, middleware.GetReqID(ctx))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireFormToken rejects form posts that do not echo the server's form token.
func (s *Server) requireFormToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		got := r.PostForm.Get(formTokenField)
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.formToken)) != 1 {
			s.logger.Warn("form post without a valid token", "path", r.URL.Path)
			http.Error(w, "invalid form token", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const formTokenField = "form_token"

type view struct {
	Title       string
	Identity    *goGuard.Identity
	Nav         []Page
	Permissions []string
	Actions     []string
	Error       string
	From        string
	FormToken   string
}

func (s *Server) nav() []Page {
	out := make([]Page, 0, len(s.pages))
	for _, p := range s.pages {
		if link := guard.Gate(s.engine, p.Requirement, &p, nil); link != nil {
			out = append(out, *link)
		}
	}
	return out
}

func (s *Server) page(p Page) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := guard.IdentityFromContext(r.Context())
		v := view{
			Title:       p.Title,
			Identity:    &id,
			Nav:         s.nav(),
			Permissions: id.Permissions.Keys(),
			Actions: guard.Gate(s.engine, guard.Permission("USER_MANAGE"),
				[]string{"Manage users"}, nil),
		}
		s.render(w, http.StatusOK, pageTemplate, v)
	}
}

func (s *Server) loginForm(w http.ResponseWriter, r *http.Request) {
	from := guard.SafeReturnPath(r.URL.Query().Get("from"), "/")
	if s.engine.IsAuthenticated() {
		http.Redirect(w, r, from, http.StatusFound)
		return
	}
	s.render(w, http.StatusOK, loginTemplate, view{Title: "Sign in", From: from})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	from := guard.SafeReturnPath(r.PostForm.Get("from"), "/")
	creds := client.Credentials{
		Email:    strings.TrimSpace(r.PostForm.Get("email")),
		Password: r.PostForm.Get("password"),
	}

	if _, err := s.client.Login(r.Context(), creds); err != nil {
		s.logger.Info("dashboard sign-in failed", "error", err)
		s.render(w, http.StatusUnauthorized, loginTemplate, view{
			Title: "Sign in",
			From:  from,
			Error: loginError(err),
		})
		return
	}
	http.Redirect(w, r, from, http.StatusSeeOther)
}

func loginError(err error) string {
	var rej *client.RejectedError
	switch {
	case errors.As(err, &rej):
		return rej.Message
	case errors.Is(err, goGuard.ErrNoIdentity):
		return "The server did not return a session."
	default:
		return "Sign-in is unavailable right now."
	}
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.client.Logout(r.Context()); err != nil {
		s.logger.Error("dashboard sign-out failed", "error", err)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) forbidden(w http.ResponseWriter, r *http.Request) {
	var idp *goGuard.Identity
	if id, ok := s.engine.Identity(); ok {
		idp = &id
	}
	s.render(w, http.StatusForbidden, forbiddenTemplate, view{
		Title:    "Access denied",
		Identity: idp,
		Nav:      s.nav(),
	})
}

func (s *Server) render(w http.ResponseWriter, status int, t *template.Template, v view) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	v.FormToken = s.formToken
	if err := t.ExecuteTemplate(w, "layout", v); err != nil {
		s.logger.Error("render failed", "error", err)
	}
}
