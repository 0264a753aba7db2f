// Package httpapi exposes the JSON HTTP API.
//
// Responses use the envelopes {"data": ...} and {"error": "..."}; a
// submission rejected for missing required fields also carries "fields".
// Authenticated routes accept a Bearer token or the "token" cookie.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/formvault/internal/logging"
	"github.com/dmitrijs2005/formvault/internal/server/auth"
	"github.com/dmitrijs2005/formvault/internal/server/services"
	"github.com/dmitrijs2005/formvault/internal/server/store"
	"github.com/dmitrijs2005/formvault/internal/timex"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 5 << 20

type Option func(*Server)

// WithCORSOrigins sets the allowed browser origins ("*" allows any).
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) { s.corsOrigins = origins }
}

// WithIdentityVerifier enables POST /api/auth/external.
func WithIdentityVerifier(v auth.IdentityVerifier) Option {
	return func(s *Server) { s.identities = v }
}

// WithClock replaces time.Now for the health timestamp.
func WithClock(c func() time.Time) Option {
	return func(s *Server) { s.clock = c }
}

type Server struct {
	address     string
	store       *store.Store
	users       *services.UserService
	forms       *services.FormService
	identities  auth.IdentityVerifier
	logger      logging.Logger
	corsOrigins []string
	clock       func() time.Time
}

func NewServer(addr string, l logging.Logger, st *store.Store, us *services.UserService, fs *services.FormService, opts ...Option) *Server {
	s := &Server{
		address:     addr,
		store:       st,
		users:       us,
		forms:       fs,
		logger:      l.With("module", "http_server"),
		corsOrigins: []string{"*"},
		clock:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/api/health", s.health)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", s.signup)
		r.Post("/login", s.login)
		r.Post("/external", s.externalLogin)
		r.Post("/logout", s.logout)
		r.With(s.authRequired).Get("/me", s.me)
	})

	r.Get("/api/packages", s.listPackages)

	r.Route("/api/forms", func(r chi.Router) {
		r.Use(s.authRequired)
		r.Get("/", s.listForms)
		r.Post("/", s.createForm)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getForm)
			r.Put("/", s.updateForm)
			r.Delete("/", s.deleteForm)
			r.Post("/share", s.shareForm)
			r.Post("/publish", s.publishForm)
			r.Get("/submissions", s.listSubmissions)
			r.Post("/submissions", s.createSubmission)
			r.Delete("/submissions/{submissionID}", s.deleteSubmission)
			r.Get("/export.csv", s.exportCSV)
		})
	})

	r.Route("/api/workspaces", func(r chi.Router) {
		r.Use(s.authRequired)
		r.Get("/", s.listWorkspaces)
		r.Get("/{id}", s.getWorkspace)
		r.Put("/{id}", s.updateWorkspace)
		r.Get("/{id}/forms", s.listWorkspaceForms)
		r.Put("/{id}/package", s.assignPackage)
	})

	r.Route("/api/public/forms/{shareKey}", func(r chi.Router) {
		r.Get("/", s.getPublicForm)
		r.Post("/submissions", s.submitPublicForm)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": timex.FormatISO(s.clock()),
	})
}
