// Package httpserver serves the nutrilabel web UI and JSON API.
package httpserver

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/nutrilabel/pkg/admin"
	"github.com/matzehuels/nutrilabel/pkg/catalog"
	"github.com/matzehuels/nutrilabel/pkg/render"
)

//go:embed templates/*
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// sessionCookie holds the admin session id.
const sessionCookie = "nutrilabel_admin"

// Defaults for preview images.
const (
	defaultPreviewWidth = 400
	maxPreviewWidth     = 1200
)

// Config holds the server's collaborators. All fields except Logger are
// required.
type Config struct {
	Loader   *catalog.Loader
	Renderer *render.Renderer
	Gate     *admin.Gate
	Settings *admin.Settings
	Logger   *log.Logger
	Now      func() time.Time // archive timestamps, default time.Now
}

// Server wires the loader, renderer and admin gate to HTTP.
type Server struct {
	loader    *catalog.Loader
	renderer  *render.Renderer
	gate      *admin.Gate
	settings  *admin.Settings
	logger    *log.Logger
	now       func() time.Time
	templates *template.Template
}

// New parses the templates and returns a server.
func New(cfg Config) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.gohtml")
	if err != nil {
		return nil, err
	}
	s := &Server{
		loader:    cfg.Loader,
		renderer:  cfg.Renderer,
		gate:      cfg.Gate,
		settings:  cfg.Settings,
		logger:    cfg.Logger,
		now:       cfg.Now,
		templates: tmpl,
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// Handler returns the router with every route registered.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/label/{format}", s.handleLabel)
	r.Get("/preview.png", s.handlePreview)
	r.Post("/batch", s.handleBatch)
	r.Post("/refresh", s.handleRefresh)

	r.Post("/admin/login", s.handleLogin)
	r.Post("/admin/logout", s.handleLogout)
	r.Group(func(r chi.Router) {
		r.Use(s.requireAdmin)
		r.Post("/admin/style", s.handleStyle)
		r.Post("/admin/source", s.handleSource)
		r.Post("/admin/reset", s.handleReset)
	})

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/products", s.handleProducts)
		r.Get("/products/{name}", s.handleProduct)
	})

	r.Handle("/static/*", http.FileServer(http.FS(staticFS)))
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start).Round(time.Microsecond),
				"id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
