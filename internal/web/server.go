// Package web provides the HTTP API for activation code checks, imports and
// bookings.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/JonMunkholm/codeimport/internal/codes"
	"github.com/JonMunkholm/codeimport/internal/config"
	"github.com/JonMunkholm/codeimport/internal/core"
	mw "github.com/JonMunkholm/codeimport/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/text/language"
)

// Service is the business logic the handlers call. *core.Service implements it.
type Service interface {
	CheckFile(ctx context.Context, f codes.File, tag language.Tag) ([]string, error)
	CreateOffer(ctx context.Context, p core.OfferParams) (core.Offer, error)
	GetOffer(ctx context.Context, id int64) (core.Offer, error)
	CreateStock(ctx context.Context, p core.StockParams) (core.Stock, error)
	UpdateStock(ctx context.Context, p core.StockUpdate) (core.Stock, error)
	ImportCodes(ctx context.Context, p core.ImportParams) (core.ImportResult, error)
	ListImports(ctx context.Context, stockID int64, limit int) ([]core.ImportEntry, error)
	BookActivationCode(ctx context.Context, stockID int64) (core.Booking, error)
	Ping(ctx context.Context) error
	Limiter() *core.UploadLimiter
}

// defaultRequestTimeout applies when the config leaves the timeout unset.
const defaultRequestTimeout = 60 * time.Second

// multipartMemory is how much of a multipart body is kept in memory; the
// rest spills to temporary files.
const multipartMemory = 4 << 20

// Server is the HTTP server for the activation code API.
type Server struct {
	service Service
	cfg     *config.Config
	metrics http.Handler
	router  *chi.Mux
	server  *http.Server

	defaultLang language.Tag
	maxBody     int64
	limiters    []*rateLimiter
}

// NewServer creates a Server. metricsHandler serves /metrics; nil disables it.
func NewServer(service Service, cfg *config.Config, metricsHandler http.Handler) *Server {
	s := &Server{
		service:     service,
		cfg:         cfg,
		metrics:     metricsHandler,
		router:      chi.NewRouter(),
		defaultLang: codes.Supported(language.Make(cfg.Codes.DefaultLocale)),
		// Room for an oversized file to arrive whole, so the checker can
		// report the size error itself.
		maxBody: 4*cfg.Upload.MaxFileSize + 1<<20,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	timeout := s.cfg.Server.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	s.router.Use(middleware.Timeout(timeout))
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		s.router.Use(s.newRateLimiter(s.cfg.Rate.RequestsPerMinute).middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	if s.metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", s.metrics)
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(&s.cfg.Security))

		// Template download, linked from the format error message
		r.Get("/activation-codes/template", s.handleDownloadTemplate)

		// Offers and stocks
		r.Post("/offers", s.handleCreateOffer)
		r.Get("/offers/{offerID}", s.handleGetOffer)
		r.Post("/offers/{offerID}/stocks", s.handleCreateStock)
		r.Patch("/stocks/{stockID}", s.handleUpdateStock)
		r.Get("/stocks/{stockID}/imports", s.handleListImports)
		r.Post("/stocks/{stockID}/bookings", s.handleBookActivationCode)

		// File uploads share a stricter rate limit
		r.Group(func(r chi.Router) {
			if s.cfg.Rate.Enabled {
				r.Use(s.newRateLimiter(s.cfg.Rate.UploadLimit).middleware)
			}
			r.Post("/activation-codes/check", s.handleCheckFile)
			r.Post("/stocks/{stockID}/activation-codes", s.handleImportCodes)
		})
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server and its background cleanup.
func (s *Server) Shutdown(ctx context.Context) error {
	for _, l := range s.limiters {
		l.stop()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if enableCSP {
				// JSON and CSV only: nothing to load.
				h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			}
			next.ServeHTTP(w, r)
		})
	}
}
