// Package api exposes the public intake API and the Basic-auth admin panel
// over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"storecrew/internal/config"
	"storecrew/internal/database"
	"storecrew/internal/estimate"
	"storecrew/internal/metrics"
	"storecrew/internal/service"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

type Server struct {
	cfg    config.ServerConfig
	intake *service.IntakeService
	admin  *service.AdminService
	auth   *BasicAuth
	server *http.Server
	logger *zerolog.Logger

	limiters sync.Map // map[string]*rate.Limiter, keyed by client host
}

func NewServer(cfg config.ServerConfig, adminCfg config.AdminConfig, intake *service.IntakeService, admin *service.AdminService, logger *zerolog.Logger) *Server {
	srv := &Server{
		cfg:    cfg,
		intake: intake,
		admin:  admin,
		auth:   NewBasicAuth(adminCfg),
		logger: logger,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", srv.handleHealthz)
	mux.HandleFunc("/api/v1/catalog", srv.rateLimited(srv.handleCatalog))
	mux.HandleFunc("/api/v1/estimate", srv.rateLimited(srv.handleEstimate))
	mux.HandleFunc("/api/v1/bookings", srv.rateLimited(srv.handleBookings))
	mux.HandleFunc("/api/v1/bookings/", srv.rateLimited(srv.handleBookingByReference))
	mux.HandleFunc("/api/v1/intake/progress", srv.rateLimited(srv.handleIntakeProgress))

	mux.Handle("/api/v1/admin/bookings", srv.auth.Wrap(http.HandlerFunc(srv.handleAdminBookings)))
	mux.Handle("/api/v1/admin/bookings/", srv.auth.Wrap(http.HandlerFunc(srv.handleAdminBooking)))
	mux.Handle("/api/v1/admin/export.csv", srv.auth.Wrap(http.HandlerFunc(srv.handleExportCSV)))
	mux.Handle("/api/v1/admin/export.xlsx", srv.auth.Wrap(http.HandlerFunc(srv.handleExportXLSX)))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv.loggingMiddleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return srv
}

func (s *Server) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the configured root handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// rateLimited applies a per-host token bucket to public endpoints.
func (s *Server) rateLimited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.RateLimitRPS > 0 {
			lim := s.getLimiter(clientHost(r))
			if !lim.Allow() {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) getLimiter(key string) *rate.Limiter {
	if v, ok := s.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}

	burst := s.cfg.RateLimitBurst
	if burst <= 0 {
		burst = 5
	}

	lim := rate.NewLimiter(rate.Limit(s.cfg.RateLimitRPS), burst)
	actual, loaded := s.limiters.LoadOrStore(key, lim)
	if loaded {
		return actual.(*rate.Limiter)
	}
	return lim
}

func clientHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return "unknown"
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		metrics.IncHTTP(r.URL.Path, strconv.Itoa(recorder.status))
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// writeServiceError maps service layer errors onto HTTP responses. Validation
// failures include a per-field error map.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "validation failed",
			"fields": verr.Fields,
		})
		return
	}

	var unknownErr *estimate.UnknownIDError
	if errors.As(err, &unknownErr) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "validation failed",
			"fields": map[string]string{unknownErr.Field: unknownErr.Error()},
		})
		return
	}

	var qtyErr *estimate.InvalidQuantityError
	if errors.As(err, &qtyErr) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "validation failed",
			"fields": map[string]string{"options": qtyErr.Error()},
		})
		return
	}

	switch {
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, "booking not found")
	case errors.Is(err, database.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "unknown status")
	default:
		s.logger.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
