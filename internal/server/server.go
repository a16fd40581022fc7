package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jonathan/candidate-screener/internal/config"
	"github.com/jonathan/candidate-screener/internal/ingestion"
	"github.com/jonathan/candidate-screener/internal/metrics"
	"github.com/jonathan/candidate-screener/internal/pipeline"
	"github.com/jonathan/candidate-screener/internal/server/middleware"
	"github.com/jonathan/candidate-screener/internal/server/ratelimit"
	"github.com/jonathan/candidate-screener/internal/skills"
)

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	store       Store
	extractor   *skills.Extractor
	files       ingestion.Extractor
	pipeline    *pipeline.Pipeline
	maxUpload   int64
	concurrency int
	logger      *zap.Logger
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	authHandler *AuthHandler
	registry    *prometheus.Registry
}

// Config holds server configuration
type Config struct {
	Port int
	// Store persists users, jobs and candidates.
	Store Store
	// Extractor derives skills; job requirements and résumés share it.
	Extractor *skills.Extractor
	// Files turns uploads into text. Defaults to an ingestion.FileExtractor.
	Files          ingestion.Extractor
	JWT            *config.JWTConfig
	Password       *config.PasswordConfig
	Concurrency    int
	MaxUploadBytes int64
	// RateLimit defaults to ratelimit.LoadConfig.
	RateLimit *ratelimit.Config
	Logger    *zap.Logger
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil || cfg.Extractor == nil {
		return nil, fmt.Errorf("server requires a store and a skill extractor")
	}
	if cfg.JWT == nil || cfg.Password == nil {
		return nil, fmt.Errorf("server requires JWT and password configuration")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = ingestion.MaxFileSize
	}
	files := cfg.Files
	if files == nil {
		files = ingestion.NewFileExtractor(maxUpload)
	}
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = pipeline.DefaultConcurrency
	}
	rateConfig := cfg.RateLimit
	if rateConfig == nil {
		var err error
		if rateConfig, err = ratelimit.LoadConfig(); err != nil {
			return nil, err
		}
	}

	s := &Server{
		store:       cfg.Store,
		extractor:   cfg.Extractor,
		files:       files,
		maxUpload:   maxUpload,
		concurrency: concurrency,
		logger:      logger,
		pipeline: pipeline.New(cfg.Extractor,
			pipeline.WithConcurrency(concurrency),
			pipeline.WithLogger(logger),
			pipeline.WithRecorder(metrics.Recorder{})),
		rateLimiter: ratelimit.NewLimiter(rateConfig),
		jwtService:  NewJWTService(cfg.JWT),
		registry:    prometheus.NewRegistry(),
	}
	s.authHandler = NewAuthHandler(NewUserService(cfg.Store, cfg.Password), s.jwtService, logger)

	httpMetrics := metrics.NewMiddleware("screener")
	s.registry.MustRegister(httpMetrics.Collectors()...)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(
		prometheus.Gatherers{prometheus.DefaultGatherer, s.registry},
		promhttp.HandlerOpts{}))
	mux.HandleFunc("POST /auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /auth/login", s.authHandler.Login)

	auth := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	protected := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, auth(h))
	}

	// Job requirements
	protected("POST /jobs", s.handleCreateJob)
	protected("GET /jobs", s.handleListJobs)
	protected("GET /jobs/{id}", s.handleGetJob)
	protected("GET /jobs/{id}/summary", s.handleJobSummary)

	// Candidates
	protected("POST /jobs/{id}/candidates", s.handleUploadCandidates)
	protected("POST /jobs/{id}/candidates/stream", s.handleUploadCandidatesStream)
	protected("GET /jobs/{id}/candidates", s.handleListCandidates)
	protected("PATCH /candidates/{id}/status", s.handleUpdateCandidateStatus)
	protected("POST /jobs/{id}/invitations", s.handleInviteCandidates)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      httpMetrics.Handler(s.withRateLimit(s.withLogging(s.withCORS(mux)))),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 300 * time.Second, // batches of large résumés take a while
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening for requests and blocks until SIGINT or SIGTERM.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.rateLimiter.Stop()
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.rateLimiter.Stop()

	s.logger.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &metrics.StatusRecorder{ResponseWriter: w, Status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.Status),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote", r.RemoteAddr))
	})
}

// handleHealth reports whether the store is reachable.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func errorResponse(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// failure maps err to a status code and writes it. Internal errors are
// logged and replaced by a generic message.
func (s *Server) failure(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
		errorResponse(w, status, "internal server error")
		return
	}
	errorResponse(w, status, err.Error())
}

// extractClientID extracts the client identifier from the request.
// It uses the IP address from RemoteAddr; forwarded headers are not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]interface{}{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds()) + 1
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	s.logger.Warn("rate limit exceeded",
		zap.Int("limit", info.Limit),
		zap.Int("remaining", info.Remaining),
		zap.Time("reset", info.ResetTime))

	jsonResponse(w, http.StatusTooManyRequests, response)
}
