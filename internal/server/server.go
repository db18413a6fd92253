// Package server provides the HTTP REST API for the learning platform.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MikeHibbert/MindCoach-sub001/internal/config"
	"github.com/MikeHibbert/MindCoach-sub001/internal/db"
	"github.com/MikeHibbert/MindCoach-sub001/internal/documents"
	"github.com/MikeHibbert/MindCoach-sub001/internal/llm"
	"github.com/MikeHibbert/MindCoach-sub001/internal/pipeline"
	"github.com/MikeHibbert/MindCoach-sub001/internal/server/middleware"
	"github.com/MikeHibbert/MindCoach-sub001/internal/server/ratelimit"
	"github.com/MikeHibbert/MindCoach-sub001/internal/surveys"
)

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	db          *db.DB
	llmClient   llm.Client
	documents   *documents.Service
	surveys     *surveys.Service
	runner      *pipeline.Runner
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	userService *UserService
	authHandler *AuthHandler
}

// Config holds server configuration
type Config struct {
	Port           int
	DatabaseURL    string
	APIKey         string
	MaxLessons     int
	LessonParallel int
	UseBrowser     bool
	Verbose        bool
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	database, err := db.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	llmClient, err := llm.NewClient(context.Background(), llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	s := &Server{
		db:        database,
		llmClient: llmClient,
	}

	s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())

	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create password config: %w", err)
	}
	s.userService = NewUserService(database, passwordConfig)

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}
	s.jwtService = NewJWTService(jwtConfig)
	s.authHandler = NewAuthHandler(s.userService, s.jwtService)

	s.documents = documents.NewService(database, cfg.UseBrowser, cfg.Verbose)
	s.surveys = surveys.NewService(database, llmClient)
	s.runner = pipeline.NewRunner(database, s.documents, llmClient, pipeline.Options{
		MaxLessons:     cfg.MaxLessons,
		LessonParallel: cfg.LessonParallel,
		Verbose:        cfg.Verbose,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Auth
	mux.HandleFunc("POST /auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /auth/login", s.authHandler.Login)

	// Everything user-scoped or admin-scoped requires a valid token.
	// User-scoped routes additionally require the token to belong to the
	// user in the path; admin routes require the admin flag.
	auth := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	protected := func(pattern string, handler http.HandlerFunc) {
		mux.Handle(pattern, auth(s.requireOwnUser(handler)))
	}
	adminOnly := func(pattern string, handler http.HandlerFunc) {
		mux.Handle(pattern, auth(s.requireAdmin(handler)))
	}

	protected("PUT /users/{user_id}/password", s.handleUpdatePassword)

	// Subject catalog
	mux.HandleFunc("GET /subjects", s.handleListSubjects)
	protected("GET /users/{user_id}/subjects", s.handleSubjectStatuses)

	// Subscriptions
	protected("GET /users/{user_id}/subscriptions", s.handleListSubscriptions)
	protected("POST /users/{user_id}/subscriptions/{subject}", s.handlePurchaseSubscription)
	protected("DELETE /users/{user_id}/subscriptions/{subject}", s.handleCancelSubscription)

	// Surveys (subscription gated)
	protected("POST /users/{user_id}/subjects/{subject}/survey", s.handleGenerateSurvey)
	protected("GET /users/{user_id}/subjects/{subject}/survey", s.handleGetSurvey)
	protected("POST /users/{user_id}/subjects/{subject}/survey/answers", s.handleSubmitSurvey)
	protected("GET /users/{user_id}/subjects/{subject}/survey/results", s.handleSurveyResults)

	// Lessons and progress (subscription gated)
	protected("GET /users/{user_id}/subjects/{subject}/lessons", s.handleListLessons)
	protected("GET /users/{user_id}/subjects/{subject}/lessons/{lesson_number}", s.handleGetLesson)
	protected("POST /users/{user_id}/subjects/{subject}/lessons/{lesson_number}/complete", s.handleCompleteLesson)
	protected("GET /users/{user_id}/subjects/{subject}/progress", s.handleGetProgress)

	// Content generation (subscription and survey gated)
	protected("POST /users/{user_id}/subjects/{subject}/lessons/generate", s.handleStartPipeline)
	protected("GET /users/{user_id}/subjects/{subject}/pipeline/{run_id}/status", s.handlePipelineStatus)
	protected("GET /users/{user_id}/subjects/{subject}/pipeline/{run_id}/stream", s.handlePipelineStream)

	// Admin document manager
	adminOnly("POST /admin/documents", s.handleCreateDocument)
	adminOnly("GET /admin/documents", s.handleListDocuments)
	adminOnly("GET /admin/documents/{id}", s.handleGetDocument)
	adminOnly("DELETE /admin/documents/{id}", s.handleDeleteDocument)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Long timeout for generation streams
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Start begins listening for requests
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.llmClient != nil {
		_ = s.llmClient.Close()
	}

	s.db.Close()
	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
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
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleUpdatePassword handles password update requests.
func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	s.authHandler.UpdatePassword(w, r)
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error envelope with the given code and message.
func (s *Server) errorResponse(w http.ResponseWriter, status int, code, message string) {
	s.jsonResponse(w, status, ErrorEnvelope{Error: ErrorBody{Code: code, Message: message}})
}

// errorFrom maps a typed error onto its envelope and status.
func (s *Server) errorFrom(w http.ResponseWriter, err error) {
	s.errorResponse(w, HTTPStatus(err), ErrorCode(err), err.Error())
}

// extractClientID extracts the client identifier from the request.
// Uses the IP address from RemoteAddr; X-Forwarded-For is ignored because
// only trusted proxies should supply it.
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
	if info.RetryAfter > 0 {
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, ErrorEnvelope{Error: ErrorBody{
		Code:    "RATE_LIMITED",
		Message: "Rate limit exceeded. Please try again later.",
		Details: map[string]any{
			"limit":     info.Limit,
			"remaining": info.Remaining,
			"reset_at":  info.ResetTime.Format(time.RFC3339),
		},
	}})
}
