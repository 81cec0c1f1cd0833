// Package api exposes the engine over HTTP. It only translates requests into
// engine commands and replies into JSON; all rules live in the engine.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"reddit-engine/internal/engine"
)

// DefaultFeedLimit is used when GET /api/posts carries no limit.
const DefaultFeedLimit = 25

// Server routes HTTP requests to an engine client.
type Server struct {
	engine    *engine.Client
	router    *mux.Router
	logger    *slog.Logger
	validate  *validator.Validate
	feedLimit int
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Status  string `json:"status"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

// SuccessResponse wraps every successful reply.
type SuccessResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// NewServer creates a server. A non-positive feedLimit selects DefaultFeedLimit.
func NewServer(client *engine.Client, logger *slog.Logger, feedLimit int) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if feedLimit <= 0 {
		feedLimit = DefaultFeedLimit
	}
	s := &Server{
		engine:    client,
		router:    mux.NewRouter(),
		logger:    logger,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		feedLimit: feedLimit,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(s.logRequests)

	// Auth routes
	s.router.HandleFunc("/api/register", s.handleRegister).Methods(http.MethodPost)
	s.router.HandleFunc("/api/login", s.handleLogin).Methods(http.MethodPost)
	s.router.HandleFunc("/api/logout", s.handleLogout).Methods(http.MethodPost)
	s.router.HandleFunc("/api/users/{username}", s.handleGetUser).Methods(http.MethodGet)

	// Subreddit routes
	s.router.HandleFunc("/api/subreddits", s.handleCreateSubreddit).Methods(http.MethodPost)
	s.router.HandleFunc("/api/subreddits/{name}", s.handleGetSubreddit).Methods(http.MethodGet)
	s.router.HandleFunc("/api/subreddits/{name}/join", s.handleJoinSubreddit).Methods(http.MethodPost)
	s.router.HandleFunc("/api/subreddits/{name}/leave", s.handleLeaveSubreddit).Methods(http.MethodPost)

	// Post routes
	s.router.HandleFunc("/api/posts", s.handleCreatePost).Methods(http.MethodPost)
	s.router.HandleFunc("/api/posts", s.handleGetFeed).Methods(http.MethodGet)
	s.router.HandleFunc("/api/posts/{id}", s.handleGetPost).Methods(http.MethodGet)
	s.router.HandleFunc("/api/posts/{id}/vote", s.handleVotePost).Methods(http.MethodPost)
	s.router.HandleFunc("/api/posts/{id}/comments", s.handleAddComment).Methods(http.MethodPost)
	s.router.HandleFunc("/api/posts/{id}/comments", s.handleGetComments).Methods(http.MethodGet)
	s.router.HandleFunc("/api/comments/{id}/vote", s.handleVoteComment).Methods(http.MethodPost)

	// Message routes
	s.router.HandleFunc("/api/messages", s.handleSendMessage).Methods(http.MethodPost)
	s.router.HandleFunc("/api/messages", s.handleGetMessages).Methods(http.MethodGet)
	s.router.HandleFunc("/api/messages/{id}/reply", s.handleReplyMessage).Methods(http.MethodPost)
	s.router.HandleFunc("/api/messages/{id}/read", s.handleMarkRead).Methods(http.MethodPost)

	s.router.HandleFunc("/api/stats", s.handleGetStats).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("http request",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "    ")
	_ = encoder.Encode(data)
}

func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, SuccessResponse{Status: "success", Message: message, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Status: "error", Message: message})
}

// writeEngineError maps an engine failure onto an HTTP status.
func writeEngineError(w http.ResponseWriter, action string, err error) {
	kind := engine.KindOf(err)
	writeJSON(w, statusFor(err), ErrorResponse{
		Status:  "error",
		Kind:    string(kind),
		Message: fmt.Sprintf("Failed to %s: %v", action, err),
	})
}

func statusFor(err error) int {
	if errors.Is(err, engine.ErrTimeout) {
		return http.StatusGatewayTimeout
	}
	switch engine.KindOf(err) {
	case engine.KindUserNotFound, engine.KindSubredditNotFound, engine.KindPostNotFound,
		engine.KindCommentNotFound, engine.KindMessageNotFound, engine.KindRecipientNotFound:
		return http.StatusNotFound
	case engine.KindDuplicateUser, engine.KindDuplicateSubreddit, engine.KindAlreadyMember:
		return http.StatusConflict
	case engine.KindNotMember:
		return http.StatusForbidden
	case engine.KindInvalidCredentials:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body into dst and validates it.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return false
	}
	return true
}

// caller returns the acting username from the Username header.
func caller(w http.ResponseWriter, r *http.Request) (string, bool) {
	username := r.Header.Get("Username")
	if username == "" {
		writeError(w, http.StatusUnauthorized, "Username header is required")
		return "", false
	}
	return username, true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}
