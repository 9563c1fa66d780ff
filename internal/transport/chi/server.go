package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mugeshbabu/docchat/internal/domain"
	chatuc "github.com/mugeshbabu/docchat/internal/usecase/chat"
	healthuc "github.com/mugeshbabu/docchat/internal/usecase/health"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the chat pipeline over HTTP.
type Server struct {
	chat          *chatuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(chat *chatuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		chat:   chat,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrConversationNotFound, http.StatusNotFound, codeConversationNotFound),
		sentinelHandler(domain.ErrFetchFailed, http.StatusBadGateway, codeDocumentFetchFailed),
		sentinelHandler(domain.ErrEmptyContent, http.StatusUnprocessableEntity, codeEmptyDocument),
		sentinelHandler(domain.ErrGeneration, http.StatusBadGateway, codeGenerationFailed),
		sentinelHandler(domain.ErrPersistence, http.StatusInternalServerError, codeInternalError),
	}
	return s
}

// Register mounts the API routes on the given router.
func (s *Server) Register(r chirouter.Router) {
	r.Post("/v1/chat/message", s.ChatMessage)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// ChatMessage handles POST /v1/chat/message.
func (s *Server) ChatMessage(w http.ResponseWriter, r *http.Request) {
	var req chatMessageRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.URL == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "url is required")
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "question is required")
		return
	}

	resp, err := s.chat.Chat(r.Context(), chatuc.Request{
		DocumentReference: req.URL,
		Question:          req.Question,
		ConversationID:    req.ConversationID,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	chunks := resp.SourceChunks
	if chunks == nil {
		chunks = []string{}
	}
	writeJSON(w, http.StatusOK, chatMessageResponse{
		Answer:         resp.Answer,
		SourceChunks:   chunks,
		ConversationID: resp.ConversationID,
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrConversationNotFound,
		domain.ErrFetchFailed,
		domain.ErrEmptyContent,
		domain.ErrGeneration,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
