package meter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server exposes a Manager over a small JSON API. Login is public; every
// other endpoint authenticates with the X-Session-ID header from a prior
// login.
type Server struct {
	manager *Manager
	logger  *slog.Logger
}

func NewServer(manager *Manager, logger *slog.Logger) *Server {
	return &Server{manager: manager, logger: logger}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/meter", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Get("/job", s.handleGetJob)
		r.Post("/readings", s.handleSubmitReading)
		r.Get("/status", s.handleStatus)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return r
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	SessionID string `json:"session_id"`
}

type jobResponse struct {
	MeterID string `json:"meter_id"`
}

type readingRequest struct {
	MeterID string    `json:"meter_id"`
	When    time.Time `json:"when"`
	Value   int       `json:"value"`
	Reason  string    `json:"reason,omitempty"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := s.manager.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrBadCredentials) {
			respondError(w, http.StatusUnauthorized, err.Error())
			return
		}
		s.logger.Error("login failed", "error", err, "username", req.Username)
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	s.logger.Info("reader logged in", "username", req.Username)
	respondJSON(w, http.StatusOK, loginResponse{SessionID: session})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	meter, err := s.manager.GetJob(r.Header.Get("X-Session-ID"))
	switch {
	case errors.Is(err, ErrNoSession):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrNoMoreJobs):
		respondError(w, http.StatusNotFound, err.Error())
	case err != nil:
		s.logger.Error("get job failed", "error", err)
		respondError(w, http.StatusInternalServerError, "get job failed")
	default:
		respondJSON(w, http.StatusOK, jobResponse{MeterID: meter})
	}
}

func (s *Server) handleSubmitReading(w http.ResponseWriter, r *http.Request) {
	var req readingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.When.IsZero() {
		req.When = time.Now()
	}

	err := s.manager.SubmitReading(r.Header.Get("X-Session-ID"), req.MeterID, req.When, req.Value, req.Reason)
	switch {
	case errors.Is(err, ErrNoSession):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrUnknownMeter):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrReasonRequired):
		respondError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		s.logger.Error("submit reading failed", "error", err, "meter", req.MeterID)
		respondError(w, http.StatusInternalServerError, "submit reading failed")
	default:
		s.logger.Info("reading submitted", "meter", req.MeterID, "value", req.Value)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.manager.Status(r.Header.Get("X-Session-ID"))
	switch {
	case errors.Is(err, ErrNoSession):
		respondError(w, http.StatusUnauthorized, err.Error())
	case err != nil:
		s.logger.Error("status failed", "error", err)
		respondError(w, http.StatusInternalServerError, "status failed")
	default:
		respondJSON(w, http.StatusOK, statusResponse{Status: status})
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}
