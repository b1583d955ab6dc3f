package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/cory-johannsen/quartermaster/internal/game/command"
	"github.com/cory-johannsen/quartermaster/internal/game/pricing"
	"github.com/cory-johannsen/quartermaster/internal/storage"
)

// CommandRequest is the body of POST /api/v1/sessions/{id}/commands.
type CommandRequest struct {
	Line string `json:"line" validate:"max=1024"`
}

// SessionResponse is returned when a session opens.
type SessionResponse struct {
	ID       string            `json:"id"`
	Response *command.Response `json:"response"`
}

// PricesResponse lists every priced item.
type PricesResponse struct {
	SellPercent int             `json:"sell_percent"`
	Prices      []pricing.Entry `json:"prices"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := storage.Ping(r.Context(), s.store); err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePrices(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, PricesResponse{
		SellPercent: s.prices.SellPercent(),
		Prices:      s.prices.Entries(),
	})
}

func (s *Server) handleOpenSession(w http.ResponseWriter, _ *http.Request) {
	sess, err := s.sessions.TryOpen(s.cfg.MaxSessions)
	if err != nil {
		s.logger.Warn("session limit reached", zap.Int("max_sessions", s.cfg.MaxSessions))
		w.Header().Set("Retry-After", "30")
		respondError(w, http.StatusServiceUnavailable, "too many open sessions")
		return
	}
	respondJSON(w, http.StatusCreated, SessionResponse{ID: sess.ID, Response: sess.Greeting()})
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.Get(chi.URLParam(r, "id"))
	if !ok {
		respondError(w, http.StatusNotFound, "session not found")
		return
	}

	var req CommandRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request", Fields: validationFields(err)})
		return
	}

	resp, err := sess.Handle(r.Context(), req.Line)
	if err != nil {
		respondError(w, http.StatusNotFound, "session not found")
		return
	}
	if resp.Err != nil {
		s.logger.Debug("command rejected", zap.String("session", sess.ID), zap.Error(resp.Err))
	}
	if resp.Quit {
		_ = s.sessions.Close(sess.ID)
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Close(chi.URLParam(r, "id")); err != nil {
		respondError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func validationFields(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"body": "invalid"}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "max":
			out[field] = fmt.Sprintf("must be at most %s characters", fe.Param())
		default:
			out[field] = "invalid value"
		}
	}
	return out
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, ErrorResponse{Error: msg})
}
