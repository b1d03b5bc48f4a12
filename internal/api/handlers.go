package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/phishguard/risk-engine/internal/domain"
)

type analyzeRequest struct {
	URL string `json:"url"`
}

type reportRequest struct {
	URL     string `json:"url"`
	Comment string `json:"comment"`
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := s.engine.Analyze(r.Context(), req.URL)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// changeList adapts a list mutation to a handler taking the domain from the path
func (s *Server) changeList(mutate func(ctx context.Context, domainName string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := mutate(r.Context(), chi.URLParam(r, "domain")); err != nil {
			s.writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.engine.Lists())
	}
}

func (s *Server) report(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := s.engine.Analyze(r.Context(), req.URL)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	report, err := s.engine.Report(r.Context(), result, req.Comment)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

func (s *Server) statistics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Statistics())
}

func (s *Server) resetStatistics(w http.ResponseWriter, r *http.Request) {
	s.engine.ResetStatistics(r.Context())
	writeJSON(w, http.StatusOK, s.engine.Statistics())
}

func (s *Server) refreshIntelligence(w http.ResponseWriter, r *http.Request) {
	summary, err := s.engine.Refresh(r.Context())
	if err != nil {
		s.logger.WithError(err).Warn("Manual intelligence refresh failed")
		writeJSON(w, http.StatusBadGateway, domain.ErrorResult{Status: "error", Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) lists(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Lists())
}

// writeEngineError maps engine errors to status codes
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidURL):
		writeJSON(w, http.StatusBadRequest, domain.ErrorResult{Status: "error", Message: "Invalid URL"})
	case errors.Is(err, domain.ErrInvalidDomain):
		writeJSON(w, http.StatusBadRequest, domain.ErrorResult{Status: "error", Message: "Invalid domain"})
	default:
		s.logger.WithError(err).Error("Request failed")
		writeJSON(w, http.StatusInternalServerError, domain.ErrorResult{Status: "error", Message: "Internal error"})
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeJSON(w, http.StatusRequestEntityTooLarge, domain.ErrorResult{Status: "error", Message: "request body too large"})
			return false
		}
		writeJSON(w, http.StatusBadRequest, domain.ErrorResult{Status: "error", Message: "invalid json"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, status int, s string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(s))
}
