// Package chi exposes the prediction and screening services over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/soluscan/soluscan/internal/domain"
	healthuc "github.com/soluscan/soluscan/internal/usecase/health"
	inferenceuc "github.com/soluscan/soluscan/internal/usecase/inference"
	screeninguc "github.com/soluscan/soluscan/internal/usecase/screening"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the HTTP API server.
type Server struct {
	inference     *inferenceuc.Service
	screening     *screeninguc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	inference *inferenceuc.Service,
	screening *screeninguc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		inference: inference,
		screening: screening,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidStructure, http.StatusBadRequest, codeInvalidStructure),
		sentinelHandler(domain.ErrInvalidTemperature, http.StatusBadRequest, codeInvalidTemperature),
		sentinelHandler(domain.ErrEmptyBatch, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrBatchTooLarge, http.StatusBadRequest, codeBatchTooLarge),
		sentinelHandler(domain.ErrModelUnavailable, http.StatusServiceUnavailable, codeModelUnavailable),
	}
	return s
}

// Register mounts all routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/predict", s.Predict)
		r.Post("/screen", s.Screen)
	})
}

// Predict handles POST /api/v1/predict.
func (s *Server) Predict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	queries := make([]domain.PredictionQuery, len(req.Queries))
	for i, q := range req.Queries {
		queries[i] = domain.PredictionQuery{
			SoluteSMILES:  q.SoluteSMILES,
			SolventSMILES: q.SolventSMILES,
			TemperatureK:  q.TemperatureK,
		}
	}

	results, err := s.inference.PredictBatch(r.Context(), queries)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]predictResult, len(results))
	for i, res := range results {
		items[i] = predictResultToDTO(res)
	}
	writeJSON(w, http.StatusOK, predictResponse{
		Results:      items,
		ModelVersion: s.inference.ModelVersion(),
	})
}

// Screen handles POST /api/v1/screen.
func (s *Server) Screen(w http.ResponseWriter, r *http.Request) {
	var req screenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.SoluteSMILES == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "solute_smiles is required")
		return
	}

	report, err := s.screening.Screen(r.Context(), req.SoluteSMILES, req.SoluteName)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, screenReportToDTO(report))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check()

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	writeJSON(w, httpStatus, healthResponse{
		Status:       string(report.Status),
		ModelVersion: report.ModelVersion,
		Checks:       checks,
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

// safeDomainMessage returns the full message for client-caused sentinel errors
// and a generic message for everything else.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidStructure,
		domain.ErrInvalidTemperature,
		domain.ErrEmptyBatch,
		domain.ErrBatchTooLarge,
		domain.ErrModelUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return err.Error()
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
