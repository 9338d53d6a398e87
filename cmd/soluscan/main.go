package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/soluscan/soluscan/internal/chem/feature"
	"github.com/soluscan/soluscan/internal/config"
	logpkg "github.com/soluscan/soluscan/internal/logger"
	"github.com/soluscan/soluscan/internal/metrics"
	"github.com/soluscan/soluscan/internal/model"
	"github.com/soluscan/soluscan/internal/render/heatmap"
	chiTransport "github.com/soluscan/soluscan/internal/transport/chi"
	healthuc "github.com/soluscan/soluscan/internal/usecase/health"
	inferenceuc "github.com/soluscan/soluscan/internal/usecase/inference"
	screeninguc "github.com/soluscan/soluscan/internal/usecase/screening"
	"github.com/soluscan/soluscan/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting soluscan API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("checkpoint", cfg.Model.CheckpointPath),
	)

	// Register inference metrics explicitly (no init())
	metrics.RegisterInferenceMetrics()

	featurizer := feature.New(
		time.Duration(cfg.Inference.GraphCacheTTLSec)*time.Second,
		metrics.GraphCacheTotal,
	)

	// A broken checkpoint must not kill the process: the server starts and
	// reports degraded health, /predict and /screen answer 503.
	// Gotcha: assign through a concrete-typed variable only on success, a
	// typed nil pointer wrapped in the interface would not compare == nil.
	var predictor inferenceuc.Predictor
	if ckpt, err := model.Load(cfg.Model.CheckpointPath); err != nil {
		logger.Error("Failed to load checkpoint, serving unready", zap.Error(err))
	} else if m, err := model.NewFromCheckpoint(ckpt); err != nil {
		logger.Error("Failed to build model, serving unready", zap.Error(err))
	} else {
		predictor = m
	}

	// Create use case services
	infSvc := inferenceuc.New(featurizer, predictor, logger).
		WithWorkers(cfg.Inference.Workers).
		WithMaxBatchSize(cfg.Inference.MaxBatchSize)
	if predictor != nil {
		if err := infSvc.SmokeTest(
			cfg.Model.SmokeSoluteSMILES,
			cfg.Model.SmokeSolventSMILES,
			cfg.Model.SmokeTemperatureK,
		); err != nil {
			logger.Error("Model smoke test failed, serving unready", zap.Error(err))
		}
	}

	screenSvc := screeninguc.New(infSvc, featurizer, heatmap.New(), logger)
	healthSvc := healthuc.New(infSvc)

	// Create chi server
	server := chiTransport.NewServer(infSvc, screenSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
