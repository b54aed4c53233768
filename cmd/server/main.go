// Package main provides a local HTTP server for development and testing.
// It serves the same handlers the Lambda functions run, plus a direct CSV
// upload endpoint and Prometheus metrics.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"auto-credit-engine/internal/handlers"
	"auto-credit-engine/internal/utils"
)

// Response represents a standard API response
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Server holds the handlers mounted on the mux.
type Server struct {
	deps      *handlers.Dependencies
	processor *handlers.CSVProcessorHandler
}

func main() {
	defer utils.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	deps, err := handlers.LoadDependencies(ctx, handlers.Options{
		WithS3:     os.Getenv("S3_BUCKET") != "",
		Registerer: registry,
	})
	if err != nil {
		utils.GetLogger().Fatal("Failed to initialize dependencies", zap.Error(err))
	}
	defer deps.Close()
	logger := deps.Logger

	var files handlers.BatchFiles
	if deps.S3 != nil {
		files = deps.S3
	}
	server := &Server{
		deps:      deps,
		processor: handlers.NewCSVProcessorHandler(files, deps.Service),
	}

	health := handlers.NewHealthHandler(deps.HealthChecker())
	decisions := handlers.NewDecisionHandler(deps.Service, deps.DecisionLookup())
	simulation := handlers.NewSimulationHandler(deps.Engine)

	mux := http.NewServeMux()

	mux.Handle("/health", handlers.HTTP(health.Handle))
	mux.Handle("/api/health", handlers.HTTP(health.Handle))

	mux.Handle("/api/decisions", handlers.HTTP(decisions.Handle))
	mux.Handle("/api/decisions/{id}", handlers.HTTP(decisions.Handle))

	mux.Handle("/api/installments", handlers.HTTP(simulation.Handle))

	if deps.S3 != nil {
		presign := handlers.NewPresignedURLHandler(deps.S3)
		mux.Handle("/api/presigned-url", handlers.HTTP(presign.Handle))
		mux.HandleFunc("/api/process", server.processHandler)
	}

	// Direct CSV upload endpoint (no S3 round trip)
	mux.HandleFunc("/api/upload", server.uploadHandler)

	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%s", deps.Config.Port),
		Handler:           c.Handler(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("Auto credit engine API server listening",
		zap.String("addr", httpServer.Addr),
		zap.Bool("database", deps.DB != nil),
		zap.Bool("s3", deps.S3 != nil))

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	content, err := io.ReadAll(io.LimitReader(r.Body, 10<<20))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Failed to read upload"})
		return
	}

	batchID := fmt.Sprintf("local_%d", time.Now().UnixNano())
	result, err := s.processor.ProcessContent(r.Context(), batchID, string(content))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Message: result.Message, Data: result})
}

func (s *Server) processHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Key == "" {
		writeJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request"})
		return
	}

	result, err := s.processor.ProcessObject(r.Context(), req.Key)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Message: result.Message, Data: result})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
