package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/Vovarama1992/ai-service/internal/ai"
	"github.com/Vovarama1992/ai-service/internal/assistant"
	"github.com/Vovarama1992/ai-service/internal/config"
	"github.com/Vovarama1992/ai-service/internal/httpmw"
	"github.com/Vovarama1992/ai-service/internal/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer logger.Sync()

	// --- Metrics ---
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg, reg)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(httpmw.RequestID)
	r.Use(httpmw.Logger(logger))
	r.Use(middleware.Recoverer)
	r.Use(m.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", httpmw.RequestIDHeader},
	}))

	// --- Assistant module wiring ---
	aiClient := ai.NewOpenAIClient(ai.OpenAIConfig{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		BaseURL: cfg.OpenAIBaseURL,
		Timeout: cfg.OpenAITimeout,
	}, logger)
	svc := assistant.NewService(aiClient, m, logger)
	handler := assistant.NewHandler(svc, logger)

	assistant.RegisterRoutes(r, handler)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr), zap.String("model", cfg.OpenAIModel))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	// вызовы провайдера могут длиться до OpenAITimeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.OpenAITimeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
	logger.Info("stopped")
}
