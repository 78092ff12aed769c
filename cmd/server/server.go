package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/steveyiyo/moodlens-backend/internal/config"
	"github.com/steveyiyo/moodlens-backend/internal/core/face/cascade"
	"github.com/steveyiyo/moodlens-backend/internal/core/registry"
	"github.com/steveyiyo/moodlens-backend/internal/core/stt"
	"github.com/steveyiyo/moodlens-backend/internal/core/textemo"
	"github.com/steveyiyo/moodlens-backend/internal/core/video"
	h "github.com/steveyiyo/moodlens-backend/internal/http"
	"github.com/steveyiyo/moodlens-backend/internal/logging"
	"github.com/steveyiyo/moodlens-backend/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	logger, logCloser := logging.New(cfg.Log)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		_ = logCloser.Close()
		os.Exit(1)
	}
	_ = logCloser.Close()
}

func run(cfg config.Config, logger *slog.Logger) error {
	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(promReg)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	detector, err := cascade.Load(cfg.Face.CascadePath)
	if err != nil {
		return fmt.Errorf("face detector: %w", err)
	}

	transcriber, err := newTranscriber(cfg.Audio)
	if err != nil {
		_ = detector.Close()
		return fmt.Errorf("transcriber: %w", err)
	}

	loader := textemo.NewHFLoader(textemo.HFOptions{
		URL:        cfg.Text.URL,
		Token:      cfg.Text.Token,
		HTTPClient: &http.Client{Timeout: cfg.Text.Timeout},
		CacheTTL:   cfg.Text.CacheTTL,
		Logger:     logging.Module(logger, "textemo"),
	}, cfg.Text.LoadTimeout)

	reg := registry.New(detector, transcriber, loader, logging.Module(logger, "registry"))
	reg.OnLoad = m.ObserveLoad
	defer reg.Close()

	if cfg.Text.Preload {
		if err := reg.Warmup(context.Background()); err != nil {
			logger.Warn("text classifier warmup failed", "error", err)
		}
	}

	r := h.NewRouter(cfg, h.Deps{
		Registry: reg,
		Metrics:  m,
		Strategy: video.NewRandomStrategy(),
		Logger:   logger,
	})
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr, "stt_backend", cfg.Audio.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newTranscriber(cfg config.Speech) (stt.Transcriber, error) {
	switch cfg.Backend {
	case "gemini":
		return stt.NewGeminiTranscriber(stt.GeminiOptions{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			Timeout: cfg.Timeout,
		})
	case "http", "":
		return stt.NewHTTPTranscriber(cfg.ASRURL, &http.Client{Timeout: cfg.Timeout}), nil
	default:
		return nil, fmt.Errorf("unknown STT backend %q", cfg.Backend)
	}
}
