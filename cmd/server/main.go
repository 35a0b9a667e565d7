package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/textml/classifier-service/internal/config"
	"github.com/textml/classifier-service/internal/model"
	"github.com/textml/classifier-service/internal/repository"
	"github.com/textml/classifier-service/internal/services"
	"github.com/textml/classifier-service/internal/store"
	"github.com/textml/classifier-service/pkg/server"
)

func main() {
	var envFile = flag.String("env", "", "Optional .env file to load")
	flag.Parse()

	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load(*envFile)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize database
	_ = os.MkdirAll(filepath.Dir(cfg.DBPath), 0755)
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Log startup event
	db.Event("info", "startup", "Server starting", map[string]interface{}{
		"model_id":  cfg.ModelID,
		"http_addr": cfg.HTTPAddr,
		"db_path":   cfg.DBPath,
	})

	// Initialize repository
	repo := repository.NewSQLiteRepository(db)

	// Log model loading start
	db.Event("info", "model.loading", "Model loading started", map[string]interface{}{
		"model_id":  cfg.ModelID,
		"model_dir": cfg.ModelDir,
	})

	// Load model (with auto-download if missing). Failure here is fatal:
	// the process exits non-zero and never starts serving.
	clf, err := model.Load(model.Config{
		ModelID:  cfg.ModelID,
		ModelDir: cfg.ModelDir,
	})
	if err != nil {
		db.Event("error", "model.failed", "Model loading failed", map[string]interface{}{
			"model_id": cfg.ModelID,
			"error":    err.Error(),
		})
		slog.Error("Failed to load model", "error", err)
		os.Exit(1)
	}
	defer clf.Close()

	// Log model loading success
	db.Event("info", "model.loaded", "Model loaded successfully", map[string]interface{}{
		"model_id": cfg.ModelID,
		"labels":   clf.Labels(),
	})

	// Initialize services
	inferenceService := services.NewInferenceService(clf, repo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start HTTP server
	httpServer := server.NewServer(cfg.HTTPAddr, cfg.MaxBodyBytes, inferenceService)

	db.Event("info", "server.ready", "Server ready to accept requests", map[string]interface{}{
		"http_addr": cfg.HTTPAddr,
		"model_id":  cfg.ModelID,
		"nats_url":  cfg.NatsURL,
	})

	go func() {
		if err := httpServer.Start(ctx); err != nil {
			db.Event("error", "http.failed", "HTTP server failed", map[string]interface{}{
				"error": err.Error(),
			})
			slog.Error("HTTP server failed", "error", err)
		}
	}()

	// NATS transport and heartbeats are optional; enabled by NATS_URL.
	if cfg.NatsURL != "" {
		natsService, err := services.NewNATSService(cfg, inferenceService)
		if err != nil {
			db.Event("error", "nats.failed", "NATS service initialization failed", map[string]interface{}{
				"nats_url": cfg.NatsURL,
				"error":    err.Error(),
			})
			slog.Error("Failed to create NATS service", "error", err)
			os.Exit(1)
		}

		healthService := services.NewHealthService(natsService.GetConnection(), cfg, inferenceService)

		go func() {
			if err := natsService.Start(ctx); err != nil {
				db.Event("error", "nats.failed", "NATS service failed", map[string]interface{}{
					"error": err.Error(),
				})
				slog.Error("NATS service failed", "error", err)
			}
		}()

		go func() {
			if err := healthService.Start(ctx); err != nil {
				db.Event("error", "health.failed", "Health service failed", map[string]interface{}{
					"error": err.Error(),
				})
				slog.Error("Health service failed", "error", err)
			}
		}()
	}

	// Graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	slog.Info("Shutting down server")
}
