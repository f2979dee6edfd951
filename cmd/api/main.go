package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/calebmoran/questforge/internal/config"
	"github.com/calebmoran/questforge/internal/game"
	"github.com/calebmoran/questforge/internal/handlers"
	"github.com/calebmoran/questforge/internal/logger"
	"github.com/calebmoran/questforge/internal/middleware"
	"github.com/calebmoran/questforge/internal/services"
	"github.com/calebmoran/questforge/internal/storage"
	"github.com/calebmoran/questforge/pkg/dice"
)

func main() {
	// Optional local overrides; absence is not an error
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Setup(cfg)

	log.Info("Starting QuestForge API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"llm_provider", cfg.LLMProvider,
		"model_name", cfg.ModelName)

	var oracle services.NarrativeOracle
	switch strings.ToLower(cfg.LLMProvider) {
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			log.Error("Anthropic API key is required when using anthropic provider")
			os.Exit(1)
		}
		oracle = services.NewAnthropicOracle(cfg.AnthropicAPIKey, cfg.ModelName, cfg.OracleTimeout, log)
		log.Info("Using Anthropic narrative oracle")
	case "mock":
		// Canned narration, useful for local play and CI
		oracle = services.NewMockOracle()
		log.Info("Using mock narrative oracle")
	default:
		log.Error("Invalid LLM provider specified", "provider", cfg.LLMProvider, "supported", []string{"anthropic", "mock"})
		os.Exit(1)
	}

	store := storage.NewRedisStorage(cfg.RedisURL, cfg.DataDir, log)
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()

	if err := store.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	initCtx, initCancel := context.WithTimeout(context.Background(), time.Minute)
	defer initCancel()
	if err := oracle.InitModel(initCtx, cfg.ModelName); err != nil {
		log.Error("Failed to initialize oracle model", "error", err, "model", cfg.ModelName)
		os.Exit(1)
	}

	policy := game.DefaultPolicy()
	policy.OracleTimeout = cfg.OracleTimeout
	engine := game.NewService(store, oracle, dice.New(), policy, log)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(store, oracle, log)
	mux.Handle("/health", healthHandler)

	actionHandler := handlers.NewActionHandler(engine, log)
	mux.Handle("/v1/action", actionHandler)

	campaignHandler := handlers.NewCampaignHandler(engine, store, log)
	mux.Handle("/v1/campaigns", campaignHandler)
	mux.Handle("/v1/campaigns/", campaignHandler)

	itemsHandler := handlers.NewItemsHandler(store, log)
	mux.Handle("/v1/items", itemsHandler)
	mux.Handle("/v1/items/", itemsHandler)

	enemiesHandler := handlers.NewEnemiesHandler(store, log)
	mux.Handle("/v1/enemies", enemiesHandler)
	mux.Handle("/v1/enemies/", enemiesHandler)

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}
