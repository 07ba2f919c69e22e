package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/agenthands/factcheck/internal/config"
	"github.com/agenthands/factcheck/internal/core"
	"github.com/agenthands/factcheck/internal/driver"
	"github.com/agenthands/factcheck/internal/llm"
	"github.com/agenthands/factcheck/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Printf("Could not load %s: %v. Using defaults", cfgPath, err)
		cfg = config.Default()
	}
	cfg.ApplyEnv()

	if err := config.InitLogger(cfg.Log); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zap.L().Sync()

	if err := cfg.Validate(); err != nil {
		zap.L().Fatal("Invalid configuration", zap.Error(err))
	}

	ctx := context.Background()
	providers, closeProviders, err := llm.NewProviders(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize providers", zap.Error(err))
	}
	defer closeProviders()

	var drv driver.GraphDriver
	if cfg.Memgraph.URI != "" {
		d, err := driver.NewMemgraphDriver(ctx, cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password)
		if err != nil {
			zap.L().Fatal("Failed to connect to Memgraph", zap.Error(err))
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = d.Close(closeCtx)
		}()
		if err := d.BuildIndices(ctx); err != nil {
			zap.L().Warn("Failed to build indices", zap.Error(err))
		}
		drv = d
	}

	evaluator, err := core.NewEvaluator(cfg, providers, drv)
	if err != nil {
		zap.L().Fatal("Failed to create evaluator", zap.Error(err))
	}

	r := server.NewServer(evaluator).SetupRouter()

	zap.L().Info("Starting server", zap.String("port", cfg.Server.Port))
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		zap.L().Fatal("Server stopped", zap.Error(err))
	}
}
