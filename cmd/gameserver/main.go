// Package main runs the trading game server with telnet and HTTP frontends.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/cory-johannsen/quartermaster/internal/app"
	"github.com/cory-johannsen/quartermaster/internal/config"
	"github.com/cory-johannsen/quartermaster/internal/observability"
	"github.com/cory-johannsen/quartermaster/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	envFile := flag.String("env", ".env", "optional dotenv file loaded before configuration")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !os.IsNotExist(err) {
		log.Fatalf("loading %s: %v", *envFile, err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging, cfg.Server.Name)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	svc, cleanup, err := app.InitializeServices(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("initializing services", zap.Error(err))
	}
	defer cleanup()

	lifecycle := server.NewLifecycle(logger)
	// Registered first so open sessions are released after the frontends stop.
	lifecycle.Add("sessions", &server.FuncService{
		StartFn: func() error { return nil },
		StopFn:  svc.Sessions.CloseAll,
	})
	if cfg.Server.EnableTelnet {
		lifecycle.Add("telnet", svc.Telnet)
	}
	if cfg.Server.EnableHTTP {
		lifecycle.Add("http", svc.HTTP)
	}
	if lifecycle.Len() == 1 {
		logger.Fatal("no frontends enabled; set server.enable_telnet or server.enable_http")
	}

	logger.Info("game server initialized",
		zap.String("name", cfg.Server.Name),
		zap.String("storage", cfg.Storage.Backend),
		zap.Bool("telnet", cfg.Server.EnableTelnet),
		zap.Bool("http", cfg.Server.EnableHTTP),
		zap.Duration("startup", time.Since(start)),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Error("game server exited with error", zap.Error(err))
		cleanup()
		logger.Sync()
		os.Exit(1)
	}
}
