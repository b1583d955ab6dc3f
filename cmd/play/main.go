// Package main runs a single-player game on the local terminal.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/cory-johannsen/quartermaster/internal/app"
	"github.com/cory-johannsen/quartermaster/internal/config"
	"github.com/cory-johannsen/quartermaster/internal/frontend/handlers"
	"github.com/cory-johannsen/quartermaster/internal/observability"
)

func main() {
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
	// Keep the terminal for game text; only warnings reach stderr.
	cfg.Logging.Level = "warn"
	cfg.Logging.Format = "console"

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

	proc := svc.NewProcessor()
	defer proc.Close()
	if err := handlers.RunREPL(ctx, proc, os.Stdin, os.Stdout); err != nil {
		logger.Error("terminal session ended", zap.Error(err))
	}
}
