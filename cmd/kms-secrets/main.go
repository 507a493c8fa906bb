package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Checker-Finance/kms-secrets/cmd/kms-secrets/commands"
	"github.com/Checker-Finance/kms-secrets/pkg/config"
	"github.com/Checker-Finance/kms-secrets/pkg/logger"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Load configuration ---
	cfg := config.Load()

	logger.Init(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	defer logger.Sync()

	app := commands.NewApp(cfg, logger.L())
	root := commands.NewRootCommand(app, version)

	if err := root.ExecuteContext(ctx); err != nil {
		logger.Sync()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
