// Package main serves avatar files for viewers using an HTTP asset source.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/vrmviewer/internal/config"
	"github.com/Faultbox/vrmviewer/internal/logger"
	"github.com/Faultbox/vrmviewer/internal/server"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg.Server.ModelRoot, logger.Named("server"))
	if models, err := srv.Models(); err == nil {
		logger.Info("serving models", zap.Strings("models", models))
	}

	if err := srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
		logger.Error("server error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("server stopped")
}
