package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"roomchat/internal/app"
	"roomchat/internal/config"
	"roomchat/internal/log"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	bootLog := log.New("info")

	cfg, err := config.Load(bootLog, *configPath)
	if err != nil {
		bootLog.Fatal().Err(err).Msg("load config")
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	logger := log.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application := app.New(cfg, logger)

	logger.Info().Str("addr", cfg.Addr).Msg("starting roomchat server")
	if err := application.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server exited with error")
	}
	logger.Info().Msg("server stopped")
}
