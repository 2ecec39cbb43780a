package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"salesboard/internal/app/server"
	"salesboard/internal/platform/config"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := server.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Warn().Err(err).Msg("shutdown cleanup failed")
		}
	}()

	if err := app.Run(ctx); err != nil {
		log.Error().Err(err).Msg("server stopped")
	}
}
