package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"guesthouse/config"
	"guesthouse/di"
	"guesthouse/shared/logger"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.Configure(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	worker, err := di.InitializeWorker()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize worker")
	}

	log.Info().Msg("worker started")

	if err := worker.Run(ctx); err != nil {
		logger.ErrorWithStack(err)
		os.Exit(1)
	}

	log.Info().Msg("worker stopped")
}
