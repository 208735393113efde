package main

import (
	"os"

	"MediCall/config"
	"MediCall/logger"
	"MediCall/server"

	"github.com/rs/zerolog/log"
)

var (
	startServer = server.Start
	exit        = os.Exit
)

func main() {
	if err := run(); err != nil {
		log.Error().Err(err).Msg("Server stopped")
		exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Setup(cfg.LogLevel, !cfg.IsProduction())
	if cfg.JWTSecret == "change-me" && cfg.IsProduction() {
		log.Warn().Msg("JWT_SECRET is the default value")
	}
	return startServer(server.GetDefaultOptions(cfg))
}
