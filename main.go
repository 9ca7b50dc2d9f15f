package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/guess/internal/config"
	"github.com/robalobadob/guess/internal/game"
	"github.com/robalobadob/guess/internal/httpserver"
	"github.com/robalobadob/guess/internal/session"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	setupLogging(cfg)

	if cfg.UsingDefaultSecret() {
		log.Warn().Msg("SECRET_KEY not set; using development default")
	}

	sessions, err := session.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create session store")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if mem, ok := sessions.(*session.MemoryStore); ok {
		go mem.Run(ctx, time.Minute)
	}

	srv := httpserver.New(cfg, game.NewEngine(game.CryptoPicker{}), sessions)
	log.Info().
		Str("addr", cfg.Addr).
		Str("sessions", cfg.SessionBackend).
		Msg("starting guess server")
	if err := srv.Start(ctx, cfg.Addr); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// setupLogging applies LOG_LEVEL and picks console output outside production.
func setupLogging(cfg config.Config) {
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	} else {
		log.Warn().Str("level", cfg.LogLevel).Msg("unknown LOG_LEVEL; keeping default")
	}
	if !cfg.Production {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}
