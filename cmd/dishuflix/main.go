package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"dishuflix/internal/api"
	"dishuflix/internal/catalog"
	"dishuflix/internal/clock"
	"dishuflix/internal/config"
	"dishuflix/internal/onboarding"
	"dishuflix/internal/payment"
	"dishuflix/internal/search"
	"dishuflix/internal/server"
	"dishuflix/internal/session"
	"dishuflix/internal/storage"
	"dishuflix/internal/userstate"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger := setupLogger(cfg.Logging)

	logger.Info().
		Str("version", api.Version).
		Msg("starting dishuflix")

	store, err := storage.Open(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("failed to initialize storage")
	}
	defer store.Close()

	categories, err := loadCatalog(cfg.Catalog)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load catalog")
	}
	index := catalog.NewIndex(categories)

	clk := clock.Real()

	// Persisted flags are read once here and handed to the gate and the session.
	state := userstate.Load(store, cfg.Search.RecentLimit, logger)

	gate, err := onboarding.New(state, cfg.Onboarding, clk, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize onboarding")
	}

	engine, err := search.New(index, cfg.Search, clk, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize search")
	}

	provider, err := payment.New(cfg.Payment, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize payment provider")
	}

	sess := session.New(session.Deps{
		Config:  cfg.Session,
		Payment: cfg.Payment,
		Index:   index,
		State:   state,
		Gate:    gate,
		Search:  engine,
		Pay:     provider,
		Clock:   clk,
		Logger:  logger,
	})

	srv := server.New(cfg, logger, sess)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info().Msg("received shutdown signal")
		cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("shutdown error")
		}
	}()

	if err := srv.Start(); err != nil {
		logger.Error().Err(err).Msg("server error")
	}

	logger.Info().Msg("server stopped")
}

func loadCatalog(cfg config.CatalogConfig) ([]catalog.Category, error) {
	if cfg.Path == "" {
		return catalog.Embedded()
	}
	return catalog.LoadFile(cfg.Path)
}

func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(level)

	if cfg.Pretty {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().
			Timestamp().
			Logger()
	}

	return zerolog.New(os.Stdout).
		With().
		Timestamp().
		Logger()
}
