// Package main is the entry point for the rating and match engine.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"match-rating-engine/internal/apperror"
	"match-rating-engine/internal/authority"
	"match-rating-engine/internal/config"
	"match-rating-engine/internal/factory"
	"match-rating-engine/internal/model"
	"match-rating-engine/internal/pkg/db"
	"match-rating-engine/internal/pkg/lock"
	"match-rating-engine/internal/repository"
	"match-rating-engine/internal/service"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().Int("games", len(cfg.Games)).Msg("Configuration loaded successfully")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	// Run database migrations
	if err := repository.Migrate(ctx, dbPool.Pool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize repositories
	gameRepo := repository.NewGameRepository(dbPool.Pool)
	ratingRepo := repository.NewRatingRepository(dbPool.Pool)
	matchRepo := repository.NewMatchRepository(dbPool.Pool)

	// Initialize the entity factory and namespace lock
	entityFactory := factory.New(dbPool.Pool)
	nsLock := lock.NewNamespaceLock()

	// Initialize the authority registry from configured designations
	authRegistry := authority.NewRegistry(cfg.Designations(), gameRepo)

	// Initialize services
	ratingService := service.NewRatingService(dbPool.Pool, entityFactory, ratingRepo, nsLock)
	matchService := service.NewMatchService(dbPool.Pool, entityFactory, matchRepo, ratingService, nsLock)
	engine := service.NewEngine(gameRepo, ratingService, matchService)

	// Bootstrap every configured namespace: initialize the game marker and
	// both registries, acting as the designated admin. Already-initialized
	// namespaces are left untouched.
	for _, game := range cfg.Games {
		if err := bootstrapGame(ctx, authRegistry, ratingService, matchService, game); err != nil {
			log.Fatal().Err(err).Str("namespace", game.Namespace).Msg("Failed to bootstrap game")
		}
	}

	for _, game := range cfg.Games {
		address, err := engine.GetRegistryAddress(ctx, game.Namespace)
		if err != nil {
			log.Fatal().Err(err).Str("namespace", game.Namespace).Msg("Failed to resolve registry address")
		}
		log.Info().
			Str("namespace", game.Namespace).
			Str("registry", string(address)).
			Msg("Game ready")
	}

	log.Info().Msg("Engine ready")

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	log.Info().Msg("Engine stopped gracefully")
}

// bootstrapGame initializes one configured namespace and its registries,
// tolerating namespaces that were initialized on a previous run.
func bootstrapGame(
	ctx context.Context,
	auth *authority.Registry,
	ratings *service.RatingService,
	matches *service.MatchService,
	game config.GameConfig,
) error {
	admin := model.Address(game.Admin)

	authCap, err := auth.Initialize(ctx, admin, game.Namespace)
	if errors.Is(err, apperror.ErrAlreadyExists) {
		authCap, err = auth.AuthorityFor(ctx, admin, game.Namespace)
	}
	if err != nil {
		return err
	}

	if _, err := ratings.InitializeRegistry(ctx, authCap); err != nil && !errors.Is(err, apperror.ErrAlreadyExists) {
		return err
	}
	if _, err := matches.InitializeRegistry(ctx, authCap); err != nil && !errors.Is(err, apperror.ErrAlreadyExists) {
		return err
	}
	return nil
}
