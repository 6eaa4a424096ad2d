package service

import (
	"context"

	"match-rating-engine/internal/addr"
	"match-rating-engine/internal/model"
	"match-rating-engine/internal/repository"
)

// Engine is the read API exposed to external callers. Reads take no
// capability and are lock-free.
type Engine struct {
	games   *repository.GameRepository
	ratings *RatingService
	matches *MatchService
}

// NewEngine creates a new Engine instance.
func NewEngine(games *repository.GameRepository, ratings *RatingService, matches *MatchService) *Engine {
	return &Engine{
		games:   games,
		ratings: ratings,
		matches: matches,
	}
}

// GetRating returns a player's score, wins, and losses.
// Fails apperror.ErrNotFound if the player has no record.
func (e *Engine) GetRating(ctx context.Context, namespace string, player model.Address) (score, wins, losses int64, err error) {
	rec, err := e.ratings.GetRating(ctx, namespace, player)
	if err != nil {
		return 0, 0, 0, err
	}
	return rec.Score, rec.Wins, rec.Losses, nil
}

// HasRatingRecord reports whether a player holds a rating record.
func (e *Engine) HasRatingRecord(ctx context.Context, namespace string, player model.Address) (bool, error) {
	return e.ratings.HasRecord(ctx, namespace, player)
}

// GetMatch returns a match's teams and outcome.
func (e *Engine) GetMatch(ctx context.Context, namespace string, matchAddr model.Address) ([][]model.Address, *int, error) {
	m, err := e.matches.GetMatch(ctx, namespace, matchAddr)
	if err != nil {
		return nil, nil, err
	}
	return m.Teams, m.Outcome, nil
}

// GetRegistryAddress returns the rating registry collection address for a
// namespace, derived from the recorded admin.
// Fails apperror.ErrNotFound if the namespace is uninitialized.
func (e *Engine) GetRegistryAddress(ctx context.Context, namespace string) (model.Address, error) {
	game, err := e.games.Get(ctx, namespace)
	if err != nil {
		return "", err
	}
	return addr.RatingRegistry(game.Admin, namespace), nil
}
