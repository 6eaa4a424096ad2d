// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"match-rating-engine/internal/apperror"
	"match-rating-engine/internal/model"
)

// GameRepository persists the per-namespace initialization marker. The row
// is the single piece of stored authority state; everything else about a
// capability is re-derived per call.
type GameRepository struct {
	pool *pgxpool.Pool
}

// NewGameRepository creates a new GameRepository instance.
func NewGameRepository(pool *pgxpool.Pool) *GameRepository {
	return &GameRepository{pool: pool}
}

// Create records the initialization marker for a namespace.
// Returns apperror.ErrAlreadyExists if the namespace is already initialized.
func (r *GameRepository) Create(ctx context.Context, namespace string, admin model.Address) (*model.Game, error) {
	const query = `
		INSERT INTO games (namespace, admin, initialized_at)
		VALUES ($1, $2, NOW())
		RETURNING namespace, admin, initialized_at
	`

	var game model.Game
	err := r.pool.QueryRow(ctx, query, namespace, admin).Scan(
		&game.Namespace,
		&game.Admin,
		&game.InitializedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("game %q: %w", namespace, apperror.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	return &game, nil
}

// Get retrieves an initialized namespace.
// Returns apperror.ErrNotFound if the namespace was never initialized.
func (r *GameRepository) Get(ctx context.Context, namespace string) (*model.Game, error) {
	const query = `
		SELECT namespace, admin, initialized_at
		FROM games
		WHERE namespace = $1
	`

	var game model.Game
	err := r.pool.QueryRow(ctx, query, namespace).Scan(
		&game.Namespace,
		&game.Admin,
		&game.InitializedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("game %q: %w", namespace, apperror.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return &game, nil
}

// Exists checks whether a namespace has been initialized.
func (r *GameRepository) Exists(ctx context.Context, namespace string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM games WHERE namespace = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, namespace).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check game existence: %w", err)
	}
	return exists, nil
}
