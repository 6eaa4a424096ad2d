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

// RatingRepository persists rating registries and rating records.
// Membership is unique per (namespace, player); records are never deleted.
type RatingRepository struct {
	pool *pgxpool.Pool
}

// NewRatingRepository creates a new RatingRepository instance.
func NewRatingRepository(pool *pgxpool.Pool) *RatingRepository {
	return &RatingRepository{pool: pool}
}

// CreateRegistry inserts the rating registry row for a namespace.
// Returns apperror.ErrAlreadyExists if the namespace already has one.
func (r *RatingRepository) CreateRegistry(ctx context.Context, q Querier, namespace string, collection model.Address) (*model.RatingRegistry, error) {
	const query = `
		INSERT INTO rating_registries (namespace, collection_address, created_at)
		VALUES ($1, $2, NOW())
		RETURNING namespace, collection_address, created_at
	`

	var registry model.RatingRegistry
	err := q.QueryRow(ctx, query, namespace, collection).Scan(
		&registry.Namespace,
		&registry.Collection,
		&registry.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("rating registry %q: %w", namespace, apperror.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("failed to create rating registry: %w", err)
	}

	return &registry, nil
}

// GetRegistry retrieves the rating registry for a namespace.
// Returns apperror.ErrNotFound if absent.
func (r *RatingRepository) GetRegistry(ctx context.Context, namespace string) (*model.RatingRegistry, error) {
	const query = `
		SELECT namespace, collection_address, created_at
		FROM rating_registries
		WHERE namespace = $1
	`

	var registry model.RatingRegistry
	err := r.pool.QueryRow(ctx, query, namespace).Scan(
		&registry.Namespace,
		&registry.Collection,
		&registry.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("rating registry %q: %w", namespace, apperror.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get rating registry: %w", err)
	}

	return &registry, nil
}

// CreateRecord inserts a freshly minted rating record.
// Returns apperror.ErrAlreadyExists if the player already holds one.
func (r *RatingRepository) CreateRecord(ctx context.Context, q Querier, rec *model.RatingRecord) (*model.RatingRecord, error) {
	const query = `
		INSERT INTO rating_records (entity_address, namespace, player, score, wins, losses, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING entity_address, namespace, player, score, wins, losses, created_at, updated_at
	`

	var created model.RatingRecord
	err := q.QueryRow(ctx, query, rec.Entity, rec.Namespace, rec.Player, rec.Score, rec.Wins, rec.Losses).Scan(
		&created.Entity,
		&created.Namespace,
		&created.Player,
		&created.Score,
		&created.Wins,
		&created.Losses,
		&created.CreatedAt,
		&created.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("rating record for %s in %q: %w", rec.Player, rec.Namespace, apperror.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("failed to create rating record: %w", err)
	}

	return &created, nil
}

// GetRecord retrieves a player's rating record.
// Returns apperror.ErrNotFound if the player has no record.
func (r *RatingRepository) GetRecord(ctx context.Context, namespace string, player model.Address) (*model.RatingRecord, error) {
	const query = `
		SELECT entity_address, namespace, player, score, wins, losses, created_at, updated_at
		FROM rating_records
		WHERE namespace = $1 AND player = $2
	`

	var rec model.RatingRecord
	err := r.pool.QueryRow(ctx, query, namespace, player).Scan(
		&rec.Entity,
		&rec.Namespace,
		&rec.Player,
		&rec.Score,
		&rec.Wins,
		&rec.Losses,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("rating record for %s in %q: %w", player, namespace, apperror.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get rating record: %w", err)
	}

	return &rec, nil
}

// RecordExists checks whether a player holds a rating record in a namespace.
func (r *RatingRepository) RecordExists(ctx context.Context, namespace string, player model.Address) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM rating_records WHERE namespace = $1 AND player = $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, namespace, player).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check rating record existence: %w", err)
	}
	return exists, nil
}

// ApplyResult folds one match outcome into a player's record: a win adds
// the delta and bumps wins, a loss bumps losses and subtracts the delta
// saturating at zero. Returns apperror.ErrNotFound if the player has no
// record.
func (r *RatingRepository) ApplyResult(ctx context.Context, q Querier, namespace string, player model.Address, didWin bool) error {
	const winQuery = `
		UPDATE rating_records
		SET score = score + $3, wins = wins + 1, updated_at = NOW()
		WHERE namespace = $1 AND player = $2
	`
	const lossQuery = `
		UPDATE rating_records
		SET score = GREATEST(score - $3, 0), losses = losses + 1, updated_at = NOW()
		WHERE namespace = $1 AND player = $2
	`

	query := lossQuery
	if didWin {
		query = winQuery
	}

	result, err := q.Exec(ctx, query, namespace, player, model.RatingDelta)
	if err != nil {
		return fmt.Errorf("failed to apply match result: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("rating record for %s in %q: %w", player, namespace, apperror.ErrNotFound)
	}
	return nil
}
