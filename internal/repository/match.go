package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"match-rating-engine/internal/apperror"
	"match-rating-engine/internal/model"
)

// MatchRepository persists match registries and matches. A match row's
// winner_index is written at most once; NULL means the match is still open.
type MatchRepository struct {
	pool *pgxpool.Pool
}

// NewMatchRepository creates a new MatchRepository instance.
func NewMatchRepository(pool *pgxpool.Pool) *MatchRepository {
	return &MatchRepository{pool: pool}
}

// CreateRegistry inserts the match registry row for a namespace.
// Returns apperror.ErrAlreadyExists if the namespace already has one.
func (r *MatchRepository) CreateRegistry(ctx context.Context, q Querier, namespace string, collection model.Address) (*model.MatchRegistry, error) {
	const query = `
		INSERT INTO match_registries (namespace, collection_address, next_index, created_at)
		VALUES ($1, $2, 0, NOW())
		RETURNING namespace, collection_address, next_index, created_at
	`

	var registry model.MatchRegistry
	err := q.QueryRow(ctx, query, namespace, collection).Scan(
		&registry.Namespace,
		&registry.Collection,
		&registry.NextIndex,
		&registry.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("match registry %q: %w", namespace, apperror.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("failed to create match registry: %w", err)
	}

	return &registry, nil
}

// GetRegistry retrieves the match registry for a namespace.
// Returns apperror.ErrNotFound if absent.
func (r *MatchRepository) GetRegistry(ctx context.Context, namespace string) (*model.MatchRegistry, error) {
	const query = `
		SELECT namespace, collection_address, next_index, created_at
		FROM match_registries
		WHERE namespace = $1
	`

	var registry model.MatchRegistry
	err := r.pool.QueryRow(ctx, query, namespace).Scan(
		&registry.Namespace,
		&registry.Collection,
		&registry.NextIndex,
		&registry.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("match registry %q: %w", namespace, apperror.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get match registry: %w", err)
	}

	return &registry, nil
}

// NextMatchIndex claims the next match sequence number for a namespace.
// Returns apperror.ErrNotFound if the registry is absent.
func (r *MatchRepository) NextMatchIndex(ctx context.Context, q Querier, namespace string) (int64, error) {
	const query = `
		UPDATE match_registries
		SET next_index = next_index + 1
		WHERE namespace = $1
		RETURNING next_index - 1
	`

	var seq int64
	err := q.QueryRow(ctx, query, namespace).Scan(&seq)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("match registry %q: %w", namespace, apperror.ErrNotFound)
		}
		return 0, fmt.Errorf("failed to claim match index: %w", err)
	}
	return seq, nil
}

// CreateMatch inserts a new open match.
func (r *MatchRepository) CreateMatch(ctx context.Context, q Querier, m *model.Match) (*model.Match, error) {
	const query = `
		INSERT INTO matches (entity_address, namespace, teams, winner_index, created_at)
		VALUES ($1, $2, $3, NULL, NOW())
		RETURNING entity_address, namespace, teams, winner_index, created_at, resolved_at
	`

	teams, err := json.Marshal(m.Teams)
	if err != nil {
		return nil, fmt.Errorf("failed to encode teams: %w", err)
	}

	row := q.QueryRow(ctx, query, m.Entity, m.Namespace, teams)
	created, err := scanMatch(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("match %s: %w", m.Entity, apperror.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("failed to create match: %w", err)
	}

	return created, nil
}

// GetMatch retrieves a match by entity address within a namespace.
// Returns apperror.ErrNotFound if absent.
func (r *MatchRepository) GetMatch(ctx context.Context, namespace string, entity model.Address) (*model.Match, error) {
	const query = `
		SELECT entity_address, namespace, teams, winner_index, created_at, resolved_at
		FROM matches
		WHERE namespace = $1 AND entity_address = $2
	`

	row := r.pool.QueryRow(ctx, query, namespace, entity)
	m, err := scanMatch(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("match %s in %q: %w", entity, namespace, apperror.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	return m, nil
}

// SetOutcome records the winner of an open match. The WHERE clause only
// touches rows with a NULL winner_index, so a second attempt affects zero
// rows and returns apperror.ErrAlreadyResolved.
func (r *MatchRepository) SetOutcome(ctx context.Context, q Querier, entity model.Address, winnerIndex int) error {
	const query = `
		UPDATE matches
		SET winner_index = $2, resolved_at = NOW()
		WHERE entity_address = $1 AND winner_index IS NULL
	`

	result, err := q.Exec(ctx, query, entity, winnerIndex)
	if err != nil {
		return fmt.Errorf("failed to set match outcome: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("match %s: %w", entity, apperror.ErrAlreadyResolved)
	}
	return nil
}

// scanMatch decodes one match row including the JSONB team lineup.
func scanMatch(row pgx.Row) (*model.Match, error) {
	var (
		m     model.Match
		teams []byte
	)
	err := row.Scan(
		&m.Entity,
		&m.Namespace,
		&teams,
		&m.Outcome,
		&m.CreatedAt,
		&m.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(teams, &m.Teams); err != nil {
		return nil, fmt.Errorf("failed to decode teams: %w", err)
	}
	return &m, nil
}
