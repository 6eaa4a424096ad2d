// Package factory implements the entity and collection arena: addressable,
// named, ownable rows whose addresses are derived from their owning scope.
// The engine materializes registries as collections and rating records and
// matches as non-transferable entities.
package factory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"match-rating-engine/internal/addr"
	"match-rating-engine/internal/apperror"
	"match-rating-engine/internal/model"
	"match-rating-engine/internal/repository"
)

// foreignKeyViolation is the PostgreSQL error code for foreign key
// violations; minting into a missing collection surfaces as one.
const foreignKeyViolation = "23503"

// Factory creates and looks up collections and entities.
type Factory struct {
	pool *pgxpool.Pool
}

// New creates a new Factory instance.
func New(pool *pgxpool.Pool) *Factory {
	return &Factory{pool: pool}
}

// CreateCollection creates a collection owned by owner. The address is
// derived from (owner, name).
// Returns apperror.ErrAlreadyExists if a collection exists at that address.
func (f *Factory) CreateCollection(ctx context.Context, q repository.Querier, owner model.Address, name, description, uri string) (*model.Collection, error) {
	const query = `
		INSERT INTO collections (address, owner, name, description, uri, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING address, owner, name, description, uri, created_at
	`

	address := addr.Collection(owner, name)

	var col model.Collection
	err := q.QueryRow(ctx, query, address, owner, name, description, uri).Scan(
		&col.Address,
		&col.Owner,
		&col.Name,
		&col.Description,
		&col.URI,
		&col.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("collection %q of %s: %w", name, owner, apperror.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	return &col, nil
}

// MintEntity mints an entity into a collection, owned by owner. The address
// is derived from (collection, name).
// Returns apperror.ErrAlreadyExists if an entity exists at that address and
// apperror.ErrNotFound if the collection is absent.
func (f *Factory) MintEntity(ctx context.Context, q repository.Querier, collection model.Address, owner model.Address, name, description, uri string, transferable bool) (*model.Entity, error) {
	const query = `
		INSERT INTO entities (address, collection_address, owner, name, description, uri, transferable, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING address, collection_address, owner, name, description, uri, transferable, created_at
	`

	address := addr.Entity(collection, name)

	var ent model.Entity
	err := q.QueryRow(ctx, query, address, collection, owner, name, description, uri, transferable).Scan(
		&ent.Address,
		&ent.Collection,
		&ent.Owner,
		&ent.Name,
		&ent.Description,
		&ent.URI,
		&ent.Transferable,
		&ent.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("entity %q in %s: %w", name, collection, apperror.ErrAlreadyExists)
		}
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("collection %s: %w", collection, apperror.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to mint entity: %w", err)
	}

	return &ent, nil
}

// GetEntity retrieves an entity by address.
// Returns apperror.ErrNotFound if absent.
func (f *Factory) GetEntity(ctx context.Context, address model.Address) (*model.Entity, error) {
	const query = `
		SELECT address, collection_address, owner, name, description, uri, transferable, created_at
		FROM entities
		WHERE address = $1
	`

	var ent model.Entity
	err := f.pool.QueryRow(ctx, query, address).Scan(
		&ent.Address,
		&ent.Collection,
		&ent.Owner,
		&ent.Name,
		&ent.Description,
		&ent.URI,
		&ent.Transferable,
		&ent.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("entity %s: %w", address, apperror.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get entity: %w", err)
	}

	return &ent, nil
}

// GetCollection retrieves a collection by address.
// Returns apperror.ErrNotFound if absent.
func (f *Factory) GetCollection(ctx context.Context, address model.Address) (*model.Collection, error) {
	const query = `
		SELECT address, owner, name, description, uri, created_at
		FROM collections
		WHERE address = $1
	`

	var col model.Collection
	err := f.pool.QueryRow(ctx, query, address).Scan(
		&col.Address,
		&col.Owner,
		&col.Name,
		&col.Description,
		&col.URI,
		&col.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("collection %s: %w", address, apperror.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}

	return &col, nil
}

// EntityExists checks whether an entity exists at a derived address.
// This is the engine's sole existence mechanism.
func (f *Factory) EntityExists(ctx context.Context, address model.Address) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM entities WHERE address = $1)`

	var exists bool
	if err := f.pool.QueryRow(ctx, query, address).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check entity existence: %w", err)
	}
	return exists, nil
}

// Transfer moves an entity between owners. Engine entities are minted
// non-transferable and are rejected with apperror.ErrInvalidInput.
// Returns apperror.ErrUnauthorized if from does not own the entity and
// apperror.ErrNotFound if the entity is absent.
func (f *Factory) Transfer(ctx context.Context, entity model.Address, from, to model.Address) error {
	ent, err := f.GetEntity(ctx, entity)
	if err != nil {
		return err
	}
	if !ent.Transferable {
		return fmt.Errorf("entity %s is non-transferable: %w", entity, apperror.ErrInvalidInput)
	}
	if ent.Owner != from {
		return fmt.Errorf("entity %s is not owned by %s: %w", entity, from, apperror.ErrUnauthorized)
	}

	const query = `UPDATE entities SET owner = $2 WHERE address = $1 AND owner = $3`
	result, err := f.pool.Exec(ctx, query, entity, to, from)
	if err != nil {
		return fmt.Errorf("failed to transfer entity: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("entity %s: %w", entity, apperror.ErrNotFound)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation
}
