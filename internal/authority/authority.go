// Package authority issues the capability values gating every admin and
// player operation. Capabilities carry unexported fields and can only be
// constructed here, after the caller's identity has been checked against the
// namespace's designated admin. Nothing about a capability is persisted; it
// is re-derived on every call from the games marker row.
package authority

import (
	"context"
	"fmt"

	"match-rating-engine/internal/apperror"
	"match-rating-engine/internal/model"
	"match-rating-engine/internal/repository"
)

// AuthorityCapability proves the caller administers a namespace.
// Valid only for the call that obtained it; thread it as a parameter,
// never store it.
type AuthorityCapability struct {
	namespace string
	admin     model.Address
}

// Namespace returns the namespace the capability administers.
func (c AuthorityCapability) Namespace() string { return c.namespace }

// Admin returns the admin account the capability was issued to.
func (c AuthorityCapability) Admin() model.Address { return c.admin }

// PlayerCapability binds an operation to one player identity within a
// namespace. Issuance performs no uniqueness check; downstream operations
// enforce one record per player.
type PlayerCapability struct {
	namespace string
	player    model.Address
}

// Namespace returns the namespace the capability is bound to.
func (c PlayerCapability) Namespace() string { return c.namespace }

// Player returns the player identity the capability is bound to.
func (c PlayerCapability) Player() model.Address { return c.player }

// Registry issues capabilities from caller identity. Designations map each
// namespace to the admin account allowed to initialize it; the games table
// holds the initialization marker.
type Registry struct {
	designations map[string]model.Address
	games        *repository.GameRepository
}

// NewRegistry creates a new authority Registry.
func NewRegistry(designations map[string]model.Address, games *repository.GameRepository) *Registry {
	return &Registry{
		designations: designations,
		games:        games,
	}
}

// Initialize records the marker for a namespace and returns the admin
// capability. Fails apperror.ErrAlreadyExists if the namespace is already
// initialized and apperror.ErrUnauthorized if the caller is not the
// namespace's designated admin.
func (r *Registry) Initialize(ctx context.Context, caller model.Address, namespace string) (AuthorityCapability, error) {
	exists, err := r.games.Exists(ctx, namespace)
	if err != nil {
		return AuthorityCapability{}, fmt.Errorf("failed to check namespace: %w", err)
	}
	if exists {
		return AuthorityCapability{}, fmt.Errorf("game %q: %w", namespace, apperror.ErrAlreadyExists)
	}

	designated, ok := r.designations[namespace]
	if !ok || designated != caller {
		return AuthorityCapability{}, fmt.Errorf("%s is not the designated admin of %q: %w", caller, namespace, apperror.ErrUnauthorized)
	}

	if _, err := r.games.Create(ctx, namespace, caller); err != nil {
		return AuthorityCapability{}, err
	}

	return AuthorityCapability{namespace: namespace, admin: caller}, nil
}

// AuthorityFor re-derives the admin capability for an initialized namespace.
// Fails apperror.ErrNotFound if uninitialized and apperror.ErrUnauthorized
// if the caller is not the recorded admin.
func (r *Registry) AuthorityFor(ctx context.Context, caller model.Address, namespace string) (AuthorityCapability, error) {
	game, err := r.games.Get(ctx, namespace)
	if err != nil {
		return AuthorityCapability{}, err
	}
	if game.Admin != caller {
		return AuthorityCapability{}, fmt.Errorf("%s is not the admin of %q: %w", caller, namespace, apperror.ErrUnauthorized)
	}

	return AuthorityCapability{namespace: namespace, admin: caller}, nil
}

// PlayerFor binds the caller as a player of an initialized namespace.
// Fails apperror.ErrNotFound if the namespace is uninitialized.
func (r *Registry) PlayerFor(ctx context.Context, caller model.Address, namespace string) (PlayerCapability, error) {
	if _, err := r.games.Get(ctx, namespace); err != nil {
		return PlayerCapability{}, err
	}

	return PlayerCapability{namespace: namespace, player: caller}, nil
}
