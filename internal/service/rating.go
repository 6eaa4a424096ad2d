// Package service provides business logic implementations.
package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"match-rating-engine/internal/addr"
	"match-rating-engine/internal/apperror"
	"match-rating-engine/internal/authority"
	"match-rating-engine/internal/factory"
	"match-rating-engine/internal/model"
	"match-rating-engine/internal/pkg/lock"
	"match-rating-engine/internal/repository"
)

// RatingService owns the per-namespace rating registry: registry creation,
// record minting, reads, and the update arithmetic the resolution engine
// fans out into.
type RatingService struct {
	pool    *pgxpool.Pool
	factory *factory.Factory
	ratings *repository.RatingRepository
	locks   *lock.NamespaceLock
}

// NewRatingService creates a new RatingService instance.
func NewRatingService(
	pool *pgxpool.Pool,
	f *factory.Factory,
	ratings *repository.RatingRepository,
	locks *lock.NamespaceLock,
) *RatingService {
	return &RatingService{
		pool:    pool,
		factory: f,
		ratings: ratings,
		locks:   locks,
	}
}

// InitializeRegistry creates the rating registry for the capability's
// namespace: one collection owned by the admin plus the registry row,
// committed together. Fails apperror.ErrAlreadyExists if the namespace
// already has a rating registry.
func (s *RatingService) InitializeRegistry(ctx context.Context, authCap authority.AuthorityCapability) (*model.RatingRegistry, error) {
	namespace := authCap.Namespace()

	var registry *model.RatingRegistry
	err := s.locks.WithLock(namespace, func() error {
		return repository.WithinTx(ctx, s.pool, func(tx pgx.Tx) error {
			col, err := s.factory.CreateCollection(ctx, tx,
				authCap.Admin(),
				addr.RatingCollectionName(namespace),
				fmt.Sprintf("Rating registry for %s", namespace),
				"",
			)
			if err != nil {
				return err
			}

			registry, err = s.ratings.CreateRegistry(ctx, tx, namespace, col.Address)
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("namespace", namespace).
		Str("collection", string(registry.Collection)).
		Msg("Rating registry initialized")

	return registry, nil
}

// MintRecord mints the caller's rating record with the initial values. The
// record entity is owned by the player and non-transferable. Fails
// apperror.ErrNotFound if the registry is absent and
// apperror.ErrAlreadyExists if the player already holds a record.
func (s *RatingService) MintRecord(ctx context.Context, playerCap authority.PlayerCapability) (*model.RatingRecord, error) {
	namespace := playerCap.Namespace()
	player := playerCap.Player()

	var record *model.RatingRecord
	err := s.locks.WithLock(namespace, func() error {
		registry, err := s.ratings.GetRegistry(ctx, namespace)
		if err != nil {
			return err
		}

		return repository.WithinTx(ctx, s.pool, func(tx pgx.Tx) error {
			ent, err := s.factory.MintEntity(ctx, tx,
				registry.Collection,
				player,
				addr.RecordName(player),
				fmt.Sprintf("Rating record for %s", player),
				"",
				false,
			)
			if err != nil {
				return err
			}

			record, err = s.ratings.CreateRecord(ctx, tx, model.NewRatingRecord(ent.Address, namespace, player))
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("namespace", namespace).
		Str("player", string(player)).
		Msg("Rating record minted")

	return record, nil
}

// GetRating retrieves a player's rating record.
// Fails apperror.ErrNotFound if the player has no record.
func (s *RatingService) GetRating(ctx context.Context, namespace string, player model.Address) (*model.RatingRecord, error) {
	return s.ratings.GetRecord(ctx, namespace, player)
}

// HasRecord reports whether a player holds a rating record, by checking for
// an entity at the record's derived address. Fails apperror.ErrNotFound if
// the registry itself is absent.
func (s *RatingService) HasRecord(ctx context.Context, namespace string, player model.Address) (bool, error) {
	registry, err := s.ratings.GetRegistry(ctx, namespace)
	if err != nil {
		return false, err
	}
	return s.factory.EntityExists(ctx, addr.Record(registry.Collection, player))
}

// EnsureRecords checks that every player in every team holds a rating
// record, before any mutation. Fails apperror.ErrNotFound naming the first
// player without one.
func (s *RatingService) EnsureRecords(ctx context.Context, namespace string, teams [][]model.Address) error {
	for _, team := range teams {
		for _, player := range team {
			exists, err := s.ratings.RecordExists(ctx, namespace, player)
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("rating record for %s in %q: %w", player, namespace, apperror.ErrNotFound)
			}
		}
	}
	return nil
}

// UpdateMatchRatings fans a match outcome into every player's record: the
// team at winnerIndex wins, every other team loses, iterated in team order.
// Runs on the caller's transaction so the fan-out commits or rolls back as
// a unit with the outer operation. Fails apperror.ErrNotFound if the
// registry is absent.
func (s *RatingService) UpdateMatchRatings(ctx context.Context, q repository.Querier, namespace string, teams [][]model.Address, winnerIndex int) error {
	if _, err := s.ratings.GetRegistry(ctx, namespace); err != nil {
		return err
	}

	for i, team := range teams {
		if err := s.updateTeamRatings(ctx, q, namespace, team, i == winnerIndex); err != nil {
			return err
		}
	}
	return nil
}

// updateTeamRatings applies one outcome to every member of a team in order.
func (s *RatingService) updateTeamRatings(ctx context.Context, q repository.Querier, namespace string, team []model.Address, didWin bool) error {
	for _, player := range team {
		if err := s.updatePlayerRating(ctx, q, namespace, player, didWin); err != nil {
			return err
		}
	}
	return nil
}

// updatePlayerRating applies one outcome to one player's record.
func (s *RatingService) updatePlayerRating(ctx context.Context, q repository.Querier, namespace string, player model.Address, didWin bool) error {
	return s.ratings.ApplyResult(ctx, q, namespace, player, didWin)
}
