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

// MatchService owns the match registry and the match lifecycle: creation of
// open matches and their single, terminal resolution that fans out into
// rating updates.
type MatchService struct {
	pool    *pgxpool.Pool
	factory *factory.Factory
	matches *repository.MatchRepository
	ratings *RatingService
	locks   *lock.NamespaceLock
}

// NewMatchService creates a new MatchService instance.
func NewMatchService(
	pool *pgxpool.Pool,
	f *factory.Factory,
	matches *repository.MatchRepository,
	ratings *RatingService,
	locks *lock.NamespaceLock,
) *MatchService {
	return &MatchService{
		pool:    pool,
		factory: f,
		matches: matches,
		ratings: ratings,
		locks:   locks,
	}
}

// InitializeRegistry creates the match registry for the capability's
// namespace. Fails apperror.ErrAlreadyExists if the namespace already has
// one.
func (s *MatchService) InitializeRegistry(ctx context.Context, authCap authority.AuthorityCapability) (*model.MatchRegistry, error) {
	namespace := authCap.Namespace()

	var registry *model.MatchRegistry
	err := s.locks.WithLock(namespace, func() error {
		return repository.WithinTx(ctx, s.pool, func(tx pgx.Tx) error {
			col, err := s.factory.CreateCollection(ctx, tx,
				authCap.Admin(),
				addr.MatchCollectionName(namespace),
				fmt.Sprintf("Match registry for %s", namespace),
				"",
			)
			if err != nil {
				return err
			}

			registry, err = s.matches.CreateRegistry(ctx, tx, namespace, col.Address)
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("namespace", namespace).
		Str("collection", string(registry.Collection)).
		Msg("Match registry initialized")

	return registry, nil
}

// CreateMatch creates an open match for the given team lineup. The match
// entity is owned by the admin and non-transferable. Fails
// apperror.ErrNotFound if the registry is absent and
// apperror.ErrInvalidInput if the lineup has fewer than two teams, an empty
// team, or unequal team sizes.
func (s *MatchService) CreateMatch(ctx context.Context, authCap authority.AuthorityCapability, teams [][]model.Address) (*model.Match, error) {
	namespace := authCap.Namespace()

	if err := model.ValidateTeams(teams); err != nil {
		return nil, err
	}

	var match *model.Match
	err := s.locks.WithLock(namespace, func() error {
		registry, err := s.matches.GetRegistry(ctx, namespace)
		if err != nil {
			return err
		}

		return repository.WithinTx(ctx, s.pool, func(tx pgx.Tx) error {
			seq, err := s.matches.NextMatchIndex(ctx, tx, namespace)
			if err != nil {
				return err
			}

			ent, err := s.factory.MintEntity(ctx, tx,
				registry.Collection,
				authCap.Admin(),
				addr.MatchName(seq),
				fmt.Sprintf("Match %d in %s", seq, namespace),
				"",
				false,
			)
			if err != nil {
				return err
			}

			match, err = s.matches.CreateMatch(ctx, tx, &model.Match{
				Entity:    ent.Address,
				Namespace: namespace,
				Teams:     teams,
			})
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("namespace", namespace).
		Str("match", string(match.Entity)).
		Int("teams", len(teams)).
		Msg("Match created")

	return match, nil
}

// ResolveMatch records the winning team and fans the outcome into every
// player's rating record, all inside one transaction: either the outcome
// and every rating update commit together, or nothing changes.
//
// Fails apperror.ErrNotFound if the match or any player's record is absent,
// apperror.ErrAlreadyResolved on a second resolution, and
// apperror.ErrInvalidInput if winnerIndex is out of range. The transition
// is irreversible; a recorded outcome is never cleared or overwritten.
func (s *MatchService) ResolveMatch(ctx context.Context, authCap authority.AuthorityCapability, matchAddr model.Address, winnerIndex int) error {
	namespace := authCap.Namespace()

	err := s.locks.WithLock(namespace, func() error {
		match, err := s.matches.GetMatch(ctx, namespace, matchAddr)
		if err != nil {
			return err
		}
		if match.Resolved() {
			return fmt.Errorf("match %s: %w", matchAddr, apperror.ErrAlreadyResolved)
		}
		if err := model.ValidateWinner(match.Teams, winnerIndex); err != nil {
			return err
		}

		// Every player must hold a record before anything is written.
		if err := s.ratings.EnsureRecords(ctx, namespace, match.Teams); err != nil {
			return err
		}

		return repository.WithinTx(ctx, s.pool, func(tx pgx.Tx) error {
			if err := s.matches.SetOutcome(ctx, tx, match.Entity, winnerIndex); err != nil {
				return err
			}
			return s.ratings.UpdateMatchRatings(ctx, tx, namespace, match.Teams, winnerIndex)
		})
	})
	if err != nil {
		return err
	}

	log.Info().
		Str("namespace", namespace).
		Str("match", string(matchAddr)).
		Int("winner_index", winnerIndex).
		Msg("Match resolved")

	return nil
}

// GetMatch retrieves a match's teams and outcome.
// Fails apperror.ErrNotFound if absent.
func (s *MatchService) GetMatch(ctx context.Context, namespace string, matchAddr model.Address) (*model.Match, error) {
	return s.matches.GetMatch(ctx, namespace, matchAddr)
}
