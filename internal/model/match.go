package model

import (
	"fmt"
	"time"

	"match-rating-engine/internal/apperror"
)

// Minimum number of teams a match must have.
const MinTeams = 2

// Match is an immutable team lineup plus an optional outcome. A match is
// Open until a winner index is recorded, after which it is Resolved and
// terminal. The entity is owned by the game admin and non-transferable.
type Match struct {
	Entity     Address     `db:"entity_address"`
	Namespace  string      `db:"namespace"`
	Teams      [][]Address `db:"teams"`
	Outcome    *int        `db:"winner_index"`
	CreatedAt  time.Time   `db:"created_at"`
	ResolvedAt *time.Time  `db:"resolved_at"`
}

// Resolved reports whether the match outcome has been recorded.
func (m *Match) Resolved() bool {
	return m.Outcome != nil
}

// Players returns every player in team order. Players appearing in multiple
// teams are returned once per appearance.
func (m *Match) Players() []Address {
	var players []Address
	for _, team := range m.Teams {
		players = append(players, team...)
	}
	return players
}

// ValidateTeams checks the shape invariants for a new match: at least two
// teams, no empty team, all teams the same size.
func ValidateTeams(teams [][]Address) error {
	if len(teams) < MinTeams {
		return fmt.Errorf("%w: need at least %d teams, got %d", apperror.ErrInvalidInput, MinTeams, len(teams))
	}
	size := len(teams[0])
	for i, team := range teams {
		if len(team) == 0 {
			return fmt.Errorf("%w: team %d is empty", apperror.ErrInvalidInput, i)
		}
		if len(team) != size {
			return fmt.Errorf("%w: team %d has %d players, team 0 has %d", apperror.ErrInvalidInput, i, len(team), size)
		}
	}
	return nil
}

// ValidateWinner checks that winnerIndex addresses one of the match's teams.
func ValidateWinner(teams [][]Address, winnerIndex int) error {
	if winnerIndex < 0 || winnerIndex >= len(teams) {
		return fmt.Errorf("%w: winner index %d out of range for %d teams", apperror.ErrInvalidInput, winnerIndex, len(teams))
	}
	return nil
}
