package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"match-rating-engine/internal/apperror"
)

func TestValidateTeams(t *testing.T) {
	tests := []struct {
		name    string
		teams   [][]Address
		wantErr bool
	}{
		{
			name:    "one team only",
			teams:   [][]Address{{"a"}},
			wantErr: true,
		},
		{
			name:    "empty team",
			teams:   [][]Address{{}, {"b"}},
			wantErr: true,
		},
		{
			name:    "unequal sizes",
			teams:   [][]Address{{"a", "b"}, {"c"}},
			wantErr: true,
		},
		{
			name:    "no teams",
			teams:   nil,
			wantErr: true,
		},
		{
			name:  "valid 1v1",
			teams: [][]Address{{"a"}, {"b"}},
		},
		{
			name:  "valid 2v2",
			teams: [][]Address{{"a", "b"}, {"c", "d"}},
		},
		{
			name:  "valid three teams",
			teams: [][]Address{{"a"}, {"b"}, {"c"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTeams(tt.teams)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperror.ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateWinner(t *testing.T) {
	teams := [][]Address{{"a"}, {"b"}}

	assert.NoError(t, ValidateWinner(teams, 0))
	assert.NoError(t, ValidateWinner(teams, 1))
	assert.ErrorIs(t, ValidateWinner(teams, 2), apperror.ErrInvalidInput)
	assert.ErrorIs(t, ValidateWinner(teams, -1), apperror.ErrInvalidInput)
}

func TestMatchResolved(t *testing.T) {
	m := &Match{Teams: [][]Address{{"a"}, {"b"}}}
	assert.False(t, m.Resolved())

	winner := 1
	m.Outcome = &winner
	assert.True(t, m.Resolved())
}

func TestMatchPlayers(t *testing.T) {
	m := &Match{Teams: [][]Address{{"a", "b"}, {"c", "d"}}}
	assert.Equal(t, []Address{"a", "b", "c", "d"}, m.Players())
}

func TestValidateTeamsErrorIsInvalidInput(t *testing.T) {
	err := ValidateTeams([][]Address{{"a"}})
	if !errors.Is(err, apperror.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
