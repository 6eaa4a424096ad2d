// Property-based tests for the rating update arithmetic.
package model

import (
	"testing"

	"pgregory.net/rapid"
)

// TestRatingSaturationProperty tests that the score never goes negative.
// For any sequence of outcomes, score stays >= 0, and a loss at a score
// at or below the delta lands exactly on zero.
func TestRatingSaturationProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rec := NewRatingRecord("e", "ns", "p")

		numOps := rapid.IntRange(1, 200).Draw(t, "numOps")
		for i := 0; i < numOps; i++ {
			before := rec.Score
			didWin := rapid.Bool().Draw(t, "didWin")
			rec.Apply(didWin)

			if rec.Score < 0 {
				t.Fatalf("score went negative: %d", rec.Score)
			}
			if !didWin && before <= RatingDelta && rec.Score != 0 {
				t.Fatalf("loss at score %d should saturate to 0, got %d", before, rec.Score)
			}
			if didWin && rec.Score != before+RatingDelta {
				t.Fatalf("win at score %d should give %d, got %d", before, before+RatingDelta, rec.Score)
			}
		}
	})
}

// TestRatingBookkeepingProperty tests that wins and losses count every
// outcome exactly once and the score matches the saturated running total.
func TestRatingBookkeepingProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rec := NewRatingRecord("e", "ns", "p")

		numOps := rapid.IntRange(0, 100).Draw(t, "numOps")
		expectedScore := InitialScore
		var expectedWins, expectedLosses int64

		for i := 0; i < numOps; i++ {
			didWin := rapid.Bool().Draw(t, "didWin")
			rec.Apply(didWin)

			if didWin {
				expectedWins++
				expectedScore += RatingDelta
			} else {
				expectedLosses++
				expectedScore -= RatingDelta
				if expectedScore < 0 {
					expectedScore = 0
				}
			}
		}

		if rec.Wins != expectedWins || rec.Losses != expectedLosses {
			t.Fatalf("bookkeeping mismatch: got %d/%d wins/losses, expected %d/%d",
				rec.Wins, rec.Losses, expectedWins, expectedLosses)
		}
		if rec.Score != expectedScore {
			t.Fatalf("score mismatch: got %d, expected %d", rec.Score, expectedScore)
		}
	})
}

// TestRatingTwentyOneLosses pins the saturation boundary: starting at the
// initial score of 100, twenty losses reach exactly 0 and a twenty-first
// stays there.
func TestRatingTwentyOneLosses(t *testing.T) {
	rec := NewRatingRecord("e", "ns", "p")

	for i := 0; i < 20; i++ {
		rec.Apply(false)
	}
	if rec.Score != 0 {
		t.Fatalf("after 20 losses from %d expected score 0, got %d", InitialScore, rec.Score)
	}

	rec.Apply(false)
	if rec.Score != 0 {
		t.Fatalf("after 21 losses expected score to remain 0, got %d", rec.Score)
	}
	if rec.Losses != 21 {
		t.Fatalf("expected 21 losses recorded, got %d", rec.Losses)
	}
}
