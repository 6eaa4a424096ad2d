package addr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"match-rating-engine/internal/model"
)

func TestDerivationIsDeterministic(t *testing.T) {
	a1 := Collection("owner-1", "street-fighter-ratings")
	a2 := Collection("owner-1", "street-fighter-ratings")
	assert.Equal(t, a1, a2)

	e1 := Entity(a1, "record-player-1")
	e2 := Entity(a1, "record-player-1")
	assert.Equal(t, e1, e2)
}

func TestCollectionAndEntityNeverCollide(t *testing.T) {
	// Same scope and name under both tags must derive distinct addresses.
	c := Collection("scope", "name")
	e := Entity("scope", "name")
	assert.NotEqual(t, c, e)
}

func TestScopeNameBoundary(t *testing.T) {
	// The scope/name boundary must matter: ("ab","c") != ("a","bc").
	assert.NotEqual(t, Collection("ab", "c"), Collection("a", "bc"))
	assert.NotEqual(t, Entity("ab", "c"), Entity("a", "bc"))
}

// TestDerivationDistinctnessProperty tests that distinct inputs derive
// distinct addresses.
func TestDerivationDistinctnessProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		owner1 := rapid.StringMatching(`[a-f0-9]{8,40}`).Draw(t, "owner1")
		owner2 := rapid.StringMatching(`[a-f0-9]{8,40}`).Draw(t, "owner2")
		name1 := rapid.StringMatching(`[a-z0-9-]{1,30}`).Draw(t, "name1")
		name2 := rapid.StringMatching(`[a-z0-9-]{1,30}`).Draw(t, "name2")

		if owner1 == owner2 && name1 == name2 {
			return
		}

		a1 := Collection(model.Address(owner1), name1)
		a2 := Collection(model.Address(owner2), name2)
		if a1 == a2 {
			t.Fatalf("distinct inputs derived identical address: (%q,%q) vs (%q,%q)",
				owner1, name1, owner2, name2)
		}
	})
}

func TestNaming(t *testing.T) {
	assert.Equal(t, "street-fighter-vi-ratings", RatingCollectionName("Street Fighter VI"))
	assert.Equal(t, "street-fighter-vi-matches", MatchCollectionName("Street Fighter VI"))
	assert.Equal(t, "match-0", MatchName(0))
	assert.Equal(t, "match-17", MatchName(17))
	assert.Equal(t, "record-0xabc123", RecordName("0xABC123"))
}

func TestRegistryAddressesAreDisjoint(t *testing.T) {
	admin := model.Address("0xadmin")
	assert.NotEqual(t, RatingRegistry(admin, "chess"), MatchRegistry(admin, "chess"))
	assert.NotEqual(t, RatingRegistry(admin, "chess"), RatingRegistry(admin, "checkers"))
}

func TestRecordAddressDerivation(t *testing.T) {
	registry := RatingRegistry("0xadmin", "chess")
	rec := Record(registry, "0xplayer")
	assert.Equal(t, Entity(registry, RecordName("0xplayer")), rec)
}
