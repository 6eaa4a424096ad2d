package addr

import (
	"fmt"

	"github.com/gosimple/slug"

	"match-rating-engine/internal/model"
)

// Collection and entity names fed into address derivation. Namespaces and
// player addresses are slugified so arbitrary identifiers produce stable,
// printable names.

// RatingCollectionName names the rating registry collection of a namespace.
func RatingCollectionName(namespace string) string {
	return slug.Make(namespace) + "-ratings"
}

// MatchCollectionName names the match registry collection of a namespace.
func MatchCollectionName(namespace string) string {
	return slug.Make(namespace) + "-matches"
}

// RecordName names a player's rating record entity within the registry.
func RecordName(player model.Address) string {
	return "record-" + slug.Make(string(player))
}

// MatchName names the nth match entity within the registry.
func MatchName(seq int64) string {
	return fmt.Sprintf("match-%d", seq)
}

// RatingRegistry derives the rating registry collection address for a
// namespace administered by admin.
func RatingRegistry(admin model.Address, namespace string) model.Address {
	return Collection(admin, RatingCollectionName(namespace))
}

// MatchRegistry derives the match registry collection address for a
// namespace administered by admin.
func MatchRegistry(admin model.Address, namespace string) model.Address {
	return Collection(admin, MatchCollectionName(namespace))
}

// Record derives a player's rating record entity address within a registry.
func Record(registry model.Address, player model.Address) model.Address {
	return Entity(registry, RecordName(player))
}
