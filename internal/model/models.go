// Package model defines the data models for the rating and match engine.
package model

import "time"

// Address identifies an account or an addressable entity. Entity addresses
// are derived deterministically by the addr package; account addresses are
// opaque caller identities.
type Address string

// Rating constants. A fresh record starts at InitialScore; every win adds
// RatingDelta and every loss subtracts it, saturating at zero.
const (
	InitialScore int64 = 100
	RatingDelta  int64 = 5
)

// Game marks an initialized game namespace and its designated admin account.
// The row is the only persisted authority state; capabilities are re-derived
// from it on every call.
type Game struct {
	Namespace     string    `db:"namespace"`
	Admin         Address   `db:"admin"`
	InitializedAt time.Time `db:"initialized_at"`
}

// Collection is an addressable, owned group of entities. Registries are
// materialized as collections owned by the game admin.
type Collection struct {
	Address     Address   `db:"address"`
	Owner       Address   `db:"owner"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	URI         string    `db:"uri"`
	CreatedAt   time.Time `db:"created_at"`
}

// Entity is an addressable, owned member of a collection. Rating records and
// matches are minted as non-transferable entities.
type Entity struct {
	Address      Address   `db:"address"`
	Collection   Address   `db:"collection_address"`
	Owner        Address   `db:"owner"`
	Name         string    `db:"name"`
	Description  string    `db:"description"`
	URI          string    `db:"uri"`
	Transferable bool      `db:"transferable"`
	CreatedAt    time.Time `db:"created_at"`
}

// RatingRegistry is the per-namespace collection of rating records.
// At most one exists per namespace.
type RatingRegistry struct {
	Namespace  string    `db:"namespace"`
	Collection Address   `db:"collection_address"`
	CreatedAt  time.Time `db:"created_at"`
}

// RatingRecord is a player's persisted score/wins/losses tuple.
// At most one exists per (namespace, player); it is never deleted.
type RatingRecord struct {
	Entity    Address   `db:"entity_address"`
	Namespace string    `db:"namespace"`
	Player    Address   `db:"player"`
	Score     int64     `db:"score"`
	Wins      int64     `db:"wins"`
	Losses    int64     `db:"losses"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// NewRatingRecord returns a record with the initial values for a freshly
// minted player.
func NewRatingRecord(entity Address, namespace string, player Address) *RatingRecord {
	return &RatingRecord{
		Entity:    entity,
		Namespace: namespace,
		Player:    player,
		Score:     InitialScore,
	}
}

// Apply folds one match outcome into the record. A loss saturates the score
// at zero; it never goes negative.
func (r *RatingRecord) Apply(didWin bool) {
	if didWin {
		r.Wins++
		r.Score += RatingDelta
		return
	}
	r.Losses++
	if r.Score <= RatingDelta {
		r.Score = 0
	} else {
		r.Score -= RatingDelta
	}
}

// MatchRegistry gates match creation for one namespace and carries the
// counter that names the next match entity.
type MatchRegistry struct {
	Namespace  string    `db:"namespace"`
	Collection Address   `db:"collection_address"`
	NextIndex  int64     `db:"next_index"`
	CreatedAt  time.Time `db:"created_at"`
}
