package repository

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Migrate applies the engine schema. Statements are idempotent so startup
// and tests can both run them.
func Migrate(ctx context.Context, q Querier) error {
	migrations := []struct {
		name string
		sql  string
	}{
		{
			name: "games",
			sql: `
				CREATE TABLE IF NOT EXISTS games (
					namespace TEXT PRIMARY KEY,
					admin TEXT NOT NULL,
					initialized_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`,
		},
		{
			name: "collections",
			sql: `
				CREATE TABLE IF NOT EXISTS collections (
					address TEXT PRIMARY KEY,
					owner TEXT NOT NULL,
					name TEXT NOT NULL,
					description TEXT NOT NULL DEFAULT '',
					uri TEXT NOT NULL DEFAULT '',
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					UNIQUE (owner, name)
				);
				CREATE INDEX IF NOT EXISTS idx_collections_owner ON collections(owner);
			`,
		},
		{
			name: "entities",
			sql: `
				CREATE TABLE IF NOT EXISTS entities (
					address TEXT PRIMARY KEY,
					collection_address TEXT NOT NULL REFERENCES collections(address),
					owner TEXT NOT NULL,
					name TEXT NOT NULL,
					description TEXT NOT NULL DEFAULT '',
					uri TEXT NOT NULL DEFAULT '',
					transferable BOOLEAN NOT NULL DEFAULT FALSE,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					UNIQUE (collection_address, name)
				);
				CREATE INDEX IF NOT EXISTS idx_entities_owner ON entities(owner);
			`,
		},
		{
			name: "rating_registries",
			sql: `
				CREATE TABLE IF NOT EXISTS rating_registries (
					namespace TEXT PRIMARY KEY REFERENCES games(namespace),
					collection_address TEXT NOT NULL REFERENCES collections(address),
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`,
		},
		{
			name: "rating_records",
			sql: `
				CREATE TABLE IF NOT EXISTS rating_records (
					entity_address TEXT PRIMARY KEY REFERENCES entities(address),
					namespace TEXT NOT NULL REFERENCES rating_registries(namespace),
					player TEXT NOT NULL,
					score BIGINT NOT NULL,
					wins BIGINT NOT NULL DEFAULT 0,
					losses BIGINT NOT NULL DEFAULT 0,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					UNIQUE (namespace, player)
				);
			`,
		},
		{
			name: "match_registries",
			sql: `
				CREATE TABLE IF NOT EXISTS match_registries (
					namespace TEXT PRIMARY KEY REFERENCES games(namespace),
					collection_address TEXT NOT NULL REFERENCES collections(address),
					next_index BIGINT NOT NULL DEFAULT 0,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`,
		},
		{
			name: "matches",
			sql: `
				CREATE TABLE IF NOT EXISTS matches (
					entity_address TEXT PRIMARY KEY REFERENCES entities(address),
					namespace TEXT NOT NULL REFERENCES match_registries(namespace),
					teams JSONB NOT NULL,
					winner_index INT,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					resolved_at TIMESTAMPTZ
				);
				CREATE INDEX IF NOT EXISTS idx_matches_namespace ON matches(namespace, created_at DESC);
			`,
		},
	}

	for _, m := range migrations {
		if _, err := q.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("migration %s failed: %w", m.name, err)
		}
		log.Debug().Str("migration", m.name).Msg("Migration applied")
	}

	log.Info().Msg("All migrations completed successfully")
	return nil
}
