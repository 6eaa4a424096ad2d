// Integration tests use testcontainers-go to spin up a PostgreSQL container
// and are skipped when Docker is not available.
package factory

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"match-rating-engine/internal/addr"
	"match-rating-engine/internal/apperror"
	"match-rating-engine/internal/repository"
)

func checkDockerAvailable() bool {
	cmd := exec.Command("docker", "info")
	return cmd.Run() == nil
}

func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if !checkDockerAvailable() {
		t.Skip("Docker is not available, skipping integration test")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	require.NoError(t, repository.Migrate(ctx, pool))

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

func TestFactory_CreateCollection(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	f := New(pool)
	ctx := context.Background()

	col, err := f.CreateCollection(ctx, pool, "0xadmin", "chess-ratings", "Rating registry for chess", "")
	require.NoError(t, err)
	assert.Equal(t, addr.Collection("0xadmin", "chess-ratings"), col.Address)
	assert.Equal(t, "chess-ratings", col.Name)

	// Same owner and name derive the same address: second create fails.
	_, err = f.CreateCollection(ctx, pool, "0xadmin", "chess-ratings", "", "")
	assert.ErrorIs(t, err, apperror.ErrAlreadyExists)

	// A different owner derives a different address and succeeds.
	_, err = f.CreateCollection(ctx, pool, "0xother", "chess-ratings", "", "")
	require.NoError(t, err)

	got, err := f.GetCollection(ctx, col.Address)
	require.NoError(t, err)
	assert.Equal(t, col.Owner, got.Owner)
}

func TestFactory_MintEntity(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	f := New(pool)
	ctx := context.Background()

	col, err := f.CreateCollection(ctx, pool, "0xadmin", "chess-ratings", "", "")
	require.NoError(t, err)

	ent, err := f.MintEntity(ctx, pool, col.Address, "0xplayer", "record-player", "", "", false)
	require.NoError(t, err)
	assert.Equal(t, addr.Entity(col.Address, "record-player"), ent.Address)
	assert.False(t, ent.Transferable)

	// Duplicate name in the same collection fails.
	_, err = f.MintEntity(ctx, pool, col.Address, "0xplayer", "record-player", "", "", false)
	assert.ErrorIs(t, err, apperror.ErrAlreadyExists)

	// Minting into a missing collection fails.
	_, err = f.MintEntity(ctx, pool, "no-such-collection", "0xplayer", "record-player", "", "", false)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	exists, err := f.EntityExists(ctx, ent.Address)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = f.EntityExists(ctx, addr.Entity(col.Address, "record-nobody"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFactory_TransferGate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	f := New(pool)
	ctx := context.Background()

	col, err := f.CreateCollection(ctx, pool, "0xadmin", "items", "", "")
	require.NoError(t, err)

	// Non-transferable entities are locked to their owner.
	locked, err := f.MintEntity(ctx, pool, col.Address, "0xalice", "soulbound", "", "", false)
	require.NoError(t, err)
	err = f.Transfer(ctx, locked.Address, "0xalice", "0xbob")
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	// Transferable entities move, but only at the owner's hand.
	free, err := f.MintEntity(ctx, pool, col.Address, "0xalice", "tradeable", "", "", true)
	require.NoError(t, err)

	err = f.Transfer(ctx, free.Address, "0xbob", "0xcarol")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	require.NoError(t, f.Transfer(ctx, free.Address, "0xalice", "0xbob"))
	got, err := f.GetEntity(ctx, free.Address)
	require.NoError(t, err)
	assert.Equal(t, "0xbob", string(got.Owner))

	// Missing entity.
	err = f.Transfer(ctx, "no-such-entity", "0xalice", "0xbob")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
