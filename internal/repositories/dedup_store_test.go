package repositories

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormDedupStore(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormDedupStore(db)
	ctx := context.Background()

	first, err := store.MarkProcessed(ctx, "wamid.ABC")
	require.NoError(t, err)
	assert.True(t, first)

	again, err := store.MarkProcessed(ctx, "wamid.ABC")
	require.NoError(t, err)
	assert.False(t, again)

	other, err := store.MarkProcessed(ctx, "wamid.DEF")
	require.NoError(t, err)
	assert.True(t, other)
}

func TestRedisDedupStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	store := NewRedisDedupStore(client)
	ctx := context.Background()

	first, err := store.MarkProcessed(ctx, "wamid.ABC")
	require.NoError(t, err)
	assert.True(t, first)

	again, err := store.MarkProcessed(ctx, "wamid.ABC")
	require.NoError(t, err)
	assert.False(t, again)

	mr.FastForward(dedupTTL)

	expired, err := store.MarkProcessed(ctx, "wamid.ABC")
	require.NoError(t, err)
	assert.True(t, expired)
}
