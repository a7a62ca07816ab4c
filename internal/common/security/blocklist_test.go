package security

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBlocklist(t *testing.T) (*TokenBlocklist, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewTokenBlocklist(rdb), mr
}

func TestBlocklistAddAndContains(t *testing.T) {
	bl, _ := newTestBlocklist(t)
	ctx := context.Background()

	require.NoError(t, bl.Add(ctx, "jti-1", time.Hour))

	found, err := bl.Contains(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = bl.Contains(ctx, "jti-other")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestBlocklistEntryExpiresWithToken(t *testing.T) {
	bl, mr := newTestBlocklist(t)
	ctx := context.Background()

	require.NoError(t, bl.Add(ctx, "jti-1", time.Minute))
	mr.FastForward(2 * time.Minute)

	found, err := bl.Contains(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestBlocklistSkipsExpiredTokens(t *testing.T) {
	bl, _ := newTestBlocklist(t)
	ctx := context.Background()

	// A token past its expiry cannot be presented anyway.
	require.NoError(t, bl.Add(ctx, "jti-1", -time.Minute))

	found, err := bl.Contains(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, found)
}
