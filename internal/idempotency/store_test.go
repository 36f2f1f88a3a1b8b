package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestClaim(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	s := NewStore(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, s.Claim(ctx, "receipt.print", "abc"))
	require.ErrorIs(t, s.Claim(ctx, "receipt.print", "abc"), ErrConflict)
	require.NoError(t, s.Claim(ctx, "cash.record", "abc"), "keys are scoped per module")
	require.True(t, mr.Exists("pos:idem:receipt.print:abc"))

	require.NoError(t, s.Release(ctx, "receipt.print", "abc"))
	require.NoError(t, s.Claim(ctx, "receipt.print", "abc"))

	mr.FastForward(2 * time.Minute)
	require.NoError(t, s.Claim(ctx, "receipt.print", "abc"), "claims expire with the ttl")

	require.Error(t, s.Claim(ctx, "", "abc"))
}

func TestClaimWithoutKeyOrClient(t *testing.T) {
	ctx := context.Background()

	var s *Store
	require.NoError(t, s.Claim(ctx, "m", "k"))
	require.NoError(t, NewStore(nil, time.Minute).Claim(ctx, "m", "k"))
	require.NoError(t, NewStore(nil, time.Minute).Release(ctx, "m", "k"))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	s = NewStore(client, time.Minute)
	require.NoError(t, s.Claim(ctx, "m", ""))
	require.NoError(t, s.Claim(ctx, "m", ""))
}
