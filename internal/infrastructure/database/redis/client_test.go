package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/logging"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := NewClient(&RedisConfig{Mode: "standalone", Addr: mr.Addr()}, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestNewClient_Standalone_Success(t *testing.T) {
	_, client := newTestClient(t)
	assert.NoError(t, client.Ping(context.Background()))
	assert.False(t, client.IsCluster())
}

func TestNewClient_ConnectionFailed(t *testing.T) {
	cfg := &RedisConfig{
		Mode:        "standalone",
		Addr:        "localhost:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  1,
	}

	client, err := NewClient(cfg, logging.NewNopLogger())
	assert.ErrorIs(t, err, ErrConnectionFailed)
	assert.Nil(t, client)
}

func TestNewClient_UnknownModeFallsBackToStandalone(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := NewClient(&RedisConfig{Mode: "bogus", Addr: mr.Addr()}, logging.NewNopLogger())
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.Ping(context.Background()))
}

func TestClient_Operations(t *testing.T) {
	_, client := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "foo", "bar", 0).Err())
	val, err := client.Get(ctx, "foo").Result()
	require.NoError(t, err)
	assert.Equal(t, "bar", val)

	ok, err := client.SetNX(ctx, "foo", "other", 0).Result()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, client.Set(ctx, "baz", "qux", 0).Err())
	vals, err := client.MGet(ctx, "foo", "baz", "missing").Result()
	require.NoError(t, err)
	require.Len(t, vals, 3)
	assert.Equal(t, "bar", vals[0])
	assert.Nil(t, vals[2])

	n, err := client.Incr(ctx, "counter").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = client.IncrBy(ctx, "counter", 5).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(6), n)

	deleted, err := client.Del(ctx, "foo").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	exists, err := client.Exists(ctx, "foo").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), exists)
}

func TestClient_Expire_TTL(t *testing.T) {
	_, client := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "k", "v", 0).Err())
	ok, err := client.Expire(ctx, "k", time.Minute).Result()
	require.NoError(t, err)
	assert.True(t, ok)

	ttl, err := client.TTL(ctx, "k").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Second)
}

func TestClient_Close(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := NewClient(&RedisConfig{Mode: "standalone", Addr: mr.Addr()}, logging.NewNopLogger())
	require.NoError(t, err)

	require.NoError(t, client.Close())

	// Commands fail fast after close.
	assert.ErrorIs(t, client.Get(context.Background(), "foo").Err(), ErrClientClosed)
	assert.ErrorIs(t, client.Ping(context.Background()), ErrClientClosed)

	// Close is idempotent.
	assert.NoError(t, client.Close())
}
