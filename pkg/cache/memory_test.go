package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", map[string]int{"a": 1}, time.Minute))

	var got map[string]int
	assert.True(t, s.Get(ctx, "k", &got))
	assert.Equal(t, 1, got["a"])

	require.NoError(t, s.Del(ctx, "k"))
	assert.False(t, s.Get(ctx, "k", &got))
}

func TestMemoryStoreExpiry(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "short", "v", time.Second))
	require.NoError(t, s.Set(ctx, "forever", "v", 0))

	now = now.Add(2 * time.Second)

	var v string
	assert.False(t, s.Get(ctx, "short", &v))
	assert.True(t, s.Get(ctx, "forever", &v))
	assert.Equal(t, "v", v)
}

func TestMemoryStoreDecodeMismatchIsMiss(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "k", "text", 0))

	var n int
	assert.False(t, s.Get(ctx, "k", &n))
}
