package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gabaylakad/backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore_SetGet(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "v", time.Minute))

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)
}

func TestSessionStore_Expiry(t *testing.T) {
	var mu sync.Mutex
	current := time.Now()
	store := NewSessionStoreWithClock(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return current
	})
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "v", time.Second))

	_, err := store.Get(ctx, "k")
	require.NoError(t, err)

	mu.Lock()
	current = current.Add(2 * time.Second)
	mu.Unlock()

	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)
}

func TestSessionStore_OverwriteShortensTTL(t *testing.T) {
	var mu sync.Mutex
	current := time.Now()
	store := NewSessionStoreWithClock(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return current
	})
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "v", time.Hour))
	require.NoError(t, store.Set(ctx, "k", "v", time.Second))

	mu.Lock()
	current = current.Add(2 * time.Second)
	mu.Unlock()

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, repository.ErrKeyNotFound)
}
