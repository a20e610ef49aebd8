package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCachesWithinTTL(t *testing.T) {
	store := NewStore[int](time.Minute)
	var calls int32
	fill := func(ctx context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 42, nil
	}

	first, err := store.Get(context.Background(), "k", fill)
	require.NoError(t, err)
	second, err := store.Get(context.Background(), "k", fill)
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, 42, second.Value)
	assert.Equal(t, first.ID, second.ID, "cached snapshot keeps its identity")
}

func TestGetRecomputesAfterExpiry(t *testing.T) {
	store := NewStore[int](time.Minute)
	now := time.Now()
	store.now = func() time.Time { return now }

	var calls int32
	fill := func(ctx context.Context) (int, error) {
		return int(atomic.AddInt32(&calls, 1)), nil
	}

	first, err := store.Get(context.Background(), "k", fill)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Value)

	now = now.Add(2 * time.Minute)
	second, err := store.Get(context.Background(), "k", fill)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Value)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestRefreshBypassesLiveEntry(t *testing.T) {
	store := NewStore[int](time.Minute)
	var calls int32
	fill := func(ctx context.Context) (int, error) {
		return int(atomic.AddInt32(&calls, 1)), nil
	}

	_, err := store.Get(context.Background(), "k", fill)
	require.NoError(t, err)

	refreshed, err := store.Refresh(context.Background(), "k", fill)
	require.NoError(t, err)
	assert.Equal(t, 2, refreshed.Value)

	cached, err := store.Get(context.Background(), "k", fill)
	require.NoError(t, err)
	assert.Equal(t, 2, cached.Value, "refresh replaced the stored entry")
}

func TestFillErrorNotCached(t *testing.T) {
	store := NewStore[int](time.Minute)
	var calls int32
	fill := func(ctx context.Context) (int, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return 0, errors.New("feed unavailable")
		}
		return 7, nil
	}

	_, err := store.Get(context.Background(), "k", fill)
	require.Error(t, err)

	snapshot, err := store.Get(context.Background(), "k", fill)
	require.NoError(t, err)
	assert.Equal(t, 7, snapshot.Value)
}

func TestConcurrentGetSharesOneFill(t *testing.T) {
	store := NewStore[int](time.Minute)
	var calls int32
	started := make(chan struct{})
	release := make(chan struct{})
	fill := func(ctx context.Context) (int, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
		}
		<-release
		return 9, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snapshot, err := store.Get(context.Background(), "k", fill)
			assert.NoError(t, err)
			results[i] = snapshot.Value
		}(i)
	}

	<-started
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, v := range results {
		assert.Equal(t, 9, v)
	}
}

func TestZeroTTLDisablesReuse(t *testing.T) {
	store := NewStore[int](0)
	var calls int32
	fill := func(ctx context.Context) (int, error) {
		return int(atomic.AddInt32(&calls, 1)), nil
	}

	_, err := store.Get(context.Background(), "k", fill)
	require.NoError(t, err)
	second, err := store.Get(context.Background(), "k", fill)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Value)

	_, ok := store.Peek("k")
	assert.False(t, ok)
}

func TestPeek(t *testing.T) {
	store := NewStore[string](time.Minute)
	_, ok := store.Peek("missing")
	assert.False(t, ok)

	_, err := store.Get(context.Background(), "k", func(ctx context.Context) (string, error) {
		return "v", nil
	})
	require.NoError(t, err)

	snapshot, ok := store.Peek("k")
	require.True(t, ok)
	assert.Equal(t, "v", snapshot.Value)
}

func TestContentKey(t *testing.T) {
	a := ContentKey("data", "census.xlsx", "2026S")
	b := ContentKey("data", "census.xlsx", "2026S")
	c := ContentKey("data", "census.xlsx", "2025S")
	d := ContentKey("data", "census.xlsx2026S")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d, "part boundaries are part of the key")
	assert.Len(t, a, 16)
}
