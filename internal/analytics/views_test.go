package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	ctx := context.Background()
	err = client.Ping(ctx).Err()
	require.NoError(t, err)

	return client, mr
}

func TestViewCounter_RecordAndRead(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	counter := NewViewCounter(client)
	ctx := context.Background()
	today := time.Now().UTC()

	t.Run("unknown project reads zero", func(t *testing.T) {
		n, err := counter.ViewsOn(ctx, "shelf-99999-9999", today)
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
	})

	t.Run("increments accumulate", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			require.NoError(t, counter.RecordView(ctx, "shelf-12345-6789"))
		}

		n, err := counter.ViewsOn(ctx, "shelf-12345-6789", today)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})

	t.Run("counters are per project", func(t *testing.T) {
		require.NoError(t, counter.RecordView(ctx, "shelf-11111-1111"))

		n, err := counter.ViewsOn(ctx, "shelf-11111-1111", today)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("counter has a TTL", func(t *testing.T) {
		key := counter.dayKey("shelf-12345-6789", today)
		assert.Greater(t, mr.TTL(key), time.Duration(0))
	})
}

func TestViewCounter_Snapshot(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	counter := NewViewCounter(client)
	ctx := context.Background()
	today := time.Now().UTC()

	require.NoError(t, counter.RecordView(ctx, "shelf-12345-6789"))
	require.NoError(t, counter.RecordView(ctx, "shelf-12345-6789"))
	require.NoError(t, counter.RecordView(ctx, "shelf-11111-1111"))

	snap, err := counter.Snapshot(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{
		"shelf-12345-6789": 2,
		"shelf-11111-1111": 1,
	}, snap)
}

type fakeDailyStore struct {
	rows map[string]int64
}

func (f *fakeDailyStore) UpsertDaily(_ context.Context, projectID string, _ time.Time, views int64) error {
	f.rows[projectID] = views
	return nil
}

func TestRollup_Run(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	counter := NewViewCounter(client)
	store := &fakeDailyStore{rows: make(map[string]int64)}
	rollup := NewRollup(counter, store)

	ctx := context.Background()
	today := time.Now().UTC()

	require.NoError(t, counter.RecordView(ctx, "shelf-12345-6789"))
	require.NoError(t, counter.RecordView(ctx, "shelf-12345-6789"))

	written, err := rollup.Run(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, 1, written)
	assert.Equal(t, int64(2), store.rows["shelf-12345-6789"])

	t.Run("re-running overwrites with the latest counter", func(t *testing.T) {
		require.NoError(t, counter.RecordView(ctx, "shelf-12345-6789"))

		written, err := rollup.Run(ctx, today)
		require.NoError(t, err)
		assert.Equal(t, 1, written)
		assert.Equal(t, int64(3), store.rows["shelf-12345-6789"])
	})
}
