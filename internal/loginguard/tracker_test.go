package loginguard

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testKey = "198.51.100.7"

func newTestTracker(t *testing.T) (*Tracker, *MemoryStore, *time.Time) {
	t.Helper()
	store := NewMemoryStore()
	tr := NewTracker(store, DefaultLimits(), zap.NewNop())
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	tr.now = func() time.Time { return now }
	return tr, store, &now
}

func failTimes(t *testing.T, tr *Tracker, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, tr.RecordFailure(context.Background(), testKey))
	}
}

func TestThresholdBoundaries(t *testing.T) {
	ctx := context.Background()

	t.Run("five failures still proceed", func(t *testing.T) {
		tr, store, _ := newTestTracker(t)
		failTimes(t, tr, 5)

		rec, err := store.Get(ctx, testKey)
		require.NoError(t, err)
		assert.Equal(t, 5, rec.FailureCount)
		assert.Nil(t, rec.BlockedUntil)

		out, err := tr.CheckAndConsume(ctx, testKey)
		require.NoError(t, err)
		assert.Equal(t, OutcomeProceed, out)
	})

	t.Run("sixth failure throttles", func(t *testing.T) {
		tr, store, _ := newTestTracker(t)
		failTimes(t, tr, 6)

		rec, err := store.Get(ctx, testKey)
		require.NoError(t, err)
		require.NotNil(t, rec.BlockedUntil)
		assert.False(t, rec.PermanentlyBlocked)

		out, err := tr.CheckAndConsume(ctx, testKey)
		require.NoError(t, err)
		assert.Equal(t, OutcomeThrottled, out)
	})

	t.Run("eleventh failure blocks permanently", func(t *testing.T) {
		tr, store, _ := newTestTracker(t)
		failTimes(t, tr, 11)

		rec, err := store.Get(ctx, testKey)
		require.NoError(t, err)
		assert.True(t, rec.PermanentlyBlocked)

		// A success cannot clear a permanent block.
		require.NoError(t, tr.RecordSuccess(ctx, testKey))
		rec, err = store.Get(ctx, testKey)
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.True(t, rec.PermanentlyBlocked)

		out, err := tr.CheckAndConsume(ctx, testKey)
		require.NoError(t, err)
		assert.Equal(t, OutcomeBlocked, out)
	})
}

// A client sitting at ten prior failures is pushed over the block
// threshold by the check itself: denied checks while throttled consume
// points, exactly like the point-consumption limiter this replaces.
func TestCheckEscalatesThrottledClientToBlock(t *testing.T) {
	ctx := context.Background()
	tr, store, _ := newTestTracker(t)
	failTimes(t, tr, 10)

	out, err := tr.CheckAndConsume(ctx, testKey)
	require.NoError(t, err)
	assert.Equal(t, OutcomeBlocked, out)

	rec, err := store.Get(ctx, testKey)
	require.NoError(t, err)
	assert.True(t, rec.PermanentlyBlocked)

	// A further failure event is idempotent on the terminal state.
	require.NoError(t, tr.RecordFailure(ctx, testKey))
	rec, err = store.Get(ctx, testKey)
	require.NoError(t, err)
	assert.True(t, rec.PermanentlyBlocked)
	assert.Equal(t, 11, rec.FailureCount)
}

func TestRecordSuccess(t *testing.T) {
	ctx := context.Background()

	t.Run("no-op on a clear identity", func(t *testing.T) {
		tr, store, _ := newTestTracker(t)
		require.NoError(t, tr.RecordSuccess(ctx, testKey))
		rec, err := store.Get(ctx, testKey)
		require.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("clears a counting identity", func(t *testing.T) {
		tr, store, _ := newTestTracker(t)
		failTimes(t, tr, 3)
		require.NoError(t, tr.RecordSuccess(ctx, testKey))
		rec, err := store.Get(ctx, testKey)
		require.NoError(t, err)
		assert.Nil(t, rec)

		out, err := tr.CheckAndConsume(ctx, testKey)
		require.NoError(t, err)
		assert.Equal(t, OutcomeProceed, out)
	})
}

func TestWindowExpiryResetsCounting(t *testing.T) {
	ctx := context.Background()
	tr, store, now := newTestTracker(t)
	failTimes(t, tr, 4)

	*now = now.Add(61 * time.Minute)

	out, err := tr.CheckAndConsume(ctx, testKey)
	require.NoError(t, err)
	assert.Equal(t, OutcomeProceed, out)

	// The expiry was applied lazily at decision time.
	rec, err := store.Get(ctx, testKey)
	require.NoError(t, err)
	assert.Nil(t, rec)

	// The next failure starts a fresh window.
	require.NoError(t, tr.RecordFailure(ctx, testKey))
	rec, err = store.Get(ctx, testKey)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.FailureCount)
	assert.True(t, rec.WindowStart.Equal(*now))
}

func TestThrottleLiftsAfterBlockDuration(t *testing.T) {
	ctx := context.Background()
	tr, _, now := newTestTracker(t)
	failTimes(t, tr, 6)

	out, err := tr.CheckAndConsume(ctx, testKey)
	require.NoError(t, err)
	assert.Equal(t, OutcomeThrottled, out)

	*now = now.Add(2 * time.Hour)

	out, err = tr.CheckAndConsume(ctx, testKey)
	require.NoError(t, err)
	assert.Equal(t, OutcomeProceed, out)
}

func TestOperatorResetLiftsPermanentBlock(t *testing.T) {
	ctx := context.Background()
	tr, _, _ := newTestTracker(t)
	failTimes(t, tr, 11)

	out, err := tr.CheckAndConsume(ctx, testKey)
	require.NoError(t, err)
	assert.Equal(t, OutcomeBlocked, out)

	require.NoError(t, tr.Reset(ctx, testKey))

	out, err = tr.CheckAndConsume(ctx, testKey)
	require.NoError(t, err)
	assert.Equal(t, OutcomeProceed, out)
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (*Record, error) {
	return nil, ErrStoreUnavailable
}

func (brokenStore) CompareAndSet(context.Context, string, *Record, *Record) (bool, error) {
	return false, ErrStoreUnavailable
}

func (brokenStore) Delete(context.Context, string) error {
	return ErrStoreUnavailable
}

func TestStoreFailureDeniesLogin(t *testing.T) {
	tr := NewTracker(brokenStore{}, DefaultLimits(), zap.NewNop())

	out, err := tr.CheckAndConsume(context.Background(), testKey)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.NotEqual(t, OutcomeProceed, out)
}

func TestConcurrentFailuresSerializePerKey(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	tr := NewTracker(store, DefaultLimits(), zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = tr.RecordFailure(ctx, testKey)
		}()
	}
	wg.Wait()

	rec, err := store.Get(ctx, testKey)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 5, rec.FailureCount)
}

func TestMemoryStoreCompareAndSet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now()

	fresh := &Record{FailureCount: 1, WindowStart: now}
	ok, err := store.CompareAndSet(ctx, testKey, nil, fresh)
	require.NoError(t, err)
	assert.True(t, ok)

	// Stale expectation loses.
	ok, err = store.CompareAndSet(ctx, testKey, nil, &Record{FailureCount: 9, WindowStart: now})
	require.NoError(t, err)
	assert.False(t, ok)

	// Matching expectation wins, nil new deletes.
	ok, err = store.CompareAndSet(ctx, testKey, fresh, nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, store.Len())
}
