package momentum

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roshimastsensei/log-momentum/internal/cache"
	"github.com/roshimastsensei/log-momentum/internal/logger"
	"github.com/roshimastsensei/log-momentum/internal/models"
)

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (float64, bool, error) {
	return 0, false, errors.New("unreachable")
}
func (brokenStore) Set(context.Context, string, float64, time.Duration) error {
	return errors.New("unreachable")
}
func (brokenStore) Ping(context.Context) error { return errors.New("unreachable") }
func (brokenStore) Close() error               { return nil }

func TestCachedSource_HistoricalHit(t *testing.T) {
	store := cache.NewMemory(0)
	defer store.Close()
	src := newFakeSource(okSample(200), okSample(10), okSample(5))
	cs := NewCachedSource(src, store, time.Hour, logger.Discard())
	ctx := context.Background()

	first := cs.HistoricalPrice(ctx, "bitcoin", "16-10-2026")
	second := cs.HistoricalPrice(ctx, "bitcoin", "16-10-2026")
	require.True(t, first.OK())
	require.True(t, second.OK())
	assert.Equal(t, first.Value, second.Value)
	assert.Equal(t, []string{"bitcoin@16-10-2026"}, src.Calls())
}

func TestCachedSource_CurrentNeverCached(t *testing.T) {
	store := cache.NewMemory(0)
	defer store.Close()
	src := newFakeSource(okSample(200), okSample(10), okSample(5))
	cs := NewCachedSource(src, store, time.Hour, logger.Discard())

	cs.CurrentPrice(context.Background(), "bitcoin")
	cs.CurrentPrice(context.Background(), "bitcoin")
	assert.Len(t, src.Calls(), 2)
	assert.Equal(t, 0, store.Len())
}

func TestCachedSource_FailuresNotCached(t *testing.T) {
	store := cache.NewMemory(0)
	defer store.Close()
	src := newFakeSource(okSample(200), models.FailedSample(errors.New("429"), nil), okSample(5))
	cs := NewCachedSource(src, store, time.Hour, logger.Discard())

	s := cs.HistoricalPrice(context.Background(), "bitcoin", "16-10-2026")
	assert.False(t, s.OK())
	assert.Equal(t, 0, store.Len())
}

func TestCachedSource_StoreErrorsFallThrough(t *testing.T) {
	src := newFakeSource(okSample(200), okSample(10), okSample(5))
	cs := NewCachedSource(src, brokenStore{}, time.Hour, logger.Discard())

	s := cs.HistoricalPrice(context.Background(), "bitcoin", "12-10-2026")
	require.True(t, s.OK())
	assert.Equal(t, 5.0, s.Value)
}

func TestCachedSource_ServiceSecondRequestSkipsHistory(t *testing.T) {
	store := cache.NewMemory(0)
	defer store.Close()
	src := newFakeSource(okSample(200), okSample(10), okSample(5))
	svc := newTestService(NewCachedSource(src, store, time.Hour, logger.Discard()), Options{})

	a := svc.Compute(context.Background(), "bitcoin")
	b := svc.Compute(context.Background(), "bitcoin")
	assert.Equal(t, a.AccelLog, b.AccelLog)
	assert.Len(t, src.Calls(), 4, "3 fetches, then only the current price")
}
