package momentum

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/roshimastsensei/log-momentum/internal/cache"
	"github.com/roshimastsensei/log-momentum/internal/models"
)

// CachedSource reads historical prices through a cache. A closed day's price
// does not change, so only successful historical samples are stored;
// current prices always go to the provider.
type CachedSource struct {
	src   PriceSource
	store cache.Store
	ttl   time.Duration
	log   logrus.FieldLogger
}

func NewCachedSource(src PriceSource, store cache.Store, ttl time.Duration, log logrus.FieldLogger) *CachedSource {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &CachedSource{src: src, store: store, ttl: ttl, log: log.WithField("component", "cache")}
}

func (c *CachedSource) CurrentPrice(ctx context.Context, id string) models.Sample {
	return c.src.CurrentPrice(ctx, id)
}

func (c *CachedSource) HistoricalPrice(ctx context.Context, id, date string) models.Sample {
	key := historyKey(id, date)

	v, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.log.WithError(err).WithField("key", key).Warn("cache read failed")
	} else if ok {
		return models.OKSample(v, nil)
	}

	s := c.src.HistoricalPrice(ctx, id, date)
	if s.OK() {
		if err := c.store.Set(ctx, key, s.Value, c.ttl); err != nil {
			c.log.WithError(err).WithField("key", key).Warn("cache write failed")
		}
	}
	return s
}

func historyKey(id, date string) string {
	return "history:" + id + ":" + date
}
