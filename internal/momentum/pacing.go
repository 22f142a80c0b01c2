package momentum

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roshimastsensei/log-momentum/internal/models"
)

type FetchFunc func(ctx context.Context) models.Sample

// Pacing decides how the fetches of one computation are scheduled against
// the price provider. Run returns one sample per fetch, in order.
type Pacing interface {
	Name() string
	Run(ctx context.Context, fetches []FetchFunc) []models.Sample
}

// Concurrent issues every fetch at once and waits for all of them.
type Concurrent struct{}

func (Concurrent) Name() string { return "concurrent" }

func (Concurrent) Run(ctx context.Context, fetches []FetchFunc) []models.Sample {
	out := make([]models.Sample, len(fetches))
	var g errgroup.Group
	for i, fetch := range fetches {
		g.Go(func() error {
			out[i] = fetch(ctx)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Sequential issues fetches one at a time and pauses Delay between
// consecutive fetches. If ctx ends during a pause the remaining samples are
// left not fetched.
type Sequential struct {
	Delay time.Duration
}

func (Sequential) Name() string { return "sequential" }

func (s Sequential) Run(ctx context.Context, fetches []FetchFunc) []models.Sample {
	out := make([]models.Sample, len(fetches))
	for i, fetch := range fetches {
		if i > 0 && s.Delay > 0 {
			if err := sleep(ctx, s.Delay); err != nil {
				for j := i; j < len(fetches); j++ {
					out[j] = models.NotFetchedSample(err)
				}
				return out
			}
		}
		out[i] = fetch(ctx)
	}
	return out
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// PacingByName maps a configuration value to a strategy.
func PacingByName(name string, delay time.Duration) (Pacing, bool) {
	switch name {
	case "concurrent", "":
		return Concurrent{}, true
	case "sequential":
		return Sequential{Delay: delay}, true
	default:
		return nil, false
	}
}
