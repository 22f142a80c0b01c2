package scheduler

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/roshimastsensei/log-momentum/internal/momentum"
)

type Computer interface {
	Compute(ctx context.Context, id string) momentum.Outcome
}

type Notifier interface {
	Send(ctx context.Context, msg string)
}

type WatchlistConfig struct {
	IDs       []string
	Interval  time.Duration // e.g. 1*time.Hour
	Threshold float64       // alert when |accel_log| >= Threshold
	OnResult  func(momentum.Outcome)
}

// WatchlistScheduler recomputes momentum for a fixed set of tokens on an
// interval and raises alerts for large moves.
type WatchlistScheduler struct {
	computer Computer
	notify   Notifier
	cfg      WatchlistConfig
	log      logrus.FieldLogger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewWatchlistScheduler(computer Computer, notify Notifier, cfg WatchlistConfig, log logrus.FieldLogger) *WatchlistScheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 1 * time.Hour
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &WatchlistScheduler{
		computer: computer,
		notify:   notify,
		cfg:      cfg,
		log:      log.WithField("component", "watchlist"),
	}
}

func (s *WatchlistScheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.log.Warn("already running")
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.running = true
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		s.RunNow(ctx)

		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.RunNow(ctx)
			}
		}
	}()

	s.log.WithFields(logrus.Fields{
		"ids":      len(s.cfg.IDs),
		"interval": s.cfg.Interval,
	}).Info("started")
}

// Stop cancels any pass in progress and waits for it to return.
func (s *WatchlistScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.running = false
	s.mu.Unlock()

	s.wg.Wait()
	s.log.Info("stopped")
}

func (s *WatchlistScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// RunNow computes every watched token once, in order.
func (s *WatchlistScheduler) RunNow(ctx context.Context) []momentum.Outcome {
	out := make([]momentum.Outcome, 0, len(s.cfg.IDs))
	for _, id := range s.cfg.IDs {
		if ctx.Err() != nil {
			break
		}
		o := s.computer.Compute(ctx, id)
		out = append(out, o)
		s.process(ctx, o)
	}
	return out
}

func (s *WatchlistScheduler) process(ctx context.Context, o momentum.Outcome) {
	if s.cfg.OnResult != nil {
		s.cfg.OnResult(o)
	}

	log := s.log.WithField("id", o.ID)
	if o.Kind != momentum.KindOK {
		log.WithField("kind", o.Kind).Warn("no momentum this pass")
		return
	}
	if math.Abs(o.AccelLog) < s.cfg.Threshold {
		log.WithField("accel_log", o.AccelLog).Debug("below alert threshold")
		return
	}
	if s.notify != nil {
		s.notify.Send(ctx, alertMessage(o, s.cfg.Threshold))
	}
}

func alertMessage(o momentum.Outcome, threshold float64) string {
	direction := "accelerating"
	if o.AccelLog < 0 {
		direction = "decelerating"
	}
	return fmt.Sprintf("%s %s: accel_log %+.4f (threshold %.2f) | now $%.6g, 3d $%.6g, 7d $%.6g",
		o.ID, direction, o.AccelLog, threshold, o.Now.Value, o.Minus3.Value, o.Minus7.Value)
}
