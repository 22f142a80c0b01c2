package momentum

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/roshimastsensei/log-momentum/internal/ethereum"
	"github.com/roshimastsensei/log-momentum/internal/external"
	"github.com/roshimastsensei/log-momentum/internal/models"
)

const (
	ShortWindowDays = 3
	LongWindowDays  = 7
)

type PriceSource interface {
	CurrentPrice(ctx context.Context, id string) models.Sample
	HistoricalPrice(ctx context.Context, id, date string) models.Sample
}

type ContractResolver interface {
	ResolveContract(ctx context.Context, platform, address string) (string, error)
}

type Recorder interface {
	Record(ctx context.Context, rec *models.MomentumRecord) (*models.MomentumRecord, error)
}

type Kind int

const (
	KindOK Kind = iota
	// KindUnavailable: at least one sample failed or was never fetched.
	KindUnavailable
	// KindUndefined: all samples present but outside the log's domain.
	KindUndefined
	// KindUnknownToken: a contract address the provider does not list.
	KindUnknownToken
	// KindResolveFailed: contract lookup failed for any other reason.
	KindResolveFailed
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindUnavailable:
		return "unavailable"
	case KindUndefined:
		return "undefined"
	case KindUnknownToken:
		return "unknown_token"
	case KindResolveFailed:
		return "resolve_failed"
	default:
		return "unknown"
	}
}

type Outcome struct {
	ID         string // as requested
	CoinID     string // provider id the samples were fetched for
	Kind       Kind
	Now        models.Sample
	Minus3     models.Sample
	Minus7     models.Sample
	Minus3Date string
	Minus7Date string
	AccelLog   float64
	ComputedAt time.Time
	Err        error
}

type Options struct {
	Pacing   Pacing
	Resolver ContractResolver // nil disables contract addresses
	Platform string
	Recorder Recorder // nil disables history
	Clock    func() time.Time
	Logger   logrus.FieldLogger
}

type Service struct {
	src      PriceSource
	pacing   Pacing
	resolver ContractResolver
	platform string
	recorder Recorder
	clock    func() time.Time
	log      logrus.FieldLogger
}

func NewService(src PriceSource, opts Options) *Service {
	if opts.Pacing == nil {
		opts.Pacing = Concurrent{}
	}
	if opts.Platform == "" {
		opts.Platform = "ethereum"
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Service{
		src:      src,
		pacing:   opts.Pacing,
		resolver: opts.Resolver,
		platform: opts.Platform,
		recorder: opts.Recorder,
		clock:    opts.Clock,
		log:      opts.Logger.WithField("component", "momentum"),
	}
}

func (s *Service) Pacing() Pacing { return s.pacing }

// Compute fetches the three samples for id and derives the metric. It never
// fails outright: every failure mode is reported through Outcome.Kind.
func (s *Service) Compute(ctx context.Context, id string) Outcome {
	id = strings.TrimSpace(id)
	now := s.clock()
	out := Outcome{
		ID:         id,
		CoinID:     id,
		Minus3Date: HistoryDate(now, ShortWindowDays),
		Minus7Date: HistoryDate(now, LongWindowDays),
		ComputedAt: now.UTC(),
	}
	log := s.log.WithField("id", id)

	if s.resolver != nil && ethereum.IsAddress(id) {
		addr := ethereum.Normalize(id)
		coinID, err := s.resolver.ResolveContract(ctx, s.platform, addr)
		if err != nil {
			out.Err = err
			out.Kind = KindResolveFailed
			if errors.Is(err, external.ErrNotFound) {
				out.Kind = KindUnknownToken
			}
			out.Now, out.Minus3, out.Minus7 = models.NotFetchedSample(nil), models.NotFetchedSample(nil), models.NotFetchedSample(nil)
			log.WithError(err).Warn("contract resolution failed")
			return out
		}
		log.WithField("coin", coinID).Debug("resolved contract address")
		out.CoinID = coinID
	}

	coin := out.CoinID
	samples := s.pacing.Run(ctx, []FetchFunc{
		func(ctx context.Context) models.Sample { return s.src.CurrentPrice(ctx, coin) },
		func(ctx context.Context) models.Sample { return s.src.HistoricalPrice(ctx, coin, out.Minus3Date) },
		func(ctx context.Context) models.Sample { return s.src.HistoricalPrice(ctx, coin, out.Minus7Date) },
	})
	out.Now, out.Minus3, out.Minus7 = samples[0], samples[1], samples[2]

	if !out.Now.OK() || !out.Minus3.OK() || !out.Minus7.OK() {
		out.Kind = KindUnavailable
		log.WithFields(logrus.Fields{
			"now":    out.Now.Status,
			"minus3": out.Minus3.Status,
			"minus7": out.Minus7.Status,
		}).Warn("price samples unavailable")
		return out
	}

	v, ok := Compute(out.Now.Value, out.Minus3.Value, out.Minus7.Value)
	if !ok {
		out.Kind = KindUndefined
		log.Info("momentum undefined for samples")
		return out
	}
	out.Kind = KindOK
	out.AccelLog = v

	log.WithFields(logrus.Fields{
		"pt":        out.Now.Value,
		"pt_minus3": out.Minus3.Value,
		"pt_minus7": out.Minus7.Value,
		"accel_log": v,
	}).Info("momentum computed")

	s.record(ctx, out)
	return out
}

func (s *Service) record(ctx context.Context, out Outcome) {
	if s.recorder == nil {
		return
	}
	_, err := s.recorder.Record(ctx, &models.MomentumRecord{
		TokenID:     out.CoinID,
		PriceNow:    out.Now.Value,
		PriceMinus3: out.Minus3.Value,
		PriceMinus7: out.Minus7.Value,
		AccelLog:    out.AccelLog,
		ComputedAt:  out.ComputedAt,
	})
	if err != nil {
		s.log.WithError(err).WithField("id", out.CoinID).Error("failed to record momentum")
	}
}
