package options

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"options-advisor/internal/errors"
	"options-advisor/internal/models"
)

// ChainFetcher fetches a raw option-chain payload from the exchange feed.
// Implementations own sessions, headers and their own request timeout.
type ChainFetcher interface {
	FetchOptionChain(ctx context.Context, symbol string, isIndex bool) (any, error)
}

// Request is one recommendation query.
type Request struct {
	Symbol     string
	Spot       float64
	Signal     models.Signal
	ATRPercent float64 // daily ATR as % of price; <= 0 means absent
	IsIndex    bool
}

// Recommender turns a signal into a single option contract suggestion. It
// keeps no state between calls and is safe for concurrent use.
type Recommender struct {
	fetcher ChainFetcher
	params  SelectorParams
	rate    float64
	now     func() time.Time
	logger  zerolog.Logger
}

// Option configures a Recommender.
type Option func(*Recommender)

// WithRiskFreeRate sets the annual risk-free rate.
func WithRiskFreeRate(rate float64) Option {
	return func(r *Recommender) { r.rate = rate }
}

// WithSelectorParams overrides the delta bands and ladder.
func WithSelectorParams(p SelectorParams) Option {
	return func(r *Recommender) { r.params = p }
}

// WithClock sets the time source used for time to expiry.
func WithClock(now func() time.Time) Option {
	return func(r *Recommender) { r.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Recommender) { r.logger = logger }
}

// NewRecommender creates a Recommender. A nil fetcher always uses the model.
func NewRecommender(fetcher ChainFetcher, opts ...Option) *Recommender {
	r := &Recommender{
		fetcher: fetcher,
		params:  DefaultSelectorParams(),
		rate:    DefaultRiskFreeRate,
		now:     time.Now,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Recommend returns the best contract for the request. Only invalid requests
// produce an error; feed failures and unusable chains fall back to the model.
// A request without a spot takes the underlying value from the fetched chain.
func (r *Recommender) Recommend(ctx context.Context, req Request) (models.Recommendation, error) {
	optType, err := req.Signal.OptionType()
	if err != nil {
		return models.Recommendation{}, err
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	log := r.logger.With().Str("symbol", symbol).Str("signal", string(req.Signal)).Logger()
	raw, fetched := r.fetch(ctx, symbol, req.IsIndex, log)

	spot := req.Spot
	if !(spot > 0) && fetched {
		if v, ok := UnderlyingValue(raw); ok {
			log.Debug().Float64("spot", v).Msg("Spot taken from option chain")
			spot = v
		}
	}
	if math.IsNaN(spot) || math.IsInf(spot, 0) || spot <= 0 {
		return models.Recommendation{}, errors.NewValidationError("spot", req.Spot, "must be positive")
	}

	sigma := SigmaFromDailyATR(req.ATRPercent)

	if fetched {
		records := ParseChain(raw)
		if len(records) == 0 {
			log.Debug().Msg("Option chain empty after normalization, using model")
		} else if rec, ok := r.fromChain(records, spot, optType, sigma, log); ok {
			log.Debug().Float64("strike", rec.Strike).Str("expiry", rec.ExpiryOrEmpty()).Msg("Recommendation from live chain")
			return annotate(rec, symbol, req.Signal, spot, sigma), nil
		} else {
			log.Debug().Int("records", len(records)).Msg("No OTM candidates in chain, using model")
		}
	}

	rec := r.params.SelectSynthetic(spot, optType, sigma, DefaultYears, r.rate, r.params.TargetDelta(optType))
	log.Debug().Float64("strike", rec.Strike).Float64("sigma", sigma).Msg("Recommendation from model")
	return annotate(rec, symbol, req.Signal, spot, sigma), nil
}

// annotate records the inputs a journal entry needs alongside the result.
func annotate(rec models.Recommendation, symbol string, signal models.Signal, spot, sigma float64) models.Recommendation {
	rec.Symbol = symbol
	rec.Signal = signal
	rec.Spot = spot
	rec.Sigma = sigma
	return rec
}

// fetch collapses every transport outcome into "payload or nothing".
func (r *Recommender) fetch(ctx context.Context, symbol string, isIndex bool, log zerolog.Logger) (any, bool) {
	if r.fetcher == nil || symbol == "" {
		return nil, false
	}
	raw, err := r.fetcher.FetchOptionChain(ctx, symbol, isIndex)
	if err != nil {
		log.Warn().Err(err).Msg("Option chain fetch failed, using model")
		return nil, false
	}
	if raw == nil {
		return nil, false
	}
	return raw, true
}

func (r *Recommender) fromChain(records []models.StrikeRecord, spot float64, optType models.OptionType, sigma float64, log zerolog.Logger) (models.Recommendation, bool) {
	now := r.now()
	T := DefaultYears
	selected := records
	if expiry, ok := NearestExpiry(Expiries(records), now); ok {
		selected = RecordsForExpiry(records, expiry)
		T = YearsToExpiry(expiry, now)
		log.Debug().Str("expiry", expiry).Float64("years", T).Int("records", len(selected)).Msg("Using nearest expiry")
	}
	return r.params.SelectFromChain(selected, spot, optType, sigma, T, r.rate)
}

// RecordsForExpiry keeps the records of one expiry in feed order.
func RecordsForExpiry(records []models.StrikeRecord, expiry string) []models.StrikeRecord {
	out := make([]models.StrikeRecord, 0, len(records))
	for _, rec := range records {
		if rec.Expiry == expiry {
			out = append(out, rec)
		}
	}
	return out
}
