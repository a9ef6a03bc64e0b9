package store

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"options-advisor/internal/models"
)

// Property: for any recommendation, saving it to the journal and reading it
// back by id produces the same contract, greeks and metadata.
func TestProperty_RecommendationRoundTrip(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	symbols := []string{"RELIANCE", "TCS", "INFY", "NIFTY", "BANKNIFTY"}

	properties.Property("Recommendation round-trip: save then load by id", prop.ForAll(
		func(symbolIdx int, isCall bool, strike, delta, premium float64, withExpiry bool) bool {
			ctx := context.Background()

			optType, signal := models.OptionTypePE, models.SignalSell
			if isCall {
				optType, signal = models.OptionTypeCE, models.SignalBuy
			}
			rec := models.Recommendation{
				OptionType:    optType,
				Strike:        strike,
				Greeks:        models.OptionGreeks{Delta: delta, Gamma: 0.0012, ThetaPerDay: -1.5, VegaPer1Pct: 2.25, D1: 0.4, D2: 0.3},
				PremiumApprox: premium,
				ExpiryDays:    7,
				Source:        models.SourceModel,
				Rationale:     "round trip",
				Symbol:        symbols[symbolIdx%len(symbols)],
				Signal:        signal,
				Spot:          strike * 0.98,
				Sigma:         0.3175,
			}
			if withExpiry {
				expiry := "26-Feb-2026"
				rec.Expiry = &expiry
				rec.Source = models.SourceChain
			}

			if err := store.SaveRecommendation(ctx, &rec); err != nil {
				t.Logf("save failed: %v", err)
				return false
			}
			if rec.ID == "" || rec.CreatedAt.IsZero() {
				return false
			}

			got, err := store.GetRecommendationByID(ctx, rec.ID)
			if err != nil {
				t.Logf("load failed: %v", err)
				return false
			}

			return got.OptionType == rec.OptionType &&
				floatEqual(got.Strike, rec.Strike, 1e-9) &&
				floatEqual(got.Greeks.Delta, rec.Greeks.Delta, 1e-12) &&
				floatEqual(got.PremiumApprox, rec.PremiumApprox, 1e-9) &&
				got.ExpiryOrEmpty() == rec.ExpiryOrEmpty() &&
				(got.Expiry == nil) == (rec.Expiry == nil) &&
				got.Source == rec.Source &&
				got.Signal == rec.Signal &&
				got.Symbol == rec.Symbol &&
				got.CreatedAt.Equal(rec.CreatedAt)
		},
		gen.IntRange(0, 100),
		gen.Bool(),
		gen.Float64Range(10, 50000),
		gen.Float64Range(-1, 1),
		gen.Float64Range(0, 500),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

func floatEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}
