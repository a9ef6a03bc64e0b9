// Package options implements the options analytics engine: Black-Scholes
// Greeks, option chain normalization, expiry handling, and delta-band strike
// selection with a model-only fallback.
package options

import (
	"math"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat/distuv"

	"options-advisor/internal/models"
)

const (
	// DefaultRiskFreeRate is the annual rate used when none is configured.
	DefaultRiskFreeRate = 0.07
	// DaysPerYear converts annual theta into calendar-day theta.
	DaysPerYear = 365.0
	// MinYears is the shortest time to expiry the model accepts (one day).
	MinYears = 1.0 / DaysPerYear
)

// NormCDF is the standard normal cumulative distribution function.
func NormCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

// NormPDF is the standard normal probability density function.
func NormPDF(x float64) float64 {
	return distuv.UnitNormal.Prob(x)
}

// Greeks computes Black-Scholes Greeks for a European option and rounds them
// for display: delta 4dp, gamma 6dp, theta and vega 4dp.
//
// T is in years; non-positive T is treated as one day. sigma may be zero, in
// which case d1 and d2 are zero. optType is case-insensitive and anything
// that is not a call spelling is priced as a put.
func Greeks(S, K, T, r, sigma float64, optType string) models.OptionGreeks {
	t := models.ParseOptionType(optType)
	g := rawGreeks(S, K, T, r, sigma, t)
	delta := round(g.Delta, 4)
	if !t.IsCall() {
		// Round the call delta first so the displayed pair still differs by one.
		delta = round(round(NormCDF(g.D1), 4)-1, 4)
	}
	return models.OptionGreeks{
		Delta:       delta,
		Gamma:       round(g.Gamma, 6),
		ThetaPerDay: round(g.ThetaPerDay, 4),
		VegaPer1Pct: round(g.VegaPer1Pct, 4),
		D1:          round(g.D1, 4),
		D2:          round(g.D2, 4),
	}
}

// rawGreeks is the unrounded computation. Selection compares these values
// against the delta bands.
func rawGreeks(S, K, T, r, sigma float64, optType models.OptionType) models.OptionGreeks {
	if T <= 0 {
		T = MinYears
	}
	sqrtT := math.Sqrt(T)

	var d1, d2 float64
	if sigma > 0 {
		d1 = (math.Log(S/K) + (r+0.5*sigma*sigma)*T) / (sigma * sqrtT)
		d2 = d1 - sigma*sqrtT
	}

	pdf := NormPDF(d1)
	callDelta := NormCDF(d1)
	discount := K * math.Exp(-r*T)

	var gamma float64
	if sigma > 0 {
		gamma = pdf / (S * sigma * sqrtT)
	}
	decay := -(S * pdf * sigma) / (2 * sqrtT)

	g := models.OptionGreeks{
		Gamma:       gamma,
		VegaPer1Pct: S * pdf * sqrtT * 0.01,
		D1:          d1,
		D2:          d2,
	}
	if sigma <= 0 {
		g.VegaPer1Pct = 0
	}

	if optType.IsCall() {
		g.Delta = callDelta
		g.ThetaPerDay = (decay - r*discount*NormCDF(d2)) / DaysPerYear
	} else {
		// Put delta is derived from the call delta so parity holds exactly.
		g.Delta = callDelta - 1
		g.ThetaPerDay = (decay + r*discount*NormCDF(-d2)) / DaysPerYear
	}
	return g
}

func round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
