package options

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGreeks_AtTheMoneyWeeklyCall(t *testing.T) {
	g := Greeks(2500, 2500, 7.0/365, 0.07, 0.20, "CE")

	assert.InDelta(t, 0.52, g.Delta, 0.01)
	assert.Greater(t, g.Gamma, 0.0)
	assert.Less(t, g.ThetaPerDay, 0.0)
	assert.Greater(t, g.VegaPer1Pct, 0.0)
	assert.InDelta(t, g.D1-g.D2, 0.20*math.Sqrt(7.0/365), 1e-3)
}

func TestGreeks_DeepStrikes(t *testing.T) {
	otm := Greeks(100, 1000, 0.1, 0.07, 0.2, "CE")
	itm := Greeks(1000, 100, 0.1, 0.07, 0.2, "CE")

	assert.Less(t, otm.Delta, 0.001)
	assert.Greater(t, itm.Delta, 0.999)
}

func TestGreeks_NonPositiveTimeUsesOneDay(t *testing.T) {
	oneDay := Greeks(2500, 2550, 1.0/365, 0.07, 0.25, "CE")

	assert.Equal(t, oneDay, Greeks(2500, 2550, 0, 0.07, 0.25, "CE"))
	assert.Equal(t, oneDay, Greeks(2500, 2550, -3, 0.07, 0.25, "CE"))
}

func TestGreeks_ZeroSigma(t *testing.T) {
	g := Greeks(2500, 2400, 7.0/365, 0.07, 0, "CE")

	assert.Equal(t, 0.0, g.D1)
	assert.Equal(t, 0.0, g.D2)
	assert.Equal(t, 0.0, g.Gamma)
	assert.Equal(t, 0.0, g.VegaPer1Pct)
	assert.Equal(t, 0.5, g.Delta)
	assert.False(t, math.IsNaN(g.ThetaPerDay))
}

func TestGreeks_OptionTypeSpellings(t *testing.T) {
	call := Greeks(2500, 2600, 0.05, 0.07, 0.3, "CE")
	put := Greeks(2500, 2600, 0.05, 0.07, 0.3, "PE")

	for _, spelling := range []string{"ce", "Call", "CALL", " c "} {
		assert.Equal(t, call, Greeks(2500, 2600, 0.05, 0.07, 0.3, spelling), spelling)
	}
	for _, spelling := range []string{"pe", "put", "xyz", ""} {
		assert.Equal(t, put, Greeks(2500, 2600, 0.05, 0.07, 0.3, spelling), spelling)
	}
}

func TestGreeks_ThetaCarryAsymmetry(t *testing.T) {
	ce := Greeks(2500, 2500, 0.1, 0.07, 0.2, "CE")
	pe := Greeks(2500, 2500, 0.1, 0.07, 0.2, "PE")

	// Puts carry +rK e^{-rT} N(-d2), calls the negative term, so the put decays slower.
	assert.Greater(t, pe.ThetaPerDay, ce.ThetaPerDay)
	assert.Equal(t, ce.VegaPer1Pct, pe.VegaPer1Pct)
}

func TestGreeks_Rounding(t *testing.T) {
	g := Greeks(2487.35, 2531, 0.0312, 0.068, 0.2731, "CE")

	assert.Equal(t, g.Delta, round(g.Delta, 4))
	assert.Equal(t, g.Gamma, round(g.Gamma, 6))
	assert.Equal(t, g.ThetaPerDay, round(g.ThetaPerDay, 4))
	assert.Equal(t, g.VegaPer1Pct, round(g.VegaPer1Pct, 4))
}

func TestEstimateVolatility(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"absent", 0, DefaultSigma},
		{"negative", -4, DefaultSigma},
		{"nan", math.NaN(), DefaultSigma},
		{"percent to fraction", 31.75, 0.3175},
		{"small", 5, 0.05},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, EstimateVolatility(tt.in), 1e-12)
		})
	}
}

func TestSigmaFromDailyATR(t *testing.T) {
	assert.InDelta(t, 2*math.Sqrt(252)/100, SigmaFromDailyATR(2), 1e-12)
	assert.Equal(t, SigmaFromDailyATR(DefaultATRPercent), SigmaFromDailyATR(0))
	assert.InDelta(t, 1.5*math.Sqrt(252), AnnualizeATRPercent(1.5), 1e-12)
}
