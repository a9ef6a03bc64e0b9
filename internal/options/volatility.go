package options

import "math"

const (
	// DefaultSigma is used when no usable volatility proxy is available.
	DefaultSigma = 0.20
	// DefaultATRPercent is the daily ATR% assumed when the signal layer sends none.
	DefaultATRPercent = 2.0
	// TradingDaysPerYear annualizes daily ATR%.
	TradingDaysPerYear = 252.0
)

// AnnualizeATRPercent scales a daily ATR% by sqrt(252).
func AnnualizeATRPercent(dailyATRPct float64) float64 {
	return dailyATRPct * math.Sqrt(TradingDaysPerYear)
}

// EstimateVolatility converts an annualized ATR percentage into sigma.
// Missing or non-positive input yields DefaultSigma.
func EstimateVolatility(annualizedATRPct float64) float64 {
	if math.IsNaN(annualizedATRPct) || annualizedATRPct <= 0 {
		return DefaultSigma
	}
	return annualizedATRPct / 100
}

// SigmaFromDailyATR is the full daily ATR% to sigma conversion used by the
// recommender. A non-positive daily ATR% falls back to DefaultATRPercent.
func SigmaFromDailyATR(dailyATRPct float64) float64 {
	if math.IsNaN(dailyATRPct) || dailyATRPct <= 0 {
		dailyATRPct = DefaultATRPercent
	}
	return EstimateVolatility(AnnualizeATRPercent(dailyATRPct))
}
