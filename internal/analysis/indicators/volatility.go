// Package indicators derives volatility proxies from OHLC candles.
package indicators

import (
	"fmt"

	"options-advisor/internal/models"
)

// DefaultATRPeriod is the lookback used when none is configured.
const DefaultATRPeriod = 14

// ATR calculates the Average True Range.
type ATR struct {
	period int
}

// NewATR creates a new ATR indicator.
func NewATR(period int) *ATR {
	return &ATR{period: period}
}

func (a *ATR) Name() string {
	return fmt.Sprintf("ATR_%d", a.period)
}

func (a *ATR) Period() int {
	return a.period
}

// Calculate returns one ATR value per candle. Entries before the first full
// period are zero.
func (a *ATR) Calculate(candles []models.Candle) ([]float64, error) {
	if a.period <= 0 {
		return nil, ErrInvalidPeriod
	}
	if len(candles) < a.period+1 {
		return nil, ErrInsufficientData
	}

	n := len(candles)
	result := make([]float64, n)
	tr := make([]float64, n)

	// First TR is just high - low
	tr[0] = candles[0].High - candles[0].Low

	for i := 1; i < n; i++ {
		tr[i] = trueRange(candles[i], candles[i-1])
	}

	// First ATR is SMA of TR
	result[a.period-1] = mean(tr[:a.period])

	// Subsequent ATR using Wilder smoothing
	for i := a.period; i < n; i++ {
		result[i] = (result[i-1]*float64(a.period-1) + tr[i]) / float64(a.period)
	}

	return result, nil
}

// Percent returns the latest ATR as a percentage of the latest close, the
// daily ATR% the recommender annualizes.
func (a *ATR) Percent(candles []models.Candle) (float64, error) {
	values, err := a.Calculate(candles)
	if err != nil {
		return 0, err
	}
	last := candles[len(candles)-1].Close
	if last <= 0 {
		return 0, fmt.Errorf("latest close %.2f: %w", last, ErrInsufficientData)
	}
	return values[len(values)-1] / last * 100, nil
}

// ATRPercent is shorthand for NewATR(period).Percent(candles).
func ATRPercent(candles []models.Candle, period int) (float64, error) {
	return NewATR(period).Percent(candles)
}
