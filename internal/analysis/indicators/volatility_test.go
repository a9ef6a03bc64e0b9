package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"options-advisor/internal/models"
)

func flatCandles(n int, low, high, close float64) []models.Candle {
	candles := make([]models.Candle, n)
	for i := range candles {
		candles[i] = models.Candle{Open: close, High: high, Low: low, Close: close}
	}
	return candles
}

func TestATRPercent_FlatCandles(t *testing.T) {
	// every bar spans 98..102 around a 100 close: TR is 4 throughout
	candles := flatCandles(30, 98, 102, 100)

	pct, err := ATRPercent(candles, DefaultATRPeriod)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, pct, 1e-9)
}

func TestATR_GapUsesPreviousClose(t *testing.T) {
	candles := flatCandles(3, 99, 101, 100)
	// gap up: the range from the prior close dominates
	candles[2] = models.Candle{Open: 110, High: 111, Low: 109, Close: 110}

	values, err := NewATR(2).Calculate(candles)
	require.NoError(t, err)
	// seed = mean(2, 2) = 2, then (2*1 + 11) / 2
	assert.InDelta(t, 2.0, values[1], 1e-12)
	assert.InDelta(t, 6.5, values[2], 1e-12)
}

func TestATR_Errors(t *testing.T) {
	_, err := NewATR(0).Calculate(flatCandles(5, 1, 2, 1.5))
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	_, err = ATRPercent(flatCandles(14, 1, 2, 1.5), 14)
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = ATRPercent(flatCandles(20, 0, 0, 0), 14)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestATR_Name(t *testing.T) {
	assert.Equal(t, "ATR_14", NewATR(14).Name())
}
