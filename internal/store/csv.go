package store

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"options-advisor/internal/errors"
	"options-advisor/internal/models"
	"options-advisor/pkg/utils"
)

// candleRow is the on-disk shape of a candle export. Timestamps are kept as
// text so date-only and intraday exports both load.
type candleRow struct {
	Timestamp string  `csv:"timestamp"`
	Open      float64 `csv:"open"`
	High      float64 `csv:"high"`
	Low       float64 `csv:"low"`
	Close     float64 `csv:"close"`
	Volume    int64   `csv:"volume,omitempty"`
}

var candleTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02-Jan-2006",
}

// LoadCandlesCSV reads OHLCV candles from a CSV file with a header row.
func LoadCandlesCSV(path string) ([]models.Candle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening candles file: %w", err)
	}
	defer f.Close()
	return ReadCandlesCSV(f)
}

// ReadCandlesCSV parses candles and returns them in chronological order.
func ReadCandlesCSV(r io.Reader) ([]models.Candle, error) {
	var rows []candleRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, errors.NewDataError("candles", "", "malformed csv", err)
	}

	candles := make([]models.Candle, 0, len(rows))
	for i, row := range rows {
		ts, err := parseCandleTime(row.Timestamp)
		if err != nil {
			return nil, errors.NewDataError("candles", "", fmt.Sprintf("row %d: bad timestamp %q", i+1, row.Timestamp), err)
		}
		candles = append(candles, models.Candle{
			Timestamp: ts,
			Open:      row.Open,
			High:      row.High,
			Low:       row.Low,
			Close:     row.Close,
			Volume:    row.Volume,
		})
	}

	sort.SliceStable(candles, func(i, j int) bool {
		return candles[i].Timestamp.Before(candles[j].Timestamp)
	})
	return candles, nil
}

func parseCandleTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range candleTimeLayouts {
		t, err := time.ParseInLocation(layout, s, utils.IndiaLocation)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// recommendationRow is the flat export shape of a journal entry.
type recommendationRow struct {
	ID         string  `csv:"id"`
	CreatedAt  string  `csv:"created_at"`
	Symbol     string  `csv:"symbol"`
	Signal     string  `csv:"signal"`
	Spot       float64 `csv:"spot"`
	OptionType string  `csv:"option_type"`
	Strike     float64 `csv:"strike"`
	Expiry     string  `csv:"expiry"`
	ExpiryDays float64 `csv:"expiry_days"`
	Premium    float64 `csv:"premium"`
	Delta      float64 `csv:"delta"`
	Gamma      float64 `csv:"gamma"`
	Theta      float64 `csv:"theta_per_day"`
	Vega       float64 `csv:"vega_per_1pct"`
	Source     string  `csv:"source"`
	Rationale  string  `csv:"rationale"`
}

// WriteRecommendationsCSV exports journal entries with a header row.
func WriteRecommendationsCSV(w io.Writer, recs []models.Recommendation) error {
	rows := make([]recommendationRow, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, recommendationRow{
			ID:         r.ID,
			CreatedAt:  r.CreatedAt.In(utils.IndiaLocation).Format(time.RFC3339),
			Symbol:     r.Symbol,
			Signal:     string(r.Signal),
			Spot:       r.Spot,
			OptionType: string(r.OptionType),
			Strike:     r.Strike,
			Expiry:     r.ExpiryOrEmpty(),
			ExpiryDays: r.ExpiryDays,
			Premium:    r.PremiumApprox,
			Delta:      r.Greeks.Delta,
			Gamma:      r.Greeks.Gamma,
			Theta:      r.Greeks.ThetaPerDay,
			Vega:       r.Greeks.VegaPer1Pct,
			Source:     string(r.Source),
			Rationale:  r.Rationale,
		})
	}
	return gocsv.Marshal(&rows, w)
}
