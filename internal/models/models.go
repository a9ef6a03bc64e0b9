// Package models provides domain models for the options advisor.
package models

import (
	"strings"
	"time"

	"options-advisor/internal/errors"
)

// Signal is the directional decision handed over by the signal layer.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalHold Signal = "HOLD"
)

// ParseSignal normalizes a user supplied signal. Unknown values are returned
// upper-cased so validation can report them verbatim.
func ParseSignal(s string) Signal {
	return Signal(strings.ToUpper(strings.TrimSpace(s)))
}

// IsDirectional reports whether the signal maps onto an option type.
func (s Signal) IsDirectional() bool {
	return s == SignalBuy || s == SignalSell
}

// OptionType maps BUY to CE and SELL to PE. HOLD has no contract and must be
// filtered before reaching the engine.
func (s Signal) OptionType() (OptionType, error) {
	switch s {
	case SignalBuy:
		return OptionTypeCE, nil
	case SignalSell:
		return OptionTypePE, nil
	default:
		return "", errors.Wrapf(errors.ErrInvalidSignal, "signal %q", string(s))
	}
}

// Candle represents OHLCV data for a time period.
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}
