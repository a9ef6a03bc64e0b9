package models

import (
	"strings"
	"time"
)

// OptionType is the NSE contract side: CE for calls, PE for puts.
type OptionType string

const (
	OptionTypeCE OptionType = "CE"
	OptionTypePE OptionType = "PE"
)

// ParseOptionType maps any call spelling to CE. Everything else is PE.
func ParseOptionType(s string) OptionType {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CE", "C", "CALL", "CALLS":
		return OptionTypeCE
	default:
		return OptionTypePE
	}
}

// IsCall returns true for CE.
func (t OptionType) IsCall() bool {
	return t == OptionTypeCE
}

// RecommendationSource tells whether a recommendation came off a live chain
// or from the pricing model alone.
type RecommendationSource string

const (
	SourceChain RecommendationSource = "chain"
	SourceModel RecommendationSource = "model"
)

// OptionGreeks represents Black-Scholes Greeks for a single contract.
type OptionGreeks struct {
	Delta       float64 `json:"delta"`
	Gamma       float64 `json:"gamma"`
	ThetaPerDay float64 `json:"theta_per_day"`
	VegaPer1Pct float64 `json:"vega_per_1pct"`
	D1          float64 `json:"d1"`
	D2          float64 `json:"d2"`
}

// StrikeRecord is one normalized row of an option chain snapshot.
type StrikeRecord struct {
	Strike         float64 `json:"strike"`
	Expiry         string  `json:"expiry"`
	CEPrice        float64 `json:"ce_price"`
	PEPrice        float64 `json:"pe_price"`
	CEOpenInterest int64   `json:"ce_open_interest"`
	PEOpenInterest int64   `json:"pe_open_interest"`
}

// Price returns the observed premium for the given side.
func (r StrikeRecord) Price(t OptionType) float64 {
	if t.IsCall() {
		return r.CEPrice
	}
	return r.PEPrice
}

// Recommendation is the single contract suggested for a signal.
// The trailing context fields are set by the recommender, except ID and
// CreatedAt which the journal assigns.
type Recommendation struct {
	OptionType    OptionType           `json:"option_type"`
	Strike        float64              `json:"strike"`
	Greeks        OptionGreeks         `json:"greeks"`
	PremiumApprox float64              `json:"premium_approx"`
	Expiry        *string              `json:"expiry,omitempty"`
	ExpiryDays    float64              `json:"expiry_days"`
	Source        RecommendationSource `json:"source"`
	Rationale     string               `json:"rationale"`

	ID        string    `json:"id,omitempty"`
	Symbol    string    `json:"symbol,omitempty"`
	Signal    Signal    `json:"signal,omitempty"`
	Spot      float64   `json:"spot,omitempty"`
	Sigma     float64   `json:"sigma,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// ExpiryOrEmpty returns the expiry token or "" for model recommendations.
func (r Recommendation) ExpiryOrEmpty() string {
	if r.Expiry == nil {
		return ""
	}
	return *r.Expiry
}
