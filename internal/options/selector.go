package options

import (
	"fmt"
	"math"

	"options-advisor/internal/models"
)

// SelectorParams holds the delta bands and synthetic ladder shape.
type SelectorParams struct {
	CallBandLow     float64
	CallBandHigh    float64
	PutBandLow      float64
	PutBandHigh     float64
	CallTargetDelta float64
	PutTargetDelta  float64
	Tolerance       float64
	LadderSteps     int
	StepPercent     float64 // fraction of spot per ladder step
}

// DefaultSelectorParams returns the standard 0.35-delta configuration.
func DefaultSelectorParams() SelectorParams {
	return SelectorParams{
		CallBandLow:     0.25,
		CallBandHigh:    0.45,
		PutBandLow:      -0.45,
		PutBandHigh:     -0.25,
		CallTargetDelta: 0.35,
		PutTargetDelta:  -0.35,
		Tolerance:       0.15,
		LadderSteps:     29,
		StepPercent:     0.01,
	}
}

// TargetDelta returns the synthetic ladder target for the option type.
func (p SelectorParams) TargetDelta(t models.OptionType) float64 {
	if t.IsCall() {
		return p.CallTargetDelta
	}
	return p.PutTargetDelta
}

func (p SelectorParams) inBand(t models.OptionType, delta float64) bool {
	if t.IsCall() {
		return delta >= p.CallBandLow && delta <= p.CallBandHigh
	}
	return delta >= p.PutBandLow && delta <= p.PutBandHigh
}

// isOTM reports whether strike is out of the money for the option type.
func isOTM(t models.OptionType, strike, spot float64) bool {
	if t.IsCall() {
		return strike > spot
	}
	return strike < spot
}

// SelectFromChain scans OTM records in feed order and returns the first whose
// model delta is inside the band. Without a band match the nearest OTM strike
// is used. ok is false only when no record is OTM.
func (p SelectorParams) SelectFromChain(records []models.StrikeRecord, spot float64, optType models.OptionType, sigma, T, r float64) (models.Recommendation, bool) {
	var (
		nearest   models.StrikeRecord
		haveOTM   bool
		candidate int
	)
	for _, rec := range records {
		if !isOTM(optType, rec.Strike, spot) {
			continue
		}
		candidate++
		g := rawGreeks(spot, rec.Strike, T, r, sigma, optType)
		if p.inBand(optType, g.Delta) {
			return chainRecommendation(rec, spot, optType, sigma, T, r,
				fmt.Sprintf("first OTM strike in feed order with delta %.4f inside the target band", g.Delta)), true
		}
		if !haveOTM || closerToSpot(optType, rec.Strike, nearest.Strike) {
			nearest = rec
			haveOTM = true
		}
	}
	if !haveOTM {
		return models.Recommendation{}, false
	}
	return chainRecommendation(nearest, spot, optType, sigma, T, r,
		fmt.Sprintf("no strike of %d OTM candidates inside the target band; using nearest OTM strike", candidate)), true
}

func closerToSpot(t models.OptionType, strike, current float64) bool {
	if t.IsCall() {
		return strike < current
	}
	return strike > current
}

func chainRecommendation(rec models.StrikeRecord, spot float64, optType models.OptionType, sigma, T, r float64, why string) models.Recommendation {
	if T <= 0 {
		T = MinYears
	}
	out := models.Recommendation{
		OptionType:    optType,
		Strike:        rec.Strike,
		Greeks:        Greeks(spot, rec.Strike, T, r, sigma, string(optType)),
		PremiumApprox: rec.Price(optType),
		ExpiryDays:    expiryDays(T, DaysPerCalendarYear),
		Source:        models.SourceChain,
		Rationale:     why,
	}
	if rec.Expiry != "" {
		expiry := rec.Expiry
		out.Expiry = &expiry
	}
	return out
}

// SelectSynthetic walks a ladder of strikes stepping away from spot and takes
// the first strike whose delta is within tolerance of targetDelta or has
// crossed past it, in that order of precedence. The last strike evaluated is
// used when neither condition fires. Premium is zero: there is no quote.
func (p SelectorParams) SelectSynthetic(spot float64, optType models.OptionType, sigma, T, r, targetDelta float64) models.Recommendation {
	if T <= 0 {
		T = MinYears
	}

	strike := spot
	why := "no synthetic strike could be evaluated; using spot"
	for i := 1; i <= p.LadderSteps; i++ {
		offset := spot * p.StepPercent * float64(i)
		k := spot + offset
		if !optType.IsCall() {
			k = spot - offset
		}
		k = roundStrike(k)
		if k <= 0 {
			break
		}

		strike = k
		g := rawGreeks(spot, k, T, r, sigma, optType)
		if math.Abs(g.Delta-targetDelta) <= p.Tolerance {
			why = fmt.Sprintf("ladder step %d: delta %.4f within %.2f of target %.2f", i, g.Delta, p.Tolerance, targetDelta)
			break
		}
		if crossed(optType, g.Delta, targetDelta) {
			why = fmt.Sprintf("ladder step %d: delta %.4f crossed target %.2f", i, g.Delta, targetDelta)
			break
		}
		why = fmt.Sprintf("ladder exhausted after %d steps; using last strike", i)
	}

	return models.Recommendation{
		OptionType: optType,
		Strike:     strike,
		Greeks:     Greeks(spot, strike, T, r, sigma, string(optType)),
		ExpiryDays: expiryDays(T, DaysPerYear),
		Source:     models.SourceModel,
		Rationale:  why,
	}
}

// crossed reports whether delta has moved past the target while stepping
// away from spot: calls decay towards 0, puts rise towards 0.
func crossed(t models.OptionType, delta, target float64) bool {
	if t.IsCall() {
		return delta < target
	}
	return delta > target
}

func roundStrike(k float64) float64 {
	return math.Round(k*100) / 100
}

// expiryDays converts T back to days using the year length T was built
// with: chain expiries come from YearsToExpiry, model expiries from
// DefaultYears.
func expiryDays(T, yearDays float64) float64 {
	days := math.Round(T*yearDays*100) / 100
	if days < 1 {
		return 1
	}
	return days
}

// SelectFromChain runs chain selection with the default parameters.
func SelectFromChain(records []models.StrikeRecord, spot float64, optType models.OptionType, sigma, T, r float64) (models.Recommendation, bool) {
	return DefaultSelectorParams().SelectFromChain(records, spot, optType, sigma, T, r)
}

// SelectSynthetic runs the model ladder with the default parameters.
func SelectSynthetic(spot float64, optType models.OptionType, sigma, T, r, targetDelta float64) models.Recommendation {
	return DefaultSelectorParams().SelectSynthetic(spot, optType, sigma, T, r, targetDelta)
}
