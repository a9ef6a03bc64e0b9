package options

import (
	"strings"
	"time"

	"options-advisor/pkg/utils"
)

// ExpiryLayouts are the accepted expiry formats, tried in order.
var ExpiryLayouts = []string{
	"02-Jan-2006",
	"2006-01-02",
	"02-01-2006",
}

const (
	// DaysPerCalendarYear is the year length used for time to expiry.
	DaysPerCalendarYear = 365.25
	// DefaultExpiryDays is assumed when an expiry cannot be parsed and for
	// model-only recommendations.
	DefaultExpiryDays = 7.0
	// DefaultYears is DefaultExpiryDays as a year fraction.
	DefaultYears = DefaultExpiryDays / DaysPerYear
)

// ParseExpiry parses an expiry token as a date in India Standard Time.
func ParseExpiry(token string) (time.Time, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return time.Time{}, false
	}
	for _, layout := range ExpiryLayouts {
		if t, err := time.ParseInLocation(layout, token, utils.IndiaLocation); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// YearsToExpiry returns the time from now until the expiry date in years of
// 365.25 days, floored at one day. Unparseable tokens yield one week.
func YearsToExpiry(token string, now time.Time) float64 {
	expiry, ok := ParseExpiry(token)
	if !ok {
		return DefaultYears
	}
	years := expiry.Sub(now.In(utils.IndiaLocation)).Hours() / 24 / DaysPerCalendarYear
	if years < MinYears {
		return MinYears
	}
	return years
}

// NearestExpiry picks the earliest expiry that is not before today's date in
// IST. When every expiry has passed the most recent one is returned.
func NearestExpiry(tokens []string, now time.Time) (string, bool) {
	local := now.In(utils.IndiaLocation)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, utils.IndiaLocation)

	var (
		best, latest         string
		bestDate, latestDate time.Time
	)
	for _, token := range tokens {
		d, ok := ParseExpiry(token)
		if !ok {
			continue
		}
		if latest == "" || d.After(latestDate) {
			latest, latestDate = token, d
		}
		if d.Before(today) {
			continue
		}
		if best == "" || d.Before(bestDate) {
			best, bestDate = token, d
		}
	}
	if best != "" {
		return best, true
	}
	return latest, latest != ""
}
