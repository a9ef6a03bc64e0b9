package options

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"options-advisor/internal/models"
)

// Key spellings seen across NSE payload variants, in lookup order.
var (
	strikeKeys = []string{"strikePrice", "strike", "strike_price", "StrikePrice"}
	expiryKeys = []string{"expiryDate", "expiry", "expiry_date", "expiryDates"}
	callKeys   = []string{"CE", "ce", "call", "CALL"}
	putKeys    = []string{"PE", "pe", "put", "PUT"}
	priceKeys  = []string{"lastPrice", "ltp", "last_price", "price", "LTP"}
	oiKeys     = []string{"openInterest", "oi", "open_interest", "OI"}

	// Keys tried inside a nested price object.
	innerPriceKeys = append(append([]string{}, priceKeys...), "value", "amount")
)

// listRule locates the list of strike entries inside a payload. Rules never
// panic; a rule that does not apply returns ok=false.
type listRule func(raw any) (entries []any, ok bool)

var listRules = []listRule{
	nestedList("records", "data"),
	nestedList("filtered", "data"),
	nestedList("data"),
	bareList,
}

func nestedList(path ...string) listRule {
	return func(raw any) ([]any, bool) {
		cur := raw
		for _, key := range path {
			m, ok := asMap(cur)
			if !ok {
				return nil, false
			}
			if cur, ok = m[key]; !ok {
				return nil, false
			}
		}
		return asList(cur)
	}
}

func bareList(raw any) ([]any, bool) {
	return asList(raw)
}

// ParseChain normalizes a decoded option-chain payload into strike records in
// feed order. Malformed or empty input yields an empty result; entries without
// a strike are skipped.
func ParseChain(raw any) []models.StrikeRecord {
	var entries []any
	for _, rule := range listRules {
		if list, ok := rule(raw); ok {
			entries = list
			break
		}
	}

	records := make([]models.StrikeRecord, 0, len(entries))
	for _, entry := range entries {
		if rec, ok := parseEntry(entry); ok {
			records = append(records, rec)
		}
	}
	return records
}

// ParseChainJSON decodes a raw response body and normalizes it.
func ParseChainJSON(body []byte) []models.StrikeRecord {
	raw, ok := DecodeChainJSON(body)
	if !ok {
		return []models.StrikeRecord{}
	}
	return ParseChain(raw)
}

// DecodeChainJSON decodes a response body keeping numbers as json.Number.
func DecodeChainJSON(body []byte) (any, bool) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, false
	}
	return raw, true
}

// UnderlyingValue returns the spot price embedded in an NSE payload.
func UnderlyingValue(raw any) (float64, bool) {
	for _, path := range [][]string{{"records", "underlyingValue"}, {"underlyingValue"}, {"filtered", "underlyingValue"}} {
		cur := raw
		found := true
		for _, key := range path {
			m, ok := asMap(cur)
			if !ok {
				found = false
				break
			}
			if cur, ok = m[key]; !ok {
				found = false
				break
			}
		}
		if !found {
			continue
		}
		if v, ok := toFloat(cur); ok && v > 0 {
			return v, true
		}
	}
	return 0, false
}

// Expiries returns the distinct expiry tokens of records in feed order.
func Expiries(records []models.StrikeRecord) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range records {
		if r.Expiry == "" || seen[r.Expiry] {
			continue
		}
		seen[r.Expiry] = true
		out = append(out, r.Expiry)
	}
	return out
}

func parseEntry(entry any) (models.StrikeRecord, bool) {
	m, ok := asMap(entry)
	if !ok {
		return models.StrikeRecord{}, false
	}

	strike, ok := firstFloat(m, strikeKeys)
	if !ok || strike <= 0 {
		return models.StrikeRecord{}, false
	}

	rec := models.StrikeRecord{
		Strike: strike,
		Expiry: firstString(m, expiryKeys),
	}

	if ce, ok := firstMap(m, callKeys); ok {
		rec.CEPrice = legPrice(ce)
		rec.CEOpenInterest = legOI(ce)
		if rec.Expiry == "" {
			rec.Expiry = firstString(ce, expiryKeys)
		}
	}
	if pe, ok := firstMap(m, putKeys); ok {
		rec.PEPrice = legPrice(pe)
		rec.PEOpenInterest = legOI(pe)
		if rec.Expiry == "" {
			rec.Expiry = firstString(pe, expiryKeys)
		}
	}
	return rec, true
}

// legPrice reads the premium of a CE/PE leg. A nested price object is
// unwrapped once; an unusable value falls through to the next spelling.
func legPrice(leg map[string]any) float64 {
	for _, key := range priceKeys {
		v, ok := leg[key]
		if !ok {
			continue
		}
		if f, ok := toFloat(v); ok {
			return math.Max(f, 0)
		}
		if inner, ok := asMap(v); ok {
			if f, ok := firstFloat(inner, innerPriceKeys); ok {
				return math.Max(f, 0)
			}
		}
	}
	return 0
}

func legOI(leg map[string]any) int64 {
	f, ok := firstFloat(leg, oiKeys)
	if !ok || f < 0 {
		return 0
	}
	if f >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(f)
}

func firstFloat(m map[string]any, keys []string) (float64, bool) {
	for _, key := range keys {
		if v, ok := m[key]; ok {
			if f, ok := toFloat(v); ok {
				return f, true
			}
		}
	}
	return 0, false
}

func firstString(m map[string]any, keys []string) string {
	for _, key := range keys {
		switch v := m[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case []any:
			// Some payloads carry the expiry as a one-element list.
			if len(v) > 0 {
				if s, ok := v[0].(string); ok && strings.TrimSpace(s) != "" {
					return strings.TrimSpace(s)
				}
			}
		}
	}
	return ""
}

func firstMap(m map[string]any, keys []string) (map[string]any, bool) {
	for _, key := range keys {
		if inner, ok := asMap(m[key]); ok {
			return inner, true
		}
	}
	return nil, false
}

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok && m != nil
}

func asList(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case []map[string]any:
		out := make([]any, len(l))
		for i := range l {
			out[i] = l[i]
		}
		return out, true
	}
	return nil, false
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case int32:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(n), ",", ""), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
