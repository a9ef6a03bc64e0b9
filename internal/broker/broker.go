// Package broker provides exchange data-feed integrations.
package broker

import (
	"strings"
	"time"
)

// Endpoints of the NSE public option-chain API.
const (
	DefaultNSEBaseURL = "https://www.nseindia.com"
	IndicesChainPath  = "/api/option-chain-indices"
	EquityChainPath   = "/api/option-chain-equities"
	DefaultTimeout    = 10 * time.Second
	DefaultUserAgent  = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// NSEConfig holds NSE client configuration.
type NSEConfig struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// DefaultNSEConfig returns the production NSE settings.
func DefaultNSEConfig() NSEConfig {
	return NSEConfig{
		BaseURL:   DefaultNSEBaseURL,
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// indexSymbols are the NSE indices with listed options.
var indexSymbols = map[string]bool{
	"NIFTY":      true,
	"BANKNIFTY":  true,
	"FINNIFTY":   true,
	"MIDCPNIFTY": true,
	"NIFTYNXT50": true,
}

// IsIndexSymbol reports whether symbol is an NSE index rather than a stock.
func IsIndexSymbol(symbol string) bool {
	return indexSymbols[strings.ToUpper(strings.TrimSpace(symbol))]
}
