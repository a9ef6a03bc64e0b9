package broker

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"options-advisor/internal/errors"
	"options-advisor/internal/logging"
	"options-advisor/internal/options"
)

// NSEClient fetches raw option-chain payloads from NSE. The site only serves
// the API to sessions that carry cookies from a page visit, so the first call
// visits the home page. Each fetch is a single attempt; there are no retries.
type NSEClient struct {
	http   *resty.Client
	logger zerolog.Logger

	mu     sync.Mutex
	warmed bool
}

// NewNSEClient creates a new NSE client.
func NewNSEClient(cfg NSEConfig, logger zerolog.Logger) *NSEClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultNSEBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	// resty.New installs a cookie jar, which carries the session cookies.
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeaders(map[string]string{
			"User-Agent":      cfg.UserAgent,
			"Accept":          "application/json, text/plain, */*",
			"Accept-Language": "en-US,en;q=0.9",
			"Referer":         strings.TrimRight(cfg.BaseURL, "/") + "/option-chain",
		})

	return &NSEClient{
		http:   client,
		logger: logger.With().Str("component", "nse").Logger(),
	}
}

// FetchOptionChain returns the decoded JSON payload for symbol.
func (c *NSEClient) FetchOptionChain(ctx context.Context, symbol string, isIndex bool) (any, error) {
	c.warmUp(ctx)

	endpoint := EquityChainPath
	if isIndex {
		endpoint = IndicesChainPath
	}

	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("symbol", strings.ToUpper(symbol)).
		Get(endpoint)
	logging.LogAPICall(c.logger, http.MethodGet, endpoint, time.Since(start), err)
	if err != nil {
		return nil, errors.NewTransportError(endpoint, 0, "request failed", classify(err))
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, errors.NewTransportError(endpoint, resp.StatusCode(), resp.Status(), errors.ErrChainUnavailable)
	}

	payload, ok := options.DecodeChainJSON(resp.Body())
	if !ok {
		return nil, errors.NewDataError("option_chain", symbol, "response is not JSON", errors.ErrChainUnavailable)
	}
	return payload, nil
}

// warmUp visits the home page once to collect session cookies. Failures are
// logged only: the chain request reports the real outcome.
func (c *NSEClient) warmUp(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.warmed {
		return
	}

	start := time.Now()
	resp, err := c.http.R().SetContext(ctx).SetHeader("Accept", "text/html").Get("/")
	logging.LogAPICall(c.logger, http.MethodGet, "/", time.Since(start), err)
	if err != nil {
		c.logger.Debug().Err(err).Msg("NSE session warm-up failed")
		return
	}
	if resp.StatusCode() == http.StatusOK {
		c.warmed = true
	}
}

func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Wrap(errors.ErrTimeout, err.Error())
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errors.Wrap(errors.ErrTimeout, err.Error())
	}
	return errors.Wrap(errors.ErrConnectionFailed, err.Error())
}
