// Package pricing fetches last traded prices from Yahoo Finance for the
// dashboard valuation. Prices are best-effort: a symbol Yahoo does not
// know is reported as missing, never as zero.
package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"scripfolio/internal/logger"
)

const (
	defaultBaseURL = "https://query1.finance.yahoo.com"
	// Yahoo rejects quote requests for very large symbol lists.
	batchSize = 50
	// NSE listings on Yahoo carry the .NS suffix.
	exchangeSuffix = ".NS"
)

// Client is a Yahoo Finance quote client with an in-memory price cache.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cache      *cache.Cache
}

// NewClient creates a pricing client whose cached prices live for ttl.
func NewClient(ttl time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultBaseURL,
		cache:      cache.New(ttl, 5*time.Minute),
	}
}

// SetBaseURL overrides the quote endpoint base. Used by tests.
func (c *Client) SetBaseURL(base string) {
	c.baseURL = strings.TrimSuffix(base, "/")
}

type quoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol             string  `json:"symbol"`
			RegularMarketPrice float64 `json:"regularMarketPrice"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteResponse"`
}

// Prices returns last traded prices keyed by portfolio symbol, plus the
// list of symbols no quote came back for. An alias redirects a symbol to
// a different quote ticker; otherwise the symbol is queried with the NSE
// suffix appended.
func (c *Client) Prices(ctx context.Context, symbols []string, aliases map[string]string) (map[string]float64, []string, error) {
	log := logger.Get()

	quoteFor := make(map[string]string, len(symbols))
	for _, symbol := range symbols {
		if alias, ok := aliases[symbol]; ok && alias != "" {
			quoteFor[symbol] = alias
		} else {
			quoteFor[symbol] = symbol + exchangeSuffix
		}
	}

	prices := make(map[string]float64, len(symbols))
	var fetch []string
	seen := make(map[string]bool)
	for _, quoteSymbol := range quoteFor {
		if _, ok := c.cache.Get(quoteSymbol); ok {
			continue
		}
		if !seen[quoteSymbol] {
			seen[quoteSymbol] = true
			fetch = append(fetch, quoteSymbol)
		}
	}

	for start := 0; start < len(fetch); start += batchSize {
		end := min(start+batchSize, len(fetch))
		if err := c.fetchBatch(ctx, fetch[start:end]); err != nil {
			return nil, nil, err
		}
	}

	var missing []string
	for _, symbol := range symbols {
		v, ok := c.cache.Get(quoteFor[symbol])
		if !ok {
			missing = append(missing, symbol)
			continue
		}
		prices[symbol] = v.(float64)
	}
	if len(missing) > 0 {
		log.Debugw("no quotes for some symbols", "missing", missing)
	}
	return prices, missing, nil
}

// fetchBatch queries one batch of quote symbols and caches every price
// that came back.
func (c *Client) fetchBatch(ctx context.Context, quoteSymbols []string) error {
	endpoint := fmt.Sprintf("%s/v7/finance/quote?symbols=%s",
		c.baseURL, url.QueryEscape(strings.Join(quoteSymbols, ",")))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	// Yahoo throttles requests without a browser-like user agent.
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("quote request failed with status %d", resp.StatusCode)
	}

	var parsed quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("decoding quote response: %w", err)
	}
	if parsed.QuoteResponse.Error != nil {
		return fmt.Errorf("quote API error: %s", parsed.QuoteResponse.Error.Description)
	}

	for _, r := range parsed.QuoteResponse.Result {
		if r.RegularMarketPrice <= 0 {
			continue
		}
		c.cache.Set(r.Symbol, r.RegularMarketPrice, cache.DefaultExpiration)
	}
	return nil
}
