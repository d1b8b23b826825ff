package dolarapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// quoteTimeout bounds every quote call. A slow source is treated as
// unavailable, never as a caller-visible failure.
const quoteTimeout = 3500 * time.Millisecond

// Client fetches USD quotes from a dolarapi-compatible source
type Client struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewClient creates a new rate source client
func NewClient(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: quoteTimeout,
		},
		log: log.With().Str("client", "dolarapi").Logger(),
	}
}

// GetCardQuote fetches the "tarjeta" (card) USD quote. Returns nil
// when the source is unreachable, times out, or replies with garbage.
func (c *Client) GetCardQuote(ctx context.Context) *Quote {
	return c.getQuote(ctx, "tarjeta")
}

// GetOfficialQuote fetches the official USD quote. Same soft-fail
// semantics as GetCardQuote.
func (c *Client) GetOfficialQuote(ctx context.Context) *Quote {
	return c.getQuote(ctx, "oficial")
}

func (c *Client) getQuote(ctx context.Context, house string) *Quote {
	url := fmt.Sprintf("%s/%s", c.baseURL, house)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.log.Warn().Err(err).Str("house", house).Msg("Failed to build quote request")
		return nil
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("house", house).Msg("Rate source unavailable")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn().Int("status", resp.StatusCode).Str("house", house).Msg("Rate source returned non-200")
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		c.log.Warn().Err(err).Str("house", house).Msg("Failed to read quote body")
		return nil
	}

	var quote Quote
	if err := json.Unmarshal(body, &quote); err != nil {
		c.log.Warn().Err(err).Str("house", house).Msg("Failed to decode quote")
		return nil
	}

	if quote.Sell <= 0 {
		c.log.Warn().Str("house", house).Msg("Quote has no usable sell rate")
		return nil
	}

	return &quote
}
