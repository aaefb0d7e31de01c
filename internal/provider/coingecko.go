package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
)

const coingeckoBaseURL = "https://api.coingecko.com/api/v3"

// NeutralBTCDominance is substituted when the dominance source fails.
// Dominance only feeds a secondary display stat, so its fetch is
// best-effort.
const NeutralBTCDominance = 50.0

// CoinGeckoProvider fetches global market aggregates from the CoinGecko
// free API.
type CoinGeckoProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
	limiter *RateLimiter
}

// NewCoinGeckoProvider creates a provider with built-in rate limiting.
// Rate limited to 8 requests per minute (one token every 7.5 seconds).
func NewCoinGeckoProvider(tracer trace.Tracer) *CoinGeckoProvider {
	return &CoinGeckoProvider{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: coingeckoBaseURL,
		tracer:  tracer,
		limiter: NewRateLimiter(8, 7500*time.Millisecond),
	}
}

// FetchGlobal returns the global market aggregate, currently just
// bitcoin's share of total market cap.
func (p *CoinGeckoProvider) FetchGlobal(ctx context.Context) (*GlobalMarket, error) {
	_, span := p.tracer.Start(ctx, "coingecko.fetch-global")
	defer span.End()

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	url := p.baseURL + "/global"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("coingecko API error %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Data struct {
			MarketCapPercentage map[string]float64 `json:"market_cap_percentage"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("parse global market: %w", err)
	}

	dominance, ok := payload.Data.MarketCapPercentage["btc"]
	if !ok {
		return nil, fmt.Errorf("global market response missing btc dominance")
	}
	return &GlobalMarket{BTCDominance: dominance}, nil
}
