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

const binanceBaseURL = "https://api.binance.com"

// BinanceProvider fetches bulk ticker data from the Binance public REST API.
type BinanceProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
}

func NewBinanceProvider(tracer trace.Tracer) *BinanceProvider {
	return &BinanceProvider{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: binanceBaseURL,
		tracer:  tracer,
	}
}

// FetchTickers returns the 24h ticker rows for every listed pair, in the
// order the exchange returns them. Filtering by quote currency happens in
// the caller.
func (p *BinanceProvider) FetchTickers(ctx context.Context) ([]RawTicker, error) {
	_, span := p.tracer.Start(ctx, "binance.fetch-tickers")
	defer span.End()

	url := p.baseURL + "/api/v3/ticker/24hr"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch tickers: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("binance API error %d: %s", resp.StatusCode, string(body))
	}

	var tickers []RawTicker
	if err := json.NewDecoder(resp.Body).Decode(&tickers); err != nil {
		return nil, fmt.Errorf("parse tickers: %w", err)
	}
	return tickers, nil
}
