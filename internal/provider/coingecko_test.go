package provider

import (
	"context"
	"net/http"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func TestCoinGeckoFetchGlobal(t *testing.T) {
	p := NewCoinGeckoProvider(trace.NewNoopTracerProvider().Tracer("test"))
	p.baseURL = "https://example.com"
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/global" {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		body := `{"data":{"market_cap_percentage":{"btc":54.3,"eth":17.1}}}`
		return jsonResponse(http.StatusOK, body), nil
	})}

	global, err := p.FetchGlobal(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if global.BTCDominance != 54.3 {
		t.Fatalf("unexpected dominance: %f", global.BTCDominance)
	}
}

func TestCoinGeckoFetchGlobalMissingBTC(t *testing.T) {
	p := NewCoinGeckoProvider(trace.NewNoopTracerProvider().Tracer("test"))
	p.baseURL = "https://example.com"
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"data":{"market_cap_percentage":{}}}`), nil
	})}

	if _, err := p.FetchGlobal(context.Background()); err == nil {
		t.Fatal("expected error when btc dominance is absent")
	}
}
