package provider

import (
	"context"
	"net/http"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"
)

func TestFearGreedFetchLatest(t *testing.T) {
	p := NewFearGreedProvider(trace.NewNoopTracerProvider().Tracer("test"))
	p.baseURL = "https://example.com"
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/fng/" {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		body := `{"data":[{"value":"63","value_classification":"Greed","timestamp":"1771009800"}]}`
		return jsonResponse(http.StatusOK, body), nil
	})}

	point, err := p.FetchLatest(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if point.Value != 63 || point.Classification != "Greed" {
		t.Fatalf("unexpected point: %+v", point)
	}
	if !point.Timestamp.Equal(time.Unix(1771009800, 0).UTC()) {
		t.Fatalf("unexpected timestamp: %v", point.Timestamp)
	}
}

func TestFearGreedFetchLatestEmptyData(t *testing.T) {
	p := NewFearGreedProvider(trace.NewNoopTracerProvider().Tracer("test"))
	p.baseURL = "https://example.com"
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"data":[]}`), nil
	})}

	if _, err := p.FetchLatest(context.Background()); err == nil {
		t.Fatal("expected error for empty data array")
	}
}

func TestFearGreedFetchLatestBadValue(t *testing.T) {
	p := NewFearGreedProvider(trace.NewNoopTracerProvider().Tracer("test"))
	p.baseURL = "https://example.com"
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		body := `{"data":[{"value":"greedy","value_classification":"Greed","timestamp":"1771009800"}]}`
		return jsonResponse(http.StatusOK, body), nil
	})}

	if _, err := p.FetchLatest(context.Background()); err == nil {
		t.Fatal("expected error for non-numeric value")
	}
}
