package domain

import "time"

// RiskLevel is the coarse three-bucket classification used both per asset
// and for the market as a whole.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

func (r RiskLevel) IsValid() bool {
	return r == RiskLow || r == RiskMedium || r == RiskHigh
}

// AssetSnapshot is the latest scored state of a single trading pair.
// Exactly one row per symbol is kept; every write replaces the full row.
type AssetSnapshot struct {
	Symbol           string    `json:"symbol"`
	Name             string    `json:"name"`
	PriceEUR         float64   `json:"price_eur"`
	Change24h        float64   `json:"change_24h"`
	Volume24h        float64   `json:"volume_24h"`
	MarketCap        *float64  `json:"market_cap,omitempty"`
	TechnicalScore   float64   `json:"technical_score"`
	FundamentalScore float64   `json:"fundamental_score"`
	SentimentScore   float64   `json:"sentiment_score"`
	OnChainScore     float64   `json:"on_chain_score"`
	FinalScore       float64   `json:"final_score"`
	RiskLevel        RiskLevel `json:"risk_level"`
	Recommendation   string    `json:"recommendation"`
	LastUpdated      time.Time `json:"last_updated"`
}

// MarketStats is the market-wide singleton refreshed once per cycle.
type MarketStats struct {
	BTCDominance   float64   `json:"btc_dominance"`
	FearGreedIndex int       `json:"fear_greed_index"`
	MarketRisk     RiskLevel `json:"market_risk"`
	LastUpdated    time.Time `json:"last_updated"`
}

type CryptoEvent struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date"`
	Type  string `json:"type"`
}

// RefreshResult carries the counters of one refresh cycle. Errors holds
// non-fatal per-source and per-asset failures.
type RefreshResult struct {
	AssetsProcessed int      `json:"assets_processed"`
	AssetsSkipped   int      `json:"assets_skipped"`
	Errors          []string `json:"errors,omitempty"`
}

// SeedSymbols is the fixed pair universe inserted with zeroed scores on
// first startup, before any refresh cycle has run.
var SeedSymbols = []string{
	"BTCEUR", "ETHEUR", "BNBEUR", "SOLEUR", "ADAEUR",
	"DOTEUR", "MATICEUR", "AVAXEUR", "LINKEUR", "SHIBEUR",
}

// StaticEvents is the calendar served by the events endpoint. It is not
// produced by the refresh pipeline.
var StaticEvents = []CryptoEvent{
	{ID: 1, Title: "Ethereum Pectra Upgrade", Date: "2026-03-15", Type: "Upgrade"},
	{ID: 2, Title: "Bitcoin Halving Anniversary", Date: "2026-04-20", Type: "Event"},
	{ID: 3, Title: "Solana Breakpoint 2026", Date: "2026-09-01", Type: "Conference"},
}
