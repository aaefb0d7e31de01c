package provider

import "time"

// RawTicker is one row of the Binance bulk 24h ticker response. Numeric
// fields arrive as strings and are parsed downstream.
type RawTicker struct {
	Symbol             string `json:"symbol"`
	LastPrice          string `json:"lastPrice"`
	PriceChangePercent string `json:"priceChangePercent"`
	QuoteVolume        string `json:"quoteVolume"`
}

type FearGreedPoint struct {
	Value          int
	Classification string
	Timestamp      time.Time
}

// GlobalMarket is the slice of the CoinGecko /global aggregate we consume.
type GlobalMarket struct {
	BTCDominance float64
}
