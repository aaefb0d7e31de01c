package screener

import (
	"strings"

	"github.com/hlcsatoreai/cryptointel/internal/provider"
)

// DisplayName derives the asset name shown to users by stripping the
// quote-currency suffix from the pair symbol.
func DisplayName(symbol, quoteSuffix string) string {
	return strings.TrimSuffix(symbol, quoteSuffix)
}

// FilterTickers keeps the pairs quoted in the given currency, preserving
// upstream response order, and truncates to limit to bound per-cycle cost.
func FilterTickers(tickers []provider.RawTicker, quoteSuffix string, limit int) []provider.RawTicker {
	if limit < 0 {
		limit = 0
	}
	out := make([]provider.RawTicker, 0, limit)
	for _, t := range tickers {
		if !strings.HasSuffix(t.Symbol, quoteSuffix) {
			continue
		}
		out = append(out, t)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
