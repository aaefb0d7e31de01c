package screener

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hlcsatoreai/cryptointel/internal/domain"
	"github.com/hlcsatoreai/cryptointel/internal/provider"
)

// Sub-score weights. They must sum to 1.0; ScoreComposite relies on that
// to keep the composite on the same nominal [0,100] scale as its inputs.
const (
	weightTechnical   = 0.40
	weightFundamental = 0.30
	weightSentiment   = 0.15
	weightOnChain     = 0.15
)

// Anti-FOMO override: pairs that already pumped past the change threshold
// get their composite multiplied by the penalty and a forced late-entry
// recommendation.
const (
	fomoChangeThreshold = 40.0
	fomoPenalty         = 0.4
)

// Recommendation templates. Exactly one is attached per asset, first match
// wins in the order applied by Score.
const (
	RecommendationLateEntry  = "Entrata tardiva – Attendere pullback (Rischio FOMO)"
	RecommendationStrongBuy  = "Segnale d'acquisto FORTE - Fondamentali e Tecnica allineati"
	RecommendationAccumulate = "Ottima opportunità di accumulo a medio termine"
	RecommendationBuyTheDip  = "Possibile 'Buy the Dip' - Analizzare supporti"
	RecommendationMonitor    = "Monitorare attentamente"
)

// SubScores are the four per-asset component scores, each nominally in
// [0,100] but not clamped.
type SubScores struct {
	Technical   float64
	Fundamental float64
	Sentiment   float64
	OnChain     float64
}

// SubScoreProvider produces the component scores for a symbol. The default
// implementation is randomized; a real technical/fundamental/sentiment/
// on-chain pipeline can be swapped in without touching the composite,
// override, or risk logic.
type SubScoreProvider interface {
	SubScores(symbol string) SubScores
}

// RandomSubScores generates placeholder sub-scores as base + rand*span.
// Scores are non-deterministic across cycles for identical market input.
type RandomSubScores struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomSubScores() *RandomSubScores {
	return &RandomSubScores{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (p *RandomSubScores) SubScores(string) SubScores {
	p.mu.Lock()
	defer p.mu.Unlock()
	return SubScores{
		Technical:   40 + p.rng.Float64()*50,
		Fundamental: 50 + p.rng.Float64()*40,
		Sentiment:   30 + p.rng.Float64()*60,
		OnChain:     20 + p.rng.Float64()*70,
	}
}

// Engine turns raw tickers into fully scored asset snapshots. It performs
// no I/O.
type Engine struct {
	subs        SubScoreProvider
	quoteSuffix string
}

func NewEngine(subs SubScoreProvider, quoteSuffix string) *Engine {
	if subs == nil {
		subs = NewRandomSubScores()
	}
	if quoteSuffix == "" {
		quoteSuffix = "EUR"
	}
	return &Engine{subs: subs, quoteSuffix: quoteSuffix}
}

// ScoreComposite computes the weighted composite of the four sub-scores,
// before any override.
func ScoreComposite(s SubScores) float64 {
	return s.Technical*weightTechnical +
		s.Fundamental*weightFundamental +
		s.Sentiment*weightSentiment +
		s.OnChain*weightOnChain
}

// Score produces the snapshot for one ticker. A ticker whose price or
// change fields cannot be parsed is rejected; the caller skips that symbol
// and continues the cycle.
func (e *Engine) Score(ticker provider.RawTicker, now time.Time) (domain.AssetSnapshot, error) {
	price, err := strconv.ParseFloat(strings.TrimSpace(ticker.LastPrice), 64)
	if err != nil {
		return domain.AssetSnapshot{}, fmt.Errorf("parse lastPrice for %s: %w", ticker.Symbol, err)
	}
	change, err := strconv.ParseFloat(strings.TrimSpace(ticker.PriceChangePercent), 64)
	if err != nil {
		return domain.AssetSnapshot{}, fmt.Errorf("parse priceChangePercent for %s: %w", ticker.Symbol, err)
	}
	// Volume is unused downstream; a malformed value is not worth
	// dropping the row over.
	volume, err := strconv.ParseFloat(strings.TrimSpace(ticker.QuoteVolume), 64)
	if err != nil {
		volume = 0
	}

	subs := e.subs.SubScores(ticker.Symbol)
	final := ScoreComposite(subs)

	recommendation := RecommendationMonitor
	switch {
	case change > fomoChangeThreshold:
		final *= fomoPenalty
		recommendation = RecommendationLateEntry
	case final > 85:
		recommendation = RecommendationStrongBuy
	case final > 75:
		recommendation = RecommendationAccumulate
	case change < -15:
		recommendation = RecommendationBuyTheDip
	}

	return domain.AssetSnapshot{
		Symbol:           ticker.Symbol,
		Name:             DisplayName(ticker.Symbol, e.quoteSuffix),
		PriceEUR:         price,
		Change24h:        change,
		Volume24h:        volume,
		TechnicalScore:   subs.Technical,
		FundamentalScore: subs.Fundamental,
		SentimentScore:   subs.Sentiment,
		OnChainScore:     subs.OnChain,
		FinalScore:       final,
		RiskLevel:        RiskBucket(final),
		Recommendation:   recommendation,
		LastUpdated:      now.UTC(),
	}, nil
}

// RiskBucket maps a composite score to the three-level risk
// classification. Thresholds are strict: exactly 80 is Medium, exactly 60
// is High.
func RiskBucket(final float64) domain.RiskLevel {
	switch {
	case final > 80:
		return domain.RiskLow
	case final > 60:
		return domain.RiskMedium
	default:
		return domain.RiskHigh
	}
}

// MarketRisk classifies the market as a whole from the fear & greed index.
func MarketRisk(fearGreed int) domain.RiskLevel {
	switch {
	case fearGreed > 70:
		return domain.RiskHigh
	case fearGreed < 30:
		return domain.RiskLow
	default:
		return domain.RiskMedium
	}
}
