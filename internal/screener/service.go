package screener

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/hlcsatoreai/cryptointel/internal/domain"
	"github.com/hlcsatoreai/cryptointel/internal/provider"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

const (
	topAssetsCacheKey = "screener:top_assets"
	topAssetsCacheTTL = 30 * time.Second
)

type TickerSource interface {
	FetchTickers(ctx context.Context) ([]provider.RawTicker, error)
}

type FearGreedSource interface {
	FetchLatest(ctx context.Context) (*provider.FearGreedPoint, error)
}

type DominanceSource interface {
	FetchGlobal(ctx context.Context) (*provider.GlobalMarket, error)
}

type Store interface {
	UpsertAsset(ctx context.Context, snapshot domain.AssetSnapshot) error
	UpsertMarketStats(ctx context.Context, stats domain.MarketStats) error
	TopAssets(ctx context.Context, limit int) ([]domain.AssetSnapshot, error)
	GetMarketStats(ctx context.Context) (*domain.MarketStats, error)
}

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type Config struct {
	QuoteSuffix  string
	TopPairLimit int
	RankedLimit  int
}

// MarketSnapshot is the joined result of the three upstream fetches for
// one cycle. Warnings carry best-effort source failures.
type MarketSnapshot struct {
	Pairs        []provider.RawTicker
	FearGreed    int
	BTCDominance float64
	Warnings     []string
}

// Service drives the refresh cycle and serves the read-only query path.
type Service struct {
	tracer trace.Tracer
	repo   Store
	engine *Engine

	tickers   TickerSource
	fearGreed FearGreedSource
	dominance DominanceSource
	redis     RedisClient

	cfg Config
}

func NewService(
	tracer trace.Tracer,
	repo Store,
	engine *Engine,
	tickers TickerSource,
	fearGreed FearGreedSource,
	dominance DominanceSource,
	redisClient RedisClient,
	cfg Config,
) *Service {
	if cfg.QuoteSuffix == "" {
		cfg.QuoteSuffix = "EUR"
	}
	if cfg.TopPairLimit <= 0 {
		cfg.TopPairLimit = 20
	}
	if cfg.RankedLimit <= 0 {
		cfg.RankedLimit = 10
	}
	if engine == nil {
		engine = NewEngine(nil, cfg.QuoteSuffix)
	}
	return &Service{
		tracer:    tracer,
		repo:      repo,
		engine:    engine,
		tickers:   tickers,
		fearGreed: fearGreed,
		dominance: dominance,
		redis:     redisClient,
		cfg:       cfg,
	}
}

// FetchMarketSnapshot issues the three upstream fetches concurrently and
// joins them. Ticker and fear & greed failures are load-bearing and fail
// the snapshot; a dominance failure substitutes the neutral default.
func (s *Service) FetchMarketSnapshot(ctx context.Context) (*MarketSnapshot, error) {
	_, span := s.tracer.Start(ctx, "screener.fetch-market-snapshot")
	defer span.End()

	var (
		wg sync.WaitGroup

		pairs     []provider.RawTicker
		pairsErr  error
		fg        *provider.FearGreedPoint
		fgErr     error
		global    *provider.GlobalMarket
		globalErr error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		pairs, pairsErr = s.tickers.FetchTickers(ctx)
	}()
	go func() {
		defer wg.Done()
		fg, fgErr = s.fearGreed.FetchLatest(ctx)
	}()
	go func() {
		defer wg.Done()
		global, globalErr = s.dominance.FetchGlobal(ctx)
	}()
	wg.Wait()

	if pairsErr != nil {
		return nil, fmt.Errorf("ticker source: %w", pairsErr)
	}
	if fgErr != nil {
		return nil, fmt.Errorf("fear & greed source: %w", fgErr)
	}

	snapshot := &MarketSnapshot{
		Pairs:        pairs,
		FearGreed:    fg.Value,
		BTCDominance: provider.NeutralBTCDominance,
	}
	if globalErr != nil {
		log.Printf("dominance fetch failed, using neutral default %.1f: %v", provider.NeutralBTCDominance, globalErr)
		snapshot.Warnings = append(snapshot.Warnings, "dominance: "+globalErr.Error())
	} else {
		snapshot.BTCDominance = global.BTCDominance
	}
	return snapshot, nil
}

// RefreshMarketData runs one full refresh cycle: fetch, classify the
// market, then score and upsert each pair sequentially. A failure on one
// symbol is logged and skipped; the cycle continues for the rest.
func (s *Service) RefreshMarketData(ctx context.Context) (domain.RefreshResult, error) {
	_, span := s.tracer.Start(ctx, "screener.refresh-market-data")
	defer span.End()

	if s.repo == nil || s.tickers == nil || s.fearGreed == nil {
		return domain.RefreshResult{}, fmt.Errorf("screener service dependencies are not initialized")
	}

	snapshot, err := s.FetchMarketSnapshot(ctx)
	if err != nil {
		return domain.RefreshResult{}, err
	}

	result := domain.RefreshResult{Errors: snapshot.Warnings}

	stats := domain.MarketStats{
		BTCDominance:   snapshot.BTCDominance,
		FearGreedIndex: snapshot.FearGreed,
		MarketRisk:     MarketRisk(snapshot.FearGreed),
	}
	if err := s.repo.UpsertMarketStats(ctx, stats); err != nil {
		return result, fmt.Errorf("upsert market stats: %w", err)
	}

	now := time.Now()
	for _, pair := range FilterTickers(snapshot.Pairs, s.cfg.QuoteSuffix, s.cfg.TopPairLimit) {
		scored, err := s.engine.Score(pair, now)
		if err != nil {
			log.Printf("skipping %s: %v", pair.Symbol, err)
			result.AssetsSkipped++
			result.Errors = append(result.Errors, pair.Symbol+": "+err.Error())
			continue
		}
		if err := s.repo.UpsertAsset(ctx, scored); err != nil {
			log.Printf("upsert failed for %s: %v", pair.Symbol, err)
			result.AssetsSkipped++
			result.Errors = append(result.Errors, pair.Symbol+": "+err.Error())
			continue
		}
		result.AssetsProcessed++
	}

	if s.redis != nil {
		if err := s.redis.Del(ctx, topAssetsCacheKey).Err(); err != nil {
			log.Printf("redis cache invalidation error: %v", err)
		}
	}

	return result, nil
}

// TopAssets returns the ranked assets for the dashboard, served from a
// short-lived Redis cache when available. An empty store yields an empty
// slice, not an error.
func (s *Service) TopAssets(ctx context.Context) ([]domain.AssetSnapshot, error) {
	_, span := s.tracer.Start(ctx, "screener.top-assets")
	defer span.End()

	if s.repo == nil {
		return []domain.AssetSnapshot{}, nil
	}

	if s.redis != nil {
		raw, err := s.redis.Get(ctx, topAssetsCacheKey).Result()
		if err == nil {
			var cached []domain.AssetSnapshot
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return cached, nil
			}
		} else if err != redis.Nil {
			log.Printf("redis cache read error: %v", err)
		}
	}

	assets, err := s.repo.TopAssets(ctx, s.cfg.RankedLimit)
	if err != nil {
		return nil, err
	}

	if s.redis != nil && len(assets) > 0 {
		if encoded, err := json.Marshal(assets); err == nil {
			_ = s.redis.Set(ctx, topAssetsCacheKey, encoded, topAssetsCacheTTL).Err()
		}
	}
	return assets, nil
}

// MarketStats returns the singleton stats row, nil before the first cycle.
func (s *Service) MarketStats(ctx context.Context) (*domain.MarketStats, error) {
	_, span := s.tracer.Start(ctx, "screener.market-stats")
	defer span.End()

	if s.repo == nil {
		return nil, nil
	}
	return s.repo.GetMarketStats(ctx)
}

// Events returns the static calendar list.
func (s *Service) Events() []domain.CryptoEvent {
	return domain.StaticEvents
}
