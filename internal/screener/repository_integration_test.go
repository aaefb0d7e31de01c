//go:build integration

package screener

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/hlcsatoreai/cryptointel/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/trace"
)

func newIntegrationRepo(t *testing.T) (*Repository, *pgxpool.Pool) {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(pool.Close)

	repo := NewRepository(pool, trace.NewNoopTracerProvider().Tracer("test"))
	if err := repo.RunMigrations(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE cryptos, market_stats`); err != nil {
		t.Fatalf("failed to reset tables: %v", err)
	}
	return repo, pool
}

func integrationSnapshot(symbol string, final float64) domain.AssetSnapshot {
	return domain.AssetSnapshot{
		Symbol:           symbol,
		Name:             DisplayName(symbol, "EUR"),
		PriceEUR:         100,
		Change24h:        1,
		Volume24h:        1000,
		TechnicalScore:   final,
		FundamentalScore: final,
		SentimentScore:   final,
		OnChainScore:     final,
		FinalScore:       final,
		RiskLevel:        RiskBucket(final),
		Recommendation:   RecommendationMonitor,
	}
}

func TestUpsertAssetSecondWriteWins(t *testing.T) {
	repo, pool := newIntegrationRepo(t)
	ctx := context.Background()

	first := integrationSnapshot("BTCEUR", 50)
	if err := repo.UpsertAsset(ctx, first); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	var firstUpdated time.Time
	if err := pool.QueryRow(ctx, `SELECT last_updated FROM cryptos WHERE symbol = 'BTCEUR'`).Scan(&firstUpdated); err != nil {
		t.Fatalf("failed to read first write: %v", err)
	}

	second := integrationSnapshot("BTCEUR", 82)
	second.PriceEUR = 200
	if err := repo.UpsertAsset(ctx, second); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM cryptos WHERE symbol = 'BTCEUR'`).Scan(&count); err != nil {
		t.Fatalf("failed to count rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one row, got %d", count)
	}

	assets, err := repo.TopAssets(ctx, 10)
	if err != nil {
		t.Fatalf("ranked read failed: %v", err)
	}
	if len(assets) != 1 {
		t.Fatalf("expected one asset, got %d", len(assets))
	}
	got := assets[0]
	if got.PriceEUR != 200 || got.FinalScore != 82 || got.RiskLevel != domain.RiskLow {
		t.Fatalf("expected second write to win, got %+v", got)
	}
	if got.LastUpdated.Before(firstUpdated) {
		t.Fatalf("expected refreshed timestamp, got %v before %v", got.LastUpdated, firstUpdated)
	}
}

func TestTopAssetsOrderAndLimit(t *testing.T) {
	repo, _ := newIntegrationRepo(t)
	ctx := context.Background()

	scores := map[string]float64{
		"BTCEUR": 82,
		"ETHEUR": 64,
		"ADAEUR": 91,
		"SOLEUR": 30,
	}
	for symbol, final := range scores {
		if err := repo.UpsertAsset(ctx, integrationSnapshot(symbol, final)); err != nil {
			t.Fatalf("upsert %s failed: %v", symbol, err)
		}
	}

	assets, err := repo.TopAssets(ctx, 10)
	if err != nil {
		t.Fatalf("ranked read failed: %v", err)
	}
	if len(assets) != len(scores) {
		t.Fatalf("expected all rows under the limit, got %d", len(assets))
	}
	for i := 1; i < len(assets); i++ {
		if assets[i].FinalScore > assets[i-1].FinalScore {
			t.Fatalf("ranking not descending at %d: %+v", i, assets)
		}
	}
	if assets[0].Symbol != "ADAEUR" || assets[len(assets)-1].Symbol != "SOLEUR" {
		t.Fatalf("unexpected ranking bounds: %+v", assets)
	}

	limited, err := repo.TopAssets(ctx, 2)
	if err != nil {
		t.Fatalf("limited read failed: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected exactly the limit, got %d", len(limited))
	}
	if limited[0].Symbol != "ADAEUR" || limited[1].Symbol != "BTCEUR" {
		t.Fatalf("unexpected limited ranking: %+v", limited)
	}
}

func TestUpsertMarketStatsSingleton(t *testing.T) {
	repo, pool := newIntegrationRepo(t)
	ctx := context.Background()

	if err := repo.UpsertMarketStats(ctx, domain.MarketStats{
		BTCDominance:   52.3,
		FearGreedIndex: 40,
		MarketRisk:     domain.RiskMedium,
	}); err != nil {
		t.Fatalf("first stats upsert failed: %v", err)
	}
	if err := repo.UpsertMarketStats(ctx, domain.MarketStats{
		BTCDominance:   48.1,
		FearGreedIndex: 75,
		MarketRisk:     domain.RiskHigh,
	}); err != nil {
		t.Fatalf("second stats upsert failed: %v", err)
	}

	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM market_stats`).Scan(&count); err != nil {
		t.Fatalf("failed to count stats rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected singleton stats row, got %d", count)
	}

	stats, err := repo.GetMarketStats(ctx)
	if err != nil {
		t.Fatalf("stats read failed: %v", err)
	}
	if stats == nil || stats.BTCDominance != 48.1 || stats.FearGreedIndex != 75 {
		t.Fatalf("expected second stats write to win, got %+v", stats)
	}
}
