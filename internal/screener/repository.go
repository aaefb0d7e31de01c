package screener

import (
	"context"
	"errors"
	"time"

	"github.com/hlcsatoreai/cryptointel/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"go.opentelemetry.io/otel/trace"
)

const createScreenerTables = `
CREATE TABLE IF NOT EXISTS cryptos (
    symbol            TEXT PRIMARY KEY,
    name              TEXT NOT NULL,
    price_eur         DOUBLE PRECISION NOT NULL DEFAULT 0,
    change_24h        DOUBLE PRECISION NOT NULL DEFAULT 0,
    volume_24h        DOUBLE PRECISION NOT NULL DEFAULT 0,
    market_cap        DOUBLE PRECISION,
    technical_score   DOUBLE PRECISION NOT NULL DEFAULT 0,
    fundamental_score DOUBLE PRECISION NOT NULL DEFAULT 0,
    sentiment_score   DOUBLE PRECISION NOT NULL DEFAULT 0,
    on_chain_score    DOUBLE PRECISION NOT NULL DEFAULT 0,
    final_score       DOUBLE PRECISION NOT NULL DEFAULT 0,
    risk_level        TEXT NOT NULL,
    recommendation    TEXT NOT NULL DEFAULT '',
    last_updated      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_cryptos_final_score
    ON cryptos (final_score DESC);

CREATE TABLE IF NOT EXISTS market_stats (
    id               SMALLINT PRIMARY KEY CHECK (id = 1),
    btc_dominance    DOUBLE PRECISION NOT NULL,
    fear_greed_index INTEGER NOT NULL,
    market_risk      TEXT NOT NULL,
    last_updated     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Repository owns the persisted screener state: one row per pair in
// cryptos plus the market_stats singleton. All writes are full-row
// upserts.
type Repository struct {
	pool   pool
	tracer trace.Tracer
}

func NewRepository(pool pool, tracer trace.Tracer) *Repository {
	return &Repository{pool: pool, tracer: tracer}
}

func (r *Repository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "screener-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createScreenerTables)
	return err
}

// SeedAssets inserts the fixed symbol universe with zeroed scores when the
// table is empty, so read endpoints have rows before the first cycle.
func (r *Repository) SeedAssets(ctx context.Context, symbols []string, quoteSuffix string) error {
	_, span := r.tracer.Start(ctx, "screener-repo.seed-assets")
	defer span.End()

	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM cryptos`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, symbol := range symbols {
		batch.Queue(`
INSERT INTO cryptos (symbol, name, price_eur, final_score, risk_level)
VALUES ($1, $2, 0, 0, $3)
ON CONFLICT (symbol) DO NOTHING`,
			symbol, DisplayName(symbol, quoteSuffix), string(domain.RiskMedium))
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range symbols {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// UpsertAsset replaces the full row for the snapshot's symbol. The
// last_updated column is set to the write's wall-clock time.
func (r *Repository) UpsertAsset(ctx context.Context, snapshot domain.AssetSnapshot) error {
	_, span := r.tracer.Start(ctx, "screener-repo.upsert-asset")
	defer span.End()

	_, err := r.pool.Exec(ctx, `
INSERT INTO cryptos (
    symbol, name, price_eur, change_24h, volume_24h, market_cap,
    technical_score, fundamental_score, sentiment_score, on_chain_score,
    final_score, risk_level, recommendation, last_updated
) VALUES (
    $1, $2, $3, $4, $5, $6,
    $7, $8, $9, $10,
    $11, $12, $13, NOW()
)
ON CONFLICT (symbol) DO UPDATE SET
    name = EXCLUDED.name,
    price_eur = EXCLUDED.price_eur,
    change_24h = EXCLUDED.change_24h,
    volume_24h = EXCLUDED.volume_24h,
    market_cap = EXCLUDED.market_cap,
    technical_score = EXCLUDED.technical_score,
    fundamental_score = EXCLUDED.fundamental_score,
    sentiment_score = EXCLUDED.sentiment_score,
    on_chain_score = EXCLUDED.on_chain_score,
    final_score = EXCLUDED.final_score,
    risk_level = EXCLUDED.risk_level,
    recommendation = EXCLUDED.recommendation,
    last_updated = NOW()`,
		snapshot.Symbol,
		snapshot.Name,
		snapshot.PriceEUR,
		snapshot.Change24h,
		snapshot.Volume24h,
		nullFloat(snapshot.MarketCap),
		snapshot.TechnicalScore,
		snapshot.FundamentalScore,
		snapshot.SentimentScore,
		snapshot.OnChainScore,
		snapshot.FinalScore,
		string(snapshot.RiskLevel),
		snapshot.Recommendation,
	)
	return err
}

// UpsertMarketStats replaces the singleton market-wide row.
func (r *Repository) UpsertMarketStats(ctx context.Context, stats domain.MarketStats) error {
	_, span := r.tracer.Start(ctx, "screener-repo.upsert-market-stats")
	defer span.End()

	_, err := r.pool.Exec(ctx, `
INSERT INTO market_stats (id, btc_dominance, fear_greed_index, market_risk, last_updated)
VALUES (1, $1, $2, $3, NOW())
ON CONFLICT (id) DO UPDATE SET
    btc_dominance = EXCLUDED.btc_dominance,
    fear_greed_index = EXCLUDED.fear_greed_index,
    market_risk = EXCLUDED.market_risk,
    last_updated = NOW()`,
		stats.BTCDominance, stats.FearGreedIndex, string(stats.MarketRisk))
	return err
}

// TopAssets returns up to limit assets ordered by final score descending.
// Symbol breaks ties deterministically.
func (r *Repository) TopAssets(ctx context.Context, limit int) ([]domain.AssetSnapshot, error) {
	_, span := r.tracer.Start(ctx, "screener-repo.top-assets")
	defer span.End()

	if limit <= 0 {
		limit = 10
	}

	rows, err := r.pool.Query(ctx, `
SELECT symbol, name, price_eur, change_24h, volume_24h, market_cap,
       technical_score, fundamental_score, sentiment_score, on_chain_score,
       final_score, risk_level, recommendation, last_updated
FROM cryptos
ORDER BY final_score DESC, symbol ASC
LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.AssetSnapshot, 0, limit)
	for rows.Next() {
		snapshot, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, snapshot)
	}
	return out, rows.Err()
}

// GetMarketStats returns the singleton row, or nil before the first
// completed refresh cycle.
func (r *Repository) GetMarketStats(ctx context.Context) (*domain.MarketStats, error) {
	_, span := r.tracer.Start(ctx, "screener-repo.get-market-stats")
	defer span.End()

	var out domain.MarketStats
	var risk string
	err := r.pool.QueryRow(ctx, `
SELECT btc_dominance, fear_greed_index, market_risk, last_updated
FROM market_stats
WHERE id = 1`).Scan(&out.BTCDominance, &out.FearGreedIndex, &risk, &out.LastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	out.MarketRisk = domain.RiskLevel(risk)
	out.LastUpdated = out.LastUpdated.UTC()
	return &out, nil
}

func scanAsset(s interface{ Scan(dest ...any) error }) (domain.AssetSnapshot, error) {
	var out domain.AssetSnapshot
	var risk string
	var marketCap pgtype.Float8
	var lastUpdated time.Time

	if err := s.Scan(
		&out.Symbol,
		&out.Name,
		&out.PriceEUR,
		&out.Change24h,
		&out.Volume24h,
		&marketCap,
		&out.TechnicalScore,
		&out.FundamentalScore,
		&out.SentimentScore,
		&out.OnChainScore,
		&out.FinalScore,
		&risk,
		&out.Recommendation,
		&lastUpdated,
	); err != nil {
		return domain.AssetSnapshot{}, err
	}

	if marketCap.Valid {
		v := marketCap.Float64
		out.MarketCap = &v
	}
	out.RiskLevel = domain.RiskLevel(risk)
	out.LastUpdated = lastUpdated.UTC()
	return out, nil
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
