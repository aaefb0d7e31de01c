package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hlcsatoreai/cryptointel/internal/bot"
	"github.com/hlcsatoreai/cryptointel/internal/cache"
	"github.com/hlcsatoreai/cryptointel/internal/config"
	"github.com/hlcsatoreai/cryptointel/internal/db"
	"github.com/hlcsatoreai/cryptointel/internal/domain"
	"github.com/hlcsatoreai/cryptointel/internal/handler"
	"github.com/hlcsatoreai/cryptointel/internal/job"
	"github.com/hlcsatoreai/cryptointel/internal/provider"
	"github.com/hlcsatoreai/cryptointel/internal/screener"
	"github.com/hlcsatoreai/cryptointel/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "github.com/hlcsatoreai/cryptointel/docs"
)

var (
	loadEnvFunc       = godotenv.Load
	loadConfigFunc    = config.Load
	initPostgresFunc  = db.InitPostgres
	initRedisFunc     = cache.InitRedis
	initTracerFunc    = tracing.InitTracer
	newRepositoryFunc = func(pool *pgxpool.Pool, tracer trace.Tracer) *screener.Repository {
		return screener.NewRepository(pool, tracer)
	}
	newBinanceProviderFunc = func(tracer trace.Tracer) screener.TickerSource {
		return provider.NewBinanceProvider(tracer)
	}
	newFearGreedProviderFunc = func(tracer trace.Tracer) screener.FearGreedSource {
		return provider.NewFearGreedProvider(tracer)
	}
	newCoinGeckoProviderFunc = func(tracer trace.Tracer) screener.DominanceSource {
		return provider.NewCoinGeckoProvider(tracer)
	}
	newServiceFunc         = screener.NewService
	newRefreshJobFunc      = job.NewRefreshJob
	startJobFunc           = func(j *job.RefreshJob, ctx context.Context) { go j.Start(ctx) }
	startTelegramBotFunc   = func(query bot.QueryService) { bot.StartTelegramBot(query) }
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           CryptoIntel API
// @version         1.0
// @description     Crypto opportunity screener with periodic scoring and ranked read API.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Postgres and Redis
	os.Setenv("DATABASE_URL", cfg.DatabaseURL)
	os.Setenv("REDIS_URL", cfg.RedisURL)
	initPostgresFunc(ctx)
	initRedisFunc(ctx)

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Create repository, run migrations and seed the asset universe.
	// Without a pool the store stays nil and the service serves empty
	// reads instead of dereferencing a dead connection.
	var store screener.Store
	if db.Pool != nil {
		repo := newRepositoryFunc(db.Pool, tracer)
		if err := repo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		if err := repo.SeedAssets(ctx, domain.SeedSymbols, cfg.QuoteSuffix); err != nil {
			log.Fatalf("failed to seed assets: %v", err)
		}
		store = repo
	}

	// Upstream providers and the scoring service
	binance := newBinanceProviderFunc(tracer)
	fearGreed := newFearGreedProviderFunc(tracer)
	coinGecko := newCoinGeckoProviderFunc(tracer)
	svc := newServiceFunc(tracer, store, nil, binance, fearGreed, coinGecko, cache.Client, screener.Config{
		QuoteSuffix:  cfg.QuoteSuffix,
		TopPairLimit: cfg.TopPairLimit,
		RankedLimit:  cfg.RankedLimit,
	})

	// Start refresh job (runs once immediately, then on the ticker)
	refreshJob := newRefreshJobFunc(tracer, svc, time.Duration(cfg.RefreshIntervalSecs)*time.Second)
	if db.Pool != nil {
		startJobFunc(refreshJob, ctx)
	} else {
		log.Println("DATABASE_URL not set, refresh job disabled")
	}

	// Start Telegram bot
	os.Setenv("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken)
	startTelegramBotFunc(svc)

	// Create handlers and routes
	h := newHandlerFunc(tracer, svc, refreshJob, cfg.APIKey)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("cryptointel"))

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
