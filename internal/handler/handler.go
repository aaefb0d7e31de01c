package handler

import (
	"context"

	"github.com/hlcsatoreai/cryptointel/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type QueryService interface {
	TopAssets(ctx context.Context) ([]domain.AssetSnapshot, error)
	MarketStats(ctx context.Context) (*domain.MarketStats, error)
	Events() []domain.CryptoEvent
}

type RefreshRunner interface {
	Run(ctx context.Context) (domain.RefreshResult, bool, error)
}

type Handler struct {
	tracer  trace.Tracer
	query   QueryService
	refresh RefreshRunner
	apiKey  string
}

func New(tracer trace.Tracer, query QueryService, refresh RefreshRunner, apiKey string) *Handler {
	return &Handler{
		tracer:  tracer,
		query:   query,
		refresh: refresh,
		apiKey:  apiKey,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/api/cryptos", h.GetCryptos)
	r.GET("/api/market-status", h.GetMarketStatus)
	r.GET("/api/events", h.GetEvents)
	r.POST("/api/refresh", APIKeyAuth(h.apiKey), h.TriggerRefresh)
}
