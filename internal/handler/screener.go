package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetCryptos godoc
// @Summary      Get ranked crypto assets
// @Description  Returns up to 10 assets ordered by composite score descending
// @Tags         screener
// @Produce      json
// @Success      200  {array}   domain.AssetSnapshot
// @Failure      500  {object}  map[string]string
// @Router       /api/cryptos [get]
func (h *Handler) GetCryptos(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-cryptos")
	defer span.End()

	assets, err := h.query.TopAssets(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, assets)
}

// GetMarketStatus godoc
// @Summary      Get market-wide stats
// @Description  Returns BTC dominance, fear & greed index and market risk; empty object before the first refresh cycle
// @Tags         screener
// @Produce      json
// @Success      200  {object}  domain.MarketStats
// @Failure      500  {object}  map[string]string
// @Router       /api/market-status [get]
func (h *Handler) GetMarketStatus(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-market-status")
	defer span.End()

	stats, err := h.query.MarketStats(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if stats == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetEvents godoc
// @Summary      Get the crypto event calendar
// @Description  Returns the static list of upcoming market events
// @Tags         screener
// @Produce      json
// @Success      200  {array}  domain.CryptoEvent
// @Router       /api/events [get]
func (h *Handler) GetEvents(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-events")
	defer span.End()

	c.JSON(http.StatusOK, h.query.Events())
}

// TriggerRefresh godoc
// @Summary      Trigger a refresh cycle manually
// @Description  Runs one scoring-and-persistence cycle unless one is already in flight
// @Tags         screener
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Success      202  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/refresh [post]
func (h *Handler) TriggerRefresh(c *gin.Context) {
	if h.refresh == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "refresh unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.trigger-refresh")
	defer span.End()

	result, ran, err := h.refresh.Run(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !ran {
		c.JSON(http.StatusAccepted, gin.H{"status": "refresh already running"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":           "ok",
		"assets_processed": result.AssetsProcessed,
		"assets_skipped":   result.AssetsSkipped,
		"errors":           result.Errors,
	})
}
