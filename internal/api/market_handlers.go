package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/cryptopulse/backend/internal/models"
	"github.com/cryptopulse/backend/internal/service"
)

type MarketHandler struct {
	markets service.MarketService
}

func NewMarketHandler(markets service.MarketService) *MarketHandler {
	return &MarketHandler{markets: markets}
}

// @Summary Markets table
// @Description Proxies the upstream markets listing (market-cap order, 24h change)
// @Tags Markets
// @Produce json
// @Param vs query string false "Quote currency (default usd)"
// @Param page query int false "Page (default 1)"
// @Param per_page query int false "Rows per page (default 100, max 250)"
// @Success 200 {array} object
// @Failure 502 {object} map[string]string "Upstream failure"
// @Router /markets [get]
func (h *MarketHandler) GetMarkets(c *gin.Context) {
	vs := c.DefaultQuery("vs", "usd")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "100"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 250 {
		perPage = 100
	}

	body, err := h.markets.Markets(c.Request.Context(), vs, page, perPage)
	if err != nil {
		log.Warnf("markets proxy failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "markets_failed"})
		return
	}

	c.Header("Cache-Control", "public, s-maxage=60, max-age=0, stale-while-revalidate=60")
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// @Summary Price chart
// @Description Proxies the upstream market chart for one asset
// @Tags Markets
// @Produce json
// @Param id path string true "Asset id"
// @Param vs query string false "Quote currency (default usd)"
// @Param days query string false "Range in days (default 7)"
// @Success 200 {object} object
// @Failure 502 {object} map[string]string "Upstream failure"
// @Router /chart/{id} [get]
func (h *MarketHandler) GetChart(c *gin.Context) {
	id := c.Param("id")
	vs := c.DefaultQuery("vs", "usd")
	days := c.DefaultQuery("days", "7")

	body, err := h.markets.Chart(c.Request.Context(), id, vs, days)
	if err != nil {
		log.Warnf("chart proxy failed for %s: %v", id, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "chart_failed"})
		return
	}

	c.Header("Cache-Control", "public, s-maxage=60, max-age=0, stale-while-revalidate=60")
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// @Summary Spot price
// @Description Current spot price for one asset in one currency
// @Tags Markets
// @Produce json
// @Param id path string true "Asset id"
// @Param vs query string false "Quote currency (default usd)"
// @Success 200 {object} models.SpotQuote
// @Failure 502 {object} map[string]string "Upstream failure"
// @Router /spot/{id} [get]
func (h *MarketHandler) GetSpot(c *gin.Context) {
	id := c.Param("id")
	vs := c.DefaultQuery("vs", "usd")

	price, err := h.markets.LookupSpot(c.Request.Context(), id, vs)
	if err != nil {
		log.Warnf("spot lookup failed for %s/%s: %v", id, vs, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "spot_failed"})
		return
	}

	c.Header("Cache-Control", "public, s-maxage=30, max-age=0, stale-while-revalidate=60")
	c.JSON(http.StatusOK, models.SpotQuote{ID: id, Vs: vs, Price: price})
}
