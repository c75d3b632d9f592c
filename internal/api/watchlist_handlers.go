package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cryptopulse/backend/internal/service"
)

type WatchlistHandler struct {
	watchlist service.WatchlistService
}

func NewWatchlistHandler(watchlist service.WatchlistService) *WatchlistHandler {
	return &WatchlistHandler{watchlist: watchlist}
}

// @Summary Get the watchlist
// @Tags Watchlist
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string][]string
// @Router /watchlist [get]
func (h *WatchlistHandler) GetWatchlist(c *gin.Context) {
	userID := c.GetString("user_id")

	assets, err := h.watchlist.List(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load watchlist"})
		return
	}
	if assets == nil {
		assets = []string{}
	}

	c.JSON(http.StatusOK, gin.H{"assets": assets})
}

// @Summary Toggle a watchlist entry
// @Description Adds the asset when absent, removes it when present
// @Tags Watchlist
// @Produce json
// @Security BearerAuth
// @Param id path string true "Asset id"
// @Success 200 {object} map[string]bool
// @Router /watchlist/{id}/toggle [post]
func (h *WatchlistHandler) ToggleWatchlist(c *gin.Context) {
	userID := c.GetString("user_id")

	watched, err := h.watchlist.Toggle(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update watchlist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"watched": watched})
}

// @Summary Remove a watchlist entry
// @Tags Watchlist
// @Produce json
// @Security BearerAuth
// @Param id path string true "Asset id"
// @Success 200 {object} map[string]string
// @Router /watchlist/{id} [delete]
func (h *WatchlistHandler) RemoveFromWatchlist(c *gin.Context) {
	userID := c.GetString("user_id")

	if err := h.watchlist.Remove(c.Request.Context(), userID, c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update watchlist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
