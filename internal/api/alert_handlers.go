package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cryptopulse/backend/internal/models"
	"github.com/cryptopulse/backend/internal/service"
)

type AlertHandler struct {
	alerts   service.AlertService
	triggers service.TriggerLogService
}

func NewAlertHandler(alerts service.AlertService, triggers service.TriggerLogService) *AlertHandler {
	return &AlertHandler{alerts: alerts, triggers: triggers}
}

type CreateAlertRequest struct {
	AssetID     string                `json:"asset_id" binding:"required"`
	Direction   models.AlertDirection `json:"direction" binding:"required,oneof=above below"`
	TargetPrice float64               `json:"target_price" binding:"required"`
	Currency    string                `json:"currency" binding:"required"`
}

// @Summary Create a price alert
// @Description Creates an active alert rule that triggers once when the asset crosses the target price
// @Tags Alerts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param alert body CreateAlertRequest true "Alert rule"
// @Success 201 {object} map[string]string "Alert created"
// @Failure 400 {object} map[string]string "Invalid JSON or parameters"
// @Router /alerts [post]
func (h *AlertHandler) CreateAlert(c *gin.Context) {
	var req CreateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	id, err := h.alerts.Add(c.Request.Context(), req.AssetID, req.Direction, req.TargetPrice, req.Currency)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRule) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create alert"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "Alert created", "alert_id": id})
}

// @Summary List alert rules
// @Description Returns the full rule list plus the count of active rules
// @Tags Alerts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /alerts [get]
func (h *AlertHandler) GetAlerts(c *gin.Context) {
	rules := h.alerts.Rules(c.Request.Context())
	if rules == nil {
		rules = []models.AlertRule{}
	}

	activeCount := 0
	for _, r := range rules {
		if r.Active {
			activeCount++
		}
	}

	c.JSON(http.StatusOK, gin.H{"rules": rules, "active_count": activeCount})
}

// @Summary Toggle an alert rule
// @Description Flips a rule between active and paused; unknown ids are ignored
// @Tags Alerts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Rule ID"
// @Success 200 {object} map[string]string
// @Router /alerts/{id}/toggle [post]
func (h *AlertHandler) ToggleAlert(c *gin.Context) {
	h.alerts.Toggle(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary Delete an alert rule
// @Tags Alerts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Rule ID"
// @Success 200 {object} map[string]string
// @Router /alerts/{id} [delete]
func (h *AlertHandler) DeleteAlert(c *gin.Context) {
	h.alerts.Remove(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary Trigger history
// @Description Most recent fired alerts, newest first
// @Tags Alerts
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max entries (default 50)"
// @Success 200 {array} models.TriggerEvent
// @Router /alerts/history [get]
func (h *AlertHandler) GetTriggerHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	events, err := h.triggers.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load trigger history"})
		return
	}
	if events == nil {
		events = []*models.TriggerEvent{}
	}

	c.JSON(http.StatusOK, events)
}
