package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptopulse/backend/internal/repository"
	"github.com/cryptopulse/backend/internal/service"
)

func newAlertRouter(t *testing.T) (*gin.Engine, service.AlertService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryRuleStore()
	triggers := service.NewTriggerLogService(repository.NewMemoryTriggerLogStore())
	alerts := service.NewAlertService(store, nil, triggers, nil, time.Hour)
	handler := NewAlertHandler(alerts, triggers)

	r := gin.New()
	r.GET("/alerts", handler.GetAlerts)
	r.POST("/alerts", handler.CreateAlert)
	r.POST("/alerts/:id/toggle", handler.ToggleAlert)
	r.DELETE("/alerts/:id", handler.DeleteAlert)
	r.GET("/alerts/history", handler.GetTriggerHistory)
	return r, alerts
}

func TestCreateAlert(t *testing.T) {
	r, _ := newAlertRouter(t)

	body := `{"asset_id":"bitcoin","direction":"above","target_price":50000,"currency":"usd"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/alerts", strings.NewReader(body))
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var res map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.NotEmpty(t, res["alert_id"])
}

func TestCreateAlertRejectsBadInput(t *testing.T) {
	r, _ := newAlertRouter(t)

	cases := []string{
		`not json`,
		`{"asset_id":"","direction":"above","target_price":50000,"currency":"usd"}`,
		`{"asset_id":"bitcoin","direction":"sideways","target_price":50000,"currency":"usd"}`,
		`{"asset_id":"bitcoin","direction":"above","target_price":-1,"currency":"usd"}`,
	}
	for _, body := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/alerts", strings.NewReader(body))
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body: %s", body)
	}
}

func TestGetAlertsReportsActiveCount(t *testing.T) {
	r, alerts := newAlertRouter(t)
	ctx := context.Background()

	id1, err := alerts.Add(ctx, "bitcoin", "above", 50000, "usd")
	require.NoError(t, err)
	_, err = alerts.Add(ctx, "ethereum", "below", 1000, "usd")
	require.NoError(t, err)
	alerts.Toggle(ctx, id1)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/alerts", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var res struct {
		Rules       []json.RawMessage `json:"rules"`
		ActiveCount int               `json:"active_count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Len(t, res.Rules, 2)
	assert.Equal(t, 1, res.ActiveCount)
}

func TestDeleteAlert(t *testing.T) {
	r, alerts := newAlertRouter(t)
	ctx := context.Background()

	id, err := alerts.Add(ctx, "bitcoin", "above", 50000, "usd")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/alerts/"+id, nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Empty(t, alerts.Rules(ctx))
}

func TestGetTriggerHistoryEmpty(t *testing.T) {
	r, _ := newAlertRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/alerts/history", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}
