package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCoinGecko(url string) *coinGeckoService {
	svc := NewCoinGeckoService(url).(*coinGeckoService)
	svc.backoff = time.Millisecond
	return svc
}

func TestLookupSpot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "bitcoin", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		w.Write([]byte(`{"bitcoin":{"usd":50000}}`))
	}))
	defer server.Close()

	svc := newTestCoinGecko(server.URL)
	price, err := svc.LookupSpot(context.Background(), "bitcoin", "usd")
	require.NoError(t, err)
	assert.Equal(t, 50000.0, price)
}

func TestLookupSpotMissingAsset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	svc := newTestCoinGecko(server.URL)
	_, err := svc.LookupSpot(context.Background(), "no-such-coin", "usd")
	assert.Error(t, err)
}

func TestLookupSpotRejectsNegativePrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"bitcoin":{"usd":-1}}`))
	}))
	defer server.Close()

	svc := newTestCoinGecko(server.URL)
	_, err := svc.LookupSpot(context.Background(), "bitcoin", "usd")
	assert.Error(t, err)
}

func TestGetRetriesRateLimit(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"bitcoin":{"usd":42000}}`))
	}))
	defer server.Close()

	svc := newTestCoinGecko(server.URL)
	price, err := svc.LookupSpot(context.Background(), "bitcoin", "usd")
	require.NoError(t, err)
	assert.Equal(t, 42000.0, price)
	assert.Equal(t, int32(2), hits.Load())
}

func TestGetFailsFastOnClientError(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	svc := newTestCoinGecko(server.URL)
	_, err := svc.LookupSpot(context.Background(), "bitcoin", "usd")
	assert.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestGetGivesUpAfterRetries(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := newTestCoinGecko(server.URL)
	_, err := svc.LookupSpot(context.Background(), "bitcoin", "usd")
	assert.Error(t, err)
	assert.Equal(t, int32(3), hits.Load())
}

func TestMarketsPassthrough(t *testing.T) {
	payload := `[{"id":"bitcoin","symbol":"btc","current_price":50000}]`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/markets", r.URL.Path)
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currency"))
		assert.Equal(t, "market_cap_desc", r.URL.Query().Get("order"))
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		assert.Equal(t, "false", r.URL.Query().Get("sparkline"))
		w.Write([]byte(payload))
	}))
	defer server.Close()

	svc := newTestCoinGecko(server.URL)
	body, err := svc.Markets(context.Background(), "usd", 1, 100)
	require.NoError(t, err)
	assert.JSONEq(t, payload, string(body))
}

func TestChartPassthrough(t *testing.T) {
	payload := `{"prices":[[1700000000000,50000]]}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/bitcoin/market_chart", r.URL.Path)
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currency"))
		assert.Equal(t, "7", r.URL.Query().Get("days"))
		w.Write([]byte(payload))
	}))
	defer server.Close()

	svc := newTestCoinGecko(server.URL)
	body, err := svc.Chart(context.Background(), "bitcoin", "usd", "7")
	require.NoError(t, err)
	assert.JSONEq(t, payload, string(body))
}
