package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// MarketService fronts the public market-data API. LookupSpot satisfies
// the engine's PriceLookup; Markets and Chart back the dashboard proxy
// endpoints and forward the upstream payload untouched.
type MarketService interface {
	LookupSpot(ctx context.Context, assetID, currency string) (float64, error)
	Markets(ctx context.Context, vs string, page, perPage int) (json.RawMessage, error)
	Chart(ctx context.Context, assetID, vs, days string) (json.RawMessage, error)
}

type coinGeckoService struct {
	baseURL string
	client  *http.Client
	retries int
	backoff time.Duration
}

func NewCoinGeckoService(baseURL string) MarketService {
	return &coinGeckoService{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		retries: 2,
		backoff: 600 * time.Millisecond,
	}
}

func (s *coinGeckoService) LookupSpot(ctx context.Context, assetID, currency string) (float64, error) {
	query := url.Values{}
	query.Set("ids", assetID)
	query.Set("vs_currencies", currency)

	body, err := s.get(ctx, "/simple/price", query)
	if err != nil {
		return 0, err
	}

	var quotes map[string]map[string]float64
	if err := json.Unmarshal(body, &quotes); err != nil {
		return 0, fmt.Errorf("coingecko: decode spot response: %w", err)
	}

	price, ok := quotes[assetID][currency]
	if !ok {
		return 0, fmt.Errorf("coingecko: no spot price for %s/%s", assetID, currency)
	}
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return 0, fmt.Errorf("coingecko: unusable spot price %v for %s/%s", price, assetID, currency)
	}
	return price, nil
}

func (s *coinGeckoService) Markets(ctx context.Context, vs string, page, perPage int) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("vs_currency", vs)
	query.Set("order", "market_cap_desc")
	query.Set("per_page", strconv.Itoa(perPage))
	query.Set("page", strconv.Itoa(page))
	query.Set("sparkline", "false")
	query.Set("price_change_percentage", "24h")

	return s.get(ctx, "/coins/markets", query)
}

func (s *coinGeckoService) Chart(ctx context.Context, assetID, vs, days string) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("vs_currency", vs)
	query.Set("days", days)

	return s.get(ctx, "/coins/"+url.PathEscape(assetID)+"/market_chart", query)
}

// get performs one upstream request, retrying rate limits and server
// errors with a growing backoff.
func (s *coinGeckoService) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	endpoint := s.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	backoff := s.backoff
	var lastErr error
	for attempt := 0; attempt <= s.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff = time.Duration(float64(backoff) * 1.7)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("coingecko: build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		res, err := s.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("coingecko: %s: %w", path, err)
			continue
		}

		body, readErr := io.ReadAll(res.Body)
		res.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("coingecko: read %s response: %w", path, readErr)
			continue
		}

		if res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= 500 {
			lastErr = fmt.Errorf("coingecko: %s returned %s", path, res.Status)
			continue
		}
		if res.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("coingecko: %s returned %s", path, res.Status)
		}
		return body, nil
	}
	return nil, lastErr
}
