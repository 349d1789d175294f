package dataflows

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"etfadvisor/internal/config"
)

// ErrRateLimited marks a vendor per-minute quota rejection. It is retryable.
var ErrRateLimited = errors.New("vendor rate limit exceeded")

// PolygonClient fetches daily aggregates from the Polygon.io REST API.
type PolygonClient struct {
	client *resty.Client
	cache  *CacheManager
	apiKey string
}

// NewPolygonClient creates a new Polygon client.
func NewPolygonClient(cfg *config.Config) *PolygonClient {
	cacheDir := filepath.Join(cfg.DataCacheDir, "polygon")
	cache := NewCacheManager(cacheDir, 6*time.Hour, cfg.CacheEnabled)

	client := resty.New()
	client.SetBaseURL("https://api.polygon.io")

	return &PolygonClient{
		client: client,
		cache:  cache,
		apiKey: cfg.PolygonAPIKey,
	}
}

// polygonAgg is one bar in a Polygon aggregates response. Timestamps are
// milliseconds since epoch.
type polygonAgg struct {
	Volume float64 `json:"v"`
	Open   float64 `json:"o"`
	Close  float64 `json:"c"`
	High   float64 `json:"h"`
	Low    float64 `json:"l"`
	Time   int64   `json:"t"`
}

type polygonAggsResponse struct {
	Ticker       string       `json:"ticker"`
	ResultsCount int          `json:"resultsCount"`
	Results      []polygonAgg `json:"results"`
	Status       string       `json:"status"`
	Error        string       `json:"error,omitempty"`
}

// DailyHistory fetches adjusted daily bars for the symbol over [start, end].
func (pc *PolygonClient) DailyHistory(ctx context.Context, symbol string, start, end time.Time) ([]PriceBar, error) {
	if pc.apiKey == "" {
		return nil, fmt.Errorf("Polygon API key not configured")
	}

	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	cacheKey := map[string]interface{}{
		"symbol": symbol,
		"start":  start.Format("2006-01-02"),
		"end":    end.Format("2006-01-02"),
	}

	var cached []PriceBar
	if pc.cache.Get("polygon", "daily_aggs", cacheKey, &cached) {
		return cached, nil
	}

	url := fmt.Sprintf("/v2/aggs/ticker/%s/range/1/day/%s/%s",
		symbol, start.Format("2006-01-02"), end.Format("2006-01-02"))

	resp, err := pc.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"adjusted": "true",
			"sort":     "asc",
			"limit":    "50000",
			"apiKey":   pc.apiKey,
		}).
		Get(url)

	if err != nil {
		return nil, fmt.Errorf("failed to fetch history for %s: %w", symbol, err)
	}

	pc.recordRateLimit(resp)

	if resp.StatusCode() == http.StatusTooManyRequests {
		return nil, fmt.Errorf("fetch %s: %w", symbol, ErrRateLimited)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("API error %d for %s: %s", resp.StatusCode(), symbol, resp.String())
	}

	var aggs polygonAggsResponse
	if err := json.Unmarshal(resp.Body(), &aggs); err != nil {
		return nil, fmt.Errorf("failed to parse aggregates response for %s: %w", symbol, err)
	}
	if strings.Contains(strings.ToLower(aggs.Error), "maximum requests per minute") {
		return nil, fmt.Errorf("fetch %s: %w", symbol, ErrRateLimited)
	}

	bars := make([]PriceBar, 0, len(aggs.Results))
	for _, agg := range aggs.Results {
		bars = append(bars, PriceBar{
			Date:   time.UnixMilli(agg.Time).UTC(),
			Open:   decimal.NewFromFloat(agg.Open),
			High:   decimal.NewFromFloat(agg.High),
			Low:    decimal.NewFromFloat(agg.Low),
			Close:  decimal.NewFromFloat(agg.Close),
			Volume: int64(agg.Volume),
		})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	if len(bars) > 0 {
		pc.cache.Set("polygon", "daily_aggs", cacheKey, bars)
	}

	return bars, nil
}

// recordRateLimit captures quota headers for diagnostics. Missing headers
// are ignored.
func (pc *PolygonClient) recordRateLimit(resp *resty.Response) {
	remainingHdr := resp.Header().Get("X-RateLimit-Remaining")
	if remainingHdr == "" {
		return
	}
	remaining, err := strconv.Atoi(remainingHdr)
	if err != nil {
		return
	}
	var resetAt time.Time
	if resetHdr := resp.Header().Get("X-RateLimit-Reset"); resetHdr != "" {
		if epoch, err := strconv.ParseInt(resetHdr, 10, 64); err == nil {
			resetAt = time.Unix(epoch, 0)
		}
	}
	RateLimits().Record(remaining, resetAt)
}
