package dataflows

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"

	"etfadvisor/internal/config"
)

// YahooClient fetches daily history from Yahoo Finance. It serves as the
// secondary provider when no Polygon key is configured.
type YahooClient struct {
	cache *CacheManager
}

// NewYahooClient creates a new Yahoo Finance client.
func NewYahooClient(cfg *config.Config) *YahooClient {
	cacheDir := filepath.Join(cfg.DataCacheDir, "yahoo_finance")
	cache := NewCacheManager(cacheDir, 24*time.Hour, cfg.CacheEnabled)

	return &YahooClient{cache: cache}
}

// DailyHistory fetches daily bars for the symbol over [start, end].
func (yc *YahooClient) DailyHistory(ctx context.Context, symbol string, start, end time.Time) ([]PriceBar, error) {
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
	if yc.cache.Get("yahoo", "historical", cacheKey, &cached) {
		return cached, nil
	}

	params := &chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}

	iter := chart.Get(params)

	bars := make([]PriceBar, 0)
	for iter.Next() {
		bar := iter.Bar()
		bars = append(bars, PriceBar{
			Date:   time.Unix(int64(bar.Timestamp), 0).UTC(),
			Open:   bar.Open,
			High:   bar.High,
			Low:    bar.Low,
			Close:  bar.AdjClose,
			Volume: int64(bar.Volume),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to get historical data for %s: %w", symbol, err)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	if len(bars) > 0 {
		yc.cache.Set("yahoo", "historical", cacheKey, bars)
	}

	return bars, nil
}
