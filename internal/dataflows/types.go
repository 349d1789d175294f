package dataflows

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PriceBar is one daily OHLCV bar. Histories are always ordered strictly
// ascending by date.
type PriceBar struct {
	Date   time.Time       `json:"date"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume int64           `json:"volume"`
}

// HistoryProvider is a raw market-data vendor call. It may fail; retry and
// degradation policy live in HistoryFetcher, not here.
type HistoryProvider interface {
	DailyHistory(ctx context.Context, symbol string, start, end time.Time) ([]PriceBar, error)
}

// DateRange is a closed interval of calendar days.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// LookbackWindow returns the date range ending today and spanning the given
// number of years back.
func LookbackWindow(years int) DateRange {
	now := time.Now().UTC().Truncate(24 * time.Hour)
	return DateRange{
		Start: now.AddDate(-years, 0, 0),
		End:   now,
	}
}
