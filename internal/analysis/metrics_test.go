package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"etfadvisor/internal/dataflows"
)

func dailySeries(values ...float64) Series {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := Series{}
	for i, v := range values {
		s.Dates = append(s.Dates, base.AddDate(0, 0, i))
		s.Values = append(s.Values, v)
	}
	return s
}

func dailyBars(values ...float64) []dataflows.PriceBar {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]dataflows.PriceBar, 0, len(values))
	for i, v := range values {
		price := decimal.NewFromFloat(v)
		bars = append(bars, dataflows.PriceBar{
			Date: base.AddDate(0, 0, i), Open: price, High: price, Low: price, Close: price, Volume: 1,
		})
	}
	return bars
}

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestCalculatePerformanceMetrics(t *testing.T) {
	prices := dailySeries(100, 110, 105.6)

	m, err := CalculatePerformanceMetrics(prices, 0.02)
	if err != nil {
		t.Fatalf("CalculatePerformanceMetrics: %v", err)
	}

	if !almostEqual(m.CumulativeReturn, 0.056, 1e-9) {
		t.Errorf("cumulative return = %v, want 0.056", m.CumulativeReturn)
	}
	// Peak at 110, trough at 105.6.
	if !almostEqual(m.MaxDrawdown, 105.6/110-1, 1e-9) {
		t.Errorf("max drawdown = %v, want %v", m.MaxDrawdown, 105.6/110-1)
	}
	if m.MaxDrawdown > 0 {
		t.Error("max drawdown must never be positive")
	}
	if m.AnnualizedVolatility <= 0 {
		t.Errorf("volatility = %v, want > 0", m.AnnualizedVolatility)
	}
}

func TestCalculatePerformanceMetricsIdempotent(t *testing.T) {
	prices := dailySeries(100, 102, 101, 104, 103.5)

	first, err := CalculatePerformanceMetrics(prices, 0.02)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := CalculatePerformanceMetrics(prices, 0.02)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if first != second {
		t.Errorf("metrics not idempotent: %+v vs %+v", first, second)
	}
}

func TestCalculatePerformanceMetricsValidation(t *testing.T) {
	cases := []struct {
		name   string
		prices Series
	}{
		{"too short", dailySeries(100)},
		{"non-positive price", dailySeries(100, 0, 101)},
		{"negative price", dailySeries(100, -5, 101)},
		{"flat series zero volatility", dailySeries(100, 100, 100)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CalculatePerformanceMetrics(tc.prices, 0.02)
			if !IsValidationError(err) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestCalculatePerformanceMetricsZeroDaySpan(t *testing.T) {
	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	prices := Series{Dates: []time.Time{d, d}, Values: []float64{100, 101}}
	if _, err := CalculatePerformanceMetrics(prices, 0.02); !IsValidationError(err) {
		t.Fatalf("expected ValidationError for zero-day span, got %v", err)
	}
}

func TestRelativeMetricsAgainstSelf(t *testing.T) {
	returns := dailySeries(100, 102, 101, 104, 103.5).DailyReturns()

	rel, err := CalculateRelativeMetrics(returns, returns, 0.02)
	if err != nil {
		t.Fatalf("CalculateRelativeMetrics: %v", err)
	}
	if !almostEqual(rel.Beta, 1, 1e-9) {
		t.Errorf("Beta against self = %v, want 1", rel.Beta)
	}
	if !almostEqual(rel.Alpha, 0, 1e-9) {
		t.Errorf("Alpha against self = %v, want 0", rel.Alpha)
	}
}

func TestRelativeMetricsInsufficientOverlap(t *testing.T) {
	asset := dailySeries(100, 101, 102).DailyReturns()
	bench := Series{
		Dates:  []time.Time{time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC), time.Date(2020, 1, 3, 0, 0, 0, 0, time.UTC)},
		Values: []float64{0.01, 0.02},
	}
	if _, err := CalculateRelativeMetrics(asset, bench, 0.02); !IsValidationError(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestRelativeMetricsZeroBenchmarkVariance(t *testing.T) {
	asset := dailySeries(100, 102, 101, 104).DailyReturns()
	bench := Series{Dates: asset.Dates, Values: []float64{0.01, 0.01, 0.01}}
	if _, err := CalculateRelativeMetrics(asset, bench, 0.02); !IsValidationError(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestAnalyzePortfolioWeightConservation(t *testing.T) {
	tickers := map[string][]dataflows.PriceBar{
		"VTI": dailyBars(100, 102, 101, 105),
		"AGG": dailyBars(50, 50.5, 50.2, 50.8),
	}
	bench := dailyBars(200, 203, 201, 207)
	weights := map[string]float64{"VTI": 30, "AGG": 70}

	result, err := AnalyzePortfolio(tickers, bench, weights, 0.02, true)
	if err != nil {
		t.Fatalf("AnalyzePortfolio: %v", err)
	}
	if len(result.Tickers) != 2 {
		t.Fatalf("expected 2 ticker metrics, got %d", len(result.Tickers))
	}

	// Reproduce the weighted return compounding by hand.
	vti := CloseSeries(tickers["VTI"]).DailyReturns()
	agg := CloseSeries(tickers["AGG"]).DailyReturns()
	expected := 1.0
	for i := range vti.Values {
		expected *= 1 + 0.3*vti.Values[i] + 0.7*agg.Values[i]
	}
	expected -= 1

	if !almostEqual(result.Portfolio.CumulativeReturn, expected, 1e-9) {
		t.Errorf("portfolio cumulative return = %v, want %v", result.Portfolio.CumulativeReturn, expected)
	}
	if result.Warning != nil {
		t.Errorf("unexpected warning: %+v", result.Warning)
	}
}

func TestAnalyzePortfolioDropsFailingTickerUnderPartial(t *testing.T) {
	tickers := map[string][]dataflows.PriceBar{
		"VTI":  dailyBars(100, 102, 101, 105),
		"FLAT": dailyBars(50, 50, 50, 50), // zero volatility, metrics fail
	}
	bench := dailyBars(200, 203, 201, 207)
	weights := map[string]float64{"VTI": 0.6, "FLAT": 0.4}

	result, err := AnalyzePortfolio(tickers, bench, weights, 0.02, true)
	if err != nil {
		t.Fatalf("AnalyzePortfolio: %v", err)
	}
	if _, ok := result.Tickers["FLAT"]; ok {
		t.Error("failing ticker must be dropped from results")
	}
	if result.Warning == nil {
		t.Fatal("expected a data quality warning for the dropped ticker")
	}
	found := false
	for _, name := range result.Warning.AffectedTickers {
		if name == "FLAT" {
			found = true
		}
	}
	if !found {
		t.Errorf("warning does not name the dropped ticker: %+v", result.Warning)
	}

	// With one survivor the portfolio is that ticker alone.
	if !almostEqual(result.Portfolio.Beta, result.Tickers["VTI"].Beta, 1e-9) {
		t.Errorf("single-survivor portfolio beta = %v, want %v",
			result.Portfolio.Beta, result.Tickers["VTI"].Beta)
	}
}

func TestAnalyzePortfolioStrictModeFailsFast(t *testing.T) {
	tickers := map[string][]dataflows.PriceBar{
		"VTI":  dailyBars(100, 102, 101, 105),
		"FLAT": dailyBars(50, 50, 50, 50),
	}
	bench := dailyBars(200, 203, 201, 207)

	_, err := AnalyzePortfolio(tickers, bench, map[string]float64{"VTI": 0.6, "FLAT": 0.4}, 0.02, false)
	if !IsValidationError(err) {
		t.Fatalf("expected ValidationError in strict mode, got %v", err)
	}
}

func TestAnalyzePortfolioZeroWeightsFallBackToEqual(t *testing.T) {
	tickers := map[string][]dataflows.PriceBar{
		"VTI": dailyBars(100, 102, 101, 105),
		"AGG": dailyBars(50, 50.5, 50.2, 50.8),
	}
	bench := dailyBars(200, 203, 201, 207)

	result, err := AnalyzePortfolio(tickers, bench, map[string]float64{}, 0.02, true)
	if err != nil {
		t.Fatalf("AnalyzePortfolio: %v", err)
	}
	if result.Warning == nil {
		t.Fatal("expected a warning about the equal-weight fallback")
	}

	vti := CloseSeries(tickers["VTI"]).DailyReturns()
	agg := CloseSeries(tickers["AGG"]).DailyReturns()
	expected := 1.0
	for i := range vti.Values {
		expected *= 1 + 0.5*vti.Values[i] + 0.5*agg.Values[i]
	}
	expected -= 1
	if !almostEqual(result.Portfolio.CumulativeReturn, expected, 1e-9) {
		t.Errorf("equal-weight cumulative return = %v, want %v", result.Portfolio.CumulativeReturn, expected)
	}
}

func TestAnalyzePortfolioEmptyInputs(t *testing.T) {
	bench := dailyBars(200, 203)
	if _, err := AnalyzePortfolio(nil, bench, nil, 0.02, true); !IsValidationError(err) {
		t.Fatalf("expected ValidationError for empty tickers, got %v", err)
	}
	tickers := map[string][]dataflows.PriceBar{"VTI": dailyBars(100, 101)}
	if _, err := AnalyzePortfolio(tickers, nil, nil, 0.02, true); !IsValidationError(err) {
		t.Fatalf("expected ValidationError for empty benchmark, got %v", err)
	}
}

func TestAlignPricesForwardFills(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	full := dailySeries(10, 11, 12)
	gappy := Series{
		Dates:  []time.Time{base, base.AddDate(0, 0, 2)},
		Values: []float64{20, 22},
	}

	dates, aligned := alignPrices(map[string]Series{"FULL": full, "GAPPY": gappy})
	if len(dates) != 3 {
		t.Fatalf("expected 3 aligned rows, got %d", len(dates))
	}
	if aligned["GAPPY"][1] != 20 {
		t.Errorf("gap not forward-filled: %v", aligned["GAPPY"])
	}
}

func TestAlignPricesDropsLeadingGaps(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	full := dailySeries(10, 11, 12)
	late := Series{
		Dates:  []time.Time{base.AddDate(0, 0, 1), base.AddDate(0, 0, 2)},
		Values: []float64{20, 21},
	}

	dates, aligned := alignPrices(map[string]Series{"FULL": full, "LATE": late})
	if len(dates) != 2 {
		t.Fatalf("expected leading gap row dropped, got %d rows", len(dates))
	}
	if aligned["FULL"][0] != 11 {
		t.Errorf("first surviving row should align to second date, got %v", aligned["FULL"][0])
	}
}
