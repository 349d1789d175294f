package analysis

import (
	"math"
	"sort"

	"etfadvisor/internal/dataflows"
	"etfadvisor/internal/models"
)

const tradingDaysPerYear = 252

// PerformanceMetrics are the absolute metrics of a single price series.
type PerformanceMetrics struct {
	CumulativeReturn     float64 `json:"cumulative_return"`
	CAGR                 float64 `json:"cagr"`
	AnnualizedVolatility float64 `json:"annualized_volatility"`
	MaxDrawdown          float64 `json:"max_drawdown"`
	SharpeRatio          float64 `json:"sharpe_ratio"`
}

// RelativeMetrics are the single-factor regression metrics of an asset
// against a benchmark.
type RelativeMetrics struct {
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
}

// AssetMetrics bundles absolute and relative metrics for one entity.
type AssetMetrics struct {
	PerformanceMetrics
	RelativeMetrics
}

// PortfolioAnalysis is the full metrics bundle for one analysis run.
type PortfolioAnalysis struct {
	Benchmark PerformanceMetrics         `json:"benchmark"`
	Tickers   map[string]AssetMetrics    `json:"tickers"`
	Portfolio AssetMetrics               `json:"portfolio"`
	Warning   *models.DataQualityWarning `json:"warning,omitempty"`
}

// CalculatePerformanceMetrics computes the absolute metrics for a price
// series. The series must hold at least two strictly positive prices and
// span at least one calendar day; a flat series fails the Sharpe
// zero-volatility guard rather than dividing.
func CalculatePerformanceMetrics(prices Series, riskFreeRate float64) (PerformanceMetrics, error) {
	if prices.Len() < 2 {
		return PerformanceMetrics{}, validationErrorf("price series must contain at least 2 data points")
	}
	for _, p := range prices.Values {
		if p <= 0 || math.IsNaN(p) {
			return PerformanceMetrics{}, validationErrorf("price series must contain only positive values")
		}
	}

	cumulativeReturn := prices.Values[prices.Len()-1]/prices.Values[0] - 1

	numDays := int(prices.Dates[prices.Len()-1].Sub(prices.Dates[0]).Hours() / 24)
	if numDays <= 0 {
		return PerformanceMetrics{}, validationErrorf("price series must span more than 0 days")
	}
	cagr := math.Pow(1+cumulativeReturn, 365.0/float64(numDays)) - 1

	returns := prices.DailyReturns()
	if returns.Len() < 2 {
		return PerformanceMetrics{}, validationErrorf("unable to calculate daily returns from price series")
	}

	variance := sampleVariance(returns.Values)
	annualizedVolatility := math.Sqrt(variance) * math.Sqrt(tradingDaysPerYear)

	// Max drawdown over the cumulative return index.
	maxDrawdown := 0.0
	cum, peak := 1.0, 1.0
	for _, r := range returns.Values {
		cum *= 1 + r
		if cum > peak {
			peak = cum
		}
		if dd := cum/peak - 1; dd < maxDrawdown {
			maxDrawdown = dd
		}
	}

	if annualizedVolatility == 0 {
		return PerformanceMetrics{}, validationErrorf("cannot calculate Sharpe ratio: volatility is zero")
	}
	annualizedReturn := math.Pow(1+mean(returns.Values), tradingDaysPerYear) - 1
	sharpe := (annualizedReturn - riskFreeRate) / annualizedVolatility

	return PerformanceMetrics{
		CumulativeReturn:     cumulativeReturn,
		CAGR:                 cagr,
		AnnualizedVolatility: annualizedVolatility,
		MaxDrawdown:          maxDrawdown,
		SharpeRatio:          sharpe,
	}, nil
}

// CalculateRelativeMetrics computes Alpha and Beta of an asset's daily
// returns against a benchmark's, inner-joined by date.
func CalculateRelativeMetrics(assetReturns, benchmarkReturns Series, riskFreeRate float64) (RelativeMetrics, error) {
	benchByDate := make(map[int64]float64, benchmarkReturns.Len())
	for i, d := range benchmarkReturns.Dates {
		benchByDate[d.Unix()] = benchmarkReturns.Values[i]
	}

	asset := make([]float64, 0, assetReturns.Len())
	bench := make([]float64, 0, assetReturns.Len())
	for i, d := range assetReturns.Dates {
		if bv, ok := benchByDate[d.Unix()]; ok {
			asset = append(asset, assetReturns.Values[i])
			bench = append(bench, bv)
		}
	}
	if len(asset) < 2 {
		return RelativeMetrics{}, validationErrorf("insufficient overlapping data between asset and benchmark returns")
	}

	benchVariance := sampleVariance(bench)
	if benchVariance == 0 {
		return RelativeMetrics{}, validationErrorf("cannot calculate Beta: benchmark variance is zero")
	}
	beta := sampleCovariance(asset, bench) / benchVariance

	assetAnnual := math.Pow(1+mean(asset), tradingDaysPerYear) - 1
	benchAnnual := math.Pow(1+mean(bench), tradingDaysPerYear) - 1
	expected := riskFreeRate + beta*(benchAnnual-riskFreeRate)

	return RelativeMetrics{
		Alpha: assetAnnual - expected,
		Beta:  beta,
	}, nil
}

// AnalyzePortfolio computes per-ticker, benchmark, and weighted-portfolio
// metrics over aligned price histories. Under allowPartial, a ticker whose
// own metrics fail is dropped with its weight redistributed instead of
// aborting the run.
func AnalyzePortfolio(tickersData map[string][]dataflows.PriceBar, benchmarkData []dataflows.PriceBar,
	weights map[string]float64, riskFreeRate float64, allowPartial bool) (*PortfolioAnalysis, error) {

	if len(tickersData) == 0 {
		return nil, validationErrorf("tickers data cannot be empty")
	}
	if len(benchmarkData) == 0 {
		return nil, validationErrorf("benchmark data cannot be empty")
	}

	// Benchmark joins the alignment under a reserved column name so that a
	// holding with the same symbol cannot collide.
	const benchmarkCol = "\x00benchmark"
	columns := make(map[string]Series, len(tickersData)+1)
	for ticker, bars := range tickersData {
		columns[ticker] = CloseSeries(bars)
	}
	columns[benchmarkCol] = CloseSeries(benchmarkData)

	dates, aligned := alignPrices(columns)
	if len(dates) == 0 {
		return nil, validationErrorf("no overlapping data found for the given assets and benchmark")
	}

	benchmarkPrices := Series{Dates: dates, Values: aligned[benchmarkCol]}
	benchmarkReturns := benchmarkPrices.DailyReturns()

	benchmarkMetrics, err := CalculatePerformanceMetrics(benchmarkPrices, riskFreeRate)
	if err != nil {
		return nil, err
	}

	result := &PortfolioAnalysis{
		Benchmark: benchmarkMetrics,
		Tickers:   make(map[string]AssetMetrics, len(tickersData)),
	}

	tickers := make([]string, 0, len(tickersData))
	for ticker := range tickersData {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	var dropped []string
	survivors := make([]string, 0, len(tickers))
	for _, ticker := range tickers {
		prices := Series{Dates: dates, Values: aligned[ticker]}
		perf, err := CalculatePerformanceMetrics(prices, riskFreeRate)
		if err == nil {
			var rel RelativeMetrics
			rel, err = CalculateRelativeMetrics(prices.DailyReturns(), benchmarkReturns, riskFreeRate)
			if err == nil {
				result.Tickers[ticker] = AssetMetrics{PerformanceMetrics: perf, RelativeMetrics: rel}
				survivors = append(survivors, ticker)
				continue
			}
		}
		if !allowPartial {
			return nil, err
		}
		dropped = append(dropped, ticker)
	}
	if len(survivors) == 0 {
		return nil, validationErrorf("no tickers produced usable metrics")
	}

	// Survivor weights renormalized to sum to 1; a zero-sum vector falls
	// back to equal weighting.
	weightVec := make([]float64, len(survivors))
	total := 0.0
	for i, ticker := range survivors {
		weightVec[i] = weights[ticker]
		total += weightVec[i]
	}
	var warning *models.DataQualityWarning
	if total == 0 {
		for i := range weightVec {
			weightVec[i] = 1 / float64(len(survivors))
		}
		warning = models.NewDataQualityWarning(
			"Portfolio weights summed to zero; equal weighting was applied.", survivors...)
	} else {
		for i := range weightVec {
			weightVec[i] /= total
		}
	}

	// Weighted portfolio return series, then a synthetic price series
	// anchored at 100 to reuse the absolute-metric computation.
	portfolioReturns := Series{Dates: dates[1:], Values: make([]float64, len(dates)-1)}
	for i, ticker := range survivors {
		returns := Series{Dates: dates, Values: aligned[ticker]}.DailyReturns()
		for j, r := range returns.Values {
			portfolioReturns.Values[j] += weightVec[i] * r
		}
	}
	portfolioPrices := Series{Dates: dates, Values: make([]float64, len(dates))}
	portfolioPrices.Values[0] = 100
	value := 100.0
	for i, r := range portfolioReturns.Values {
		value *= 1 + r
		portfolioPrices.Values[i+1] = value
	}

	portfolioPerf, err := CalculatePerformanceMetrics(portfolioPrices, riskFreeRate)
	if err != nil {
		return nil, err
	}
	portfolioRel, err := CalculateRelativeMetrics(portfolioReturns, benchmarkReturns, riskFreeRate)
	if err != nil {
		return nil, err
	}
	result.Portfolio = AssetMetrics{PerformanceMetrics: portfolioPerf, RelativeMetrics: portfolioRel}

	if len(dropped) > 0 {
		warning = warning.Merge(models.NewDataQualityWarning(
			"Some tickers were excluded from the analysis because their metrics could not be computed.", dropped...))
	}
	result.Warning = warning

	return result, nil
}
