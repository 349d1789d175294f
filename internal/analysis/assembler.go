package analysis

import (
	"context"
	"fmt"
	"log"
	"sort"

	"etfadvisor/internal/config"
	"etfadvisor/internal/dataflows"
	"etfadvisor/internal/models"
)

// AssembledData is the validated, fetch-complete input for the metrics
// engine: per-ticker histories, the resolved benchmark history, and the
// surviving weight map.
type AssembledData struct {
	PortfolioData map[string][]dataflows.PriceBar
	BenchmarkData []dataflows.PriceBar
	Weights       map[string]float64
	Benchmark     string
	Warning       *models.DataQualityWarning
}

// Assembler validates a portfolio, fetches histories for its tickers and
// benchmark, and resolves missing data according to the partial-data policy.
type Assembler struct {
	fetcher       *dataflows.ConcurrentFetcher
	fallbacks     map[string]string
	lookbackYears int
}

// NewAssembler creates an assembler over the given concurrent fetcher,
// taking the benchmark fallback table and lookback window from config.
func NewAssembler(fetcher *dataflows.ConcurrentFetcher, cfg *config.Config) *Assembler {
	lookback := cfg.LookbackYears
	if lookback < 1 {
		lookback = 1
	}
	return &Assembler{
		fetcher:       fetcher,
		fallbacks:     cfg.BenchmarkFallbacks,
		lookbackYears: lookback,
	}
}

// Assemble validates the portfolio, fetches all required histories over the
// lookback window, and returns the assembled data. A benchmark with no
// usable history is retried once against the fallback table and is fatal if
// that fails too. Holdings without usable history are dropped under
// allowPartial, with the surviving weights rescaled to preserve the original
// total and the pairwise ratios; in strict mode they are fatal.
func (a *Assembler) Assemble(ctx context.Context, portfolio *models.Portfolio, benchmark string, allowPartial bool) (*AssembledData, error) {
	if portfolio == nil || len(portfolio.Holdings) == 0 {
		return nil, validationErrorf("Portfolio must have holdings")
	}
	benchmark = dataflows.NormalizeSymbol(benchmark)
	if benchmark == "" {
		return nil, validationErrorf("Benchmark ticker must be a non-empty string")
	}

	weights := make(map[string]float64, len(portfolio.Holdings))
	totalWeight := 0.0
	for _, holding := range portfolio.Holdings {
		symbol := dataflows.NormalizeSymbol(holding.Symbol)
		if symbol == "" {
			return nil, validationErrorf("every holding must have a non-empty symbol")
		}
		if holding.Weight < 0 {
			return nil, validationErrorf("holding %s has a negative weight", symbol)
		}
		weights[symbol] += holding.Weight
		totalWeight += holding.Weight
	}
	if totalWeight <= 0 {
		return nil, validationErrorf("total portfolio weight must be greater than 0")
	}

	window := dataflows.LookbackWindow(a.lookbackYears)

	symbols := make([]string, 0, len(weights)+1)
	for symbol := range weights {
		symbols = append(symbols, symbol)
	}
	symbols = append(symbols, benchmark)

	log.Printf("[Assembler] fetching %d symbols over %s", len(symbols), dataflows.FormatDateRange(window.Start, window.End))
	histories := a.fetcher.FetchAll(ctx, symbols, window.Start, window.End)

	var warning *models.DataQualityWarning

	// Benchmark resolution. There is no "no benchmark" mode: if neither the
	// requested ticker nor its fallback has a usable history, the whole
	// assembly fails.
	benchmarkData := histories[benchmark]
	if len(benchmarkData) < 2 {
		fallback, ok := a.fallbacks[benchmark]
		if ok {
			fallback = dataflows.NormalizeSymbol(fallback)
			log.Printf("[Assembler] benchmark %s unavailable, trying fallback %s", benchmark, fallback)
			fallbackData := a.fetcher.FetchAll(ctx, []string{fallback}, window.Start, window.End)[fallback]
			if len(fallbackData) >= 2 {
				warning = warning.Merge(models.NewDataQualityWarning(
					fmt.Sprintf("Benchmark %s had no usable data; %s was used instead.", benchmark, fallback),
					benchmark))
				benchmark = fallback
				benchmarkData = fallbackData
			}
		}
		if len(benchmarkData) < 2 {
			return nil, &DataUnavailableError{
				Symbols: []string{benchmark},
				Reason:  "no usable data for benchmark",
			}
		}
	}

	// Holdings: a ticker with fewer than two points is as unusable as one
	// with none.
	portfolioData := make(map[string][]dataflows.PriceBar, len(weights))
	var missing []string
	for symbol := range weights {
		if bars := histories[symbol]; len(bars) >= 2 {
			portfolioData[symbol] = bars
		} else {
			missing = append(missing, symbol)
		}
	}
	if len(portfolioData) == 0 {
		return nil, &DataUnavailableError{
			Symbols: sortedCopy(missing),
			Reason:  "no usable data for any portfolio holding",
		}
	}
	if len(missing) > 0 {
		if !allowPartial {
			return nil, &DataUnavailableError{
				Symbols: sortedCopy(missing),
				Reason:  "no usable data for portfolio holdings",
			}
		}

		survivingTotal := 0.0
		surviving := make(map[string]float64, len(portfolioData))
		for symbol := range portfolioData {
			surviving[symbol] = weights[symbol]
			survivingTotal += weights[symbol]
		}
		if survivingTotal > 0 {
			// Rescale so the surviving weights carry the original total while
			// keeping their ratios.
			factor := totalWeight / survivingTotal
			for symbol := range surviving {
				surviving[symbol] *= factor
			}
		}
		weights = surviving

		warning = warning.Merge(models.NewDataQualityWarning(
			"Some holdings had no usable price history and were excluded; remaining weights were rescaled.",
			missing...))
		log.Printf("[Assembler] dropped %d holdings without usable data: %v", len(missing), sortedCopy(missing))
	}

	return &AssembledData{
		PortfolioData: portfolioData,
		BenchmarkData: benchmarkData,
		Weights:       weights,
		Benchmark:     benchmark,
		Warning:       warning,
	}, nil
}

func sortedCopy(symbols []string) []string {
	out := append([]string(nil), symbols...)
	sort.Strings(out)
	return out
}
