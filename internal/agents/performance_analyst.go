package agents

import (
	"context"
	"fmt"
	"log"
	"strings"

	"etfadvisor/consts"
	"etfadvisor/internal/analysis"
	"etfadvisor/internal/config"
	"etfadvisor/internal/dataflows"
	"etfadvisor/internal/models"
)

// analysisPhase tracks where a performance run is in its lifecycle. There are
// no retries at this layer; those live in the history fetcher.
type analysisPhase string

const (
	phaseValidating       analysisPhase = "validating"
	phaseFetching         analysisPhase = "fetching"
	phaseComputingMetrics analysisPhase = "computing_metrics"
	phaseSucceeded        analysisPhase = "succeeded"
	phaseDegraded         analysisPhase = "degraded_failure"
)

// PerformanceAnalyzer runs the numeric half of the performance analysis:
// assemble data, compute metrics. Its errors are typed so the agent node can
// degrade instead of crashing.
type PerformanceAnalyzer struct {
	assembler        *analysis.Assembler
	riskFreeRate     float64
	allowPartial     bool
	defaultBenchmark string
}

var Analyzer *PerformanceAnalyzer

// InitAnalyzer wires the data provider, fetcher, and assembler stack from
// config and installs the package-level analyzer used by the graph nodes.
func InitAnalyzer(cfg *config.Config) error {
	provider, err := dataflows.NewProvider(cfg)
	if err != nil {
		return fmt.Errorf("init analyzer: %w", err)
	}
	fetcher := dataflows.NewHistoryFetcher(provider, cfg)
	concurrent := dataflows.NewConcurrentFetcher(fetcher, cfg)
	Analyzer = NewPerformanceAnalyzer(analysis.NewAssembler(concurrent, cfg), cfg)
	return nil
}

func NewPerformanceAnalyzer(assembler *analysis.Assembler, cfg *config.Config) *PerformanceAnalyzer {
	return &PerformanceAnalyzer{
		assembler:        assembler,
		riskFreeRate:     cfg.RiskFreeRate,
		allowPartial:     cfg.AllowPartialData,
		defaultBenchmark: cfg.DefaultBenchmark,
	}
}

// Evaluate walks the validating → fetching → computing phases and returns
// the metrics bundle. Callers must treat any error as terminal for this
// invocation and degrade rather than retry.
func (pa *PerformanceAnalyzer) Evaluate(ctx context.Context, portfolio *models.Portfolio, benchmark string) (*analysis.PortfolioAnalysis, string, error) {
	phase := phaseValidating
	if benchmark == "" {
		benchmark = pa.defaultBenchmark
	}

	phase = phaseFetching
	log.Printf("[PerformanceAnalyzer] phase=%s benchmark=%s", phase, benchmark)
	assembled, err := pa.assembler.Assemble(ctx, portfolio, benchmark, pa.allowPartial)
	if err != nil {
		return nil, string(phaseDegraded), err
	}

	phase = phaseComputingMetrics
	log.Printf("[PerformanceAnalyzer] phase=%s tickers=%d", phase, len(assembled.PortfolioData))
	result, err := analysis.AnalyzePortfolio(assembled.PortfolioData, assembled.BenchmarkData,
		assembled.Weights, pa.riskFreeRate, pa.allowPartial)
	if err != nil {
		return nil, string(phaseDegraded), err
	}

	result.Warning = assembled.Warning.Merge(result.Warning)
	return result, string(phaseSucceeded), nil
}

// degradedPerformanceAnalysis converts a data problem into a well-formed
// negative verdict with operator remediation steps. The advisory workflow
// never crashes on missing market data.
func degradedPerformanceAnalysis(err error) *models.Analysis {
	reasoning := "Performance could not be assessed: " + err.Error() + "."
	advices := []string{
		"Verify that every holding uses a valid, currently listed ticker symbol.",
		"Check market data connectivity and API credentials, then re-run the analysis.",
	}
	if analysis.IsDataUnavailable(err) {
		advices = append(advices, "Consider reducing the portfolio to holdings with longer trading histories.")
	}
	return &models.Analysis{
		Status:    models.Status{Key: consts.StatusPerformance, Value: false},
		Reasoning: reasoning,
		Advices:   advices,
	}
}

func formatMetrics(name string, m analysis.PerformanceMetrics) string {
	return fmt.Sprintf("%s: cumulative return %.2f%%, CAGR %.2f%%, volatility %.2f%%, max drawdown %.2f%%, Sharpe %.2f",
		name, m.CumulativeReturn*100, m.CAGR*100, m.AnnualizedVolatility*100, m.MaxDrawdown*100, m.SharpeRatio)
}

// buildPerformanceContext renders the metrics bundle as the numeric context
// for the LLM judgment.
func buildPerformanceContext(result *analysis.PortfolioAnalysis, strategy *models.Strategy) string {
	var b strings.Builder
	b.WriteString("Portfolio performance metrics over the lookback window:\n")
	b.WriteString("- " + formatMetrics("Portfolio", result.Portfolio.PerformanceMetrics))
	b.WriteString(fmt.Sprintf(" (alpha %.4f, beta %.2f)\n", result.Portfolio.Alpha, result.Portfolio.Beta))
	b.WriteString("- " + formatMetrics("Benchmark", result.Benchmark) + "\n")

	b.WriteString("\nPer-holding metrics:\n")
	for ticker, m := range result.Tickers {
		b.WriteString("- " + formatMetrics(ticker, m.PerformanceMetrics))
		b.WriteString(fmt.Sprintf(" (alpha %.4f, beta %.2f)\n", m.Alpha, m.Beta))
	}

	if result.Warning != nil {
		b.WriteString("\nData quality warning: " + result.Warning.Message)
		if names := result.Warning.Names(); names != "" {
			b.WriteString(" Affected tickers: " + names + ".")
		}
		b.WriteString("\n")
	}

	if strategy != nil && strategy.ExpectedReturns != "" {
		b.WriteString("\nStrategy expected returns: " + strategy.ExpectedReturns + "\n")
	}
	return b.String()
}

const performanceSystemPrompt = `You are a portfolio performance analyst for an ETF advisory service.

Judge whether the portfolio is performing well, considering:
1. Portfolio returns versus the benchmark (alpha, relative CAGR)
2. Risk-adjusted performance (Sharpe ratio, volatility, max drawdown)
3. Whether performance is consistent with the strategy's expected returns
4. Any data quality warnings that reduce confidence in the numbers

Reply with a single JSON object:
{"passed": true or false, "reasoning": "...", "advices": ["...", "..."]}

advices must be empty when passed is true, and contain concrete portfolio
adjustments when passed is false.`

// AnalyzePortfolioPerformance runs the full performance analysis for one
// portfolio: metrics, then the LLM judgment. It never returns an error; data
// problems come back as a degraded negative Analysis with nil metrics.
func AnalyzePortfolioPerformance(ctx context.Context, portfolio *models.Portfolio, benchmark string, strategy *models.Strategy) (*models.Analysis, *analysis.PortfolioAnalysis) {
	result, phase, err := Analyzer.Evaluate(ctx, portfolio, benchmark)
	if err != nil {
		// Typed data errors and anything unexpected (cancelled context)
		// degrade the same way; a half-built analysis must never leak.
		log.Printf("[PerformanceAnalyst] degraded: %v", err)
		return degradedPerformanceAnalysis(err), nil
	}
	log.Printf("[PerformanceAnalyst] metrics computed, phase=%s", phase)

	verdict := runVerdict(ctx, consts.StatusPerformance,
		performanceSystemPrompt, buildPerformanceContext(result, strategy))
	return verdict, result
}

func performanceAnalystNode(ctx context.Context, state *models.AdvisorState) (*models.AdvisorState, error) {
	state.Goto = consts.Reporter
	verdict, _ := AnalyzePortfolioPerformance(ctx, state.Portfolio, state.Benchmark, state.Strategy)
	state.Analyses[consts.PerformanceAnalyst] = verdict
	return state, nil
}
