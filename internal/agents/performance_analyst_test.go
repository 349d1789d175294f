package agents

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"etfadvisor/consts"
	"etfadvisor/internal/analysis"
	"etfadvisor/internal/config"
	"etfadvisor/internal/dataflows"
	"etfadvisor/internal/models"
)

// mapProvider serves canned histories and errors for everything else.
type mapProvider struct {
	data map[string][]dataflows.PriceBar
}

func (p *mapProvider) DailyHistory(ctx context.Context, symbol string, start, end time.Time) ([]dataflows.PriceBar, error) {
	if bars, ok := p.data[symbol]; ok {
		return bars, nil
	}
	return nil, fmt.Errorf("no data for %s", symbol)
}

func bars(values ...float64) []dataflows.PriceBar {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	out := make([]dataflows.PriceBar, 0, len(values))
	for i, v := range values {
		price := decimal.NewFromFloat(v)
		out = append(out, dataflows.PriceBar{
			Date: base.AddDate(0, 0, i), Open: price, High: price, Low: price, Close: price, Volume: 1,
		})
	}
	return out
}

func installAnalyzer(data map[string][]dataflows.PriceBar) {
	cfg := &config.Config{
		DataProvider:     "polygon",
		FetchWorkers:     2,
		MaxRetries:       1,
		RetryBaseDelay:   1 * time.Millisecond,
		RetryMaxDelay:    2 * time.Millisecond,
		FetchTimeout:     1 * time.Second,
		LookbackYears:    1,
		RiskFreeRate:     0.02,
		DefaultBenchmark: "SPY",
		AllowPartialData: true,
		BenchmarkFallbacks: map[string]string{
			"ACWI": "SPY",
		},
	}
	fetcher := dataflows.NewHistoryFetcher(&mapProvider{data: data}, cfg)
	assembler := analysis.NewAssembler(dataflows.NewConcurrentFetcher(fetcher, cfg), cfg)
	Analyzer = NewPerformanceAnalyzer(assembler, cfg)
}

func TestDegradedPerformanceAnalysisShape(t *testing.T) {
	got := degradedPerformanceAnalysis(fmt.Errorf("vendor down"))
	if got.Status.Key != consts.StatusPerformance {
		t.Errorf("status key = %q, want %q", got.Status.Key, consts.StatusPerformance)
	}
	if got.Status.Value {
		t.Error("a degraded analysis must be negative")
	}
	if got.Reasoning == "" {
		t.Error("reasoning must not be empty")
	}
	if len(got.Advices) < 2 {
		t.Errorf("expected remediation advices, got %v", got.Advices)
	}

	unavailable := degradedPerformanceAnalysis(&analysis.DataUnavailableError{
		Symbols: []string{"VNQ"}, Reason: "no usable data",
	})
	if len(unavailable.Advices) <= len(got.Advices) {
		t.Error("data-unavailable errors should add a history-length advice")
	}
}

func TestAnalyzePortfolioPerformanceSuccess(t *testing.T) {
	installAnalyzer(map[string][]dataflows.PriceBar{
		"VTI": bars(100, 102, 101, 105),
		"AGG": bars(50, 50.5, 50.2, 50.8),
		"SPY": bars(200, 203, 201, 207),
	})
	fake := &fakeChatModel{replies: []string{
		`{"passed": true, "reasoning": "beats the benchmark risk-adjusted", "advices": []}`,
	}}
	ChatModel = fake

	portfolio := &models.Portfolio{Holdings: []models.Holding{
		{Symbol: "VTI", Weight: 60}, {Symbol: "AGG", Weight: 40},
	}}
	verdict, metrics := AnalyzePortfolioPerformance(context.Background(), portfolio, "SPY", nil)

	if !verdict.Status.Value {
		t.Errorf("expected a positive verdict, got %+v", verdict)
	}
	if metrics == nil {
		t.Fatal("expected metrics on the success path")
	}
	if metrics.Warning != nil {
		t.Errorf("unexpected warning: %+v", metrics.Warning)
	}
	if len(metrics.Tickers) != 2 {
		t.Errorf("expected metrics for both holdings, got %d", len(metrics.Tickers))
	}
	if fake.calls != 1 {
		t.Errorf("expected exactly one model call, got %d", fake.calls)
	}
}

func TestAnalyzePortfolioPerformancePartialDataWarns(t *testing.T) {
	installAnalyzer(map[string][]dataflows.PriceBar{
		"VTI": bars(100, 102, 101, 105),
		"SPY": bars(200, 203, 201, 207),
		// VNQ missing entirely.
	})
	fake := &fakeChatModel{replies: []string{
		`{"passed": true, "reasoning": "survivors perform fine", "advices": []}`,
	}}
	ChatModel = fake

	portfolio := &models.Portfolio{Holdings: []models.Holding{
		{Symbol: "VTI", Weight: 70}, {Symbol: "VNQ", Weight: 30},
	}}
	verdict, metrics := AnalyzePortfolioPerformance(context.Background(), portfolio, "SPY", nil)

	if metrics == nil {
		t.Fatal("partial data must still produce metrics")
	}
	if metrics.Warning == nil || !strings.Contains(metrics.Warning.Names(), "VNQ") {
		t.Errorf("warning = %+v, want VNQ flagged", metrics.Warning)
	}
	if verdict.Status.Key != consts.StatusPerformance {
		t.Errorf("status key = %q", verdict.Status.Key)
	}

	// The model must see the warning in its numeric context.
	if len(fake.last) != 2 {
		t.Fatalf("expected system+user messages, got %d", len(fake.last))
	}
	if !strings.Contains(fake.last[1].Content, "Data quality warning") {
		t.Errorf("user context missing the data quality warning:\n%s", fake.last[1].Content)
	}
}

func TestAnalyzePortfolioPerformanceTotalFailureDegrades(t *testing.T) {
	installAnalyzer(map[string][]dataflows.PriceBar{
		"SPY": bars(200, 203, 201, 207),
	})
	fake := &fakeChatModel{replies: []string{`{"passed": true, "reasoning": "", "advices": []}`}}
	ChatModel = fake

	portfolio := &models.Portfolio{Holdings: []models.Holding{
		{Symbol: "AAA", Weight: 50}, {Symbol: "BBB", Weight: 50},
	}}
	verdict, metrics := AnalyzePortfolioPerformance(context.Background(), portfolio, "SPY", nil)

	if metrics != nil {
		t.Error("a degraded run must not leak partial metrics")
	}
	if verdict.Status.Value {
		t.Error("expected a negative verdict")
	}
	if verdict.Status.Key != consts.StatusPerformance {
		t.Errorf("status key = %q", verdict.Status.Key)
	}
	if fake.calls != 0 {
		t.Errorf("the model must not be consulted on the degraded path, got %d calls", fake.calls)
	}
}

func TestEvaluateUsesDefaultBenchmark(t *testing.T) {
	installAnalyzer(map[string][]dataflows.PriceBar{
		"VTI": bars(100, 102, 101, 105),
		"SPY": bars(200, 203, 201, 207),
	})

	portfolio := &models.Portfolio{Holdings: []models.Holding{{Symbol: "VTI", Weight: 100}}}
	result, phase, err := Analyzer.Evaluate(context.Background(), portfolio, "")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if phase != string(phaseSucceeded) {
		t.Errorf("phase = %q", phase)
	}
	if result == nil || len(result.Tickers) != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestPerformanceAnalystNodeRoutesToReporter(t *testing.T) {
	installAnalyzer(map[string][]dataflows.PriceBar{
		"VTI": bars(100, 102, 101, 105),
		"AGG": bars(50, 50.5, 50.2, 50.8),
		"SPY": bars(200, 203, 201, 207),
	})
	ChatModel = &fakeChatModel{replies: []string{
		`{"passed": true, "reasoning": "ok", "advices": []}`,
	}}

	state := testState()
	got, err := performanceAnalystNode(context.Background(), state)
	if err != nil {
		t.Fatalf("node: %v", err)
	}
	if got.Goto != consts.Reporter {
		t.Errorf("goto = %q, want %q", got.Goto, consts.Reporter)
	}
	if got.Analyses[consts.PerformanceAnalyst] == nil {
		t.Error("performance verdict not recorded on state")
	}
}
