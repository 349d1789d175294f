package display

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"etfadvisor/consts"
	"etfadvisor/internal/analysis"
	"etfadvisor/internal/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1).
			MarginBottom(1)

	sectionStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(1, 2).
			Width(80)

	passedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	failedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	adviceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))
)

// WelcomeBanner prints the startup banner.
func WelcomeBanner() {
	banner := titleStyle.Render("ETF Advisor") +
		mutedStyle.Render("  AI-powered portfolio advisory")
	fmt.Println(banner)
	fmt.Println()
}

// AdvisoryResult renders the final state of an advisory run: the portfolio,
// the analyst verdicts, and the report.
func AdvisoryResult(state *models.AdvisorState) {
	if state == nil {
		return
	}

	if state.Portfolio != nil {
		var b strings.Builder
		b.WriteString(titleStyle.Render("Recommended portfolio: "+state.Portfolio.Name) + "\n")
		for _, h := range state.Portfolio.Holdings {
			b.WriteString(fmt.Sprintf("  %-8s %-36s %-14s %6.2f%%\n", h.Symbol, h.Name, h.AssetClass, h.Weight))
		}
		fmt.Println(sectionStyle.Render(b.String()))
	}

	fmt.Println(sectionStyle.Render(verdictLines(state)))

	if state.Approved {
		fmt.Println(passedStyle.Render("Portfolio approved."))
	} else {
		fmt.Println(failedStyle.Render(fmt.Sprintf(
			"Portfolio not fully approved after %d revision(s); review the advices above.",
			state.CurrentRevision)))
	}

	// The reporter's message is the last one appended.
	if n := len(state.Messages); n > 0 {
		fmt.Println()
		fmt.Println(titleStyle.Render("Report"))
		fmt.Println(state.Messages[n-1].Content)
	}
}

func verdictLines(state *models.AdvisorState) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Analyst verdicts") + "\n")
	for _, name := range []string{
		consts.FeesAnalyst, consts.DiversificationAnalyst,
		consts.AlignmentAnalyst, consts.PerformanceAnalyst,
	} {
		a := state.Analyses[name]
		if a == nil {
			b.WriteString(fmt.Sprintf("  %-26s %s\n", name, mutedStyle.Render("not run")))
			continue
		}
		verdict := passedStyle.Render("passed")
		if !a.Status.Value {
			verdict = failedStyle.Render("failed")
		}
		b.WriteString(fmt.Sprintf("  %-26s %s  %s\n", name, verdict, a.Reasoning))
		for _, advice := range a.Advices {
			b.WriteString("      " + adviceStyle.Render("→ "+advice) + "\n")
		}
	}
	return b.String()
}

// PerformanceResult renders the standalone performance analysis: the metrics
// table when available, then the verdict.
func PerformanceResult(verdict *models.Analysis, metrics *analysis.PortfolioAnalysis) {
	if metrics != nil {
		fmt.Println(sectionStyle.Render(metricsTable(metrics)))
	}
	if verdict == nil {
		return
	}

	status := passedStyle.Render("PERFORMING")
	if !verdict.Status.Value {
		status = failedStyle.Render("NOT PERFORMING / NEEDS REVIEW")
	}
	fmt.Printf("\n%s  %s\n\n%s\n", titleStyle.Render("Verdict:"), status, verdict.Reasoning)
	for _, advice := range verdict.Advices {
		fmt.Println(adviceStyle.Render("  → " + advice))
	}
}

func metricsTable(metrics *analysis.PortfolioAnalysis) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Performance metrics") + "\n")
	b.WriteString(fmt.Sprintf("  %-12s %10s %8s %8s %10s %8s %8s %7s\n",
		"", "cum ret", "CAGR", "vol", "drawdown", "Sharpe", "alpha", "beta"))

	b.WriteString(assetRow("PORTFOLIO", metrics.Portfolio))

	tickers := make([]string, 0, len(metrics.Tickers))
	for ticker := range metrics.Tickers {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)
	for _, ticker := range tickers {
		b.WriteString(assetRow(ticker, metrics.Tickers[ticker]))
	}

	bench := metrics.Benchmark
	b.WriteString(fmt.Sprintf("  %-12s %9.2f%% %7.2f%% %7.2f%% %9.2f%% %8.2f %8s %7s\n",
		"BENCHMARK", bench.CumulativeReturn*100, bench.CAGR*100,
		bench.AnnualizedVolatility*100, bench.MaxDrawdown*100, bench.SharpeRatio, "-", "-"))

	if metrics.Warning != nil {
		b.WriteString("\n" + adviceStyle.Render("Warning: "+metrics.Warning.Message))
		if names := metrics.Warning.Names(); names != "" {
			b.WriteString(adviceStyle.Render(" Affected: " + names))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func assetRow(name string, m analysis.AssetMetrics) string {
	return fmt.Sprintf("  %-12s %9.2f%% %7.2f%% %7.2f%% %9.2f%% %8.2f %8.4f %7.2f\n",
		name, m.CumulativeReturn*100, m.CAGR*100, m.AnnualizedVolatility*100,
		m.MaxDrawdown*100, m.SharpeRatio, m.Alpha, m.Beta)
}
