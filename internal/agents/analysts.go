package agents

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/schema"

	"etfadvisor/consts"
	"etfadvisor/internal/models"
)

// verdict is the JSON shape every analyst asks the model for.
type verdict struct {
	Passed    bool     `json:"passed"`
	Reasoning string   `json:"reasoning"`
	Advices   []string `json:"advices"`
}

// runVerdict sends one system+user exchange to the chat model and converts
// the reply into an Analysis. Model or decode failures become a negative
// verdict instead of an error; analyst nodes never fail the workflow.
func runVerdict(ctx context.Context, statusKey, systemPrompt, userContext string) *models.Analysis {
	reply, err := ChatModel.Generate(ctx, []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(userContext),
	})
	if err != nil {
		log.Printf("[Analyst] %s model call failed: %v", statusKey, err)
		return &models.Analysis{
			Status:    models.Status{Key: statusKey, Value: false},
			Reasoning: "The analysis could not be completed: " + err.Error() + ".",
			Advices:   []string{"Check the LLM backend configuration and re-run the analysis."},
		}
	}

	var v verdict
	if err := decodeJSON(reply.Content, &v); err != nil {
		log.Printf("[Analyst] %s reply not parseable: %v", statusKey, err)
		return &models.Analysis{
			Status:    models.Status{Key: statusKey, Value: false},
			Reasoning: "The analyst reply could not be parsed.",
			Advices:   []string{"Re-run the analysis."},
		}
	}

	analysis := &models.Analysis{
		Status:    models.Status{Key: statusKey, Value: v.Passed},
		Reasoning: v.Reasoning,
		Advices:   v.Advices,
	}
	if analysis.Status.Value {
		analysis.Advices = nil
	}
	return analysis
}

// describePortfolio renders a portfolio and its strategy for analyst prompts.
func describePortfolio(state *models.AdvisorState) string {
	var b strings.Builder
	if state.Portfolio != nil {
		b.WriteString("Portfolio " + state.Portfolio.Name + ":\n")
		for _, h := range state.Portfolio.Holdings {
			b.WriteString(fmt.Sprintf("- %s (%s, %s): %.2f%%\n", h.Symbol, h.Name, h.AssetClass, h.Weight))
		}
	}
	if state.Strategy != nil {
		b.WriteString(fmt.Sprintf("\nStrategy %s: %s\nRisk tolerance: %s, time horizon: %s\n",
			state.Strategy.Name, state.Strategy.Description, state.Strategy.RiskTolerance, state.Strategy.TimeHorizon))
		a := state.Strategy.AssetAllocation
		b.WriteString(fmt.Sprintf("Target allocation: stocks %.0f%%, bonds %.0f%%, real estate %.0f%%, commodities %.0f%%, cash %.0f%%\n",
			a.StocksPercentage, a.BondsPercentage, a.RealEstatePercentage, a.CommoditiesPercentage, a.CashPercentage))
	}
	if state.Preferences != nil {
		b.WriteString(fmt.Sprintf("\nInvestor: goal %s, risk profile %s, horizon %s, age %d\n",
			state.Preferences.Goal, state.Preferences.RiskProfile, state.Preferences.InvestmentHorizon, state.Preferences.Age))
	}
	return b.String()
}

const feesSystemPrompt = `You are an ETF cost analyst. Judge whether the portfolio is cost
efficient: prefer broad low-TER index ETFs, flag niche or leveraged products
with high expense ratios, and flag excessive holding counts that inflate
transaction costs.

Reply with a single JSON object:
{"passed": true or false, "reasoning": "...", "advices": ["..."]}
advices must be empty when passed is true.`

func feesAnalystNode(ctx context.Context, state *models.AdvisorState) (*models.AdvisorState, error) {
	state.Goto = consts.DiversificationAnalyst
	state.Analyses[consts.FeesAnalyst] = runVerdict(ctx, consts.StatusFees,
		feesSystemPrompt, describePortfolio(state))
	return state, nil
}

const diversificationSystemPrompt = `You are a diversification analyst. Judge whether the portfolio is
adequately diversified across asset classes, regions, and sectors for the
investor's strategy. Flag single-holding concentration above roughly 40%,
overlapping funds tracking the same index, and missing asset classes the
strategy calls for.

Reply with a single JSON object:
{"passed": true or false, "reasoning": "...", "advices": ["..."]}
advices must be empty when passed is true.`

func diversificationAnalystNode(ctx context.Context, state *models.AdvisorState) (*models.AdvisorState, error) {
	state.Goto = consts.AlignmentAnalyst
	state.Analyses[consts.DiversificationAnalyst] = runVerdict(ctx, consts.StatusDiversification,
		diversificationSystemPrompt, describePortfolio(state))
	return state, nil
}

const alignmentSystemPrompt = `You are an investment alignment analyst. Judge whether the portfolio
matches the declared strategy and the investor's preferences: asset class
weights near the strategy's target allocation, risk level consistent with the
risk profile, and horizon-appropriate instruments.

Reply with a single JSON object:
{"passed": true or false, "reasoning": "...", "advices": ["..."]}
advices must be empty when passed is true.`

func alignmentAnalystNode(ctx context.Context, state *models.AdvisorState) (*models.AdvisorState, error) {
	state.Goto = consts.PerformanceAnalyst
	state.Analyses[consts.AlignmentAnalyst] = runVerdict(ctx, consts.StatusAlignment,
		alignmentSystemPrompt, describePortfolio(state))
	return state, nil
}
