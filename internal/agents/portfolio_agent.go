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

const portfolioSystemPrompt = `You are a portfolio construction agent for an ETF advisory service.

Given an allocation strategy, propose a concrete ETF portfolio: 3 to 8 broad,
liquid, low-cost ETFs (US-listed tickers) whose combined weights implement
the strategy's asset allocation. Weights are percentages and must sum to 100.

Reply with a single JSON object matching:
{
  "name": "...",
  "holdings": [
    {"symbol": "...", "name": "...", "asset_class": "...", "weight": 0}
  ]
}`

func portfolioAgentNode(ctx context.Context, state *models.AdvisorState) (*models.AdvisorState, error) {
	state.Goto = consts.FeesAnalyst
	if state.Strategy == nil {
		return nil, fmt.Errorf("portfolio agent requires a strategy")
	}

	a := state.Strategy.AssetAllocation
	userPrompt := fmt.Sprintf(`Strategy %q: %s
Target allocation: stocks %.0f%%, bonds %.0f%%, real estate %.0f%%, commodities %.0f%%, cash %.0f%%
Risk tolerance: %s, time horizon: %s`,
		state.Strategy.Name, state.Strategy.Description,
		a.StocksPercentage, a.BondsPercentage, a.RealEstatePercentage,
		a.CommoditiesPercentage, a.CashPercentage,
		state.Strategy.RiskTolerance, state.Strategy.TimeHorizon)

	// Revision runs carry the failed analysts' advices back into the prompt.
	if len(state.RevisionFeedback) > 0 {
		userPrompt += "\n\nThe previous portfolio was rejected. Address this feedback:\n- " +
			strings.Join(state.RevisionFeedback, "\n- ")
	}

	reply, err := ChatModel.Generate(ctx, []*schema.Message{
		schema.SystemMessage(portfolioSystemPrompt),
		schema.UserMessage(userPrompt),
	})
	if err != nil {
		return nil, fmt.Errorf("portfolio agent: %w", err)
	}

	var portfolio models.Portfolio
	if err := decodeJSON(reply.Content, &portfolio); err != nil {
		return nil, fmt.Errorf("portfolio agent: %w", err)
	}
	if len(portfolio.Holdings) == 0 {
		return nil, fmt.Errorf("portfolio agent proposed no holdings")
	}
	portfolio.Strategy = state.Strategy
	state.Portfolio = &portfolio
	state.Messages = append(state.Messages, reply)
	log.Printf("[PortfolioAgent] proposed %d holdings (revision %d)",
		len(portfolio.Holdings), state.CurrentRevision)
	return state, nil
}
