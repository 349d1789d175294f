package agents

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino/schema"

	"etfadvisor/consts"
	"etfadvisor/internal/models"
)

const investmentSystemPrompt = `You are an investment planning agent for an ETF advisory service.

Given an investor's preferences, design an allocation strategy. Consider the
investment goal, risk profile, time horizon, age, and whether an emergency
fund exists. Younger investors with long horizons and aggressive profiles get
more equity; capital preservation and short horizons get more bonds and cash.

Reply with a single JSON object matching:
{
  "name": "...",
  "description": "...",
  "asset_allocation": {
    "stocks_percentage": 0,
    "bonds_percentage": 0,
    "real_estate_percentage": 0,
    "commodities_percentage": 0,
    "cash_percentage": 0
  },
  "risk_tolerance": "...",
  "time_horizon": "...",
  "expected_returns": "..."
}
The allocation percentages must sum to 100.`

func investmentAgentNode(ctx context.Context, state *models.AdvisorState) (*models.AdvisorState, error) {
	state.Goto = consts.PortfolioAgent
	prefs := state.Preferences
	if prefs == nil {
		return nil, fmt.Errorf("investment agent requires preferences")
	}

	userPrompt := fmt.Sprintf(`Investor preferences:
- Goal: %s
- Risk profile: %s
- Investment horizon: %s
- Age: %d
- Initial investment: %.2f %s
- Monthly contribution: %.2f %s
- Emergency fund in place: %t

Design the allocation strategy.`,
		prefs.Goal, prefs.RiskProfile, prefs.InvestmentHorizon, prefs.Age,
		prefs.InitialInvestment, prefs.Currency, prefs.MonthlyContribution, prefs.Currency,
		prefs.HasEmergencyFund)

	reply, err := ChatModel.Generate(ctx, []*schema.Message{
		schema.SystemMessage(investmentSystemPrompt),
		schema.UserMessage(userPrompt),
	})
	if err != nil {
		return nil, fmt.Errorf("investment agent: %w", err)
	}

	var strategy models.Strategy
	if err := decodeJSON(reply.Content, &strategy); err != nil {
		return nil, fmt.Errorf("investment agent: %w", err)
	}
	state.Strategy = &strategy
	state.Messages = append(state.Messages, reply)
	log.Printf("[InvestmentAgent] strategy %q drafted", strategy.Name)
	return state, nil
}
