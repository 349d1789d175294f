package graph

import (
	"context"

	"github.com/cloudwego/eino/compose"

	"etfadvisor/consts"
	"etfadvisor/internal/agents"
	"etfadvisor/internal/models"
)

func agentHandOff(ctx context.Context, state *models.AdvisorState) (next string, err error) {
	return state.Goto, nil
}

// NewAdvisorOrchestrator wires the advisory workflow: investment agent →
// portfolio agent → analyst chain → approval branch, with a bounded revision
// loop back into the portfolio agent.
func NewAdvisorOrchestrator(ctx context.Context, cl *ConditionalLogic) (compose.Runnable[*models.AdvisorState, *models.AdvisorState], error) {
	g := compose.NewGraph[*models.AdvisorState, *models.AdvisorState]()

	outMap := map[string]bool{
		consts.InvestmentAgent:        true,
		consts.PortfolioAgent:         true,
		consts.FeesAnalyst:            true,
		consts.DiversificationAnalyst: true,
		consts.AlignmentAnalyst:       true,
		consts.PerformanceAnalyst:     true,
		consts.Reporter:               true,
		compose.END:                   true,
	}

	_ = g.AddLambdaNode(consts.InvestmentAgent, agents.NewInvestmentAgentNode(), compose.WithNodeName(consts.InvestmentAgent))
	_ = g.AddLambdaNode(consts.PortfolioAgent, agents.NewPortfolioAgentNode(), compose.WithNodeName(consts.PortfolioAgent))
	_ = g.AddLambdaNode(consts.FeesAnalyst, agents.NewFeesAnalystNode(), compose.WithNodeName(consts.FeesAnalyst))
	_ = g.AddLambdaNode(consts.DiversificationAnalyst, agents.NewDiversificationAnalystNode(), compose.WithNodeName(consts.DiversificationAnalyst))
	_ = g.AddLambdaNode(consts.AlignmentAnalyst, agents.NewAlignmentAnalystNode(), compose.WithNodeName(consts.AlignmentAnalyst))
	_ = g.AddLambdaNode(consts.PerformanceAnalyst, agents.NewPerformanceAnalystNode(), compose.WithNodeName(consts.PerformanceAnalyst))
	_ = g.AddLambdaNode(consts.Reporter, agents.NewReporterNode(), compose.WithNodeName(consts.Reporter))

	// After the last analyst the conditional logic, not the node itself,
	// decides between approval and another revision round.
	decide := func(ctx context.Context, state *models.AdvisorState) (string, error) {
		if cl.ShouldRevise(state) {
			cl.ApplyRevision(state)
			return consts.PortfolioAgent, nil
		}
		state.Approved = cl.IsApproved(state)
		return consts.Reporter, nil
	}

	_ = g.AddBranch(consts.InvestmentAgent, compose.NewGraphBranch(agentHandOff, outMap))
	_ = g.AddBranch(consts.PortfolioAgent, compose.NewGraphBranch(agentHandOff, outMap))
	_ = g.AddBranch(consts.FeesAnalyst, compose.NewGraphBranch(agentHandOff, outMap))
	_ = g.AddBranch(consts.DiversificationAnalyst, compose.NewGraphBranch(agentHandOff, outMap))
	_ = g.AddBranch(consts.AlignmentAnalyst, compose.NewGraphBranch(agentHandOff, outMap))
	_ = g.AddBranch(consts.PerformanceAnalyst, compose.NewGraphBranch(decide, outMap))
	_ = g.AddBranch(consts.Reporter, compose.NewGraphBranch(agentHandOff, outMap))

	_ = g.AddEdge(compose.START, consts.InvestmentAgent)

	return g.Compile(ctx,
		compose.WithGraphName("ETFAdvisor"),
		compose.WithNodeTriggerMode(compose.AnyPredecessor),
	)
}
