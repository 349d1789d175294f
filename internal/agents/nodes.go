package agents

import (
	"github.com/cloudwego/eino/compose"
)

// Node constructors consumed by the graph builder.

func NewInvestmentAgentNode() *compose.Lambda {
	return compose.InvokableLambda(investmentAgentNode)
}

func NewPortfolioAgentNode() *compose.Lambda {
	return compose.InvokableLambda(portfolioAgentNode)
}

func NewFeesAnalystNode() *compose.Lambda {
	return compose.InvokableLambda(feesAnalystNode)
}

func NewDiversificationAnalystNode() *compose.Lambda {
	return compose.InvokableLambda(diversificationAnalystNode)
}

func NewAlignmentAnalystNode() *compose.Lambda {
	return compose.InvokableLambda(alignmentAnalystNode)
}

func NewPerformanceAnalystNode() *compose.Lambda {
	return compose.InvokableLambda(performanceAnalystNode)
}

func NewReporterNode() *compose.Lambda {
	return compose.InvokableLambda(reporterNode)
}
