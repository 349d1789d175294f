package consts

const (
	// 投资规划节点
	InvestmentAgent = "investment_agent"
	PortfolioAgent  = "portfolio_agent"

	// 分析师节点
	FeesAnalyst            = "fees_analyst"
	DiversificationAnalyst = "diversification_analyst"
	AlignmentAnalyst       = "alignment_analyst"
	PerformanceAnalyst     = "performance_analyst"

	Reporter = "reporter"
)

const (
	// Analysis status keys carried in Status.Key
	StatusFees            = "is_cost_efficient"
	StatusDiversification = "is_diversified"
	StatusAlignment       = "is_aligned"
	StatusPerformance     = "is_performing"
)
