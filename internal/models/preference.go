package models

type RiskProfile string

const (
	RiskUltraConservative RiskProfile = "Ultra Conservative"
	RiskConservative      RiskProfile = "Conservative"
	RiskModerate          RiskProfile = "Moderate"
	RiskModerateAggr      RiskProfile = "Moderate Aggressive"
	RiskAggressive        RiskProfile = "Aggressive"
	RiskUltraAggressive   RiskProfile = "Ultra Aggressive"
)

// IsAggressive reports whether the profile expects performance to beat the
// benchmark before a portfolio can be approved.
func (r RiskProfile) IsAggressive() bool {
	return r == RiskAggressive || r == RiskUltraAggressive
}

type InvestmentGoal string

const (
	GoalRetirement          InvestmentGoal = "Retirement"
	GoalWealthBuilding      InvestmentGoal = "Wealth Building"
	GoalIncomeGeneration    InvestmentGoal = "Income Generation"
	GoalCapitalPreservation InvestmentGoal = "Capital Preservation"
	GoalHousePurchase       InvestmentGoal = "House Purchase"
)

type InvestmentHorizon string

const (
	HorizonShortTerm    InvestmentHorizon = "Short Term (1-3 years)"
	HorizonMediumTerm   InvestmentHorizon = "Medium Term (3-7 years)"
	HorizonLongTerm     InvestmentHorizon = "Long Term (7-15 years)"
	HorizonVeryLongTerm InvestmentHorizon = "Very Long Term (15+ years)"
)

// PortfolioPreference is the questionnaire output that seeds the investment
// agent.
type PortfolioPreference struct {
	Goal                InvestmentGoal    `json:"goal"`
	RiskProfile         RiskProfile       `json:"risk_profile"`
	InvestmentHorizon   InvestmentHorizon `json:"investment_horizon"`
	Currency            string            `json:"currency"`
	InitialInvestment   float64           `json:"initial_investment"`
	Age                 int               `json:"age"`
	MonthlyContribution float64           `json:"monthly_contribution"`
	HasEmergencyFund    bool              `json:"has_emergency_fund"`
}
