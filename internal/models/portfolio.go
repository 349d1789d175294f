package models

// Holding is a single ETF position inside a portfolio. Weight is always a
// 0-100 percentage; fractional "0.4 means 40%" inputs are not accepted.
type Holding struct {
	Symbol     string  `json:"symbol"`
	Name       string  `json:"name"`
	ISIN       string  `json:"isin,omitempty"`
	AssetClass string  `json:"asset_class"`
	Weight     float64 `json:"weight"`
}

// Portfolio is the unit the analyst agents operate on.
type Portfolio struct {
	Name     string    `json:"name"`
	Holdings []Holding `json:"holdings"`
	Strategy *Strategy `json:"strategy,omitempty"`
}

// Symbols returns the ticker symbols of all holdings, in holding order.
func (p *Portfolio) Symbols() []string {
	symbols := make([]string, 0, len(p.Holdings))
	for _, h := range p.Holdings {
		symbols = append(symbols, h.Symbol)
	}
	return symbols
}

// TotalWeight sums the holding weights.
func (p *Portfolio) TotalWeight() float64 {
	total := 0.0
	for _, h := range p.Holdings {
		total += h.Weight
	}
	return total
}

// AssetAllocation is the strategy-level split across asset classes, in
// percentages.
type AssetAllocation struct {
	StocksPercentage      float64 `json:"stocks_percentage,omitempty"`
	BondsPercentage       float64 `json:"bonds_percentage,omitempty"`
	RealEstatePercentage  float64 `json:"real_estate_percentage,omitempty"`
	CommoditiesPercentage float64 `json:"commodities_percentage,omitempty"`
	CashPercentage        float64 `json:"cash_percentage,omitempty"`
}

// Strategy is the allocation strategy drafted by the investment agent.
type Strategy struct {
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	AssetAllocation AssetAllocation `json:"asset_allocation"`
	RiskTolerance   string          `json:"risk_tolerance"`
	TimeHorizon     string          `json:"time_horizon"`
	ExpectedReturns string          `json:"expected_returns"`
}
