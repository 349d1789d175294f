package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"etfadvisor/internal/models"
)

// PromptForPreferences walks the investor questionnaire and returns the
// preference set that seeds the investment agent.
func PromptForPreferences() (*models.PortfolioPreference, error) {
	prefs := &models.PortfolioPreference{}

	var goal string
	if err := survey.AskOne(&survey.Select{
		Message: "What is your primary investment goal?",
		Options: []string{
			string(models.GoalRetirement),
			string(models.GoalWealthBuilding),
			string(models.GoalIncomeGeneration),
			string(models.GoalCapitalPreservation),
			string(models.GoalHousePurchase),
		},
		Default: string(models.GoalWealthBuilding),
	}, &goal); err != nil {
		return nil, err
	}
	prefs.Goal = models.InvestmentGoal(goal)

	var risk string
	if err := survey.AskOne(&survey.Select{
		Message: "How would you describe your risk tolerance?",
		Options: []string{
			string(models.RiskUltraConservative),
			string(models.RiskConservative),
			string(models.RiskModerate),
			string(models.RiskModerateAggr),
			string(models.RiskAggressive),
			string(models.RiskUltraAggressive),
		},
		Default: string(models.RiskModerate),
		Help:    "Aggressive profiles additionally require the portfolio to beat its benchmark.",
	}, &risk); err != nil {
		return nil, err
	}
	prefs.RiskProfile = models.RiskProfile(risk)

	var horizon string
	if err := survey.AskOne(&survey.Select{
		Message: "What is your investment horizon?",
		Options: []string{
			string(models.HorizonShortTerm),
			string(models.HorizonMediumTerm),
			string(models.HorizonLongTerm),
			string(models.HorizonVeryLongTerm),
		},
		Default: string(models.HorizonLongTerm),
	}, &horizon); err != nil {
		return nil, err
	}
	prefs.InvestmentHorizon = models.InvestmentHorizon(horizon)

	if err := survey.AskOne(&survey.Input{
		Message: "What is your age?",
	}, &prefs.Age, survey.WithValidator(func(val interface{}) error {
		n, err := strconv.Atoi(strings.TrimSpace(val.(string)))
		if err != nil || n < 18 || n > 100 {
			return fmt.Errorf("enter an age between 18 and 100")
		}
		return nil
	})); err != nil {
		return nil, err
	}

	if err := survey.AskOne(&survey.Input{
		Message: "Initial investment amount:",
		Default: "10000",
	}, &prefs.InitialInvestment, survey.WithValidator(positiveAmount)); err != nil {
		return nil, err
	}

	if err := survey.AskOne(&survey.Input{
		Message: "Monthly contribution (0 for none):",
		Default: "0",
	}, &prefs.MonthlyContribution, survey.WithValidator(nonNegativeAmount)); err != nil {
		return nil, err
	}

	if err := survey.AskOne(&survey.Select{
		Message: "Currency:",
		Options: []string{"USD", "EUR", "GBP", "CHF"},
		Default: "USD",
	}, &prefs.Currency); err != nil {
		return nil, err
	}

	if err := survey.AskOne(&survey.Confirm{
		Message: "Do you have an emergency fund covering 3-6 months of expenses?",
		Default: true,
	}, &prefs.HasEmergencyFund); err != nil {
		return nil, err
	}

	return prefs, nil
}

func positiveAmount(val interface{}) error {
	n, err := strconv.ParseFloat(strings.TrimSpace(val.(string)), 64)
	if err != nil || n <= 0 {
		return fmt.Errorf("enter a positive amount")
	}
	return nil
}

func nonNegativeAmount(val interface{}) error {
	n, err := strconv.ParseFloat(strings.TrimSpace(val.(string)), 64)
	if err != nil || n < 0 {
		return fmt.Errorf("enter a non-negative amount")
	}
	return nil
}

// PromptForConfirmation shows the collected preferences and asks to proceed.
func PromptForConfirmation(prefs *models.PortfolioPreference) (bool, error) {
	fmt.Printf(`
Investor profile summary:
  Goal:                 %s
  Risk profile:         %s
  Horizon:              %s
  Age:                  %d
  Initial investment:   %.2f %s
  Monthly contribution: %.2f %s
  Emergency fund:       %t

`,
		prefs.Goal, prefs.RiskProfile, prefs.InvestmentHorizon, prefs.Age,
		prefs.InitialInvestment, prefs.Currency,
		prefs.MonthlyContribution, prefs.Currency,
		prefs.HasEmergencyFund)

	var confirmed bool
	err := survey.AskOne(&survey.Confirm{
		Message: "Run the advisory workflow with this profile?",
		Default: true,
	}, &confirmed)
	return confirmed, err
}
