package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"etfadvisor/internal/agents"
	"etfadvisor/internal/config"
	"etfadvisor/internal/display"
	"etfadvisor/internal/graph"
	"etfadvisor/internal/models"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cfg := config.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "etfadvisor",
		Short: "ETF Advisor - AI-powered portfolio advisory",
		Long: `ETF Advisor builds and reviews ETF portfolios with a team of LLM agents:
an investment planner, a portfolio constructor, and cost, diversification,
alignment, and performance analysts backed by real market data.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				cfg.Debug = true
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("failed to create directories: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdviseCommand(cfg)
		},
	}

	rootCmd.AddCommand(newAdviseCmd(cfg))
	rootCmd.AddCommand(newAnalyzeCmd(cfg))
	rootCmd.AddCommand(newConfigCmd(cfg))
	rootCmd.AddCommand(newVersionCmd())

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug mode")

	return rootCmd
}

func newAdviseCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "advise",
		Short: "Run the full advisory workflow interactively",
		Long: `Walk through the investor questionnaire, then let the agent team design
a strategy, build an ETF portfolio, and review it until approved.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdviseCommand(cfg)
		},
	}
}

func newAnalyzeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [PORTFOLIO_FILE]",
		Short: "Run the performance analysis for an existing portfolio",
		Long: `Analyze the historical performance of a portfolio defined in a JSON file
against a benchmark. Example: etfadvisor analyze my_portfolio.json --benchmark=ACWI`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			benchmark, _ := cmd.Flags().GetString("benchmark")
			return runAnalyzeCommand(cfg, args[0], benchmark)
		},
	}
	cmd.Flags().String("benchmark", "", "Benchmark ticker (config default if not provided)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("ETF Advisor v1.0.0")
			fmt.Println("AI-powered ETF portfolio advisory")
		},
	}
}

func newConfigCmd(cfg *config.Config) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Run: func(cmd *cobra.Command, args []string) {
			showConfig(cfg)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and dependencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateConfig(cfg)
		},
	})

	return configCmd
}

// runAdviseCommand executes the full advisory workflow.
func runAdviseCommand(cfg *config.Config) error {
	ctx := context.Background()

	display.WelcomeBanner()

	prefs, err := PromptForPreferences()
	if err != nil {
		return err
	}
	confirmed, err := PromptForConfirmation(prefs)
	if err != nil {
		return err
	}
	if !confirmed {
		fmt.Println("Aborted.")
		return nil
	}

	advisor, err := graph.NewAdvisorGraph(ctx, cfg.Debug, cfg)
	if err != nil {
		return err
	}
	if cfg.EinoDebugEnabled {
		if err := advisor.StartDebugServer(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: debug server not started: %v\n", err)
		}
	}

	fmt.Println("\nRunning the advisory workflow, this can take a minute...")
	state, err := advisor.Propagate(ctx, prefs)
	if err != nil {
		return err
	}

	display.AdvisoryResult(state)

	if path, err := SaveRunResult(cfg, state); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not save run result: %v\n", err)
	} else {
		fmt.Printf("\nResults saved to %s\n", path)
	}
	return nil
}

// runAnalyzeCommand executes the standalone performance analysis.
func runAnalyzeCommand(cfg *config.Config, portfolioPath, benchmark string) error {
	ctx := context.Background()

	portfolio, err := LoadPortfolioFile(portfolioPath)
	if err != nil {
		return err
	}
	if benchmark == "" {
		benchmark = cfg.DefaultBenchmark
	}

	if err := agents.InitChatModel(ctx, cfg); err != nil {
		return err
	}
	if err := agents.InitAnalyzer(cfg); err != nil {
		return err
	}

	fmt.Printf("Analyzing %q against %s...\n", portfolio.Name, benchmark)
	verdict, metrics := agents.AnalyzePortfolioPerformance(ctx, portfolio, benchmark, portfolio.Strategy)

	display.PerformanceResult(verdict, metrics)
	return nil
}

// LoadPortfolioFile reads a portfolio definition from a JSON file.
func LoadPortfolioFile(path string) (*models.Portfolio, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read portfolio file: %w", err)
	}
	var portfolio models.Portfolio
	if err := json.Unmarshal(data, &portfolio); err != nil {
		return nil, fmt.Errorf("parse portfolio file: %w", err)
	}
	if len(portfolio.Holdings) == 0 {
		return nil, fmt.Errorf("portfolio file %s has no holdings", path)
	}
	return &portfolio, nil
}

func showConfig(cfg *config.Config) {
	fmt.Println("Current ETF Advisor configuration:")
	fmt.Println("═══════════════════════════════════════")
	fmt.Printf("Project Directory:    %s\n", cfg.ProjectDir)
	fmt.Printf("Results Directory:    %s\n", cfg.ResultsDir)
	fmt.Printf("Data Directory:       %s\n", cfg.DataDir)
	fmt.Printf("Cache Directory:      %s\n", cfg.DataCacheDir)
	fmt.Println()
	fmt.Printf("Data Provider:        %s\n", cfg.DataProvider)
	fmt.Printf("Default Benchmark:    %s\n", cfg.DefaultBenchmark)
	fmt.Printf("Lookback Years:       %d\n", cfg.LookbackYears)
	fmt.Printf("Risk-Free Rate:       %.2f%%\n", cfg.RiskFreeRate*100)
	fmt.Printf("Fetch Workers:        %d\n", cfg.FetchWorkers)
	fmt.Printf("Allow Partial Data:   %t\n", cfg.AllowPartialData)
	fmt.Println()
	fmt.Printf("LLM Provider:         %s\n", cfg.LLMProvider)
	fmt.Printf("Deep Think Model:     %s\n", cfg.DeepThinkLLM)
	fmt.Printf("Quick Think Model:    %s\n", cfg.QuickThinkLLM)
	fmt.Printf("Backend URL:          %s\n", cfg.BackendURL)
	fmt.Println()
	fmt.Printf("Max Revision Rounds:  %d\n", cfg.MaxRevisionRounds)
	fmt.Printf("Cache Enabled:        %t\n", cfg.CacheEnabled)
	fmt.Printf("Debug Mode:           %t\n", cfg.Debug)
	fmt.Printf("Eino Debug:           %t\n", cfg.EinoDebugEnabled)
	if cfg.EinoDebugEnabled {
		fmt.Printf("Eino Debug Port:      %d\n", cfg.EinoDebugPort)
	}
}

func validateConfig(cfg *config.Config) error {
	fmt.Println("Validating ETF Advisor configuration...")
	fmt.Println("═══════════════════════════════════════")

	fmt.Print("Checking directories... ")
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Println("failed")
		return fmt.Errorf("directory validation failed: %w", err)
	}
	fmt.Println("ok")

	fmt.Print("Checking configuration values... ")
	if err := cfg.Validate(); err != nil {
		fmt.Println("failed")
		return err
	}
	fmt.Println("ok")

	fmt.Print("Checking API keys... ")
	var warnings []string
	if cfg.DataProvider == "polygon" && cfg.PolygonAPIKey == "" {
		warnings = append(warnings, "Polygon API key not configured (set POLYGON_API_KEY)")
	}
	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			warnings = append(warnings, "OpenAI API key not configured (set OPENAI_API_KEY)")
		}
	case "deepseek":
		if cfg.DeepSeekAPIKey == "" {
			warnings = append(warnings, "DeepSeek API key not configured (set DEEPSEEK_API_KEY)")
		}
	}
	if len(warnings) > 0 {
		fmt.Println("warnings")
		for _, w := range warnings {
			fmt.Printf("  - %s\n", w)
		}
		fmt.Println("\nSome features may be limited without proper API configuration.")
	} else {
		fmt.Println("ok")
	}

	return nil
}
