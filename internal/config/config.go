package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ProjectDir   string `json:"project_dir"`
	ResultsDir   string `json:"results_dir"`
	DataDir      string `json:"data_dir"`
	DataCacheDir string `json:"data_cache_dir"`

	// Market data configuration
	DataProvider  string `json:"data_provider"` // "polygon" or "yahoo"
	PolygonAPIKey string `json:"polygon_api_key"`
	CacheEnabled  bool   `json:"cache_enabled"`

	// Fetch policy. The vendor enforces a per-minute call budget, so
	// FetchWorkers is a tunable ceiling rather than a hard constant.
	FetchWorkers   int           `json:"fetch_workers"`
	MaxRetries     int           `json:"max_retries"`
	RetryBaseDelay time.Duration `json:"retry_base_delay"`
	RetryMaxDelay  time.Duration `json:"retry_max_delay"`
	FetchTimeout   time.Duration `json:"fetch_timeout"`

	// Analysis configuration
	LookbackYears      int               `json:"lookback_years"`
	RiskFreeRate       float64           `json:"risk_free_rate"`
	DefaultBenchmark   string            `json:"default_benchmark"`
	BenchmarkFallbacks map[string]string `json:"benchmark_fallbacks"`
	AllowPartialData   bool              `json:"allow_partial_data"`

	// LLM configuration
	LLMProvider    string `json:"llm_provider"` // "openai" or "deepseek"
	DeepThinkLLM   string `json:"deep_think_llm"`
	QuickThinkLLM  string `json:"quick_think_llm"`
	BackendURL     string `json:"backend_url"`
	OpenAIAPIKey   string `json:"openai_api_key"`
	DeepSeekAPIKey string `json:"deepseek_api_key"`

	MaxRevisionRounds int  `json:"max_revision_rounds"`
	Debug             bool `json:"debug"`

	// Eino Debug configuration
	EinoDebugEnabled bool `json:"eino_debug_enabled"`
	EinoDebugPort    int  `json:"eino_debug_port"`
}

func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()
	return DefaultConfigWithRoot(currentDir)
}

func DefaultConfigWithRoot(root string) *Config {
	cfg := &Config{
		ProjectDir:   root,
		ResultsDir:   filepath.Join(root, "results"),
		DataDir:      filepath.Join(root, "data"),
		DataCacheDir: filepath.Join(root, "data", "cache"),

		DataProvider: "polygon",
		CacheEnabled: true,

		FetchWorkers:   5,
		MaxRetries:     3,
		RetryBaseDelay: 1 * time.Second,
		RetryMaxDelay:  30 * time.Second,
		FetchTimeout:   10 * time.Second,

		LookbackYears:    2,
		RiskFreeRate:     0.02,
		DefaultBenchmark: "ACWI",
		BenchmarkFallbacks: map[string]string{
			"ACWI": "SPY",
			"VT":   "VTI",
			"URTH": "SPY",
		},
		AllowPartialData: true,

		LLMProvider:   "openai",
		DeepThinkLLM:  "gpt-4o",
		QuickThinkLLM: "gpt-4o-mini",
		BackendURL:    "",

		MaxRevisionRounds: 3,
		Debug:             false,

		EinoDebugEnabled: false,
		EinoDebugPort:    52538,
	}

	// Load environment variables from .env file
	_ = godotenv.Load()
	cfg.loadFromEnv()

	return cfg
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("DATA_DIR"); val != "" {
		c.DataDir = val
	}
	if val := os.Getenv("DATA_CACHE_DIR"); val != "" {
		c.DataCacheDir = val
	}
	if val := os.Getenv("RESULTS_DIR"); val != "" {
		c.ResultsDir = val
	}

	if val := os.Getenv("DATA_PROVIDER"); val != "" {
		c.DataProvider = val
	}
	if val := os.Getenv("POLYGON_API_KEY"); val != "" {
		c.PolygonAPIKey = val
	}
	if val := os.Getenv("CACHE_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.CacheEnabled = enabled
		}
	}

	if val := os.Getenv("FETCH_WORKERS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.FetchWorkers = v
		}
	}
	if val := os.Getenv("MAX_RETRIES"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.MaxRetries = v
		}
	}
	if val := os.Getenv("FETCH_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.FetchTimeout = d
		}
	}

	if val := os.Getenv("LOOKBACK_YEARS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.LookbackYears = v
		}
	}
	if val := os.Getenv("RISK_FREE_RATE"); val != "" {
		if v, err := strconv.ParseFloat(val, 64); err == nil {
			c.RiskFreeRate = v
		}
	}
	if val := os.Getenv("DEFAULT_BENCHMARK"); val != "" {
		c.DefaultBenchmark = val
	}
	if val := os.Getenv("ALLOW_PARTIAL_DATA"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.AllowPartialData = enabled
		}
	}

	if val := os.Getenv("LLM_PROVIDER"); val != "" {
		c.LLMProvider = val
	}
	if val := os.Getenv("DEEP_THINK_LLM"); val != "" {
		c.DeepThinkLLM = val
	}
	if val := os.Getenv("QUICK_THINK_LLM"); val != "" {
		c.QuickThinkLLM = val
	}
	if val := os.Getenv("BACKEND_URL"); val != "" {
		c.BackendURL = val
	}
	if val := os.Getenv("OPENAI_API_KEY"); val != "" {
		c.OpenAIAPIKey = val
	}
	if val := os.Getenv("DEEPSEEK_API_KEY"); val != "" {
		c.DeepSeekAPIKey = val
	}

	if val := os.Getenv("MAX_REVISION_ROUNDS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.MaxRevisionRounds = v
		}
	}
	if val := os.Getenv("ETFADVISOR_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug = enabled
		}
	}
	if val := os.Getenv("EINO_DEBUG_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.EinoDebugEnabled = enabled
		}
	}
	if val := os.Getenv("EINO_DEBUG_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.EinoDebugPort = port
		}
	}
}

func (c *Config) Validate() error {
	if c.DataProvider != "polygon" && c.DataProvider != "yahoo" {
		return fmt.Errorf("unknown data provider: %s", c.DataProvider)
	}
	if c.FetchWorkers < 1 {
		return fmt.Errorf("fetch_workers must be at least 1")
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max_retries must be at least 1")
	}
	if c.LookbackYears < 1 {
		return fmt.Errorf("lookback_years must be at least 1")
	}
	if c.LLMProvider != "openai" && c.LLMProvider != "deepseek" {
		return fmt.Errorf("unknown llm provider: %s", c.LLMProvider)
	}
	return nil
}

func (c *Config) EnsureDirectories() error {
	dirs := []string{c.ProjectDir, c.ResultsDir, c.DataDir, c.DataCacheDir}
	for _, dir := range dirs {
		path := strings.TrimSpace(dir)
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", path, err)
		}
	}
	return nil
}
