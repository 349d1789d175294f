package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"etfadvisor/internal/config"
	"etfadvisor/internal/models"
)

// RunResult is the persisted record of one advisory run.
type RunResult struct {
	Timestamp   time.Time                   `json:"timestamp"`
	Preferences *models.PortfolioPreference `json:"preferences"`
	Strategy    *models.Strategy            `json:"strategy"`
	Portfolio   *models.Portfolio           `json:"portfolio"`
	Analyses    map[string]*models.Analysis `json:"analyses"`
	Approved    bool                        `json:"approved"`
	Revisions   int                         `json:"revisions"`
	Report      string                      `json:"report"`
}

// SaveRunResult writes the final advisory state into the results directory
// and returns the file path.
func SaveRunResult(cfg *config.Config, state *models.AdvisorState) (string, error) {
	result := RunResult{
		Timestamp:   time.Now(),
		Preferences: state.Preferences,
		Strategy:    state.Strategy,
		Portfolio:   state.Portfolio,
		Analyses:    state.Analyses,
		Approved:    state.Approved,
		Revisions:   state.CurrentRevision,
	}
	if n := len(state.Messages); n > 0 {
		result.Report = state.Messages[n-1].Content
	}

	if err := os.MkdirAll(cfg.ResultsDir, 0o755); err != nil {
		return "", fmt.Errorf("create results dir: %w", err)
	}

	path := filepath.Join(cfg.ResultsDir,
		fmt.Sprintf("advisory_%s.json", result.Timestamp.Format("20060102_150405")))
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode run result: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write run result: %w", err)
	}
	return path, nil
}
