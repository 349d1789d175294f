package cli

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"

	"etfadvisor/internal/config"
	"etfadvisor/internal/models"
)

func TestSaveRunResult(t *testing.T) {
	cfg := &config.Config{ResultsDir: t.TempDir()}

	state := models.NewAdvisorState(&models.PortfolioPreference{Goal: models.GoalRetirement}, "SPY", 2)
	state.Portfolio = &models.Portfolio{Name: "Core", Holdings: []models.Holding{{Symbol: "VTI", Weight: 100}}}
	state.Analyses["fees_analyst"] = &models.Analysis{
		Status: models.Status{Key: "is_cost_efficient", Value: true}, Reasoning: "cheap",
	}
	state.Approved = true
	state.CurrentRevision = 1
	state.Messages = append(state.Messages, schema.AssistantMessage("Final advisory report.", nil))

	path, err := SaveRunResult(cfg, state)
	if err != nil {
		t.Fatalf("SaveRunResult: %v", err)
	}
	if !strings.HasPrefix(path, cfg.ResultsDir) {
		t.Errorf("result written outside the results dir: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read result: %v", err)
	}
	var got RunResult
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("parse result: %v", err)
	}
	if !got.Approved || got.Revisions != 1 {
		t.Errorf("result = %+v", got)
	}
	if got.Report != "Final advisory report." {
		t.Errorf("report = %q", got.Report)
	}
	if got.Portfolio == nil || got.Portfolio.Name != "Core" {
		t.Errorf("portfolio not persisted: %+v", got.Portfolio)
	}
}
