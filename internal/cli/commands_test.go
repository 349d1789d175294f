package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func writePortfolio(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "portfolio.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write portfolio file: %v", err)
	}
	return path
}

func TestLoadPortfolioFile(t *testing.T) {
	path := writePortfolio(t, `{
		"name": "Core",
		"holdings": [
			{"symbol": "VTI", "name": "Total Market", "asset_class": "stocks", "weight": 60},
			{"symbol": "AGG", "name": "Aggregate Bond", "asset_class": "bonds", "weight": 40}
		]
	}`)

	p, err := LoadPortfolioFile(path)
	if err != nil {
		t.Fatalf("LoadPortfolioFile: %v", err)
	}
	if p.Name != "Core" || len(p.Holdings) != 2 {
		t.Errorf("portfolio = %+v", p)
	}
	if p.Holdings[0].Symbol != "VTI" || p.Holdings[0].Weight != 60 {
		t.Errorf("first holding = %+v", p.Holdings[0])
	}
}

func TestLoadPortfolioFileErrors(t *testing.T) {
	if _, err := LoadPortfolioFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected an error for a missing file")
	}
	if _, err := LoadPortfolioFile(writePortfolio(t, "{not json")); err == nil {
		t.Error("expected an error for malformed JSON")
	}
	if _, err := LoadPortfolioFile(writePortfolio(t, `{"name": "Empty", "holdings": []}`)); err == nil {
		t.Error("expected an error for a portfolio without holdings")
	}
}

func TestRootCommandWiring(t *testing.T) {
	root := NewRootCmd()
	if root.Use != "etfadvisor" {
		t.Errorf("root use = %q", root.Use)
	}
	for _, name := range []string{"advise", "analyze", "config", "version"} {
		found := false
		for _, c := range root.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
	if root.PersistentFlags().Lookup("debug") == nil {
		t.Error("missing --debug flag")
	}
}
