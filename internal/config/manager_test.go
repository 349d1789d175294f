package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestManagerCreatesAndUpdates(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(WithConfigDir(dir))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	path := filepath.Join(dir, "config.json")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not created: %v", err)
	}

	cfg := mgr.Get()
	cfg.DefaultBenchmark = "VT"
	cfg.LookbackYears = 3

	if err := mgr.Update(cfg); err != nil {
		t.Fatalf("Update: %v", err)
	}

	updated := mgr.Get()
	if updated.DefaultBenchmark != "VT" || updated.LookbackYears != 3 {
		t.Fatalf("update not applied: %+v", updated)
	}
}

func TestManagerRejectsInvalidUpdate(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(WithConfigDir(dir))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	cfg := mgr.Get()
	cfg.DataProvider = "bloomberg"
	if err := mgr.Update(cfg); err == nil {
		t.Fatal("expected invalid provider to be rejected")
	}
	if mgr.Get().DataProvider == "bloomberg" {
		t.Fatal("invalid config must not be applied")
	}
}

func TestManagerWatchReloads(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(WithConfigDir(dir), WithDebounce(50*time.Millisecond))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan Config, 1)
	if err := mgr.Watch(ctx, func(cfg Config) {
		reloaded <- cfg
	}); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	cfg := mgr.Get()
	cfg.DefaultBenchmark = "URTH"
	if err := writeConfigFile(mgr.Path(), cfg); err != nil {
		t.Fatalf("writeConfigFile: %v", err)
	}

	select {
	case got := <-reloaded:
		if got.DefaultBenchmark != "URTH" {
			t.Fatalf("expected reloaded benchmark URTH, got %s", got.DefaultBenchmark)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not fire on config change")
	}
}
