package dataflows

import (
	"testing"
	"time"
)

func TestBackoffSchedule(t *testing.T) {
	rc := RetryConfig{
		MaxAttempts: 5,
		BaseDelay:   1 * time.Second,
		MaxDelay:    4 * time.Second,
		Jitter:      false,
	}

	want := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		4 * time.Second, // capped
		4 * time.Second,
	}
	for attempt, expected := range want {
		if got := rc.Backoff(attempt); got != expected {
			t.Errorf("Backoff(%d) = %v, want %v", attempt, got, expected)
		}
	}
}

func TestBackoffJitterStaysBounded(t *testing.T) {
	rc := RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   1 * time.Second,
		MaxDelay:    30 * time.Second,
		Jitter:      true,
	}

	for i := 0; i < 100; i++ {
		got := rc.Backoff(1)
		if got < 2*time.Second || got > 2200*time.Millisecond {
			t.Fatalf("jittered Backoff(1) = %v, want within [2s, 2.2s]", got)
		}
	}
}

func TestValidateSymbol(t *testing.T) {
	if err := ValidateSymbol("spy"); err != nil {
		t.Errorf("ValidateSymbol(spy) = %v, want nil", err)
	}
	if err := ValidateSymbol(""); err == nil {
		t.Error("expected error for empty symbol")
	}
	if err := ValidateSymbol("TOOLONGSYMBOL"); err == nil {
		t.Error("expected error for oversized symbol")
	}
}

func TestNormalizeSymbol(t *testing.T) {
	if got := NormalizeSymbol("  vwce "); got != "VWCE" {
		t.Errorf("NormalizeSymbol = %q, want VWCE", got)
	}
}

func TestLookbackWindow(t *testing.T) {
	window := LookbackWindow(2)
	if !window.Start.Before(window.End) {
		t.Fatalf("window start %v not before end %v", window.Start, window.End)
	}
	days := window.End.Sub(window.Start).Hours() / 24
	if days < 729 || days > 732 {
		t.Errorf("two-year window spans %.0f days", days)
	}
}
