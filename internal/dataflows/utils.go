package dataflows

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"
)

// RetryConfig configures the fetch retry behavior.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Jitter      bool
}

// DefaultRetryConfig returns sensible retry defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   1 * time.Second,
		MaxDelay:    30 * time.Second,
		Jitter:      true,
	}
}

// Backoff returns the delay to sleep after the given zero-based attempt:
// BaseDelay doubled per attempt, capped at MaxDelay, with optional jitter of
// up to 10%.
func (rc RetryConfig) Backoff(attempt int) time.Duration {
	delay := time.Duration(float64(rc.BaseDelay) * math.Pow(2, float64(attempt)))
	if delay > rc.MaxDelay {
		delay = rc.MaxDelay
	}
	if rc.Jitter {
		delay += time.Duration(rand.Int63n(int64(delay)/10 + 1))
	}
	return delay
}

// ValidateSymbol checks if a ticker symbol is in a valid format.
func ValidateSymbol(symbol string) error {
	symbol = strings.TrimSpace(strings.ToUpper(symbol))
	if len(symbol) == 0 {
		return fmt.Errorf("symbol cannot be empty")
	}
	if len(symbol) > 10 {
		return fmt.Errorf("symbol too long: %s", symbol)
	}
	return nil
}

// NormalizeSymbol converts a symbol to standard format.
func NormalizeSymbol(symbol string) string {
	return strings.TrimSpace(strings.ToUpper(symbol))
}

// FormatDateRange creates a human-readable date range string.
func FormatDateRange(start, end time.Time) string {
	return fmt.Sprintf("%s to %s",
		start.Format("2006-01-02"),
		end.Format("2006-01-02"))
}
