package dataflows

import (
	"context"
	"log"
	"time"

	"etfadvisor/internal/config"
)

// HistoryFetcher wraps a HistoryProvider with the retry policy. It never
// returns an error: a symbol whose retries are exhausted yields an empty
// history, and the caller decides what that means.
type HistoryFetcher struct {
	provider HistoryProvider
	retry    RetryConfig
	timeout  time.Duration
	sleep    func(time.Duration)
}

// NewHistoryFetcher builds a fetcher from config.
func NewHistoryFetcher(provider HistoryProvider, cfg *config.Config) *HistoryFetcher {
	return &HistoryFetcher{
		provider: provider,
		retry: RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   cfg.RetryBaseDelay,
			MaxDelay:    cfg.RetryMaxDelay,
			Jitter:      true,
		},
		timeout: cfg.FetchTimeout,
		sleep:   time.Sleep,
	}
}

// Fetch retrieves the daily history for one symbol. Vendor errors, per-call
// timeouts, and transiently empty responses are all retried with exponential
// backoff; exhaustion returns an empty slice.
func (f *HistoryFetcher) Fetch(ctx context.Context, symbol string, start, end time.Time) []PriceBar {
	for attempt := 0; attempt < f.retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			f.sleep(f.retry.Backoff(attempt - 1))
		}

		attemptCtx, cancel := context.WithTimeout(ctx, f.timeout)
		bars, err := f.provider.DailyHistory(attemptCtx, symbol, start, end)
		cancel()

		if err != nil {
			log.Printf("[Fetcher] attempt %d/%d for %s failed: %v",
				attempt+1, f.retry.MaxAttempts, symbol, err)
			continue
		}
		if len(bars) == 0 {
			// The vendor sometimes returns an empty result transiently.
			log.Printf("[Fetcher] attempt %d/%d for %s returned no data",
				attempt+1, f.retry.MaxAttempts, symbol)
			continue
		}
		return bars
	}

	log.Printf("[Fetcher] giving up on %s after %d attempts", symbol, f.retry.MaxAttempts)
	return nil
}
