package dataflows

import (
	"context"
	"sync"
	"time"

	"etfadvisor/internal/config"
)

// ConcurrentFetcher fans one HistoryFetcher out over a symbol set with a
// bounded worker pool. Symbols that yield no data are simply absent from the
// result; one symbol's failure never aborts the others.
type ConcurrentFetcher struct {
	fetcher *HistoryFetcher
	workers int
}

// NewConcurrentFetcher creates a concurrent fetcher with the configured pool
// width.
func NewConcurrentFetcher(fetcher *HistoryFetcher, cfg *config.Config) *ConcurrentFetcher {
	workers := cfg.FetchWorkers
	if workers < 1 {
		workers = 1
	}
	return &ConcurrentFetcher{
		fetcher: fetcher,
		workers: workers,
	}
}

// FetchAll fetches every symbol concurrently and returns a map containing
// only symbols with non-empty histories. It always waits for all submitted
// fetches before returning; iteration order of the result is unspecified.
func (cf *ConcurrentFetcher) FetchAll(ctx context.Context, symbols []string, start, end time.Time) map[string][]PriceBar {
	histories := make(map[string][]PriceBar, len(symbols))

	seen := make(map[string]bool, len(symbols))
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, cf.workers)

	for _, symbol := range symbols {
		symbol = NormalizeSymbol(symbol)
		if symbol == "" || seen[symbol] {
			continue
		}
		seen[symbol] = true

		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			bars := cf.fetcher.Fetch(ctx, symbol, start, end)
			if len(bars) == 0 {
				return
			}

			mu.Lock()
			histories[symbol] = bars
			mu.Unlock()
		}(symbol)
	}

	wg.Wait()
	return histories
}
