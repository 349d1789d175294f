package dataflows

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestPolygonClient(t *testing.T, handler http.HandlerFunc) *PolygonClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := testConfig()
	cfg.PolygonAPIKey = "test-key"
	cfg.CacheEnabled = false
	cfg.DataCacheDir = t.TempDir()

	pc := NewPolygonClient(cfg)
	pc.client.SetBaseURL(srv.URL)
	return pc
}

func TestPolygonDailyHistoryParsesBars(t *testing.T) {
	day := func(d int) int64 {
		return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC).UnixMilli()
	}
	pc := newTestPolygonClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("apiKey") != "test-key" {
			t.Errorf("missing apiKey query param")
		}
		if r.URL.Query().Get("adjusted") != "true" {
			t.Errorf("expected adjusted=true")
		}
		w.Header().Set("X-RateLimit-Remaining", "4")
		// Out of order on purpose; the client must sort ascending.
		fmt.Fprintf(w, `{"ticker":"SPY","resultsCount":2,"status":"OK","results":[
			{"v":1000,"o":101,"c":102,"h":103,"l":100,"t":%d},
			{"v":900,"o":100,"c":101,"h":102,"l":99,"t":%d}
		]}`, day(3), day(2))
	})

	bars, err := pc.DailyHistory(context.Background(), "spy",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("DailyHistory: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if !bars[0].Date.Before(bars[1].Date) {
		t.Error("bars not sorted ascending by date")
	}
	if got := bars[0].Close.InexactFloat64(); got != 101 {
		t.Errorf("first close = %v, want 101", got)
	}

	remaining, _, _ := RateLimits().Snapshot()
	if remaining != 4 {
		t.Errorf("rate limit remaining = %d, want 4", remaining)
	}
}

func TestPolygonDailyHistoryRateLimited(t *testing.T) {
	pc := newTestPolygonClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := pc.DailyHistory(context.Background(), "SPY",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestPolygonDailyHistoryRequiresAPIKey(t *testing.T) {
	cfg := testConfig()
	cfg.DataCacheDir = t.TempDir()
	pc := NewPolygonClient(cfg)

	_, err := pc.DailyHistory(context.Background(), "SPY",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	if err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestPolygonDailyHistoryRejectsBadSymbol(t *testing.T) {
	pc := newTestPolygonClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an invalid symbol")
	})

	_, err := pc.DailyHistory(context.Background(), "",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	if err == nil {
		t.Fatal("expected error for empty symbol")
	}
}
