package dataflows

import (
	"fmt"

	"etfadvisor/internal/config"
)

// NewProvider selects the vendor client named by the config.
func NewProvider(cfg *config.Config) (HistoryProvider, error) {
	switch cfg.DataProvider {
	case "polygon":
		return NewPolygonClient(cfg), nil
	case "yahoo":
		return NewYahooClient(cfg), nil
	default:
		return nil, fmt.Errorf("unknown data provider: %s", cfg.DataProvider)
	}
}
