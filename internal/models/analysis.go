package models

import (
	"sort"
	"strings"
)

// Status is a single boolean verdict keyed by the check that produced it,
// e.g. {Key: "is_performing", Value: false}.
type Status struct {
	Key   string `json:"key"`
	Value bool   `json:"value"`
}

// Analysis is the shape every analyst agent must return, including on
// failure paths. Advices is empty when the status is positive.
type Analysis struct {
	Status    Status   `json:"status"`
	Reasoning string   `json:"reasoning"`
	Advices   []string `json:"advices"`
}

// DataQualityWarning describes tickers that were requested but could not be
// used, or a benchmark substitution. It is informational and never blocks
// the pipeline on its own.
type DataQualityWarning struct {
	Message         string   `json:"message"`
	AffectedTickers []string `json:"affected_tickers"`
}

// NewDataQualityWarning builds a warning with a deduplicated, sorted ticker
// list.
func NewDataQualityWarning(message string, tickers ...string) *DataQualityWarning {
	w := &DataQualityWarning{Message: message}
	seen := make(map[string]bool, len(tickers))
	for _, t := range tickers {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		w.AffectedTickers = append(w.AffectedTickers, t)
	}
	sort.Strings(w.AffectedTickers)
	return w
}

// Merge combines two warnings into one, concatenating messages and unioning
// ticker sets. Either side may be nil.
func (w *DataQualityWarning) Merge(other *DataQualityWarning) *DataQualityWarning {
	if w == nil {
		return other
	}
	if other == nil {
		return w
	}
	merged := NewDataQualityWarning("", append(append([]string{}, w.AffectedTickers...), other.AffectedTickers...)...)
	merged.Message = strings.TrimSpace(w.Message + " " + other.Message)
	return merged
}

// Names returns the affected tickers as a single comma-separated string.
func (w *DataQualityWarning) Names() string {
	if w == nil {
		return ""
	}
	return strings.Join(w.AffectedTickers, ", ")
}
