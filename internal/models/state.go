package models

import (
	"github.com/cloudwego/eino/schema"

	"etfadvisor/consts"
)

// AdvisorState is the shared workflow state threaded through the eino graph.
// One instance lives for the whole advisory run, including revision loops.
type AdvisorState struct {
	Messages    []*schema.Message    `json:"messages"`
	Preferences *PortfolioPreference `json:"preferences"`

	Strategy  *Strategy  `json:"strategy"`
	Portfolio *Portfolio `json:"portfolio"`
	Benchmark string     `json:"benchmark"`

	// Analyses collects each analyst's verdict keyed by node name.
	Analyses map[string]*Analysis `json:"analyses"`

	// RevisionFeedback carries the advices of failed analyses back into the
	// portfolio agent on the next loop iteration.
	RevisionFeedback []string `json:"revision_feedback"`

	Goto             string `json:"goto"`
	MaxRevisions     int    `json:"max_revisions"`
	CurrentRevision  int    `json:"current_revision"`
	WorkflowComplete bool   `json:"workflow_complete"`
	Approved         bool   `json:"approved"`
}

func NewAdvisorState(prefs *PortfolioPreference, benchmark string, maxRevisions int) *AdvisorState {
	return &AdvisorState{
		Messages:         []*schema.Message{},
		Preferences:      prefs,
		Benchmark:        benchmark,
		Analyses:         make(map[string]*Analysis),
		RevisionFeedback: []string{},
		Goto:             consts.InvestmentAgent,
		MaxRevisions:     maxRevisions,
		CurrentRevision:  0,
	}
}

// FailedAnalyses returns the analyses whose status is negative, keyed by
// node name.
func (s *AdvisorState) FailedAnalyses() map[string]*Analysis {
	failed := make(map[string]*Analysis)
	for name, a := range s.Analyses {
		if a != nil && !a.Status.Value {
			failed[name] = a
		}
	}
	return failed
}
