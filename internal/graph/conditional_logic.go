package graph

import (
	"etfadvisor/consts"
	"etfadvisor/internal/models"
)

// ConditionalLogic decides, after the analyst chain, whether a portfolio is
// approved or goes back to the portfolio agent for another revision round.
type ConditionalLogic struct {
	MaxRevisionRounds int
}

func NewConditionalLogic(maxRevisionRounds int) *ConditionalLogic {
	if maxRevisionRounds < 0 {
		maxRevisionRounds = 0
	}
	return &ConditionalLogic{MaxRevisionRounds: maxRevisionRounds}
}

// RequiredChecks returns the status keys that must pass before approval.
// Aggressive risk profiles additionally require the performance check: an
// underperforming portfolio is acceptable for conservative investors but not
// for someone explicitly chasing returns.
func (cl *ConditionalLogic) RequiredChecks(profile models.RiskProfile) map[string]bool {
	required := map[string]bool{
		consts.StatusFees:            true,
		consts.StatusDiversification: true,
		consts.StatusAlignment:       true,
	}
	if profile.IsAggressive() {
		required[consts.StatusPerformance] = true
	}
	return required
}

// IsApproved reports whether every required check passed.
func (cl *ConditionalLogic) IsApproved(state *models.AdvisorState) bool {
	var profile models.RiskProfile
	if state.Preferences != nil {
		profile = state.Preferences.RiskProfile
	}
	required := cl.RequiredChecks(profile)
	for _, a := range state.Analyses {
		if a != nil && required[a.Status.Key] && !a.Status.Value {
			return false
		}
	}
	// A required check with no recorded analysis counts as failed.
	recorded := make(map[string]bool, len(state.Analyses))
	for _, a := range state.Analyses {
		if a != nil {
			recorded[a.Status.Key] = true
		}
	}
	for key := range required {
		if !recorded[key] {
			return false
		}
	}
	return true
}

// ShouldRevise reports whether another revision round is allowed.
func (cl *ConditionalLogic) ShouldRevise(state *models.AdvisorState) bool {
	return !cl.IsApproved(state) && state.CurrentRevision < cl.MaxRevisionRounds
}

// ApplyRevision prepares the state for the next portfolio-agent run: bumps
// the round counter, collects the failed analysts' advices as feedback, and
// clears the stale verdicts.
func (cl *ConditionalLogic) ApplyRevision(state *models.AdvisorState) {
	state.CurrentRevision++
	state.RevisionFeedback = nil
	for _, a := range state.FailedAnalyses() {
		state.RevisionFeedback = append(state.RevisionFeedback, a.Advices...)
	}
	state.Analyses = make(map[string]*models.Analysis)
}
