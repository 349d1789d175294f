package graph

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino/compose"

	"etfadvisor/internal/agents"
	"etfadvisor/internal/config"
	"etfadvisor/internal/debug"
	"etfadvisor/internal/models"
)

// AdvisorGraph is the top-level handle on the advisory workflow.
type AdvisorGraph struct {
	config       *config.Config
	orchestrator compose.Runnable[*models.AdvisorState, *models.AdvisorState]
	logic        *ConditionalLogic
	debug        bool
	debugger     *debug.Server
}

// NewAdvisorGraph initializes the chat model, the data stack, and the
// compiled orchestrator.
func NewAdvisorGraph(ctx context.Context, debugMode bool, cfg *config.Config) (*AdvisorGraph, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	if err := agents.InitChatModel(ctx, cfg); err != nil {
		return nil, err
	}
	if err := agents.InitAnalyzer(cfg); err != nil {
		return nil, err
	}

	logic := NewConditionalLogic(cfg.MaxRevisionRounds)
	orchestrator, err := NewAdvisorOrchestrator(ctx, logic)
	if err != nil {
		return nil, fmt.Errorf("compile advisor graph: %w", err)
	}

	return &AdvisorGraph{
		config:       cfg,
		orchestrator: orchestrator,
		logic:        logic,
		debug:        debugMode,
	}, nil
}

// Propagate runs the whole workflow for one investor and returns the final
// state: strategy, portfolio, analyst verdicts, approval flag, and report.
func (g *AdvisorGraph) Propagate(ctx context.Context, prefs *models.PortfolioPreference) (*models.AdvisorState, error) {
	if prefs == nil {
		return nil, fmt.Errorf("preferences are required")
	}

	state := models.NewAdvisorState(prefs, g.config.DefaultBenchmark, g.config.MaxRevisionRounds)

	if g.debug {
		log.Printf("[AdvisorGraph] starting run: goal=%s risk=%s", prefs.Goal, prefs.RiskProfile)
	}

	result, err := g.orchestrator.Invoke(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("advisor run failed: %w", err)
	}

	if g.debug {
		log.Printf("[AdvisorGraph] run complete: approved=%t revisions=%d",
			result.Approved, result.CurrentRevision)
	}
	return result, nil
}

// StartDebugServer exposes the compiled graph through the eino devops
// debugger.
func (g *AdvisorGraph) StartDebugServer() error {
	if g.debugger != nil {
		return fmt.Errorf("debug server is already running")
	}
	srv, err := debug.Start(g.config.EinoDebugPort)
	if err != nil {
		return err
	}
	g.debugger = srv
	log.Printf("[AdvisorGraph] debug server listening on port %d", g.config.EinoDebugPort)
	return nil
}

func (g *AdvisorGraph) IsDebugRunning() bool {
	return g.debugger != nil
}
