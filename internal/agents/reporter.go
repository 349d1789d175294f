package agents

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"etfadvisor/consts"
	"etfadvisor/internal/models"
)

const reporterSystemPrompt = `You are a financial report writer for an ETF advisory service.

Write a concise client-facing report: the recommended portfolio, the
strategy rationale, each analyst's verdict, and open concerns if the
portfolio was not fully approved. Professional tone, plain text.`

// analysisSummary renders every analyst verdict as plain text, used both in
// the reporter prompt and as the fallback report when the model is down.
func analysisSummary(state *models.AdvisorState) string {
	var b strings.Builder
	for _, name := range []string{
		consts.FeesAnalyst, consts.DiversificationAnalyst,
		consts.AlignmentAnalyst, consts.PerformanceAnalyst,
	} {
		a := state.Analyses[name]
		if a == nil {
			continue
		}
		verdict := "passed"
		if !a.Status.Value {
			verdict = "failed"
		}
		b.WriteString(fmt.Sprintf("- %s (%s): %s. %s\n", name, a.Status.Key, verdict, a.Reasoning))
		for _, advice := range a.Advices {
			b.WriteString("    advice: " + advice + "\n")
		}
	}
	return b.String()
}

func reporterNode(ctx context.Context, state *models.AdvisorState) (*models.AdvisorState, error) {
	state.Goto = compose.END
	state.WorkflowComplete = true

	userPrompt := describePortfolio(state) + "\nAnalyst verdicts:\n" + analysisSummary(state)
	if state.Approved {
		userPrompt += "\nThe portfolio was approved."
	} else {
		userPrompt += "\nThe portfolio was NOT fully approved; note the remaining concerns."
	}

	reply, err := ChatModel.Generate(ctx, []*schema.Message{
		schema.SystemMessage(reporterSystemPrompt),
		schema.UserMessage(userPrompt),
	})
	if err != nil {
		// The run still ends with a usable report.
		log.Printf("[Reporter] model call failed, falling back to plain summary: %v", err)
		reply = schema.AssistantMessage(userPrompt, nil)
	}
	state.Messages = append(state.Messages, reply)
	return state, nil
}
