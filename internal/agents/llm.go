package agents

import (
	"context"
	"encoding/json"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"etfadvisor/internal/config"
)

var (
	ChatModel model.BaseChatModel
)

// NewChatModel builds a chat model from the configured provider.
func NewChatModel(ctx context.Context, cfg *config.Config) (model.BaseChatModel, error) {
	maxTokens := 8192
	switch cfg.LLMProvider {
	case "deepseek":
		return deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			BaseURL:   cfg.BackendURL,
			APIKey:    cfg.DeepSeekAPIKey,
			Model:     cfg.DeepThinkLLM,
			MaxTokens: maxTokens,
		})
	case "openai":
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL:   cfg.BackendURL,
			APIKey:    cfg.OpenAIAPIKey,
			Model:     cfg.DeepThinkLLM,
			MaxTokens: &maxTokens,
		})
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.LLMProvider)
	}
}

func InitChatModel(ctx context.Context, cfg *config.Config) error {
	cm, err := NewChatModel(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init chat model: %w", err)
	}
	ChatModel = cm
	return nil
}

// decodeJSON parses an LLM reply into out, repairing the usual model output
// defects (markdown fences, single quotes, trailing commas) first.
func decodeJSON(content string, out interface{}) error {
	repaired, err := jsonrepair.RepairJSON(content)
	if err != nil {
		repaired = content
	}
	if err := json.Unmarshal([]byte(repaired), out); err != nil {
		return fmt.Errorf("decode llm reply: %w", err)
	}
	return nil
}
