package openaiLLM

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/voicedesk/orchestrator/internal/config"
	"github.com/voicedesk/orchestrator/internal/domain/callmodel"
	"github.com/voicedesk/orchestrator/internal/domain/kbmodel"
	"github.com/voicedesk/orchestrator/internal/rag/llm"
	"github.com/voicedesk/orchestrator/pkg/logger_i"
)

type client struct {
	api    openai.Client
	model  string
	logger *logger_i.Logger
}

func New(apiKey string) (llm.Provider, error) {
	if apiKey == "" {
		return nil, &kbmodel.ConfigError{Component: "openai llm", Reason: "missing API key"}
	}
	return &client{
		api:    openai.NewClient(option.WithAPIKey(apiKey)),
		model:  config.OpenAIChatModel,
		logger: logger_i.NewLogger("openai_llm"),
	}, nil
}

func (c *client) Generate(ctx context.Context, question string, contextBlob string, history []callmodel.Message) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, config.ProviderCallTimeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	messages = append(messages, openai.SystemMessage(config.SystemPrompt))
	for _, m := range history {
		switch m.Role {
		case callmodel.RoleUser:
			messages = append(messages, openai.UserMessage(m.Content))
		case callmodel.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		}
	}
	messages = append(messages, openai.UserMessage(
		fmt.Sprintf("Context:\n%s\n\nCaller question: %s", contextBlob, question)))

	resp, err := c.api.Chat.Completions.New(callCtx, openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		c.logger.Error("completion failed", "error", err)
		return "", kbmodel.WrapProvider("openai", err)
	}
	if len(resp.Choices) == 0 {
		return "", kbmodel.WrapProvider("openai", fmt.Errorf("empty completion"))
	}
	return resp.Choices[0].Message.Content, nil
}
