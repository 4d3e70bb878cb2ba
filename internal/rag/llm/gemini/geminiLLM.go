package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/voicedesk/orchestrator/internal/config"
	"github.com/voicedesk/orchestrator/internal/domain/callmodel"
	"github.com/voicedesk/orchestrator/internal/domain/kbmodel"
	"github.com/voicedesk/orchestrator/internal/rag/llm"
	"github.com/voicedesk/orchestrator/pkg/logger_i"
	"google.golang.org/genai"
)

type llmClient struct {
	client    *genai.Client
	modelName string
	logger    *logger_i.Logger
}

func New(ctx context.Context, apiKey string) (llm.Provider, error) {
	if apiKey == "" {
		return nil, &kbmodel.ConfigError{Component: "gemini llm", Reason: "missing API key"}
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, kbmodel.WrapProvider("google", err)
	}
	return &llmClient{
		client:    c,
		modelName: config.GeminiModelName,
		logger:    logger_i.NewLogger("llm_gemini"),
	}, nil
}

func (c *llmClient) Generate(ctx context.Context, question string, contextBlob string, history []callmodel.Message) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, config.ProviderCallTimeout)
	defer cancel()

	systemInstruction := &genai.Content{
		Parts: []*genai.Part{{Text: config.SystemPrompt}},
	}

	var prompt strings.Builder
	if len(history) > 0 {
		prompt.WriteString("Conversation so far:\n")
		for _, m := range history {
			fmt.Fprintf(&prompt, "%s: %s\n", m.Role, m.Content)
		}
		prompt.WriteString("\n")
	}
	fmt.Fprintf(&prompt, "Context:\n%s\n\nCaller question: %s", contextBlob, question)

	temperature := config.ModelTemperature
	result, err := c.client.Models.GenerateContent(
		callCtx,
		c.modelName,
		genai.Text(prompt.String()),
		&genai.GenerateContentConfig{
			SystemInstruction: systemInstruction,
			Temperature:       &temperature,
		},
	)
	if err != nil {
		c.logger.Error("generation failed", "error", err)
		return "", kbmodel.WrapProvider("google", err)
	}
	return result.Text(), nil
}
