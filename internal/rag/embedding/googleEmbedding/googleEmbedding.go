package googleEmbedding

import (
	"context"
	"time"

	"github.com/voicedesk/orchestrator/internal/config"
	"github.com/voicedesk/orchestrator/internal/domain/kbmodel"
	"github.com/voicedesk/orchestrator/internal/rag/embedding"
	"github.com/voicedesk/orchestrator/pkg/logger_i"
	"google.golang.org/genai"
)

var dimension = int32(config.EmbeddingDimension)

type client struct {
	genAi  *genai.Client
	model  string
	logger *logger_i.Logger
}

// New builds the Gemini-backed embedder, the alternate provider behind the
// same Embedder interface.
func New(ctx context.Context, apiKey string) (embedding.Embedder, error) {
	if apiKey == "" {
		return nil, &kbmodel.ConfigError{Component: "google embedder", Reason: "missing API key"}
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, kbmodel.WrapProvider("google", err)
	}
	return &client{
		genAi:  c,
		model:  config.GoogleEmbeddingModel,
		logger: logger_i.NewLogger("google_embedding"),
	}, nil
}

func (c *client) Embed(ctx context.Context, text string) ([]float32, error) {
	plan := embedding.PlanBatch([]string{text})
	if len(plan.Texts) == 0 {
		return nil, kbmodel.ErrEmptyInput
	}

	vectors, err := c.doCall(ctx, plan.Texts)
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	plan := embedding.PlanBatch(texts)
	if len(plan.Texts) == 0 {
		return plan.Realign(nil), nil
	}

	var vectors [][]float32
	for start := 0; start < len(plan.Texts); start += config.EmbeddingBatchMaxSize {
		end := start + config.EmbeddingBatchMaxSize
		if end > len(plan.Texts) {
			end = len(plan.Texts)
		}

		batch, err := c.doCall(ctx, plan.Texts[start:end])
		if err != nil && shouldRetry(err) {
			c.logger.Warn("rate limit hit, retrying once in 5 seconds", "batch", len(plan.Texts[start:end]))
			time.Sleep(5 * time.Second)
			batch, err = c.doCall(ctx, plan.Texts[start:end])
		}
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}
	return plan.Realign(vectors), nil
}

func (c *client) doCall(ctx context.Context, texts []string) ([][]float32, error) {
	callCtx, cancel := context.WithTimeout(ctx, config.ProviderCallTimeout)
	defer cancel()

	result, err := c.genAi.Models.EmbedContent(callCtx, c.model, getContent(texts),
		&genai.EmbedContentConfig{OutputDimensionality: &dimension, TaskType: "RETRIEVAL_DOCUMENT"})
	if err != nil {
		c.logger.Error("embedding request failed", "error", err)
		return nil, kbmodel.WrapProvider("google", err)
	}

	vectors := make([][]float32, 0, len(result.Embeddings))
	for _, r := range result.Embeddings {
		vectors = append(vectors, r.Values)
	}
	return vectors, nil
}
