package openaiEmbedding

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/voicedesk/orchestrator/internal/config"
	"github.com/voicedesk/orchestrator/internal/domain/kbmodel"
	"github.com/voicedesk/orchestrator/internal/rag/embedding"
	"github.com/voicedesk/orchestrator/pkg/logger_i"
)

type client struct {
	api       openai.Client
	model     string
	dimension int
	logger    *logger_i.Logger
}

// New builds the OpenAI-backed embedder. A missing API key is a
// construction-time failure, not a nil client surfacing later.
func New(apiKey string) (embedding.Embedder, error) {
	if apiKey == "" {
		return nil, &kbmodel.ConfigError{Component: "openai embedder", Reason: "missing API key"}
	}
	return &client{
		api:       openai.NewClient(option.WithAPIKey(apiKey)),
		model:     config.OpenAIEmbeddingModel,
		dimension: config.EmbeddingDimension,
		logger:    logger_i.NewLogger("openai_embedding"),
	}, nil
}

func (c *client) Embed(ctx context.Context, text string) ([]float32, error) {
	plan := embedding.PlanBatch([]string{text})
	if len(plan.Texts) == 0 {
		return nil, kbmodel.ErrEmptyInput
	}

	vectors, err := c.request(ctx, plan.Texts)
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
		batch, err := c.request(ctx, plan.Texts[start:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}
	return plan.Realign(vectors), nil
}

func (c *client) request(ctx context.Context, texts []string) ([][]float32, error) {
	callCtx, cancel := context.WithTimeout(ctx, config.ProviderCallTimeout)
	defer cancel()

	resp, err := c.api.Embeddings.New(callCtx, openai.EmbeddingNewParams{
		Input:      openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model:      c.model,
		Dimensions: openai.Int(int64(c.dimension)),
	})
	if err != nil {
		c.logger.Error("embedding request failed", "error", err, "batch", len(texts))
		return nil, kbmodel.WrapProvider("openai", err)
	}

	// The API documents response order as request order, but be explicit
	// about it via the Index field.
	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(vectors) {
			continue
		}
		v := make([]float32, len(d.Embedding))
		for i, f := range d.Embedding {
			v[i] = float32(f)
		}
		vectors[d.Index] = v
	}
	return vectors, nil
}
