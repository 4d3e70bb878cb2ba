package llm

import (
	"context"

	"github.com/voicedesk/orchestrator/internal/domain/callmodel"
)

// Provider generates the spoken reply from the caller's question, the
// retrieved context blob and the running conversation.
type Provider interface {
	Generate(ctx context.Context, question string, contextBlob string, history []callmodel.Message) (string, error)
}
