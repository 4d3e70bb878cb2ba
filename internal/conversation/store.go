package conversation

import (
	"context"
	"errors"

	"github.com/voicedesk/orchestrator/internal/domain/callmodel"
)

// ErrCallNotFound is returned by Get for a call id the store has never
// seen or has already expired.
var ErrCallNotFound = errors.New("call not found")

// Store persists per-call conversation state between turns. Implementations
// must treat CallState as a value: Get returns a copy and Put replaces the
// whole record, so two engines never share a mutable state struct.
type Store interface {
	Get(ctx context.Context, callId string) (callmodel.CallState, error)
	Put(ctx context.Context, state callmodel.CallState) error
	Delete(ctx context.Context, callId string) error
}
