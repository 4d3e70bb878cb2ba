package conversation

import (
	"context"
	"sync"
	"time"

	"github.com/voicedesk/orchestrator/internal/config"
	"github.com/voicedesk/orchestrator/internal/domain/callmodel"
)

type memoryEntry struct {
	state     callmodel.CallState
	updatedAt time.Time
}

// MemoryStore keeps conversation state in process memory. It is the
// fallback when Redis is unreachable; entries expire lazily after
// config.ConversationTTL so an abandoned call does not pin its history
// for the life of the process.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     config.ConversationTTL,
	}
}

func (m *MemoryStore) Get(_ context.Context, callId string) (callmodel.CallState, error) {
	m.mu.RLock()
	entry, ok := m.entries[callId]
	m.mu.RUnlock()
	if !ok {
		return callmodel.CallState{}, ErrCallNotFound
	}
	if time.Since(entry.updatedAt) > m.ttl {
		m.mu.Lock()
		delete(m.entries, callId)
		m.mu.Unlock()
		return callmodel.CallState{}, ErrCallNotFound
	}
	return cloneState(entry.state), nil
}

func (m *MemoryStore) Put(_ context.Context, state callmodel.CallState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[state.CallId] = memoryEntry{state: cloneState(state), updatedAt: time.Now()}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, callId string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, callId)
	return nil
}

// cloneState copies the slices so a caller mutating its CallState cannot
// reach into the stored record.
func cloneState(s callmodel.CallState) callmodel.CallState {
	out := s
	out.Messages = append([]callmodel.Message(nil), s.Messages...)
	if s.ToolResults != nil {
		out.ToolResults = make(map[string]string, len(s.ToolResults))
		for k, v := range s.ToolResults {
			out.ToolResults[k] = v
		}
	}
	return out
}
