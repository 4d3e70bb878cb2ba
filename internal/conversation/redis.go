package conversation

import (
	"context"
	"encoding/json"

	"github.com/voicedesk/orchestrator/internal/config"
	"github.com/voicedesk/orchestrator/internal/data/redisStore"
	"github.com/voicedesk/orchestrator/internal/domain/callmodel"
	"github.com/voicedesk/orchestrator/pkg/logger_i"
)

// RedisStore keeps conversation state in Redis so any API instance can
// serve the next turn of a call. State is one JSON blob per call id;
// each Put refreshes the TTL.
type RedisStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func NewRedisStore(store *redisStore.Store) *RedisStore {
	return &RedisStore{
		store:  store,
		logger: logger_i.NewLogger("ConversationStore"),
	}
}

func (s *RedisStore) Get(ctx context.Context, callId string) (callmodel.CallState, error) {
	var state callmodel.CallState
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "callId", callId)

	val, err := s.store.Get(ctx, callKey(callId))
	if s.store.IsNil(err) {
		return state, ErrCallNotFound
	} else if err != nil {
		log.Error("failed to read call state", "error", err)
		return state, err
	}

	if err := json.Unmarshal([]byte(val), &state); err != nil {
		log.Error("corrupt call state, dropping it", "error", err)
		_ = s.store.Del(ctx, callKey(callId))
		return callmodel.CallState{}, ErrCallNotFound
	}
	return state, nil
}

func (s *RedisStore) Put(ctx context.Context, state callmodel.CallState) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "callId", state.CallId)
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	err = s.store.Set(ctx, callKey(state.CallId), data, config.ConversationTTL)
	if err != nil {
		log.Error("failed to save call state", "error", err)
	}
	return err
}

func (s *RedisStore) Delete(ctx context.Context, callId string) error {
	return s.store.Del(ctx, callKey(callId))
}

func callKey(callId string) string {
	return "call:" + callId
}
