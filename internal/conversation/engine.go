package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/voicedesk/orchestrator/internal/adapter/utils"
	"github.com/voicedesk/orchestrator/internal/config"
	"github.com/voicedesk/orchestrator/internal/domain/callmodel"
	"github.com/voicedesk/orchestrator/internal/domain/kbmodel"
	"github.com/voicedesk/orchestrator/internal/metrics"
	"github.com/voicedesk/orchestrator/internal/rag/embedding"
	"github.com/voicedesk/orchestrator/internal/rag/intent"
	"github.com/voicedesk/orchestrator/internal/rag/llm"
	"github.com/voicedesk/orchestrator/internal/rag/retriever"
	"github.com/voicedesk/orchestrator/internal/rag/vectorDB"
	"github.com/voicedesk/orchestrator/pkg/logger_i"
)

// Deps are the collaborators the engine is wired with at the composition
// root. Cache and Tools are optional; everything else is required.
type Deps struct {
	Store      Store
	Retriever  retriever.Service
	Classifier intent.Classifier
	LLM        llm.Provider
	Embedder   embedding.Embedder
	Cache      vectorDB.AnswerCache
	// Tools maps an intent name to the collaborator consulted for it.
	Tools  map[string]Tool
	Access kbmodel.AccessLevel
	Now    func() time.Time
}

// Engine drives one conversational turn at a time. Turns for the same
// call are serialized; turns for different calls run concurrently.
type Engine struct {
	deps   Deps
	logger *logger_i.Logger

	lockMu    sync.Mutex
	callLocks map[string]*callLock
}

// callLock is reference counted so the map sheds entries as soon as no
// turn holds or waits on them; idle calls cost no memory.
type callLock struct {
	mu   sync.Mutex
	refs int
}

func NewEngine(deps Deps) (*Engine, error) {
	if deps.Store == nil || deps.Retriever == nil || deps.Classifier == nil ||
		deps.LLM == nil || deps.Embedder == nil {
		return nil, &kbmodel.ConfigError{Component: "conversation engine", Reason: "missing required collaborator"}
	}
	if deps.Access == "" {
		deps.Access = kbmodel.AccessInternal
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Engine{
		deps:      deps,
		logger:    logger_i.NewLogger("conversation"),
		callLocks: make(map[string]*callLock),
	}, nil
}

// ProcessTurn runs the full turn: classify, gather context, generate a
// reply, evaluate handoff, persist state. An unrecoverable provider
// failure degrades to the fallback reply with a system_error handoff
// instead of failing the turn.
func (e *Engine) ProcessTurn(ctx context.Context, callId, utterance string) (callmodel.TurnResult, error) {
	result := callmodel.TurnResult{CallId: callId}
	if strings.TrimSpace(utterance) == "" {
		return result, kbmodel.ErrEmptyInput
	}

	ctx, cancel := context.WithTimeout(ctx, config.TurnTimeout)
	defer cancel()

	unlock := e.lockCall(callId)
	defer unlock()

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("turn", time.Since(start)) }()

	log := e.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "callId", callId)

	state, err := e.loadOrCreate(ctx, callId)
	if err != nil {
		return result, err
	}
	historyUsed := len(state.Messages) > 1
	state.Messages = append(state.Messages, callmodel.Message{
		Role: callmodel.RoleUser, Content: utterance, At: e.deps.Now(),
	})

	classified := e.deps.Classifier.Classify(ctx, utterance)
	result.IntentName = classified.Name
	result.Confidence = classified.Confidence
	result.ContextFlags.HistoryUsed = historyUsed

	restricted := e.deps.Retriever.ValidateQuery(utterance, e.deps.Access) != nil

	var (
		contextBlob    string
		queryVector    []float32
		cachedAnswer   string
		providerFailed bool
	)

	if !restricted {
		queryVector, err = e.deps.Embedder.Embed(ctx, utterance)
		if err != nil {
			log.Error("query embedding failed", "error", err)
			providerFailed = true
		} else {
			cachedAnswer = e.cacheLookup(ctx, queryVector)
			if cachedAnswer != "" {
				result.ContextFlags.CacheHit = true
				result.ContextFlags.KnowledgeHit = true
			} else {
				resp, qErr := e.deps.Retriever.QueryWithVector(ctx, utterance, queryVector, kbmodel.SearchFilter{
					AccessLevel: e.deps.Access,
				})
				if qErr != nil {
					log.Warn("retrieval failed, answering without context", "error", qErr)
				} else {
					contextBlob = resp.Context
					result.ContextFlags.KnowledgeHit = resp.HasResults
				}
			}
		}
	}

	if tool, ok := e.deps.Tools[classified.Name]; ok && cachedAnswer == "" {
		if out, tErr := tool.Invoke(ctx, utterance); tErr != nil {
			log.Warn("tool call failed", "tool", tool.Name(), "error", tErr)
		} else {
			if state.ToolResults == nil {
				state.ToolResults = make(map[string]string)
			}
			state.ToolResults[tool.Name()] = out
			result.ToolsUsed = append(result.ToolsUsed, tool.Name())
			contextBlob = joinContext(contextBlob, tool.Name()+": "+out)
		}
	}

	switch {
	case restricted:
		result.ResponseText = config.RestrictedReply
	case cachedAnswer != "":
		result.ResponseText = cachedAnswer
	case providerFailed:
		result.ResponseText = config.FallbackReply
	default:
		history := state.Messages[:len(state.Messages)-1]
		reply, gErr := e.deps.LLM.Generate(ctx, utterance, contextBlob, history)
		if gErr != nil {
			log.Error("reply generation failed", "error", gErr)
			providerFailed = true
			result.ResponseText = config.FallbackReply
		} else {
			result.ResponseText = reply
		}
	}

	if providerFailed {
		result.NeedsHandoff = true
		result.HandoffReason = callmodel.HandoffSystemError
	} else {
		result.NeedsHandoff, result.HandoffReason = EvaluateHandoff(HandoffInput{
			Intent:       classified.Name,
			Confidence:   classified.Confidence,
			KnowledgeHit: result.ContextFlags.KnowledgeHit,
			Now:          e.deps.Now(),
		})
	}

	state.Messages = append(state.Messages, callmodel.Message{
		Role: callmodel.RoleAssistant, Content: result.ResponseText, At: e.deps.Now(),
	})
	state.Messages = trimHistory(state.Messages)
	state.LastIntent = classified.Name
	state.LastConfidence = classified.Confidence
	state.NeedsHandoff = result.NeedsHandoff
	state.HandoffReason = result.HandoffReason
	state.TurnCount++

	if err := e.deps.Store.Put(ctx, state); err != nil {
		log.Error("failed to persist call state", "error", err)
	}

	if !providerFailed && cachedAnswer == "" && result.ContextFlags.KnowledgeHit {
		e.cacheSave(queryVector, result.ResponseText)
	}

	return result, nil
}

// EndCall destroys the call's state. Ending an unknown call is a no-op.
func (e *Engine) EndCall(ctx context.Context, callId string) error {
	unlock := e.lockCall(callId)
	defer unlock()
	return e.deps.Store.Delete(ctx, callId)
}

func (e *Engine) loadOrCreate(ctx context.Context, callId string) (callmodel.CallState, error) {
	state, err := e.deps.Store.Get(ctx, callId)
	if errors.Is(err, ErrCallNotFound) {
		return callmodel.CallState{
			CallId: callId,
			Messages: []callmodel.Message{
				{Role: callmodel.RoleSystem, Content: config.SystemPrompt, At: e.deps.Now()},
			},
			StartedAt: e.deps.Now(),
		}, nil
	}
	return state, err
}

func (e *Engine) cacheLookup(ctx context.Context, vector []float32) string {
	if e.deps.Cache == nil {
		return ""
	}
	answer, hit, err := e.deps.Cache.GetCachedAnswer(ctx, vector)
	if err != nil {
		e.logger.Warn("answer cache lookup failed", "error", err)
		return ""
	}
	if !hit {
		return ""
	}
	return answer
}

// cacheSave runs off the turn's critical path; the turn's context may be
// gone by the time the write lands.
func (e *Engine) cacheSave(vector []float32, answer string) {
	if e.deps.Cache == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), config.ProviderCallTimeout)
		defer cancel()
		if err := e.deps.Cache.SaveToCache(ctx, utils.GetNewUUID(), vector, answer); err != nil {
			e.logger.Warn("answer cache save failed", "error", err)
		}
	}()
}

func (e *Engine) lockCall(callId string) func() {
	e.lockMu.Lock()
	lock, ok := e.callLocks[callId]
	if !ok {
		lock = new(callLock)
		e.callLocks[callId] = lock
	}
	lock.refs++
	e.lockMu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		e.lockMu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(e.callLocks, callId)
		}
		e.lockMu.Unlock()
	}
}

// trimHistory keeps the system prompt plus the most recent exchanges so
// state stays bounded on long calls.
func trimHistory(messages []callmodel.Message) []callmodel.Message {
	limit := 1 + 2*config.MaxHistoryTurns
	if len(messages) <= limit {
		return messages
	}
	trimmed := make([]callmodel.Message, 0, limit)
	trimmed = append(trimmed, messages[0])
	trimmed = append(trimmed, messages[len(messages)-(limit-1):]...)
	return trimmed
}

func joinContext(base, extra string) string {
	if base == "" {
		return extra
	}
	return base + "\n---\n" + extra
}
