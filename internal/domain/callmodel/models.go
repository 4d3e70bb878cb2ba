package callmodel

import "time"

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// HandoffReason enumerates why a call leaves automated handling. Values are
// part of the per-turn API contract.
type HandoffReason string

const (
	HandoffNone               HandoffReason = ""
	HandoffExplicitRequest    HandoffReason = "explicit_request"
	HandoffLowConfidence      HandoffReason = "low_confidence"
	HandoffSpecialistRequired HandoffReason = "specialist_required"
	HandoffNoKnowledge        HandoffReason = "no_knowledge"
	HandoffSystemError        HandoffReason = "system_error"
)

// CallState holds everything one live call has accumulated. It exists from
// the first turn until the call ends and is never persisted past that.
type CallState struct {
	CallId         string            `json:"call_id"`
	Messages       []Message         `json:"messages"`
	ToolResults    map[string]string `json:"tool_results,omitempty"`
	LastIntent     string            `json:"last_intent"`
	LastConfidence float64           `json:"last_confidence"`
	NeedsHandoff   bool              `json:"needs_handoff"`
	HandoffReason  HandoffReason     `json:"handoff_reason,omitempty"`
	TurnCount      int               `json:"turn_count"`
	StartedAt      time.Time         `json:"started_at"`
}

// TurnResult is the per-turn output returned to the telephony caller.
type TurnResult struct {
	CallId        string        `json:"call_id"`
	IntentName    string        `json:"intent_name"`
	Confidence    float64       `json:"confidence"`
	ResponseText  string        `json:"response_text"`
	NeedsHandoff  bool          `json:"needs_handoff"`
	HandoffReason HandoffReason `json:"handoff_reason,omitempty"`
	ToolsUsed     []string      `json:"tools_used"`
	ContextFlags  ContextFlags  `json:"context_flags"`
}

// ContextFlags tells the caller what fed the reply.
type ContextFlags struct {
	KnowledgeHit bool `json:"knowledge_hit"`
	CacheHit     bool `json:"cache_hit"`
	HistoryUsed  bool `json:"history_used"`
}
