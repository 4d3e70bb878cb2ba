package conversation

import (
	"time"

	"github.com/voicedesk/orchestrator/internal/config"
	"github.com/voicedesk/orchestrator/internal/domain/callmodel"
)

// HandoffInput is everything one turn knows when the transfer decision
// is made.
type HandoffInput struct {
	Intent       string
	Confidence   float64
	KnowledgeHit bool
	Now          time.Time
}

type handoffRule struct {
	reason  callmodel.HandoffReason
	matches func(HandoffInput) bool
}

// handoffRules is evaluated top to bottom; the first match wins, so an
// explicit agent request always outranks a confidence signal.
var handoffRules = []handoffRule{
	{
		reason:  callmodel.HandoffExplicitRequest,
		matches: func(in HandoffInput) bool { return in.Intent == "agent_request" },
	},
	{
		reason:  callmodel.HandoffLowConfidence,
		matches: func(in HandoffInput) bool { return in.Confidence < config.LowConfidenceCutoff },
	},
	{
		reason: callmodel.HandoffSpecialistRequired,
		matches: func(in HandoffInput) bool {
			return in.Intent == "technical_support" && withinBusinessHours(in.Now)
		},
	},
	{
		reason: callmodel.HandoffNoKnowledge,
		matches: func(in HandoffInput) bool {
			return !in.KnowledgeHit && in.Intent != "general_inquiry"
		},
	},
}

// EvaluateHandoff decides whether the current turn ends automated
// handling and why.
func EvaluateHandoff(in HandoffInput) (bool, callmodel.HandoffReason) {
	for _, rule := range handoffRules {
		if rule.matches(in) {
			return true, rule.reason
		}
	}
	return false, callmodel.HandoffNone
}

func withinBusinessHours(now time.Time) bool {
	h := now.Hour()
	return h >= config.BusinessHoursStart && h < config.BusinessHoursEnd
}
