package conversation

import (
	"testing"
	"time"

	"github.com/voicedesk/orchestrator/internal/domain/callmodel"
)

func at(hour int) time.Time {
	return time.Date(2026, 3, 4, hour, 30, 0, 0, time.Local)
}

func TestEvaluateHandoff_Rules(t *testing.T) {
	cases := []struct {
		name   string
		in     HandoffInput
		want   bool
		reason callmodel.HandoffReason
	}{
		{
			name:   "explicit agent request",
			in:     HandoffInput{Intent: "agent_request", Confidence: 0.9, KnowledgeHit: true, Now: at(10)},
			want:   true,
			reason: callmodel.HandoffExplicitRequest,
		},
		{
			name:   "low confidence",
			in:     HandoffInput{Intent: "billing", Confidence: 0.2, KnowledgeHit: true, Now: at(10)},
			want:   true,
			reason: callmodel.HandoffLowConfidence,
		},
		{
			name:   "technical support during business hours",
			in:     HandoffInput{Intent: "technical_support", Confidence: 0.8, KnowledgeHit: true, Now: at(10)},
			want:   true,
			reason: callmodel.HandoffSpecialistRequired,
		},
		{
			name: "technical support after hours stays automated",
			in:   HandoffInput{Intent: "technical_support", Confidence: 0.8, KnowledgeHit: true, Now: at(20)},
			want: false,
		},
		{
			name:   "no knowledge for a specific intent",
			in:     HandoffInput{Intent: "billing", Confidence: 0.8, KnowledgeHit: false, Now: at(10)},
			want:   true,
			reason: callmodel.HandoffNoKnowledge,
		},
		{
			name: "no knowledge but general inquiry stays automated",
			in:   HandoffInput{Intent: "general_inquiry", Confidence: 0.8, KnowledgeHit: false, Now: at(10)},
			want: false,
		},
		{
			name: "confident answer with knowledge",
			in:   HandoffInput{Intent: "billing", Confidence: 0.8, KnowledgeHit: true, Now: at(10)},
			want: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, reason := EvaluateHandoff(tc.in)
			if got != tc.want {
				t.Fatalf("handoff = %v, want %v", got, tc.want)
			}
			if reason != tc.reason {
				t.Errorf("reason = %q, want %q", reason, tc.reason)
			}
		})
	}
}

// An explicit request must outrank every other signal even when several
// rules match at once.
func TestEvaluateHandoff_Precedence(t *testing.T) {
	in := HandoffInput{
		Intent:       "agent_request",
		Confidence:   0.1,
		KnowledgeHit: false,
		Now:          at(10),
	}
	got, reason := EvaluateHandoff(in)
	if !got || reason != callmodel.HandoffExplicitRequest {
		t.Fatalf("got %v/%q, want explicit_request", got, reason)
	}
}

func TestWithinBusinessHours_Boundaries(t *testing.T) {
	if withinBusinessHours(at(8)) {
		t.Error("08:30 is before opening")
	}
	if !withinBusinessHours(at(9)) {
		t.Error("09:30 is within hours")
	}
	if !withinBusinessHours(at(16)) {
		t.Error("16:30 is within hours")
	}
	if withinBusinessHours(at(17)) {
		t.Error("17:30 is after closing")
	}
}
