package intent

import (
	"context"
	"sort"
	"strings"
)

// KeywordClassifier counts substring occurrences of each intent's keyword
// set in the lowercased utterance. Confidence is min(0.3*matches, 0.95).
// A score tie breaks on ascending intent name so classification is
// deterministic regardless of map iteration order.
type KeywordClassifier struct {
	buckets map[string][]string
	names   []string // bucket names, sorted
}

func NewKeywordClassifier(buckets map[string][]string) *KeywordClassifier {
	if buckets == nil {
		buckets = DefaultBuckets()
	}
	names := make([]string, 0, len(buckets))
	for name := range buckets {
		names = append(names, name)
	}
	sort.Strings(names)
	return &KeywordClassifier{buckets: buckets, names: names}
}

// DefaultBuckets is the stock intent vocabulary for a service-desk bot.
func DefaultBuckets() map[string][]string {
	return map[string][]string{
		"business_hours": {
			"opening hours", "hours", "open", "close", "closing", "when are you",
		},
		"billing": {
			"invoice", "bill", "billing", "payment", "charge", "refund", "price",
		},
		"technical_support": {
			"not working", "broken", "error", "crash", "bug", "can't log", "cannot log", "reset",
		},
		"appointment": {
			"appointment", "book", "booking", "schedule", "reschedule", "cancel my",
		},
		"agent_request": {
			"agent", "human", "representative", "real person", "speak to someone", "operator",
		},
	}
}

func (c *KeywordClassifier) Classify(_ context.Context, utterance string) Result {
	lowered := strings.ToLower(utterance)

	best := Result{Name: DefaultIntent, Confidence: 0}
	bestCount := 0
	for _, name := range c.names {
		count := 0
		for _, keyword := range c.buckets[name] {
			count += strings.Count(lowered, keyword)
		}
		if count > bestCount {
			bestCount = count
			best.Name = name
		}
	}
	if bestCount == 0 {
		return best
	}

	best.Confidence = 0.3 * float64(bestCount)
	if best.Confidence > 0.95 {
		best.Confidence = 0.95
	}
	return best
}
