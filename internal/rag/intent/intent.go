package intent

import "context"

const DefaultIntent = "general_inquiry"

type Result struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// Classifier scores an utterance. The keyword scorer is the only
// implementation today; the interface leaves room for a statistical one.
type Classifier interface {
	Classify(ctx context.Context, utterance string) Result
}
