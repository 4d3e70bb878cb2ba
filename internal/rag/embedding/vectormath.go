package embedding

import (
	"math"
	"sort"
	"strings"

	"github.com/voicedesk/orchestrator/internal/domain/kbmodel"
)

// CosineSimilarity returns the normalized dot product of a and b in
// [-1, 1]. A zero-norm operand yields 0 rather than NaN.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, kbmodel.ErrDimensionMismatch
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// TopKSimilar ranks candidates against query and returns the indices of
// the k most similar, descending. Ties break on ascending original index
// so the ordering is deterministic.
func TopKSimilar(query []float32, candidates [][]float32, k int) ([]int, error) {
	if k <= 0 || len(candidates) == 0 {
		return nil, nil
	}

	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, 0, len(candidates))
	for i, c := range candidates {
		s, err := CosineSimilarity(query, c)
		if err != nil {
			return nil, err
		}
		scores = append(scores, scored{idx: i, score: s})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].score != scores[j].score {
			return scores[i].score > scores[j].score
		}
		return scores[i].idx < scores[j].idx
	})

	if k > len(scores) {
		k = len(scores)
	}
	out := make([]int, k)
	for i := 0; i < k; i++ {
		out[i] = scores[i].idx
	}
	return out, nil
}

// BatchPlan remembers which original positions of a batch were blank so a
// provider's compact response can be restored to the original index
// positions. Blank entries never reach the provider; their slot in the
// realigned result stays nil.
type BatchPlan struct {
	Texts     []string // non-blank, request order
	positions []int    // original index of Texts[i]
	total     int
}

func PlanBatch(texts []string) BatchPlan {
	plan := BatchPlan{total: len(texts)}
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			continue
		}
		plan.Texts = append(plan.Texts, t)
		plan.positions = append(plan.positions, i)
	}
	return plan
}

func (p BatchPlan) Realign(vectors [][]float32) [][]float32 {
	out := make([][]float32, p.total)
	for i, pos := range p.positions {
		if i < len(vectors) {
			out[pos] = vectors[i]
		}
	}
	return out
}
