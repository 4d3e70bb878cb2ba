package retriever

import (
	"fmt"
	"strings"

	"github.com/voicedesk/orchestrator/internal/domain/kbmodel"
)

// assembleContext builds the delimited per-source blob handed to the
// language model.
func assembleContext(matches []kbmodel.Match) string {
	if len(matches) == 0 {
		return ""
	}

	var b strings.Builder
	for i, m := range matches {
		if i > 0 {
			b.WriteString("\n---\n")
		}
		fmt.Fprintf(&b, "[%s | %s]\n%s", m.Title, m.Source, m.Content)
	}
	return b.String()
}

// dedupeSources keeps the first occurrence of each document id, in result
// order.
func dedupeSources(matches []kbmodel.Match) []kbmodel.Source {
	seen := make(map[string]bool, len(matches))
	var sources []kbmodel.Source
	for _, m := range matches {
		if seen[m.DocumentId] {
			continue
		}
		seen[m.DocumentId] = true
		sources = append(sources, kbmodel.Source{
			DocumentId: m.DocumentId,
			Title:      m.Title,
			Origin:     m.Source,
		})
	}
	return sources
}
