package pgVector

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/voicedesk/orchestrator/internal/config"
	"github.com/voicedesk/orchestrator/internal/domain/kbmodel"
)

// Search runs a filtered cosine nearest-neighbour query over the active
// chunk generation of every document. No result below the threshold is
// ever returned.
func (s *store) Search(ctx context.Context, queryVector []float32, filter kbmodel.SearchFilter) ([]kbmodel.Match, error) {
	if len(queryVector) != s.dimension {
		return nil, fmt.Errorf("query vector: %w (got %d, want %d)",
			kbmodel.ErrDimensionMismatch, len(queryVector), s.dimension)
	}
	if filter.TopK <= 0 {
		filter.TopK = config.DefaultTopK
	}
	if filter.TopK > config.MaxTopK {
		filter.TopK = config.MaxTopK
	}

	query, args := buildSearchQuery(formatVector(queryVector), filter)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Error("search query failed", "error", err)
		return nil, kbmodel.WrapProvider("postgres", err)
	}
	defer rows.Close()

	var matches []kbmodel.Match
	for rows.Next() {
		var (
			m        kbmodel.Match
			metadata []byte
		)
		if err := rows.Scan(&m.DocumentId, &m.ChunkIndex, &m.Content, &metadata,
			&m.Title, &m.Source, &m.Category, &m.Department, &m.Similarity); err != nil {
			return nil, kbmodel.WrapProvider("postgres", err)
		}
		if len(metadata) > 0 {
			_ = json.Unmarshal(metadata, &m.Metadata)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, kbmodel.WrapProvider("postgres", err)
	}
	return matches, nil
}

func buildSearchQuery(vector string, filter kbmodel.SearchFilter) (string, []interface{}) {
	var b strings.Builder
	args := []interface{}{vector, filter.Threshold}

	b.WriteString(`
		SELECT c.document_id, c.chunk_index, c.content, c.metadata,
		       d.title, d.source, d.category, d.department,
		       1 - (c.embedding <=> $1::vector) AS similarity
		FROM kb_chunks c
		JOIN kb_documents d ON d.id = c.document_id AND d.active_version = c.version
		WHERE 1 - (c.embedding <=> $1::vector) >= $2`)

	if filter.AccessLevel != "" {
		args = append(args, string(filter.AccessLevel))
		fmt.Fprintf(&b, " AND d.access_level = $%d", len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		fmt.Fprintf(&b, " AND d.category = $%d", len(args))
	}
	if filter.Department != "" {
		args = append(args, filter.Department)
		fmt.Fprintf(&b, " AND d.department = $%d", len(args))
	}

	args = append(args, filter.TopK)
	fmt.Fprintf(&b, " ORDER BY c.embedding <=> $1::vector LIMIT $%d", len(args))

	return b.String(), args
}
