package pgVector

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/voicedesk/orchestrator/internal/config"
	"github.com/voicedesk/orchestrator/internal/domain/kbmodel"
	"github.com/voicedesk/orchestrator/internal/rag/vectorDB"
	"github.com/voicedesk/orchestrator/pkg/logger_i"
)

type store struct {
	db        *sqlx.DB
	dimension int
	logger    *logger_i.Logger
}

// Connect opens the Postgres pool and verifies both liveness and the
// pgvector extension before anything else touches the database.
func Connect(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, kbmodel.WrapProvider("postgres", err)
	}
	db.SetMaxOpenConns(config.PostgresMaxOpen)
	db.SetMaxIdleConns(config.PostgresMaxIdle)

	pingCtx, cancel := context.WithTimeout(ctx, config.PostgresConnTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, kbmodel.WrapProvider("postgres", err)
	}
	return db, nil
}

func New(db *sqlx.DB) (vectorDB.Store, error) {
	if db == nil {
		return nil, &kbmodel.ConfigError{Component: "pgvector store", Reason: "database connection is required"}
	}

	var hasVector bool
	err := db.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_extension WHERE extname = 'vector')").Scan(&hasVector)
	if err != nil {
		return nil, kbmodel.WrapProvider("postgres", err)
	}
	if !hasVector {
		return nil, &kbmodel.ConfigError{Component: "pgvector store", Reason: "pgvector extension is not installed"}
	}

	return &store{
		db:        db,
		dimension: config.EmbeddingDimension,
		logger:    logger_i.NewLogger("pgvector"),
	}, nil
}

func (s *store) UpsertDocument(ctx context.Context, doc kbmodel.Document) error {
	metadata, err := json.Marshal(orEmptyMap(doc.Metadata))
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO kb_documents (id, source, source_id, title, content, category, department, tags, access_level, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			source = $2, source_id = $3, title = $4, content = $5,
			category = $6, department = $7, tags = $8, access_level = $9,
			metadata = $10, updated_at = now()`,
		doc.Id, doc.Source, doc.SourceId, doc.Title, doc.Content,
		doc.Category, doc.Department, pq.Array(doc.Tags), string(doc.AccessLevel), metadata)
	if err != nil {
		return kbmodel.WrapProvider("postgres", err)
	}
	return nil
}

func (s *store) GetDocument(ctx context.Context, id string) (kbmodel.Document, bool, error) {
	var (
		doc      kbmodel.Document
		tags     pq.StringArray
		metadata []byte
	)
	row := s.db.QueryRowContext(ctx, `
		SELECT id, source, source_id, title, content, category, department, tags, access_level, metadata, created_at, updated_at
		FROM kb_documents WHERE id = $1`, id)
	err := row.Scan(&doc.Id, &doc.Source, &doc.SourceId, &doc.Title, &doc.Content,
		&doc.Category, &doc.Department, &tags, &doc.AccessLevel, &metadata, &doc.CreatedAt, &doc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return doc, false, nil
	}
	if err != nil {
		return doc, false, kbmodel.WrapProvider("postgres", err)
	}
	doc.Tags = tags
	if len(metadata) > 0 {
		_ = json.Unmarshal(metadata, &doc.Metadata)
	}
	return doc, true, nil
}

func (s *store) NextVersion(ctx context.Context, documentId string) (int, error) {
	var next int
	err := s.db.QueryRowContext(ctx, `
		SELECT GREATEST(d.active_version, COALESCE(MAX(c.version), 0)) + 1
		FROM kb_documents d
		LEFT JOIN kb_chunks c ON c.document_id = d.id
		WHERE d.id = $1
		GROUP BY d.active_version`, documentId).Scan(&next)
	if errors.Is(err, sql.ErrNoRows) {
		return 1, nil
	}
	if err != nil {
		return 0, kbmodel.WrapProvider("postgres", err)
	}
	return next, nil
}

// InsertBatch writes the whole chunk set in one transaction. A single bad
// row rolls everything back, so no partial generation is ever visible.
func (s *store) InsertBatch(ctx context.Context, chunks []kbmodel.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	for _, chunk := range chunks {
		if len(chunk.Embedding) != s.dimension {
			return fmt.Errorf("chunk %s: %w (got %d, want %d)",
				chunk.Id, kbmodel.ErrDimensionMismatch, len(chunk.Embedding), s.dimension)
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return kbmodel.WrapProvider("postgres", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, chunk := range chunks {
		metadata, err := json.Marshal(orEmptyMap(chunk.Metadata))
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO kb_chunks (id, document_id, chunk_index, version, content, embedding, metadata)
			VALUES ($1, $2, $3, $4, $5, $6::vector, $7)`,
			chunk.Id, chunk.DocumentId, chunk.ChunkIndex, chunk.Version,
			chunk.Content, formatVector(chunk.Embedding), metadata)
		if err != nil {
			return kbmodel.WrapProvider("postgres", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return kbmodel.WrapProvider("postgres", err)
	}
	return nil
}

func (s *store) ActivateVersion(ctx context.Context, documentId string, version int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE kb_documents SET active_version = $2, updated_at = now() WHERE id = $1`,
		documentId, version)
	if err != nil {
		return kbmodel.WrapProvider("postgres", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("document %s not found", documentId)
	}
	return nil
}

func (s *store) PruneVersionsBelow(ctx context.Context, documentId string, version int) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM kb_chunks WHERE document_id = $1 AND version < $2`, documentId, version)
	if err != nil {
		return kbmodel.WrapProvider("postgres", err)
	}
	return nil
}

// DeleteByDocument cascades to chunks and is idempotent: an unknown id is
// a zero count, not an error.
func (s *store) DeleteByDocument(ctx context.Context, documentId string) (int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, kbmodel.WrapProvider("postgres", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM kb_chunks WHERE document_id = $1`, documentId)
	if err != nil {
		return 0, kbmodel.WrapProvider("postgres", err)
	}
	deleted, _ := res.RowsAffected()

	if _, err := tx.ExecContext(ctx, `DELETE FROM kb_documents WHERE id = $1`, documentId); err != nil {
		return 0, kbmodel.WrapProvider("postgres", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, kbmodel.WrapProvider("postgres", err)
	}
	return deleted, nil
}

func (s *store) LogQuery(ctx context.Context, entry kbmodel.QueryLogEntry) error {
	results, err := json.Marshal(entry.Results)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO query_log (query_text, results, top_score, created_at) VALUES ($1, $2, $3, $4)`,
		entry.Query, results, entry.TopScore, entry.Timestamp)
	if err != nil {
		return kbmodel.WrapProvider("postgres", err)
	}
	return nil
}

func (s *store) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM kb_chunks c
		JOIN kb_documents d ON d.id = c.document_id AND d.active_version = c.version`).Scan(&count)
	if err != nil {
		return 0, kbmodel.WrapProvider("postgres", err)
	}
	return count, nil
}

func (s *store) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return kbmodel.WrapProvider("postgres", err)
	}
	return nil
}

func formatVector(v []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}

func orEmptyMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
