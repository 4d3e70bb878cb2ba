package kbmodel

import "time"

type AccessLevel string

const (
	AccessPublic       AccessLevel = "public"
	AccessInternal     AccessLevel = "internal"
	AccessConfidential AccessLevel = "confidential"
)

func (a AccessLevel) Valid() bool {
	switch a {
	case AccessPublic, AccessInternal, AccessConfidential:
		return true
	}
	return false
}

type Document struct {
	Id          string            `json:"id" db:"id"`
	Source      string            `json:"source" db:"source"`
	SourceId    string            `json:"source_id,omitempty" db:"source_id"`
	Title       string            `json:"title" db:"title"`
	Content     string            `json:"content" db:"content"`
	Category    string            `json:"category" db:"category"`
	Department  string            `json:"department,omitempty" db:"department"`
	Tags        []string          `json:"tags,omitempty"`
	AccessLevel AccessLevel       `json:"access_level" db:"access_level"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at" db:"updated_at"`
}

// Chunk is one bounded segment of a document together with its embedding.
// ChunkIndex is the position within the owning document; Version ties the
// chunk to one indexed generation of that document.
type Chunk struct {
	Id         string            `json:"chunk_id" db:"id"`
	DocumentId string            `json:"document_id" db:"document_id"`
	ChunkIndex int               `json:"chunk_index" db:"chunk_index"`
	Version    int               `json:"version" db:"version"`
	Content    string            `json:"content" db:"content"`
	Embedding  []float32         `json:"-"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Match is a single search hit, joined with the owning document's metadata.
type Match struct {
	DocumentId string            `json:"document_id"`
	ChunkIndex int               `json:"chunk_index"`
	Content    string            `json:"content"`
	Title      string            `json:"title"`
	Source     string            `json:"source"`
	Category   string            `json:"category"`
	Department string            `json:"department,omitempty"`
	Similarity float64           `json:"similarity"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// SearchFilter narrows a nearest-neighbour query. Zero values mean
// "no filter" for the optional fields. A zero Threshold takes the
// configured default; a negative Threshold disables the floor entirely.
type SearchFilter struct {
	TopK        int
	Threshold   float64
	AccessLevel AccessLevel
	Category    string
	Department  string
}

// QueryLogEntry is append-only, written after every search for analytics.
type QueryLogEntry struct {
	Query     string    `json:"query"`
	Results   []Match   `json:"results"`
	TopScore  float64   `json:"top_score"`
	Timestamp time.Time `json:"timestamp"`
}

// Source identifies one document that contributed to an answer.
type Source struct {
	DocumentId string `json:"document_id"`
	Title      string `json:"title"`
	Origin     string `json:"source"`
}

// QueryResponse is the assembled retrieval result handed to callers and to
// the conversational engine.
type QueryResponse struct {
	Question   string   `json:"question"`
	Results    []Match  `json:"results"`
	Context    string   `json:"context"`
	Sources    []Source `json:"sources"`
	HasResults bool     `json:"has_results"`
	TopScore   float64  `json:"top_score"`
}
