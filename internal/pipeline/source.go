package pipeline

import (
	"context"

	"github.com/voicedesk/orchestrator/internal/domain/kbmodel"
)

// DocumentSource is the external collaborator that owns the raw documents.
// List is paged: an empty pageToken starts the listing, an empty returned
// token ends it. Fetch loads and extracts one document; a Fetch failure
// only affects that document.
type DocumentSource interface {
	Name() string
	List(ctx context.Context, pageToken string) (refs []string, nextToken string, err error)
	Fetch(ctx context.Context, ref string) (kbmodel.Document, error)
}
