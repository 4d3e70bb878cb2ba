package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/voicedesk/orchestrator/internal/domain/kbmodel"
)

// documentNamespace scopes path-derived document ids. The same relative
// path always hashes to the same UUID, so re-indexing updates the existing
// document row instead of creating a new one.
var documentNamespace = uuid.MustParse("7a5e42d1-9c83-4b6f-8d2a-f04e1bc6a9e3")

const folderPageSize = 50

// FolderSource serves documents from a directory tree. The relative path
// doubles as the stable document identity, so re-running the pipeline
// updates documents in place instead of duplicating them. Files in a
// subdirectory take the first path element as their category.
type FolderSource struct {
	root   string
	access kbmodel.AccessLevel
}

func NewFolderSource(root string, access kbmodel.AccessLevel) (*FolderSource, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, &kbmodel.ConfigError{Component: "folder source", Reason: err.Error()}
	}
	if !info.IsDir() {
		return nil, &kbmodel.ConfigError{Component: "folder source", Reason: root + " is not a directory"}
	}
	if !access.Valid() {
		access = kbmodel.AccessPublic
	}
	return &FolderSource{root: root, access: access}, nil
}

func (s *FolderSource) Name() string { return "folder:" + s.root }

func (s *FolderSource) List(_ context.Context, pageToken string) ([]string, string, error) {
	all, err := s.walk()
	if err != nil {
		return nil, "", err
	}

	offset := 0
	if pageToken != "" {
		offset, err = strconv.Atoi(pageToken)
		if err != nil || offset < 0 {
			return nil, "", fmt.Errorf("bad page token %q", pageToken)
		}
	}
	if offset >= len(all) {
		return nil, "", nil
	}

	end := offset + folderPageSize
	next := ""
	if end < len(all) {
		next = strconv.Itoa(end)
	} else {
		end = len(all)
	}
	return all[offset:end], next, nil
}

func (s *FolderSource) Fetch(_ context.Context, ref string) (kbmodel.Document, error) {
	path := filepath.Join(s.root, filepath.FromSlash(ref))
	content, err := extractText(path, detectDocType(path))
	if err != nil {
		return kbmodel.Document{}, err
	}

	now := time.Now()
	return kbmodel.Document{
		Id:          documentId(ref),
		Source:      s.Name(),
		SourceId:    ref,
		Title:       strings.TrimSuffix(filepath.Base(ref), filepath.Ext(ref)),
		Content:     content,
		Category:    categoryOf(ref),
		AccessLevel: s.access,
		Metadata:    map[string]string{"file": ref},
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// walk returns slash-separated relative paths of all supported files, in
// lexical order so page tokens stay stable between calls.
func (s *FolderSource) walk() ([]string, error) {
	var refs []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if detectDocType(path) == typeUnknown {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		refs = append(refs, filepath.ToSlash(rel))
		return nil
	})
	return refs, err
}

func documentId(ref string) string {
	return uuid.NewSHA1(documentNamespace, []byte(ref)).String()
}

func categoryOf(ref string) string {
	if dir, _, found := strings.Cut(ref, "/"); found {
		return dir
	}
	return "general"
}
