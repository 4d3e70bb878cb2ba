package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
)

type docType int

const (
	typeUnknown docType = iota
	typePDF
	typeDoc
	typeText
)

func detectDocType(path string) docType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return typePDF
	case ".docx", ".odt", ".rtf":
		return typeDoc
	case ".txt", ".md":
		return typeText
	default:
		return typeUnknown
	}
}

// extractText pulls the plain text out of a supported document file.
func extractText(path string, t docType) (string, error) {
	switch t {
	case typePDF:
		return extractPDF(path)
	case typeDoc:
		text, err := cat.File(path)
		if err != nil {
			return "", fmt.Errorf("failed to extract document: %w", err)
		}
		return text, nil
	case typeText:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported document type: %s", filepath.Ext(path))
	}
}

func extractPDF(path string) (string, error) {
	f, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var pages []string
	numPages := f.NumPage()
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := protectExtract(page)
		if err != nil {
			// a broken page must not sink the rest of the document
			logger.Warn("skipping unparseable pdf page", "path", path, "page", i, "error", err)
			continue
		}
		pages = append(pages, content)
	}
	if len(pages) == 0 {
		return "", errors.New("no extractable pages")
	}
	return strings.Join(pages, "\n\n"), nil
}

// protectExtract guards against parses that hang inside the pdf library.
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(time.Second * 10):
		return "", errors.New("page extraction timed out")
	}
}
