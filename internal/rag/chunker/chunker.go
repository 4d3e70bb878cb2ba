package chunker

import (
	"regexp"
	"strings"

	"github.com/voicedesk/orchestrator/internal/config"
	"github.com/voicedesk/orchestrator/internal/domain/kbmodel"
)

type Mode string

const (
	// ModeFixedWindow slides a window of MaxSize runes, advancing by
	// MaxSize-Overlap each step.
	ModeFixedWindow Mode = "fixed_window"
	// ModeSentence accumulates whole sentences up to MaxSize and never
	// splits inside one.
	ModeSentence Mode = "sentence"
)

type Options struct {
	MaxSize int
	Overlap int
	Mode    Mode
}

type Chunker struct {
	maxSize  int
	overlap  int
	mode     Mode
	splitter *regexp.Regexp
}

func New(opts Options) (*Chunker, error) {
	if opts.MaxSize <= 0 {
		opts.MaxSize = config.DefaultChunkSize
	}
	if opts.Overlap < 0 {
		opts.Overlap = config.DefaultChunkOverlap
	}
	if opts.Mode == "" {
		opts.Mode = ModeSentence
	}
	if opts.Mode != ModeFixedWindow && opts.Mode != ModeSentence {
		return nil, &kbmodel.ConfigError{Component: "chunker", Reason: "unknown mode " + string(opts.Mode)}
	}
	// a window that never advances would loop forever
	if opts.Mode == ModeFixedWindow && opts.Overlap >= opts.MaxSize {
		return nil, &kbmodel.ConfigError{Component: "chunker", Reason: "overlap must be smaller than max size"}
	}

	return &Chunker{
		maxSize:  opts.MaxSize,
		overlap:  opts.Overlap,
		mode:     opts.Mode,
		splitter: regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?]+)`),
	}, nil
}

// Split returns the ordered chunk texts for one document. Blank input is an
// empty result, not an error.
func (c *Chunker) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if c.mode == ModeFixedWindow {
		return c.fixedWindow(text)
	}
	return c.bySentence(text)
}

func (c *Chunker) fixedWindow(text string) []string {
	// window boundaries count runes so a multi-byte sequence is never cut
	runes := []rune(text)
	if len(runes) <= c.maxSize {
		return []string{text}
	}

	var chunks []string
	step := c.maxSize - c.overlap
	for start := 0; start < len(runes); start += step {
		end := start + c.maxSize
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

func (c *Chunker) bySentence(text string) []string {
	sentences := c.sentences(text)

	var chunks []string
	var current strings.Builder
	for _, sentence := range sentences {
		// A lone sentence longer than the window passes through whole;
		// shortening it would cut mid-sentence.
		if len(sentence) > c.maxSize {
			if current.Len() > 0 {
				chunks = append(chunks, current.String())
				current.Reset()
			}
			chunks = append(chunks, sentence)
			continue
		}

		if current.Len() > 0 && current.Len()+1+len(sentence) > c.maxSize {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sentence)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

func (c *Chunker) sentences(text string) []string {
	spans := c.splitter.FindAllStringIndex(text, -1)

	var sentences []string
	end := 0
	for _, span := range spans {
		if t := strings.TrimSpace(text[span[0]:span[1]]); t != "" {
			sentences = append(sentences, t)
		}
		end = span[1]
	}
	// trailing text without a terminator still counts as a sentence
	if tail := strings.TrimSpace(text[end:]); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}
