package chunker

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/voicedesk/orchestrator/internal/domain/kbmodel"
)

func TestNew_RejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"Overlap_Equals_Size", Options{MaxSize: 100, Overlap: 100, Mode: ModeFixedWindow}},
		{"Overlap_Exceeds_Size", Options{MaxSize: 100, Overlap: 150, Mode: ModeFixedWindow}},
		{"Unknown_Mode", Options{MaxSize: 100, Overlap: 10, Mode: "paragraph"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts)
			if err == nil {
				t.Fatal("expected a config error, got nil")
			}
			var cfgErr *kbmodel.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigError, got %T", err)
			}
		})
	}
}

func TestSplit_BlankInput(t *testing.T) {
	for _, mode := range []Mode{ModeFixedWindow, ModeSentence} {
		c, err := New(Options{MaxSize: 100, Overlap: 10, Mode: mode})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		for _, input := range []string{"", "   ", "\n\t\n"} {
			if got := c.Split(input); len(got) != 0 {
				t.Errorf("mode %s: blank input produced %d chunks", mode, len(got))
			}
		}
	}
}

func TestSplit_FixedWindow(t *testing.T) {
	c, err := New(Options{MaxSize: 10, Overlap: 4, Mode: ModeFixedWindow})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	text := "abcdefghijklmnopqrstuvwxyz"
	chunks := c.Split(text)

	if len(chunks) == 0 {
		t.Fatal("no chunks produced")
	}
	for i, ch := range chunks {
		if len(ch) > 10 {
			t.Errorf("chunk %d exceeds max size: %d", i, len(ch))
		}
	}
	// step = size - overlap = 6
	if chunks[0] != "abcdefghij" || chunks[1] != "ghijklmnop" {
		t.Errorf("window did not advance by size-overlap: %q %q", chunks[0], chunks[1])
	}
	// every byte of the input must be covered
	if !strings.HasSuffix(chunks[len(chunks)-1], "z") {
		t.Errorf("tail lost: last chunk %q", chunks[len(chunks)-1])
	}
}

func TestSplit_FixedWindow_MultibyteRunesStayIntact(t *testing.T) {
	c, err := New(Options{MaxSize: 10, Overlap: 4, Mode: ModeFixedWindow})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	text := "Şehir merkezi kayıtlı müşterilere açıktır."
	chunks := c.Split(text)

	if len(chunks) == 0 {
		t.Fatal("no chunks produced")
	}
	for i, ch := range chunks {
		if !utf8.ValidString(ch) {
			t.Errorf("chunk %d is not valid utf-8: %q", i, ch)
		}
		if utf8.RuneCountInString(ch) > 10 {
			t.Errorf("chunk %d exceeds the window: %q", i, ch)
		}
	}
	if !strings.HasSuffix(chunks[len(chunks)-1], ".") {
		t.Errorf("tail lost: last chunk %q", chunks[len(chunks)-1])
	}
}

func TestSplit_SentenceMode_RespectsBoundaries(t *testing.T) {
	c, err := New(Options{MaxSize: 50, Mode: ModeSentence})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	text := "Our office opens at nine. We close at five. Weekends are closed. Call us anytime for recorded info."
	chunks := c.Split(text)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if len(ch) > 50 {
			t.Errorf("chunk %d too long (%d): %q", i, len(ch), ch)
		}
		// no chunk may end mid-sentence
		last := ch[len(ch)-1]
		if last != '.' && last != '!' && last != '?' {
			t.Errorf("chunk %d split inside a sentence: %q", i, ch)
		}
	}
}

func TestSplit_SentenceMode_OversizedSentencePassesThrough(t *testing.T) {
	c, err := New(Options{MaxSize: 20, Mode: ModeSentence})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	long := "this single sentence is far longer than the twenty byte limit."
	text := "Short one. " + long + " Tail."
	chunks := c.Split(text)

	found := false
	for _, ch := range chunks {
		if ch == long {
			found = true
		} else if len(ch) > 20 {
			t.Errorf("non-oversized chunk exceeds limit: %q", ch)
		}
	}
	if !found {
		t.Errorf("oversized sentence was not emitted unmodified: %v", chunks)
	}
}

func TestSplit_SentenceMode_NoTerminator(t *testing.T) {
	c, err := New(Options{MaxSize: 100, Mode: ModeSentence})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	chunks := c.Split("a fragment without punctuation")
	if len(chunks) != 1 || chunks[0] != "a fragment without punctuation" {
		t.Errorf("unexpected chunks: %v", chunks)
	}
}
