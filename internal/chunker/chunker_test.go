package chunker

import (
	"reflect"
	"strings"
	"testing"
)

func TestSplit_Empty(t *testing.T) {
	if got := Split("", 500); got != nil {
		t.Errorf("expected nil for empty text, got %v", got)
	}
	if got := Split("   \n\t  ", 500); got != nil {
		t.Errorf("expected nil for whitespace text, got %v", got)
	}
}

func TestSplit_SingleShortText(t *testing.T) {
	chunks := Split("hello world", 500)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != "hello world" {
		t.Errorf("unexpected chunk text %q", chunks[0].Text)
	}
	if chunks[0].Index != 0 {
		t.Errorf("expected index 0, got %d", chunks[0].Index)
	}
}

func TestSplit_RoundTrip(t *testing.T) {
	texts := []string{
		"the quick brown fox jumps over the lazy dog",
		"a  b\tc\nd   e",
		strings.Repeat("lorem ipsum dolor sit amet ", 40),
	}

	for _, text := range texts {
		for _, size := range []int{10, 50, 500} {
			chunks := Split(text, size)

			parts := make([]string, len(chunks))
			for i, c := range chunks {
				parts[i] = c.Text
			}
			joined := strings.Join(parts, " ")
			normalized := strings.Join(strings.Fields(text), " ")
			if joined != normalized {
				t.Errorf("size=%d: round-trip mismatch\ngot:  %q\nwant: %q", size, joined, normalized)
			}
		}
	}
}

func TestSplit_Deterministic(t *testing.T) {
	text := strings.Repeat("alpha beta gamma delta ", 30)

	first := Split(text, 100)
	second := Split(text, 100)

	if !reflect.DeepEqual(first, second) {
		t.Error("expected identical output for identical input")
	}
}

func TestSplit_SizeBound(t *testing.T) {
	text := strings.Repeat("word ", 200)
	const size = 50

	chunks := Split(text, size)
	for _, c := range chunks {
		words := strings.Fields(c.Text)
		lastLen := len(words[len(words)-1])
		// A chunk closes as soon as it reaches the threshold, so it may
		// exceed it by at most the length of its last word.
		if len(c.Text) > size+lastLen {
			t.Errorf("chunk %d too large: %d chars (limit %d + last word %d)",
				c.Index, len(c.Text), size, lastLen)
		}
	}
}

func TestSplit_OversizedWord(t *testing.T) {
	long := strings.Repeat("x", 600)
	chunks := Split("short "+long+" tail", 500)

	found := false
	for _, c := range chunks {
		if strings.Contains(c.Text, long) {
			found = true
		}
	}
	if !found {
		t.Error("oversized word was split across chunks")
	}
}

func TestSplit_IndexOrder(t *testing.T) {
	chunks := Split(strings.Repeat("one two three ", 50), 40)

	for i, c := range chunks {
		if c.Index != i {
			t.Fatalf("chunk %d has index %d", i, c.Index)
		}
	}
}
