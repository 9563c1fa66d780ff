// Package chunker splits normalized text into bounded, order-preserving segments.
package chunker

import (
	"strings"

	"github.com/mugeshbabu/docchat/internal/domain"
)

// DefaultChunkSize is the maximum accumulated chunk size in characters.
const DefaultChunkSize = 500

// Split breaks text into whitespace-delimited word chunks. Words accumulate
// into the current chunk (word length plus one separator each) until the
// running size reaches maxSize, then a new chunk starts. The trailing partial
// chunk is flushed. Deterministic, pure function of its inputs.
//
// A single word longer than maxSize forms its own chunk; words are never
// split. Empty or whitespace-only text yields nil.
func Split(text string, maxSize int) []domain.Chunk {
	if maxSize <= 0 {
		maxSize = DefaultChunkSize
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []domain.Chunk
	var current []string
	size := 0

	for _, word := range words {
		current = append(current, word)
		size += len(word) + 1
		if size >= maxSize {
			chunks = append(chunks, domain.Chunk{
				Index: len(chunks),
				Text:  strings.Join(current, " "),
			})
			current = nil
			size = 0
		}
	}

	if len(current) > 0 {
		chunks = append(chunks, domain.Chunk{
			Index: len(chunks),
			Text:  strings.Join(current, " "),
		})
	}

	return chunks
}
