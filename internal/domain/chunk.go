package domain

// Chunk is a bounded contiguous slice of a document's normalized text,
// the unit of retrieval. Index is the zero-based position in source order.
type Chunk struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Texts extracts the text of each chunk, preserving order.
func Texts(chunks []Chunk) []string {
	if len(chunks) == 0 {
		return nil
	}
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}
