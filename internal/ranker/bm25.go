// Package ranker scores document chunks against a query with BM25.
package ranker

import (
	"math"
	"sort"
	"strings"

	"github.com/mugeshbabu/docchat/internal/domain"
)

// Conventional BM25 parameters.
const (
	DefaultK1 = 1.5
	DefaultB  = 0.75
)

// DefaultTopK is the number of chunks selected for generation.
const DefaultTopK = 3

// Ranker selects the most relevant chunks for a query using BM25 over
// whitespace tokens. No stemming or stopword removal is applied, keeping
// ranking reproducible.
type Ranker struct {
	k1 float64
	b  float64
}

// New creates a Ranker with conventional BM25 parameters.
func New() *Ranker {
	return &Ranker{k1: DefaultK1, b: DefaultB}
}

// Rank returns up to topK chunks ordered best to worst. Ties keep the
// original chunk order. An empty corpus returns nil without building
// the statistical model.
func (r *Ranker) Rank(query string, chunks []domain.Chunk, topK int) []domain.Chunk {
	if len(chunks) == 0 || topK <= 0 {
		return nil
	}

	model := buildModel(chunks)

	queryTerms := strings.Fields(query)
	scores := make([]float64, len(chunks))
	for i := range chunks {
		scores[i] = model.score(queryTerms, i)
	}

	order := make([]int, len(chunks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if topK > len(order) {
		topK = len(order)
	}
	ranked := make([]domain.Chunk, topK)
	for i := 0; i < topK; i++ {
		ranked[i] = chunks[order[i]]
	}
	return ranked
}

// model holds corpus statistics: per-chunk term frequencies, chunk lengths,
// document frequencies, and the average chunk length.
type model struct {
	termFreqs []map[string]int
	docLens   []int
	docFreq   map[string]int
	avgDocLen float64
	k1        float64
	b         float64
}

func buildModel(chunks []domain.Chunk) *model {
	m := &model{
		termFreqs: make([]map[string]int, len(chunks)),
		docLens:   make([]int, len(chunks)),
		docFreq:   make(map[string]int),
		k1:        DefaultK1,
		b:         DefaultB,
	}

	total := 0
	for i, chunk := range chunks {
		tokens := strings.Fields(chunk.Text)
		tf := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			tf[tok]++
		}
		for term := range tf {
			m.docFreq[term]++
		}
		m.termFreqs[i] = tf
		m.docLens[i] = len(tokens)
		total += len(tokens)
	}
	m.avgDocLen = float64(total) / float64(len(chunks))
	return m
}

// score computes the BM25 score of chunk i against the query terms.
func (m *model) score(queryTerms []string, i int) float64 {
	if m.avgDocLen == 0 {
		return 0
	}

	n := float64(len(m.termFreqs))
	lenNorm := 1 - m.b + m.b*float64(m.docLens[i])/m.avgDocLen

	var s float64
	for _, term := range queryTerms {
		tf := float64(m.termFreqs[i][term])
		if tf == 0 {
			continue
		}
		df := float64(m.docFreq[term])
		idf := math.Log(1 + (n-df+0.5)/(df+0.5))
		s += idf * tf * (m.k1 + 1) / (tf + m.k1*lenNorm)
	}
	return s
}
