// Package doccache caches a document's chunk sequence in a key-value store,
// amortizing fetch and parse work across requests.
package doccache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/mugeshbabu/docchat/internal/chunker"
	"github.com/mugeshbabu/docchat/internal/db"
	"github.com/mugeshbabu/docchat/internal/domain"
)

// Extractor fetches a document reference and returns its plain text.
type Extractor interface {
	Extract(ctx context.Context, reference string) (string, error)
}

// store is the consumer interface for the chunk cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Repo resolves a document reference to its chunk sequence, caching the
// result with a TTL. Concurrent misses for the same reference are coalesced
// into a single fetch.
type Repo struct {
	extractor  Extractor
	store      store
	chunkSize  int
	ttl        time.Duration
	keyPrefix  string
	group      singleflight.Group
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a chunk cache repository.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	extractor Extractor,
	s store,
	chunkSize int,
	ttl time.Duration,
	keyPrefix string,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *Repo {
	if chunkSize <= 0 {
		chunkSize = chunker.DefaultChunkSize
	}
	return &Repo{
		extractor:  extractor,
		store:      s,
		chunkSize:  chunkSize,
		ttl:        ttl,
		keyPrefix:  keyPrefix,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Chunks returns the cached chunk sequence for reference, or fetches,
// chunks, and caches it on a miss. A fetch failure propagates and leaves
// the cache untouched.
func (r *Repo) Chunks(ctx context.Context, reference string) ([]domain.Chunk, error) {
	key := r.cacheKey(reference)

	if chunks, ok := r.getFromCache(ctx, key); ok {
		r.incCache("hit")
		return chunks, nil
	}
	r.incCache("miss")

	v, err, _ := r.group.Do(reference, func() (any, error) {
		// A waiter may arrive after the winner populated the cache.
		if chunks, ok := r.getFromCache(ctx, key); ok {
			return chunks, nil
		}

		text, err := r.extractor.Extract(ctx, reference)
		if err != nil {
			return nil, err
		}
		chunks := chunker.Split(text, r.chunkSize)

		r.putToCache(ctx, key, chunks)
		return chunks, nil
	})
	if err != nil {
		return nil, fmt.Errorf("resolve chunks for %s: %w", reference, err)
	}

	chunks, ok := v.([]domain.Chunk)
	if !ok {
		return nil, fmt.Errorf("unexpected chunk cache value type %T", v)
	}
	return chunks, nil
}

func (r *Repo) incCache(result string) {
	if r.cacheTotal != nil {
		r.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (r *Repo) cacheKey(reference string) string {
	return r.keyPrefix + "doc_chunks:" + reference
}

func (r *Repo) getFromCache(ctx context.Context, key string) ([]domain.Chunk, bool) {
	data, err := r.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			r.logger.Warn("Failed to read chunk cache", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var texts []string
	if err := json.Unmarshal(data, &texts); err != nil {
		r.logger.Warn("Failed to decode cached chunks", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{Index: i, Text: text}
	}
	return chunks, true
}

// putToCache stores the chunk texts. Cache write failures degrade to a log
// line; the freshly computed chunks still serve the request.
func (r *Repo) putToCache(ctx context.Context, key string, chunks []domain.Chunk) {
	data, err := json.Marshal(domain.Texts(chunks))
	if err != nil {
		r.logger.Warn("Failed to encode chunks for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := r.store.SetWithTTL(ctx, key, data, r.ttl); err != nil {
		r.logger.Warn("Failed to cache chunks", zap.String("key", key), zap.Error(err))
	}
}
