// Package conversation persists chat conversations as JSON documents.
package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mugeshbabu/docchat/internal/db"
	"github.com/mugeshbabu/docchat/internal/domain"
)

// store is the consumer interface for conversations (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// Repo implements usecase/chat.ConversationStore. Turn appends for the same
// conversation id serialize on a per-id mutex so a concurrent
// read-modify-write cannot lose a turn.
type Repo struct {
	store     store
	keyPrefix string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a conversation repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{
		store:     s,
		keyPrefix: keyPrefix,
		locks:     make(map[string]*sync.Mutex),
	}
}

// Create persists a fresh empty conversation bound to documentReference.
func (r *Repo) Create(ctx context.Context, documentReference string) (domain.Conversation, error) {
	conv := domain.NewConversation(uuid.New().String(), documentReference, time.Now().UTC())

	if err := r.write(ctx, conv); err != nil {
		return domain.Conversation{}, fmt.Errorf("create conversation: %w", err)
	}
	return conv, nil
}

// Get loads a conversation by id.
func (r *Repo) Get(ctx context.Context, id string) (domain.Conversation, error) {
	raw, err := r.store.JSONGet(ctx, r.key(id), "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.Conversation{}, fmt.Errorf("%w: %s", domain.ErrConversationNotFound, id)
		}
		return domain.Conversation{}, fmt.Errorf("%w: json.get %s: %w", domain.ErrPersistence, id, err)
	}

	// JSON.GET with a $ path wraps the document in an array.
	var records []conversationDTO
	if err := json.Unmarshal(raw, &records); err != nil {
		return domain.Conversation{}, fmt.Errorf("%w: unmarshal conversation %s: %w", domain.ErrPersistence, id, err)
	}
	if len(records) == 0 {
		return domain.Conversation{}, fmt.Errorf("%w: %s", domain.ErrConversationNotFound, id)
	}
	return records[0].toDomain(), nil
}

// AppendTurn re-reads the conversation under its per-id lock, appends the
// user and assistant messages, and replaces the stored record. An append
// targeting a since-deleted id fails with ErrPersistence.
func (r *Repo) AppendTurn(ctx context.Context, id, question, answer string) (domain.Conversation, error) {
	lock := r.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	exists, err := r.store.Exists(ctx, r.key(id))
	if err != nil {
		return domain.Conversation{}, fmt.Errorf("%w: check exists %s: %w", domain.ErrPersistence, id, err)
	}
	if !exists {
		return domain.Conversation{}, fmt.Errorf("%w: conversation %s deleted before update", domain.ErrPersistence, id)
	}

	conv, err := r.Get(ctx, id)
	if err != nil {
		return domain.Conversation{}, err
	}

	updated := conv.AppendTurn(question, answer, time.Now().UTC())
	if err := r.write(ctx, updated); err != nil {
		return domain.Conversation{}, fmt.Errorf("append turn %s: %w", id, err)
	}
	return updated, nil
}

func (r *Repo) write(ctx context.Context, conv domain.Conversation) error {
	data, err := json.Marshal(fromDomain(conv))
	if err != nil {
		return fmt.Errorf("%w: marshal conversation: %w", domain.ErrPersistence, err)
	}
	if err := r.store.JSONSet(ctx, r.key(conv.ID), "$", data); err != nil {
		return fmt.Errorf("%w: json.set %s: %w", domain.ErrPersistence, conv.ID, err)
	}
	return nil
}

func (r *Repo) key(id string) string {
	return r.keyPrefix + "conversation:" + id
}

func (r *Repo) lockFor(id string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[id] = lock
	}
	return lock
}
