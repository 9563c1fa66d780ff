package chat

import (
	"context"

	"github.com/mugeshbabu/docchat/internal/domain"
)

// ConversationStore defines the persistence contract for conversations.
type ConversationStore interface {
	Create(ctx context.Context, documentReference string) (domain.Conversation, error)
	Get(ctx context.Context, id string) (domain.Conversation, error)
	AppendTurn(ctx context.Context, id, question, answer string) (domain.Conversation, error)
}

// ChunkSource resolves a document reference to its chunk sequence.
type ChunkSource interface {
	Chunks(ctx context.Context, reference string) ([]domain.Chunk, error)
}

// Ranker selects the most relevant chunks for a query.
type Ranker interface {
	Rank(query string, chunks []domain.Chunk, topK int) []domain.Chunk
}

// Synthesizer generates an answer from ranked chunks and history.
type Synthesizer interface {
	Synthesize(ctx context.Context, question string, chunks []domain.Chunk, history []domain.Message) (string, error)
}
