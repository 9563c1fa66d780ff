// Package chat orchestrates the retrieval-augmented question-answering
// pipeline: resolve conversation, fetch chunks, rank, generate, persist.
package chat

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mugeshbabu/docchat/internal/domain"
	"github.com/mugeshbabu/docchat/internal/logger"
)

// Request carries one chat turn. ConversationID is empty on the first turn.
type Request struct {
	DocumentReference string
	Question          string
	ConversationID    string
}

// Response is the completed turn with source chunks echoed for traceability.
type Response struct {
	Answer         string
	SourceChunks   []string
	ConversationID string
}

// Service runs the chat pipeline.
type Service struct {
	conversations ConversationStore
	chunks        ChunkSource
	ranker        Ranker
	synthesizer   Synthesizer
	topK          int
}

// New creates a chat service.
func New(conversations ConversationStore, chunks ChunkSource, ranker Ranker, synthesizer Synthesizer) *Service {
	return &Service{
		conversations: conversations,
		chunks:        chunks,
		ranker:        ranker,
		synthesizer:   synthesizer,
		topK:          3,
	}
}

// WithTopK configures how many ranked chunks feed generation.
func (s *Service) WithTopK(topK int) *Service {
	if topK > 0 {
		s.topK = topK
	}
	return s
}

// Chat executes one request through the pipeline. Stages run strictly in
// order; any stage failure aborts without partial persistence, so a failed
// turn never leaves a user-only message in the conversation.
func (s *Service) Chat(ctx context.Context, req Request) (Response, error) {
	log := logger.FromContext(ctx)

	// Resolve before any chunk work: an unknown conversation id fails fast.
	conv, err := s.resolveConversation(ctx, req)
	if err != nil {
		return Response{}, err
	}

	chunks, err := s.chunks.Chunks(ctx, req.DocumentReference)
	if err != nil {
		return Response{}, fmt.Errorf("fetch chunks: %w", err)
	}

	ranked := s.ranker.Rank(req.Question, chunks, s.topK)
	log.Debug("ranked context chunks",
		zap.String("conversation_id", conv.ID),
		zap.Int("corpus_size", len(chunks)),
		zap.Int("selected", len(ranked)),
	)

	answer, err := s.synthesizer.Synthesize(ctx, req.Question, ranked, conv.Messages)
	if err != nil {
		return Response{}, fmt.Errorf("generate answer: %w", err)
	}

	if _, err := s.conversations.AppendTurn(ctx, conv.ID, req.Question, answer); err != nil {
		return Response{}, fmt.Errorf("persist turn: %w", err)
	}

	return Response{
		Answer:         answer,
		SourceChunks:   domain.Texts(ranked),
		ConversationID: conv.ID,
	}, nil
}

func (s *Service) resolveConversation(ctx context.Context, req Request) (domain.Conversation, error) {
	if req.ConversationID != "" {
		conv, err := s.conversations.Get(ctx, req.ConversationID)
		if err != nil {
			return domain.Conversation{}, fmt.Errorf("resolve conversation: %w", err)
		}
		return conv, nil
	}

	conv, err := s.conversations.Create(ctx, req.DocumentReference)
	if err != nil {
		return domain.Conversation{}, fmt.Errorf("create conversation: %w", err)
	}
	return conv, nil
}
