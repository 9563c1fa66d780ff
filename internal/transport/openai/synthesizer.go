// Package openai adapts an OpenAI-compatible chat-completion API to the
// answer synthesis capability boundary.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/mugeshbabu/docchat/internal/domain"
	"github.com/mugeshbabu/docchat/internal/metrics"
)

const systemPrompt = "You are a helpful assistant answering questions about a document. " +
	"Ground every answer in the provided context excerpts. " +
	"If the context does not contain the answer, say so."

// Synthesizer generates answers using the OpenAI-compatible chat API.
type Synthesizer struct {
	client    *openai.Client
	model     string
	maxTokens int
	timeout   time.Duration
	logger    *zap.Logger
}

// Config holds the generation provider settings.
type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
	Logger    *zap.Logger
}

// NewSynthesizer creates an OpenAI-compatible answer synthesizer.
func NewSynthesizer(cfg *Config) *Synthesizer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Synthesizer{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		timeout:   cfg.Timeout,
		logger:    cfg.Logger,
	}
}

// Synthesize implements usecase/chat.Synthesizer. The context chunks become
// the system prompt, prior history replays as chat messages, and the
// question goes last. Failures and timeouts wrap domain.ErrGeneration.
func (s *Synthesizer) Synthesize(
	ctx context.Context, question string, chunks []domain.Chunk, history []domain.Message,
) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		Messages:  buildMessages(question, chunks, history),
	}

	start := time.Now()

	resp, err := s.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(s.model, "error").Inc()
		return "", parseAPIError(err)
	}

	if len(resp.Choices) == 0 {
		metrics.GenerationRequestsTotal.WithLabelValues(s.model, "error").Inc()
		return "", fmt.Errorf("empty completion response: %w", domain.ErrGeneration)
	}

	metrics.GenerationRequestsTotal.WithLabelValues(s.model, "success").Inc()
	metrics.GenerationRequestDuration.WithLabelValues(s.model).Observe(duration.Seconds())

	if resp.Usage.TotalTokens > 0 {
		metrics.GenerationTokensTotal.WithLabelValues(s.model, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.GenerationTokensTotal.WithLabelValues(s.model, "completion").Add(float64(resp.Usage.CompletionTokens))
		metrics.GenerationTokensTotal.WithLabelValues(s.model, "total").Add(float64(resp.Usage.TotalTokens))
	}

	return resp.Choices[0].Message.Content, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (s *Synthesizer) HealthCheck(ctx context.Context) error {
	if _, err := s.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func buildMessages(
	question string, chunks []domain.Chunk, history []domain.Message,
) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)

	system := systemPrompt
	if len(chunks) > 0 {
		system += "\n\nContext:\n" + strings.Join(domain.Texts(chunks), "\n\n")
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: system,
	})

	for _, m := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    chatRole(m.Role),
			Content: m.Content,
		})
	}

	return append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: question,
	})
}

func chatRole(role domain.Role) string {
	switch role {
	case domain.RoleAssistant:
		return openai.ChatMessageRoleAssistant
	case domain.RoleSystem:
		return openai.ChatMessageRoleSystem
	default:
		return openai.ChatMessageRoleUser
	}
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrGeneration for correct 502 mapping.
func parseAPIError(err error) error {
	wrap := domain.ErrGeneration

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("completion API error %d: %s: %w",
				reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("completion API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("completion API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("completion request failed: %v: %w", err, wrap)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
