package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mugeshbabu/docchat/internal/domain"
	"github.com/mugeshbabu/docchat/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterChatMetrics()
	os.Exit(m.Run())
}

// chatCompletionRequest mirrors the OpenAI-compatible chat request shape.
type chatCompletionRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func completionResponse(content string) map[string]any {
	return map[string]any{
		"object": "chat.completion",
		"model":  "test-model",
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
			},
		},
		"usage": map[string]any{
			"prompt_tokens":     20,
			"completion_tokens": 10,
			"total_tokens":      30,
		},
	}
}

func newTestSynthesizer(baseURL string) *Synthesizer {
	return NewSynthesizer(&Config{
		APIKey:    "test-key",
		BaseURL:   baseURL,
		Model:     "test-model",
		MaxTokens: 100,
		Timeout:   5 * time.Second,
		Logger:    zap.NewNop(),
	})
}

func TestSynthesize_Success(t *testing.T) {
	var captured chatCompletionRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completionResponse("The answer."))
	}))
	defer server.Close()

	chunks := []domain.Chunk{
		{Index: 0, Text: "first excerpt"},
		{Index: 1, Text: "second excerpt"},
	}
	history := []domain.Message{
		{Role: domain.RoleUser, Content: "earlier question"},
		{Role: domain.RoleAssistant, Content: "earlier answer"},
	}

	answer, err := newTestSynthesizer(server.URL).Synthesize(
		context.Background(), "What is X?", chunks, history,
	)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if answer != "The answer." {
		t.Errorf("unexpected answer %q", answer)
	}

	// system + 2 history + question
	if len(captured.Messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(captured.Messages))
	}
	if captured.Messages[0].Role != "system" {
		t.Errorf("expected system message first, got %q", captured.Messages[0].Role)
	}
	for _, excerpt := range []string{"first excerpt", "second excerpt"} {
		if !strings.Contains(captured.Messages[0].Content, excerpt) {
			t.Errorf("system prompt missing context %q", excerpt)
		}
	}
	if captured.Messages[1].Role != "user" || captured.Messages[1].Content != "earlier question" {
		t.Errorf("unexpected history message %+v", captured.Messages[1])
	}
	if captured.Messages[2].Role != "assistant" {
		t.Errorf("unexpected history role %q", captured.Messages[2].Role)
	}
	last := captured.Messages[len(captured.Messages)-1]
	if last.Role != "user" || last.Content != "What is X?" {
		t.Errorf("expected the question last, got %+v", last)
	}
}

func TestSynthesize_NoChunks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completionResponse("no context answer"))
	}))
	defer server.Close()

	answer, err := newTestSynthesizer(server.URL).Synthesize(
		context.Background(), "What is X?", nil, nil,
	)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if answer != "no context answer" {
		t.Errorf("unexpected answer %q", answer)
	}
}

func TestSynthesize_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail": "model overloaded"}`))
	}))
	defer server.Close()

	_, err := newTestSynthesizer(server.URL).Synthesize(context.Background(), "q", nil, nil)
	if !errors.Is(err, domain.ErrGeneration) {
		t.Errorf("expected ErrGeneration, got %v", err)
	}
}

func TestSynthesize_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object":  "chat.completion",
			"choices": []any{},
		})
	}))
	defer server.Close()

	_, err := newTestSynthesizer(server.URL).Synthesize(context.Background(), "q", nil, nil)
	if !errors.Is(err, domain.ErrGeneration) {
		t.Errorf("expected ErrGeneration, got %v", err)
	}
}

func TestSynthesize_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	syn := NewSynthesizer(&Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Timeout: 50 * time.Millisecond,
		Logger:  zap.NewNop(),
	})

	_, err := syn.Synthesize(context.Background(), "q", nil, nil)
	if !errors.Is(err, domain.ErrGeneration) {
		t.Errorf("expected ErrGeneration on timeout, got %v", err)
	}
}
