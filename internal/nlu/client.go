package nlu

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"

	"github.com/naiahealth/postop-assistant/pkg/logging"
)

const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

var clientTracer = otel.Tracer("postop.internal.nlu.client")

// ChatMessage is an internal message representation that can include system prompts.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type LLMRequest struct {
	Messages    []ChatMessage
	MaxTokens   int
	Temperature float32
}

type LLMResponse struct {
	Text string
}

// LLMClient is the narrow oracle boundary: text in, text out.
// Implementations may return malformed or low-quality output; callers parse defensively.
type LLMClient interface {
	Complete(ctx context.Context, req LLMRequest) (LLMResponse, error)
}

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// GroqClient talks to Groq's OpenAI-compatible chat completion API.
type GroqClient struct {
	client chatCompleter
	model  string
	logger *logging.Logger
}

// NewGroqClient builds an LLM client against an OpenAI-compatible endpoint.
func NewGroqClient(apiKey, baseURL, model string, logger *logging.Logger) *GroqClient {
	if logger == nil {
		logger = logging.Default()
	}
	if model == "" {
		model = "llama-3.1-8b-instant"
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &GroqClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		logger: logger,
	}
}

// Complete sends a single chat completion request.
func (c *GroqClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	ctx, span := clientTracer.Start(ctx, "nlu.complete")
	defer span.End()

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		span.RecordError(err)
		return LLMResponse{}, fmt.Errorf("nlu: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return LLMResponse{}, errors.New("nlu: chat completion returned no choices")
	}

	c.logger.Debug("nlu completion",
		"model", c.model,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return LLMResponse{Text: strings.TrimSpace(resp.Choices[0].Message.Content)}, nil
}

var _ LLMClient = (*GroqClient)(nil)
