package coach

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"learncoach/internal/coach/llm"
	"learncoach/internal/domain"
	"learncoach/internal/observability"
)

// ErrProviderUnavailable is returned when no LLM provider is configured.
var ErrProviderUnavailable = errors.New("llm provider not configured")

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("empty response from model")

// Service orchestrates coaching turns: it builds the prompt, calls the model,
// and derives recommendations from the reply.
type Service struct {
	provider  llm.Provider
	extractor *Extractor
	logger    observability.Logger
}

// NewService creates a coaching service.
func NewService(provider llm.Provider, extractor *Extractor, logger observability.Logger) *Service {
	if extractor == nil {
		extractor = NewExtractor()
	}
	return &Service{
		provider:  provider,
		extractor: extractor,
		logger:    logger.WithComponent("coach"),
	}
}

// Available returns true if the LLM provider is configured and ready.
func (s *Service) Available() bool {
	return s.provider != nil && s.provider.Available()
}

// Extract exposes the recommendation heuristics for callers that already
// hold coach text.
func (s *Service) Extract(response string) []domain.Recommendation {
	return s.extractor.Extract(response)
}

func (s *Service) buildMessages(req domain.ChatRequest) []llm.Message {
	userPrompt := buildUserPrompt(req.UserInput, req.ConversationHistory)
	if m := strings.TrimSpace(req.Message); m != "" {
		userPrompt += "\n\n사용자 추가 질문: " + m
	}
	return []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	}
}

func (s *Service) finishTurn(content string) *domain.ChatResponse {
	msg := domain.Message{
		ID:        uuid.New().String(),
		Role:      domain.RoleAI,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	return &domain.ChatResponse{
		Message:         msg,
		Recommendations: s.extractor.Extract(content),
	}
}

// Chat runs one complete coaching turn and returns the coach message plus
// extracted recommendations.
func (s *Service) Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	if !s.Available() {
		return nil, ErrProviderUnavailable
	}

	start := time.Now()
	resp, err := s.provider.Complete(ctx, s.buildMessages(req), llm.Options{})
	if err != nil {
		return nil, fmt.Errorf("complete: %w", err)
	}
	if strings.TrimSpace(resp.Content) == "" {
		return nil, ErrEmptyResponse
	}

	s.logger.InfoContext(ctx, "chat turn completed",
		"provider", s.provider.Name(),
		"duration_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.PromptTokens,
		"output_tokens", resp.OutputTokens,
	)
	return s.finishTurn(resp.Content), nil
}

// StreamEvent is one item of a streamed coaching turn. Delta events carry
// incremental text; the final event carries either the assembled response or
// an error, then the channel closes.
type StreamEvent struct {
	Delta    string
	Response *domain.ChatResponse
	Err      error
}

// StreamChat runs a coaching turn with incremental delivery. Callers read
// the channel until close; the last event holds the full response with
// recommendations, or the stream error.
func (s *Service) StreamChat(ctx context.Context, req domain.ChatRequest) (<-chan StreamEvent, error) {
	if !s.Available() {
		return nil, ErrProviderUnavailable
	}

	events, err := s.provider.StreamComplete(ctx, s.buildMessages(req), llm.Options{})
	if err != nil {
		return nil, fmt.Errorf("stream complete: %w", err)
	}

	out := make(chan StreamEvent, 64)
	go func() {
		defer close(out)
		var full strings.Builder
		for evt := range events {
			if evt.Delta != "" {
				full.WriteString(evt.Delta)
				select {
				case out <- StreamEvent{Delta: evt.Delta}:
				case <-ctx.Done():
					return
				}
			}
			if evt.Done {
				break
			}
		}
		content := full.String()
		if strings.TrimSpace(content) == "" {
			out <- StreamEvent{Err: ErrEmptyResponse}
			return
		}
		out <- StreamEvent{Response: s.finishTurn(content)}
	}()
	return out, nil
}
