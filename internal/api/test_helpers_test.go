package api

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"learncoach/internal/coach"
	"learncoach/internal/coach/llm"
	"learncoach/internal/observability"
	"learncoach/internal/session"
	"learncoach/internal/storage"
)

// stubProvider returns canned content for chat tests.
type stubProvider struct {
	content   string
	err       error
	available bool
}

func (p *stubProvider) Name() string    { return "stub" }
func (p *stubProvider) Available() bool { return p.available }

func (p *stubProvider) Complete(ctx context.Context, messages []llm.Message, opts llm.Options) (*llm.Response, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &llm.Response{Content: p.content, FinishReason: "stop"}, nil
}

func (p *stubProvider) StreamComplete(ctx context.Context, messages []llm.Message, opts llm.Options) (<-chan llm.StreamEvent, error) {
	if p.err != nil {
		return nil, p.err
	}
	ch := make(chan llm.StreamEvent, 8)
	go func() {
		defer close(ch)
		for _, part := range strings.SplitAfter(p.content, " ") {
			ch <- llm.StreamEvent{Delta: part}
		}
		ch <- llm.StreamEvent{Done: true, FinishReason: "stop"}
	}()
	return ch, nil
}

// fixedRand always returns the same draw so extraction is deterministic.
func fixedRand(v float64) coach.RandSource {
	return func() float64 { return v }
}

// recordingDispatcher captures sent emails.
type recordingDispatcher struct {
	to      string
	subject string
	body    string
	err     error
}

func (d *recordingDispatcher) Send(ctx context.Context, to, subject, htmlBody string) error {
	if d.err != nil {
		return d.err
	}
	d.to, d.subject, d.body = to, subject, htmlBody
	return nil
}

type serverOption func(*testServer)

type testServer struct {
	srv        *Server
	mux        *http.ServeMux
	provider   *stubProvider
	dispatcher *recordingDispatcher
}

func withProviderContent(content string) serverOption {
	return func(ts *testServer) { ts.provider.content = content }
}

func withUnavailableProvider() serverOption {
	return func(ts *testServer) { ts.provider.available = false }
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()
	logger := observability.NewLogger(observability.Config{Level: "error", Format: "text"})
	ctx := context.Background()

	conversations, err := storage.NewConversationStore(ctx, storage.NewMemoryBlobStore(), logger)
	if err != nil {
		t.Fatalf("NewConversationStore: %v", err)
	}
	settings, err := storage.NewSettingsStore(ctx, storage.NewMemoryBlobStore(), logger)
	if err != nil {
		t.Fatalf("NewSettingsStore: %v", err)
	}

	ts := &testServer{
		mux:        http.NewServeMux(),
		provider:   &stubProvider{available: true, content: "체계적인 학습 계획을 추천드립니다. 차근차근 진행해보세요."},
		dispatcher: &recordingDispatcher{},
	}
	for _, opt := range opts {
		opt(ts)
	}

	svc := coach.NewService(ts.provider, coach.NewExtractorWithRand(fixedRand(0.0)), logger)
	ts.srv = NewServer(ts.mux, conversations, settings, svc, session.NewManager(0), ts.dispatcher, logger, nil)
	ts.srv.RegisterRoutes()
	return ts
}
