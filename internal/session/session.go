// Package session holds transient per-user coaching state between HTTP
// requests. Sessions live in memory only; durable state goes through the
// conversation store when the client asks for it.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"learncoach/internal/domain"
	"learncoach/internal/storage"
)

// View names the screen the client is on. Mirrors the client-side state so a
// reconnecting client can resume where it left off.
type View string

const (
	ViewInput   View = "input"
	ViewChat    View = "chat"
	ViewHistory View = "history"
)

// Session is the transient state of one coaching dialogue.
type Session struct {
	mu sync.Mutex

	id              string
	userInput       domain.UserInput
	messages        []domain.Message
	recommendations []domain.Recommendation
	conversationID  string
	view            View
	lastActive      time.Time
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

func (s *Session) touch() { s.lastActive = time.Now() }

// SubmitInput starts a fresh dialogue from the learner profile. Any prior
// transient state is discarded.
func (s *Session) SubmitInput(input domain.UserInput) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userInput = input
	s.messages = nil
	s.recommendations = nil
	s.conversationID = ""
	s.view = ViewChat
	s.touch()
}

// AppendUserMessage records an outgoing learner message and returns it.
func (s *Session) AppendUserMessage(content string) domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := domain.Message{
		ID:        uuid.New().String(),
		Role:      domain.RoleUser,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	s.messages = append(s.messages, msg)
	s.touch()
	return msg
}

// ApplyAITurn appends the coach message and replaces the current
// recommendation set with the turn's batch.
func (s *Session) ApplyAITurn(resp *domain.ChatResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, resp.Message)
	s.recommendations = resp.Recommendations
	s.touch()
}

// Persist writes the session to the conversation store. The first call saves
// a new record and remembers its id; later calls update that record in place.
func (s *Session) Persist(ctx context.Context, store *storage.ConversationStore) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.conversationID == "" {
		id, err := store.Save(ctx, s.userInput, s.messages, s.recommendations)
		if err != nil {
			return "", err
		}
		s.conversationID = id
		return id, nil
	}
	if err := store.Update(ctx, s.conversationID, s.messages, s.recommendations); err != nil {
		return "", err
	}
	return s.conversationID, nil
}

// LoadRecord hydrates the session from a stored conversation so the dialogue
// can continue where it left off.
func (s *Session) LoadRecord(rec *domain.ConversationRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userInput = rec.UserInput
	s.messages = append([]domain.Message(nil), rec.Messages...)
	s.recommendations = append([]domain.Recommendation(nil), rec.Recommendations...)
	s.conversationID = rec.ID
	s.view = ViewChat
	s.touch()
}

// SetView records the client's current screen.
func (s *Session) SetView(v View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = v
	s.touch()
}

// Snapshot is a copy of the session state safe to hand to callers.
type Snapshot struct {
	ID              string                  `json:"id"`
	UserInput       domain.UserInput        `json:"userInput"`
	Messages        []domain.Message        `json:"messages"`
	Recommendations []domain.Recommendation `json:"recommendations"`
	ConversationID  string                  `json:"conversationId,omitempty"`
	View            View                    `json:"view"`
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:              s.id,
		UserInput:       s.userInput,
		Messages:        append([]domain.Message(nil), s.messages...),
		Recommendations: append([]domain.Recommendation(nil), s.recommendations...),
		ConversationID:  s.conversationID,
		View:            s.view,
	}
}

// History returns the dialogue so far for prompt building.
func (s *Session) History() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Message(nil), s.messages...)
}

// UserInput returns the learner profile the session was started with.
func (s *Session) UserInput() domain.UserInput {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userInput
}

// Manager hosts active sessions keyed by id and evicts ones idle past the
// TTL.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
}

// NewManager creates a session manager. TTL <= 0 disables expiry.
func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// Get returns the session with the given id, if it exists.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// GetOrCreate returns the session with the given id, creating one when the id
// is empty or unknown.
func (m *Manager) GetOrCreate(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s
	}
	if id == "" {
		id = uuid.New().String()
	}
	s := &Session{id: id, view: ViewInput, lastActive: time.Now()}
	m.sessions[id] = s
	return s
}

// Delete removes a session.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Len returns the number of active sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Prune evicts sessions idle past the TTL and returns how many were removed.
func (m *Manager) Prune() int {
	if m.ttl <= 0 {
		return 0
	}
	cutoff := time.Now().Add(-m.ttl)
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		s.mu.Lock()
		idle := s.lastActive.Before(cutoff)
		s.mu.Unlock()
		if idle {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Run prunes expired sessions on the given interval until the context is
// cancelled.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Prune()
		}
	}
}
