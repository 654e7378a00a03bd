package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"learncoach/internal/domain"
	"learncoach/internal/observability"
)

const (
	titleMaxRunes   = 30
	previewMaxRunes = 100

	// Shown as the preview when a conversation has no coach reply yet.
	emptyPreview = "새로운 상담 내용"
)

// SortOrder selects how List orders the collection.
type SortOrder string

const (
	SortNewest SortOrder = "newest"
	SortOldest SortOrder = "oldest"
	SortTitle  SortOrder = "title"
)

// ConversationStore owns the durable collection of saved conversations. It is
// backed by a single serialized blob: every mutation rewrites the whole
// collection, and the backing blob is consistent with memory before any
// mutating call returns. The in-memory canonical order is newest-first.
//
// A single process is assumed to own the blob. Concurrent processes writing
// the same backing store race with last-write-wins semantics and no detection.
type ConversationStore struct {
	mu      sync.RWMutex
	blobs   BlobStore
	logger  observability.Logger
	records []domain.ConversationRecord
}

// NewConversationStore creates a store over the given blob primitive and loads
// the existing collection. A missing blob yields an empty collection. A blob
// that fails to deserialize is logged and discarded rather than propagated:
// the history is cache-like state and availability wins over strictness.
func NewConversationStore(ctx context.Context, blobs BlobStore, logger observability.Logger) (*ConversationStore, error) {
	if logger == nil {
		logger = observability.NewLogger(observability.DefaultConfig())
	}
	s := &ConversationStore{
		blobs:  blobs,
		logger: logger.WithComponent("conversations"),
	}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// load reads and deserializes the collection blob.
func (s *ConversationStore) load(ctx context.Context) error {
	raw, ok, err := s.blobs.Get(ctx, ConversationsKey)
	if err != nil {
		return fmt.Errorf("%w: read conversations blob: %v", ErrUnavailable, err)
	}
	if !ok {
		s.records = nil
		return nil
	}
	var records []domain.ConversationRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		s.logger.WarnContext(ctx, "conversation history corrupt; resetting to empty", "error", err)
		s.records = nil
		return nil
	}
	s.records = records
	return nil
}

// Ping probes the backing blob store.
func (s *ConversationStore) Ping(ctx context.Context) error {
	if _, _, err := s.blobs.Get(ctx, ConversationsKey); err != nil {
		return fmt.Errorf("%w: ping conversations blob: %v", ErrUnavailable, err)
	}
	return nil
}

// persistLocked serializes the given collection and replaces the blob. The
// caller must hold the write lock. On failure the in-memory collection is not
// swapped, so prior state stays intact.
func (s *ConversationStore) persistLocked(ctx context.Context, records []domain.ConversationRecord) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal conversations: %w", err)
	}
	if err := s.blobs.Set(ctx, ConversationsKey, string(raw)); err != nil {
		return fmt.Errorf("%w: write conversations blob: %v", ErrUnavailable, err)
	}
	s.records = records
	return nil
}

// Save constructs a new record from the session contents, prepends it to the
// collection, persists, and returns the new id.
func (s *ConversationStore) Save(ctx context.Context, input domain.UserInput, messages []domain.Message, recs []domain.Recommendation) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	rec := domain.ConversationRecord{
		ID:              uuid.New().String(),
		Title:           deriveTitle(input.LearningGoal),
		Preview:         derivePreview(messages, emptyPreview),
		CreatedAt:       now,
		UpdatedAt:       now,
		Messages:        copyMessages(messages),
		Recommendations: copyRecommendations(recs),
		UserInput:       copyUserInput(input),
	}

	updated := make([]domain.ConversationRecord, 0, len(s.records)+1)
	updated = append(updated, rec)
	updated = append(updated, s.records...)

	if err := s.persistLocked(ctx, updated); err != nil {
		return "", err
	}
	return rec.ID, nil
}

// Update replaces the messages and recommendations of the record with the
// given id, recomputes the preview, and bumps updatedAt. An unknown id is a
// silent no-op: callers only pass ids they obtained from Save, and nothing is
// rewritten in that case.
func (s *ConversationStore) Update(ctx context.Context, id string, messages []domain.Message, recs []domain.Recommendation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.records {
		if s.records[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	updated := make([]domain.ConversationRecord, len(s.records))
	copy(updated, s.records)

	rec := updated[idx]
	rec.Messages = copyMessages(messages)
	rec.Recommendations = copyRecommendations(recs)
	rec.Preview = derivePreview(messages, rec.Preview)
	rec.UpdatedAt = time.Now().UTC()
	updated[idx] = rec

	return s.persistLocked(ctx, updated)
}

// Delete removes the record with the given id. Deleting an unknown id is a
// no-op, so Delete is idempotent.
func (s *ConversationStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := make([]domain.ConversationRecord, 0, len(s.records))
	for _, rec := range s.records {
		if rec.ID != id {
			updated = append(updated, rec)
		}
	}
	if len(updated) == len(s.records) {
		return nil
	}
	return s.persistLocked(ctx, updated)
}

// Clear empties the collection and removes the backing blob entirely. A bare
// removal, not an empty write: the distinction matters for storage-quota
// accounting.
func (s *ConversationStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.blobs.Remove(ctx, ConversationsKey); err != nil {
		return fmt.Errorf("%w: remove conversations blob: %v", ErrUnavailable, err)
	}
	s.records = nil
	return nil
}

// Get returns a copy of the record with the given id.
func (s *ConversationStore) Get(_ context.Context, id string) (*domain.ConversationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.records {
		if s.records[i].ID == id {
			rec := copyRecord(s.records[i])
			return &rec, nil
		}
	}
	return nil, ErrNotFound
}

// List returns the collection in the requested order. Sorting is stable, so
// records with equal keys keep their newest-first collection order.
func (s *ConversationStore) List(order SortOrder) []domain.ConversationRecord {
	s.mu.RLock()
	out := make([]domain.ConversationRecord, len(s.records))
	for i := range s.records {
		out[i] = copyRecord(s.records[i])
	}
	s.mu.RUnlock()

	switch order {
	case SortOldest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	case SortTitle:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	case SortNewest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	}
	return out
}

// Search returns records matching the query with a case-insensitive substring
// test against title, preview, learning goal, every interest label, and every
// message's content. A blank query returns the full collection unfiltered.
func (s *ConversationStore) Search(query string) []domain.ConversationRecord {
	if strings.TrimSpace(query) == "" {
		return s.List("")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(query)
	var out []domain.ConversationRecord
	for i := range s.records {
		if recordMatches(&s.records[i], q) {
			out = append(out, copyRecord(s.records[i]))
		}
	}
	if out == nil {
		out = []domain.ConversationRecord{}
	}
	return out
}

// Stats aggregates usage counts across the collection.
func (s *ConversationStore) Stats() domain.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := domain.Stats{TotalConversations: len(s.records)}
	for i := range s.records {
		st.TotalMessages += len(s.records[i].Messages)
		st.TotalRecommendations += len(s.records[i].Recommendations)
		if st.LastActiveDate == nil || s.records[i].UpdatedAt.After(*st.LastActiveDate) {
			t := s.records[i].UpdatedAt
			st.LastActiveDate = &t
		}
	}
	return st
}

func recordMatches(rec *domain.ConversationRecord, q string) bool {
	if strings.Contains(strings.ToLower(rec.Title), q) ||
		strings.Contains(strings.ToLower(rec.Preview), q) ||
		strings.Contains(strings.ToLower(rec.UserInput.LearningGoal), q) {
		return true
	}
	for _, interest := range rec.UserInput.Interests {
		if strings.Contains(strings.ToLower(interest), q) {
			return true
		}
	}
	for i := range rec.Messages {
		if strings.Contains(strings.ToLower(rec.Messages[i].Content), q) {
			return true
		}
	}
	return false
}

// deriveTitle is the first 30 characters of the learning goal, ellipsis-
// truncated when longer.
func deriveTitle(goal string) string {
	return truncateRunes(goal, titleMaxRunes)
}

// derivePreview is the first 100 characters of the first coach message,
// ellipsis-truncated; fallback is used when no coach message exists yet.
func derivePreview(messages []domain.Message, fallback string) string {
	for i := range messages {
		if messages[i].Role == domain.RoleAI {
			return truncateRunes(messages[i].Content, previewMaxRunes)
		}
	}
	return fallback
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

func copyUserInput(in domain.UserInput) domain.UserInput {
	out := in
	out.Interests = append([]string(nil), in.Interests...)
	return out
}

func copyMessages(msgs []domain.Message) []domain.Message {
	out := make([]domain.Message, len(msgs))
	copy(out, msgs)
	return out
}

func copyRecommendations(recs []domain.Recommendation) []domain.Recommendation {
	out := make([]domain.Recommendation, len(recs))
	copy(out, recs)
	return out
}

func copyRecord(rec domain.ConversationRecord) domain.ConversationRecord {
	out := rec
	out.Messages = copyMessages(rec.Messages)
	out.Recommendations = copyRecommendations(rec.Recommendations)
	out.UserInput = copyUserInput(rec.UserInput)
	return out
}
