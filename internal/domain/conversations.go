package domain

import (
	"time"
)

// MessageRole identifies which side of the dialogue produced a message.
type MessageRole string

const (
	RoleUser MessageRole = "user"
	RoleAI   MessageRole = "ai"
)

// UserInput holds the session parameters the user submits through the intake
// form. It is immutable for the duration of a session and snapshotted into a
// ConversationRecord at save time.
type UserInput struct {
	LearningGoal    string   `json:"learningGoal"`
	Interests       []string `json:"interests"`
	CurrentConcerns string   `json:"currentConcerns"`
	LearningLevel   string   `json:"learningLevel,omitempty"`
	TimeAvailable   string   `json:"timeAvailable,omitempty"`
	Email           string   `json:"email,omitempty"`
}

// Message is one turn of dialogue. Messages are never mutated after creation;
// ordering within a conversation is insertion order and is chronological.
type Message struct {
	ID        string      `json:"id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

// RecommendationCategory classifies the kind of suggestion.
type RecommendationCategory string

const (
	CategoryResource RecommendationCategory = "resource"
	CategoryActivity RecommendationCategory = "activity"
	CategoryStrategy RecommendationCategory = "strategy"
)

// RecommendationPriority indicates urgency.
type RecommendationPriority string

const (
	PriorityHigh   RecommendationPriority = "high"
	PriorityMedium RecommendationPriority = "medium"
	PriorityLow    RecommendationPriority = "low"
)

// Recommendation is a structured suggestion derived from a coach reply.
type Recommendation struct {
	ID          string                 `json:"id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Category    RecommendationCategory `json:"category"`
	Priority    RecommendationPriority `json:"priority"`
}

// ConversationRecord is a persisted coaching session. ID and CreatedAt are
// immutable after creation; Title and Preview are derived from the input and
// messages, never edited independently.
type ConversationRecord struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	Preview         string           `json:"preview"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
	Messages        []Message        `json:"messages"`
	Recommendations []Recommendation `json:"recommendations"`
	UserInput       UserInput        `json:"userInput"`
}

// ChatRequest is the input for the chat endpoints: the session parameters plus
// the ordered prior-turn history. Message is the follow-up text for an ongoing
// conversation; it is empty on the opening turn.
type ChatRequest struct {
	UserInput           UserInput `json:"userInput"`
	ConversationHistory []Message `json:"conversationHistory,omitempty"`
	Message             string    `json:"message,omitempty"`
	SessionID           string    `json:"sessionId,omitempty"`
}

// ChatResponse is one completed coach turn.
type ChatResponse struct {
	Message         Message          `json:"message"`
	Recommendations []Recommendation `json:"recommendations"`
	SessionID       string           `json:"sessionId,omitempty"`
}

// SaveConversationRequest is the input for persisting a session.
type SaveConversationRequest struct {
	UserInput       UserInput        `json:"userInput"`
	Messages        []Message        `json:"messages"`
	Recommendations []Recommendation `json:"recommendations"`
}

// UpdateConversationRequest replaces the messages and recommendations of an
// already-saved conversation.
type UpdateConversationRequest struct {
	Messages        []Message        `json:"messages"`
	Recommendations []Recommendation `json:"recommendations"`
}

// ConversationsListResponse is the list/search response.
type ConversationsListResponse struct {
	Items []ConversationRecord `json:"items"`
	Total int                  `json:"total"`
}
