package domain

import (
	"time"
)

// Settings are the user-tunable application preferences.
type Settings struct {
	AutoSave          bool   `json:"autoSave"`
	Notifications     bool   `json:"notifications"`
	EmailReminders    bool   `json:"emailReminders"`
	PreferredLanguage string `json:"preferredLanguage"`
}

// DefaultSettings returns the preferences used before the user changes anything.
func DefaultSettings() Settings {
	return Settings{
		AutoSave:          true,
		Notifications:     true,
		EmailReminders:    false,
		PreferredLanguage: "ko",
	}
}

// Stats summarizes usage across all saved conversations.
type Stats struct {
	TotalConversations   int        `json:"totalConversations"`
	TotalMessages        int        `json:"totalMessages"`
	TotalRecommendations int        `json:"totalRecommendations"`
	LastActiveDate       *time.Time `json:"lastActiveDate,omitempty"`
}
