// Package validation checks inbound request payloads before they reach the
// coach or the store.
package validation

import (
	"fmt"
	"net/mail"
	"strings"

	"learncoach/internal/domain"
	"learncoach/internal/storage"
)

// UserInput checks the learner profile: goal and concerns are required and at
// least one interest must be given. Errors wrap storage.ErrValidation so
// handlers can map them to 400.
func UserInput(input domain.UserInput) error {
	if strings.TrimSpace(input.LearningGoal) == "" {
		return fmt.Errorf("%w: learningGoal is required", storage.ErrValidation)
	}
	if strings.TrimSpace(input.CurrentConcerns) == "" {
		return fmt.Errorf("%w: currentConcerns is required", storage.ErrValidation)
	}
	if len(nonBlank(input.Interests)) == 0 {
		return fmt.Errorf("%w: at least one interest is required", storage.ErrValidation)
	}
	if input.Email != "" {
		if err := Email(input.Email); err != nil {
			return err
		}
	}
	return nil
}

// Email checks an address for RFC 5322 shape.
func Email(addr string) error {
	parsed, err := mail.ParseAddress(strings.TrimSpace(addr))
	if err != nil {
		return fmt.Errorf("%w: invalid email address", storage.ErrValidation)
	}
	// Reject display-name forms; only the bare address is accepted.
	if parsed.Address != strings.TrimSpace(addr) {
		return fmt.Errorf("%w: invalid email address", storage.ErrValidation)
	}
	return nil
}

func nonBlank(items []string) []string {
	out := items[:0:0]
	for _, s := range items {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
