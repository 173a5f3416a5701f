package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Subscription represents a recipient's standing interest in a specific day/hour
type Subscription struct {
	ID          string    `json:"id"`
	RecipientID string    `json:"recipient_id"`
	Day         string    `json:"day"`
	Hour        string    `json:"hour"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewSubscription validates day and hour and builds a subscription with a fresh ID.
// The hour is normalized to HH:MM; the day must already be canonical.
func NewSubscription(day, hour, recipientID string, now time.Time) (*Subscription, error) {
	day = strings.TrimSpace(day)
	if _, err := ParseDay(day, time.UTC); err != nil {
		return nil, err
	}
	canonical, err := CanonicalHour(hour)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(recipientID) == "" {
		return nil, fmt.Errorf("%w: recipient is required", ErrValidation)
	}

	return &Subscription{
		ID:          uuid.NewString(),
		RecipientID: recipientID,
		Day:         day,
		Hour:        canonical,
		CreatedAt:   now,
	}, nil
}
