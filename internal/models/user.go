package models

import "time"

// UserProfile is the users/{uid} document. Identity itself is managed by the
// external auth service; this only carries reminder preferences.
type UserProfile struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	DisplayName      string    `json:"displayName"`
	RemindersEnabled bool      `json:"remindersEnabled"`
	UpdatedAt        time.Time `json:"updatedAt"`
}
