package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/Dan9191/family-ledger/internal/models"
)

type ProfileInput struct {
	Email            string `json:"email"`
	DisplayName      string `json:"displayName"`
	RemindersEnabled bool   `json:"remindersEnabled"`
}

// GetProfile returns the user's profile, or an empty one if none was saved yet.
func (s *Service) GetProfile(ctx context.Context, uid string) (*models.UserProfile, error) {
	p, err := s.repo.GetProfile(ctx, uid)
	if errors.Is(err, ErrNotFound) {
		return &models.UserProfile{ID: uid}, nil
	}
	return p, err
}

func (s *Service) UpdateProfile(ctx context.Context, uid string, in ProfileInput) (*models.UserProfile, error) {
	email := strings.TrimSpace(in.Email)
	if email != "" {
		addr, err := mail.ParseAddress(email)
		if err != nil {
			return nil, invalid("email", "is not a valid address")
		}
		email = addr.Address
	}
	if in.RemindersEnabled && email == "" {
		return nil, invalid("email", "is required to receive reminders")
	}

	p := &models.UserProfile{
		ID:               uid,
		Email:            email,
		DisplayName:      strings.TrimSpace(in.DisplayName),
		RemindersEnabled: in.RemindersEnabled,
		UpdatedAt:        s.timestamp(),
	}
	if err := s.repo.SaveProfile(ctx, p); err != nil {
		return nil, &StoreWriteError{Op: "save profile", Err: err}
	}
	s.log.Infof("Profile updated for user %s", uid)
	return p, nil
}
