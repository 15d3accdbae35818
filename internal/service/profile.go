package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Shivanand-hulikatti/event-nexus/internal/clock"
	"github.com/Shivanand-hulikatti/event-nexus/internal/log"
	"github.com/Shivanand-hulikatti/event-nexus/internal/model"
)

// ErrInvalidProfile is returned when a profile update fails validation.
var ErrInvalidProfile = errors.New("invalid profile")

// Registration statuses on the profile page.
const (
	StatusUpcoming  = "Upcoming"
	StatusCompleted = "Completed"
)

// RegisteredEvent is a row in the viewer's registration history.
type RegisteredEvent struct {
	Card
	Status string `json:"status"`
}

// ProfileService manages the viewer's profile and registration history.
type ProfileService struct {
	events   *EventService
	sessions *Sessions
	notifier Notifier
	clock    clock.Clock
}

// NewProfileService creates a ProfileService sharing the event service's
// sessions and catalog.
func NewProfileService(events *EventService, notifier Notifier, clk clock.Clock) *ProfileService {
	return &ProfileService{
		events:   events,
		sessions: events.sessions,
		notifier: notifier,
		clock:    clk,
	}
}

// Get returns the viewer's profile.
func (s *ProfileService) Get(ctx context.Context, viewerID string) (model.Profile, error) {
	var p model.Profile
	s.sessions.View(ctx, viewerID, func(l *model.Ledger) {
		p = l.Profile
	})
	return p, nil
}

// EndSession forgets everything the viewer changed.
func (s *ProfileService) EndSession(ctx context.Context, viewerID string) {
	s.sessions.End(ctx, viewerID)
}

// Update replaces the editable profile fields.
func (s *ProfileService) Update(ctx context.Context, viewerID string, req model.UpdateProfileRequest) (model.Profile, *model.Notice, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" {
		return model.Profile{}, nil, fmt.Errorf("%w: name is required", ErrInvalidProfile)
	}
	if !isValidEmail(req.Email) {
		return model.Profile{}, nil, fmt.Errorf("%w: email is not a valid email address", ErrInvalidProfile)
	}

	var p model.Profile
	err := s.sessions.With(ctx, viewerID, func(l *model.Ledger) error {
		l.Profile.Name = req.Name
		l.Profile.Email = req.Email
		l.Profile.Phone = strings.TrimSpace(req.Phone)
		l.Profile.Location = strings.TrimSpace(req.Location)
		l.Profile.Bio = req.Bio
		l.Profile.Notifications = req.Notifications
		p = l.Profile
		return nil
	})
	if err != nil {
		return model.Profile{}, nil, err
	}

	n := newNotice(s.clock, viewerID, "Profile Updated!", "Your profile has been successfully updated.")
	s.notifier.Notify(ctx, n)
	log.Info(log.CatRegistration, "profile updated", "viewer", viewerID)
	return p, &n, nil
}

// Registrations lists the events the viewer is registered for in catalog
// order, each marked Upcoming or Completed.
func (s *ProfileService) Registrations(ctx context.Context, viewerID string) ([]RegisteredEvent, error) {
	cards, err := s.events.ListCards(ctx, viewerID, model.FilterCriteria{Category: model.CategoryAll})
	if err != nil {
		return nil, err
	}
	out := make([]RegisteredEvent, 0)
	for _, c := range cards {
		if !c.Registered {
			continue
		}
		status := StatusUpcoming
		if start, err := c.StartsAt(s.events.loc); err == nil && !start.After(s.clock.Now()) {
			status = StatusCompleted
		}
		out = append(out, RegisteredEvent{Card: c, Status: status})
	}
	return out, nil
}

// isValidEmail does a basic structural check.
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	return len(parts[0]) > 0 && strings.Contains(parts[1], ".")
}
