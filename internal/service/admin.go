package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/event-nexus/internal/clock"
	"github.com/Shivanand-hulikatti/event-nexus/internal/log"
	"github.com/Shivanand-hulikatti/event-nexus/internal/model"
)

// ErrUnknownAction is returned for admin actions other than view, edit and delete.
var ErrUnknownAction = errors.New("unknown action")

// Dashboard row statuses.
const (
	StatusActive = "Active"
	StatusDraft  = "Draft"
)

// Stats are the admin dashboard counters.
type Stats struct {
	TotalUsers         int     `json:"total_users"`
	TotalEvents        int     `json:"total_events"`
	TotalRegistrations int     `json:"total_registrations"`
	Revenue            float64 `json:"revenue"`
}

// EventRow is one line of the admin event table.
type EventRow struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Date          string `json:"date"`
	Status        string `json:"status"`
	Registrations int    `json:"registrations"`
	Capacity      int    `json:"capacity"`
	FillPercent   int    `json:"fill_percent"`
}

var actionPastTense = map[string]string{
	"view":   "viewed",
	"edit":   "edited",
	"delete": "deleted",
}

// AdminService serves the read-only organizer dashboard.
type AdminService struct {
	events   EventStore
	sessions *Sessions
	notifier Notifier
	clock    clock.Clock
	loc      *time.Location
}

// NewAdminService creates an AdminService reading the same catalog and
// sessions as the event service.
func NewAdminService(events *EventService, notifier Notifier, clk clock.Clock) *AdminService {
	return &AdminService{
		events:   events.events,
		sessions: events.sessions,
		notifier: notifier,
		clock:    clk,
		loc:      events.loc,
	}
}

// Stats totals the catalog's base counts. Viewer registrations are private
// to their sessions and are not included.
func (s *AdminService) Stats(ctx context.Context) (Stats, error) {
	events, err := s.events.List(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("list events: %w", err)
	}
	st := Stats{
		TotalUsers:  s.sessions.Count(),
		TotalEvents: len(events),
	}
	for _, e := range events {
		st.TotalRegistrations += e.Attendees
		st.Revenue += e.Price * float64(e.Attendees)
	}
	return st, nil
}

// Overview lists every event for the dashboard table in catalog order.
func (s *AdminService) Overview(ctx context.Context) ([]EventRow, error) {
	events, err := s.events.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	now := s.clock.Now()
	rows := make([]EventRow, 0, len(events))
	for _, e := range events {
		status := StatusActive
		if start, err := e.StartsAt(s.loc); err == nil && !start.After(now) {
			status = StatusCompleted
		} else if e.Attendees == 0 {
			status = StatusDraft
		}
		rows = append(rows, EventRow{
			ID:            e.ID,
			Title:         e.Title,
			Date:          e.Date,
			Status:        status,
			Registrations: e.Attendees,
			Capacity:      e.Capacity,
			FillPercent:   FillPercent(e.Attendees, e.Capacity),
		})
	}
	return rows, nil
}

// EventAction acknowledges a dashboard action. It never changes the catalog.
func (s *AdminService) EventAction(ctx context.Context, viewerID, eventID, action string) (*model.Notice, error) {
	past, ok := actionPastTense[action]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	if _, err := lookupEvent(ctx, s.events, eventID); err != nil {
		return nil, err
	}

	title := "Event " + strings.ToUpper(past[:1]) + past[1:]
	n := newNotice(s.clock, viewerID, title, fmt.Sprintf("Event %s has been %s.", eventID, past))
	s.notifier.Notify(ctx, n)
	log.Info(log.CatCatalog, "admin action", "viewer", viewerID, "event", eventID, "action", action)
	return &n, nil
}
