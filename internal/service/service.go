// Package service implements catalog browsing, registration, profile and
// admin operations on top of the catalog source and viewer sessions.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Shivanand-hulikatti/event-nexus/internal/clock"
	"github.com/Shivanand-hulikatti/event-nexus/internal/log"
	"github.com/Shivanand-hulikatti/event-nexus/internal/model"
	"github.com/Shivanand-hulikatti/event-nexus/internal/repository"
	"github.com/Shivanand-hulikatti/event-nexus/internal/tracing"
)

// EventStore supplies the ordered, read-only catalog.
type EventStore interface {
	List(ctx context.Context) ([]model.Event, error)
	GetByID(ctx context.Context, id string) (*model.Event, error)
}

// ViewerStore keeps one ledger per viewer session.
type ViewerStore interface {
	Get(ctx context.Context, viewerID string) (*model.Ledger, bool)
	Put(ctx context.Context, ledger *model.Ledger)
	Delete(ctx context.Context, viewerID string)
	Count() int
}

// Notifier shows a transient notice to a viewer. Fire and forget.
type Notifier interface {
	Notify(ctx context.Context, n model.Notice)
}

// Sessions serialises access to viewer ledgers. A ledger is stored only once
// the viewer changes something; reads by unknown viewers see a fresh one.
type Sessions struct {
	mu      sync.Mutex
	store   ViewerStore
	profile model.Profile
	clock   clock.Clock
}

// NewSessions seeds every new ledger with a copy of profile.
func NewSessions(store ViewerStore, profile model.Profile, clk clock.Clock) *Sessions {
	return &Sessions{store: store, profile: profile, clock: clk}
}

// With runs fn on the viewer's ledger and stores it back if fn succeeds.
// The ledger is created on first use.
func (s *Sessions) With(ctx context.Context, viewerID string, fn func(*model.Ledger) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger, ok := s.store.Get(ctx, viewerID)
	if !ok {
		ledger = model.NewLedger(viewerID, s.profile, s.clock.Now())
		log.Debug(log.CatCache, "new viewer session", "viewer", viewerID)
	}
	if err := fn(ledger); err != nil {
		return err
	}
	s.store.Put(ctx, ledger)
	return nil
}

// View runs fn on the viewer's ledger, or on a fresh unsaved one when the
// viewer has no session. fn must not modify the ledger.
func (s *Sessions) View(ctx context.Context, viewerID string, fn func(*model.Ledger)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger, ok := s.store.Get(ctx, viewerID)
	if !ok {
		ledger = model.NewLedger(viewerID, s.profile, s.clock.Now())
	}
	fn(ledger)
}

// End drops the viewer's session. Registrations, favorites and profile
// edits start over from the catalog and fixture.
func (s *Sessions) End(ctx context.Context, viewerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Delete(ctx, viewerID)
	log.Debug(log.CatCache, "viewer session ended", "viewer", viewerID)
}

// Count returns the number of viewer sessions held.
func (s *Sessions) Count() int {
	return s.store.Count()
}

// Card is an event as one viewer sees it, with every derived display value.
type Card struct {
	model.Event
	CurrentAttendees int     `json:"current_attendees"`
	Registered       bool    `json:"registered"`
	Liked            bool    `json:"liked"`
	CanRegister      bool    `json:"can_register"`
	DaysLeft         int     `json:"days_left"`
	Urgent           bool    `json:"urgent"`
	FillPercent      int     `json:"fill_percent"`
	FillRatio        float64 `json:"fill_ratio"`
	PriceLabel       string  `json:"price_label"`
	CategoryTone     string  `json:"category_tone"`
}

// Result is the outcome of a viewer action. Notice is nil for no-ops.
type Result struct {
	Card   Card          `json:"card"`
	Notice *model.Notice `json:"notice,omitempty"`
}

// CategoryOption is an entry in the category filter bar.
type CategoryOption struct {
	Value model.Category `json:"value"`
	Label string         `json:"label"`
	Tone  string         `json:"tone"`
}

// Option configures an EventService.
type Option func(*EventService)

// WithLocation sets the time zone event dates are read in.
func WithLocation(loc *time.Location) Option {
	return func(s *EventService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithTracer records spans for catalog and registration operations.
func WithTracer(t trace.Tracer) Option {
	return func(s *EventService) {
		if t != nil {
			s.tracer = t
		}
	}
}

// EventService orchestrates catalog browsing and registration.
type EventService struct {
	events   EventStore
	sessions *Sessions
	notifier Notifier
	clock    clock.Clock
	loc      *time.Location
	tracer   trace.Tracer
}

// NewEventService constructs an EventService with its dependencies.
func NewEventService(events EventStore, sessions *Sessions, notifier Notifier, clk clock.Clock, opts ...Option) *EventService {
	s := &EventService{
		events:   events,
		sessions: sessions,
		notifier: notifier,
		clock:    clk,
		loc:      time.Local,
		tracer:   noop.NewTracerProvider().Tracer("noop"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Categories returns the filter bar options, "all" first.
func (s *EventService) Categories() []CategoryOption {
	out := make([]CategoryOption, 0, len(model.KnownCategories)+1)
	out = append(out, CategoryOption{Value: model.CategoryAll, Label: "All Events", Tone: model.ToneNeutral})
	for _, c := range model.KnownCategories {
		out = append(out, CategoryOption{Value: c, Label: string(c), Tone: c.Tone()})
	}
	return out
}

// ListCards filters the catalog and renders it for viewerID.
func (s *EventService) ListCards(ctx context.Context, viewerID string, criteria model.FilterCriteria) ([]Card, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.list", trace.WithAttributes(
		attribute.String(tracing.AttrViewerID, viewerID),
		attribute.String(tracing.AttrQuery, criteria.Query),
		attribute.String(tracing.AttrCategory, string(criteria.Category)),
	))
	defer span.End()

	events, err := s.events.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list events")
		return nil, fmt.Errorf("list events: %w", err)
	}
	visible := FilterEvents(events, criteria)
	span.SetAttributes(attribute.Int(tracing.AttrResultSize, len(visible)))

	cards := make([]Card, 0, len(visible))
	s.sessions.View(ctx, viewerID, func(l *model.Ledger) {
		now := s.clock.Now()
		for _, e := range visible {
			cards = append(cards, s.render(e, l, now))
		}
	})
	log.Debug(log.CatCatalog, "listed events",
		"viewer", viewerID, "query", criteria.Query, "category", criteria.Category,
		"total", len(events), "visible", len(cards))
	return cards, nil
}

// GetCard renders one event for viewerID.
func (s *EventService) GetCard(ctx context.Context, viewerID, eventID string) (*Card, error) {
	event, err := s.getEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	var card Card
	s.sessions.View(ctx, viewerID, func(l *model.Ledger) {
		card = s.render(*event, l, s.clock.Now())
	})
	return &card, nil
}

// Register registers viewerID for the event. At capacity it returns
// model.ErrEventFull and changes nothing; when already registered it is a
// no-op without a notice.
func (s *EventService) Register(ctx context.Context, viewerID, eventID string) (*Result, error) {
	return s.transition(ctx, "register", viewerID, eventID, func(st *model.RegistrationState) (bool, error) {
		return st.Register()
	})
}

// Unregister cancels viewerID's registration. A no-op when not registered.
func (s *EventService) Unregister(ctx context.Context, viewerID, eventID string) (*Result, error) {
	return s.transition(ctx, "unregister", viewerID, eventID, func(st *model.RegistrationState) (bool, error) {
		return st.Unregister(), nil
	})
}

// Toggle applies whichever transition the register control currently shows.
func (s *EventService) Toggle(ctx context.Context, viewerID, eventID string) (*Result, error) {
	return s.transition(ctx, "toggle", viewerID, eventID, func(st *model.RegistrationState) (bool, error) {
		return st.Toggle()
	})
}

func (s *EventService) transition(
	ctx context.Context,
	name, viewerID, eventID string,
	apply func(*model.RegistrationState) (bool, error),
) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "registration."+name, trace.WithAttributes(
		attribute.String(tracing.AttrViewerID, viewerID),
		attribute.String(tracing.AttrEventID, eventID),
		attribute.String(tracing.AttrTransition, name),
	))
	defer span.End()

	event, err := s.getEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	var (
		res     Result
		changed bool
	)
	err = s.sessions.With(ctx, viewerID, func(l *model.Ledger) error {
		st := l.Entry(*event)
		var applyErr error
		changed, applyErr = apply(st)
		if applyErr != nil {
			return applyErr
		}
		res.Card = s.render(*event, l, s.clock.Now())
		return nil
	})
	span.SetAttributes(attribute.Bool(tracing.AttrChanged, changed))
	if err != nil {
		if errors.Is(err, model.ErrEventFull) {
			log.Info(log.CatRegistration, "registration refused at capacity",
				"viewer", viewerID, "event", eventID, "capacity", event.Capacity)
			return nil, err
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, name)
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	if changed {
		n := s.registrationNotice(viewerID, event.Title, res.Card.Registered)
		res.Notice = &n
		s.notifier.Notify(ctx, n)
		log.Info(log.CatRegistration, name,
			"viewer", viewerID, "event", eventID,
			"registered", res.Card.Registered, "attendees", res.Card.CurrentAttendees)
	}
	return &res, nil
}

// ToggleLike flips the favorite flag for the event.
func (s *EventService) ToggleLike(ctx context.Context, viewerID, eventID string) (*Result, error) {
	event, err := s.getEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	var res Result
	err = s.sessions.With(ctx, viewerID, func(l *model.Ledger) error {
		l.ToggleLike(event.ID)
		res.Card = s.render(*event, l, s.clock.Now())
		return nil
	})
	if err != nil {
		return nil, err
	}

	var n model.Notice
	if res.Card.Liked {
		n = newNotice(s.clock, viewerID, "Added to favorites", event.Title+" added to your favorites")
	} else {
		n = newNotice(s.clock, viewerID, "Removed from favorites", event.Title+" removed from your favorites")
	}
	res.Notice = &n
	s.notifier.Notify(ctx, n)
	return &res, nil
}

func (s *EventService) registrationNotice(viewerID, title string, registered bool) model.Notice {
	if registered {
		return newNotice(s.clock, viewerID, "Registration Successful!", "You are now registered for "+title)
	}
	return newNotice(s.clock, viewerID, "Registration Cancelled", "You have unregistered from "+title)
}

func newNotice(clk clock.Clock, viewerID, title, description string) model.Notice {
	return model.Notice{
		ID:          uuid.NewString(),
		ViewerID:    viewerID,
		Title:       title,
		Description: description,
		CreatedAt:   clk.Now(),
	}
}

func (s *EventService) getEvent(ctx context.Context, id string) (*model.Event, error) {
	return lookupEvent(ctx, s.events, id)
}

func lookupEvent(ctx context.Context, store EventStore, id string) (*model.Event, error) {
	if id == "" {
		return nil, repository.ErrNotFound
	}
	event, err := store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// render builds the card from the viewer's entry, or from the event's base
// counts when the viewer has not touched it. It never creates an entry.
func (s *EventService) render(e model.Event, l *model.Ledger, now time.Time) Card {
	st, ok := l.Lookup(e.ID)
	if !ok {
		fresh := model.NewRegistrationState(e)
		st = &fresh
	}

	card := Card{
		Event:            e,
		CurrentAttendees: st.Attendees,
		Registered:       st.Registered,
		Liked:            l.Liked[e.ID],
		CanRegister:      st.CanRegister(),
		FillPercent:      FillPercent(st.Attendees, e.Capacity),
		FillRatio:        FillRatio(st.Attendees, e.Capacity),
		PriceLabel:       e.PriceLabel(),
		CategoryTone:     e.Category.Tone(),
	}
	if start, err := e.StartsAt(s.loc); err != nil {
		log.Warn(log.CatCatalog, "unparseable event start", "event", e.ID, "error", err)
	} else {
		card.DaysLeft = DaysLeft(start, now)
		card.Urgent = IsUrgent(card.DaysLeft)
	}
	return card
}
