package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Shivanand-hulikatti/event-nexus/internal/clock"
	"github.com/Shivanand-hulikatti/event-nexus/internal/model"
	"github.com/Shivanand-hulikatti/event-nexus/internal/repository"
	"github.com/Shivanand-hulikatti/event-nexus/internal/tracing"
)

var testNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu      sync.Mutex
	notices []model.Notice
}

func (r *recordingNotifier) Notify(_ context.Context, n model.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recordingNotifier) all() []model.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Notice(nil), r.notices...)
}

type failingStore struct{ err error }

func (f failingStore) List(context.Context) ([]model.Event, error) { return nil, f.err }
func (f failingStore) GetByID(context.Context, string) (*model.Event, error) {
	return nil, f.err
}

func testCatalog() []model.Event {
	return []model.Event{
		{ID: "soon", Title: "Tech Summit", Date: "2026-10-19", Time: "12:00 PM", Category: model.CategoryTechnology, Attendees: 25, Capacity: 100, Price: 99},
		{ID: "later", Title: "Music Fest", Date: "2026-10-26", Time: "12:00 PM", Category: model.CategoryEntertainment, Attendees: 10, Capacity: 40, Price: 0},
		{ID: "full", Title: "Sold Out Gala", Date: "2026-11-01", Time: "7:30 PM", Category: model.CategoryBusiness, Attendees: 100, Capacity: 100, Price: 12.5},
		{ID: "past", Title: "Yoga Morning", Date: "2026-10-01", Time: "06:00 AM", Category: model.CategoryHealth, Attendees: 0, Capacity: 50},
		{ID: "odd", Title: "Pottery Night", Date: "2026-12-01", Time: "08:00 PM", Category: "Crafts", Attendees: 5, Capacity: 20, Price: 20},
	}
}

var testProfile = model.Profile{
	Name:         "John Doe",
	Email:        "john.doe@example.com",
	JoinDate:     "January 2024",
	Achievements: []model.Achievement{{ID: "1", Title: "Early Bird", Description: "Registered for 5 events", Icon: "🏆"}},
}

type fixture struct {
	events   *EventService
	profiles *ProfileService
	admin    *AdminService
	notifier *recordingNotifier
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	catalog, err := repository.NewCatalogRepository(testCatalog())
	require.NoError(t, err)

	clk := clock.NewFixed(testNow)
	notifier := &recordingNotifier{}
	sessions := NewSessions(repository.NewViewerRepository(time.Hour, time.Minute), testProfile, clk)
	opts = append([]Option{WithLocation(time.UTC)}, opts...)
	events := NewEventService(catalog, sessions, notifier, clk, opts...)

	return &fixture{
		events:   events,
		profiles: NewProfileService(events, notifier, clk),
		admin:    NewAdminService(events, notifier, clk),
		notifier: notifier,
	}
}

func cardByID(t *testing.T, cards []Card, id string) Card {
	t.Helper()
	for _, c := range cards {
		if c.ID == id {
			return c
		}
	}
	t.Fatalf("card %s not found", id)
	return Card{}
}

func TestListCards_Derivations(t *testing.T) {
	f := newFixture(t)

	cards, err := f.events.ListCards(context.Background(), "alice", model.FilterCriteria{Category: model.CategoryAll})
	require.NoError(t, err)
	require.Len(t, cards, 5)

	soon := cardByID(t, cards, "soon")
	assert.Equal(t, 3, soon.DaysLeft)
	assert.True(t, soon.Urgent)
	assert.Equal(t, 25, soon.FillPercent)
	assert.Equal(t, 25, soon.CurrentAttendees)
	assert.True(t, soon.CanRegister)
	assert.Equal(t, "$99", soon.PriceLabel)
	assert.Equal(t, "primary", soon.CategoryTone)

	later := cardByID(t, cards, "later")
	assert.Equal(t, 10, later.DaysLeft)
	assert.False(t, later.Urgent)
	assert.Equal(t, "Free", later.PriceLabel)

	full := cardByID(t, cards, "full")
	assert.False(t, full.CanRegister)
	assert.Equal(t, 100, full.FillPercent)
	assert.Equal(t, "$12.50", full.PriceLabel)

	past := cardByID(t, cards, "past")
	assert.Negative(t, past.DaysLeft)
	assert.False(t, past.Urgent)

	assert.Equal(t, model.ToneNeutral, cardByID(t, cards, "odd").CategoryTone)
	assert.Empty(t, f.notifier.all(), "listing emits nothing")
}

func TestListCards_Filters(t *testing.T) {
	f := newFixture(t)

	cards, err := f.events.ListCards(context.Background(), "alice", model.FilterCriteria{Query: "summit", Category: model.CategoryAll})
	require.NoError(t, err)
	require.Len(t, cards, 1)
	require.Equal(t, "Tech Summit", cards[0].Title)

	cards, err = f.events.ListCards(context.Background(), "alice", model.FilterCriteria{Category: model.CategoryHealth})
	require.NoError(t, err)
	require.Len(t, cards, 1)
	require.Equal(t, "past", cards[0].ID)

	cards, err = f.events.ListCards(context.Background(), "alice", model.FilterCriteria{Query: "opera"})
	require.NoError(t, err)
	require.NotNil(t, cards)
	require.Empty(t, cards)
}

func TestRegister_EmitsNoticeAndUpdatesLedger(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.events.Register(ctx, "alice", "soon")
	require.NoError(t, err)
	require.True(t, res.Card.Registered)
	require.Equal(t, 26, res.Card.CurrentAttendees)
	require.Equal(t, 26, res.Card.FillPercent)
	require.False(t, res.Card.CanRegister)
	require.NotNil(t, res.Notice)
	require.Equal(t, "Registration Successful!", res.Notice.Title)
	require.Equal(t, "You are now registered for Tech Summit", res.Notice.Description)
	require.NotEmpty(t, res.Notice.ID)
	require.Equal(t, "alice", res.Notice.ViewerID)
	require.Equal(t, testNow, res.Notice.CreatedAt)

	// Already registered: nothing changes and nothing is announced.
	again, err := f.events.Register(ctx, "alice", "soon")
	require.NoError(t, err)
	require.Nil(t, again.Notice)
	require.Equal(t, 26, again.Card.CurrentAttendees)
	require.Len(t, f.notifier.all(), 1)

	// Every view of the event reads the same ledger entry.
	card, err := f.events.GetCard(ctx, "alice", "soon")
	require.NoError(t, err)
	require.True(t, card.Registered)
	require.Equal(t, 26, card.CurrentAttendees)

	cards, err := f.events.ListCards(ctx, "alice", model.FilterCriteria{Query: "summit"})
	require.NoError(t, err)
	require.True(t, cards[0].Registered)

	// Other viewers keep their own counter.
	other, err := f.events.GetCard(ctx, "bob", "soon")
	require.NoError(t, err)
	require.False(t, other.Registered)
	require.Equal(t, 25, other.CurrentAttendees)
}

func TestRegister_FullEventRefused(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.events.Register(ctx, "alice", "full")
	require.ErrorIs(t, err, model.ErrEventFull)
	require.Nil(t, res)
	require.Empty(t, f.notifier.all())

	card, err := f.events.GetCard(ctx, "alice", "full")
	require.NoError(t, err)
	require.False(t, card.Registered)
	require.False(t, card.CanRegister)
	require.Equal(t, 100, card.CurrentAttendees)
}

func TestRegisterUnregister_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.events.Register(ctx, "alice", "later")
	require.NoError(t, err)

	res, err := f.events.Unregister(ctx, "alice", "later")
	require.NoError(t, err)
	require.False(t, res.Card.Registered)
	require.Equal(t, 10, res.Card.CurrentAttendees)
	require.NotNil(t, res.Notice)
	require.Equal(t, "Registration Cancelled", res.Notice.Title)
	require.Equal(t, "You have unregistered from Music Fest", res.Notice.Description)

	notices := f.notifier.all()
	require.Len(t, notices, 2)
	require.Equal(t, "Registration Successful!", notices[0].Title)
	require.Equal(t, "Registration Cancelled", notices[1].Title)
}

func TestUnregister_WhenNotRegisteredIsNoop(t *testing.T) {
	f := newFixture(t)

	res, err := f.events.Unregister(context.Background(), "alice", "soon")
	require.NoError(t, err)
	require.Nil(t, res.Notice)
	require.Equal(t, 25, res.Card.CurrentAttendees)
	require.Empty(t, f.notifier.all())
}

func TestToggle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.events.Toggle(ctx, "alice", "odd")
	require.NoError(t, err)
	require.True(t, res.Card.Registered)
	require.Equal(t, 6, res.Card.CurrentAttendees)

	res, err = f.events.Toggle(ctx, "alice", "odd")
	require.NoError(t, err)
	require.False(t, res.Card.Registered)
	require.Equal(t, 5, res.Card.CurrentAttendees)

	_, err = f.events.Toggle(ctx, "alice", "full")
	require.ErrorIs(t, err, model.ErrEventFull)
}

func TestTransitions_UnknownEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.events.Register(ctx, "alice", "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
	_, err = f.events.Unregister(ctx, "alice", "")
	require.ErrorIs(t, err, repository.ErrNotFound)
	_, err = f.events.GetCard(ctx, "alice", "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
	_, err = f.events.ToggleLike(ctx, "alice", "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestToggleLike(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.events.ToggleLike(ctx, "alice", "soon")
	require.NoError(t, err)
	require.True(t, res.Card.Liked)
	require.Equal(t, "Added to favorites", res.Notice.Title)
	require.Equal(t, "Tech Summit added to your favorites", res.Notice.Description)

	res, err = f.events.ToggleLike(ctx, "alice", "soon")
	require.NoError(t, err)
	require.False(t, res.Card.Liked)
	require.Equal(t, "Removed from favorites", res.Notice.Title)
	require.Len(t, f.notifier.all(), 2)
}

func TestCategories(t *testing.T) {
	f := newFixture(t)

	cats := f.events.Categories()
	require.Len(t, cats, len(model.KnownCategories)+1)
	require.Equal(t, model.CategoryAll, cats[0].Value)
	require.Equal(t, model.ToneNeutral, cats[0].Tone)
	require.Equal(t, model.CategoryTechnology, cats[1].Value)
	require.Equal(t, "primary", cats[1].Tone)
}

func TestEventService_StoreErrorsAreWrapped(t *testing.T) {
	boom := errors.New("connection refused")
	clk := clock.NewFixed(testNow)
	sessions := NewSessions(repository.NewViewerRepository(time.Hour, time.Minute), testProfile, clk)
	svc := NewEventService(failingStore{err: boom}, sessions, &recordingNotifier{}, clk)

	_, err := svc.ListCards(context.Background(), "alice", model.FilterCriteria{})
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "list events")

	_, err = svc.Register(context.Background(), "alice", "soon")
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, repository.ErrNotFound)
}

func TestEventService_RecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	f := newFixture(t, WithTracer(provider.Tracer("test")))
	ctx := context.Background()

	_, err := f.events.ListCards(ctx, "alice", model.FilterCriteria{Query: "summit"})
	require.NoError(t, err)
	_, err = f.events.Register(ctx, "alice", "soon")
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	require.Equal(t, "catalog.list", spans[0].Name())
	require.Contains(t, spans[0].Attributes(), attribute.Int(tracing.AttrResultSize, 1))
	require.Equal(t, "registration.register", spans[1].Name())
	require.Contains(t, spans[1].Attributes(), attribute.Bool(tracing.AttrChanged, true))
	require.Contains(t, spans[1].Attributes(), attribute.String(tracing.AttrEventID, "soon"))
}

func TestSessions_CountsViewers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.events.ToggleLike(ctx, "alice", "soon")
	require.NoError(t, err)
	_, err = f.events.Register(ctx, "bob", "soon")
	require.NoError(t, err)
	_, err = f.events.Register(ctx, "alice", "later")
	require.NoError(t, err)

	require.Equal(t, 2, f.events.sessions.Count())
}

func TestSessions_ReadsDoNotOpenSessions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.events.ListCards(ctx, "carol", model.FilterCriteria{})
	require.NoError(t, err)
	_, err = f.events.GetCard(ctx, "dave", "soon")
	require.NoError(t, err)
	_, err = f.profiles.Get(ctx, "erin")
	require.NoError(t, err)
	_, err = f.profiles.Registrations(ctx, "frank")
	require.NoError(t, err)
	require.Equal(t, 0, f.events.sessions.Count())

	_, err = f.events.Register(ctx, "alice", "full")
	require.ErrorIs(t, err, model.ErrEventFull)
	require.Equal(t, 0, f.events.sessions.Count(), "a refused registration stores nothing")
}

func TestSessions_EndResetsViewer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.events.Register(ctx, "alice", "soon")
	require.NoError(t, err)
	_, err = f.events.ToggleLike(ctx, "alice", "soon")
	require.NoError(t, err)
	_, _, err = f.profiles.Update(ctx, "alice", model.UpdateProfileRequest{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)
	_, err = f.events.Register(ctx, "bob", "later")
	require.NoError(t, err)
	require.Equal(t, 2, f.events.sessions.Count())

	f.profiles.EndSession(ctx, "alice")
	f.profiles.EndSession(ctx, "nobody") // no session, no-op

	require.Equal(t, 1, f.events.sessions.Count())
	card, err := f.events.GetCard(ctx, "alice", "soon")
	require.NoError(t, err)
	assert.False(t, card.Registered)
	assert.False(t, card.Liked)
	assert.Equal(t, 25, card.CurrentAttendees)
	p, err := f.profiles.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, testProfile, p)

	bob, err := f.events.GetCard(ctx, "bob", "later")
	require.NoError(t, err)
	assert.True(t, bob.Registered, "other viewers keep their session")
}

func TestProfile_GetAndUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.profiles.Get(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, testProfile, p)

	updated, notice, err := f.profiles.Update(ctx, "alice", model.UpdateProfileRequest{
		Name:          "  Alice Smith ",
		Email:         "alice@example.com",
		Location:      "Berlin",
		Notifications: model.NotificationPrefs{Email: true},
	})
	require.NoError(t, err)
	require.Equal(t, "Alice Smith", updated.Name)
	require.Equal(t, "January 2024", updated.JoinDate, "join date is not editable")
	require.Equal(t, testProfile.Achievements, updated.Achievements, "achievements are not editable")
	require.Equal(t, "Profile Updated!", notice.Title)

	p, err = f.profiles.Get(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, updated, p)

	// Profiles are per viewer.
	p, err = f.profiles.Get(ctx, "bob")
	require.NoError(t, err)
	require.Equal(t, "John Doe", p.Name)
}

func TestProfile_UpdateValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		req  model.UpdateProfileRequest
	}{
		{"missing name", model.UpdateProfileRequest{Name: " ", Email: "a@example.com"}},
		{"missing email", model.UpdateProfileRequest{Name: "A"}},
		{"no at sign", model.UpdateProfileRequest{Name: "A", Email: "example.com"}},
		{"no domain dot", model.UpdateProfileRequest{Name: "A", Email: "a@localhost"}},
		{"empty local part", model.UpdateProfileRequest{Name: "A", Email: "@example.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, notice, err := f.profiles.Update(context.Background(), "alice", tt.req)
			require.ErrorIs(t, err, ErrInvalidProfile)
			require.Nil(t, notice)
		})
	}
	require.Empty(t, f.notifier.all())
}

func TestProfile_Registrations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	regs, err := f.profiles.Registrations(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, regs)
	require.Empty(t, regs)

	for _, id := range []string{"odd", "past", "soon"} {
		_, err := f.events.Register(ctx, "alice", id)
		require.NoError(t, err)
	}

	regs, err = f.profiles.Registrations(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, regs, 3)
	require.Equal(t, "soon", regs[0].ID, "catalog order")
	require.Equal(t, StatusUpcoming, regs[0].Status)
	require.Equal(t, "past", regs[1].ID)
	require.Equal(t, StatusCompleted, regs[1].Status)
	require.Equal(t, "odd", regs[2].ID)
	require.Equal(t, StatusUpcoming, regs[2].Status)
}

func TestAdmin_Stats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.events.ToggleLike(ctx, "alice", "soon")
	require.NoError(t, err)

	st, err := f.admin.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, st.TotalUsers)
	require.Equal(t, 5, st.TotalEvents)
	require.Equal(t, 25+10+100+0+5, st.TotalRegistrations)
	require.InDelta(t, 99*25+12.5*100+20*5, st.Revenue, 1e-9)
}

func TestAdmin_Overview(t *testing.T) {
	f := newFixture(t)

	rows, err := f.admin.Overview(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 5)

	status := map[string]string{}
	for _, r := range rows {
		status[r.ID] = r.Status
	}
	require.Equal(t, map[string]string{
		"soon":  StatusActive,
		"later": StatusActive,
		"full":  StatusActive,
		"past":  StatusCompleted,
		"odd":   StatusActive,
	}, status)
	require.Equal(t, 25, rows[0].FillPercent)
}

func TestAdmin_OverviewDraft(t *testing.T) {
	catalog, err := repository.NewCatalogRepository([]model.Event{
		{ID: "new", Title: "Fresh", Date: "2026-12-24", Time: "10:00 AM", Capacity: 10},
	})
	require.NoError(t, err)
	clk := clock.NewFixed(testNow)
	sessions := NewSessions(repository.NewViewerRepository(time.Hour, time.Minute), testProfile, clk)
	events := NewEventService(catalog, sessions, &recordingNotifier{}, clk, WithLocation(time.UTC))

	rows, err := NewAdminService(events, &recordingNotifier{}, clk).Overview(context.Background())
	require.NoError(t, err)
	require.Equal(t, StatusDraft, rows[0].Status)
}

func TestAdmin_EventAction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		action string
		title  string
		desc   string
	}{
		{"view", "Event Viewed", "Event soon has been viewed."},
		{"edit", "Event Edited", "Event soon has been edited."},
		{"delete", "Event Deleted", "Event soon has been deleted."},
	}
	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			n, err := f.admin.EventAction(ctx, "admin", "soon", tt.action)
			require.NoError(t, err)
			require.Equal(t, tt.title, n.Title)
			require.Equal(t, tt.desc, n.Description)
		})
	}

	// Delete is a stub: the catalog is untouched.
	_, err := f.events.GetCard(ctx, "alice", "soon")
	require.NoError(t, err)

	_, err = f.admin.EventAction(ctx, "admin", "soon", "publish")
	require.ErrorIs(t, err, ErrUnknownAction)
	_, err = f.admin.EventAction(ctx, "admin", "missing", "view")
	require.ErrorIs(t, err, repository.ErrNotFound)
}
