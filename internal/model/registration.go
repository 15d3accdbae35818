package model

import "time"

// RegistrationState is one viewer's view of one event: whether they are
// registered and the attendee counter they see.
//
// Transitions:
//
//	Unregistered --Register (Attendees < Capacity)--> Registered  (Attendees+1)
//	Registered   --Unregister-------------------------> Unregistered (Attendees-1, floor Base)
type RegistrationState struct {
	EventID    string `json:"event_id"`
	Registered bool   `json:"registered"`
	Attendees  int    `json:"attendees"`
	Base       int    `json:"base"`
	Capacity   int    `json:"capacity"`
}

// NewRegistrationState starts an unregistered entry at the event's base count.
func NewRegistrationState(e Event) RegistrationState {
	return RegistrationState{
		EventID:   e.ID,
		Attendees: e.Attendees,
		Base:      e.Attendees,
		Capacity:  e.Capacity,
	}
}

// CanRegister reports whether the register control is actionable.
func (s *RegistrationState) CanRegister() bool {
	return !s.Registered && s.Attendees < s.Capacity
}

// Register moves to Registered. It reports false when already registered and
// returns ErrEventFull, leaving the state unchanged, at capacity.
func (s *RegistrationState) Register() (bool, error) {
	if s.Registered {
		return false, nil
	}
	if s.Attendees >= s.Capacity {
		return false, ErrEventFull
	}
	s.Registered = true
	s.Attendees++
	return true, nil
}

// Unregister moves to Unregistered. It reports false when not registered.
// The counter never drops below the event's base count.
func (s *RegistrationState) Unregister() bool {
	if !s.Registered {
		return false
	}
	s.Registered = false
	if s.Attendees > s.Base {
		s.Attendees--
	}
	return true
}

// Toggle applies whichever transition the control currently exposes.
func (s *RegistrationState) Toggle() (bool, error) {
	if s.Registered {
		return s.Unregister(), nil
	}
	return s.Register()
}

// Ledger is everything the service tracks for one viewer session: the
// registration entry per event, favorites, and the editable profile.
type Ledger struct {
	ViewerID  string                        `json:"viewer_id"`
	Entries   map[string]*RegistrationState `json:"entries"`
	Liked     map[string]bool               `json:"liked"`
	Profile   Profile                       `json:"profile"`
	CreatedAt time.Time                     `json:"created_at"`
}

// NewLedger creates an empty ledger seeded with a copy of profile.
func NewLedger(viewerID string, profile Profile, now time.Time) *Ledger {
	if profile.Achievements != nil {
		profile.Achievements = append([]Achievement(nil), profile.Achievements...)
	}
	return &Ledger{
		ViewerID:  viewerID,
		Entries:   make(map[string]*RegistrationState),
		Liked:     make(map[string]bool),
		Profile:   profile,
		CreatedAt: now,
	}
}

// Entry returns the viewer's state for e, creating it on first use.
func (l *Ledger) Entry(e Event) *RegistrationState {
	if s, ok := l.Entries[e.ID]; ok {
		return s
	}
	s := NewRegistrationState(e)
	l.Entries[e.ID] = &s
	return &s
}

// Lookup returns the state for an event id without creating it.
func (l *Ledger) Lookup(eventID string) (*RegistrationState, bool) {
	s, ok := l.Entries[eventID]
	return s, ok
}

// IsRegistered reports whether the viewer holds a registration for eventID.
func (l *Ledger) IsRegistered(eventID string) bool {
	s, ok := l.Entries[eventID]
	return ok && s.Registered
}

// ToggleLike flips the favorite flag and returns the new value.
func (l *Ledger) ToggleLike(eventID string) bool {
	if l.Liked[eventID] {
		delete(l.Liked, eventID)
		return false
	}
	l.Liked[eventID] = true
	return true
}
