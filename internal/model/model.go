// Package model defines the core domain types for the event catalog.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Layouts for Event.Date and Event.Time.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "3:04 PM"
)

// Category is the event's topic. Values outside the known set are allowed.
type Category string

const (
	CategoryTechnology    Category = "Technology"
	CategoryBusiness      Category = "Business"
	CategoryHealth        Category = "Health"
	CategoryEducation     Category = "Education"
	CategoryEntertainment Category = "Entertainment"
)

// CategoryAll selects every category in a filter.
const CategoryAll Category = "all"

// KnownCategories lists the categories offered in the filter bar, in display order.
var KnownCategories = []Category{
	CategoryTechnology,
	CategoryBusiness,
	CategoryHealth,
	CategoryEducation,
	CategoryEntertainment,
}

var categoryTones = map[Category]string{
	CategoryTechnology:    "primary",
	CategoryBusiness:      "accent",
	CategoryHealth:        "success",
	CategoryEducation:     "warning",
	CategoryEntertainment: "neon",
}

// ToneNeutral is the presentation tone for unrecognised categories.
const ToneNeutral = "muted"

// Tone returns the badge tone for the category, ToneNeutral when unknown.
func (c Category) Tone() string {
	if tone, ok := categoryTones[c]; ok {
		return tone
	}
	return ToneNeutral
}

// Known reports whether c is one of KnownCategories.
func (c Category) Known() bool {
	_, ok := categoryTones[c]
	return ok
}

// Event is a catalog entry a viewer can browse and register for.
type Event struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Date        string   `json:"date" yaml:"date"`
	Time        string   `json:"time" yaml:"time"`
	Location    string   `json:"location" yaml:"location"`
	Category    Category `json:"category" yaml:"category"`
	Attendees   int      `json:"attendees" yaml:"attendees"`
	Capacity    int      `json:"capacity" yaml:"capacity"`
	Image       string   `json:"image" yaml:"image"`
	Price       float64  `json:"price" yaml:"price"`
}

// StartsAt combines Date and Time in loc.
func (e Event) StartsAt(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, e.Date+" "+strings.ToUpper(e.Time), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse start of event %s: %w", e.ID, err)
	}
	return t, nil
}

// IsFree reports whether the event has no ticket price.
func (e Event) IsFree() bool {
	return e.Price == 0
}

// PriceLabel renders the ticket price the way cards show it.
func (e Event) PriceLabel() string {
	if e.IsFree() {
		return "Free"
	}
	if e.Price == float64(int64(e.Price)) {
		return fmt.Sprintf("$%d", int64(e.Price))
	}
	return fmt.Sprintf("$%.2f", e.Price)
}

// Validate rejects events the catalog cannot serve. Attendees above capacity
// are accepted; such events simply cannot be registered for.
func (e Event) Validate() error {
	switch {
	case strings.TrimSpace(e.ID) == "":
		return fmt.Errorf("%w: id is required", ErrInvalidEvent)
	case strings.TrimSpace(e.Title) == "":
		return fmt.Errorf("%w: event %s: title is required", ErrInvalidEvent, e.ID)
	case e.Capacity <= 0:
		return fmt.Errorf("%w: event %s: capacity must be a positive integer", ErrInvalidEvent, e.ID)
	case e.Attendees < 0:
		return fmt.Errorf("%w: event %s: attendees cannot be negative", ErrInvalidEvent, e.ID)
	case e.Price < 0:
		return fmt.Errorf("%w: event %s: price cannot be negative", ErrInvalidEvent, e.ID)
	}
	if _, err := e.StartsAt(time.UTC); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	return nil
}

// FilterCriteria narrows the catalog by free text and category.
type FilterCriteria struct {
	Query    string   `json:"query"`
	Category Category `json:"category"`
}

// Notice is a transient confirmation shown to a viewer.
type Notice struct {
	ID          string    `json:"id"`
	ViewerID    string    `json:"viewer_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// NotificationPrefs are the viewer's delivery preferences.
type NotificationPrefs struct {
	Email     bool `json:"email" yaml:"email"`
	Push      bool `json:"push" yaml:"push"`
	Marketing bool `json:"marketing" yaml:"marketing"`
}

// Achievement is a badge shown on the profile page.
type Achievement struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Icon        string `json:"icon" yaml:"icon"`
}

// Profile is the viewer's account card. Achievements come from the fixture
// and are not editable.
type Profile struct {
	Name          string            `json:"name" yaml:"name"`
	Email         string            `json:"email" yaml:"email"`
	Phone         string            `json:"phone" yaml:"phone"`
	Location      string            `json:"location" yaml:"location"`
	Bio           string            `json:"bio" yaml:"bio"`
	Avatar        string            `json:"avatar" yaml:"avatar"`
	JoinDate      string            `json:"join_date" yaml:"join_date"`
	Notifications NotificationPrefs `json:"notifications" yaml:"notifications"`
	Achievements  []Achievement     `json:"achievements" yaml:"achievements"`
}

// Role is an entry on the role-selection screen.
type Role struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Destination string `json:"destination"`
}

// Roles are the two ways into the product.
var Roles = []Role{
	{ID: "user", Label: "Attendee", Destination: "/auth?role=user"},
	{ID: "admin", Label: "Organizer", Destination: "/auth?role=admin"},
}

// UpdateProfileRequest is the payload for editing a profile.
type UpdateProfileRequest struct {
	Name          string            `json:"name"`
	Email         string            `json:"email"`
	Phone         string            `json:"phone"`
	Location      string            `json:"location"`
	Bio           string            `json:"bio"`
	Notifications NotificationPrefs `json:"notifications"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
