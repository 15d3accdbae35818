package repository

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Shivanand-hulikatti/event-nexus/internal/model"
)

//go:embed fixtures/catalog.yaml
var defaultFixture []byte

// Fixture is the static data the service starts from.
type Fixture struct {
	Events  []model.Event `yaml:"events"`
	Profile model.Profile `yaml:"profile"`
}

// LoadFixture reads a fixture file, or the embedded default when path is empty.
func LoadFixture(path string) (*Fixture, error) {
	data := defaultFixture
	if path != "" {
		var err error
		data, err = os.ReadFile(path) //nolint:gosec // operator-supplied fixture path
		if err != nil {
			return nil, fmt.Errorf("read fixture: %w", err)
		}
	}
	return ParseFixture(data)
}

// ParseFixture decodes and validates fixture YAML.
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	if err := validateCatalog(f.Events); err != nil {
		return nil, err
	}
	return &f, nil
}

func validateCatalog(events []model.Event) error {
	seen := make(map[string]struct{}, len(events))
	for i := range events {
		if err := events[i].Validate(); err != nil {
			return err
		}
		if _, dup := seen[events[i].ID]; dup {
			return fmt.Errorf("%w: duplicate event id %s", model.ErrInvalidEvent, events[i].ID)
		}
		seen[events[i].ID] = struct{}{}
	}
	return nil
}

// CatalogRepository serves an immutable, in-memory catalog.
type CatalogRepository struct {
	events []model.Event
	index  map[string]int
}

// NewCatalogRepository validates events and keeps a private copy.
func NewCatalogRepository(events []model.Event) (*CatalogRepository, error) {
	if err := validateCatalog(events); err != nil {
		return nil, err
	}
	r := &CatalogRepository{
		events: append([]model.Event(nil), events...),
		index:  make(map[string]int, len(events)),
	}
	for i, e := range r.events {
		r.index[e.ID] = i
	}
	return r, nil
}

// List returns the catalog in fixture order. Callers get their own copy.
func (r *CatalogRepository) List(_ context.Context) ([]model.Event, error) {
	out := make([]model.Event, len(r.events))
	copy(out, r.events)
	return out, nil
}

// GetByID returns a single event or ErrNotFound.
func (r *CatalogRepository) GetByID(_ context.Context, id string) (*model.Event, error) {
	i, ok := r.index[id]
	if !ok {
		return nil, ErrNotFound
	}
	e := r.events[i]
	return &e, nil
}
