// Package repository provides the event catalog sources and the viewer
// session store. The Postgres catalog uses pgx directly (no ORM).
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/event-nexus/internal/model"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

const eventColumns = `id, title, description, to_char(event_date, 'YYYY-MM-DD'), event_time,
		        location, category, attendees, capacity, image, price::float8`

// EventRepository reads the catalog from PostgreSQL. The catalog is
// read-only at runtime; rows are seeded by migrations.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

// List returns the catalog in insertion order.
func (r *EventRepository) List(ctx context.Context) ([]model.Event, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+eventColumns+`
		 FROM events
		 ORDER BY position ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := []model.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// GetByID returns a single event or ErrNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	e, err := scanEvent(r.db.QueryRow(ctx,
		`SELECT `+eventColumns+`
		 FROM events WHERE id = $1`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func scanEvent(row pgx.Row) (model.Event, error) {
	var (
		e        model.Event
		category string
	)
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Date, &e.Time,
		&e.Location, &category, &e.Attendees, &e.Capacity, &e.Image, &e.Price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return e, err
		}
		return e, fmt.Errorf("scan event: %w", err)
	}
	e.Category = model.Category(category)
	if err := e.Validate(); err != nil {
		return e, err
	}
	return e, nil
}
