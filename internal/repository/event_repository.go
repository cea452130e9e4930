package repository

import (
    "context"
    "database/sql"
    "time"
)

// EventRepo provides read access to scheduled events. Events are the
// capacity-limited offerings (workshops, institutional sessions) that
// registrations attach to; ad-hoc consultations have no event row.
type EventRepo struct {
    db *sql.DB
}

// NewEventRepo returns a new EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo {
    if db == nil {
        panic("nil db passed to NewEventRepo")
    }
    return &EventRepo{db: db}
}

// EventRecord mirrors the schema of the events table.
//
// Fields:
//   - ID: UUID primary key.
//   - Title: display name of the event.
//   - Category: event category slug (see model.EventCategory).
//   - Date: event date in YYYY-MM-DD form.
//   - Capacity: maximum number of active registrations.
//   - CreatedAt: row creation timestamp in UTC.
type EventRecord struct {
    ID        string    `json:"id"`
    Title     string    `json:"title"`
    Category  string    `json:"category"`
    Date      string    `json:"date"`
    Capacity  int       `json:"capacity"`
    CreatedAt time.Time `json:"created_at"`
}

// GetByID fetches a single event. Returns ErrNotFound when the ID does
// not exist.
func (r *EventRepo) GetByID(ctx context.Context, id string) (*EventRecord, error) {
    const q = `SELECT id, title, category, date, capacity, created_at FROM events WHERE id = ?`
    var ev EventRecord
    err := r.db.QueryRowContext(ctx, q, id).Scan(&ev.ID, &ev.Title, &ev.Category, &ev.Date, &ev.Capacity, &ev.CreatedAt)
    if err == sql.ErrNoRows {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    return &ev, nil
}

// List returns events ordered by date, soonest first.
func (r *EventRepo) List(ctx context.Context) ([]EventRecord, error) {
    const q = `SELECT id, title, category, date, capacity, created_at FROM events ORDER BY date ASC, created_at ASC`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []EventRecord
    for rows.Next() {
        var ev EventRecord
        if err := rows.Scan(&ev.ID, &ev.Title, &ev.Category, &ev.Date, &ev.Capacity, &ev.CreatedAt); err != nil {
            return nil, err
        }
        out = append(out, ev)
    }
    return out, rows.Err()
}
