package events

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("event not found")

var ErrConflict = errors.New("event conflict")

// ErrInvalidID marks identifiers that are not well-formed ObjectID hex
// strings, as opposed to well-formed identifiers with no matching record.
var ErrInvalidID = errors.New("invalid event id")

type Event struct {
	ID          string
	Title       string
	Description string
	Date        time.Time
	Location    string
	Organizer   string
	Tags        []string
	Capacity    int
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UpdateFields carries a partial update. Nil pointers mean the field was
// absent from the request and must be left untouched in storage.
type UpdateFields struct {
	Title       *string
	Description *string
	Date        *time.Time
	Location    *string
	Organizer   *string
	Tags        *[]string
	Capacity    *int
	IsActive    *bool
	UpdatedAt   time.Time
}

type ListParams struct {
	Page     int
	Limit    int
	DateFrom *time.Time
	DateTo   *time.Time
	Tags     []string
}

func (p ListParams) Skip() int64 {
	return int64(p.Page-1) * int64(p.Limit)
}

type ListResult struct {
	Events []Event
	Total  int64
}

type Repository interface {
	Insert(ctx context.Context, event *Event) (*Event, error)
	GetByID(ctx context.Context, id string) (*Event, error)
	// FindActiveByTitleDate looks up an active event with the exact
	// (title, date) pair, skipping excludeID when non-empty. Returns
	// ErrNotFound when no such event exists.
	FindActiveByTitleDate(ctx context.Context, title string, date time.Time, excludeID string) (*Event, error)
	List(ctx context.Context, params ListParams) (ListResult, error)
	Update(ctx context.Context, id string, fields UpdateFields) (*Event, error)
	// SoftDelete flips is_active to false for an active event. Returns
	// ErrNotFound when no active event matched, whether the id is absent
	// or the event was already deleted.
	SoftDelete(ctx context.Context, id string) error
}
