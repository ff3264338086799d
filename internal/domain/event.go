package domain

import (
	"context"
	"time"
)

// EventStatus is the lifecycle status of an event. All statuses except
// cancelled are derived from the event dates; cancelled is terminal.
type EventStatus string

const (
	StatusUpcoming  EventStatus = "upcoming"
	StatusOngoing   EventStatus = "ongoing"
	StatusCompleted EventStatus = "completed"
	StatusCancelled EventStatus = "cancelled"
)

// ValidStatus reports whether s is one of the known statuses.
func ValidStatus(s EventStatus) bool {
	switch s {
	case StatusUpcoming, StatusOngoing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Event is the event aggregate: scheduling, location, ownership, capacity
// bookkeeping, pricing, and publication state.
type Event struct {
	ID                   int64       `json:"id"`
	Title                string      `json:"title"`
	Slug                 string      `json:"slug"`
	Description          string      `json:"description"`
	EventDate            time.Time   `json:"event_date"`
	EndDate              *time.Time  `json:"end_date"`
	RegistrationDeadline *time.Time  `json:"registration_deadline"`
	Location             string      `json:"location"`
	Latitude             *float64    `json:"latitude"`
	Longitude            *float64    `json:"longitude"`
	OrganizerID          int64       `json:"organizer_id"`
	Organizer            *Organizer  `json:"organizer,omitempty"`
	CategoryID           *int64      `json:"category_id"`
	Category             *Category   `json:"category,omitempty"`
	Capacity             int         `json:"capacity"`
	CurrentAttendees     int         `json:"current_attendees"`
	AllowWaitlist        bool        `json:"allow_waitlist"`
	Price                float64     `json:"price"`
	IsFree               bool        `json:"is_free"`
	Status               EventStatus `json:"status"`
	IsPublished          bool        `json:"is_published"`
	ImageURL             *string     `json:"image_url"`
	CreatedAt            time.Time   `json:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at"`
}

// Organizer is the minimal projection of the owning user embedded in event
// responses.
type Organizer struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// DeriveStatus recomputes Status from the event dates against now. Cancelled
// is sticky: once set it is never overridden. Rules are evaluated in order,
// first match wins:
//
//  1. event_date in the future      -> upcoming
//  2. end_date set and in the past  -> completed
//  3. started, no end or end ahead  -> ongoing
//
// An event that has started and has no end_date stays ongoing indefinitely.
func (e *Event) DeriveStatus(now time.Time) {
	if e.Status == StatusCancelled {
		return
	}
	switch {
	case e.EventDate.After(now):
		e.Status = StatusUpcoming
	case e.EndDate != nil && e.EndDate.Before(now):
		e.Status = StatusCompleted
	default:
		e.Status = StatusOngoing
	}
}

// IsFull reports whether the event is at or over capacity.
func (e *Event) IsFull() bool {
	return e.CurrentAttendees >= e.Capacity
}

// AvailableSpots returns the remaining capacity, never negative.
func (e *Event) AvailableSpots() int {
	if spots := e.Capacity - e.CurrentAttendees; spots > 0 {
		return spots
	}
	return 0
}

// IsPast reports whether the event start has passed.
func (e *Event) IsPast(now time.Time) bool {
	return e.EventDate.Before(now)
}

// IsUpcoming reports whether the event starts in the future.
func (e *Event) IsUpcoming(now time.Time) bool {
	return e.EventDate.After(now)
}

// CanRegister reports whether registration is still possible: the event must
// not have started, must be published and not cancelled, the registration
// deadline (if any) must not have passed, and a full event only accepts
// registrations when the waitlist is allowed.
func (e *Event) CanRegister(now time.Time) bool {
	if e.IsPast(now) || !e.IsPublished || e.Status == StatusCancelled {
		return false
	}
	if e.RegistrationDeadline != nil && e.RegistrationDeadline.Before(now) {
		return false
	}
	if e.IsFull() && !e.AllowWaitlist {
		return false
	}
	return true
}

// EventInput carries the writable event fields for create and update.
// Organizer, slug, status, and attendee count are never client-supplied.
type EventInput struct {
	Title                string
	Description          string
	EventDate            time.Time
	EndDate              *time.Time
	RegistrationDeadline *time.Time
	Location             string
	Latitude             *float64
	Longitude            *float64
	CategoryID           *int64
	Capacity             int
	Price                float64
	IsFree               bool
	ImageURL             *string
	AllowWaitlist        bool
	IsPublished          bool
}

// EventRepository defines storage operations for events. IncrementAttendees
// and DecrementAttendees are the only sanctioned mutators of the attendee
// counter and must be atomic with their bounds check.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id int64) (*Event, error)
	GetBySlug(ctx context.Context, slug string) (*Event, error)
	List(ctx context.Context, filter EventFilter, params PaginationParams) ([]*Event, int, error)
	Update(ctx context.Context, event *Event) error
	Delete(ctx context.Context, id int64) error
	SlugExists(ctx context.Context, slug string) (bool, error)
	// IncrementAttendees adds one attendee if the event has spots or allows a
	// waitlist, in a single guarded statement. Returns the new count, or
	// ErrEventFull when the guard rejects the increment.
	IncrementAttendees(ctx context.Context, id int64) (int, error)
	// DecrementAttendees removes one attendee unless the count is already
	// zero, in which case it is a no-op. Returns the resulting count.
	DecrementAttendees(ctx context.Context, id int64) (int, error)
}

// EventService defines the business operations over events. The actor is the
// authenticated caller; read operations accept a nil actor for anonymous
// access.
type EventService interface {
	Create(ctx context.Context, actor *Identity, input *EventInput) (*Event, error)
	GetBySlug(ctx context.Context, actor *Identity, slug string) (*Event, error)
	List(ctx context.Context, filter EventFilter, params PaginationParams) ([]*Event, int, error)
	ListUpcoming(ctx context.Context, params PaginationParams) ([]*Event, int, error)
	Update(ctx context.Context, actor *Identity, slug string, input *EventInput) (*Event, error)
	Cancel(ctx context.Context, actor *Identity, slug string) (*Event, error)
	Delete(ctx context.Context, actor *Identity, slug string) error
	Register(ctx context.Context, actor *Identity, slug string) (*Event, error)
	Unregister(ctx context.Context, actor *Identity, slug string) (*Event, error)
}
