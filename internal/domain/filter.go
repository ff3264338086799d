package domain

import "time"

// EventFilter is the composed predicate over the event collection. Every
// field is optional; supplied fields are ANDed together by the repository.
type EventFilter struct {
	// DateFrom / DateTo bound event_date (inclusive).
	DateFrom *time.Time
	DateTo   *time.Time
	// Category matches the category id when numeric, the category slug
	// otherwise.
	Category string
	// Location is a case-insensitive substring match.
	Location string
	IsFree   *bool
	Status   EventStatus
	// OrganizerID matches the owning user's id exactly.
	OrganizerID *int64
	// HasSpots, when true, keeps only events with current_attendees < capacity.
	// False means no filtering, matching the original behavior.
	HasSpots bool
	// Search is free-text: case-insensitive substring over title, description,
	// or location, composed with AND against the structured filters.
	Search string
	// PublishedOnly restricts to published events. Set on all public read
	// paths.
	PublishedOnly bool
	// StartsAfter keeps events with event_date strictly after the given
	// instant. Used by the upcoming listing and category detail embeds.
	StartsAfter *time.Time
	// CategoryID matches the category id exactly (internal paths).
	CategoryID *int64
}
