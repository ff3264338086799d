package domain

import (
	"context"
	"time"
)

// Category classifies events. Categories are reference data managed by staff
// and are soft-deleted via the active flag rather than removed.
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description"`
	Icon        *string   `json:"icon"`
	IsActive    bool      `json:"is_active"`
	// EventCount is the number of published events in the category. Populated
	// by the repository on read.
	EventCount int       `json:"event_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// CategoryInput carries the writable category fields for create and update.
type CategoryInput struct {
	Name        string
	Description *string
	Icon        *string
	IsActive    *bool
}

// CategoryRepository defines storage operations for categories. Read
// operations return active categories only, except GetBySlugIncludingInactive
// which staff writes use so a deactivated category can be edited back to
// active.
type CategoryRepository interface {
	Create(ctx context.Context, category *Category) error
	GetByID(ctx context.Context, id int64) (*Category, error)
	GetBySlug(ctx context.Context, slug string) (*Category, error)
	GetBySlugIncludingInactive(ctx context.Context, slug string) (*Category, error)
	List(ctx context.Context) ([]*Category, error)
	Update(ctx context.Context, category *Category) error
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// CategoryDetail bundles a category with up to five of its upcoming
// published events.
type CategoryDetail struct {
	Category       *Category `json:"category"`
	UpcomingEvents []*Event  `json:"upcoming_events"`
}

// CategoryService defines the business operations over categories.
type CategoryService interface {
	List(ctx context.Context) ([]*Category, error)
	GetBySlug(ctx context.Context, slug string) (*CategoryDetail, error)
	Create(ctx context.Context, actor *Identity, input *CategoryInput) (*Category, error)
	Update(ctx context.Context, actor *Identity, slug string, input *CategoryInput) (*Category, error)
}
