package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"eventlistings/internal/domain"
)

// eventColumns is the shared select list for event reads: the event row, the
// organizer projection, the category projection, and the category's published
// event count.
const eventColumns = `
	e.id, e.title, e.slug, e.description, e.event_date, e.end_date,
	e.registration_deadline, e.location, e.latitude, e.longitude,
	e.organizer_id, e.category_id, e.capacity, e.current_attendees,
	e.allow_waitlist, e.price, e.is_free, e.status, e.is_published,
	e.image_url, e.created_at, e.updated_at,
	u.username, u.email,
	c.name, c.slug, c.description, c.icon,
	(SELECT COUNT(*) FROM events e2 WHERE e2.category_id = c.id AND e2.is_published = TRUE)
`

const eventJoins = `
	FROM events e
	JOIN users u ON u.id = e.organizer_id
	LEFT JOIN event_categories c ON c.id = e.category_id
`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (
			title, slug, description, event_date, end_date, registration_deadline,
			location, latitude, longitude, organizer_id, category_id, capacity,
			current_attendees, allow_waitlist, price, is_free, status,
			is_published, image_url, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Title, e.Slug, e.Description, e.EventDate, e.EndDate, e.RegistrationDeadline,
		e.Location, e.Latitude, e.Longitude, e.OrganizerID, e.CategoryID, e.Capacity,
		e.CurrentAttendees, e.AllowWaitlist, e.Price, e.IsFree, e.Status,
		e.IsPublished, e.ImageURL, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + eventJoins + ` WHERE e.id = $1`
	return scanEvent(r.DB.QueryRowContext(ctx, query, id))
}

func (r *eventRepository) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + eventJoins + ` WHERE e.slug = $1`
	return scanEvent(r.DB.QueryRowContext(ctx, query, strings.TrimSpace(slug)))
}

// buildEventPredicates translates the filter into WHERE clauses and ordered
// args. Supplied filters are ANDed; absent ones add nothing.
func buildEventPredicates(f domain.EventFilter) ([]string, []interface{}) {
	var conds []string
	var args []interface{}
	n := 1

	add := func(cond string, vals ...interface{}) {
		conds = append(conds, cond)
		args = append(args, vals...)
		n += len(vals)
	}

	if f.PublishedOnly {
		conds = append(conds, "e.is_published = TRUE")
	}
	if f.DateFrom != nil {
		add(fmt.Sprintf("e.event_date >= $%d", n), *f.DateFrom)
	}
	if f.DateTo != nil {
		add(fmt.Sprintf("e.event_date <= $%d", n), *f.DateTo)
	}
	if f.StartsAfter != nil {
		add(fmt.Sprintf("e.event_date > $%d", n), *f.StartsAfter)
	}
	if f.Category != "" {
		// Numeric values match the category id, anything else the slug.
		if id, err := strconv.ParseInt(f.Category, 10, 64); err == nil {
			add(fmt.Sprintf("e.category_id = $%d", n), id)
		} else {
			add(fmt.Sprintf("c.slug = $%d", n), f.Category)
		}
	}
	if f.CategoryID != nil {
		add(fmt.Sprintf("e.category_id = $%d", n), *f.CategoryID)
	}
	if f.Location != "" {
		add(fmt.Sprintf("e.location ILIKE $%d", n), "%"+f.Location+"%")
	}
	if f.IsFree != nil {
		add(fmt.Sprintf("e.is_free = $%d", n), *f.IsFree)
	}
	if f.Status != "" {
		add(fmt.Sprintf("e.status = $%d", n), f.Status)
	}
	if f.OrganizerID != nil {
		add(fmt.Sprintf("e.organizer_id = $%d", n), *f.OrganizerID)
	}
	if f.HasSpots {
		conds = append(conds, "e.current_attendees < e.capacity")
	}
	if f.Search != "" {
		add(fmt.Sprintf("(e.title ILIKE $%d OR e.description ILIKE $%d OR e.location ILIKE $%d)", n, n, n), "%"+f.Search+"%")
	}
	return conds, args
}

func (r *eventRepository) List(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	conds, args := buildEventPredicates(filter)
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	countQuery := `SELECT COUNT(*)` + eventJoins + where
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	query := `SELECT ` + eventColumns + eventJoins + where +
		fmt.Sprintf(" ORDER BY e.event_date DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, params.PageSize, params.Offset())

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	return events, total, rows.Err()
}

// Update persists every writable field except the slug (immutable), the
// attendee counter (owned by the increment/decrement operations), and the
// organizer.
func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events SET
			title = $1, description = $2, event_date = $3, end_date = $4,
			registration_deadline = $5, location = $6, latitude = $7, longitude = $8,
			category_id = $9, capacity = $10, allow_waitlist = $11, price = $12,
			is_free = $13, status = $14, is_published = $15, image_url = $16,
			updated_at = NOW()
		WHERE id = $17
		RETURNING updated_at
	`
	err := r.DB.QueryRowContext(ctx, query,
		e.Title, e.Description, e.EventDate, e.EndDate,
		e.RegistrationDeadline, e.Location, e.Latitude, e.Longitude,
		e.CategoryID, e.Capacity, e.AllowWaitlist, e.Price,
		e.IsFree, e.Status, e.IsPublished, e.ImageURL,
		e.ID,
	).Scan(&e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

func (r *eventRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM events WHERE slug = $1)`, slug).Scan(&exists)
	return exists, err
}

// IncrementAttendees is the atomic registration counter: the capacity check
// and the increment happen in one statement, so concurrent registrations
// cannot overbook. Waitlisted events may exceed capacity.
func (r *eventRepository) IncrementAttendees(ctx context.Context, id int64) (int, error) {
	query := `
		UPDATE events
		SET current_attendees = current_attendees + 1, updated_at = NOW()
		WHERE id = $1 AND (allow_waitlist OR current_attendees < capacity)
		RETURNING current_attendees
	`
	var count int
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		var exists bool
		if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM events WHERE id = $1)`, id).Scan(&exists); err != nil {
			return 0, err
		}
		if !exists {
			return 0, domain.ErrNotFound
		}
		return 0, domain.ErrEventFull
	}
	return count, err
}

// DecrementAttendees lowers the counter unless it is already zero; the guard
// lives in the statement so the counter can never go negative.
func (r *eventRepository) DecrementAttendees(ctx context.Context, id int64) (int, error) {
	query := `
		UPDATE events
		SET current_attendees = current_attendees - 1, updated_at = NOW()
		WHERE id = $1 AND current_attendees > 0
		RETURNING current_attendees
	`
	var count int
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		err = r.DB.QueryRowContext(ctx, `SELECT current_attendees FROM events WHERE id = $1`, id).Scan(&count)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return count, err
	}
	return count, err
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var (
		endDate, regDeadline         sql.NullTime
		lat, lng                     sql.NullFloat64
		categoryID                   sql.NullInt64
		imageURL                     sql.NullString
		orgUsername, orgEmail        sql.NullString
		catName, catSlug             sql.NullString
		catDescription, catIcon      sql.NullString
		catEventCount                sql.NullInt64
	)
	err := row.Scan(
		&e.ID, &e.Title, &e.Slug, &e.Description, &e.EventDate, &endDate,
		&regDeadline, &e.Location, &lat, &lng,
		&e.OrganizerID, &categoryID, &e.Capacity, &e.CurrentAttendees,
		&e.AllowWaitlist, &e.Price, &e.IsFree, &e.Status, &e.IsPublished,
		&imageURL, &e.CreatedAt, &e.UpdatedAt,
		&orgUsername, &orgEmail,
		&catName, &catSlug, &catDescription, &catIcon,
		&catEventCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if endDate.Valid {
		e.EndDate = &endDate.Time
	}
	if regDeadline.Valid {
		e.RegistrationDeadline = &regDeadline.Time
	}
	if lat.Valid {
		e.Latitude = &lat.Float64
	}
	if lng.Valid {
		e.Longitude = &lng.Float64
	}
	if imageURL.Valid {
		e.ImageURL = &imageURL.String
	}
	e.Organizer = &domain.Organizer{
		ID:       e.OrganizerID,
		Username: orgUsername.String,
		Email:    orgEmail.String,
	}
	if categoryID.Valid {
		e.CategoryID = &categoryID.Int64
		cat := &domain.Category{
			ID:         categoryID.Int64,
			Name:       catName.String,
			Slug:       catSlug.String,
			IsActive:   true,
			EventCount: int(catEventCount.Int64),
		}
		if catDescription.Valid {
			cat.Description = &catDescription.String
		}
		if catIcon.Valid {
			cat.Icon = &catIcon.String
		}
		e.Category = cat
	}
	return e, nil
}
