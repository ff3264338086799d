package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"eventlistings/internal/domain"
)

const categoryColumns = `
	c.id, c.name, c.slug, c.description, c.icon, c.is_active, c.created_at,
	(SELECT COUNT(*) FROM events e WHERE e.category_id = c.id AND e.is_published = TRUE)
`

type categoryRepository struct {
	DB *sql.DB
}

func NewCategoryRepository(db *sql.DB) domain.CategoryRepository {
	return &categoryRepository{DB: db}
}

func (r *categoryRepository) Create(ctx context.Context, c *domain.Category) error {
	query := `
		INSERT INTO event_categories (name, slug, description, icon, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, c.Name, c.Slug, c.Description, c.Icon, c.IsActive, c.CreatedAt).Scan(&c.ID)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return domain.ErrDuplicateName
	}
	return err
}

func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM event_categories c WHERE c.id = $1 AND c.is_active = TRUE`
	return scanCategory(r.DB.QueryRowContext(ctx, query, id))
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM event_categories c WHERE c.slug = $1 AND c.is_active = TRUE`
	return scanCategory(r.DB.QueryRowContext(ctx, query, slug))
}

func (r *categoryRepository) GetBySlugIncludingInactive(ctx context.Context, slug string) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM event_categories c WHERE c.slug = $1`
	return scanCategory(r.DB.QueryRowContext(ctx, query, slug))
}

func (r *categoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM event_categories c WHERE c.is_active = TRUE ORDER BY c.name`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]*domain.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *categoryRepository) Update(ctx context.Context, c *domain.Category) error {
	query := `
		UPDATE event_categories
		SET name = $1, description = $2, icon = $3, is_active = $4
		WHERE id = $5
	`
	result, err := r.DB.ExecContext(ctx, query, c.Name, c.Description, c.Icon, c.IsActive, c.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domain.ErrDuplicateName
		}
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *categoryRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM event_categories WHERE slug = $1)`, slug).Scan(&exists)
	return exists, err
}

func scanCategory(row rowScanner) (*domain.Category, error) {
	c := &domain.Category{}
	var description, icon sql.NullString
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &description, &icon, &c.IsActive, &c.CreatedAt, &c.EventCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if description.Valid {
		c.Description = &description.String
	}
	if icon.Valid {
		c.Icon = &icon.String
	}
	return c, nil
}
