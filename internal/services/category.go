package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventlistings/internal/domain"
)

// categoryUpcomingLimit caps the events embedded in a category detail.
const categoryUpcomingLimit = 5

type categoryService struct {
	categoryRepo   domain.CategoryRepository
	eventRepo      domain.EventRepository
	contextTimeout time.Duration
}

// NewCategoryService creates a CategoryService backed by the given
// repositories. The event repository supplies the upcoming events embedded in
// category details.
func NewCategoryService(categoryRepo domain.CategoryRepository, eventRepo domain.EventRepository, timeout time.Duration) domain.CategoryService {
	return &categoryService{
		categoryRepo:   categoryRepo,
		eventRepo:      eventRepo,
		contextTimeout: timeout,
	}
}

func (s *categoryService) List(ctx context.Context) ([]*domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *categoryService) GetBySlug(ctx context.Context, slug string) (*domain.CategoryDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	category, err := s.categoryRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	events, _, err := s.eventRepo.List(ctx, domain.EventFilter{
		CategoryID:    &category.ID,
		PublishedOnly: true,
		StartsAfter:   &now,
	}, domain.PaginationParams{Page: 1, PageSize: categoryUpcomingLimit})
	if err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", err)
	}
	for _, e := range events {
		e.DeriveStatus(now)
	}

	return &domain.CategoryDetail{
		Category:       category,
		UpcomingEvents: events,
	}, nil
}

func (s *categoryService) Create(ctx context.Context, actor *domain.Identity, input *domain.CategoryInput) (*domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if actor == nil {
		return nil, domain.ErrNotAuthenticated
	}
	if !actor.IsStaff {
		return nil, domain.ErrForbidden
	}
	if input.Name == "" {
		errs := domain.FieldErrors{}
		errs.Add("name", "Name is required.")
		return nil, errs
	}

	slug, err := s.uniqueSlug(ctx, input.Name)
	if err != nil {
		return nil, fmt.Errorf("generate slug: %w", err)
	}

	category := &domain.Category{
		Name:        input.Name,
		Slug:        slug,
		Description: input.Description,
		Icon:        input.Icon,
		IsActive:    true,
		CreatedAt:   time.Now(),
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, domain.ErrDuplicateName) {
			errs := domain.FieldErrors{}
			errs.Add("name", "A category with this name already exists.")
			return nil, errs
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}

func (s *categoryService) Update(ctx context.Context, actor *domain.Identity, slug string, input *domain.CategoryInput) (*domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if actor == nil {
		return nil, domain.ErrNotAuthenticated
	}
	if !actor.IsStaff {
		return nil, domain.ErrForbidden
	}

	// Inactive categories stay editable so staff can reactivate them.
	category, err := s.categoryRepo.GetBySlugIncludingInactive(ctx, slug)
	if err != nil {
		return nil, err
	}
	// The slug stays stable even when the name changes.
	if input.Name != "" {
		category.Name = input.Name
	}
	if input.Description != nil {
		category.Description = input.Description
	}
	if input.Icon != nil {
		category.Icon = input.Icon
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		if errors.Is(err, domain.ErrDuplicateName) {
			errs := domain.FieldErrors{}
			errs.Add("name", "A category with this name already exists.")
			return nil, errs
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	return category, nil
}

func (s *categoryService) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := domain.Slugify(name)
	if base == "" {
		base = "category"
	}
	slug := base
	for i := 1; i <= maxSlugAttempts; i++ {
		exists, err := s.categoryRepo.SlugExists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
	return "", errors.New("could not generate a unique slug")
}
