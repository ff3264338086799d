package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventlistings/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	contextTimeout time.Duration
}

// NewEventService creates an EventService backed by the given repository.
func NewEventService(eventRepo domain.EventRepository, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		contextTimeout: timeout,
	}
}

func (s *eventService) Create(ctx context.Context, actor *domain.Identity, input *domain.EventInput) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if actor == nil {
		return nil, domain.ErrNotAuthenticated
	}
	if !actor.IsStaff {
		return nil, domain.ErrForbidden
	}

	now := time.Now()
	if errs := validateEventInput(input, 0, now); errs.HasErrors() {
		return nil, errs
	}

	slug, err := s.uniqueSlug(ctx, input.Title)
	if err != nil {
		return nil, fmt.Errorf("generate slug: %w", err)
	}

	event := &domain.Event{
		Title:                input.Title,
		Slug:                 slug,
		Description:          input.Description,
		EventDate:            input.EventDate,
		EndDate:              input.EndDate,
		RegistrationDeadline: input.RegistrationDeadline,
		Location:             input.Location,
		Latitude:             input.Latitude,
		Longitude:            input.Longitude,
		OrganizerID:          actor.UserID,
		CategoryID:           input.CategoryID,
		Capacity:             input.Capacity,
		AllowWaitlist:        input.AllowWaitlist,
		Price:                input.Price,
		IsFree:               input.IsFree,
		IsPublished:          input.IsPublished,
		ImageURL:             input.ImageURL,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if event.IsFree {
		event.Price = 0
	}
	event.DeriveStatus(now)

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetBySlug(ctx context.Context, actor *domain.Identity, slug string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	// Unpublished events exist only for their organizer.
	if !event.IsPublished && (actor == nil || actor.UserID != event.OrganizerID) {
		return nil, domain.ErrNotFound
	}
	event.DeriveStatus(time.Now())
	return event, nil
}

func (s *eventService) List(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	filter.PublishedOnly = true
	events, total, err := s.eventRepo.List(ctx, filter, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	now := time.Now()
	for _, e := range events {
		e.DeriveStatus(now)
	}
	return events, total, nil
}

func (s *eventService) ListUpcoming(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	now := time.Now()
	filter := domain.EventFilter{
		StartsAfter: &now,
		Status:      domain.StatusUpcoming,
	}
	return s.List(ctx, filter, params)
}

func (s *eventService) Update(ctx context.Context, actor *domain.Identity, slug string, input *domain.EventInput) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.ownedEvent(ctx, actor, slug)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if errs := validateEventInput(input, event.CurrentAttendees, now); errs.HasErrors() {
		return nil, errs
	}

	event.Title = input.Title
	event.Description = input.Description
	event.EventDate = input.EventDate
	event.EndDate = input.EndDate
	event.RegistrationDeadline = input.RegistrationDeadline
	event.Location = input.Location
	event.Latitude = input.Latitude
	event.Longitude = input.Longitude
	event.CategoryID = input.CategoryID
	event.Capacity = input.Capacity
	event.AllowWaitlist = input.AllowWaitlist
	event.Price = input.Price
	event.IsFree = input.IsFree
	event.IsPublished = input.IsPublished
	event.ImageURL = input.ImageURL
	if event.IsFree {
		event.Price = 0
	}
	event.DeriveStatus(now)

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

func (s *eventService) Cancel(ctx context.Context, actor *domain.Identity, slug string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.ownedEvent(ctx, actor, slug)
	if err != nil {
		return nil, err
	}
	event.Status = domain.StatusCancelled
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("cancel event: %w", err)
	}
	return event, nil
}

func (s *eventService) Delete(ctx context.Context, actor *domain.Identity, slug string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.ownedEvent(ctx, actor, slug)
	if err != nil {
		return err
	}
	return s.eventRepo.Delete(ctx, event.ID)
}

func (s *eventService) Register(ctx context.Context, actor *domain.Identity, slug string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if actor == nil {
		return nil, domain.ErrNotAuthenticated
	}
	event, err := s.eventRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !event.IsPublished {
		return nil, domain.ErrNotFound
	}
	now := time.Now()
	event.DeriveStatus(now)
	if !event.CanRegister(now) {
		if event.IsFull() && !event.AllowWaitlist {
			return nil, domain.ErrEventFull
		}
		return nil, domain.ErrRegistrationClosed
	}

	count, err := s.eventRepo.IncrementAttendees(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	event.CurrentAttendees = count
	return event, nil
}

func (s *eventService) Unregister(ctx context.Context, actor *domain.Identity, slug string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if actor == nil {
		return nil, domain.ErrNotAuthenticated
	}
	event, err := s.eventRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	count, err := s.eventRepo.DecrementAttendees(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	event.CurrentAttendees = count
	event.DeriveStatus(time.Now())
	return event, nil
}

// ownedEvent loads the event and checks the actor is its organizer.
func (s *eventService) ownedEvent(ctx context.Context, actor *domain.Identity, slug string) (*domain.Event, error) {
	if actor == nil {
		return nil, domain.ErrNotAuthenticated
	}
	event, err := s.eventRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if event.OrganizerID != actor.UserID {
		return nil, domain.ErrForbidden
	}
	return event, nil
}

const maxSlugAttempts = 100

// uniqueSlug slugifies the title and appends -1, -2, ... until the slug is
// free.
func (s *eventService) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := domain.Slugify(title)
	if base == "" {
		base = "event"
	}
	slug := base
	for i := 1; i <= maxSlugAttempts; i++ {
		exists, err := s.eventRepo.SlugExists(ctx, slug)
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

// validateEventInput applies the event business rules and aggregates every
// violation so the caller sees them all at once.
func validateEventInput(input *domain.EventInput, currentAttendees int, now time.Time) domain.FieldErrors {
	errs := domain.FieldErrors{}
	if input.Title == "" {
		errs.Add("title", "Title is required.")
	}
	if input.Location == "" {
		errs.Add("location", "Location is required.")
	}
	if !input.EventDate.After(now) {
		errs.Add("event_date", "Event date must be in the future.")
	}
	if input.EndDate != nil && !input.EndDate.After(input.EventDate) {
		errs.Add("end_date", "End date must be after the event date.")
	}
	if input.RegistrationDeadline != nil && !input.RegistrationDeadline.Before(input.EventDate) {
		errs.Add("registration_deadline", "Registration deadline must be before the event date.")
	}
	if input.Capacity < 1 {
		errs.Add("capacity", "Capacity must be at least 1.")
	} else if input.Capacity < currentAttendees {
		errs.Add("capacity", fmt.Sprintf("Cannot reduce capacity below current attendees (%d).", currentAttendees))
	}
	if !input.IsFree && input.Price <= 0 {
		errs.Add("price", "Paid events must have a price greater than 0.")
	}
	return errs
}
