package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventlistings/internal/domain"
)

const testTimeout = 2 * time.Second

// fakeEventRepo implements domain.EventRepository in memory for tests.
type fakeEventRepo struct {
	byID       map[int64]*domain.Event
	nextID     int64
	lastFilter domain.EventFilter
	lastParams domain.PaginationParams
	listResult []*domain.Event
	listTotal  int

	// listApplyFilter makes List evaluate the filter against the stored
	// events instead of returning the canned listResult.
	listApplyFilter bool
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{byID: make(map[int64]*domain.Event)}
}

func (f *fakeEventRepo) add(e *domain.Event) *domain.Event {
	if e.ID == 0 {
		f.nextID++
		e.ID = f.nextID
	}
	f.byID[e.ID] = e
	return e
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	f.nextID++
	e.ID = f.nextID
	cp := *e
	f.byID[e.ID] = &cp
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	if e, ok := f.byID[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	for _, e := range f.byID {
		if e.Slug == slug {
			cp := *e
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) List(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	f.lastFilter = filter
	f.lastParams = params
	if !f.listApplyFilter {
		return f.listResult, f.listTotal, nil
	}
	var matches []*domain.Event
	for id := int64(1); id <= f.nextID; id++ {
		e, ok := f.byID[id]
		if !ok {
			continue
		}
		if filter.PublishedOnly && !e.IsPublished {
			continue
		}
		if filter.StartsAfter != nil && !e.EventDate.After(*filter.StartsAfter) {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		cp := *e
		matches = append(matches, &cp)
	}
	return matches, len(matches), nil
}

func (f *fakeEventRepo) Update(ctx context.Context, e *domain.Event) error {
	if _, ok := f.byID[e.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *e
	f.byID[e.ID] = &cp
	return nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeEventRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	for _, e := range f.byID {
		if e.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEventRepo) IncrementAttendees(ctx context.Context, id int64) (int, error) {
	e, ok := f.byID[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if !e.AllowWaitlist && e.CurrentAttendees >= e.Capacity {
		return 0, domain.ErrEventFull
	}
	e.CurrentAttendees++
	return e.CurrentAttendees, nil
}

func (f *fakeEventRepo) DecrementAttendees(ctx context.Context, id int64) (int, error) {
	e, ok := f.byID[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if e.CurrentAttendees > 0 {
		e.CurrentAttendees--
	}
	return e.CurrentAttendees, nil
}

func staffActor(id int64) *domain.Identity {
	return &domain.Identity{UserID: id, Username: "organizer", IsStaff: true}
}

func validInput(start time.Time) *domain.EventInput {
	return &domain.EventInput{
		Title:       "Tech Conference",
		Description: "Talks and workshops",
		EventDate:   start,
		Location:    "Nairobi",
		Capacity:    100,
		IsFree:      true,
		IsPublished: true,
	}
}

func TestEventService_Create(t *testing.T) {
	ctx := context.Background()
	start := time.Now().Add(48 * time.Hour)

	t.Run("anonymous rejected", func(t *testing.T) {
		svc := NewEventService(newFakeEventRepo(), testTimeout)
		_, err := svc.Create(ctx, nil, validInput(start))
		require.ErrorIs(t, err, domain.ErrNotAuthenticated)
	})

	t.Run("non-staff rejected", func(t *testing.T) {
		svc := NewEventService(newFakeEventRepo(), testTimeout)
		actor := &domain.Identity{UserID: 1, Username: "guest"}
		_, err := svc.Create(ctx, actor, validInput(start))
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("success derives status and owner", func(t *testing.T) {
		repo := newFakeEventRepo()
		svc := NewEventService(repo, testTimeout)

		event, err := svc.Create(ctx, staffActor(7), validInput(start))
		require.NoError(t, err)
		assert.Equal(t, "tech-conference", event.Slug)
		assert.Equal(t, int64(7), event.OrganizerID)
		assert.Equal(t, domain.StatusUpcoming, event.Status)
		assert.Zero(t, event.CurrentAttendees)
	})

	t.Run("duplicate titles get distinct slugs", func(t *testing.T) {
		repo := newFakeEventRepo()
		svc := NewEventService(repo, testTimeout)

		first, err := svc.Create(ctx, staffActor(7), validInput(start))
		require.NoError(t, err)
		second, err := svc.Create(ctx, staffActor(7), validInput(start))
		require.NoError(t, err)
		assert.Equal(t, "tech-conference", first.Slug)
		assert.Equal(t, "tech-conference-1", second.Slug)
	})

	t.Run("slug collisions get numeric suffixes", func(t *testing.T) {
		repo := newFakeEventRepo()
		repo.add(&domain.Event{Slug: "tech-conference"})
		repo.add(&domain.Event{Slug: "tech-conference-1"})
		svc := NewEventService(repo, testTimeout)

		event, err := svc.Create(ctx, staffActor(7), validInput(start))
		require.NoError(t, err)
		assert.Equal(t, "tech-conference-2", event.Slug)
	})

	t.Run("free event price forced to zero", func(t *testing.T) {
		svc := NewEventService(newFakeEventRepo(), testTimeout)
		input := validInput(start)
		input.Price = 25
		event, err := svc.Create(ctx, staffActor(7), input)
		require.NoError(t, err)
		assert.Zero(t, event.Price)
	})

	t.Run("validation errors aggregated", func(t *testing.T) {
		svc := NewEventService(newFakeEventRepo(), testTimeout)
		past := time.Now().Add(-time.Hour)
		end := past.Add(-time.Hour)
		input := &domain.EventInput{
			Title:     "Old Meetup",
			Location:  "Nairobi",
			EventDate: past,
			EndDate:   &end,
			Capacity:  0,
			IsFree:    false,
			Price:     0,
		}

		_, err := svc.Create(ctx, staffActor(7), input)
		var fieldErrs domain.FieldErrors
		require.ErrorAs(t, err, &fieldErrs)
		assert.Contains(t, fieldErrs, "event_date")
		assert.Contains(t, fieldErrs, "end_date")
		assert.Contains(t, fieldErrs, "capacity")
		assert.Contains(t, fieldErrs, "price")
		assert.Equal(t, []string{"Paid events must have a price greater than 0."}, fieldErrs["price"])
	})
}

func TestEventService_GetBySlug_UnpublishedHidden(t *testing.T) {
	ctx := context.Background()
	repo := newFakeEventRepo()
	repo.add(&domain.Event{
		Slug:        "secret-launch",
		OrganizerID: 7,
		EventDate:   time.Now().Add(24 * time.Hour),
		IsPublished: false,
	})
	svc := NewEventService(repo, testTimeout)

	_, err := svc.GetBySlug(ctx, nil, "secret-launch")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GetBySlug(ctx, &domain.Identity{UserID: 8}, "secret-launch")
	require.ErrorIs(t, err, domain.ErrNotFound)

	event, err := svc.GetBySlug(ctx, &domain.Identity{UserID: 7}, "secret-launch")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusUpcoming, event.Status)
}

func TestEventService_List_ForcesPublishedOnly(t *testing.T) {
	repo := newFakeEventRepo()
	svc := NewEventService(repo, testTimeout)

	_, _, err := svc.List(context.Background(), domain.EventFilter{Search: "jazz"}, domain.PaginationParams{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.True(t, repo.lastFilter.PublishedOnly)
	assert.Equal(t, "jazz", repo.lastFilter.Search)
}

func TestEventService_ListUpcoming(t *testing.T) {
	repo := newFakeEventRepo()
	svc := NewEventService(repo, testTimeout)

	_, _, err := svc.ListUpcoming(context.Background(), domain.PaginationParams{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.True(t, repo.lastFilter.PublishedOnly)
	assert.Equal(t, domain.StatusUpcoming, repo.lastFilter.Status)
	require.NotNil(t, repo.lastFilter.StartsAfter)
	assert.WithinDuration(t, time.Now(), *repo.lastFilter.StartsAfter, time.Minute)
}

func TestEventService_ListUpcoming_ExcludesCancelled(t *testing.T) {
	repo := newFakeEventRepo()
	repo.listApplyFilter = true
	repo.add(&domain.Event{
		Title:       "Jazz Night",
		Slug:        "jazz-night",
		EventDate:   time.Now().Add(72 * time.Hour),
		Capacity:    50,
		IsPublished: true,
		Status:      domain.StatusCancelled,
	})
	repo.add(&domain.Event{
		Title:       "Tech Conference",
		Slug:        "tech-conference",
		EventDate:   time.Now().Add(48 * time.Hour),
		Capacity:    100,
		IsPublished: true,
		Status:      domain.StatusUpcoming,
	})
	svc := NewEventService(repo, testTimeout)

	events, total, err := svc.ListUpcoming(context.Background(), domain.PaginationParams{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, events, 1)
	assert.Equal(t, "tech-conference", events[0].Slug)
}

func TestEventService_Update(t *testing.T) {
	ctx := context.Background()
	start := time.Now().Add(48 * time.Hour)

	newRepo := func() *fakeEventRepo {
		repo := newFakeEventRepo()
		repo.add(&domain.Event{
			Title:            "Tech Conference",
			Slug:             "tech-conference",
			OrganizerID:      7,
			EventDate:        start,
			Capacity:         100,
			CurrentAttendees: 40,
			IsFree:           true,
			IsPublished:      true,
			Status:           domain.StatusUpcoming,
		})
		return repo
	}

	t.Run("non-owner forbidden", func(t *testing.T) {
		svc := NewEventService(newRepo(), testTimeout)
		_, err := svc.Update(ctx, staffActor(8), "tech-conference", validInput(start))
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("capacity cannot drop below attendees", func(t *testing.T) {
		svc := NewEventService(newRepo(), testTimeout)
		input := validInput(start)
		input.Capacity = 10

		_, err := svc.Update(ctx, staffActor(7), "tech-conference", input)
		var fieldErrs domain.FieldErrors
		require.ErrorAs(t, err, &fieldErrs)
		assert.Equal(t, []string{"Cannot reduce capacity below current attendees (40)."}, fieldErrs["capacity"])
	})

	t.Run("slug survives title change", func(t *testing.T) {
		svc := NewEventService(newRepo(), testTimeout)
		input := validInput(start)
		input.Title = "Renamed Conference"

		event, err := svc.Update(ctx, staffActor(7), "tech-conference", input)
		require.NoError(t, err)
		assert.Equal(t, "Renamed Conference", event.Title)
		assert.Equal(t, "tech-conference", event.Slug)
	})
}

func TestEventService_Cancel_IsSticky(t *testing.T) {
	ctx := context.Background()
	repo := newFakeEventRepo()
	repo.add(&domain.Event{
		Slug:        "doomed-event",
		OrganizerID: 7,
		EventDate:   time.Now().Add(24 * time.Hour),
		Capacity:    10,
		IsPublished: true,
		Status:      domain.StatusUpcoming,
	})
	svc := NewEventService(repo, testTimeout)

	event, err := svc.Cancel(ctx, staffActor(7), "doomed-event")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, event.Status)

	// A later read never resurrects a cancelled event.
	event, err = svc.GetBySlug(ctx, nil, "doomed-event")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, event.Status)
}

func TestEventService_Register(t *testing.T) {
	ctx := context.Background()
	attendee := &domain.Identity{UserID: 20, Username: "attendee"}

	upcoming := func(mut func(e *domain.Event)) *fakeEventRepo {
		repo := newFakeEventRepo()
		e := &domain.Event{
			Slug:        "jazz-night",
			OrganizerID: 7,
			EventDate:   time.Now().Add(24 * time.Hour),
			Capacity:    2,
			IsPublished: true,
			Status:      domain.StatusUpcoming,
		}
		if mut != nil {
			mut(e)
		}
		repo.add(e)
		return repo
	}

	t.Run("anonymous rejected", func(t *testing.T) {
		svc := NewEventService(upcoming(nil), testTimeout)
		_, err := svc.Register(ctx, nil, "jazz-night")
		require.ErrorIs(t, err, domain.ErrNotAuthenticated)
	})

	t.Run("success increments count", func(t *testing.T) {
		svc := NewEventService(upcoming(nil), testTimeout)
		event, err := svc.Register(ctx, attendee, "jazz-night")
		require.NoError(t, err)
		assert.Equal(t, 1, event.CurrentAttendees)
	})

	t.Run("full without waitlist", func(t *testing.T) {
		svc := NewEventService(upcoming(func(e *domain.Event) {
			e.CurrentAttendees = 2
		}), testTimeout)
		_, err := svc.Register(ctx, attendee, "jazz-night")
		require.ErrorIs(t, err, domain.ErrEventFull)
	})

	t.Run("full with waitlist accepts", func(t *testing.T) {
		svc := NewEventService(upcoming(func(e *domain.Event) {
			e.CurrentAttendees = 2
			e.AllowWaitlist = true
		}), testTimeout)
		event, err := svc.Register(ctx, attendee, "jazz-night")
		require.NoError(t, err)
		assert.Equal(t, 3, event.CurrentAttendees)
	})

	t.Run("deadline passed", func(t *testing.T) {
		svc := NewEventService(upcoming(func(e *domain.Event) {
			deadline := time.Now().Add(-time.Hour)
			e.RegistrationDeadline = &deadline
		}), testTimeout)
		_, err := svc.Register(ctx, attendee, "jazz-night")
		require.ErrorIs(t, err, domain.ErrRegistrationClosed)
	})

	t.Run("past event closed", func(t *testing.T) {
		svc := NewEventService(upcoming(func(e *domain.Event) {
			e.EventDate = time.Now().Add(-time.Hour)
		}), testTimeout)
		_, err := svc.Register(ctx, attendee, "jazz-night")
		require.ErrorIs(t, err, domain.ErrRegistrationClosed)
	})

	t.Run("unpublished invisible", func(t *testing.T) {
		svc := NewEventService(upcoming(func(e *domain.Event) {
			e.IsPublished = false
		}), testTimeout)
		_, err := svc.Register(ctx, attendee, "jazz-night")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestEventService_Unregister_FloorsAtZero(t *testing.T) {
	ctx := context.Background()
	repo := newFakeEventRepo()
	repo.add(&domain.Event{
		Slug:        "jazz-night",
		OrganizerID: 7,
		EventDate:   time.Now().Add(24 * time.Hour),
		Capacity:    2,
		IsPublished: true,
	})
	svc := NewEventService(repo, testTimeout)

	event, err := svc.Unregister(ctx, &domain.Identity{UserID: 20}, "jazz-night")
	require.NoError(t, err)
	assert.Zero(t, event.CurrentAttendees)
}

func TestEventService_Delete(t *testing.T) {
	ctx := context.Background()
	repo := newFakeEventRepo()
	repo.add(&domain.Event{Slug: "jazz-night", OrganizerID: 7, EventDate: time.Now().Add(time.Hour)})
	svc := NewEventService(repo, testTimeout)

	require.ErrorIs(t, svc.Delete(ctx, staffActor(8), "jazz-night"), domain.ErrForbidden)
	require.NoError(t, svc.Delete(ctx, staffActor(7), "jazz-night"))
	require.ErrorIs(t, svc.Delete(ctx, staffActor(7), "jazz-night"), domain.ErrNotFound)
}
