package controllers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"eventlistings/internal/delivery/http/helpers"
	"eventlistings/internal/delivery/http/middleware"
	"eventlistings/internal/domain"
)

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// CategoryRef is the category projection embedded in event responses.
type CategoryRef struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
	EventCount  int     `json:"event_count"`
}

// EventListItem is the trimmed event projection used in list responses: the
// detail fields minus coordinates, registration bookkeeping, and the derived
// eligibility flags.
type EventListItem struct {
	ID               int64              `json:"id"`
	Title            string             `json:"title"`
	Slug             string             `json:"slug"`
	Description      string             `json:"description"`
	EventDate        time.Time          `json:"event_date"`
	EndDate          *time.Time         `json:"end_date"`
	Location         string             `json:"location"`
	Organizer        *domain.Organizer  `json:"organizer"`
	Category         *CategoryRef       `json:"category"`
	Capacity         int                `json:"capacity"`
	CurrentAttendees int                `json:"current_attendees"`
	AvailableSpots   int                `json:"available_spots"`
	IsFull           bool               `json:"is_full"`
	Price            float64            `json:"price"`
	IsFree           bool               `json:"is_free"`
	Status           domain.EventStatus `json:"status"`
	IsPublished      bool               `json:"is_published"`
	ImageURL         *string            `json:"image_url"`
	CreatedAt        time.Time          `json:"created_at"`
}

// EventResponse is the full event projection used in detail responses.
type EventResponse struct {
	ID                   int64              `json:"id"`
	Title                string             `json:"title"`
	Slug                 string             `json:"slug"`
	Description          string             `json:"description"`
	EventDate            time.Time          `json:"event_date"`
	EndDate              *time.Time         `json:"end_date"`
	RegistrationDeadline *time.Time         `json:"registration_deadline"`
	Location             string             `json:"location"`
	Latitude             *float64           `json:"latitude"`
	Longitude            *float64           `json:"longitude"`
	Organizer            *domain.Organizer  `json:"organizer"`
	Category             *CategoryRef       `json:"category"`
	Capacity             int                `json:"capacity"`
	CurrentAttendees     int                `json:"current_attendees"`
	AvailableSpots       int                `json:"available_spots"`
	IsFull               bool               `json:"is_full"`
	IsPast               bool               `json:"is_past"`
	IsUpcoming           bool               `json:"is_upcoming"`
	CanRegister          bool               `json:"can_register"`
	AllowWaitlist        bool               `json:"allow_waitlist"`
	Price                float64            `json:"price"`
	IsFree               bool               `json:"is_free"`
	Status               domain.EventStatus `json:"status"`
	IsPublished          bool               `json:"is_published"`
	ImageURL             *string            `json:"image_url"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
}

func categoryRef(c *domain.Category) *CategoryRef {
	if c == nil {
		return nil
	}
	return &CategoryRef{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		Icon:        c.Icon,
		EventCount:  c.EventCount,
	}
}

func newEventListItem(e *domain.Event) EventListItem {
	return EventListItem{
		ID:               e.ID,
		Title:            e.Title,
		Slug:             e.Slug,
		Description:      e.Description,
		EventDate:        e.EventDate,
		EndDate:          e.EndDate,
		Location:         e.Location,
		Organizer:        e.Organizer,
		Category:         categoryRef(e.Category),
		Capacity:         e.Capacity,
		CurrentAttendees: e.CurrentAttendees,
		AvailableSpots:   e.AvailableSpots(),
		IsFull:           e.IsFull(),
		Price:            e.Price,
		IsFree:           e.IsFree,
		Status:           e.Status,
		IsPublished:      e.IsPublished,
		ImageURL:         e.ImageURL,
		CreatedAt:        e.CreatedAt,
	}
}

func newEventResponse(e *domain.Event) EventResponse {
	now := time.Now()
	return EventResponse{
		ID:                   e.ID,
		Title:                e.Title,
		Slug:                 e.Slug,
		Description:          e.Description,
		EventDate:            e.EventDate,
		EndDate:              e.EndDate,
		RegistrationDeadline: e.RegistrationDeadline,
		Location:             e.Location,
		Latitude:             e.Latitude,
		Longitude:            e.Longitude,
		Organizer:            e.Organizer,
		Category:             categoryRef(e.Category),
		Capacity:             e.Capacity,
		CurrentAttendees:     e.CurrentAttendees,
		AvailableSpots:       e.AvailableSpots(),
		IsFull:               e.IsFull(),
		IsPast:               e.IsPast(now),
		IsUpcoming:           e.IsUpcoming(now),
		CanRegister:          e.CanRegister(now),
		AllowWaitlist:        e.AllowWaitlist,
		Price:                e.Price,
		IsFree:               e.IsFree,
		Status:               e.Status,
		IsPublished:          e.IsPublished,
		ImageURL:             e.ImageURL,
		CreatedAt:            e.CreatedAt,
		UpdatedAt:            e.UpdatedAt,
	}
}

func newEventListItems(events []*domain.Event) []EventListItem {
	items := make([]EventListItem, 0, len(events))
	for _, e := range events {
		items = append(items, newEventListItem(e))
	}
	return items
}

// EventRequest is the request body for POST and PUT /events.
type EventRequest struct {
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	EventDate            time.Time  `json:"event_date"`
	EndDate              *time.Time `json:"end_date"`
	RegistrationDeadline *time.Time `json:"registration_deadline"`
	Location             string     `json:"location"`
	Latitude             *float64   `json:"latitude"`
	Longitude            *float64   `json:"longitude"`
	CategoryID           *int64     `json:"category_id"`
	Capacity             int        `json:"capacity"`
	Price                float64    `json:"price"`
	IsFree               bool       `json:"is_free"`
	AllowWaitlist        bool       `json:"allow_waitlist"`
	IsPublished          bool       `json:"is_published"`
	ImageURL             *string    `json:"image_url"`
}

// Validate implements Validator. Shape-level rules only; date and capacity
// business rules live in the service.
func (e EventRequest) Validate() domain.FieldErrors {
	errs := domain.FieldErrors{}
	if e.Title == "" {
		errs.Add("title", "Title is required.")
	}
	if e.Location == "" {
		errs.Add("location", "Location is required.")
	}
	if e.EventDate.IsZero() {
		errs.Add("event_date", "Event date is required.")
	}
	if e.Latitude != nil && (*e.Latitude < -90 || *e.Latitude > 90) {
		errs.Add("latitude", "Latitude must be between -90 and 90.")
	}
	if e.Longitude != nil && (*e.Longitude < -180 || *e.Longitude > 180) {
		errs.Add("longitude", "Longitude must be between -180 and 180.")
	}
	return errs
}

func (e EventRequest) toInput() *domain.EventInput {
	return &domain.EventInput{
		Title:                e.Title,
		Description:          e.Description,
		EventDate:            e.EventDate,
		EndDate:              e.EndDate,
		RegistrationDeadline: e.RegistrationDeadline,
		Location:             e.Location,
		Latitude:             e.Latitude,
		Longitude:            e.Longitude,
		CategoryID:           e.CategoryID,
		Capacity:             e.Capacity,
		Price:                e.Price,
		IsFree:               e.IsFree,
		AllowWaitlist:        e.AllowWaitlist,
		IsPublished:          e.IsPublished,
		ImageURL:             e.ImageURL,
	}
}

// PatchEventRequest is the request body for PATCH /events/{slug}. All fields
// optional; omitted fields are unchanged.
type PatchEventRequest struct {
	Title                *string    `json:"title"`
	Description          *string    `json:"description"`
	EventDate            *time.Time `json:"event_date"`
	EndDate              *time.Time `json:"end_date"`
	RegistrationDeadline *time.Time `json:"registration_deadline"`
	Location             *string    `json:"location"`
	Latitude             *float64   `json:"latitude"`
	Longitude            *float64   `json:"longitude"`
	CategoryID           *int64     `json:"category_id"`
	Capacity             *int       `json:"capacity"`
	Price                *float64   `json:"price"`
	IsFree               *bool      `json:"is_free"`
	AllowWaitlist        *bool      `json:"allow_waitlist"`
	IsPublished          *bool      `json:"is_published"`
	ImageURL             *string    `json:"image_url"`
}

// Validate implements Validator.
func (p PatchEventRequest) Validate() domain.FieldErrors {
	errs := domain.FieldErrors{}
	if p.Title != nil && *p.Title == "" {
		errs.Add("title", "Title is required.")
	}
	if p.Location != nil && *p.Location == "" {
		errs.Add("location", "Location is required.")
	}
	if p.Latitude != nil && (*p.Latitude < -90 || *p.Latitude > 90) {
		errs.Add("latitude", "Latitude must be between -90 and 90.")
	}
	if p.Longitude != nil && (*p.Longitude < -180 || *p.Longitude > 180) {
		errs.Add("longitude", "Longitude must be between -180 and 180.")
	}
	return errs
}

// applyTo overlays the supplied fields onto an input built from the current
// event state.
func (p PatchEventRequest) applyTo(input *domain.EventInput) {
	if p.Title != nil {
		input.Title = *p.Title
	}
	if p.Description != nil {
		input.Description = *p.Description
	}
	if p.EventDate != nil {
		input.EventDate = *p.EventDate
	}
	if p.EndDate != nil {
		input.EndDate = p.EndDate
	}
	if p.RegistrationDeadline != nil {
		input.RegistrationDeadline = p.RegistrationDeadline
	}
	if p.Location != nil {
		input.Location = *p.Location
	}
	if p.Latitude != nil {
		input.Latitude = p.Latitude
	}
	if p.Longitude != nil {
		input.Longitude = p.Longitude
	}
	if p.CategoryID != nil {
		input.CategoryID = p.CategoryID
	}
	if p.Capacity != nil {
		input.Capacity = *p.Capacity
	}
	if p.Price != nil {
		input.Price = *p.Price
	}
	if p.IsFree != nil {
		input.IsFree = *p.IsFree
	}
	if p.AllowWaitlist != nil {
		input.AllowWaitlist = *p.AllowWaitlist
	}
	if p.IsPublished != nil {
		input.IsPublished = *p.IsPublished
	}
	if p.ImageURL != nil {
		input.ImageURL = p.ImageURL
	}
}

// dateLayouts accepted by the date_from / date_to query parameters.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

func parseQueryDate(s string) (*time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, true
		}
	}
	return nil, false
}

// parseEventFilter reads the supported filter query parameters. Unparseable
// values are reported per parameter so the caller sees every problem at once.
func parseEventFilter(r *http.Request) (domain.EventFilter, domain.FieldErrors) {
	q := r.URL.Query()
	errs := domain.FieldErrors{}
	var filter domain.EventFilter

	if s := q.Get("date_from"); s != "" {
		if t, ok := parseQueryDate(s); ok {
			filter.DateFrom = t
		} else {
			errs.Add("date_from", "Enter a valid date.")
		}
	}
	if s := q.Get("date_to"); s != "" {
		if t, ok := parseQueryDate(s); ok {
			filter.DateTo = t
		} else {
			errs.Add("date_to", "Enter a valid date.")
		}
	}
	filter.Category = q.Get("category")
	filter.Location = q.Get("location")
	if s := q.Get("is_free"); s != "" {
		if v, err := strconv.ParseBool(s); err == nil {
			filter.IsFree = &v
		} else {
			errs.Add("is_free", "Enter a valid boolean.")
		}
	}
	if s := q.Get("status"); s != "" {
		if domain.ValidStatus(domain.EventStatus(s)) {
			filter.Status = domain.EventStatus(s)
		} else {
			errs.Add("status", "Enter a valid status.")
		}
	}
	if s := q.Get("organizer"); s != "" {
		if id, err := strconv.ParseInt(s, 10, 64); err == nil {
			filter.OrganizerID = &id
		} else {
			errs.Add("organizer", "Enter a valid organizer id.")
		}
	}
	if s := q.Get("has_spots"); s != "" {
		if v, err := strconv.ParseBool(s); err == nil {
			filter.HasSpots = v
		} else {
			errs.Add("has_spots", "Enter a valid boolean.")
		}
	}
	filter.Search = q.Get("search")
	return filter, errs
}

// List godoc
// @Summary List published events
// @Description Returns published events, newest event date first. Supports filtering by date range, category (id or slug), location, price, status, organizer, availability, and free-text search.
// @Tags events
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Param date_from query string false "Events on or after this date"
// @Param date_to query string false "Events on or before this date"
// @Param category query string false "Category id or slug"
// @Param location query string false "Location substring"
// @Param is_free query bool false "Free events only"
// @Param status query string false "Event status"
// @Param organizer query int false "Organizer user id"
// @Param has_spots query bool false "Events with available spots only"
// @Param search query string false "Free-text search over title, description, location"
// @Success 200 {object} helpers.PaginatedResponse
// @Failure 400 {object} helpers.ErrorResponse
// @Router /events [get]
func (c *EventController) List(w http.ResponseWriter, r *http.Request) {
	filter, errs := parseEventFilter(r)
	if errs.HasErrors() {
		helpers.WriteError(w, http.StatusBadRequest, helpers.ErrKindValidation, "Invalid query parameters.", errs)
		return
	}
	params := helpers.ParsePagination(r)
	events, total, err := c.Service.List(r.Context(), filter, params)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, helpers.NewPaginatedResponse(params, total, newEventListItems(events)))
}

// ListUpcoming godoc
// @Summary List upcoming events
// @Description Returns published events starting in the future.
// @Tags events
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} helpers.PaginatedResponse
// @Router /events/upcoming [get]
func (c *EventController) ListUpcoming(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)
	events, total, err := c.Service.ListUpcoming(r.Context(), params)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, helpers.NewPaginatedResponse(params, total, newEventListItems(events)))
}

// Create godoc
// @Summary Create an event
// @Description Create a new event. The authenticated user becomes the organizer; the slug is generated from the title.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body EventRequest true "Event data"
// @Success 201 {object} EventResponse
// @Failure 400 {object} helpers.ErrorResponse
// @Failure 401 {object} helpers.ErrorResponse
// @Failure 403 {object} helpers.ErrorResponse
// @Router /events [post]
func (c *EventController) Create(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.Create(r.Context(), middleware.IdentityFromContext(r.Context()), req.toInput())
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, newEventResponse(event))
}

// Get godoc
// @Summary Get an event by slug
// @Description Returns the full event detail. Unpublished events are visible only to their organizer.
// @Tags events
// @Produce json
// @Param slug path string true "Event slug"
// @Success 200 {object} EventResponse
// @Failure 404 {object} helpers.ErrorResponse
// @Router /events/{slug} [get]
func (c *EventController) Get(w http.ResponseWriter, r *http.Request) {
	event, err := c.Service.GetBySlug(r.Context(), middleware.IdentityFromContext(r.Context()), r.PathValue("slug"))
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, newEventResponse(event))
}

// Put godoc
// @Summary Replace an event
// @Description Full update of an event. Only the organizer may update; the slug never changes.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Event slug"
// @Param event body EventRequest true "Event data"
// @Success 200 {object} EventResponse
// @Failure 400 {object} helpers.ErrorResponse
// @Failure 403 {object} helpers.ErrorResponse
// @Failure 404 {object} helpers.ErrorResponse
// @Router /events/{slug} [put]
func (c *EventController) Put(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.Update(r.Context(), middleware.IdentityFromContext(r.Context()), r.PathValue("slug"), req.toInput())
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, newEventResponse(event))
}

// Patch godoc
// @Summary Update an event
// @Description Partial update of an event. Omitted fields keep their current values. Only the organizer may update.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Event slug"
// @Param event body PatchEventRequest true "Fields to change"
// @Success 200 {object} EventResponse
// @Failure 400 {object} helpers.ErrorResponse
// @Failure 403 {object} helpers.ErrorResponse
// @Failure 404 {object} helpers.ErrorResponse
// @Router /events/{slug} [patch]
func (c *EventController) Patch(w http.ResponseWriter, r *http.Request) {
	var req PatchEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	actor := middleware.IdentityFromContext(r.Context())
	slug := r.PathValue("slug")

	current, err := c.Service.GetBySlug(r.Context(), actor, slug)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	input := &domain.EventInput{
		Title:                current.Title,
		Description:          current.Description,
		EventDate:            current.EventDate,
		EndDate:              current.EndDate,
		RegistrationDeadline: current.RegistrationDeadline,
		Location:             current.Location,
		Latitude:             current.Latitude,
		Longitude:            current.Longitude,
		CategoryID:           current.CategoryID,
		Capacity:             current.Capacity,
		Price:                current.Price,
		IsFree:               current.IsFree,
		AllowWaitlist:        current.AllowWaitlist,
		IsPublished:          current.IsPublished,
		ImageURL:             current.ImageURL,
	}
	req.applyTo(input)

	event, err := c.Service.Update(r.Context(), actor, slug, input)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, newEventResponse(event))
}

// Delete godoc
// @Summary Delete an event
// @Description Permanently removes the event. Only the organizer may delete.
// @Tags events
// @Security BearerAuth
// @Param slug path string true "Event slug"
// @Success 204
// @Failure 403 {object} helpers.ErrorResponse
// @Failure 404 {object} helpers.ErrorResponse
// @Router /events/{slug} [delete]
func (c *EventController) Delete(w http.ResponseWriter, r *http.Request) {
	err := c.Service.Delete(r.Context(), middleware.IdentityFromContext(r.Context()), r.PathValue("slug"))
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Cancel godoc
// @Summary Cancel an event
// @Description Marks the event cancelled. Cancellation is terminal; the status never reverts. Only the organizer may cancel.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Event slug"
// @Success 200 {object} EventResponse
// @Failure 403 {object} helpers.ErrorResponse
// @Failure 404 {object} helpers.ErrorResponse
// @Router /events/{slug}/cancel [post]
func (c *EventController) Cancel(w http.ResponseWriter, r *http.Request) {
	event, err := c.Service.Cancel(r.Context(), middleware.IdentityFromContext(r.Context()), r.PathValue("slug"))
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, newEventResponse(event))
}

// Register godoc
// @Summary Register for an event
// @Description Registers the authenticated user, incrementing the attendee count. Full events accept registrations only when the waitlist is enabled.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Event slug"
// @Success 200 {object} EventResponse
// @Failure 400 {object} helpers.ErrorResponse
// @Failure 401 {object} helpers.ErrorResponse
// @Failure 404 {object} helpers.ErrorResponse
// @Router /events/{slug}/register [post]
func (c *EventController) Register(w http.ResponseWriter, r *http.Request) {
	event, err := c.Service.Register(r.Context(), middleware.IdentityFromContext(r.Context()), r.PathValue("slug"))
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, newEventResponse(event))
}

// Unregister godoc
// @Summary Unregister from an event
// @Description Removes a registration, decrementing the attendee count. Unregistering at zero is a no-op.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Event slug"
// @Success 200 {object} EventResponse
// @Failure 401 {object} helpers.ErrorResponse
// @Failure 404 {object} helpers.ErrorResponse
// @Router /events/{slug}/register [delete]
func (c *EventController) Unregister(w http.ResponseWriter, r *http.Request) {
	event, err := c.Service.Unregister(r.Context(), middleware.IdentityFromContext(r.Context()), r.PathValue("slug"))
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, newEventResponse(event))
}
