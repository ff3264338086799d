package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"eventlistings/internal/delivery/http/helpers"
	"eventlistings/internal/delivery/http/middleware"
	"eventlistings/internal/domain"
)

type CategoryController struct {
	Logger  *slog.Logger
	Service domain.CategoryService
}

func NewCategoryController(logger *slog.Logger, svc domain.CategoryService) *CategoryController {
	return &CategoryController{
		Logger:  logger,
		Service: svc,
	}
}

// CategoryResponse is the category projection in list and detail responses.
type CategoryResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description"`
	Icon        *string   `json:"icon"`
	IsActive    bool      `json:"is_active"`
	EventCount  int       `json:"event_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// CategoryDetailResponse is the detail projection with its upcoming events.
type CategoryDetailResponse struct {
	CategoryResponse
	UpcomingEvents []EventListItem `json:"upcoming_events"`
}

func newCategoryResponse(c *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		Icon:        c.Icon,
		IsActive:    c.IsActive,
		EventCount:  c.EventCount,
		CreatedAt:   c.CreatedAt,
	}
}

// CategoryRequest is the request body for POST and PATCH /categories.
type CategoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
	IsActive    *bool   `json:"is_active"`
}

func (c CategoryRequest) toInput() *domain.CategoryInput {
	return &domain.CategoryInput{
		Name:        c.Name,
		Description: c.Description,
		Icon:        c.Icon,
		IsActive:    c.IsActive,
	}
}

// List godoc
// @Summary List categories
// @Description Returns all active categories with their published event counts, sorted by name.
// @Tags categories
// @Produce json
// @Success 200 {array} CategoryResponse
// @Router /categories [get]
func (c *CategoryController) List(w http.ResponseWriter, r *http.Request) {
	categories, err := c.Service.List(r.Context())
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	out := make([]CategoryResponse, 0, len(categories))
	for _, cat := range categories {
		out = append(out, newCategoryResponse(cat))
	}
	helpers.WriteJSON(w, http.StatusOK, out)
}

// Get godoc
// @Summary Get a category by slug
// @Description Returns the category plus up to five of its upcoming published events.
// @Tags categories
// @Produce json
// @Param slug path string true "Category slug"
// @Success 200 {object} CategoryDetailResponse
// @Failure 404 {object} helpers.ErrorResponse
// @Router /categories/{slug} [get]
func (c *CategoryController) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := c.Service.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, CategoryDetailResponse{
		CategoryResponse: newCategoryResponse(detail.Category),
		UpcomingEvents:   newEventListItems(detail.UpcomingEvents),
	})
}

// Create godoc
// @Summary Create a category
// @Description Creates a category. Staff only; the slug is generated from the name.
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param category body CategoryRequest true "Category data"
// @Success 201 {object} CategoryResponse
// @Failure 400 {object} helpers.ErrorResponse
// @Failure 401 {object} helpers.ErrorResponse
// @Failure 403 {object} helpers.ErrorResponse
// @Router /categories [post]
func (c *CategoryController) Create(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	category, err := c.Service.Create(r.Context(), middleware.IdentityFromContext(r.Context()), req.toInput())
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, newCategoryResponse(category))
}

// Update godoc
// @Summary Update a category
// @Description Partial update of a category. Staff only; the slug never changes.
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Category slug"
// @Param category body CategoryRequest true "Fields to change"
// @Success 200 {object} CategoryResponse
// @Failure 400 {object} helpers.ErrorResponse
// @Failure 403 {object} helpers.ErrorResponse
// @Failure 404 {object} helpers.ErrorResponse
// @Router /categories/{slug} [patch]
func (c *CategoryController) Update(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	category, err := c.Service.Update(r.Context(), middleware.IdentityFromContext(r.Context()), r.PathValue("slug"), req.toInput())
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, newCategoryResponse(category))
}
