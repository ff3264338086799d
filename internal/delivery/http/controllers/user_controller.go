package controllers

import (
	"log/slog"
	"net/http"

	"eventlistings/internal/delivery/http/helpers"
	"eventlistings/internal/delivery/http/middleware"
	"eventlistings/internal/domain"
)

type UserController struct {
	Logger  *slog.Logger
	Service domain.UserService
}

func NewUserController(logger *slog.Logger, svc domain.UserService) *UserController {
	return &UserController{
		Logger:  logger,
		Service: svc,
	}
}

// ProfileRequest is the request body for PATCH /users/me. All fields
// optional; omitted fields are unchanged.
type ProfileRequest struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// Me godoc
// @Summary Get the current user
// @Description Returns the authenticated user's profile.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} helpers.ErrorResponse
// @Router /users/me [get]
func (c *UserController) Me(w http.ResponseWriter, r *http.Request) {
	actor := middleware.IdentityFromContext(r.Context())
	if actor == nil {
		helpers.WriteError(w, http.StatusUnauthorized, helpers.ErrKindNotAuthenticated, "Authentication credentials were not provided.", nil)
		return
	}
	user, err := c.Service.GetByID(r.Context(), actor.UserID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, newUserResponse(user))
}

// UpdateMe godoc
// @Summary Update the current user
// @Description Partial update of the authenticated user's profile.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body ProfileRequest true "Fields to change"
// @Success 200 {object} UserResponse
// @Failure 400 {object} helpers.ErrorResponse
// @Failure 401 {object} helpers.ErrorResponse
// @Router /users/me [patch]
func (c *UserController) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	user, err := c.Service.UpdateProfile(r.Context(), middleware.IdentityFromContext(r.Context()), &domain.ProfileInput{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, newUserResponse(user))
}
