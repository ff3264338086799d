package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventlistings/internal/delivery/http/controllers"
	"eventlistings/internal/delivery/http/middleware"
	"eventlistings/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(
	events *controllers.EventController,
	categories *controllers.CategoryController,
	auth *controllers.AuthController,
	users *controllers.UserController,
	verifier domain.TokenVerifier,
) *http.ServeMux {
	mux := http.NewServeMux()

	requireAuth := middleware.RequireAuth(verifier)
	optionalAuth := middleware.OptionalAuth(verifier)

	// Events
	mux.HandleFunc("GET /events", events.List)
	mux.HandleFunc("GET /events/upcoming", events.ListUpcoming)
	mux.HandleFunc("POST /events", requireAuth(events.Create))
	mux.HandleFunc("GET /events/{slug}", optionalAuth(events.Get))
	mux.HandleFunc("PUT /events/{slug}", requireAuth(events.Put))
	mux.HandleFunc("PATCH /events/{slug}", requireAuth(events.Patch))
	mux.HandleFunc("DELETE /events/{slug}", requireAuth(events.Delete))
	mux.HandleFunc("POST /events/{slug}/cancel", requireAuth(events.Cancel))
	mux.HandleFunc("POST /events/{slug}/register", requireAuth(events.Register))
	mux.HandleFunc("DELETE /events/{slug}/register", requireAuth(events.Unregister))

	// Categories
	mux.HandleFunc("GET /categories", categories.List)
	mux.HandleFunc("GET /categories/{slug}", categories.Get)
	mux.HandleFunc("POST /categories", requireAuth(categories.Create))
	mux.HandleFunc("PATCH /categories/{slug}", requireAuth(categories.Update))

	// Auth
	mux.HandleFunc("POST /auth/register", auth.Register)
	mux.HandleFunc("POST /auth/login", auth.Login)

	// Users
	mux.HandleFunc("GET /users/me", requireAuth(users.Me))
	mux.HandleFunc("PATCH /users/me", requireAuth(users.UpdateMe))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
