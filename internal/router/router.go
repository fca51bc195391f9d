package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cinemahub/booking-api/internal/handler"
	"github.com/cinemahub/booking-api/internal/middleware"
	"github.com/cinemahub/booking-api/internal/repository"
)

// Handlers groups everything the router needs to wire the API surface.
type Handlers struct {
	Auth       *handler.AuthHandler
	Movies     *handler.MovieHandler
	Screenings *handler.ScreeningHandler
	Rooms      *handler.RoomHandler
}

// RegisterRoutes registers the full API on the provided Echo instance.
// Reads and login are public; every mutating endpoint sits behind the
// session middleware so only authenticated administrators reach it. The
// cache middleware wraps only the domain read routes, never the
// operational or session endpoints.
func RegisterRoutes(e *echo.Echo, h Handlers, jwtSecret string, tokens *repository.SessionTokenRepo, cache echo.MiddlewareFunc) {
	// Operational endpoints.
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Session endpoints. Login is public; logout needs the token being
	// revoked, so it lives behind the auth middleware.
	e.POST("/session", h.Auth.Login)
	e.DELETE("/session", h.Auth.Logout, middleware.SessionAuth(jwtSecret, tokens))

	// Public read endpoints.
	e.GET("/movies", h.Movies.List, cache)
	e.GET("/movies/by-week", h.Movies.ByWeek, cache)
	e.GET("/movies/:id", h.Movies.GetByID, cache)
	e.GET("/screenings", h.Screenings.List, cache)
	e.GET("/screenings/:id", h.Screenings.GetByID, cache)
	e.GET("/rooms", h.Rooms.List, cache)

	// Protected write endpoints.
	auth := e.Group("", middleware.SessionAuth(jwtSecret, tokens))
	auth.POST("/movies", h.Movies.Create)
	auth.PATCH("/movies/:id", h.Movies.Update)
	auth.PUT("/movies/:id", h.Movies.Update)
	auth.DELETE("/movies/:id", h.Movies.Delete)
	auth.POST("/screenings", h.Screenings.Create)
	auth.PATCH("/screenings/:id", h.Screenings.Update)
	auth.PUT("/screenings/:id", h.Screenings.Update)
	auth.DELETE("/screenings/:id", h.Screenings.Delete)
	auth.POST("/rooms", h.Rooms.Create)
}
