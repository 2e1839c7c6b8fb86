package routes

import (
	"github.com/gofiber/fiber/v3"

	"cv-builder/internal/delivery/http/handler"
	"cv-builder/internal/delivery/http/middleware"
	"cv-builder/internal/ws"
)

// Handlers are the route owners, built by the container.
type Handlers struct {
	Health   *handler.HealthHandler
	Auth     *handler.AuthHandler
	User     *handler.UserHandler
	Profile  *handler.ProfileHandler
	Catalog  *handler.CatalogHandler
	PDF      *handler.PDFHandler
	Sections []SectionRoutes
	WS       *ws.Handler
}

// SectionRoutes is a section handler together with its path segment.
type SectionRoutes struct {
	Path    string
	Handler interface{ RegisterRoutes(r fiber.Router) }
}

type Middlewares struct {
	Auth      *middleware.AuthMiddleware
	Ownership *middleware.OwnershipMiddleware
	AuthLimit *middleware.RateLimiter
}

type Registry struct {
	h Handlers
	m Middlewares
}

func NewRegistry(h Handlers, m Middlewares) *Registry {
	return &Registry{h: h, m: m}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.registerHealth(app)
	r.registerAPI(app)
	if r.h.WS != nil {
		r.h.WS.RegisterRoutes(app)
	}
}

func (r *Registry) registerHealth(app *fiber.App) {
	if r.h.Health != nil {
		r.h.Health.RegisterRoutes(app)
	}
}

func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api")
	authRequired := r.m.Auth.Middleware()
	owned := r.m.Ownership.Middleware()

	limited := func(c fiber.Ctx) error { return c.Next() }
	if r.m.AuthLimit != nil {
		limited = r.m.AuthLimit.Middleware()
	}

	authGroup := api.Group("/auth")
	r.h.Auth.RegisterRoutes(authGroup, limited)
	r.h.Auth.RegisterProtectedRoutes(authGroup, authRequired)
	r.h.User.RegisterRoutes(authGroup, authRequired)

	r.h.Catalog.RegisterRoutes(api)

	public := api.Group("/public/profiles", r.m.Auth.Optional())
	r.h.Profile.RegisterPublicRoutes(public, r.m.Ownership.Optional())

	profiles := api.Group("/profiles", authRequired)
	for _, s := range r.h.Sections {
		s.Handler.RegisterRoutes(profiles.Group("/:profileId/"+s.Path, owned))
	}
	if r.h.PDF != nil {
		r.h.PDF.RegisterRoutes(profiles.Group("/:profileId/pdf", owned))
	}
	r.h.Profile.RegisterRoutes(profiles, owned)
}
