package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/cms-admin/internal/api/http/handlers"
	"github.com/spec-kit/cms-admin/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Posts          *handlers.PostsHandler
	Pages          *handlers.PagesHandler
	Categories     *handlers.CategoriesHandler
	Apps           *handlers.AppsHandler
	SitemapEntries *handlers.SitemapEntriesHandler
	Media          *handlers.MediaHandler
	Settings       *handlers.SettingsHandler
	Sitemap        *handlers.SitemapHandler
	AuthMiddleware *auth.Middleware
	LoginLimiter   fiber.Handler
	MediaDir       string
	MediaURLPrefix string
}

type crudHandler interface {
	List(*fiber.Ctx) error
	Get(*fiber.Ctx) error
	Create(*fiber.Ctx) error
	Update(*fiber.Ctx) error
	Delete(*fiber.Ctx) error
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	mw := cfg.AuthMiddleware

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/sitemap.xml", cfg.Sitemap.XML)
	if cfg.MediaDir != "" && cfg.MediaURLPrefix != "" {
		app.Static(cfg.MediaURLPrefix, cfg.MediaDir)
	}

	api := app.Group("/api", mw.Authenticate)

	authGroup := api.Group("/auth")
	login := []fiber.Handler{cfg.Auth.Login}
	if cfg.LoginLimiter != nil {
		login = append([]fiber.Handler{cfg.LoginLimiter}, login...)
	}
	authGroup.Post("/login", login...)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Get("/me", mw.RequireAuthenticated, cfg.Auth.Me)
	authGroup.Post("/password", mw.RequireAuthenticated, cfg.Auth.ChangePassword)

	posts := api.Group("/posts")
	posts.Get("/slug/:slug", cfg.Posts.GetBySlug)
	registerCRUD(posts, cfg.Posts, nil, mw.RequireAuthenticated)

	pages := api.Group("/pages")
	pages.Get("/slug/:slug", cfg.Pages.GetBySlug)
	registerCRUD(pages, cfg.Pages, nil, mw.RequireAuthenticated)

	categories := api.Group("/categories")
	categories.Get("/slug/:slug", cfg.Categories.GetBySlug)
	registerCRUD(categories, cfg.Categories, nil, mw.RequireAdmin)

	apps := api.Group("/apps")
	apps.Get("/slug/:slug", cfg.Apps.GetBySlug)
	registerCRUD(apps, cfg.Apps, nil, mw.RequireAdmin)

	registerCRUD(api.Group("/sitemap-entries"), cfg.SitemapEntries, mw.RequireAdmin, mw.RequireAdmin)

	media := api.Group("/media", mw.RequireAuthenticated)
	media.Get("/", cfg.Media.List)
	media.Get("/:id", cfg.Media.Get)
	media.Post("/", cfg.Media.Upload)
	media.Put("/:id", cfg.Media.Update)
	media.Delete("/:id", cfg.Media.Delete)

	settings := api.Group("/settings")
	settings.Get("/", cfg.Settings.List)
	settings.Get("/:key", cfg.Settings.Get)
	settings.Put("/:key", mw.RequireAdmin, cfg.Settings.Put)

	api.Get("/homepage", cfg.Settings.Homepage)
	api.Put("/homepage", mw.RequireAdmin, cfg.Settings.PutHomepage)

	users := api.Group("/users", mw.RequireAdmin)
	users.Get("/", cfg.Users.List)
	users.Get("/:id", cfg.Users.Get)
	users.Post("/", cfg.Users.Create)
	users.Put("/:id", cfg.Users.Update)
	users.Delete("/:id", cfg.Users.Delete)
	users.Post("/:id/revoke", cfg.Users.Revoke)

	api.Get("/admin/metrics", mw.RequireAdmin, cfg.Health.Metrics)
}

// registerCRUD mounts the standard resource routes. A nil read guard leaves
// reads public.
func registerCRUD(r fiber.Router, h crudHandler, read, write fiber.Handler) {
	if read != nil {
		r.Get("/", read, h.List)
		r.Get("/:id", read, h.Get)
	} else {
		r.Get("/", h.List)
		r.Get("/:id", h.Get)
	}
	r.Post("/", write, h.Create)
	r.Put("/:id", write, h.Update)
	r.Delete("/:id", write, h.Delete)
}
