package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/cms-admin/internal/api/dto"
	"github.com/spec-kit/cms-admin/internal/domain"
	"github.com/spec-kit/cms-admin/internal/repository"
	"github.com/spec-kit/cms-admin/internal/service"
	apperrors "github.com/spec-kit/cms-admin/pkg/util"
)

type (
	PostsHandler          = ResourceHandler[domain.Post, *domain.Post, dto.PostRequest]
	PagesHandler          = ResourceHandler[domain.Page, *domain.Page, dto.PageRequest]
	CategoriesHandler     = ResourceHandler[domain.Category, *domain.Category, dto.CategoryRequest]
	AppsHandler           = ResourceHandler[domain.App, *domain.App, dto.AppRequest]
	SitemapEntriesHandler = ResourceHandler[domain.SitemapEntry, *domain.SitemapEntry, dto.SitemapEntryRequest]
)

var publishedOnly = repository.Filter{"status": domain.StatusPublished}

// NewPostsHandler serves posts. Anonymous callers only see published posts.
func NewPostsHandler(svc *service.PostService) *PostsHandler {
	h := NewResourceHandler[domain.Post, *domain.Post, dto.PostRequest](svc, "post")
	h.filters = queryFilters("status", "category_id")
	h.public = publishedOnly
	h.publicAccess = func(p *domain.Post) bool { return p.Status == domain.StatusPublished }
	return h
}

// NewPagesHandler serves pages. Anonymous callers only see published pages.
func NewPagesHandler(svc *service.PageService) *PagesHandler {
	h := NewResourceHandler[domain.Page, *domain.Page, dto.PageRequest](svc, "page")
	h.filters = queryFilters("status")
	h.public = publishedOnly
	h.publicAccess = func(p *domain.Page) bool { return p.Status == domain.StatusPublished }
	return h
}

// NewCategoriesHandler serves categories.
func NewCategoriesHandler(svc *service.CategoryService) *CategoriesHandler {
	return NewResourceHandler[domain.Category, *domain.Category, dto.CategoryRequest](svc, "category")
}

// NewAppsHandler serves apps, filterable by featured.
func NewAppsHandler(svc *service.AppService) *AppsHandler {
	h := NewResourceHandler[domain.App, *domain.App, dto.AppRequest](svc, "app")
	h.filters = func(c *fiber.Ctx) (repository.Filter, error) {
		filter := repository.Filter{}
		if raw := c.Query("featured"); raw != "" {
			featured, err := strconv.ParseBool(raw)
			if err != nil {
				return nil, apperrors.NewValidationError("featured must be a boolean", map[string]any{"featured": raw})
			}
			filter["featured"] = featured
		}
		return filter, nil
	}
	return h
}

// NewSitemapEntriesHandler serves manual sitemap entries.
func NewSitemapEntriesHandler(svc *service.SitemapEntries) *SitemapEntriesHandler {
	return NewResourceHandler[domain.SitemapEntry, *domain.SitemapEntry, dto.SitemapEntryRequest](svc, "sitemap entry")
}

// queryFilters turns the named query parameters into equality filters.
func queryFilters(names ...string) func(c *fiber.Ctx) (repository.Filter, error) {
	return func(c *fiber.Ctx) (repository.Filter, error) {
		filter := repository.Filter{}
		for _, name := range names {
			if v := c.Query(name); v != "" {
				filter[name] = v
			}
		}
		return filter, nil
	}
}
