package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/cms-admin/internal/auth"
	"github.com/spec-kit/cms-admin/internal/domain"
	"github.com/spec-kit/cms-admin/internal/repository"
	"github.com/spec-kit/cms-admin/internal/service"
	apperrors "github.com/spec-kit/cms-admin/pkg/util"
)

// ResourceHandler exposes CRUD endpoints over a content service. R is the
// request payload that is applied onto the stored document.
type ResourceHandler[T any, PT interface {
	*T
	domain.Document
}, R interface{ Apply(PT) }] struct {
	svc      *service.ContentService[T, PT]
	resource string
	filters  func(c *fiber.Ctx) (repository.Filter, error)
	// public restricts what anonymous callers may read. Nil means everything.
	public       repository.Filter
	publicAccess func(PT) bool
}

// NewResourceHandler constructs handler.
func NewResourceHandler[T any, PT interface {
	*T
	domain.Document
}, R interface{ Apply(PT) }](svc *service.ContentService[T, PT], resource string) *ResourceHandler[T, PT, R] {
	return &ResourceHandler[T, PT, R]{svc: svc, resource: resource}
}

// List handles GET /.
func (h *ResourceHandler[T, PT, R]) List(c *fiber.Ctx) error {
	page, err := pagination(c)
	if err != nil {
		return err
	}
	filter := repository.Filter{}
	if h.filters != nil {
		if filter, err = h.filters(c); err != nil {
			return err
		}
	}
	if !h.privileged(c) {
		for k, v := range h.public {
			filter[k] = v
		}
	}
	res, err := h.svc.List(c.UserContext(), filter, page)
	if err != nil {
		return err
	}
	return writeList(c, res)
}

// Get handles GET /:id.
func (h *ResourceHandler[T, PT, R]) Get(c *fiber.Ctx) error {
	doc, err := h.svc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return h.respondVisible(c, doc, map[string]any{"id": c.Params("id")})
}

// GetBySlug handles GET /slug/:slug.
func (h *ResourceHandler[T, PT, R]) GetBySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")
	doc, err := h.svc.FindOne(c.UserContext(), repository.Filter{"slug": slug})
	if err != nil {
		return err
	}
	return h.respondVisible(c, doc, map[string]any{"slug": slug})
}

// Create handles POST /.
func (h *ResourceHandler[T, PT, R]) Create(c *fiber.Ctx) error {
	var req R
	if err := bind(c, &req); err != nil {
		return err
	}
	doc := PT(new(T))
	req.Apply(doc)
	if err := h.svc.Create(c.UserContext(), actorID(c), (*T)(doc)); err != nil {
		return err
	}
	return data(c, http.StatusCreated, doc)
}

// Update handles PUT /:id.
func (h *ResourceHandler[T, PT, R]) Update(c *fiber.Ctx) error {
	var req R
	if err := bind(c, &req); err != nil {
		return err
	}
	existing, err := h.svc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	req.Apply(PT(existing))
	if err := h.svc.Update(c.UserContext(), actorID(c), existing); err != nil {
		return err
	}
	return data(c, http.StatusOK, existing)
}

// Delete handles DELETE /:id.
func (h *ResourceHandler[T, PT, R]) Delete(c *fiber.Ctx) error {
	if err := h.svc.Delete(c.UserContext(), actorID(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *ResourceHandler[T, PT, R]) privileged(c *fiber.Ctx) bool {
	return auth.VerdictFromContext(c).Authenticated()
}

func (h *ResourceHandler[T, PT, R]) respondVisible(c *fiber.Ctx, doc *T, details map[string]any) error {
	if h.publicAccess != nil && !h.privileged(c) && !h.publicAccess(PT(doc)) {
		return apperrors.NewNotFound(h.resource, details)
	}
	return data(c, http.StatusOK, doc)
}
