package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/cms-admin/internal/api/dto"
	"github.com/spec-kit/cms-admin/internal/auth"
	"github.com/spec-kit/cms-admin/internal/service"
	apperrors "github.com/spec-kit/cms-admin/pkg/util"
)

// bind parses the JSON body into req and validates it.
func bind(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return dto.Validate(req)
}

func pagination(c *fiber.Ctx) (service.Pagination, error) {
	var p service.Pagination
	var err error
	if raw := c.Query("page"); raw != "" {
		if p.Page, err = strconv.Atoi(raw); err != nil || p.Page < 1 {
			return p, apperrors.NewValidationError("page must be a positive integer", map[string]any{"page": raw})
		}
	}
	if raw := c.Query("page_size"); raw != "" {
		if p.PageSize, err = strconv.Atoi(raw); err != nil || p.PageSize < 1 {
			return p, apperrors.NewValidationError("page_size must be a positive integer", map[string]any{"page_size": raw})
		}
	}
	return p.Normalize(), nil
}

func writeList[T any](c *fiber.Ctx, res service.ListResult[T]) error {
	return c.JSON(dto.ListResponse[T]{
		Data: res.Items,
		Meta: dto.Meta{Page: res.Page, PageSize: res.PageSize, Total: res.Total},
	})
}

func data(c *fiber.Ctx, status int, payload any) error {
	return c.Status(status).JSON(fiber.Map{"data": payload})
}

// actorID is the id of the signed-in caller, or empty for anonymous requests.
func actorID(c *fiber.Ctx) string {
	identity, _ := auth.IdentityFromContext(c)
	return identity.ID
}
