package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/cms-admin/internal/api/dto"
	"github.com/spec-kit/cms-admin/internal/repository"
	"github.com/spec-kit/cms-admin/internal/service"
	apperrors "github.com/spec-kit/cms-admin/pkg/util"
)

// MediaHandler exposes media uploads.
type MediaHandler struct {
	media *service.MediaService
}

// NewMediaHandler constructs handler.
func NewMediaHandler(media *service.MediaService) *MediaHandler {
	return &MediaHandler{media: media}
}

// List handles GET /api/media.
func (h *MediaHandler) List(c *fiber.Ctx) error {
	page, err := pagination(c)
	if err != nil {
		return err
	}
	filter := repository.Filter{}
	if mime := c.Query("mime_type"); mime != "" {
		filter["mime_type"] = mime
	}
	res, err := h.media.List(c.UserContext(), filter, page)
	if err != nil {
		return err
	}
	return writeList(c, res)
}

// Get handles GET /api/media/:id.
func (h *MediaHandler) Get(c *fiber.Ctx) error {
	media, err := h.media.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, media)
}

// Upload handles multipart POST /api/media with fields file and alt.
func (h *MediaHandler) Upload(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("file is required", map[string]any{"field": "file"})
	}
	file, err := header.Open()
	if err != nil {
		return apperrors.NewValidationError("unreadable upload", nil)
	}
	defer file.Close()

	media, err := h.media.Upload(c.UserContext(), actorID(c), service.Upload{
		OriginalName: header.Filename,
		MimeType:     header.Header.Get(fiber.HeaderContentType),
		Size:         header.Size,
		Alt:          c.FormValue("alt"),
		Body:         file,
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, media)
}

// Update handles PUT /api/media/:id.
func (h *MediaHandler) Update(c *fiber.Ctx) error {
	var req dto.MediaUpdateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	media, err := h.media.UpdateAlt(c.UserContext(), actorID(c), c.Params("id"), req.Alt)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, media)
}

// Delete handles DELETE /api/media/:id.
func (h *MediaHandler) Delete(c *fiber.Ctx) error {
	if err := h.media.Delete(c.UserContext(), actorID(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
