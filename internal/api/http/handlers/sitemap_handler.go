package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/cms-admin/internal/service"
)

// SitemapHandler serves the rendered sitemap.
type SitemapHandler struct {
	sitemap *service.SitemapService
}

// NewSitemapHandler constructs handler.
func NewSitemapHandler(sitemap *service.SitemapService) *SitemapHandler {
	return &SitemapHandler{sitemap: sitemap}
}

// XML handles GET /sitemap.xml.
func (h *SitemapHandler) XML(c *fiber.Ctx) error {
	body, err := h.sitemap.XML(c.UserContext())
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
	return c.Send(body)
}
