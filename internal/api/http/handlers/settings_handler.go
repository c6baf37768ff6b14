package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/cms-admin/internal/api/dto"
	"github.com/spec-kit/cms-admin/internal/service"
)

// SettingsHandler exposes site settings and the homepage layout.
type SettingsHandler struct {
	settings *service.SettingsService
}

// NewSettingsHandler constructs handler.
func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// List handles GET /api/settings.
func (h *SettingsHandler) List(c *fiber.Ctx) error {
	all, err := h.settings.All(c.UserContext())
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, all)
}

// Get handles GET /api/settings/:key.
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	setting, err := h.settings.Get(c.UserContext(), c.Params("key"))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, setting)
}

// Put handles PUT /api/settings/:key.
func (h *SettingsHandler) Put(c *fiber.Ctx) error {
	var req dto.SettingRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	setting, err := h.settings.Put(c.UserContext(), actorID(c), c.Params("key"), req.Value)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, setting)
}

// Homepage handles GET /api/homepage.
func (h *SettingsHandler) Homepage(c *fiber.Ctx) error {
	page, err := h.settings.Homepage(c.UserContext())
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, page)
}

// PutHomepage handles PUT /api/homepage.
func (h *SettingsHandler) PutHomepage(c *fiber.Ctx) error {
	var req dto.HomepageRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	page, err := h.settings.PutHomepage(c.UserContext(), actorID(c), req.Homepage())
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, page)
}
