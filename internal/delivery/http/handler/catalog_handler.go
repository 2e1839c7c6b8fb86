package handler

import (
	"github.com/gofiber/fiber/v3"

	"cv-builder/internal/catalog"
	"cv-builder/internal/delivery/http/middleware"
	"cv-builder/internal/pkg/response"
)

// CatalogHandler serves the read-only template, color scheme and skill
// category registries.
type CatalogHandler struct{}

func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

func (h *CatalogHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	cs := r.Group("/color-schemes")
	cs.Get("/", h.ColorSchemes)
	cs.Get("/categories", h.ColorSchemeCategories)
	cs.Get("/ids", h.ColorSchemeIDs)
	cs.Get("/category/:category", h.ColorSchemesByCategory)
	cs.Get("/:id", h.ColorScheme)

	tpl := r.Group("/templates")
	tpl.Get("/", h.Templates)
	tpl.Get("/categories", h.TemplateCategories)
	tpl.Get("/category/:category", h.TemplatesByCategory)
	tpl.Get("/:id", h.Template)

	sc := r.Group("/skill-categories")
	sc.Get("/", h.SkillCategories)
	sc.Get("/:id", h.SkillCategory)
}

func (h *CatalogHandler) ColorSchemes(c fiber.Ctx) error {
	return response.Success(c, fiber.StatusOK, response.MessageOK, catalog.ColorSchemes())
}

func (h *CatalogHandler) ColorSchemeCategories(c fiber.Ctx) error {
	return response.Success(c, fiber.StatusOK, response.MessageOK, catalog.ColorSchemeCategories())
}

func (h *CatalogHandler) ColorSchemeIDs(c fiber.Ctx) error {
	return response.Success(c, fiber.StatusOK, response.MessageOK, catalog.ColorSchemeIDs())
}

func (h *CatalogHandler) ColorSchemesByCategory(c fiber.Ctx) error {
	return response.Success(c, fiber.StatusOK, response.MessageOK, catalog.ColorSchemesByCategory(c.Params("category")))
}

func (h *CatalogHandler) ColorScheme(c fiber.Ctx) error {
	cs, ok := catalog.ColorSchemeByID(c.Params("id"))
	if !ok {
		return middleware.NewAppError(fiber.StatusNotFound, "Color scheme not found", nil, nil)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, cs)
}

func (h *CatalogHandler) Templates(c fiber.Ctx) error {
	return response.Success(c, fiber.StatusOK, response.MessageOK, catalog.Templates())
}

func (h *CatalogHandler) TemplateCategories(c fiber.Ctx) error {
	return response.Success(c, fiber.StatusOK, response.MessageOK, catalog.TemplateCategories())
}

func (h *CatalogHandler) TemplatesByCategory(c fiber.Ctx) error {
	return response.Success(c, fiber.StatusOK, response.MessageOK, catalog.TemplatesByCategory(c.Params("category")))
}

func (h *CatalogHandler) Template(c fiber.Ctx) error {
	tpl, ok := catalog.TemplateByID(c.Params("id"))
	if !ok {
		return middleware.NewAppError(fiber.StatusNotFound, "Template not found", nil, nil)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, tpl)
}

func (h *CatalogHandler) SkillCategories(c fiber.Ctx) error {
	return response.Success(c, fiber.StatusOK, response.MessageOK, catalog.SkillCategories())
}

func (h *CatalogHandler) SkillCategory(c fiber.Ctx) error {
	sc, ok := catalog.SkillCategoryByID(c.Params("id"))
	if !ok {
		return middleware.NewAppError(fiber.StatusNotFound, "Skill category not found", nil, nil)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, sc)
}
