package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"cv-builder/internal/delivery/http/dto"
	"cv-builder/internal/delivery/http/middleware"
	"cv-builder/internal/pkg/response"
	ucprofile "cv-builder/internal/usecase/profile"
)

type ProfileHandler struct {
	uc *ucprofile.Service
}

func NewProfileHandler(uc *ucprofile.Service) *ProfileHandler {
	return &ProfileHandler{uc: uc}
}

// RegisterRoutes mounts /api/profiles. owned is the strict ownership guard
// for the :id routes.
func (h *ProfileHandler) RegisterRoutes(r fiber.Router, owned fiber.Handler) {
	if r == nil {
		return
	}

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/stats", h.Stats)

	r.Get("/:id", owned, h.Get)
	r.Put("/:id", owned, h.Update)
	r.Delete("/:id", owned, h.Delete)
	r.Get("/:id/complete", owned, h.Complete)
	r.Get("/:id/completion", owned, h.Completion)
	r.Post("/:id/duplicate", owned, h.Duplicate)
	r.Put("/:id/personal", owned, h.UpdatePersonal)
	r.Patch("/:id/set-default", owned, h.SetDefault)
	r.Patch("/:id/template", owned, h.SetTemplate)
	r.Patch("/:id/color-scheme", owned, h.SetColorScheme)
}

// RegisterPublicRoutes mounts the read-only view behind optional auth and
// the optional ownership guard.
func (h *ProfileHandler) RegisterPublicRoutes(r fiber.Router, guard fiber.Handler) {
	if r == nil {
		return
	}

	r.Get("/:id", guard, h.Public)
}

func (h *ProfileHandler) List(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	items, err := h.uc.List(c.Context(), userID)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, items)
}

func (h *ProfileHandler) Create(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req dto.CreateProfileRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	in, err := req.ToInput()
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, response.MessageValidationFailed, []string{err.Error()}, err)
	}

	p, err := h.uc.Create(c.Context(), userID, in)
	if err != nil {
		return mapProfileError(err)
	}
	return response.Success(c, fiber.StatusCreated, "Profile created", p)
}

func (h *ProfileHandler) Stats(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	stats, err := h.uc.Stats(c.Context(), userID)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, stats)
}

func (h *ProfileHandler) Get(c fiber.Ctx) error {
	p, err := currentProfile(c)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, p)
}

func (h *ProfileHandler) Update(c fiber.Ctx) error {
	p, err := currentProfile(c)
	if err != nil {
		return err
	}

	var req dto.UpdateProfileRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	updated, err := h.uc.Update(c.Context(), p.ID, p.UserID, req.ToInput())
	if err != nil {
		return mapProfileError(err)
	}
	return response.Success(c, fiber.StatusOK, "Profile updated", updated)
}

func (h *ProfileHandler) Delete(c fiber.Ctx) error {
	p, err := currentProfile(c)
	if err != nil {
		return err
	}
	if err := h.uc.Delete(c.Context(), p.ID, p.UserID); err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "Profile deleted", nil)
}

func (h *ProfileHandler) Complete(c fiber.Ctx) error {
	p, err := currentProfile(c)
	if err != nil {
		return err
	}
	full, err := h.uc.Complete(c.Context(), p)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, full)
}

func (h *ProfileHandler) Completion(c fiber.Ctx) error {
	p, err := currentProfile(c)
	if err != nil {
		return err
	}
	completion, err := h.uc.Completion(c.Context(), p)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, completion)
}

func (h *ProfileHandler) Duplicate(c fiber.Ctx) error {
	p, err := currentProfile(c)
	if err != nil {
		return err
	}

	var req dto.DuplicateProfileRequest
	if err := bindOptionalBody(c, &req); err != nil {
		return err
	}

	cp, err := h.uc.Duplicate(c.Context(), p, req.Name)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusCreated, "Profile duplicated", cp)
}

func (h *ProfileHandler) UpdatePersonal(c fiber.Ctx) error {
	p, err := currentProfile(c)
	if err != nil {
		return err
	}

	var req dto.PersonalRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	personal, err := req.ToDomain()
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, response.MessageValidationFailed, []string{err.Error()}, err)
	}

	updated, err := h.uc.UpdatePersonal(c.Context(), p.ID, p.UserID, personal)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "Personal information updated", updated)
}

func (h *ProfileHandler) SetDefault(c fiber.Ctx) error {
	p, err := currentProfile(c)
	if err != nil {
		return err
	}
	updated, err := h.uc.SetDefault(c.Context(), p.ID, p.UserID)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, "Default profile updated", updated)
}

func (h *ProfileHandler) SetTemplate(c fiber.Ctx) error {
	p, err := currentProfile(c)
	if err != nil {
		return err
	}

	var req dto.TemplateRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	updated, err := h.uc.SetTemplate(c.Context(), p, req.TemplateID, req.ColorSchemeID)
	if err != nil {
		return mapProfileError(err)
	}
	return response.Success(c, fiber.StatusOK, "Template updated", updated)
}

func (h *ProfileHandler) SetColorScheme(c fiber.Ctx) error {
	p, err := currentProfile(c)
	if err != nil {
		return err
	}

	var req dto.ColorSchemeRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	updated, err := h.uc.SetColorScheme(c.Context(), p, req.ColorSchemeID)
	if err != nil {
		return mapProfileError(err)
	}
	return response.Success(c, fiber.StatusOK, "Color scheme updated", updated)
}

// Public returns the complete profile. Non-owners only reach public profiles.
func (h *ProfileHandler) Public(c fiber.Ctx) error {
	p, err := currentProfile(c)
	if err != nil {
		return err
	}
	full, err := h.uc.Complete(c.Context(), p)
	if err != nil {
		return err
	}
	owner := middleware.IsOwner(c)
	if !owner {
		full.Sections = full.Sections.Visible()
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.PublicProfileResponse{Complete: full, IsOwner: owner})
}

func mapProfileError(err error) error {
	switch {
	case errors.Is(err, ucprofile.ErrPremiumTemplate):
		return middleware.NewAppError(fiber.StatusForbidden, "Premium template requires a premium account", nil, err)
	case errors.Is(err, ucprofile.ErrUnknownTemplate):
		return middleware.NewAppError(fiber.StatusBadRequest, response.MessageValidationFailed, []string{"template_id must be a known template"}, err)
	case errors.Is(err, ucprofile.ErrUnknownColors):
		return middleware.NewAppError(fiber.StatusBadRequest, response.MessageValidationFailed, []string{"color_scheme_id must be a known color scheme"}, err)
	}
	return err
}
