package handler

import (
	"github.com/gofiber/fiber/v3"

	"cv-builder/internal/delivery/http/dto"
	"cv-builder/internal/delivery/http/middleware"
	"cv-builder/internal/pkg/response"
	ucsection "cv-builder/internal/usecase/section"
)

// EntityRequest is a request body that converts to a section entity.
type EntityRequest[T any, R any] interface {
	*R
	ToEntity() (T, error)
}

// SectionHandler serves one section kind. R is its request body type.
type SectionHandler[T any, R any, PR EntityRequest[T, R]] struct {
	svc *ucsection.Service[T]
}

func NewSectionHandler[T any, R any, PR EntityRequest[T, R]](svc *ucsection.Service[T]) *SectionHandler[T, R, PR] {
	return &SectionHandler[T, R, PR]{svc: svc}
}

// RegisterRoutes mounts the handler on a router already scoped to
// /api/profiles/:profileId/<kind> and guarded by ownership.
func (h *SectionHandler[T, R, PR]) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/stats", h.Stats)
	r.Post("/reorder", h.Reorder)
	r.Get("/:id", h.Get)
	r.Put("/:id", h.Update)
	r.Delete("/:id", h.Delete)
	r.Patch("/:id/toggle-visibility", h.ToggleVisibility)
}

func (h *SectionHandler[T, R, PR]) label() string {
	return h.svc.Kind().Label()
}

func (h *SectionHandler[T, R, PR]) bind(c fiber.Ctx) (T, error) {
	var zero T
	req := PR(new(R))
	if err := bindBody(c, req); err != nil {
		return zero, err
	}
	item, err := req.ToEntity()
	if err != nil {
		return zero, middleware.NewAppError(fiber.StatusBadRequest, response.MessageValidationFailed, []string{err.Error()}, err)
	}
	return item, nil
}

func (h *SectionHandler[T, R, PR]) List(c fiber.Ctx) error {
	p, err := currentProfile(c)
	if err != nil {
		return err
	}
	items, err := h.svc.List(c.Context(), p.ID)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, items)
}

func (h *SectionHandler[T, R, PR]) Create(c fiber.Ctx) error {
	p, err := currentProfile(c)
	if err != nil {
		return err
	}
	item, err := h.bind(c)
	if err != nil {
		return err
	}
	created, err := h.svc.Create(c.Context(), p.ID, item)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusCreated, h.label()+" entry created", created)
}

func (h *SectionHandler[T, R, PR]) Stats(c fiber.Ctx) error {
	p, err := currentProfile(c)
	if err != nil {
		return err
	}
	stats, err := h.svc.Stats(c.Context(), p.ID)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, stats)
}

func (h *SectionHandler[T, R, PR]) Reorder(c fiber.Ctx) error {
	p, err := currentProfile(c)
	if err != nil {
		return err
	}
	var req dto.ReorderRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	items, err := h.svc.Reorder(c.Context(), p.ID, req.IDs)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, h.label()+" reordered", items)
}

func (h *SectionHandler[T, R, PR]) Get(c fiber.Ctx) error {
	p, err := currentProfile(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	item, err := h.svc.Get(c.Context(), p.ID, id)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, item)
}

func (h *SectionHandler[T, R, PR]) Update(c fiber.Ctx) error {
	p, err := currentProfile(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	item, err := h.bind(c)
	if err != nil {
		return err
	}
	updated, err := h.svc.Update(c.Context(), p.ID, id, item)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, h.label()+" entry updated", updated)
}

func (h *SectionHandler[T, R, PR]) Delete(c fiber.Ctx) error {
	p, err := currentProfile(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Context(), p.ID, id); err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, h.label()+" entry deleted", nil)
}

func (h *SectionHandler[T, R, PR]) ToggleVisibility(c fiber.Ctx) error {
	p, err := currentProfile(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	item, err := h.svc.ToggleVisibility(c.Context(), p.ID, id)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, h.label()+" visibility toggled", item)
}
