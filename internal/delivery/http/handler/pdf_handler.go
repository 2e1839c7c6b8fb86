package handler

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"

	"cv-builder/internal/delivery/http/dto"
	"cv-builder/internal/delivery/http/middleware"
	"cv-builder/internal/infrastructure/storage"
	"cv-builder/internal/pkg/response"
	"cv-builder/internal/usecase/export"
)

type PDFHandler struct {
	svc   *export.Service
	queue *export.Queue
}

// NewPDFHandler wires the synchronous service. queue may be nil, in which
// case the asynchronous export routes answer 503.
func NewPDFHandler(svc *export.Service, queue *export.Queue) *PDFHandler {
	return &PDFHandler{svc: svc, queue: queue}
}

// RegisterRoutes mounts on /api/profiles/:profileId/pdf behind the strict
// ownership guard.
func (h *PDFHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/export-pdf", h.Export)
	r.Get("/preview-pdf", h.Preview)
	r.Get("/validate", h.Validate)
	r.Post("/exports", h.Enqueue)
	r.Get("/exports/:exportId", h.Status)
	r.Get("/exports/:exportId/download", h.Download)
}

func (h *PDFHandler) Export(c fiber.Ctx) error {
	p, err := currentProfile(c)
	if err != nil {
		return err
	}
	f, err := h.svc.Export(c.Context(), p)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, f.Filename))
	return c.Status(fiber.StatusOK).Send(f.Data)
}

func (h *PDFHandler) Preview(c fiber.Ctx) error {
	p, err := currentProfile(c)
	if err != nil {
		return err
	}
	f, err := h.svc.Preview(c.Context(), p)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s"`, f.Filename))
	return c.Status(fiber.StatusOK).Send(f.Data)
}

func (h *PDFHandler) Validate(c fiber.Ctx) error {
	p, err := currentProfile(c)
	if err != nil {
		return err
	}
	report, err := h.svc.Validate(c.Context(), p)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, report)
}

func (h *PDFHandler) Enqueue(c fiber.Ctx) error {
	if h.queue == nil {
		return middleware.NewAppError(fiber.StatusServiceUnavailable, "Export queue unavailable", nil, nil)
	}
	p, err := currentProfile(c)
	if err != nil {
		return err
	}
	job, err := h.queue.Enqueue(c.Context(), p)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusAccepted, "Export queued", dto.NewExportResponse(job, ""))
}

func (h *PDFHandler) Status(c fiber.Ctx) error {
	if h.queue == nil {
		return middleware.NewAppError(fiber.StatusServiceUnavailable, "Export queue unavailable", nil, nil)
	}
	p, err := currentProfile(c)
	if err != nil {
		return err
	}
	jobID, err := uuidParam(c, "exportId")
	if err != nil {
		return err
	}
	job, err := h.queue.Status(c.Context(), p.ID, jobID)
	if err != nil {
		return mapExportError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewExportResponse(job, c.Path()+"/download"))
}

func (h *PDFHandler) Download(c fiber.Ctx) error {
	if h.queue == nil {
		return middleware.NewAppError(fiber.StatusServiceUnavailable, "Export queue unavailable", nil, nil)
	}
	p, err := currentProfile(c)
	if err != nil {
		return err
	}
	jobID, err := uuidParam(c, "exportId")
	if err != nil {
		return err
	}
	job, rc, err := h.queue.Open(c.Context(), p.ID, jobID)
	if err != nil {
		return mapExportError(err)
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, job.Filename))
	// fasthttp closes the reader once the body is written.
	return c.Status(fiber.StatusOK).SendStream(rc, job.Size)
}

func mapExportError(err error) error {
	switch {
	case errors.Is(err, export.ErrJobNotFound), errors.Is(err, storage.ErrObjectNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Export not found", nil, err)
	case errors.Is(err, export.ErrJobNotReady):
		return middleware.NewAppError(fiber.StatusConflict, "Export is not ready", nil, err)
	}
	return err
}
