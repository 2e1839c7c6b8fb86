// Package export renders profiles to PDF, synchronously for the export and
// preview endpoints and asynchronously through the message queue.
package export

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"cv-builder/internal/domain/profile"
	"cv-builder/internal/domain/section"
	"cv-builder/internal/pdf"
	"cv-builder/internal/pkg/logger"
)

// SectionLoader reads every section of a profile.
type SectionLoader interface {
	Load(ctx context.Context, profileID uuid.UUID) (section.Set, error)
}

// File is a rendered PDF.
type File struct {
	Filename string
	Data     []byte
}

type Service struct {
	profiles profile.Repository
	sections SectionLoader
	renderer pdf.Renderer
	log      *logger.Logger
}

func NewService(profiles profile.Repository, sections SectionLoader, renderer pdf.Renderer, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{profiles: profiles, sections: sections, renderer: renderer, log: log.Named("export")}
}

// Export renders the PDF and counts the download.
func (s *Service) Export(ctx context.Context, p profile.Profile) (File, error) {
	f, err := s.render(ctx, p)
	if err != nil {
		return File{}, err
	}
	if err := s.profiles.IncrementDownloads(ctx, p.ID); err != nil {
		s.log.Warn("increment downloads failed", "profile_id", p.ID, "error", err)
	}
	return f, nil
}

// Preview renders the PDF without counting a download.
func (s *Service) Preview(ctx context.Context, p profile.Profile) (File, error) {
	return s.render(ctx, p)
}

func (s *Service) Validate(ctx context.Context, p profile.Profile) (pdf.Report, error) {
	set, err := s.sections.Load(ctx, p.ID)
	if err != nil {
		return pdf.Report{}, err
	}
	return pdf.Validate(p, set), nil
}

func (s *Service) render(ctx context.Context, p profile.Profile) (File, error) {
	set, err := s.sections.Load(ctx, p.ID)
	if err != nil {
		return File{}, err
	}
	doc := pdf.NewDocument(p, set)
	html, err := pdf.RenderHTML(doc)
	if err != nil {
		return File{}, fmt.Errorf("render html: %w", err)
	}
	data, err := s.renderer.Render(ctx, html)
	if err != nil {
		return File{}, fmt.Errorf("render pdf: %w", err)
	}
	s.log.Debug("pdf rendered", "profile_id", p.ID, "template", doc.Template.ID, "bytes", len(data))
	return File{Filename: doc.Filename(), Data: data}, nil
}
