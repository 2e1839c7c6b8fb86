// Package section serves the six profile sections through one generic
// service.
package section

import (
	"context"

	"github.com/google/uuid"

	"cv-builder/internal/domain/section"
	"cv-builder/internal/pkg/logger"
)

// CompletionRefresher recomputes a profile's stored completion percentage.
type CompletionRefresher interface {
	RefreshCompletion(ctx context.Context, profileID uuid.UUID) error
}

// Service wraps a section repository and keeps the owning profile's
// completion current when entries are added or removed.
type Service[T any] struct {
	kind       section.Kind
	repo       section.Repository[T]
	completion CompletionRefresher
	log        *logger.Logger
}

func NewService[T any](kind section.Kind, repo section.Repository[T], completion CompletionRefresher, log *logger.Logger) *Service[T] {
	if log == nil {
		log = logger.Nop()
	}
	return &Service[T]{
		kind:       kind,
		repo:       repo,
		completion: completion,
		log:        log.Named("section").With("kind", string(kind)),
	}
}

func (s *Service[T]) Kind() section.Kind { return s.kind }

func (s *Service[T]) List(ctx context.Context, profileID uuid.UUID) ([]T, error) {
	return s.repo.List(ctx, profileID)
}

func (s *Service[T]) Get(ctx context.Context, profileID, id uuid.UUID) (T, error) {
	return s.repo.Get(ctx, profileID, id)
}

func (s *Service[T]) Create(ctx context.Context, profileID uuid.UUID, item T) (T, error) {
	out, err := s.repo.Create(ctx, profileID, item)
	if err != nil {
		return out, err
	}
	s.refresh(ctx, profileID)
	return out, nil
}

func (s *Service[T]) Update(ctx context.Context, profileID, id uuid.UUID, item T) (T, error) {
	return s.repo.Update(ctx, profileID, id, item)
}

func (s *Service[T]) Delete(ctx context.Context, profileID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, profileID, id); err != nil {
		return err
	}
	s.refresh(ctx, profileID)
	return nil
}

func (s *Service[T]) Reorder(ctx context.Context, profileID uuid.UUID, ids []uuid.UUID) ([]T, error) {
	return s.repo.Reorder(ctx, profileID, ids)
}

func (s *Service[T]) ToggleVisibility(ctx context.Context, profileID, id uuid.UUID) (T, error) {
	return s.repo.ToggleVisibility(ctx, profileID, id)
}

func (s *Service[T]) Stats(ctx context.Context, profileID uuid.UUID) (section.Stats, error) {
	return s.repo.Stats(ctx, profileID)
}

// refresh failures are logged; the write that triggered them already
// succeeded and the percentage is recomputed on the next read.
func (s *Service[T]) refresh(ctx context.Context, profileID uuid.UUID) {
	if s.completion == nil {
		return
	}
	if err := s.completion.RefreshCompletion(ctx, profileID); err != nil {
		s.log.Warn("refresh completion failed", "profile_id", profileID, "error", err)
	}
}
