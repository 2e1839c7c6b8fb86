package client

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"cv-builder/internal/domain/section"
)

// Section calls the endpoints of one section kind. T is the entry type
// decoded from responses; request bodies are sent as given.
type Section[T any] struct {
	c    *Client
	kind section.Kind
}

func NewSection[T any](c *Client, kind section.Kind) *Section[T] {
	return &Section[T]{c: c, kind: kind}
}

func (c *Client) Experience() *Section[section.Experience] {
	return NewSection[section.Experience](c, section.KindExperience)
}

func (c *Client) Education() *Section[section.Education] {
	return NewSection[section.Education](c, section.KindEducation)
}

func (c *Client) Skills() *Section[section.Skill] {
	return NewSection[section.Skill](c, section.KindSkill)
}

func (c *Client) Languages() *Section[section.Language] {
	return NewSection[section.Language](c, section.KindLanguage)
}

func (c *Client) Certifications() *Section[section.Certification] {
	return NewSection[section.Certification](c, section.KindCertification)
}

func (c *Client) SocialNetworks() *Section[section.SocialNetwork] {
	return NewSection[section.SocialNetwork](c, section.KindSocialNetwork)
}

func (s *Section[T]) path(profileID uuid.UUID) string {
	return profilePath(profileID) + "/" + string(s.kind)
}

func (s *Section[T]) List(ctx context.Context, profileID uuid.UUID) ([]T, error) {
	var items []T
	err := s.c.do(ctx, http.MethodGet, s.path(profileID), nil, &items, true)
	return items, err
}

func (s *Section[T]) Get(ctx context.Context, profileID, id uuid.UUID) (T, error) {
	var item T
	err := s.c.do(ctx, http.MethodGet, s.path(profileID)+"/"+id.String(), nil, &item, true)
	return item, err
}

func (s *Section[T]) Create(ctx context.Context, profileID uuid.UUID, body any) (T, error) {
	var item T
	err := s.c.do(ctx, http.MethodPost, s.path(profileID), body, &item, true)
	return item, err
}

func (s *Section[T]) Update(ctx context.Context, profileID, id uuid.UUID, body any) (T, error) {
	var item T
	err := s.c.do(ctx, http.MethodPut, s.path(profileID)+"/"+id.String(), body, &item, true)
	return item, err
}

func (s *Section[T]) Delete(ctx context.Context, profileID, id uuid.UUID) error {
	return s.c.do(ctx, http.MethodDelete, s.path(profileID)+"/"+id.String(), nil, nil, true)
}

// Reorder sends the complete id list in the desired order.
func (s *Section[T]) Reorder(ctx context.Context, profileID uuid.UUID, ids []uuid.UUID) ([]T, error) {
	var items []T
	body := map[string][]uuid.UUID{"ids": ids}
	err := s.c.do(ctx, http.MethodPost, s.path(profileID)+"/reorder", body, &items, true)
	return items, err
}

func (s *Section[T]) ToggleVisibility(ctx context.Context, profileID, id uuid.UUID) (T, error) {
	var item T
	err := s.c.do(ctx, http.MethodPatch, s.path(profileID)+"/"+id.String()+"/toggle-visibility", nil, &item, true)
	return item, err
}

func (s *Section[T]) Stats(ctx context.Context, profileID uuid.UUID) (section.Stats, error) {
	var st section.Stats
	err := s.c.do(ctx, http.MethodGet, s.path(profileID)+"/stats", nil, &st, true)
	return st, err
}
