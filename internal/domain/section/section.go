// Package section holds the six ordered, visibility-togglable lists that make
// up a profile body.
package section

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("section entry not found")
	// ErrReorderMismatch means the submitted ids are not exactly a
	// permutation of the stored ones.
	ErrReorderMismatch = errors.New("reorder ids do not match the existing entries")
)

type Kind string

const (
	KindExperience    Kind = "experience"
	KindEducation     Kind = "education"
	KindSkill         Kind = "skills"
	KindLanguage      Kind = "languages"
	KindCertification Kind = "certifications"
	KindSocialNetwork Kind = "social-networks"
)

// Kinds lists every section in rendering order.
var Kinds = []Kind{KindExperience, KindEducation, KindSkill, KindLanguage, KindCertification, KindSocialNetwork}

func (k Kind) Label() string {
	switch k {
	case KindExperience:
		return "Experience"
	case KindEducation:
		return "Education"
	case KindSkill:
		return "Skills"
	case KindLanguage:
		return "Languages"
	case KindCertification:
		return "Certifications"
	case KindSocialNetwork:
		return "Social networks"
	}
	return string(k)
}

// Base carries the fields shared by every section entry.
type Base struct {
	ID         uuid.UUID `json:"id"`
	ProfileID  uuid.UUID `json:"profile_id"`
	OrderIndex int       `json:"order_index"`
	IsVisible  bool      `json:"is_visible"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Entry is implemented by every section entity through its embedded Base.
type Entry interface {
	Meta() *Base
}

func (b *Base) Meta() *Base { return b }

// MetaOf returns the embedded Base of a section entity.
func MetaOf[T any](item *T) *Base {
	e, ok := any(item).(Entry)
	if !ok {
		panic("section: type does not embed Base")
	}
	return e.Meta()
}

type Stats struct {
	Total       int            `json:"total"`
	Visible     int            `json:"visible"`
	Hidden      int            `json:"hidden"`
	BreakdownBy string         `json:"breakdown_by"`
	Breakdown   map[string]int `json:"breakdown"`
}

// Repository is the storage contract of one section kind. Every method is
// scoped by profile id; ownership is checked before these are reached.
type Repository[T any] interface {
	List(ctx context.Context, profileID uuid.UUID) ([]T, error)
	Get(ctx context.Context, profileID, id uuid.UUID) (T, error)
	// Create appends the entry at the end of the list, visible.
	Create(ctx context.Context, profileID uuid.UUID, item T) (T, error)
	// Update replaces the domain fields; order and visibility are kept.
	Update(ctx context.Context, profileID, id uuid.UUID, item T) (T, error)
	Delete(ctx context.Context, profileID, id uuid.UUID) error
	Reorder(ctx context.Context, profileID uuid.UUID, ids []uuid.UUID) ([]T, error)
	ToggleVisibility(ctx context.Context, profileID, id uuid.UUID) (T, error)
	Stats(ctx context.Context, profileID uuid.UUID) (Stats, error)
}

// ValidatePermutation checks that ids is exactly a permutation of existing.
func ValidatePermutation(existing, ids []uuid.UUID) error {
	if len(existing) != len(ids) {
		return ErrReorderMismatch
	}
	want := make(map[uuid.UUID]struct{}, len(existing))
	for _, id := range existing {
		want[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := want[id]; !ok {
			return ErrReorderMismatch
		}
		delete(want, id)
	}
	if len(want) != 0 {
		return ErrReorderMismatch
	}
	return nil
}
