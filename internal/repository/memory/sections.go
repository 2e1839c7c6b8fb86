package memory

import (
	"context"
	"sort"
	"time"

	"cv-builder/internal/domain/section"

	"github.com/google/uuid"
)

// SectionRepository implements section.Repository[T] on top of a Store. It
// shares the store lock so profile deletes and duplicates see a consistent
// view of every section.
type SectionRepository[T any] struct {
	s           *Store
	k           section.Kind
	breakdownBy string
	key         func(*T) string
	rows        map[uuid.UUID]T
}

func newSectionRepository[T any](s *Store, kind section.Kind, breakdownBy string, key func(*T) string) *SectionRepository[T] {
	r := &SectionRepository[T]{
		s:           s,
		k:           kind,
		breakdownBy: breakdownBy,
		key:         key,
		rows:        make(map[uuid.UUID]T),
	}
	s.sections = append(s.sections, r)
	return r
}

func (r *SectionRepository[T]) Kind() section.Kind { return r.k }

func (r *SectionRepository[T]) kind() section.Kind { return r.k }

// listLocked returns the profile's rows ordered by order_index, then by
// creation time for ties.
func (r *SectionRepository[T]) listLocked(profileID uuid.UUID) []T {
	out := make([]T, 0)
	for _, row := range r.rows {
		row := row
		if section.MetaOf(&row).ProfileID == profileID {
			out = append(out, row)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := section.MetaOf(&out[i]), section.MetaOf(&out[j])
		if a.OrderIndex != b.OrderIndex {
			return a.OrderIndex < b.OrderIndex
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return out
}

func (r *SectionRepository[T]) getLocked(profileID, id uuid.UUID) (T, bool) {
	row, ok := r.rows[id]
	if !ok || section.MetaOf(&row).ProfileID != profileID {
		var zero T
		return zero, false
	}
	return row, true
}

func (r *SectionRepository[T]) List(_ context.Context, profileID uuid.UUID) ([]T, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.listLocked(profileID), nil
}

func (r *SectionRepository[T]) Get(_ context.Context, profileID, id uuid.UUID) (T, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.getLocked(profileID, id)
	if !ok {
		return row, section.ErrNotFound
	}
	return row, nil
}

func (r *SectionRepository[T]) Create(_ context.Context, profileID uuid.UUID, item T) (T, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	next := 0
	for _, row := range r.listLocked(profileID) {
		if idx := section.MetaOf(&row).OrderIndex; idx >= next {
			next = idx + 1
		}
	}

	now := r.s.now()
	m := section.MetaOf(&item)
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.ProfileID = profileID
	m.OrderIndex = next
	m.IsVisible = true
	m.CreatedAt, m.UpdatedAt = now, now
	r.rows[m.ID] = item
	return item, nil
}

func (r *SectionRepository[T]) Update(_ context.Context, profileID, id uuid.UUID, item T) (T, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.getLocked(profileID, id)
	if !ok {
		return old, section.ErrNotFound
	}
	base := *section.MetaOf(&old)
	base.UpdatedAt = r.s.now()
	*section.MetaOf(&item) = base
	r.rows[id] = item
	return item, nil
}

func (r *SectionRepository[T]) Delete(_ context.Context, profileID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.getLocked(profileID, id); !ok {
		return section.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *SectionRepository[T]) Reorder(_ context.Context, profileID uuid.UUID, ids []uuid.UUID) ([]T, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current := r.listLocked(profileID)
	existing := make([]uuid.UUID, len(current))
	for i := range current {
		existing[i] = section.MetaOf(&current[i]).ID
	}
	if err := section.ValidatePermutation(existing, ids); err != nil {
		return nil, err
	}

	now := r.s.now()
	for i, id := range ids {
		row := r.rows[id]
		m := section.MetaOf(&row)
		m.OrderIndex = i
		m.UpdatedAt = now
		r.rows[id] = row
	}
	return r.listLocked(profileID), nil
}

func (r *SectionRepository[T]) ToggleVisibility(_ context.Context, profileID, id uuid.UUID) (T, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.getLocked(profileID, id)
	if !ok {
		return row, section.ErrNotFound
	}
	m := section.MetaOf(&row)
	m.IsVisible = !m.IsVisible
	m.UpdatedAt = r.s.now()
	r.rows[id] = row
	return row, nil
}

func (r *SectionRepository[T]) Stats(_ context.Context, profileID uuid.UUID) (section.Stats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st := section.Stats{BreakdownBy: r.breakdownBy, Breakdown: map[string]int{}}
	for _, row := range r.listLocked(profileID) {
		row := row
		st.Total++
		if section.MetaOf(&row).IsVisible {
			st.Visible++
		} else {
			st.Hidden++
		}
		if k := r.key(&row); k != "" {
			st.Breakdown[k]++
		}
	}
	return st, nil
}

// The methods below run with the store lock already held.

func (r *SectionRepository[T]) deleteProfile(profileID uuid.UUID) {
	for id, row := range r.rows {
		if section.MetaOf(&row).ProfileID == profileID {
			delete(r.rows, id)
		}
	}
}

func (r *SectionRepository[T]) copyProfile(from, to uuid.UUID, now time.Time) {
	for _, row := range r.listLocked(from) {
		row := row
		m := section.MetaOf(&row)
		m.ID = uuid.New()
		m.ProfileID = to
		m.CreatedAt, m.UpdatedAt = now, now
		r.rows[m.ID] = row
	}
}

func (r *SectionRepository[T]) count(profileID uuid.UUID) int {
	n := 0
	for _, row := range r.rows {
		if section.MetaOf(&row).ProfileID == profileID {
			n++
		}
	}
	return n
}
