package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"cv-builder/internal/domain/profile"
	"cv-builder/internal/domain/section"
	"cv-builder/internal/domain/session"
	"cv-builder/internal/domain/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tickingClock advances one second per call so update order is deterministic.
func tickingClock() func() time.Time {
	t := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func TestUserRepository_EmailIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	users := NewStore().Users()

	u, err := users.Create(ctx, user.User{Email: "Ada@Example.com", IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)

	_, err = users.Create(ctx, user.User{Email: "ADA@example.com"})
	assert.ErrorIs(t, err, user.ErrEmailTaken)

	got, err := users.GetByEmail(ctx, "ada@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestProfileRepository_DefaultLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewStore().WithClock(tickingClock())
	profiles := s.Profiles()
	owner := uuid.New()

	first, err := profiles.Create(ctx, profile.Profile{UserID: owner, Name: "first"})
	require.NoError(t, err)
	second, err := profiles.Create(ctx, profile.Profile{UserID: owner, Name: "second"})
	require.NoError(t, err)
	third, err := profiles.Create(ctx, profile.Profile{UserID: owner, Name: "third"})
	require.NoError(t, err)

	assert.True(t, first.IsDefault)
	assert.False(t, second.IsDefault)
	assert.False(t, third.IsDefault)

	// second becomes the most recently updated.
	_, err = profiles.Update(ctx, profile.Profile{ID: second.ID, UserID: owner, Name: "second v2"})
	require.NoError(t, err)

	require.NoError(t, profiles.Delete(ctx, first.ID, owner))

	got, err := profiles.GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDefault)

	_, err = profiles.SetDefault(ctx, third.ID, owner)
	require.NoError(t, err)
	list, err := profiles.ListByUser(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, third.ID, list[0].ID)
	assert.False(t, list[1].IsDefault)

	_, err = profiles.SetDefault(ctx, third.ID, uuid.New())
	assert.ErrorIs(t, err, profile.ErrNotFound)
}

func TestProfileRepository_DuplicateAndCascade(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	owner := uuid.New()

	src, err := s.Profiles().Create(ctx, profile.Profile{UserID: owner, Name: "CV", IsPublic: true})
	require.NoError(t, err)
	require.NoError(t, s.Profiles().IncrementDownloads(ctx, src.ID))

	_, err = s.Skills().Create(ctx, src.ID, section.Skill{Name: "Go", Category: "programming_languages"})
	require.NoError(t, err)
	_, err = s.Skills().Create(ctx, src.ID, section.Skill{Name: "SQL", Category: "databases"})
	require.NoError(t, err)

	cp, err := s.Profiles().Duplicate(ctx, src.ID, owner, "CV (Copy)")
	require.NoError(t, err)
	assert.Equal(t, "CV (Copy)", cp.Name)
	assert.False(t, cp.IsDefault)
	assert.False(t, cp.IsPublic)
	assert.Zero(t, cp.DownloadCount)

	copied, err := s.Skills().List(ctx, cp.ID)
	require.NoError(t, err)
	require.Len(t, copied, 2)
	assert.Equal(t, "Go", copied[0].Name)
	assert.Equal(t, 0, copied[0].OrderIndex)
	assert.Equal(t, cp.ID, copied[0].ProfileID)

	counts, err := s.Profiles().SectionCounts(ctx, cp.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, counts.Skills)

	require.NoError(t, s.Profiles().Delete(ctx, src.ID, owner))
	left, err := s.Skills().List(ctx, src.ID)
	require.NoError(t, err)
	assert.Empty(t, left)

	still, err := s.Skills().List(ctx, cp.ID)
	require.NoError(t, err)
	assert.Len(t, still, 2)
}

func TestSectionRepository_ReorderAndToggle(t *testing.T) {
	ctx := context.Background()
	langs := NewStore().Languages()
	pid := uuid.New()

	a, _ := langs.Create(ctx, pid, section.Language{Name: "English", Level: "C2"})
	b, _ := langs.Create(ctx, pid, section.Language{Name: "German", Level: "B1"})
	c, _ := langs.Create(ctx, pid, section.Language{Name: "French", Level: "B1"})
	assert.Equal(t, []int{0, 1, 2}, []int{a.OrderIndex, b.OrderIndex, c.OrderIndex})

	_, err := langs.Reorder(ctx, pid, []uuid.UUID{c.ID, a.ID})
	assert.ErrorIs(t, err, section.ErrReorderMismatch)

	_, err = langs.Reorder(ctx, pid, []uuid.UUID{c.ID, a.ID, a.ID})
	assert.ErrorIs(t, err, section.ErrReorderMismatch)

	out, err := langs.Reorder(ctx, pid, []uuid.UUID{c.ID, a.ID, b.ID})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, []string{"French", "English", "German"}, []string{out[0].Name, out[1].Name, out[2].Name})

	toggled, err := langs.ToggleVisibility(ctx, pid, b.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsVisible)

	st, err := langs.Stats(ctx, pid)
	require.NoError(t, err)
	assert.Equal(t, 3, st.Total)
	assert.Equal(t, 1, st.Hidden)
	assert.Equal(t, "level", st.BreakdownBy)
	assert.Equal(t, map[string]int{"C2": 1, "B1": 2}, st.Breakdown)

	_, err = langs.Get(ctx, uuid.New(), a.ID)
	assert.ErrorIs(t, err, section.ErrNotFound)
}

func TestSectionRepository_UpdateKeepsOrderAndVisibility(t *testing.T) {
	ctx := context.Background()
	skills := NewStore().Skills()
	pid := uuid.New()

	_, _ = skills.Create(ctx, pid, section.Skill{Name: "Go"})
	sk, _ := skills.Create(ctx, pid, section.Skill{Name: "Rust"})
	_, _ = skills.ToggleVisibility(ctx, pid, sk.ID)

	upd, err := skills.Update(ctx, pid, sk.ID, section.Skill{Name: "Rust 2", Base: section.Base{OrderIndex: 99, IsVisible: true}})
	require.NoError(t, err)
	assert.Equal(t, "Rust 2", upd.Name)
	assert.Equal(t, 1, upd.OrderIndex)
	assert.False(t, upd.IsVisible)
	assert.Equal(t, sk.ID, upd.ID)
}

func TestSessionRepository_RotateAndRevokeAll(t *testing.T) {
	ctx := context.Background()
	sessions := NewStore().Sessions()
	uid := uuid.New()
	keep, other := uuid.New(), uuid.New()
	exp := time.Now().Add(time.Hour)

	require.NoError(t, sessions.Create(ctx, session.Session{ID: keep, UserID: uid, RefreshTokenHash: "h1", ExpiresAt: exp}))
	require.NoError(t, sessions.Create(ctx, session.Session{ID: other, UserID: uid, RefreshTokenHash: "h2", ExpiresAt: exp}))

	require.NoError(t, sessions.RotateRefreshHash(ctx, keep, "h1", "h1b", exp))
	err := sessions.RotateRefreshHash(ctx, keep, "h1", "h1c", exp)
	assert.True(t, errors.Is(err, session.ErrRefreshMismatch))

	revoked, err := sessions.RevokeAllForUser(ctx, uid, keep)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{other}, revoked)

	got, err := sessions.GetByID(ctx, other)
	require.NoError(t, err)
	assert.True(t, got.IsRevoked())

	got, err = sessions.GetByID(ctx, keep)
	require.NoError(t, err)
	assert.False(t, got.IsRevoked())
}
