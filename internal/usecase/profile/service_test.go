package profile

import (
	"context"
	"testing"
	"time"

	"cv-builder/internal/domain/profile"
	"cv-builder/internal/domain/section"
	"cv-builder/internal/domain/user"
	"cv-builder/internal/repository/memory"
	sectionuc "cv-builder/internal/usecase/section"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store *memory.Store
	svc   *Service
	user  user.User
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memory.NewStore()
	u, err := store.Users().Create(context.Background(), user.User{
		ID:       uuid.New(),
		Email:    "ada@example.com",
		IsActive: true,
	})
	require.NoError(t, err)

	loader := sectionuc.Repositories{
		Experience:     store.Experiences(),
		Education:      store.Educations(),
		Skills:         store.Skills(),
		Languages:      store.Languages(),
		Certifications: store.Certifications(),
		SocialNetworks: store.SocialNetworks(),
	}
	return fixture{
		store: store,
		svc:   NewService(store.Profiles(), store.Users(), loader, nil),
		user:  u,
	}
}

func TestService_CreateAppliesDefaults(t *testing.T) {
	f := newFixture(t)
	p, err := f.svc.Create(context.Background(), f.user.ID, CreateInput{Name: "  Main CV "})
	require.NoError(t, err)

	assert.Equal(t, "Main CV", p.Name)
	assert.Equal(t, "modern", p.TemplateID)
	assert.Equal(t, "ocean-blue", p.ColorSchemeID)
	assert.Equal(t, profile.DefaultLanguage, p.Language)
	assert.True(t, p.IsDefault)

	second, err := f.svc.Create(context.Background(), f.user.ID, CreateInput{Name: "Second", TemplateID: "classic"})
	require.NoError(t, err)
	assert.False(t, second.IsDefault)
	assert.Equal(t, "slate-gray", second.ColorSchemeID)
}

func TestService_PremiumTemplateRequiresPremiumUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p, err := f.svc.Create(ctx, f.user.ID, CreateInput{Name: "CV"})
	require.NoError(t, err)

	_, err = f.svc.SetTemplate(ctx, p, "executive", "")
	assert.ErrorIs(t, err, ErrPremiumTemplate)

	_, err = f.svc.Create(ctx, f.user.ID, CreateInput{Name: "Fancy", TemplateID: "creative"})
	assert.ErrorIs(t, err, ErrPremiumTemplate)

	require.NoError(t, f.store.Users().SetPremium(f.user.ID, true))
	updated, err := f.svc.SetTemplate(ctx, p, "executive", "burgundy")
	require.NoError(t, err)
	assert.Equal(t, "executive", updated.TemplateID)
	assert.Equal(t, "burgundy", updated.ColorSchemeID)
}

func TestService_SetTemplateKeepsColorScheme(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p, err := f.svc.Create(ctx, f.user.ID, CreateInput{Name: "CV", ColorSchemeID: "forest-green"})
	require.NoError(t, err)

	updated, err := f.svc.SetTemplate(ctx, p, "minimal", "")
	require.NoError(t, err)
	assert.Equal(t, "minimal", updated.TemplateID)
	assert.Equal(t, "forest-green", updated.ColorSchemeID)

	_, err = f.svc.SetTemplate(ctx, p, "nope", "")
	assert.ErrorIs(t, err, ErrUnknownTemplate)
	_, err = f.svc.SetColorScheme(ctx, p, "nope")
	assert.ErrorIs(t, err, ErrUnknownColors)
}

func TestService_DuplicateDefaultName(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p, err := f.svc.Create(ctx, f.user.ID, CreateInput{Name: "CV", IsPublic: true})
	require.NoError(t, err)

	cp, err := f.svc.Duplicate(ctx, p, "   ")
	require.NoError(t, err)
	assert.Equal(t, "CV (Copy)", cp.Name)
	assert.NotEqual(t, p.ID, cp.ID)
	assert.False(t, cp.IsDefault)
	assert.False(t, cp.IsPublic)

	named, err := f.svc.Duplicate(ctx, p, "Backend")
	require.NoError(t, err)
	assert.Equal(t, "Backend", named.Name)
}

func TestService_CompletionTracksSections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p, err := f.svc.Create(ctx, f.user.ID, CreateInput{Name: "CV"})
	require.NoError(t, err)
	assert.Equal(t, 0, p.CompletionPercentage)

	p, err = f.svc.UpdatePersonal(ctx, p.ID, f.user.ID, profile.Personal{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, 20, p.CompletionPercentage)

	skills := sectionuc.NewService[section.Skill](section.KindSkill, f.store.Skills(), f.svc, nil)
	_, err = skills.Create(ctx, p.ID, section.Skill{Name: "Go"})
	require.NoError(t, err)

	stored, err := f.store.Profiles().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, stored.CompletionPercentage)

	c, err := f.svc.Completion(ctx, stored)
	require.NoError(t, err)
	assert.Equal(t, 30, c.Percentage)
	assert.Contains(t, c.Missing, "experience")
	assert.NotContains(t, c.Missing, "skills")
}

func TestService_CompleteIncludesHiddenSections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p, err := f.svc.Create(ctx, f.user.ID, CreateInput{Name: "CV"})
	require.NoError(t, err)

	sk, err := f.store.Skills().Create(ctx, p.ID, section.Skill{Name: "Go"})
	require.NoError(t, err)
	_, err = f.store.Skills().ToggleVisibility(ctx, p.ID, sk.ID)
	require.NoError(t, err)

	full, err := f.svc.Complete(ctx, p)
	require.NoError(t, err)
	require.Len(t, full.Sections.Skills, 1)
	assert.False(t, full.Sections.Skills[0].IsVisible)
	assert.Empty(t, full.Sections.Experience)
	assert.Equal(t, 10, full.Completion.Percentage)
}

func TestService_GetScopedToOwner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p, err := f.svc.Create(ctx, f.user.ID, CreateInput{Name: "CV"})
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, p.ID, uuid.New())
	assert.ErrorIs(t, err, profile.ErrNotFound)

	got, err := f.svc.Get(ctx, p.ID, f.user.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), got.CreatedAt, time.Minute)
}
