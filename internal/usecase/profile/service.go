package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"cv-builder/internal/catalog"
	"cv-builder/internal/domain/profile"
	"cv-builder/internal/domain/section"
	"cv-builder/internal/domain/user"
	"cv-builder/internal/pkg/logger"
)

var (
	// ErrPremiumTemplate is returned when a non-premium user picks a premium
	// template.
	ErrPremiumTemplate = errors.New("template requires a premium account")
	ErrUnknownTemplate = errors.New("unknown template")
	ErrUnknownColors   = errors.New("unknown color scheme")
)

// SectionLoader reads every section of a profile.
type SectionLoader interface {
	Load(ctx context.Context, profileID uuid.UUID) (section.Set, error)
}

type CreateInput struct {
	Name          string
	TemplateID    string
	ColorSchemeID string
	Language      string
	IsPublic      bool
	Personal      *profile.Personal
}

type UpdateInput struct {
	Name          string
	TemplateID    string
	ColorSchemeID string
	Language      string
	IsPublic      bool
}

// Complete is a profile together with all of its sections.
type Complete struct {
	profile.Profile
	Sections   section.Set        `json:"sections"`
	Completion profile.Completion `json:"completion"`
}

type Service struct {
	profiles profile.Repository
	users    user.Repository
	sections SectionLoader
	log      *logger.Logger
}

func NewService(profiles profile.Repository, users user.Repository, sections SectionLoader, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{profiles: profiles, users: users, sections: sections, log: log.Named("profile")}
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]profile.Profile, error) {
	return s.profiles.ListByUser(ctx, userID)
}

func (s *Service) Stats(ctx context.Context, userID uuid.UUID) (profile.Stats, error) {
	return s.profiles.Stats(ctx, userID)
}

func (s *Service) Get(ctx context.Context, id, userID uuid.UUID) (profile.Profile, error) {
	return s.profiles.GetByIDAndUser(ctx, id, userID)
}

// Create fills catalog defaults for empty template, color scheme and
// language. The user's first profile becomes the default.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, in CreateInput) (profile.Profile, error) {
	p := profile.Profile{
		ID:            uuid.New(),
		UserID:        userID,
		Name:          strings.TrimSpace(in.Name),
		TemplateID:    in.TemplateID,
		ColorSchemeID: in.ColorSchemeID,
		Language:      in.Language,
		IsPublic:      in.IsPublic,
	}
	if p.TemplateID == "" {
		p.TemplateID = catalog.DefaultTemplateID
	}
	if err := s.checkTemplate(ctx, userID, p.TemplateID); err != nil {
		return profile.Profile{}, err
	}
	if p.ColorSchemeID == "" {
		p.ColorSchemeID = defaultColorScheme(p.TemplateID)
	}
	if p.Language == "" {
		p.Language = profile.DefaultLanguage
	}
	if in.Personal != nil {
		p.Personal = *in.Personal
	}

	created, err := s.profiles.Create(ctx, p)
	if err != nil {
		return profile.Profile{}, err
	}
	return s.withCompletion(ctx, created)
}

func (s *Service) Update(ctx context.Context, id, userID uuid.UUID, in UpdateInput) (profile.Profile, error) {
	current, err := s.profiles.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		return profile.Profile{}, err
	}
	if in.TemplateID != "" && in.TemplateID != current.TemplateID {
		if err := s.checkTemplate(ctx, userID, in.TemplateID); err != nil {
			return profile.Profile{}, err
		}
		current.TemplateID = in.TemplateID
	}
	if in.ColorSchemeID != "" {
		current.ColorSchemeID = in.ColorSchemeID
	}
	if in.Language != "" {
		current.Language = in.Language
	}
	current.Name = strings.TrimSpace(in.Name)
	current.IsPublic = in.IsPublic
	return s.profiles.Update(ctx, current)
}

func (s *Service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	return s.profiles.Delete(ctx, id, userID)
}

func (s *Service) UpdatePersonal(ctx context.Context, id, userID uuid.UUID, personal profile.Personal) (profile.Profile, error) {
	p, err := s.profiles.UpdatePersonal(ctx, id, userID, personal)
	if err != nil {
		return profile.Profile{}, err
	}
	return s.withCompletion(ctx, p)
}

func (s *Service) SetDefault(ctx context.Context, id, userID uuid.UUID) (profile.Profile, error) {
	return s.profiles.SetDefault(ctx, id, userID)
}

// SetTemplate switches the template. Without an explicit color scheme the
// current one is kept.
func (s *Service) SetTemplate(ctx context.Context, p profile.Profile, templateID, colorSchemeID string) (profile.Profile, error) {
	if err := s.checkTemplate(ctx, p.UserID, templateID); err != nil {
		return profile.Profile{}, err
	}
	if colorSchemeID == "" {
		colorSchemeID = p.ColorSchemeID
	}
	if !catalog.ColorSchemeExists(colorSchemeID) {
		return profile.Profile{}, ErrUnknownColors
	}
	return s.profiles.UpdateAppearance(ctx, p.ID, p.UserID, templateID, colorSchemeID)
}

func (s *Service) SetColorScheme(ctx context.Context, p profile.Profile, colorSchemeID string) (profile.Profile, error) {
	if !catalog.ColorSchemeExists(colorSchemeID) {
		return profile.Profile{}, ErrUnknownColors
	}
	return s.profiles.UpdateAppearance(ctx, p.ID, p.UserID, p.TemplateID, colorSchemeID)
}

// Duplicate copies the profile and its sections. An empty name becomes
// "<name> (Copy)".
func (s *Service) Duplicate(ctx context.Context, p profile.Profile, name string) (profile.Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = p.Name + " (Copy)"
	}
	return s.profiles.Duplicate(ctx, p.ID, p.UserID, name)
}

func (s *Service) Complete(ctx context.Context, p profile.Profile) (Complete, error) {
	set, err := s.sections.Load(ctx, p.ID)
	if err != nil {
		return Complete{}, err
	}
	return Complete{
		Profile:    p,
		Sections:   set,
		Completion: profile.ComputeCompletion(p, countsOf(set)),
	}, nil
}

// Completion recomputes the breakdown and stores the percentage.
func (s *Service) Completion(ctx context.Context, p profile.Profile) (profile.Completion, error) {
	counts, err := s.profiles.SectionCounts(ctx, p.ID)
	if err != nil {
		return profile.Completion{}, err
	}
	c := profile.ComputeCompletion(p, counts)
	if c.Percentage != p.CompletionPercentage {
		if err := s.profiles.UpdateCompletion(ctx, p.ID, c.Percentage); err != nil {
			return profile.Completion{}, fmt.Errorf("store completion: %w", err)
		}
	}
	return c, nil
}

// RefreshCompletion is called after section writes.
func (s *Service) RefreshCompletion(ctx context.Context, profileID uuid.UUID) error {
	p, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return err
	}
	_, err = s.Completion(ctx, p)
	return err
}

func (s *Service) withCompletion(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	c, err := s.Completion(ctx, p)
	if err != nil {
		s.log.Warn("completion refresh failed", "profile_id", p.ID, "error", err)
		return p, nil
	}
	p.CompletionPercentage = c.Percentage
	return p, nil
}

func (s *Service) checkTemplate(ctx context.Context, userID uuid.UUID, templateID string) error {
	tpl, ok := catalog.TemplateByID(templateID)
	if !ok {
		return ErrUnknownTemplate
	}
	if !tpl.IsPremium {
		return nil
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !u.IsPremium {
		return ErrPremiumTemplate
	}
	return nil
}

func defaultColorScheme(templateID string) string {
	if tpl, ok := catalog.TemplateByID(templateID); ok && tpl.DefaultColorScheme != "" {
		return tpl.DefaultColorScheme
	}
	return catalog.DefaultColorSchemeID
}

func countsOf(set section.Set) profile.SectionCounts {
	return profile.SectionCounts{
		Experience:     len(set.Experience),
		Education:      len(set.Education),
		Skills:         len(set.Skills),
		Languages:      len(set.Languages),
		Certifications: len(set.Certifications),
		SocialNetworks: len(set.SocialNetworks),
	}
}
