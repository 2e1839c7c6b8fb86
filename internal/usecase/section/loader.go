package section

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"cv-builder/internal/domain/section"
)

// Repositories groups the six section stores.
type Repositories struct {
	Experience     section.Repository[section.Experience]
	Education      section.Repository[section.Education]
	Skills         section.Repository[section.Skill]
	Languages      section.Repository[section.Language]
	Certifications section.Repository[section.Certification]
	SocialNetworks section.Repository[section.SocialNetwork]
}

// Load reads every section of a profile, in display order.
func (r Repositories) Load(ctx context.Context, profileID uuid.UUID) (section.Set, error) {
	var (
		set section.Set
		err error
	)
	if set.Experience, err = r.Experience.List(ctx, profileID); err != nil {
		return set, fmt.Errorf("load experience: %w", err)
	}
	if set.Education, err = r.Education.List(ctx, profileID); err != nil {
		return set, fmt.Errorf("load education: %w", err)
	}
	if set.Skills, err = r.Skills.List(ctx, profileID); err != nil {
		return set, fmt.Errorf("load skills: %w", err)
	}
	if set.Languages, err = r.Languages.List(ctx, profileID); err != nil {
		return set, fmt.Errorf("load languages: %w", err)
	}
	if set.Certifications, err = r.Certifications.List(ctx, profileID); err != nil {
		return set, fmt.Errorf("load certifications: %w", err)
	}
	if set.SocialNetworks, err = r.SocialNetworks.List(ctx, profileID); err != nil {
		return set, fmt.Errorf("load social networks: %w", err)
	}
	return set, nil
}
