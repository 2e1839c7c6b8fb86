package pdf

import (
	"strings"

	"cv-builder/internal/catalog"
	"cv-builder/internal/domain/profile"
	"cv-builder/internal/domain/section"
)

// Report is the result of checking a profile before export. Errors block the
// export; warnings only point at thin content.
type Report struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func Validate(p profile.Profile, sections section.Set) Report {
	r := Report{Errors: []string{}, Warnings: []string{}}

	if strings.TrimSpace(p.Name) == "" {
		r.Errors = append(r.Errors, "profile name is required")
	}
	if strings.TrimSpace(p.Personal.FirstName) == "" || strings.TrimSpace(p.Personal.LastName) == "" {
		r.Errors = append(r.Errors, "first and last name are required")
	}
	if !catalog.TemplateExists(p.TemplateID) {
		r.Errors = append(r.Errors, "unknown template "+p.TemplateID)
	}
	if !catalog.ColorSchemeExists(p.ColorSchemeID) {
		r.Errors = append(r.Errors, "unknown color scheme "+p.ColorSchemeID)
	}

	if p.Personal.Email == "" && p.Personal.Phone == "" {
		r.Warnings = append(r.Warnings, "no contact details (email or phone)")
	}
	if strings.TrimSpace(p.Personal.Summary) == "" {
		r.Warnings = append(r.Warnings, "summary is empty")
	}

	visible := sections.Visible()
	counts := []struct {
		kind section.Kind
		n    int
	}{
		{section.KindExperience, len(visible.Experience)},
		{section.KindEducation, len(visible.Education)},
		{section.KindSkill, len(visible.Skills)},
		{section.KindLanguage, len(visible.Languages)},
		{section.KindCertification, len(visible.Certifications)},
		{section.KindSocialNetwork, len(visible.SocialNetworks)},
	}
	for _, c := range counts {
		if c.n == 0 {
			r.Warnings = append(r.Warnings, c.kind.Label()+" section has no visible entries")
		}
	}

	r.Valid = len(r.Errors) == 0
	return r
}
