package pdf

import (
	"strings"
	"testing"

	"cv-builder/internal/catalog"
	"cv-builder/internal/domain/date"
	"cv-builder/internal/domain/profile"
	"cv-builder/internal/domain/section"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProfile() profile.Profile {
	return profile.Profile{
		Name:          "Dev CV",
		TemplateID:    "modern",
		ColorSchemeID: "ocean-blue",
		Language:      "en",
		Personal: profile.Personal{
			FirstName: "Ada",
			LastName:  "Lovelace",
			JobTitle:  "Engineer",
			Email:     "ada@example.com",
			Summary:   "Writes programs.",
		},
	}
}

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"Dev CV":              "dev-cv",
		"  Senior  Go / SRE ": "senior-go-sre",
		"Ünïcode":             "n-code",
		"***":                 "cv",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slug(in), in)
	}
}

func TestNewDocumentFallsBackAndFiltersHidden(t *testing.T) {
	p := sampleProfile()
	p.TemplateID = "gone"
	p.ColorSchemeID = "gone"
	p.Language = "ar"

	hidden := section.Skill{Name: "COBOL"}
	shown := section.Skill{Name: "Go"}
	shown.IsVisible = true

	doc := NewDocument(p, section.Set{Skills: []section.Skill{hidden, shown}})
	assert.Equal(t, catalog.DefaultTemplateID, doc.Template.ID)
	assert.Equal(t, doc.Template.DefaultColorScheme, doc.Colors.ID)
	assert.Equal(t, "rtl", doc.Dir)
	require.Len(t, doc.Sections.Skills, 1)
	assert.Equal(t, "Go", doc.Sections.Skills[0].Name)
	assert.Equal(t, "dev-cv.pdf", doc.Filename())
}

func TestRenderHTML(t *testing.T) {
	exp := section.Experience{
		Position:     "Backend Engineer",
		Company:      "Acme",
		StartDate:    date.New(2020, 1, 1),
		IsCurrent:    true,
		Achievements: "- shipped things\n- fixed <bugs>",
	}
	exp.IsVisible = true

	p := sampleProfile()
	p.Language = "de"
	html, err := RenderHTML(NewDocument(p, section.Set{Experience: []section.Experience{exp}}))
	require.NoError(t, err)

	out := string(html)
	assert.Contains(t, out, "Ada Lovelace")
	assert.Contains(t, out, "Berufserfahrung")
	assert.Contains(t, out, "Jan 2020 – Heute")
	assert.Contains(t, out, "fixed &lt;bugs&gt;")
	assert.False(t, strings.Contains(out, "<aside>"), "single-column layout has no sidebar")

	p.TemplateID = "sidebar"
	html, err = RenderHTML(NewDocument(p, section.Set{}))
	require.NoError(t, err)
	assert.Contains(t, string(html), "<aside>")
}

func TestValidate(t *testing.T) {
	r := Validate(sampleProfile(), section.Set{})
	assert.True(t, r.Valid)
	assert.Empty(t, r.Errors)
	assert.Len(t, r.Warnings, 6)

	p := sampleProfile()
	p.Name = ""
	p.Personal.LastName = ""
	p.TemplateID = "nope"
	p.Personal.Email = ""
	r = Validate(p, section.Set{})
	assert.False(t, r.Valid)
	assert.Equal(t, []string{
		"profile name is required",
		"first and last name are required",
		"unknown template nope",
	}, r.Errors)
	assert.Contains(t, r.Warnings, "no contact details (email or phone)")
}
