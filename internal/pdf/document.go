// Package pdf turns a profile and its sections into an HTML document and
// prints it to PDF with headless Chrome.
package pdf

import (
	"strings"
	"unicode"

	"cv-builder/internal/catalog"
	"cv-builder/internal/domain/profile"
	"cv-builder/internal/domain/section"
)

// Document is everything the HTML templates need to lay out one CV.
type Document struct {
	Profile  profile.Profile
	Sections section.Set
	Template catalog.Template
	Colors   catalog.ColorScheme
	Headings Headings
	Dir      string
}

// NewDocument keeps only the visible section entries. Unknown template or
// color scheme ids fall back to the catalog defaults; Validate reports them.
func NewDocument(p profile.Profile, sections section.Set) Document {
	tpl, ok := catalog.TemplateByID(p.TemplateID)
	if !ok {
		tpl, _ = catalog.TemplateByID(catalog.DefaultTemplateID)
	}
	colors, ok := catalog.ColorSchemeByID(p.ColorSchemeID)
	if !ok {
		colors, _ = catalog.ColorSchemeByID(tpl.DefaultColorScheme)
	}
	return Document{
		Profile:  p,
		Sections: sections.Visible(),
		Template: tpl,
		Colors:   colors,
		Headings: HeadingsFor(p.Language),
		Dir:      Direction(p.Language),
	}
}

// Sidebar reports whether the layout puts contact, skills and languages in a
// side column.
func (d Document) Sidebar() bool {
	return d.Template.Layout == catalog.LayoutSidebar || d.Template.Layout == catalog.LayoutTwoColumn
}

// Filename is the attachment name of the exported PDF.
func (d Document) Filename() string {
	return Slug(d.Profile.Name) + ".pdf"
}

// Slug lower-cases name and joins its letters and digits with dashes.
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "cv"
	}
	return out
}
