package pdf

import (
	"bytes"
	"html/template"
	"strings"

	"cv-builder/internal/catalog"
	"cv-builder/internal/domain/date"
)

var funcs = template.FuncMap{
	"monthYear": func(d date.Date) string {
		if d.IsZero() {
			return ""
		}
		return d.Format("Jan 2006")
	},
	"period": func(start date.Date, end *date.Date, current bool, present string) string {
		from := ""
		if !start.IsZero() {
			from = start.Format("Jan 2006")
		}
		to := ""
		switch {
		case current:
			to = present
		case end != nil && !end.IsZero():
			to = end.Format("Jan 2006")
		}
		if to == "" {
			return from
		}
		return from + " – " + to
	},
	"lines": func(s string) []string {
		out := make([]string, 0)
		for _, l := range strings.Split(s, "\n") {
			if l = strings.TrimSpace(l); l != "" {
				out = append(out, strings.TrimLeft(l, "-•* "))
			}
		}
		return out
	},
	"categoryName": func(id string) string {
		if c, ok := catalog.SkillCategoryByID(id); ok {
			return c.Name
		}
		return id
	},
	"join": func(sep string, parts ...string) string {
		kept := parts[:0:0]
		for _, p := range parts {
			if strings.TrimSpace(p) != "" {
				kept = append(kept, p)
			}
		}
		return strings.Join(kept, sep)
	},
}

var pageTmpl = template.Must(template.New("cv").Funcs(funcs).Parse(`<!doctype html>
<html lang="{{.Profile.Language}}" dir="{{.Dir}}">
<head>
<meta charset="utf-8">
<title>{{.Profile.Name}}</title>
<style>
@page { size: A4; margin: 14mm 12mm; }
* { box-sizing: border-box; }
body { margin: 0; font-family: {{if eq .Template.ID "classic" "elegant"}}Georgia, "Times New Roman", serif{{else}}"Helvetica Neue", Arial, sans-serif{{end}}; font-size: 10.5pt; color: {{.Colors.Text}}; background: {{.Colors.Background}}; }
header { padding: 0 0 10px; border-bottom: 3px solid {{.Colors.Primary}}; margin-bottom: 12px; }
header h1 { margin: 0; font-size: 22pt; color: {{.Colors.Primary}}; }
header .title { font-size: 12pt; color: {{.Colors.Secondary}}; }
.wrap { display: flex; gap: 16px; }
aside { width: 32%; padding: 10px; background: {{.Colors.Accent}}33; border-radius: 4px; }
main { flex: 1; }
h2 { font-size: 11.5pt; text-transform: uppercase; letter-spacing: .06em; color: {{.Colors.Primary}}; border-bottom: 1px solid {{.Colors.Accent}}; padding-bottom: 2px; margin: 14px 0 6px; }
.item { margin-bottom: 8px; page-break-inside: avoid; }
.item .head { display: flex; justify-content: space-between; font-weight: 600; }
.item .sub { color: {{.Colors.Secondary}}; }
.muted { color: #6b7280; font-size: 9pt; }
ul { margin: 4px 0 0; padding-inline-start: 16px; }
.tag { display: inline-block; margin: 0 4px 4px 0; padding: 1px 6px; border: 1px solid {{.Colors.Accent}}; border-radius: 3px; font-size: 9pt; }
</style>
</head>
<body>
{{- $h := .Headings}}
{{- $p := .Profile.Personal}}
<header>
  <h1>{{$p.FullName}}</h1>
  {{with $p.JobTitle}}<div class="title">{{.}}</div>{{end}}
  {{if not $.Sidebar}}<div class="muted">{{join " · " $p.Email $p.Phone $p.City $p.Country $p.Website}}</div>{{end}}
</header>
<div class="wrap">
{{- if .Sidebar}}
<aside>
  <h2>{{$h.Contact}}</h2>
  {{with $p.Email}}<div>{{.}}</div>{{end}}
  {{with $p.Phone}}<div>{{.}}</div>{{end}}
  {{with join ", " $p.Address $p.City $p.Country}}<div>{{.}}</div>{{end}}
  {{with $p.Website}}<div>{{.}}</div>{{end}}
  {{template "skills" .}}
  {{template "languages" .}}
  {{template "links" .}}
</aside>
{{- end}}
<main>
  {{with $p.Summary}}<h2>{{$h.Summary}}</h2><p>{{.}}</p>{{end}}
  {{- with .Sections.Experience}}
  <h2>{{$h.Experience}}</h2>
  {{range .}}<div class="item">
    <div class="head"><span>{{.Position}}{{with .Company}} · {{.}}{{end}}</span><span class="muted">{{period .StartDate .EndDate .IsCurrent $h.Present}}</span></div>
    <div class="sub">{{join " · " .ProjectTitle .Location}}</div>
    {{with .Description}}<p>{{.}}</p>{{end}}
    {{with lines .Achievements}}<ul>{{range .}}<li>{{.}}</li>{{end}}</ul>{{end}}
  </div>{{end}}
  {{- end}}
  {{- with .Sections.Education}}
  <h2>{{$h.Education}}</h2>
  {{range .}}<div class="item">
    <div class="head"><span>{{.Degree}}{{with .FieldOfStudy}}, {{.}}{{end}}</span><span class="muted">{{period .StartDate .EndDate .IsCurrent $h.Present}}</span></div>
    <div class="sub">{{join " · " .Institution .Location .Grade}}</div>
    {{with .Description}}<p>{{.}}</p>{{end}}
  </div>{{end}}
  {{- end}}
  {{- with .Sections.Certifications}}
  <h2>{{$h.Certifications}}</h2>
  {{range .}}<div class="item">
    <div class="head"><span>{{.Name}}</span><span class="muted">{{$h.Issued}} {{monthYear .IssueDate}}{{with .ExpiryDate}} · {{$h.Expires}} {{monthYear .}}{{end}}</span></div>
    <div class="sub">{{join " · " .Issuer .CredentialID}}</div>
  </div>{{end}}
  {{- end}}
  {{- if not .Sidebar}}
  {{template "skills" .}}
  {{template "languages" .}}
  {{template "links" .}}
  {{- end}}
</main>
</div>
</body>
</html>
{{define "skills"}}{{with .Sections.Skills}}<h2>{{$.Headings.Skills}}</h2><div>{{range .}}<span class="tag" title="{{categoryName .Category}}">{{.Name}}{{with .Level}} · {{.}}{{end}}</span>{{end}}</div>{{end}}{{end}}
{{define "languages"}}{{with .Sections.Languages}}<h2>{{$.Headings.Languages}}</h2>{{range .}}<div>{{.Name}}{{with .Level}} <span class="muted">({{.}})</span>{{end}}</div>{{end}}{{end}}{{end}}
{{define "links"}}{{with .Sections.SocialNetworks}}<h2>{{$.Headings.SocialNetworks}}</h2>{{range .}}<div>{{.Platform}}: {{if .Username}}{{.Username}}{{else}}{{.URL}}{{end}}</div>{{end}}{{end}}{{end}}
`))

// RenderHTML lays the document out with its template and colors.
func RenderHTML(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
