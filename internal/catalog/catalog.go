// Package catalog holds the immutable presentation registries: templates,
// color schemes and skill categories. The tables are indexed once at package
// initialisation and never mutated, so lookups are safe from any goroutine.
package catalog

import "sort"

var (
	colorSchemeByID   map[string]ColorScheme
	templateByID      map[string]Template
	skillCategoryByID map[string]SkillCategory
)

func init() {
	colorSchemeByID = make(map[string]ColorScheme, len(colorSchemes))
	for _, cs := range colorSchemes {
		colorSchemeByID[cs.ID] = cs
	}
	templateByID = make(map[string]Template, len(templates))
	for _, t := range templates {
		templateByID[t.ID] = t
	}
	skillCategoryByID = make(map[string]SkillCategory, len(skillCategories))
	for _, sc := range skillCategories {
		skillCategoryByID[sc.ID] = sc
	}
}

func ColorSchemes() []ColorScheme {
	out := make([]ColorScheme, len(colorSchemes))
	copy(out, colorSchemes)
	return out
}

func ColorSchemeByID(id string) (ColorScheme, bool) {
	cs, ok := colorSchemeByID[id]
	return cs, ok
}

func ColorSchemeExists(id string) bool {
	_, ok := colorSchemeByID[id]
	return ok
}

func ColorSchemeIDs() []string {
	out := make([]string, 0, len(colorSchemes))
	for _, cs := range colorSchemes {
		out = append(out, cs.ID)
	}
	return out
}

func ColorSchemeCategories() []string {
	return uniqueSorted(len(colorSchemes), func(i int) string { return colorSchemes[i].Category })
}

func ColorSchemesByCategory(category string) []ColorScheme {
	out := make([]ColorScheme, 0)
	for _, cs := range colorSchemes {
		if cs.Category == category {
			out = append(out, cs)
		}
	}
	return out
}

func Templates() []Template {
	out := make([]Template, len(templates))
	copy(out, templates)
	return out
}

func TemplateByID(id string) (Template, bool) {
	t, ok := templateByID[id]
	return t, ok
}

func TemplateExists(id string) bool {
	_, ok := templateByID[id]
	return ok
}

func TemplateCategories() []string {
	return uniqueSorted(len(templates), func(i int) string { return templates[i].Category })
}

func TemplatesByCategory(category string) []Template {
	out := make([]Template, 0)
	for _, t := range templates {
		if t.Category == category {
			out = append(out, t)
		}
	}
	return out
}

func SkillCategories() []SkillCategory {
	out := make([]SkillCategory, len(skillCategories))
	copy(out, skillCategories)
	return out
}

func SkillCategoryByID(id string) (SkillCategory, bool) {
	sc, ok := skillCategoryByID[id]
	return sc, ok
}

func SkillCategoryExists(id string) bool {
	_, ok := skillCategoryByID[id]
	return ok
}

func uniqueSorted(n int, at func(i int) string) []string {
	seen := make(map[string]struct{}, n)
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		v := at(i)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
