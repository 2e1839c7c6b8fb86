package catalog

type ColorScheme struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Category   string `json:"category"`
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Accent     string `json:"accent"`
	Text       string `json:"text"`
	Background string `json:"background"`
}

const DefaultColorSchemeID = "ocean-blue"

var colorSchemes = []ColorScheme{
	{ID: "ocean-blue", Name: "Ocean Blue", Category: "professional", Primary: "#1e3a8a", Secondary: "#3b82f6", Accent: "#93c5fd", Text: "#1f2937", Background: "#ffffff"},
	{ID: "slate-gray", Name: "Slate Gray", Category: "professional", Primary: "#334155", Secondary: "#64748b", Accent: "#cbd5e1", Text: "#0f172a", Background: "#ffffff"},
	{ID: "forest-green", Name: "Forest Green", Category: "professional", Primary: "#14532d", Secondary: "#16a34a", Accent: "#86efac", Text: "#1f2937", Background: "#ffffff"},
	{ID: "burgundy", Name: "Burgundy", Category: "elegant", Primary: "#7f1d1d", Secondary: "#b91c1c", Accent: "#fca5a5", Text: "#1f2937", Background: "#fffbfb"},
	{ID: "royal-purple", Name: "Royal Purple", Category: "elegant", Primary: "#4c1d95", Secondary: "#7c3aed", Accent: "#c4b5fd", Text: "#1f2937", Background: "#ffffff"},
	{ID: "charcoal-gold", Name: "Charcoal Gold", Category: "elegant", Primary: "#1c1917", Secondary: "#a16207", Accent: "#fde68a", Text: "#1c1917", Background: "#fffdf7"},
	{ID: "sunset-orange", Name: "Sunset Orange", Category: "creative", Primary: "#9a3412", Secondary: "#f97316", Accent: "#fed7aa", Text: "#1f2937", Background: "#ffffff"},
	{ID: "teal-wave", Name: "Teal Wave", Category: "creative", Primary: "#115e59", Secondary: "#14b8a6", Accent: "#99f6e4", Text: "#134e4a", Background: "#ffffff"},
	{ID: "coral-pink", Name: "Coral Pink", Category: "creative", Primary: "#9d174d", Secondary: "#ec4899", Accent: "#fbcfe8", Text: "#1f2937", Background: "#ffffff"},
	{ID: "midnight", Name: "Midnight", Category: "dark", Primary: "#e2e8f0", Secondary: "#38bdf8", Accent: "#0ea5e9", Text: "#f1f5f9", Background: "#0f172a"},
	{ID: "graphite", Name: "Graphite", Category: "dark", Primary: "#fafafa", Secondary: "#a3a3a3", Accent: "#f59e0b", Text: "#e5e5e5", Background: "#171717"},
	{ID: "monochrome", Name: "Monochrome", Category: "minimal", Primary: "#000000", Secondary: "#404040", Accent: "#a3a3a3", Text: "#171717", Background: "#ffffff"},
	{ID: "soft-sand", Name: "Soft Sand", Category: "minimal", Primary: "#57534e", Secondary: "#a8a29e", Accent: "#e7e5e4", Text: "#292524", Background: "#fafaf9"},
}
