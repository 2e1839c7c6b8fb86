package catalog

type Template struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Description        string `json:"description"`
	Category           string `json:"category"`
	Layout             string `json:"layout"`
	IsPremium          bool   `json:"is_premium"`
	DefaultColorScheme string `json:"default_color_scheme"`
}

const (
	LayoutSingleColumn = "single-column"
	LayoutTwoColumn    = "two-column"
	LayoutSidebar      = "sidebar"

	DefaultTemplateID = "modern"
)

var templates = []Template{
	{ID: "modern", Name: "Modern", Description: "Clean header band with accent rules between sections.", Category: "professional", Layout: LayoutSingleColumn, DefaultColorScheme: "ocean-blue"},
	{ID: "classic", Name: "Classic", Description: "Traditional serif layout suited to conservative industries.", Category: "professional", Layout: LayoutSingleColumn, DefaultColorScheme: "slate-gray"},
	{ID: "minimal", Name: "Minimal", Description: "Whitespace-first layout with no decorations.", Category: "simple", Layout: LayoutSingleColumn, DefaultColorScheme: "monochrome"},
	{ID: "sidebar", Name: "Sidebar", Description: "Contact, skills and languages in a colored left column.", Category: "professional", Layout: LayoutSidebar, DefaultColorScheme: "forest-green"},
	{ID: "creative", Name: "Creative", Description: "Bold two-column layout for design and media roles.", Category: "creative", Layout: LayoutTwoColumn, IsPremium: true, DefaultColorScheme: "sunset-orange"},
	{ID: "elegant", Name: "Elegant", Description: "Refined typography with a thin accent frame.", Category: "creative", Layout: LayoutTwoColumn, IsPremium: true, DefaultColorScheme: "charcoal-gold"},
	{ID: "executive", Name: "Executive", Description: "Dense single page for senior profiles.", Category: "professional", Layout: LayoutSidebar, IsPremium: true, DefaultColorScheme: "burgundy"},
}
