package catalog

type SkillCategory struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

var skillCategories = []SkillCategory{
	{ID: "programming_languages", Name: "Programming Languages", Description: "General purpose and scripting languages.", Icon: "code"},
	{ID: "frameworks", Name: "Frameworks & Libraries", Description: "Application frameworks and major libraries.", Icon: "layers"},
	{ID: "databases", Name: "Databases", Description: "Relational, document and key-value stores.", Icon: "database"},
	{ID: "devops", Name: "DevOps", Description: "CI/CD, containers and infrastructure as code.", Icon: "git-branch"},
	{ID: "cloud", Name: "Cloud Platforms", Description: "Public and private cloud services.", Icon: "cloud"},
	{ID: "tools", Name: "Tools", Description: "Editors, productivity and collaboration tools.", Icon: "tool"},
	{ID: "design", Name: "Design", Description: "UI, UX and graphic design.", Icon: "pen-tool"},
	{ID: "data", Name: "Data & Analytics", Description: "Data engineering, analytics and machine learning.", Icon: "bar-chart"},
	{ID: "soft_skills", Name: "Soft Skills", Description: "Communication, leadership and teamwork.", Icon: "users"},
	{ID: "other", Name: "Other", Description: "Anything that does not fit elsewhere.", Icon: "more-horizontal"},
}
