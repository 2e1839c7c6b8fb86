package section

import "cv-builder/internal/domain/date"

var (
	EmploymentTypes = []string{"full_time", "part_time", "contract", "freelance", "internship", "volunteer"}
	DegreeLevels    = []string{"high_school", "associate", "bachelor", "master", "doctorate", "certificate", "other"}
	SkillLevels     = []string{"beginner", "intermediate", "advanced", "expert"}
	LanguageLevels  = []string{"A1", "A2", "B1", "B2", "C1", "C2", "native"}
	Platforms       = []string{
		"linkedin", "github", "gitlab", "twitter", "facebook", "instagram", "youtube",
		"behance", "dribbble", "medium", "stackoverflow", "website", "other",
	}
)

type Experience struct {
	Base
	ProjectTitle   string     `json:"project_title"`
	Position       string     `json:"position"`
	Company        string     `json:"company"`
	EmploymentType string     `json:"employment_type"`
	Location       string     `json:"location"`
	StartDate      date.Date  `json:"start_date"`
	EndDate        *date.Date `json:"end_date"`
	IsCurrent      bool       `json:"is_current"`
	Description    string     `json:"description"`
	Achievements   string     `json:"achievements"`
}

type Education struct {
	Base
	Institution  string     `json:"institution"`
	Degree       string     `json:"degree"`
	FieldOfStudy string     `json:"field_of_study"`
	DegreeLevel  string     `json:"degree_level"`
	Location     string     `json:"location"`
	StartDate    date.Date  `json:"start_date"`
	EndDate      *date.Date `json:"end_date"`
	IsCurrent    bool       `json:"is_current"`
	Grade        string     `json:"grade"`
	Description  string     `json:"description"`
}

type Skill struct {
	Base
	Name              string `json:"name"`
	Category          string `json:"category"`
	Level             string `json:"level"`
	YearsOfExperience int    `json:"years_of_experience"`
}

type Language struct {
	Base
	Name        string `json:"name"`
	Level       string `json:"level"`
	Certificate string `json:"certificate"`
}

type Certification struct {
	Base
	Name          string     `json:"name"`
	Issuer        string     `json:"issuer"`
	IssueDate     date.Date  `json:"issue_date"`
	ExpiryDate    *date.Date `json:"expiry_date"`
	CredentialID  string     `json:"credential_id"`
	CredentialURL string     `json:"credential_url"`
}

type SocialNetwork struct {
	Base
	Platform string `json:"platform"`
	URL      string `json:"url"`
	Username string `json:"username"`
}

// Set is every section of one profile, as used by the complete view and the
// PDF renderer.
type Set struct {
	Experience     []Experience    `json:"experience"`
	Education      []Education     `json:"education"`
	Skills         []Skill         `json:"skills"`
	Languages      []Language      `json:"languages"`
	Certifications []Certification `json:"certifications"`
	SocialNetworks []SocialNetwork `json:"social_networks"`
}

// Visible returns a copy holding only the entries marked visible.
func (s Set) Visible() Set {
	return Set{
		Experience:     visible(s.Experience),
		Education:      visible(s.Education),
		Skills:         visible(s.Skills),
		Languages:      visible(s.Languages),
		Certifications: visible(s.Certifications),
		SocialNetworks: visible(s.SocialNetworks),
	}
}

func visible[T any](items []T) []T {
	out := make([]T, 0, len(items))
	for i := range items {
		if MetaOf(&items[i]).IsVisible {
			out = append(out, items[i])
		}
	}
	return out
}
