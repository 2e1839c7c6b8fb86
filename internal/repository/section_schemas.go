package repository

import (
	"cv-builder/internal/domain/section"
)

var ExperienceSchema = SectionSchema[section.Experience]{
	Kind:  section.KindExperience,
	Table: "experiences",
	Columns: []string{
		"project_title", "position", "company", "employment_type", "location",
		"start_date", "end_date", "is_current", "description", "achievements",
	},
	Values: func(e *section.Experience) []any {
		return []any{
			e.ProjectTitle, e.Position, e.Company, e.EmploymentType, e.Location,
			e.StartDate, e.EndDate, e.IsCurrent, e.Description, e.Achievements,
		}
	},
	Targets: func(e *section.Experience) []any {
		return []any{
			&e.ProjectTitle, &e.Position, &e.Company, &e.EmploymentType, &e.Location,
			&e.StartDate, &e.EndDate, &e.IsCurrent, &e.Description, &e.Achievements,
		}
	},
	Breakdown: "employment_type",
}

var EducationSchema = SectionSchema[section.Education]{
	Kind:  section.KindEducation,
	Table: "educations",
	Columns: []string{
		"institution", "degree", "field_of_study", "degree_level", "location",
		"start_date", "end_date", "is_current", "grade", "description",
	},
	Values: func(e *section.Education) []any {
		return []any{
			e.Institution, e.Degree, e.FieldOfStudy, e.DegreeLevel, e.Location,
			e.StartDate, e.EndDate, e.IsCurrent, e.Grade, e.Description,
		}
	},
	Targets: func(e *section.Education) []any {
		return []any{
			&e.Institution, &e.Degree, &e.FieldOfStudy, &e.DegreeLevel, &e.Location,
			&e.StartDate, &e.EndDate, &e.IsCurrent, &e.Grade, &e.Description,
		}
	},
	Breakdown: "degree_level",
}

var SkillSchema = SectionSchema[section.Skill]{
	Kind:    section.KindSkill,
	Table:   "skills",
	Columns: []string{"name", "category", "level", "years_of_experience"},
	Values: func(s *section.Skill) []any {
		return []any{s.Name, s.Category, s.Level, s.YearsOfExperience}
	},
	Targets: func(s *section.Skill) []any {
		return []any{&s.Name, &s.Category, &s.Level, &s.YearsOfExperience}
	},
	Breakdown: "category",
}

var LanguageSchema = SectionSchema[section.Language]{
	Kind:    section.KindLanguage,
	Table:   "languages",
	Columns: []string{"name", "level", "certificate"},
	Values: func(l *section.Language) []any {
		return []any{l.Name, l.Level, l.Certificate}
	},
	Targets: func(l *section.Language) []any {
		return []any{&l.Name, &l.Level, &l.Certificate}
	},
	Breakdown: "level",
}

var CertificationSchema = SectionSchema[section.Certification]{
	Kind:    section.KindCertification,
	Table:   "certifications",
	Columns: []string{"name", "issuer", "issue_date", "expiry_date", "credential_id", "credential_url"},
	Values: func(c *section.Certification) []any {
		return []any{c.Name, c.Issuer, c.IssueDate, c.ExpiryDate, c.CredentialID, c.CredentialURL}
	},
	Targets: func(c *section.Certification) []any {
		return []any{&c.Name, &c.Issuer, &c.IssueDate, &c.ExpiryDate, &c.CredentialID, &c.CredentialURL}
	},
	Breakdown: "issuer",
}

var SocialNetworkSchema = SectionSchema[section.SocialNetwork]{
	Kind:    section.KindSocialNetwork,
	Table:   "social_networks",
	Columns: []string{"platform", "url", "username"},
	Values: func(s *section.SocialNetwork) []any {
		return []any{s.Platform, s.URL, s.Username}
	},
	Targets: func(s *section.SocialNetwork) []any {
		return []any{&s.Platform, &s.URL, &s.Username}
	},
	Breakdown: "platform",
}
