package dto

import (
	"strings"

	"github.com/google/uuid"

	"cv-builder/internal/domain/date"
	"cv-builder/internal/domain/section"
)

type ReorderRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"unique"`
}

type ExperienceRequest struct {
	ProjectTitle   string  `json:"project_title" validate:"required,max=150"`
	Position       string  `json:"position" validate:"required,max=100"`
	Company        string  `json:"company" validate:"max=150"`
	EmploymentType string  `json:"employment_type" validate:"omitempty,oneof=full_time part_time contract freelance internship volunteer"`
	Location       string  `json:"location" validate:"max=150"`
	StartDate      string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate        *string `json:"end_date" validate:"omitempty,datetime=2006-01-02,date_after=start_date"`
	IsCurrent      bool    `json:"is_current"`
	Description    string  `json:"description" validate:"max=2000"`
	Achievements   string  `json:"achievements" validate:"max=2000"`
}

func (r *ExperienceRequest) ToEntity() (section.Experience, error) {
	start, end, err := period(r.StartDate, r.EndDate, r.IsCurrent)
	if err != nil {
		return section.Experience{}, err
	}
	return section.Experience{
		ProjectTitle:   strings.TrimSpace(r.ProjectTitle),
		Position:       strings.TrimSpace(r.Position),
		Company:        strings.TrimSpace(r.Company),
		EmploymentType: r.EmploymentType,
		Location:       strings.TrimSpace(r.Location),
		StartDate:      start,
		EndDate:        end,
		IsCurrent:      r.IsCurrent,
		Description:    r.Description,
		Achievements:   r.Achievements,
	}, nil
}

type EducationRequest struct {
	Institution  string  `json:"institution" validate:"required,max=150"`
	Degree       string  `json:"degree" validate:"required,max=100"`
	FieldOfStudy string  `json:"field_of_study" validate:"max=100"`
	DegreeLevel  string  `json:"degree_level" validate:"omitempty,oneof=high_school associate bachelor master doctorate certificate other"`
	Location     string  `json:"location" validate:"max=150"`
	StartDate    string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate      *string `json:"end_date" validate:"omitempty,datetime=2006-01-02,date_after=start_date"`
	IsCurrent    bool    `json:"is_current"`
	Grade        string  `json:"grade" validate:"max=20"`
	Description  string  `json:"description" validate:"max=2000"`
}

func (r *EducationRequest) ToEntity() (section.Education, error) {
	start, end, err := period(r.StartDate, r.EndDate, r.IsCurrent)
	if err != nil {
		return section.Education{}, err
	}
	return section.Education{
		Institution:  strings.TrimSpace(r.Institution),
		Degree:       strings.TrimSpace(r.Degree),
		FieldOfStudy: strings.TrimSpace(r.FieldOfStudy),
		DegreeLevel:  r.DegreeLevel,
		Location:     strings.TrimSpace(r.Location),
		StartDate:    start,
		EndDate:      end,
		IsCurrent:    r.IsCurrent,
		Grade:        strings.TrimSpace(r.Grade),
		Description:  r.Description,
	}, nil
}

type SkillRequest struct {
	Name              string `json:"name" validate:"required,max=100"`
	Category          string `json:"category" validate:"required,skill_category"`
	Level             string `json:"level" validate:"omitempty,oneof=beginner intermediate advanced expert"`
	YearsOfExperience int    `json:"years_of_experience" validate:"gte=0,lte=60"`
}

func (r *SkillRequest) ToEntity() (section.Skill, error) {
	return section.Skill{
		Name:              strings.TrimSpace(r.Name),
		Category:          r.Category,
		Level:             r.Level,
		YearsOfExperience: r.YearsOfExperience,
	}, nil
}

type LanguageRequest struct {
	Name        string `json:"name" validate:"required,max=60"`
	Level       string `json:"level" validate:"required,oneof=A1 A2 B1 B2 C1 C2 native"`
	Certificate string `json:"certificate" validate:"max=100"`
}

func (r *LanguageRequest) ToEntity() (section.Language, error) {
	return section.Language{
		Name:        strings.TrimSpace(r.Name),
		Level:       r.Level,
		Certificate: strings.TrimSpace(r.Certificate),
	}, nil
}

type CertificationRequest struct {
	Name          string  `json:"name" validate:"required,max=150"`
	Issuer        string  `json:"issuer" validate:"required,max=150"`
	IssueDate     string  `json:"issue_date" validate:"required,datetime=2006-01-02"`
	ExpiryDate    *string `json:"expiry_date" validate:"omitempty,datetime=2006-01-02,date_after=issue_date"`
	CredentialID  string  `json:"credential_id" validate:"max=100"`
	CredentialURL string  `json:"credential_url" validate:"omitempty,url,max=500"`
}

func (r *CertificationRequest) ToEntity() (section.Certification, error) {
	issued, err := date.Parse(r.IssueDate)
	if err != nil {
		return section.Certification{}, err
	}
	expiry, err := date.ParsePtr(r.ExpiryDate)
	if err != nil {
		return section.Certification{}, err
	}
	return section.Certification{
		Name:          strings.TrimSpace(r.Name),
		Issuer:        strings.TrimSpace(r.Issuer),
		IssueDate:     issued,
		ExpiryDate:    expiry,
		CredentialID:  strings.TrimSpace(r.CredentialID),
		CredentialURL: r.CredentialURL,
	}, nil
}

type SocialNetworkRequest struct {
	Platform string `json:"platform" validate:"required,oneof=linkedin github gitlab twitter facebook instagram youtube behance dribbble medium stackoverflow website other"`
	URL      string `json:"url" validate:"required,url,max=500"`
	Username string `json:"username" validate:"max=100"`
}

func (r *SocialNetworkRequest) ToEntity() (section.SocialNetwork, error) {
	return section.SocialNetwork{
		Platform: r.Platform,
		URL:      strings.TrimSpace(r.URL),
		Username: strings.TrimSpace(r.Username),
	}, nil
}

// period parses a start/end pair. Current entries never carry an end date.
func period(startRaw string, endRaw *string, current bool) (date.Date, *date.Date, error) {
	start, err := date.Parse(startRaw)
	if err != nil {
		return date.Date{}, nil, err
	}
	if current {
		return start, nil, nil
	}
	end, err := date.ParsePtr(endRaw)
	if err != nil {
		return date.Date{}, nil, err
	}
	return start, end, nil
}
