package dto

import (
	"strings"

	"cv-builder/internal/domain/date"
	"cv-builder/internal/domain/profile"
	ucprofile "cv-builder/internal/usecase/profile"
)

type PersonalRequest struct {
	FirstName   string  `json:"first_name" validate:"max=50"`
	LastName    string  `json:"last_name" validate:"max=50"`
	JobTitle    string  `json:"job_title" validate:"max=100"`
	Email       string  `json:"email" validate:"omitempty,email,max=255"`
	Phone       string  `json:"phone" validate:"max=30"`
	Address     string  `json:"address" validate:"max=255"`
	City        string  `json:"city" validate:"max=100"`
	Country     string  `json:"country" validate:"max=100"`
	Website     string  `json:"website" validate:"omitempty,url,max=255"`
	Summary     string  `json:"summary" validate:"max=2000"`
	PhotoURL    string  `json:"photo_url" validate:"omitempty,url,max=500"`
	DateOfBirth *string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
}

func (r PersonalRequest) ToDomain() (profile.Personal, error) {
	dob, err := date.ParsePtr(r.DateOfBirth)
	if err != nil {
		return profile.Personal{}, err
	}
	return profile.Personal{
		FirstName:   strings.TrimSpace(r.FirstName),
		LastName:    strings.TrimSpace(r.LastName),
		JobTitle:    strings.TrimSpace(r.JobTitle),
		Email:       strings.TrimSpace(r.Email),
		Phone:       strings.TrimSpace(r.Phone),
		Address:     r.Address,
		City:        r.City,
		Country:     r.Country,
		Website:     r.Website,
		Summary:     strings.TrimSpace(r.Summary),
		PhotoURL:    r.PhotoURL,
		DateOfBirth: dob,
	}, nil
}

type CreateProfileRequest struct {
	Name          string           `json:"name" validate:"required,min=1,max=100"`
	TemplateID    string           `json:"template_id" validate:"omitempty,template_id"`
	ColorSchemeID string           `json:"color_scheme_id" validate:"omitempty,color_scheme_id"`
	Language      string           `json:"language" validate:"omitempty,oneof=en fr es de ar"`
	IsPublic      bool             `json:"is_public"`
	Personal      *PersonalRequest `json:"personal"`
}

func (r CreateProfileRequest) ToInput() (ucprofile.CreateInput, error) {
	in := ucprofile.CreateInput{
		Name:          r.Name,
		TemplateID:    r.TemplateID,
		ColorSchemeID: r.ColorSchemeID,
		Language:      r.Language,
		IsPublic:      r.IsPublic,
	}
	if r.Personal != nil {
		p, err := r.Personal.ToDomain()
		if err != nil {
			return ucprofile.CreateInput{}, err
		}
		in.Personal = &p
	}
	return in, nil
}

type UpdateProfileRequest struct {
	Name          string `json:"name" validate:"required,min=1,max=100"`
	TemplateID    string `json:"template_id" validate:"omitempty,template_id"`
	ColorSchemeID string `json:"color_scheme_id" validate:"omitempty,color_scheme_id"`
	Language      string `json:"language" validate:"omitempty,oneof=en fr es de ar"`
	IsPublic      bool   `json:"is_public"`
}

func (r UpdateProfileRequest) ToInput() ucprofile.UpdateInput {
	return ucprofile.UpdateInput{
		Name:          r.Name,
		TemplateID:    r.TemplateID,
		ColorSchemeID: r.ColorSchemeID,
		Language:      r.Language,
		IsPublic:      r.IsPublic,
	}
}

type DuplicateProfileRequest struct {
	Name string `json:"name" validate:"omitempty,max=100"`
}

type TemplateRequest struct {
	TemplateID    string `json:"template_id" validate:"required,template_id"`
	ColorSchemeID string `json:"color_scheme_id" validate:"omitempty,color_scheme_id"`
}

type ColorSchemeRequest struct {
	ColorSchemeID string `json:"color_scheme_id" validate:"required,color_scheme_id"`
}

// PublicProfileResponse is what a non-owner sees of a public profile.
type PublicProfileResponse struct {
	ucprofile.Complete
	IsOwner bool `json:"is_owner"`
}
