package profile

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"cv-builder/internal/domain/date"
)

var (
	ErrNotFound = errors.New("profile not found")
)

// Languages a profile can be rendered in.
var Languages = []string{"en", "fr", "es", "de", "ar"}

const DefaultLanguage = "en"

type Personal struct {
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	JobTitle    string     `json:"job_title"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Address     string     `json:"address"`
	City        string     `json:"city"`
	Country     string     `json:"country"`
	Website     string     `json:"website"`
	Summary     string     `json:"summary"`
	PhotoURL    string     `json:"photo_url"`
	DateOfBirth *date.Date `json:"date_of_birth"`
}

func (p Personal) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// Profile is one CV document owned by a user.
type Profile struct {
	ID                   uuid.UUID `json:"id"`
	UserID               uuid.UUID `json:"user_id"`
	Name                 string    `json:"name"`
	TemplateID           string    `json:"template_id"`
	ColorSchemeID        string    `json:"color_scheme_id"`
	Language             string    `json:"language"`
	IsDefault            bool      `json:"is_default"`
	IsPublic             bool      `json:"is_public"`
	CompletionPercentage int       `json:"completion_percentage"`
	DownloadCount        int       `json:"download_count"`
	Personal             Personal  `json:"personal"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

type Stats struct {
	Total             int        `json:"total"`
	Public            int        `json:"public"`
	DefaultProfileID  *uuid.UUID `json:"default_profile_id"`
	TotalDownloads    int        `json:"total_downloads"`
	AverageCompletion float64    `json:"average_completion"`
}

// SectionCounts is the number of entries per section of one profile.
type SectionCounts struct {
	Experience     int `json:"experience"`
	Education      int `json:"education"`
	Skills         int `json:"skills"`
	Languages      int `json:"languages"`
	Certifications int `json:"certifications"`
	SocialNetworks int `json:"social_networks"`
}

type Repository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Profile, error)
	GetByID(ctx context.Context, id uuid.UUID) (Profile, error)
	GetByIDAndUser(ctx context.Context, id, userID uuid.UUID) (Profile, error)
	// Create inserts p and makes it the default when the user has no other
	// profile.
	Create(ctx context.Context, p Profile) (Profile, error)
	Update(ctx context.Context, p Profile) (Profile, error)
	UpdatePersonal(ctx context.Context, id, userID uuid.UUID, personal Personal) (Profile, error)
	UpdateAppearance(ctx context.Context, id, userID uuid.UUID, templateID, colorSchemeID string) (Profile, error)
	// Delete removes the profile and its sections. When it was the default,
	// the most recently updated remaining profile is promoted.
	Delete(ctx context.Context, id, userID uuid.UUID) error
	SetDefault(ctx context.Context, id, userID uuid.UUID) (Profile, error)
	// Duplicate deep-copies the profile and every section row. The copy is
	// neither default nor public and starts with no downloads.
	Duplicate(ctx context.Context, id, userID uuid.UUID, name string) (Profile, error)
	UpdateCompletion(ctx context.Context, id uuid.UUID, percentage int) error
	IncrementDownloads(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context, userID uuid.UUID) (Stats, error)
	SectionCounts(ctx context.Context, id uuid.UUID) (SectionCounts, error)
}
