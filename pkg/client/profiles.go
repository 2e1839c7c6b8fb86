package client

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"cv-builder/internal/domain/profile"
	"cv-builder/internal/domain/section"
	"cv-builder/internal/pdf"
)

type CreateProfileRequest struct {
	Name          string            `json:"name"`
	TemplateID    string            `json:"template_id,omitempty"`
	ColorSchemeID string            `json:"color_scheme_id,omitempty"`
	Language      string            `json:"language,omitempty"`
	IsPublic      bool              `json:"is_public"`
	Personal      *profile.Personal `json:"personal,omitempty"`
}

type UpdateProfileRequest struct {
	Name          string `json:"name"`
	TemplateID    string `json:"template_id,omitempty"`
	ColorSchemeID string `json:"color_scheme_id,omitempty"`
	Language      string `json:"language,omitempty"`
	IsPublic      bool   `json:"is_public"`
}

// FullProfile is a profile with every section and its completion breakdown.
type FullProfile struct {
	profile.Profile
	Sections   section.Set        `json:"sections"`
	Completion profile.Completion `json:"completion"`
	IsOwner    bool               `json:"is_owner"`
}

type Export struct {
	ID          uuid.UUID `json:"id"`
	ProfileID   uuid.UUID `json:"profile_id"`
	Status      string    `json:"status"`
	Filename    string    `json:"filename"`
	Size        int       `json:"size"`
	Error       string    `json:"error"`
	DownloadURL string    `json:"download_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func profilePath(id uuid.UUID) string {
	return "/api/profiles/" + id.String()
}

func (c *Client) ListProfiles(ctx context.Context) ([]profile.Profile, error) {
	var items []profile.Profile
	if err := c.do(ctx, http.MethodGet, "/api/profiles", nil, &items, true); err != nil {
		return nil, err
	}
	c.store.SetProfiles(items)
	return items, nil
}

func (c *Client) ProfileStats(ctx context.Context) (profile.Stats, error) {
	var s profile.Stats
	err := c.do(ctx, http.MethodGet, "/api/profiles/stats", nil, &s, true)
	return s, err
}

func (c *Client) CreateProfile(ctx context.Context, req CreateProfileRequest) (profile.Profile, error) {
	return c.profileCall(ctx, http.MethodPost, "/api/profiles", req)
}

// GetProfile fetches a profile and makes it the store's current one.
func (c *Client) GetProfile(ctx context.Context, id uuid.UUID) (profile.Profile, error) {
	var p profile.Profile
	if err := c.do(ctx, http.MethodGet, profilePath(id), nil, &p, true); err != nil {
		return profile.Profile{}, err
	}
	c.store.SetCurrent(p)
	return p, nil
}

func (c *Client) UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (profile.Profile, error) {
	return c.profileCall(ctx, http.MethodPut, profilePath(id), req)
}

func (c *Client) DeleteProfile(ctx context.Context, id uuid.UUID) error {
	if err := c.do(ctx, http.MethodDelete, profilePath(id), nil, nil, true); err != nil {
		return err
	}
	c.store.RemoveProfile(id)
	return nil
}

func (c *Client) CompleteProfile(ctx context.Context, id uuid.UUID) (FullProfile, error) {
	var full FullProfile
	err := c.do(ctx, http.MethodGet, profilePath(id)+"/complete", nil, &full, true)
	return full, err
}

func (c *Client) PublicProfile(ctx context.Context, id uuid.UUID) (FullProfile, error) {
	var full FullProfile
	authed := c != nil && c.store.AccessToken() != ""
	err := c.do(ctx, http.MethodGet, "/api/public/profiles/"+id.String(), nil, &full, authed)
	return full, err
}

func (c *Client) Completion(ctx context.Context, id uuid.UUID) (profile.Completion, error) {
	var comp profile.Completion
	err := c.do(ctx, http.MethodGet, profilePath(id)+"/completion", nil, &comp, true)
	return comp, err
}

// DuplicateProfile copies a profile; an empty name lets the server pick one.
func (c *Client) DuplicateProfile(ctx context.Context, id uuid.UUID, name string) (profile.Profile, error) {
	return c.profileCall(ctx, http.MethodPost, profilePath(id)+"/duplicate", map[string]string{"name": name})
}

func (c *Client) UpdatePersonal(ctx context.Context, id uuid.UUID, personal profile.Personal) (profile.Profile, error) {
	return c.profileCall(ctx, http.MethodPut, profilePath(id)+"/personal", personal)
}

func (c *Client) SetDefaultProfile(ctx context.Context, id uuid.UUID) (profile.Profile, error) {
	return c.profileCall(ctx, http.MethodPatch, profilePath(id)+"/set-default", nil)
}

func (c *Client) SetTemplate(ctx context.Context, id uuid.UUID, templateID, colorSchemeID string) (profile.Profile, error) {
	body := map[string]string{"template_id": templateID}
	if colorSchemeID != "" {
		body["color_scheme_id"] = colorSchemeID
	}
	return c.profileCall(ctx, http.MethodPatch, profilePath(id)+"/template", body)
}

func (c *Client) SetColorScheme(ctx context.Context, id uuid.UUID, colorSchemeID string) (profile.Profile, error) {
	return c.profileCall(ctx, http.MethodPatch, profilePath(id)+"/color-scheme", map[string]string{"color_scheme_id": colorSchemeID})
}

func (c *Client) profileCall(ctx context.Context, method, path string, body any) (profile.Profile, error) {
	var p profile.Profile
	if err := c.do(ctx, method, path, body, &p, true); err != nil {
		return profile.Profile{}, err
	}
	c.store.UpsertProfile(p)
	return p, nil
}

// ExportPDF downloads the rendered PDF. It counts as a download.
func (c *Client) ExportPDF(ctx context.Context, id uuid.UUID) ([]byte, error) {
	return c.raw(ctx, profilePath(id)+"/pdf/export-pdf")
}

func (c *Client) PreviewPDF(ctx context.Context, id uuid.UUID) ([]byte, error) {
	return c.raw(ctx, profilePath(id)+"/pdf/preview-pdf")
}

func (c *Client) ValidatePDF(ctx context.Context, id uuid.UUID) (pdf.Report, error) {
	var r pdf.Report
	err := c.do(ctx, http.MethodGet, profilePath(id)+"/pdf/validate", nil, &r, true)
	return r, err
}

func (c *Client) EnqueueExport(ctx context.Context, id uuid.UUID) (Export, error) {
	var e Export
	err := c.do(ctx, http.MethodPost, profilePath(id)+"/pdf/exports", nil, &e, true)
	return e, err
}

func (c *Client) ExportStatus(ctx context.Context, profileID, exportID uuid.UUID) (Export, error) {
	var e Export
	err := c.do(ctx, http.MethodGet, profilePath(profileID)+"/pdf/exports/"+exportID.String(), nil, &e, true)
	return e, err
}

func (c *Client) DownloadExport(ctx context.Context, profileID, exportID uuid.UUID) ([]byte, error) {
	return c.raw(ctx, profilePath(profileID)+"/pdf/exports/"+exportID.String()+"/download")
}
