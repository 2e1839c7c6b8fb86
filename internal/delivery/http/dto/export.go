package dto

import (
	"time"

	"github.com/google/uuid"

	"cv-builder/internal/usecase/export"
)

type ExportResponse struct {
	ID          uuid.UUID     `json:"id"`
	ProfileID   uuid.UUID     `json:"profile_id"`
	Status      export.Status `json:"status"`
	Filename    string        `json:"filename,omitempty"`
	Size        int           `json:"size,omitempty"`
	Error       string        `json:"error,omitempty"`
	DownloadURL string        `json:"download_url,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func NewExportResponse(j export.Job, downloadURL string) ExportResponse {
	r := ExportResponse{
		ID:        j.ID,
		ProfileID: j.ProfileID,
		Status:    j.Status,
		Filename:  j.Filename,
		Size:      j.Size,
		Error:     j.Error,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
	if j.Status == export.StatusCompleted {
		r.DownloadURL = downloadURL
	}
	return r
}
