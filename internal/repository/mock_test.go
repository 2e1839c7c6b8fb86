package repository

import (
	"testing"
	"time"

	"cv-builder/internal/database/sqldb"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

func newMockDB(t *testing.T) (*sqldb.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New err: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		_ = db.Close()
	})
	return sqldb.New(db), mock
}

var profileRowColumns = []string{
	"id", "user_id", "name", "template_id", "color_scheme_id", "language", "is_default", "is_public",
	"completion_percentage", "download_count",
	"first_name", "last_name", "job_title", "email", "phone", "address", "city", "country", "website", "summary", "photo_url", "date_of_birth",
	"created_at", "updated_at",
}

func profileRows(id, userID uuid.UUID, name string, isDefault bool) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(profileRowColumns).AddRow(
		id.String(), userID.String(), name, "modern", "ocean-blue", "en", isDefault, false,
		0, 0,
		"Ada", "Lovelace", "", "", "", "", "", "", "", "", "", nil,
		now, now,
	)
}
