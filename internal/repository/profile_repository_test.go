package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"

	"cv-builder/internal/domain/profile"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestPostgresProfileRepository_SetDefault(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresProfileRepository(db)
	id, userID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM profiles WHERE id = $1 AND user_id = $2 FOR UPDATE`)).
		WithArgs(id, userID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(id.String()))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE profiles SET is_default = FALSE WHERE user_id = $1 AND id <> $2 AND is_default`)).
		WithArgs(userID, id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE profiles SET is_default = TRUE`)).
		WithArgs(id).
		WillReturnRows(profileRows(id, userID, "CV", true))
	mock.ExpectCommit()

	p, err := repo.SetDefault(context.Background(), id, userID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !p.IsDefault || p.ID != id {
		t.Fatalf("unexpected profile: %+v", p)
	}
}

func TestPostgresProfileRepository_SetDefault_ForeignProfile(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresProfileRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := repo.SetDefault(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, profile.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgresProfileRepository_Delete_PromotesNewDefault(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresProfileRepository(db)
	id, userID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT is_default FROM profiles WHERE id = $1 AND user_id = $2 FOR UPDATE`)).
		WithArgs(id, userID).
		WillReturnRows(sqlmock.NewRows([]string{"is_default"}).AddRow(true))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM profiles WHERE id = $1`)).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE profiles SET is_default = TRUE`)).
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.Delete(context.Background(), id, userID); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestPostgresProfileRepository_Delete_NonDefault(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresProfileRepository(db)
	id, userID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT is_default FROM profiles`)).
		WillReturnRows(sqlmock.NewRows([]string{"is_default"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM profiles WHERE id = $1`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.Delete(context.Background(), id, userID); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestPostgresProfileRepository_Duplicate_CopiesSections(t *testing.T) {
	db, mock := newMockDB(t)
	experiences := NewPostgresSectionRepository(db, ExperienceSchema)
	skills := NewPostgresSectionRepository(db, SkillSchema)
	repo := NewPostgresProfileRepository(db, experiences, skills)
	id, userID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO profiles (`)).
		WithArgs(id, userID, sqlmock.AnyArg(), "CV (Copy)").
		WillReturnRows(profileRows(uuid.New(), userID, "CV (Copy)", false))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO experiences`) + `(?s).*` + regexp.QuoteMeta(`SELECT gen_random_uuid(), $2`)).
		WithArgs(id, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO skills`)).
		WithArgs(id, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	p, err := repo.Duplicate(context.Background(), id, userID, "CV (Copy)")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if p.ID == id || p.IsDefault || p.IsPublic || p.Name != "CV (Copy)" {
		t.Fatalf("unexpected copy: %+v", p)
	}
}

func TestPostgresProfileRepository_Duplicate_RollsBackOnCopyError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresProfileRepository(db, NewPostgresSectionRepository(db, LanguageSchema))
	id, userID := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO profiles (`)).
		WillReturnRows(profileRows(uuid.New(), userID, "copy", false))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO languages`)).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	if _, err := repo.Duplicate(context.Background(), id, userID, "copy"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestPostgresProfileRepository_Stats(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresProfileRepository(db)
	userID, def := uuid.New(), uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`COUNT(*) FILTER (WHERE is_public)`)).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"total", "public", "downloads", "avg", "default_id"}).
			AddRow(3, 1, 7, 42.5, def.String()))

	st, err := repo.Stats(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if st.Total != 3 || st.Public != 1 || st.TotalDownloads != 7 || st.AverageCompletion != 42.5 {
		t.Fatalf("unexpected stats: %+v", st)
	}
	if st.DefaultProfileID == nil || *st.DefaultProfileID != def {
		t.Fatalf("unexpected default id: %v", st.DefaultProfileID)
	}
}

// createArgs matches the 19 column values of an insert followed by the
// may-be-default flag.
func createArgs(mayBeDefault bool) []driver.Value {
	args := make([]driver.Value, 0, 20)
	for i := 0; i < 19; i++ {
		args = append(args, sqlmock.AnyArg())
	}
	return append(args, mayBeDefault)
}

func TestPostgresProfileRepository_Create_LosingFirstDefaultRace(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresProfileRepository(db)
	userID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO profiles (`)).
		WithArgs(createArgs(true)...).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "profiles_one_default_per_user"})
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO profiles (`)).
		WithArgs(createArgs(false)...).
		WillReturnRows(profileRows(uuid.New(), userID, "Second", false))

	p, err := repo.Create(context.Background(), profile.Profile{UserID: userID, Name: "Second", TemplateID: "modern", ColorSchemeID: "ocean-blue"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if p.IsDefault {
		t.Fatalf("retried profile must not be default: %+v", p)
	}
}

func TestPostgresProfileRepository_Create_OtherUniqueViolationIsReturned(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresProfileRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO profiles (`)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "profiles_pkey"})

	_, err := repo.Create(context.Background(), profile.Profile{UserID: uuid.New(), Name: "CV"})
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.ConstraintName != "profiles_pkey" {
		t.Fatalf("expected the pkey violation, got %v", err)
	}
}
