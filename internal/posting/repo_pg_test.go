package posting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"recruiting-console/internal/talenthub"
)

func TestPGRepoCreateInsertsPosting(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()
	posting := Posting{
		ID:          "job-1",
		OwnerID:     "user-1",
		ReferenceID: "ref-1",
		Fields:      talenthub.JobFields{Title: "Backend Engineer", Location: "Remote"},
		PublicToken: "tok-1",
		PublicLink:  "https://jobs/tok-1",
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	mock.ExpectExec("INSERT INTO job_postings").
		WithArgs(
			posting.ID,
			posting.OwnerID,
			posting.ReferenceID,
			posting.Fields.Title,
			posting.Fields.Location,
			nil, // summary
			nil, // responsibilities
			nil, // qualifications
			nil, // company_name
			nil, // additional_info
			posting.PublicToken,
			posting.PublicLink,
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), posting); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpdateFieldsWritesOnlyEdits(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectExec("UPDATE job_postings SET updated_at = (.+), title = (.+), location = (.+) WHERE id = (.+)").
		WithArgs(sqlmock.AnyArg(), "New Title", "Berlin", "job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.UpdateFields(context.Background(), "job-1", talenthub.JobFields{Title: "New Title", Location: "Berlin"})
	if err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpdateFieldsMissingPosting(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectExec("UPDATE job_postings").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.UpdateFields(context.Background(), "missing", talenthub.JobFields{Title: "x"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoGetByIDScansNullableColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "owner_id", "reference_id", "title", "location", "summary",
		"responsibilities", "qualifications", "company_name", "additional_info",
		"public_token", "public_link", "created_at", "updated_at",
	}).AddRow(
		"job-1", "user-1", nil, "Backend Engineer", nil, nil,
		nil, nil, nil, nil,
		"tok-1", nil, now, now,
	)
	mock.ExpectQuery("SELECT (.+) FROM job_postings").
		WithArgs("job-1", "user-1").
		WillReturnRows(rows)

	posting, err := repo.GetByID(context.Background(), "user-1", "job-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if posting.Fields.Title != "Backend Engineer" || posting.PublicToken != "tok-1" {
		t.Fatalf("unexpected posting: %+v", posting)
	}
	if posting.ReferenceID != "" {
		t.Fatalf("expected empty reference id, got %q", posting.ReferenceID)
	}
}
