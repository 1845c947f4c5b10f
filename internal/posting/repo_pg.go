package posting

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"

	"recruiting-console/internal/talenthub"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Create inserts a new posting.
func (r *PGRepo) Create(ctx context.Context, posting Posting) error {
	query, args, err := psql.Insert("job_postings").
		Columns(
			"id", "owner_id", "reference_id", "title", "location", "summary",
			"responsibilities", "qualifications", "company_name", "additional_info",
			"public_token", "public_link", "created_at", "updated_at",
		).
		Values(
			posting.ID,
			posting.OwnerID,
			nullable(posting.ReferenceID),
			posting.Fields.Title,
			nullable(posting.Fields.Location),
			nullable(posting.Fields.Summary),
			nullable(posting.Fields.Responsibilities),
			nullable(posting.Fields.Qualifications),
			nullable(posting.Fields.CompanyName),
			nullable(posting.Fields.AdditionalInfo),
			nullable(posting.PublicToken),
			nullable(posting.PublicLink),
			posting.CreatedAt,
			posting.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query, args...)
	return err
}

// UpdateFields writes only the non-empty field edits. The public token and
// link columns are never part of the update.
func (r *PGRepo) UpdateFields(ctx context.Context, id string, fields talenthub.JobFields) error {
	builder := psql.Update("job_postings").
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id})

	edits := []struct {
		column string
		value  string
	}{
		{"title", fields.Title},
		{"location", fields.Location},
		{"summary", fields.Summary},
		{"responsibilities", fields.Responsibilities},
		{"qualifications", fields.Qualifications},
		{"company_name", fields.CompanyName},
		{"additional_info", fields.AdditionalInfo},
	}
	for _, edit := range edits {
		if edit.value != "" {
			builder = builder.Set(edit.column, edit.value)
		}
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID returns the owner's posting by id.
func (r *PGRepo) GetByID(ctx context.Context, ownerID, id string) (Posting, error) {
	query, args, err := selectPostings().
		Where(sq.Eq{"id": id, "owner_id": ownerID}).
		Limit(1).
		ToSql()
	if err != nil {
		return Posting{}, err
	}
	row := r.DB.QueryRowContext(ctx, query, args...)
	posting, err := scanPosting(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Posting{}, ErrNotFound
		}
		return Posting{}, err
	}
	return posting, nil
}

// ListByOwner returns the owner's postings newest-first with limit/offset.
func (r *PGRepo) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Posting, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query, args, err := selectPostings().
		Where(sq.Eq{"owner_id": ownerID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	postings := []Posting{}
	for rows.Next() {
		posting, err := scanPosting(rows)
		if err != nil {
			return nil, err
		}
		postings = append(postings, posting)
	}
	return postings, rows.Err()
}

func selectPostings() sq.SelectBuilder {
	return psql.Select(
		"id", "owner_id", "reference_id", "title", "location", "summary",
		"responsibilities", "qualifications", "company_name", "additional_info",
		"public_token", "public_link", "created_at", "updated_at",
	).From("job_postings")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPosting(row rowScanner) (Posting, error) {
	var posting Posting
	var referenceID sql.NullString
	var location sql.NullString
	var summary sql.NullString
	var responsibilities sql.NullString
	var qualifications sql.NullString
	var companyName sql.NullString
	var additionalInfo sql.NullString
	var publicToken sql.NullString
	var publicLink sql.NullString
	if err := row.Scan(
		&posting.ID,
		&posting.OwnerID,
		&referenceID,
		&posting.Fields.Title,
		&location,
		&summary,
		&responsibilities,
		&qualifications,
		&companyName,
		&additionalInfo,
		&publicToken,
		&publicLink,
		&posting.CreatedAt,
		&posting.UpdatedAt,
	); err != nil {
		return Posting{}, err
	}
	posting.ReferenceID = referenceID.String
	posting.Fields.Location = location.String
	posting.Fields.Summary = summary.String
	posting.Fields.Responsibilities = responsibilities.String
	posting.Fields.Qualifications = qualifications.String
	posting.Fields.CompanyName = companyName.String
	posting.Fields.AdditionalInfo = additionalInfo.String
	posting.PublicToken = publicToken.String
	posting.PublicLink = publicLink.String
	return posting, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
