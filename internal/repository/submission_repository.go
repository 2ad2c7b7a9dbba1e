package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fieldops/field-report-service/internal/domain"
)

// SubmissionFilter scopes list queries.
type SubmissionFilter struct {
	// VisibleTo limits rows to those submitted by this user or already approved.
	// Nil returns every row.
	VisibleTo *string
}

// ReviewRecord is the review-relevant slice of a complaint or service report.
type ReviewRecord struct {
	ID          string
	SubmittedBy string
	Review      domain.Review
}

// ReviewableRepository is the status-bearing surface shared by complaints and
// service reports.
type ReviewableRepository interface {
	GetReview(ctx context.Context, id string) (*ReviewRecord, error)
	UpdateReview(ctx context.Context, id string, review domain.Review) error
	UpdateSolution(ctx context.Context, id, solution string) error
	SetViewed(ctx context.Context, id string, viewed bool) error
	CountByStatus(ctx context.Context, status domain.SubmissionStatus) (int, error)
}

// reviewableTable implements ReviewableRepository for a table with the common
// review columns.
type reviewableTable struct {
	pool  *pgxpool.Pool
	table string
}

func (t reviewableTable) GetReview(ctx context.Context, id string) (*ReviewRecord, error) {
	query := fmt.Sprintf(`
        SELECT id, submitted_by, status, approved_by, approved_at, viewed_by_submitter
        FROM %s WHERE id=$1`, t.table)

	var rec ReviewRecord
	if err := t.pool.QueryRow(ctx, query, id).Scan(
		&rec.ID,
		&rec.SubmittedBy,
		&rec.Review.Status,
		&rec.Review.ApprovedBy,
		&rec.Review.ApprovedAt,
		&rec.Review.ViewedBySubmitter,
	); err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpdateReview writes the review columns. A nil ViewedBySubmitter leaves the
// stored flag untouched.
func (t reviewableTable) UpdateReview(ctx context.Context, id string, review domain.Review) error {
	query := fmt.Sprintf(`
        UPDATE %s SET status=$1, approved_by=$2, approved_at=$3,
            viewed_by_submitter=COALESCE($4, viewed_by_submitter)
        WHERE id=$5`, t.table)
	return t.exec(ctx, query, review.Status, review.ApprovedBy, review.ApprovedAt, review.ViewedBySubmitter, id)
}

func (t reviewableTable) UpdateSolution(ctx context.Context, id, solution string) error {
	query := fmt.Sprintf(`UPDATE %s SET solution=$1 WHERE id=$2`, t.table)
	return t.exec(ctx, query, solution, id)
}

func (t reviewableTable) SetViewed(ctx context.Context, id string, viewed bool) error {
	query := fmt.Sprintf(`UPDATE %s SET viewed_by_submitter=$1 WHERE id=$2`, t.table)
	return t.exec(ctx, query, viewed, id)
}

func (t reviewableTable) CountByStatus(ctx context.Context, status domain.SubmissionStatus) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE status=$1`, t.table)
	var count int
	if err := t.pool.QueryRow(ctx, query, status).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (t reviewableTable) exec(ctx context.Context, query string, args ...any) error {
	cmd, err := t.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// visibilityClause renders the non-admin visibility predicate.
func visibilityClause(filter SubmissionFilter, args []any) (string, []any) {
	if filter.VisibleTo == nil {
		return "1=1", args
	}
	args = append(args, *filter.VisibleTo, domain.StatusApproved)
	return fmt.Sprintf("(submitted_by=$%d OR status=$%d)", len(args)-1, len(args)), args
}
