package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fieldops/field-report-service/internal/domain"
)

// ComplaintRepository encapsulates complaint persistence.
type ComplaintRepository interface {
	ReviewableRepository
	Create(ctx context.Context, complaint *domain.Complaint) error
	GetByID(ctx context.Context, id string) (*domain.Complaint, error)
	List(ctx context.Context, filter SubmissionFilter) ([]domain.Complaint, error)
}

type complaintRepository struct {
	reviewableTable
}

// NewComplaintRepository instantiates repository.
func NewComplaintRepository(pool *pgxpool.Pool) ComplaintRepository {
	return &complaintRepository{reviewableTable{pool: pool, table: "complaints"}}
}

const complaintColumns = `id, machine_id, problem_type, details,
               flag_mechanical, flag_electrical, flag_hydraulic, flag_software, flag_safety,
               other, solution, image_ref, submitted_by,
               status, approved_by, approved_at, viewed_by_submitter, created_at`

func (r *complaintRepository) Create(ctx context.Context, c *domain.Complaint) error {
	const query = `
        INSERT INTO complaints (machine_id, problem_type, details,
            flag_mechanical, flag_electrical, flag_hydraulic, flag_software, flag_safety,
            other, solution, image_ref, submitted_by, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		c.MachineID,
		c.ProblemType,
		c.Details,
		c.Flags.Mechanical,
		c.Flags.Electrical,
		c.Flags.Hydraulic,
		c.Flags.Software,
		c.Flags.Safety,
		c.Other,
		c.Solution,
		c.ImageRef,
		c.SubmittedBy,
		c.Status,
	).Scan(&c.ID, &c.CreatedAt)
}

func (r *complaintRepository) GetByID(ctx context.Context, id string) (*domain.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id=$1`
	return scanComplaint(r.pool.QueryRow(ctx, query, id))
}

func (r *complaintRepository) List(ctx context.Context, filter SubmissionFilter) ([]domain.Complaint, error) {
	where, args := visibilityClause(filter, nil)
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE ` + where + ` ORDER BY seq ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Complaint
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}

func scanComplaint(row pgx.Row) (*domain.Complaint, error) {
	var c domain.Complaint
	if err := row.Scan(
		&c.ID,
		&c.MachineID,
		&c.ProblemType,
		&c.Details,
		&c.Flags.Mechanical,
		&c.Flags.Electrical,
		&c.Flags.Hydraulic,
		&c.Flags.Software,
		&c.Flags.Safety,
		&c.Other,
		&c.Solution,
		&c.ImageRef,
		&c.SubmittedBy,
		&c.Status,
		&c.ApprovedBy,
		&c.ApprovedAt,
		&c.ViewedBySubmitter,
		&c.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}
