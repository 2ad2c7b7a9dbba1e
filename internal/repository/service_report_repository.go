package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fieldops/field-report-service/internal/domain"
)

// ServiceReportRepository encapsulates service report persistence.
type ServiceReportRepository interface {
	ReviewableRepository
	Create(ctx context.Context, report *domain.ServiceReport) error
	GetByID(ctx context.Context, id string) (*domain.ServiceReport, error)
	List(ctx context.Context, filter SubmissionFilter) ([]domain.ServiceReport, error)
}

type serviceReportRepository struct {
	reviewableTable
}

// NewServiceReportRepository instantiates repository.
func NewServiceReportRepository(pool *pgxpool.Pool) ServiceReportRepository {
	return &serviceReportRepository{reviewableTable{pool: pool, table: "service_reports"}}
}

const serviceReportColumns = `id, machine_id, problem_type, work_performed,
               flag_mechanical, flag_electrical, flag_hydraulic, flag_software, flag_safety,
               other, solution, image_ref, submitted_by,
               status, approved_by, approved_at, viewed_by_submitter, created_at`

func (r *serviceReportRepository) Create(ctx context.Context, sr *domain.ServiceReport) error {
	const query = `
        INSERT INTO service_reports (machine_id, problem_type, work_performed,
            flag_mechanical, flag_electrical, flag_hydraulic, flag_software, flag_safety,
            other, solution, image_ref, submitted_by, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		sr.MachineID,
		sr.ProblemType,
		sr.WorkPerformed,
		sr.Flags.Mechanical,
		sr.Flags.Electrical,
		sr.Flags.Hydraulic,
		sr.Flags.Software,
		sr.Flags.Safety,
		sr.Other,
		sr.Solution,
		sr.ImageRef,
		sr.SubmittedBy,
		sr.Status,
	).Scan(&sr.ID, &sr.CreatedAt)
}

func (r *serviceReportRepository) GetByID(ctx context.Context, id string) (*domain.ServiceReport, error) {
	query := `SELECT ` + serviceReportColumns + ` FROM service_reports WHERE id=$1`
	return scanServiceReport(r.pool.QueryRow(ctx, query, id))
}

func (r *serviceReportRepository) List(ctx context.Context, filter SubmissionFilter) ([]domain.ServiceReport, error) {
	where, args := visibilityClause(filter, nil)
	query := `SELECT ` + serviceReportColumns + ` FROM service_reports WHERE ` + where + ` ORDER BY seq ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ServiceReport
	for rows.Next() {
		sr, err := scanServiceReport(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *sr)
	}
	return result, rows.Err()
}

func scanServiceReport(row pgx.Row) (*domain.ServiceReport, error) {
	var sr domain.ServiceReport
	if err := row.Scan(
		&sr.ID,
		&sr.MachineID,
		&sr.ProblemType,
		&sr.WorkPerformed,
		&sr.Flags.Mechanical,
		&sr.Flags.Electrical,
		&sr.Flags.Hydraulic,
		&sr.Flags.Software,
		&sr.Flags.Safety,
		&sr.Other,
		&sr.Solution,
		&sr.ImageRef,
		&sr.SubmittedBy,
		&sr.Status,
		&sr.ApprovedBy,
		&sr.ApprovedAt,
		&sr.ViewedBySubmitter,
		&sr.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &sr, nil
}
