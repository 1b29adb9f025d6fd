package repositories

import (
	"context"
	"errors"

	"dispatch-system/internal/entities"
	apperrors "dispatch-system/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReportRepositoryInterface interface {
	CreateInTx(ctx context.Context, tx pgx.Tx, rep *entities.TaskReport) (uint64, error)
	FindByID(ctx context.Context, id uint64) (*entities.TaskReport, error)
	FindLatestByTaskID(ctx context.Context, taskID uint64) (*entities.TaskReport, error)
	FindLatestByTaskIDInTx(ctx context.Context, tx pgx.Tx, taskID uint64) (*entities.TaskReport, error)
	UpdateApprovalsInTx(ctx context.Context, tx pgx.Tx, id uint64, logistApproval, techApproval string, comment *string) error
	FindByTaskID(ctx context.Context, taskID uint64) ([]entities.TaskReport, error)
}

type reportRepository struct {
	storage *pgxpool.Pool
}

func NewReportRepository(storage *pgxpool.Pool) ReportRepositoryInterface {
	return &reportRepository{storage: storage}
}

const reportColumns = `id, task_id, installer_id, text, storage_keys,
	logist_approval, tech_approval, review_comment, reviewed_at, created_at, updated_at`

func scanReport(row pgx.Row) (*entities.TaskReport, error) {
	var rep entities.TaskReport
	err := row.Scan(&rep.ID, &rep.TaskID, &rep.InstallerID, &rep.Text, &rep.StorageKeys,
		&rep.LogistApproval, &rep.TechApproval, &rep.ReviewComment, &rep.ReviewedAt,
		&rep.CreatedAt, &rep.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &rep, nil
}

func (r *reportRepository) CreateInTx(ctx context.Context, tx pgx.Tx, rep *entities.TaskReport) (uint64, error) {
	query := `
		INSERT INTO task_reports (task_id, installer_id, text, storage_keys, logist_approval, tech_approval)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	err := tx.QueryRow(ctx, query,
		rep.TaskID, rep.InstallerID, rep.Text, rep.StorageKeys,
		rep.LogistApproval, rep.TechApproval,
	).Scan(&rep.ID, &rep.CreatedAt)
	return rep.ID, err
}

func (r *reportRepository) FindByID(ctx context.Context, id uint64) (*entities.TaskReport, error) {
	return scanReport(r.storage.QueryRow(ctx,
		`SELECT `+reportColumns+` FROM task_reports WHERE id = $1`, id))
}

func (r *reportRepository) FindLatestByTaskID(ctx context.Context, taskID uint64) (*entities.TaskReport, error) {
	return scanReport(r.storage.QueryRow(ctx,
		`SELECT `+reportColumns+` FROM task_reports WHERE task_id = $1 ORDER BY created_at DESC LIMIT 1`,
		taskID))
}

func (r *reportRepository) FindLatestByTaskIDInTx(ctx context.Context, tx pgx.Tx, taskID uint64) (*entities.TaskReport, error) {
	return scanReport(tx.QueryRow(ctx,
		`SELECT `+reportColumns+` FROM task_reports WHERE task_id = $1 ORDER BY created_at DESC LIMIT 1 FOR UPDATE`,
		taskID))
}

func (r *reportRepository) UpdateApprovalsInTx(ctx context.Context, tx pgx.Tx, id uint64, logistApproval, techApproval string, comment *string) error {
	tag, err := tx.Exec(ctx, `
		UPDATE task_reports
		SET logist_approval = $2,
		    tech_approval = $3,
		    review_comment = COALESCE($4, review_comment),
		    reviewed_at = now(),
		    updated_at = now()
		WHERE id = $1`,
		id, logistApproval, techApproval, comment)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *reportRepository) FindByTaskID(ctx context.Context, taskID uint64) ([]entities.TaskReport, error) {
	rows, err := r.storage.Query(ctx,
		`SELECT `+reportColumns+` FROM task_reports WHERE task_id = $1 ORDER BY created_at`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []entities.TaskReport
	for rows.Next() {
		var rep entities.TaskReport
		if err := rows.Scan(&rep.ID, &rep.TaskID, &rep.InstallerID, &rep.Text, &rep.StorageKeys,
			&rep.LogistApproval, &rep.TechApproval, &rep.ReviewComment, &rep.ReviewedAt,
			&rep.CreatedAt, &rep.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, rep)
	}
	return result, rows.Err()
}
