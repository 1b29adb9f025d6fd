package repositories

import (
	"context"
	"errors"

	"dispatch-system/internal/entities"
	apperrors "dispatch-system/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type WorkTypeRepositoryInterface interface {
	Create(ctx context.Context, wt *entities.WorkType) (uint64, error)
	FindByID(ctx context.Context, id uint64) (*entities.WorkType, error)
	FindByIDs(ctx context.Context, ids []uint64) ([]entities.WorkType, error)
	Update(ctx context.Context, wt *entities.WorkType) error
	List(ctx context.Context, onlyActive bool) ([]entities.WorkType, error)
	Delete(ctx context.Context, id uint64) error
}

type workTypeRepository struct {
	storage *pgxpool.Pool
}

func NewWorkTypeRepository(storage *pgxpool.Pool) WorkTypeRepositoryInterface {
	return &workTypeRepository{storage: storage}
}

const workTypeColumns = `id, name, client_price, installer_price, requires_tech_review, is_active, created_at`

func (r *workTypeRepository) Create(ctx context.Context, wt *entities.WorkType) (uint64, error) {
	query := `
		INSERT INTO work_types (name, client_price, installer_price, requires_tech_review, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	var id uint64
	err := r.storage.QueryRow(ctx, query,
		wt.Name, wt.ClientPrice, wt.InstallerPrice, wt.RequiresTechReview, wt.IsActive,
	).Scan(&id)
	return id, err
}

func (r *workTypeRepository) FindByID(ctx context.Context, id uint64) (*entities.WorkType, error) {
	var wt entities.WorkType
	err := r.storage.QueryRow(ctx,
		`SELECT `+workTypeColumns+` FROM work_types WHERE id = $1`, id,
	).Scan(&wt.ID, &wt.Name, &wt.ClientPrice, &wt.InstallerPrice,
		&wt.RequiresTechReview, &wt.IsActive, &wt.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &wt, nil
}

func (r *workTypeRepository) FindByIDs(ctx context.Context, ids []uint64) ([]entities.WorkType, error) {
	rows, err := r.storage.Query(ctx,
		`SELECT `+workTypeColumns+` FROM work_types WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWorkTypes(rows)
}

func (r *workTypeRepository) Update(ctx context.Context, wt *entities.WorkType) error {
	tag, err := r.storage.Exec(ctx, `
		UPDATE work_types
		SET name = $2, client_price = $3, installer_price = $4,
		    requires_tech_review = $5, is_active = $6
		WHERE id = $1`,
		wt.ID, wt.Name, wt.ClientPrice, wt.InstallerPrice, wt.RequiresTechReview, wt.IsActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *workTypeRepository) List(ctx context.Context, onlyActive bool) ([]entities.WorkType, error) {
	rows, err := r.storage.Query(ctx,
		`SELECT `+workTypeColumns+` FROM work_types WHERE NOT $1 OR is_active ORDER BY name`, onlyActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWorkTypes(rows)
}

func (r *workTypeRepository) Delete(ctx context.Context, id uint64) error {
	tag, err := r.storage.Exec(ctx, `DELETE FROM work_types WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func scanWorkTypes(rows pgx.Rows) ([]entities.WorkType, error) {
	var result []entities.WorkType
	for rows.Next() {
		var wt entities.WorkType
		if err := rows.Scan(&wt.ID, &wt.Name, &wt.ClientPrice, &wt.InstallerPrice,
			&wt.RequiresTechReview, &wt.IsActive, &wt.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, wt)
	}
	return result, rows.Err()
}
