package repositories

import (
	"context"
	"errors"

	"dispatch-system/internal/entities"
	apperrors "dispatch-system/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EquipmentRepositoryInterface interface {
	Create(ctx context.Context, eq *entities.Equipment) (uint64, error)
	FindByID(ctx context.Context, id uint64) (*entities.Equipment, error)
	FindByIDs(ctx context.Context, ids []uint64) ([]entities.Equipment, error)
	Update(ctx context.Context, eq *entities.Equipment) error
	List(ctx context.Context) ([]entities.Equipment, error)
	Delete(ctx context.Context, id uint64) error
}

type equipmentRepository struct {
	storage *pgxpool.Pool
}

func NewEquipmentRepository(storage *pgxpool.Pool) EquipmentRepositoryInterface {
	return &equipmentRepository{storage: storage}
}

func (r *equipmentRepository) Create(ctx context.Context, eq *entities.Equipment) (uint64, error) {
	var id uint64
	err := r.storage.QueryRow(ctx, `
		INSERT INTO equipment (name, category, unit_price)
		VALUES ($1, $2, $3)
		RETURNING id`,
		eq.Name, eq.Category, eq.UnitPrice,
	).Scan(&id)
	return id, err
}

func (r *equipmentRepository) FindByID(ctx context.Context, id uint64) (*entities.Equipment, error) {
	var eq entities.Equipment
	err := r.storage.QueryRow(ctx,
		`SELECT id, name, category, unit_price, created_at FROM equipment WHERE id = $1`, id,
	).Scan(&eq.ID, &eq.Name, &eq.Category, &eq.UnitPrice, &eq.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &eq, nil
}

func (r *equipmentRepository) FindByIDs(ctx context.Context, ids []uint64) ([]entities.Equipment, error) {
	rows, err := r.storage.Query(ctx,
		`SELECT id, name, category, unit_price, created_at FROM equipment WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEquipment(rows)
}

func (r *equipmentRepository) Update(ctx context.Context, eq *entities.Equipment) error {
	tag, err := r.storage.Exec(ctx,
		`UPDATE equipment SET name = $2, category = $3, unit_price = $4 WHERE id = $1`,
		eq.ID, eq.Name, eq.Category, eq.UnitPrice)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *equipmentRepository) List(ctx context.Context) ([]entities.Equipment, error) {
	rows, err := r.storage.Query(ctx,
		`SELECT id, name, category, unit_price, created_at FROM equipment ORDER BY category, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEquipment(rows)
}

func (r *equipmentRepository) Delete(ctx context.Context, id uint64) error {
	tag, err := r.storage.Exec(ctx, `DELETE FROM equipment WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func scanEquipment(rows pgx.Rows) ([]entities.Equipment, error) {
	var result []entities.Equipment
	for rows.Next() {
		var eq entities.Equipment
		if err := rows.Scan(&eq.ID, &eq.Name, &eq.Category, &eq.UnitPrice, &eq.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, eq)
	}
	return result, rows.Err()
}
