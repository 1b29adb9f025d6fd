package repositories

import (
	"context"
	"errors"

	"dispatch-system/internal/entities"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BroadcastRepositoryInterface interface {
	RecordResponseInTx(ctx context.Context, tx pgx.Tx, taskID, userID uint64, isFirst bool) error
	FindByTaskID(ctx context.Context, taskID uint64) ([]entities.BroadcastResponse, error)
}

type broadcastRepository struct {
	storage *pgxpool.Pool
}

func NewBroadcastRepository(storage *pgxpool.Pool) BroadcastRepositoryInterface {
	return &broadcastRepository{storage: storage}
}

// RecordResponseInTx фиксирует отклик. Частичный уникальный индекс
// (task_id) WHERE is_first страхует от второго победителя; повторный
// отклик того же монтажника игнорируется.
func (r *broadcastRepository) RecordResponseInTx(ctx context.Context, tx pgx.Tx, taskID, userID uint64, isFirst bool) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO broadcast_responses (task_id, user_id, is_first)
		VALUES ($1, $2, $3)
		ON CONFLICT (task_id, user_id) DO NOTHING`,
		taskID, userID, isFirst)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// Гонка за is_first уже разрешена UPDATE-ом задачи; сюда
			// попадать не должны, но на всякий случай не валим транзакцию.
			return nil
		}
		return err
	}
	return nil
}

func (r *broadcastRepository) FindByTaskID(ctx context.Context, taskID uint64) ([]entities.BroadcastResponse, error) {
	rows, err := r.storage.Query(ctx, `
		SELECT id, task_id, user_id, is_first, created_at
		FROM broadcast_responses
		WHERE task_id = $1
		ORDER BY created_at`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []entities.BroadcastResponse
	for rows.Next() {
		var br entities.BroadcastResponse
		if err := rows.Scan(&br.ID, &br.TaskID, &br.UserID, &br.IsFirst, &br.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, br)
	}
	return result, rows.Err()
}
