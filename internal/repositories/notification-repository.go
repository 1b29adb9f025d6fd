package repositories

import (
	"context"

	"dispatch-system/internal/entities"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepositoryInterface interface {
	CreateInTx(ctx context.Context, tx pgx.Tx, n *entities.Notification) (uint64, error)
	FindPending(ctx context.Context, limit int) ([]entities.Notification, error)
	MarkSent(ctx context.Context, id uint64) error
}

type notificationRepository struct {
	storage *pgxpool.Pool
}

func NewNotificationRepository(storage *pgxpool.Pool) NotificationRepositoryInterface {
	return &notificationRepository{storage: storage}
}

func (r *notificationRepository) CreateInTx(ctx context.Context, tx pgx.Tx, n *entities.Notification) (uint64, error) {
	var id uint64
	err := tx.QueryRow(ctx, `
		INSERT INTO notifications (user_id, task_id, text)
		VALUES ($1, $2, $3)
		RETURNING id`,
		n.UserID, n.TaskID, n.Text,
	).Scan(&id)
	return id, err
}

func (r *notificationRepository) FindPending(ctx context.Context, limit int) ([]entities.Notification, error) {
	rows, err := r.storage.Query(ctx, `
		SELECT id, user_id, task_id, text, is_sent, created_at, sent_at
		FROM notifications
		WHERE NOT is_sent
		ORDER BY created_at
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []entities.Notification
	for rows.Next() {
		var n entities.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.TaskID, &n.Text, &n.IsSent, &n.CreatedAt, &n.SentAt); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

func (r *notificationRepository) MarkSent(ctx context.Context, id uint64) error {
	_, err := r.storage.Exec(ctx,
		`UPDATE notifications SET is_sent = true, sent_at = now() WHERE id = $1`, id)
	return err
}
