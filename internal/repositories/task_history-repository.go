// Файл: internal/repositories/task_history-repository.go
package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"dispatch-system/internal/entities"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TaskHistoryRepositoryInterface interface {
	CreateInTx(ctx context.Context, tx pgx.Tx, h *entities.TaskHistory) (uint64, error)
	FindByTaskID(ctx context.Context, taskID uint64) ([]entities.TaskHistory, error)
}

type taskHistoryRepository struct {
	storage *pgxpool.Pool
}

func NewTaskHistoryRepository(storage *pgxpool.Pool) TaskHistoryRepositoryInterface {
	return &taskHistoryRepository{storage: storage}
}

// CreateInTx пишет строку журнала в той же транзакции, что и мутация.
// Вне транзакции метод не существует намеренно.
func (r *taskHistoryRepository) CreateInTx(ctx context.Context, tx pgx.Tx, h *entities.TaskHistory) (uint64, error) {
	snapshot, err := json.Marshal(h.Snapshot)
	if err != nil {
		return 0, fmt.Errorf("не удалось сериализовать снапшот задачи: %w", err)
	}
	workTypes, err := json.Marshal(h.WorkTypesSnapshot)
	if err != nil {
		return 0, fmt.Errorf("не удалось сериализовать снапшот работ: %w", err)
	}
	equipment, err := json.Marshal(h.EquipmentSnapshot)
	if err != nil {
		return 0, fmt.Errorf("не удалось сериализовать снапшот оборудования: %w", err)
	}

	query := `
		INSERT INTO task_history (task_id, user_id, action, event_type,
			field_name, old_value, new_value, related_id, related_type, comment,
			snapshot, work_types_snapshot, equipment_snapshot)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at`
	err = tx.QueryRow(ctx, query,
		h.TaskID, h.UserID, h.Action, h.EventType,
		h.FieldName, h.OldValue, h.NewValue, h.RelatedID, h.RelatedType, h.Comment,
		snapshot, workTypes, equipment,
	).Scan(&h.ID, &h.CreatedAt)
	return h.ID, err
}

// FindByTaskID отдаёт журнал в хронологическом порядке; id - тай-брейк
// для событий с одинаковым временем.
func (r *taskHistoryRepository) FindByTaskID(ctx context.Context, taskID uint64) ([]entities.TaskHistory, error) {
	rows, err := r.storage.Query(ctx, `
		SELECT id, task_id, user_id, action, event_type,
		       field_name, old_value, new_value, related_id, related_type, comment,
		       snapshot, work_types_snapshot, equipment_snapshot, created_at
		FROM task_history
		WHERE task_id = $1
		ORDER BY created_at, id`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []entities.TaskHistory
	for rows.Next() {
		var h entities.TaskHistory
		var snapshot, workTypes, equipment []byte
		if err := rows.Scan(&h.ID, &h.TaskID, &h.UserID, &h.Action, &h.EventType,
			&h.FieldName, &h.OldValue, &h.NewValue, &h.RelatedID, &h.RelatedType, &h.Comment,
			&snapshot, &workTypes, &equipment, &h.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(snapshot, &h.Snapshot); err != nil {
			return nil, fmt.Errorf("битый снапшот в истории id=%d: %w", h.ID, err)
		}
		if len(workTypes) > 0 {
			if err := json.Unmarshal(workTypes, &h.WorkTypesSnapshot); err != nil {
				return nil, fmt.Errorf("битый снапшот работ в истории id=%d: %w", h.ID, err)
			}
		}
		if len(equipment) > 0 {
			if err := json.Unmarshal(equipment, &h.EquipmentSnapshot); err != nil {
				return nil, fmt.Errorf("битый снапшот оборудования в истории id=%d: %w", h.ID, err)
			}
		}
		result = append(result, h)
	}
	return result, rows.Err()
}
