// Файл: internal/repositories/task-repository.go
package repositories

import (
	"context"
	"errors"
	"time"

	"dispatch-system/internal/dto"
	"dispatch-system/internal/entities"
	"dispatch-system/pkg/constants"
	apperrors "dispatch-system/pkg/errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// WorkRow и EquipmentRow - позиции задачи с именами из справочников.
// Нужны для снапшотов истории и для отдачи наружу.
type WorkRow struct {
	WorkTypeID uint64
	Name       string
	Quantity   int32
}

type EquipmentRow struct {
	EquipmentID  uint64
	Name         string
	Quantity     int32
	SerialNumber *string
}

type TaskRepositoryInterface interface {
	CreateInTx(ctx context.Context, tx pgx.Tx, task *entities.Task) (uint64, error)
	FindByID(ctx context.Context, id uint64) (*entities.Task, error)
	FindForUpdateInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Task, error)
	UpdateFieldsInTx(ctx context.Context, tx pgx.Tx, id uint64, expectedVersion uint64, fields map[string]interface{}) error
	UpdateStatusInTx(ctx context.Context, tx pgx.Tx, id uint64, fromStatus, toStatus string) error
	AcceptBroadcastInTx(ctx context.Context, tx pgx.Tx, taskID, userID uint64) error
	ReplaceWorksInTx(ctx context.Context, tx pgx.Tx, taskID uint64, items []dto.TaskWorkItemDTO) error
	ReplaceEquipmentInTx(ctx context.Context, tx pgx.Tx, taskID uint64, items []dto.TaskEquipmentItemDTO) error
	GetWorks(ctx context.Context, q Querier, taskID uint64) ([]WorkRow, error)
	GetEquipment(ctx context.Context, q Querier, taskID uint64) ([]EquipmentRow, error)
	List(ctx context.Context, scope ListScope, filter dto.TaskListFilterDTO) ([]entities.Task, uint64, error)
	DeleteInTx(ctx context.Context, tx pgx.Tx, id uint64) error
	Pool() *pgxpool.Pool
}

// ListScope ограничивает выборку по роли смотрящего.
type ListScope struct {
	// Монтажник видит свои задачи и открытые broadcast-задачи.
	InstallerID *uint64
	// Черновики видит только их автор.
	DraftsForCreatorID *uint64
	IncludeDrafts      bool
}

type taskRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewTaskRepository(storage *pgxpool.Pool, logger *zap.Logger) TaskRepositoryInterface {
	return &taskRepository{storage: storage, logger: logger}
}

func (r *taskRepository) Pool() *pgxpool.Pool { return r.storage }

const taskColumns = `id, creator_id, assigned_user_id, contact_person_id, company_id,
	scheduled_at, address, vehicle_info, comment, client_price, installer_reward,
	photo_required, assignment_type, is_draft, status, version,
	created_at, accepted_at, started_at, completed_at, updated_at`

func scanTask(row pgx.Row) (*entities.Task, error) {
	var t entities.Task
	err := row.Scan(&t.ID, &t.CreatorID, &t.AssignedUserID, &t.ContactPersonID, &t.CompanyID,
		&t.ScheduledAt, &t.Address, &t.VehicleInfo, &t.Comment, &t.ClientPrice, &t.InstallerReward,
		&t.PhotoRequired, &t.AssignmentType, &t.IsDraft, &t.Status, &t.Version,
		&t.CreatedAt, &t.AcceptedAt, &t.StartedAt, &t.CompletedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *taskRepository) CreateInTx(ctx context.Context, tx pgx.Tx, task *entities.Task) (uint64, error) {
	query := `
		INSERT INTO tasks (creator_id, assigned_user_id, contact_person_id, company_id,
			scheduled_at, address, vehicle_info, comment, client_price, installer_reward,
			photo_required, assignment_type, is_draft, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, version, created_at`
	err := tx.QueryRow(ctx, query,
		task.CreatorID, task.AssignedUserID, task.ContactPersonID, task.CompanyID,
		task.ScheduledAt, task.Address, task.VehicleInfo, task.Comment,
		task.ClientPrice, task.InstallerReward,
		task.PhotoRequired, task.AssignmentType, task.IsDraft, task.Status,
	).Scan(&task.ID, &task.Version, &task.CreatedAt)
	if err != nil {
		return 0, err
	}
	return task.ID, nil
}

func (r *taskRepository) FindByID(ctx context.Context, id uint64) (*entities.Task, error) {
	return scanTask(r.storage.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
}

// FindForUpdateInTx блокирует строку задачи до конца транзакции, чтобы
// переход статуса и запись истории прошли поверх согласованного среза.
func (r *taskRepository) FindForUpdateInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Task, error) {
	return scanTask(tx.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1 FOR UPDATE`, id))
}

// UpdateFieldsInTx обновляет произвольный набор колонок с проверкой версии.
// Несовпадение версии означает параллельное редактирование.
func (r *taskRepository) UpdateFieldsInTx(ctx context.Context, tx pgx.Tx, id uint64, expectedVersion uint64, fields map[string]interface{}) error {
	builder := sq.Update("tasks").
		PlaceholderFormat(sq.Dollar).
		Set("version", sq.Expr("version + 1")).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id, "version": expectedVersion})
	for col, val := range fields {
		builder = builder.Set(col, val)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Либо задачи нет, либо версия ушла вперёд.
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tasks WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return apperrors.ErrNotFound
		}
		return apperrors.ErrVersionMismatch
	}
	return nil
}

// UpdateStatusInTx переводит задачу из ожидаемого статуса в новый и
// проставляет соответствующую временную метку. Предикат по старому статусу
// отсекает параллельный переход: легальность проверялась по срезу, который
// к моменту UPDATE мог устареть.
func (r *taskRepository) UpdateStatusInTx(ctx context.Context, tx pgx.Tx, id uint64, fromStatus, toStatus string) error {
	builder := sq.Update("tasks").
		PlaceholderFormat(sq.Dollar).
		Set("status", toStatus).
		Set("version", sq.Expr("version + 1")).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id, "status": fromStatus})

	switch toStatus {
	case constants.StatusAccepted:
		builder = builder.Set("accepted_at", sq.Expr("now()"))
	case constants.StatusStarted:
		builder = builder.Set("started_at", sq.Expr("now()"))
	case constants.StatusCompleted:
		builder = builder.Set("completed_at", sq.Expr("now()"))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tasks WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return apperrors.ErrNotFound
		}
		// Статус успел измениться в параллельной транзакции.
		return apperrors.ErrVersionMismatch
	}
	return nil
}

// AcceptBroadcastInTx - атомарное разрешение гонки за broadcast-задачу.
// Выигрывает первый UPDATE, попавший в строку с assigned_user_id IS NULL;
// проигравший получает ErrAlreadyTaken.
func (r *taskRepository) AcceptBroadcastInTx(ctx context.Context, tx pgx.Tx, taskID, userID uint64) error {
	tag, err := tx.Exec(ctx, `
		UPDATE tasks
		SET assigned_user_id = $2,
		    status = $3,
		    accepted_at = now(),
		    version = version + 1,
		    updated_at = now()
		WHERE id = $1
		  AND assigned_user_id IS NULL
		  AND NOT is_draft
		  AND status = $4`,
		taskID, userID, constants.StatusAccepted, constants.StatusNew)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAlreadyTaken
	}
	return nil
}

func (r *taskRepository) ReplaceWorksInTx(ctx context.Context, tx pgx.Tx, taskID uint64, items []dto.TaskWorkItemDTO) error {
	if _, err := tx.Exec(ctx, `DELETE FROM task_works WHERE task_id = $1`, taskID); err != nil {
		return err
	}
	for _, item := range items {
		qty := item.Quantity
		if qty <= 0 {
			qty = 1
		}
		// Дубли вида работ схлопываются в одну строку с суммарным количеством.
		_, err := tx.Exec(ctx,
			`INSERT INTO task_works (task_id, work_type_id, quantity) VALUES ($1, $2, $3)
			 ON CONFLICT (task_id, work_type_id)
			 DO UPDATE SET quantity = task_works.quantity + EXCLUDED.quantity`,
			taskID, item.WorkTypeID, qty)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *taskRepository) ReplaceEquipmentInTx(ctx context.Context, tx pgx.Tx, taskID uint64, items []dto.TaskEquipmentItemDTO) error {
	if _, err := tx.Exec(ctx, `DELETE FROM task_equipment WHERE task_id = $1`, taskID); err != nil {
		return err
	}
	for _, item := range items {
		qty := item.Quantity
		if qty <= 0 {
			qty = 1
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO task_equipment (task_id, equipment_id, quantity, serial_number) VALUES ($1, $2, $3, $4)`,
			taskID, item.EquipmentID, qty, item.SerialNumber)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *taskRepository) GetWorks(ctx context.Context, q Querier, taskID uint64) ([]WorkRow, error) {
	rows, err := q.Query(ctx, `
		SELECT tw.work_type_id, wt.name, tw.quantity
		FROM task_works tw
		JOIN work_types wt ON wt.id = tw.work_type_id
		WHERE tw.task_id = $1
		ORDER BY wt.name`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []WorkRow
	for rows.Next() {
		var w WorkRow
		if err := rows.Scan(&w.WorkTypeID, &w.Name, &w.Quantity); err != nil {
			return nil, err
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

func (r *taskRepository) GetEquipment(ctx context.Context, q Querier, taskID uint64) ([]EquipmentRow, error) {
	rows, err := q.Query(ctx, `
		SELECT te.equipment_id, e.name, te.quantity, te.serial_number
		FROM task_equipment te
		JOIN equipment e ON e.id = te.equipment_id
		WHERE te.task_id = $1
		ORDER BY e.name`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []EquipmentRow
	for rows.Next() {
		var e EquipmentRow
		if err := rows.Scan(&e.EquipmentID, &e.Name, &e.Quantity, &e.SerialNumber); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (r *taskRepository) List(ctx context.Context, scope ListScope, filter dto.TaskListFilterDTO) ([]entities.Task, uint64, error) {
	base := sq.Select().From("tasks").PlaceholderFormat(sq.Dollar)

	if scope.InstallerID != nil {
		// Свои задачи плюс открытые broadcast, на которые ещё можно откликнуться.
		base = base.Where(sq.Or{
			sq.Eq{"assigned_user_id": *scope.InstallerID},
			sq.And{
				sq.Eq{"assignment_type": constants.AssignmentBroadcast},
				sq.Eq{"assigned_user_id": nil},
				sq.Eq{"is_draft": false},
				sq.Eq{"status": constants.StatusNew},
			},
		})
	}
	if !scope.IncludeDrafts {
		if scope.DraftsForCreatorID != nil {
			base = base.Where(sq.Or{
				sq.Eq{"is_draft": false},
				sq.Eq{"creator_id": *scope.DraftsForCreatorID},
			})
		} else {
			base = base.Where(sq.Eq{"is_draft": false})
		}
	}

	if filter.Status != "" {
		base = base.Where(sq.Eq{"status": filter.Status})
	}
	if filter.AssignmentType != "" {
		base = base.Where(sq.Eq{"assignment_type": filter.AssignmentType})
	}
	if filter.DateFrom != nil {
		base = base.Where(sq.GtOrEq{"created_at": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		base = base.Where(sq.Lt{"created_at": filter.DateTo.Add(24 * time.Hour)})
	}

	countQuery, countArgs, err := base.Columns("COUNT(*)").ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit == 0 || limit > 200 {
		limit = 50
	}
	listBuilder := base.Columns(taskColumns).
		OrderBy("created_at DESC").
		Limit(limit).
		Offset(filter.Offset)
	query, args, err := listBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var tasks []entities.Task
	for rows.Next() {
		var t entities.Task
		if err := rows.Scan(&t.ID, &t.CreatorID, &t.AssignedUserID, &t.ContactPersonID, &t.CompanyID,
			&t.ScheduledAt, &t.Address, &t.VehicleInfo, &t.Comment, &t.ClientPrice, &t.InstallerReward,
			&t.PhotoRequired, &t.AssignmentType, &t.IsDraft, &t.Status, &t.Version,
			&t.CreatedAt, &t.AcceptedAt, &t.StartedAt, &t.CompletedAt, &t.UpdatedAt); err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, t)
	}
	return tasks, total, rows.Err()
}

// DeleteInTx физически удаляет задачу. Допустимо только для черновиков:
// позиции, отклики и история уходят каскадом.
func (r *taskRepository) DeleteInTx(ctx context.Context, tx pgx.Tx, id uint64) error {
	tag, err := tx.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND is_draft`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
