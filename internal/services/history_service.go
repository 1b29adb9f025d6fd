// Файл: internal/services/history_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"dispatch-system/internal/authz"
	"dispatch-system/internal/dto"
	"dispatch-system/internal/entities"
	"dispatch-system/internal/repositories"
	"dispatch-system/pkg/constants"
	apperrors "dispatch-system/pkg/errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// HistoryRow - параметры одного события журнала; срезы задачи сервис
// снимает сам.
type HistoryRow struct {
	UserID      uint64
	EventType   string
	FieldName   *string
	OldValue    *string
	NewValue    *string
	RelatedID   *uint64
	RelatedType *string
	Comment     *string
}

type HistoryServiceInterface interface {
	RecordInTx(ctx context.Context, tx pgx.Tx, task *entities.Task, row HistoryRow) error
	GetTimeline(ctx context.Context, actor authz.Actor, taskID uint64) ([]dto.TimelineEventDTO, error)
}

type historyService struct {
	historyRepo repositories.TaskHistoryRepositoryInterface
	taskRepo    repositories.TaskRepositoryInterface
	userRepo    repositories.UserRepositoryInterface
	location    *time.Location
	logger      *zap.Logger
}

func NewHistoryService(
	historyRepo repositories.TaskHistoryRepositoryInterface,
	taskRepo repositories.TaskRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	location *time.Location,
	logger *zap.Logger,
) HistoryServiceInterface {
	return &historyService{
		historyRepo: historyRepo,
		taskRepo:    taskRepo,
		userRepo:    userRepo,
		location:    location,
		logger:      logger,
	}
}

func snapshotOf(task *entities.Task) entities.TaskSnapshot {
	return entities.TaskSnapshot{
		Status:          task.Status,
		IsDraft:         task.IsDraft,
		AssignedUserID:  task.AssignedUserID,
		ContactPersonID: task.ContactPersonID,
		CompanyID:       task.CompanyID,
		ScheduledAt:     task.ScheduledAt,
		Address:         task.Address,
		VehicleInfo:     task.VehicleInfo,
		Comment:         task.Comment,
		ClientPrice:     task.ClientPrice,
		InstallerReward: task.InstallerReward,
		PhotoRequired:   task.PhotoRequired,
		AssignmentType:  task.AssignmentType,
		Version:         task.Version,
	}
}

// RecordInTx снимает пост-мутационный срез задачи и пишет строку журнала
// в той же транзакции. task обязан отражать состояние ПОСЛЕ мутации.
func (s *historyService) RecordInTx(ctx context.Context, tx pgx.Tx, task *entities.Task, row HistoryRow) error {
	works, err := s.taskRepo.GetWorks(ctx, tx, task.ID)
	if err != nil {
		return fmt.Errorf("не удалось прочитать работы для снапшота: %w", err)
	}
	equipment, err := s.taskRepo.GetEquipment(ctx, tx, task.ID)
	if err != nil {
		return fmt.Errorf("не удалось прочитать оборудование для снапшота: %w", err)
	}

	workSnaps := make([]entities.WorkTypeSnap, 0, len(works))
	for _, w := range works {
		workSnaps = append(workSnaps, entities.WorkTypeSnap{Name: w.Name, Quantity: w.Quantity})
	}
	equipSnaps := make([]entities.EquipmentSnap, 0, len(equipment))
	for _, e := range equipment {
		equipSnaps = append(equipSnaps, entities.EquipmentSnap{Name: e.Name, Quantity: e.Quantity, Serial: e.SerialNumber})
	}

	h := &entities.TaskHistory{
		TaskID:            task.ID,
		UserID:            row.UserID,
		Action:            task.Status,
		EventType:         row.EventType,
		FieldName:         row.FieldName,
		OldValue:          row.OldValue,
		NewValue:          row.NewValue,
		RelatedID:         row.RelatedID,
		RelatedType:       row.RelatedType,
		Comment:           row.Comment,
		Snapshot:          snapshotOf(task),
		WorkTypesSnapshot: workSnaps,
		EquipmentSnapshot: equipSnaps,
	}
	_, err = s.historyRepo.CreateInTx(ctx, tx, h)
	return err
}

func (s *historyService) GetTimeline(ctx context.Context, actor authz.Actor, taskID uint64) ([]dto.TimelineEventDTO, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !authz.CanReadTask(actor, task) {
		return nil, apperrors.Forbidden("нет доступа к истории этой задачи")
	}

	rows, err := s.historyRepo.FindByTaskID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	// Кеш авторов событий, чтобы не ходить в БД за одним пользователем дважды.
	users := make(map[uint64]*entities.User)
	timeline := make([]dto.TimelineEventDTO, 0, len(rows))
	for _, h := range rows {
		actorUser, ok := users[h.UserID]
		if !ok {
			actorUser, err = s.userRepo.FindByID(ctx, h.UserID)
			if err != nil {
				s.logger.Warn("автор события истории не найден",
					zap.Uint64("user_id", h.UserID), zap.Error(err))
				actorUser = &entities.User{ID: h.UserID, Fio: "неизвестный пользователь"}
			}
			users[h.UserID] = actorUser
		}

		timeline = append(timeline, dto.TimelineEventDTO{
			ID:        h.ID,
			EventType: h.EventType,
			Action:    h.Action,
			Actor:     dto.ShortUserDTO{ID: actorUser.ID, Fio: actorUser.Fio, Role: actorUser.Role},
			Lines:     s.describe(h, actorUser),
			FieldName: h.FieldName,
			OldValue:  h.OldValue,
			NewValue:  h.NewValue,
			Snapshot:  h.Snapshot,
			WorkTypes: h.WorkTypesSnapshot,
			Equipment: h.EquipmentSnapshot,
			CreatedAt: h.CreatedAt.In(s.location).Format("02.01.2006 15:04"),
		})
	}
	return timeline, nil
}

// describe собирает человекочитаемые строки события для таймлайна.
func (s *historyService) describe(h entities.TaskHistory, actor *entities.User) []string {
	switch h.EventType {
	case constants.EventCreated:
		return []string{fmt.Sprintf("%s создал(а) задачу", actor.Fio)}
	case constants.EventPublished:
		return []string{fmt.Sprintf("%s опубликовал(а) задачу", actor.Fio)}
	case constants.EventStatusChanged:
		return []string{fmt.Sprintf("%s: статус %s → %s",
			actor.Fio, deref(h.OldValue), deref(h.NewValue))}
	case constants.EventAssigned:
		return []string{fmt.Sprintf("%s назначен(а) исполнителем", actor.Fio)}
	case constants.EventUnassigned:
		return []string{fmt.Sprintf("%s снял(а) исполнителя", actor.Fio)}
	case constants.EventFieldChanged:
		return []string{fmt.Sprintf("%s изменил(а) поле %s: %s → %s",
			actor.Fio, deref(h.FieldName), deref(h.OldValue), deref(h.NewValue))}
	case constants.EventUpdated:
		lines := []string{fmt.Sprintf("%s обновил(а) задачу", actor.Fio)}
		if h.Comment != nil {
			lines = append(lines, *h.Comment)
		}
		return lines
	case constants.EventReportSubmitted:
		return []string{fmt.Sprintf("%s отправил(а) отчёт на проверку", actor.Fio)}
	case constants.EventReportStatusChanged:
		return []string{fmt.Sprintf("%s: согласование %s → %s",
			actor.Fio, deref(h.OldValue), deref(h.NewValue))}
	case constants.EventAttachmentAdded:
		return []string{fmt.Sprintf("%s добавил(а) вложение", actor.Fio)}
	case constants.EventAttachmentRemoved:
		return []string{fmt.Sprintf("%s удалил(а) вложение", actor.Fio)}
	default:
		return []string{fmt.Sprintf("%s: %s", actor.Fio, h.EventType)}
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
