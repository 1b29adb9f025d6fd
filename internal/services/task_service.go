// Файл: internal/services/task_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"dispatch-system/internal/authz"
	"dispatch-system/internal/dto"
	"dispatch-system/internal/entities"
	"dispatch-system/internal/repositories"
	"dispatch-system/pkg/constants"
	"dispatch-system/pkg/eventbus"
	apperrors "dispatch-system/pkg/errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type TaskServiceInterface interface {
	GetTask(ctx context.Context, actor authz.Actor, taskID uint64) (*dto.TaskDTO, error)
	List(ctx context.Context, actor authz.Actor, filter dto.TaskListFilterDTO) ([]dto.TaskDTO, uint64, error)
	Transition(ctx context.Context, actor authz.Actor, taskID uint64, transition string) (*dto.TaskDTO, error)
	UpdateTask(ctx context.Context, actor authz.Actor, taskID uint64, payload dto.UpdateTaskDTO) (*dto.TaskDTO, error)
}

type taskService struct {
	taskRepo        repositories.TaskRepositoryInterface
	workTypeRepo    repositories.WorkTypeRepositoryInterface
	companyRepo     repositories.CompanyRepositoryInterface
	userRepo        repositories.UserRepositoryInterface
	broadcastRepo   repositories.BroadcastRepositoryInterface
	historySvc      HistoryServiceInterface
	notificationSvc NotificationServiceInterface
	txManager       repositories.TxManagerInterface
	bus             *eventbus.Bus
	logger          *zap.Logger
}

func NewTaskService(
	taskRepo repositories.TaskRepositoryInterface,
	workTypeRepo repositories.WorkTypeRepositoryInterface,
	companyRepo repositories.CompanyRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	broadcastRepo repositories.BroadcastRepositoryInterface,
	historySvc HistoryServiceInterface,
	notificationSvc NotificationServiceInterface,
	txManager repositories.TxManagerInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
) TaskServiceInterface {
	return &taskService{
		taskRepo:        taskRepo,
		workTypeRepo:    workTypeRepo,
		companyRepo:     companyRepo,
		userRepo:        userRepo,
		broadcastRepo:   broadcastRepo,
		historySvc:      historySvc,
		notificationSvc: notificationSvc,
		txManager:       txManager,
		bus:             bus,
		logger:          logger,
	}
}

func (s *taskService) GetTask(ctx context.Context, actor authz.Actor, taskID uint64) (*dto.TaskDTO, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !authz.CanReadTask(actor, task) {
		return nil, apperrors.NotFound("запись не найдена")
	}
	return buildTaskDTO(ctx, s.taskRepo, task)
}

func (s *taskService) List(ctx context.Context, actor authz.Actor, filter dto.TaskListFilterDTO) ([]dto.TaskDTO, uint64, error) {
	scope := repositories.ListScope{}
	switch actor.Role {
	case constants.RoleAdmin:
		scope.IncludeDrafts = true
	case constants.RoleLogist:
		scope.DraftsForCreatorID = &actor.ID
	case constants.RoleTechSupp:
		// Видит все опубликованные, черновики - нет.
	case constants.RoleMontajnik:
		scope.InstallerID = &actor.ID
	default:
		return nil, 0, apperrors.Forbidden("неизвестная роль")
	}

	tasks, total, err := s.taskRepo.List(ctx, scope, filter)
	if err != nil {
		return nil, 0, err
	}

	result := make([]dto.TaskDTO, 0, len(tasks))
	for i := range tasks {
		item, err := buildTaskDTO(ctx, s.taskRepo, &tasks[i])
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *item)
	}
	return result, total, nil
}

// Transition выполняет переход исполнителя по графу статусов.
// Отправка отчёта идёт через движок согласования, не сюда.
func (s *taskService) Transition(ctx context.Context, actor authz.Actor, taskID uint64, transition string) (*dto.TaskDTO, error) {
	if transition == constants.TransitionSubmit || transition == constants.TransitionResubmit {
		return nil, apperrors.PreconditionFailed("отчёт отправляется отдельной операцией")
	}

	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.IsDraft {
		return nil, apperrors.PreconditionFailed("черновик не участвует в жизненном цикле")
	}
	if !authz.CanTransition(actor, task, transition) {
		return nil, apperrors.Forbidden("переход недоступен для этой роли")
	}
	nextStatus, ok := constants.NextStatus(task.Status, transition)
	if !ok {
		return nil, apperrors.PreconditionFailed(
			fmt.Sprintf("переход %s недопустим из статуса %s", transition, task.Status))
	}

	if transition == constants.TransitionAccept && task.AssignmentType == constants.AssignmentBroadcast {
		return s.acceptBroadcast(ctx, actor, task)
	}

	oldStatus := task.Status
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		// Предикат по старому статусу защищает от параллельного перехода:
		// второй из двух конкурирующих запросов получает conflict.
		if err := s.taskRepo.UpdateStatusInTx(ctx, tx, task.ID, oldStatus, nextStatus); err != nil {
			return err
		}
		fresh, err := s.taskRepo.FindForUpdateInTx(ctx, tx, task.ID)
		if err != nil {
			return err
		}
		*task = *fresh
		if transition == constants.TransitionAccept && task.AssignedUserID != nil {
			// Принятие индивидуальной задачи фиксирует назначение в журнале.
			assigneeStr := strconv.FormatUint(*task.AssignedUserID, 10)
			if err := s.historySvc.RecordInTx(ctx, tx, task, HistoryRow{
				UserID:    actor.ID,
				EventType: constants.EventAssigned,
				NewValue:  &assigneeStr,
			}); err != nil {
				return err
			}
		}
		if err := s.historySvc.RecordInTx(ctx, tx, task, HistoryRow{
			UserID:    actor.ID,
			EventType: constants.EventStatusChanged,
			OldValue:  &oldStatus,
			NewValue:  &nextStatus,
		}); err != nil {
			return err
		}
		if actor.ID != task.CreatorID {
			_, err = s.notificationSvc.QueueInTx(ctx, tx, task.CreatorID, &task.ID,
				fmt.Sprintf("Задача №%d: статус изменён на «%s»", task.ID, nextStatus))
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishHistoryRecorded(ctx, task, actor.ID, constants.EventStatusChanged)
	return buildTaskDTO(ctx, s.taskRepo, task)
}

// acceptBroadcast атомарно разрешает гонку за открытую broadcast-задачу.
// Проигравший фиксируется откликом is_first=false и получает conflict.
func (s *taskService) acceptBroadcast(ctx context.Context, actor authz.Actor, task *entities.Task) (*dto.TaskDTO, error) {
	oldStatus := task.Status
	newStatus := constants.StatusAccepted
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.taskRepo.AcceptBroadcastInTx(ctx, tx, task.ID, actor.ID); err != nil {
			return err
		}
		if err := s.broadcastRepo.RecordResponseInTx(ctx, tx, task.ID, actor.ID, true); err != nil {
			return err
		}
		fresh, err := s.taskRepo.FindForUpdateInTx(ctx, tx, task.ID)
		if err != nil {
			return err
		}
		*task = *fresh
		actorIDStr := strconv.FormatUint(actor.ID, 10)
		if err := s.historySvc.RecordInTx(ctx, tx, task, HistoryRow{
			UserID:    actor.ID,
			EventType: constants.EventAssigned,
			NewValue:  &actorIDStr,
		}); err != nil {
			return err
		}
		if err := s.historySvc.RecordInTx(ctx, tx, task, HistoryRow{
			UserID:    actor.ID,
			EventType: constants.EventStatusChanged,
			OldValue:  &oldStatus,
			NewValue:  &newStatus,
		}); err != nil {
			return err
		}
		_, err = s.notificationSvc.QueueInTx(ctx, tx, task.CreatorID, &task.ID,
			fmt.Sprintf("Задача №%d принята монтажником", task.ID))
		return err
	})

	if err != nil {
		if errors.Is(err, apperrors.ErrAlreadyTaken) {
			// Гонка проиграна: отклик всё равно записываем, отдельной транзакцией.
			recErr := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
				return s.broadcastRepo.RecordResponseInTx(ctx, tx, task.ID, actor.ID, false)
			})
			if recErr != nil {
				s.logger.Warn("не удалось записать проигравший отклик",
					zap.Uint64("task_id", task.ID), zap.Uint64("user_id", actor.ID), zap.Error(recErr))
			}
		}
		return nil, err
	}

	s.publishHistoryRecorded(ctx, task, actor.ID, constants.EventStatusChanged)
	return buildTaskDTO(ctx, s.taskRepo, task)
}

// UpdateTask - частичное редактирование опубликованной задачи логистом
// или админом. Статус не меняется; все правки попадают в одну строку
// истории со списком дельт.
func (s *taskService) UpdateTask(ctx context.Context, actor authz.Actor, taskID uint64, payload dto.UpdateTaskDTO) (*dto.TaskDTO, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.IsDraft {
		return nil, apperrors.PreconditionFailed("черновик редактируется через операции черновиков")
	}
	if !authz.CanEditTask(actor, task) {
		if task.Status == constants.StatusCompleted {
			return nil, apperrors.PreconditionFailed("завершённая задача не редактируется")
		}
		return nil, apperrors.Forbidden("нет прав на редактирование этой задачи")
	}

	fields := map[string]interface{}{}
	var deltas []entities.FieldDelta
	addDelta := func(field, oldVal, newVal string) {
		deltas = append(deltas, entities.FieldDelta{Field: field, OldValue: oldVal, NewValue: newVal})
	}

	if payload.Address.Valid {
		if payload.Address.String != task.Address {
			addDelta("address", task.Address, payload.Address.String)
			fields["address"] = payload.Address.String
		}
	}
	if payload.VehicleInfo.Valid {
		if payload.VehicleInfo.String != task.VehicleInfo {
			addDelta("vehicle_info", task.VehicleInfo, payload.VehicleInfo.String)
			fields["vehicle_info"] = payload.VehicleInfo.String
		}
	}
	if payload.Comment.Valid {
		if payload.Comment.String != task.Comment {
			addDelta("comment", task.Comment, payload.Comment.String)
			fields["comment"] = payload.Comment.String
		}
	}
	if payload.PhotoRequired.Valid {
		if payload.PhotoRequired.Bool != task.PhotoRequired {
			addDelta("photo_required",
				strconv.FormatBool(task.PhotoRequired), strconv.FormatBool(payload.PhotoRequired.Bool))
			fields["photo_required"] = payload.PhotoRequired.Bool
		}
	}
	if payload.ScheduledAt.Valid {
		newVal := payload.ScheduledAt.Time
		if task.ScheduledAt == nil || !task.ScheduledAt.Equal(newVal) {
			addDelta("scheduled_at", fmtTimePtr(task.ScheduledAt), newVal.Format(time.RFC3339))
			fields["scheduled_at"] = newVal
		}
	}

	// Контакт и компания живут парой: установка контакта тянет его компанию,
	// сброс контакта чистит оба поля.
	if payload.ContactPersonID.Valid {
		if payload.ContactPersonID.Uint64 == 0 {
			if task.ContactPersonID != nil {
				addDelta("contact_person_id", fmtUintPtr(task.ContactPersonID), "")
				fields["contact_person_id"] = nil
				fields["company_id"] = nil
			}
		} else if task.ContactPersonID == nil || *task.ContactPersonID != payload.ContactPersonID.Uint64 {
			contact, err := s.companyRepo.FindContactByID(ctx, payload.ContactPersonID.Uint64)
			if err != nil {
				return nil, apperrors.ValidationFailed("контактное лицо не найдено", nil)
			}
			addDelta("contact_person_id", fmtUintPtr(task.ContactPersonID),
				strconv.FormatUint(contact.ID, 10))
			fields["contact_person_id"] = contact.ID
			fields["company_id"] = contact.CompanyID
		}
	}

	var assigneeChanged bool
	var newAssignee *uint64
	if payload.AssignedUserID.Valid {
		if payload.AssignedUserID.Uint64 == 0 {
			if task.AssignedUserID != nil {
				assigneeChanged = true
				addDelta("assigned_user_id", fmtUintPtr(task.AssignedUserID), "")
				fields["assigned_user_id"] = nil
			}
		} else if task.AssignedUserID == nil || *task.AssignedUserID != payload.AssignedUserID.Uint64 {
			assignee, err := s.userRepo.FindByID(ctx, payload.AssignedUserID.Uint64)
			if err != nil {
				return nil, apperrors.ValidationFailed("назначаемый пользователь не найден", nil)
			}
			if assignee.Role != constants.RoleMontajnik {
				return nil, apperrors.ValidationFailed("исполнителем может быть только монтажник", nil)
			}
			assigneeChanged = true
			id := assignee.ID
			newAssignee = &id
			addDelta("assigned_user_id", fmtUintPtr(task.AssignedUserID),
				strconv.FormatUint(id, 10))
			fields["assigned_user_id"] = id
		}
	}

	repriceNeeded := payload.WorkTypes != nil
	if repriceNeeded {
		items := make([]dto.TaskWorkItemDTO, len(payload.WorkTypes))
		copy(items, payload.WorkTypes)
		ids := make([]uint64, 0, len(items))
		seen := make(map[uint64]bool)
		for _, item := range items {
			if !seen[item.WorkTypeID] {
				seen[item.WorkTypeID] = true
				ids = append(ids, item.WorkTypeID)
			}
		}
		var clientPrice, installerReward float64
		if len(ids) > 0 {
			workTypes, err := s.workTypeRepo.FindByIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
			if len(workTypes) != len(ids) {
				return nil, apperrors.ValidationFailed("указан несуществующий вид работ", nil)
			}
			clientPrice, installerReward = calculatePrices(workTypes)
		}
		if clientPrice != task.ClientPrice || installerReward != task.InstallerReward {
			addDelta("client_price",
				strconv.FormatFloat(task.ClientPrice, 'f', 2, 64),
				strconv.FormatFloat(clientPrice, 'f', 2, 64))
		}
		fields["client_price"] = clientPrice
		fields["installer_reward"] = installerReward
	}

	if len(fields) == 0 && payload.WorkTypes == nil && payload.Equipment == nil {
		return buildTaskDTO(ctx, s.taskRepo, task)
	}

	deltasJSON, err := json.Marshal(deltas)
	if err != nil {
		return nil, err
	}
	deltasStr := string(deltasJSON)

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if len(fields) > 0 {
			if err := s.taskRepo.UpdateFieldsInTx(ctx, tx, task.ID, payload.Version, fields); err != nil {
				return err
			}
		}
		if payload.WorkTypes != nil {
			if err := s.taskRepo.ReplaceWorksInTx(ctx, tx, task.ID, payload.WorkTypes); err != nil {
				return err
			}
		}
		if payload.Equipment != nil {
			if err := s.taskRepo.ReplaceEquipmentInTx(ctx, tx, task.ID, payload.Equipment); err != nil {
				return err
			}
		}
		fresh, err := s.taskRepo.FindForUpdateInTx(ctx, tx, task.ID)
		if err != nil {
			return err
		}
		*task = *fresh

		if err := s.historySvc.RecordInTx(ctx, tx, task, HistoryRow{
			UserID:    actor.ID,
			EventType: constants.EventUpdated,
			Comment:   &deltasStr,
		}); err != nil {
			return err
		}
		if assigneeChanged {
			eventType := constants.EventUnassigned
			var newValue *string
			if newAssignee != nil {
				eventType = constants.EventAssigned
				v := strconv.FormatUint(*newAssignee, 10)
				newValue = &v
			}
			if err := s.historySvc.RecordInTx(ctx, tx, task, HistoryRow{
				UserID:    actor.ID,
				EventType: eventType,
				NewValue:  newValue,
			}); err != nil {
				return err
			}
			if newAssignee != nil {
				if _, err := s.notificationSvc.QueueInTx(ctx, tx, *newAssignee, &task.ID,
					fmt.Sprintf("Вам назначена задача №%d: %s", task.ID, task.Address)); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishHistoryRecorded(ctx, task, actor.ID, constants.EventUpdated)
	return buildTaskDTO(ctx, s.taskRepo, task)
}

func (s *taskService) publishHistoryRecorded(ctx context.Context, task *entities.Task, actorID uint64, eventType string) {
	publishHistoryRecorded(ctx, s.bus, task, actorID, eventType)
}

func fmtTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func fmtUintPtr(v *uint64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatUint(*v, 10)
}
