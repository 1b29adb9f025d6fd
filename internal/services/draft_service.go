// Файл: internal/services/draft_service.go
package services

import (
	"context"
	"fmt"

	"dispatch-system/internal/authz"
	"dispatch-system/internal/dto"
	"dispatch-system/internal/entities"
	"dispatch-system/internal/events"
	"dispatch-system/internal/repositories"
	"dispatch-system/pkg/constants"
	"dispatch-system/pkg/eventbus"
	apperrors "dispatch-system/pkg/errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type DraftServiceInterface interface {
	CreateDraft(ctx context.Context, actor authz.Actor, payload dto.SaveDraftDTO) (*dto.TaskDTO, error)
	UpdateDraft(ctx context.Context, actor authz.Actor, taskID uint64, payload dto.SaveDraftDTO) (*dto.TaskDTO, error)
	StageAttachments(ctx context.Context, actor authz.Actor, taskID uint64, payload dto.StageAttachmentsDTO) error
	Publish(ctx context.Context, actor authz.Actor, taskID uint64) (*dto.TaskDTO, error)
	Discard(ctx context.Context, actor authz.Actor, taskID uint64) error
}

type draftService struct {
	taskRepo        repositories.TaskRepositoryInterface
	workTypeRepo    repositories.WorkTypeRepositoryInterface
	equipmentRepo   repositories.EquipmentRepositoryInterface
	companyRepo     repositories.CompanyRepositoryInterface
	userRepo        repositories.UserRepositoryInterface
	attachmentRepo  repositories.AttachmentRepositoryInterface
	historySvc      HistoryServiceInterface
	notificationSvc NotificationServiceInterface
	txManager       repositories.TxManagerInterface
	bus             *eventbus.Bus
	logger          *zap.Logger
}

func NewDraftService(
	taskRepo repositories.TaskRepositoryInterface,
	workTypeRepo repositories.WorkTypeRepositoryInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	companyRepo repositories.CompanyRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	attachmentRepo repositories.AttachmentRepositoryInterface,
	historySvc HistoryServiceInterface,
	notificationSvc NotificationServiceInterface,
	txManager repositories.TxManagerInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
) DraftServiceInterface {
	return &draftService{
		taskRepo:        taskRepo,
		workTypeRepo:    workTypeRepo,
		equipmentRepo:   equipmentRepo,
		companyRepo:     companyRepo,
		userRepo:        userRepo,
		attachmentRepo:  attachmentRepo,
		historySvc:      historySvc,
		notificationSvc: notificationSvc,
		txManager:       txManager,
		bus:             bus,
		logger:          logger,
	}
}

// calculatePrices выводит цены из НАБОРА выбранных видов работ.
// Дубли схлопываются, количества на цену не влияют.
func calculatePrices(workTypes []entities.WorkType) (clientPrice, installerReward float64) {
	seen := make(map[uint64]bool, len(workTypes))
	for _, wt := range workTypes {
		if seen[wt.ID] {
			continue
		}
		seen[wt.ID] = true
		clientPrice += wt.ClientPrice
		installerReward += wt.EffectiveInstallerPrice()
	}
	return clientPrice, installerReward
}

// resolvePricing загружает выбранные виды работ и считает производные суммы.
func (s *draftService) resolvePricing(ctx context.Context, items []dto.TaskWorkItemDTO) (float64, float64, error) {
	if len(items) == 0 {
		return 0, 0, nil
	}
	ids := make([]uint64, 0, len(items))
	seen := make(map[uint64]bool, len(items))
	for _, item := range items {
		if !seen[item.WorkTypeID] {
			seen[item.WorkTypeID] = true
			ids = append(ids, item.WorkTypeID)
		}
	}
	workTypes, err := s.workTypeRepo.FindByIDs(ctx, ids)
	if err != nil {
		return 0, 0, err
	}
	if len(workTypes) != len(ids) {
		return 0, 0, apperrors.ValidationFailed("указан несуществующий вид работ", nil)
	}
	client, reward := calculatePrices(workTypes)
	return client, reward, nil
}

// resolveContact принудительно связывает компанию с контактным лицом:
// либо оба поля установлены и согласованы, либо оба пусты.
func (s *draftService) resolveContact(ctx context.Context, contactID *uint64) (*uint64, *uint64, error) {
	if contactID == nil {
		return nil, nil, nil
	}
	contact, err := s.companyRepo.FindContactByID(ctx, *contactID)
	if err != nil {
		if httpErr := apperrors.AsHttpError(err); httpErr.Kind == apperrors.KindNotFound {
			return nil, nil, apperrors.ValidationFailed("контактное лицо не найдено", nil)
		}
		return nil, nil, err
	}
	return contactID, &contact.CompanyID, nil
}

// checkAssignee: для individual-назначения исполнитель обязан быть монтажником.
func (s *draftService) checkAssignee(ctx context.Context, assignmentType string, assignedUserID *uint64) error {
	if assignedUserID == nil {
		return nil
	}
	if assignmentType == constants.AssignmentBroadcast {
		return apperrors.ValidationFailed("broadcast-задаче нельзя назначить исполнителя заранее", nil)
	}
	assignee, err := s.userRepo.FindByID(ctx, *assignedUserID)
	if err != nil {
		if httpErr := apperrors.AsHttpError(err); httpErr.Kind == apperrors.KindNotFound {
			return apperrors.ValidationFailed("назначаемый пользователь не найден", nil)
		}
		return err
	}
	if assignee.Role != constants.RoleMontajnik {
		return apperrors.ValidationFailed("исполнителем может быть только монтажник", nil)
	}
	return nil
}

func (s *draftService) CreateDraft(ctx context.Context, actor authz.Actor, payload dto.SaveDraftDTO) (*dto.TaskDTO, error) {
	if !authz.CanCreateDraft(actor) {
		return nil, apperrors.Forbidden("черновики создают логисты и администраторы")
	}
	if err := s.checkAssignee(ctx, payload.AssignmentType, payload.AssignedUserID); err != nil {
		return nil, err
	}
	contactID, companyID, err := s.resolveContact(ctx, payload.ContactPersonID)
	if err != nil {
		return nil, err
	}
	clientPrice, installerReward, err := s.resolvePricing(ctx, payload.WorkTypes)
	if err != nil {
		return nil, err
	}

	task := &entities.Task{
		CreatorID:       actor.ID,
		AssignedUserID:  payload.AssignedUserID,
		ContactPersonID: contactID,
		CompanyID:       companyID,
		ScheduledAt:     payload.ScheduledAt,
		Address:         payload.Address,
		VehicleInfo:     payload.VehicleInfo,
		Comment:         payload.Comment,
		ClientPrice:     clientPrice,
		InstallerReward: installerReward,
		PhotoRequired:   payload.PhotoRequired,
		AssignmentType:  payload.AssignmentType,
		IsDraft:         true,
		Status:          constants.StatusNew,
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := s.taskRepo.CreateInTx(ctx, tx, task); err != nil {
			return err
		}
		if err := s.taskRepo.ReplaceWorksInTx(ctx, tx, task.ID, payload.WorkTypes); err != nil {
			return err
		}
		if err := s.taskRepo.ReplaceEquipmentInTx(ctx, tx, task.ID, payload.Equipment); err != nil {
			return err
		}
		return s.historySvc.RecordInTx(ctx, tx, task, HistoryRow{
			UserID:    actor.ID,
			EventType: constants.EventCreated,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("черновик создан",
		zap.Uint64("task_id", task.ID), zap.Uint64("creator_id", actor.ID))
	return s.buildTaskDTO(ctx, task)
}

func (s *draftService) loadDraft(ctx context.Context, actor authz.Actor, taskID uint64) (*entities.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !task.IsDraft {
		return nil, apperrors.PreconditionFailed("задача уже опубликована и черновиком не является")
	}
	if !authz.CanManageDraft(actor, task) {
		// Чужой черновик неотличим от несуществующего.
		return nil, apperrors.NotFound("запись не найдена")
	}
	return task, nil
}

func (s *draftService) UpdateDraft(ctx context.Context, actor authz.Actor, taskID uint64, payload dto.SaveDraftDTO) (*dto.TaskDTO, error) {
	task, err := s.loadDraft(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.checkAssignee(ctx, payload.AssignmentType, payload.AssignedUserID); err != nil {
		return nil, err
	}
	contactID, companyID, err := s.resolveContact(ctx, payload.ContactPersonID)
	if err != nil {
		return nil, err
	}
	clientPrice, installerReward, err := s.resolvePricing(ctx, payload.WorkTypes)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"assigned_user_id":  payload.AssignedUserID,
		"contact_person_id": contactID,
		"company_id":        companyID,
		"scheduled_at":      payload.ScheduledAt,
		"address":           payload.Address,
		"vehicle_info":      payload.VehicleInfo,
		"comment":           payload.Comment,
		"client_price":      clientPrice,
		"installer_reward":  installerReward,
		"photo_required":    payload.PhotoRequired,
		"assignment_type":   payload.AssignmentType,
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.taskRepo.UpdateFieldsInTx(ctx, tx, task.ID, task.Version, fields); err != nil {
			return err
		}
		if err := s.taskRepo.ReplaceWorksInTx(ctx, tx, task.ID, payload.WorkTypes); err != nil {
			return err
		}
		if err := s.taskRepo.ReplaceEquipmentInTx(ctx, tx, task.ID, payload.Equipment); err != nil {
			return err
		}
		fresh, err := s.taskRepo.FindForUpdateInTx(ctx, tx, task.ID)
		if err != nil {
			return err
		}
		*task = *fresh
		return s.historySvc.RecordInTx(ctx, tx, task, HistoryRow{
			UserID:    actor.ID,
			EventType: constants.EventUpdated,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.buildTaskDTO(ctx, task)
}

func (s *draftService) StageAttachments(ctx context.Context, actor authz.Actor, taskID uint64, payload dto.StageAttachmentsDTO) error {
	task, err := s.loadDraft(ctx, actor, taskID)
	if err != nil {
		return err
	}

	var removedKeys []events.AttachmentRemoved
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		for _, add := range payload.Add {
			attachment := &entities.TaskAttachment{
				TaskID:       task.ID,
				StorageKey:   add.StorageKey,
				FileName:     add.FileName,
				FileType:     add.FileType,
				Mime:         add.Mime,
				FileSize:     add.FileSize,
				UploaderID:   actor.ID,
				UploaderRole: actor.Role,
			}
			id, err := s.attachmentRepo.CreateInTx(ctx, tx, attachment)
			if err != nil {
				return err
			}
			relatedType := "attachment"
			if err := s.historySvc.RecordInTx(ctx, tx, task, HistoryRow{
				UserID:      actor.ID,
				EventType:   constants.EventAttachmentAdded,
				RelatedID:   &id,
				RelatedType: &relatedType,
			}); err != nil {
				return err
			}
		}
		for _, removeID := range payload.Remove {
			attachment, err := s.attachmentRepo.FindByID(ctx, removeID)
			if err != nil {
				return err
			}
			if attachment.TaskID != task.ID {
				return apperrors.ValidationFailed("вложение принадлежит другой задаче", nil)
			}
			if err := s.attachmentRepo.SoftDeleteInTx(ctx, tx, removeID); err != nil {
				return err
			}
			removedKeys = append(removedKeys, events.AttachmentRemoved{
				StorageKey:   attachment.StorageKey,
				ThumbnailKey: attachment.ThumbnailKey,
			})
			relatedType := "attachment"
			removeIDCopy := removeID
			if err := s.historySvc.RecordInTx(ctx, tx, task, HistoryRow{
				UserID:      actor.ID,
				EventType:   constants.EventAttachmentRemoved,
				RelatedID:   &removeIDCopy,
				RelatedType: &relatedType,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Файлы убираем из хранилища только после коммита.
	for _, ev := range removedKeys {
		s.bus.Publish(ctx, ev)
	}
	return nil
}

// Publish переводит черновик в опубликованную задачу: цены пересчитываются
// ещё раз, событие published пишется с полным снапшотом.
func (s *draftService) Publish(ctx context.Context, actor authz.Actor, taskID uint64) (*dto.TaskDTO, error) {
	task, err := s.loadDraft(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		works, err := s.taskRepo.GetWorks(ctx, tx, task.ID)
		if err != nil {
			return err
		}
		ids := make([]uint64, 0, len(works))
		for _, w := range works {
			ids = append(ids, w.WorkTypeID)
		}
		var clientPrice, installerReward float64
		if len(ids) > 0 {
			workTypes, err := s.workTypeRepo.FindByIDs(ctx, ids)
			if err != nil {
				return err
			}
			clientPrice, installerReward = calculatePrices(workTypes)
		}

		fields := map[string]interface{}{
			"is_draft":         false,
			"client_price":     clientPrice,
			"installer_reward": installerReward,
		}
		if err := s.taskRepo.UpdateFieldsInTx(ctx, tx, task.ID, task.Version, fields); err != nil {
			return err
		}
		fresh, err := s.taskRepo.FindForUpdateInTx(ctx, tx, task.ID)
		if err != nil {
			return err
		}
		*task = *fresh
		if err := s.historySvc.RecordInTx(ctx, tx, task, HistoryRow{
			UserID:    actor.ID,
			EventType: constants.EventPublished,
		}); err != nil {
			return err
		}
		// До назначения исполнителя публикация никого не уведомляет.
		if task.AssignedUserID != nil {
			if _, err := s.notificationSvc.QueueInTx(ctx, tx, *task.AssignedUserID, &task.ID,
				fmt.Sprintf("Вам назначена задача №%d: %s", task.ID, task.Address)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("задача опубликована",
		zap.Uint64("task_id", task.ID),
		zap.String("assignment_type", task.AssignmentType))
	return s.buildTaskDTO(ctx, task)
}

// Discard жёстко удаляет черновик; позиции, вложения и история уходят
// каскадом, файлы из хранилища удаляет фоновый воркер.
func (s *draftService) Discard(ctx context.Context, actor authz.Actor, taskID uint64) error {
	task, err := s.loadDraft(ctx, actor, taskID)
	if err != nil {
		return err
	}

	attachments, err := s.attachmentRepo.FindByTaskID(ctx, task.ID)
	if err != nil {
		return err
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		return s.taskRepo.DeleteInTx(ctx, tx, task.ID)
	})
	if err != nil {
		return err
	}

	for _, a := range attachments {
		s.bus.Publish(ctx, events.AttachmentRemoved{
			StorageKey:   a.StorageKey,
			ThumbnailKey: a.ThumbnailKey,
		})
	}
	s.logger.Info("черновик удалён", zap.Uint64("task_id", task.ID))
	return nil
}

func (s *draftService) buildTaskDTO(ctx context.Context, task *entities.Task) (*dto.TaskDTO, error) {
	return buildTaskDTO(ctx, s.taskRepo, task)
}

// buildTaskDTO дотягивает позиции задачи и собирает DTO. Общий для
// сервисов черновиков и задач.
func buildTaskDTO(ctx context.Context, taskRepo repositories.TaskRepositoryInterface, task *entities.Task) (*dto.TaskDTO, error) {
	works, err := taskRepo.GetWorks(ctx, taskRepo.Pool(), task.ID)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать работы задачи: %w", err)
	}
	equipment, err := taskRepo.GetEquipment(ctx, taskRepo.Pool(), task.ID)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать оборудование задачи: %w", err)
	}

	result := &dto.TaskDTO{
		ID:              task.ID,
		CreatorID:       task.CreatorID,
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
		IsDraft:         task.IsDraft,
		Status:          task.Status,
		Version:         task.Version,
		CreatedAt:       task.CreatedAt,
		AcceptedAt:      task.AcceptedAt,
		StartedAt:       task.StartedAt,
		CompletedAt:     task.CompletedAt,
	}
	for _, w := range works {
		result.WorkTypes = append(result.WorkTypes, dto.TaskWorkItemDTO{WorkTypeID: w.WorkTypeID, Quantity: w.Quantity})
	}
	for _, e := range equipment {
		result.Equipment = append(result.Equipment, dto.TaskEquipmentItemDTO{
			EquipmentID: e.EquipmentID, Quantity: e.Quantity, SerialNumber: e.SerialNumber,
		})
	}
	return result, nil
}
