// Файл: internal/services/attachment_service.go
package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"dispatch-system/internal/authz"
	"dispatch-system/internal/dto"
	"dispatch-system/internal/entities"
	"dispatch-system/internal/events"
	"dispatch-system/internal/repositories"
	"dispatch-system/pkg/blobstore"
	"dispatch-system/pkg/constants"
	"dispatch-system/pkg/eventbus"
	apperrors "dispatch-system/pkg/errors"
	"dispatch-system/pkg/validation"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const signedURLTTL = 15 * time.Minute

type AttachmentServiceInterface interface {
	CreateUpload(ctx context.Context, actor authz.Actor, payload dto.CreateUploadDTO) (*dto.CreateUploadResponseDTO, error)
	SignPart(ctx context.Context, actor authz.Actor, payload dto.SignPartDTO) (string, error)
	CompleteUpload(ctx context.Context, actor authz.Actor, payload dto.CompleteUploadDTO) error
	AbortUpload(ctx context.Context, actor authz.Actor, storageKey, uploadID string) error
	AddAttachment(ctx context.Context, actor authz.Actor, taskID uint64, payload dto.NewAttachmentDTO) (*dto.AttachmentDTO, error)
	RemoveAttachment(ctx context.Context, actor authz.Actor, attachmentID uint64) error
	ListAttachments(ctx context.Context, actor authz.Actor, taskID uint64) ([]dto.AttachmentDTO, error)
}

type attachmentService struct {
	taskRepo       repositories.TaskRepositoryInterface
	attachmentRepo repositories.AttachmentRepositoryInterface
	historySvc     HistoryServiceInterface
	txManager      repositories.TxManagerInterface
	store          blobstore.BlobStoreInterface
	bus            *eventbus.Bus
	logger         *zap.Logger
}

func NewAttachmentService(
	taskRepo repositories.TaskRepositoryInterface,
	attachmentRepo repositories.AttachmentRepositoryInterface,
	historySvc HistoryServiceInterface,
	txManager repositories.TxManagerInterface,
	store blobstore.BlobStoreInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
) AttachmentServiceInterface {
	return &attachmentService{
		taskRepo:       taskRepo,
		attachmentRepo: attachmentRepo,
		historySvc:     historySvc,
		txManager:      txManager,
		store:          store,
		bus:            bus,
		logger:         logger,
	}
}

// CreateUpload начинает multipart-загрузку: клиент получает ключ,
// идентификатор сессии и разбивку на части.
func (s *attachmentService) CreateUpload(ctx context.Context, actor authz.Actor, payload dto.CreateUploadDTO) (*dto.CreateUploadResponseDTO, error) {
	if payload.FileSize > blobstore.MaxObjectSize {
		return nil, apperrors.ValidationFailed(
			fmt.Sprintf("размер файла превышает предел %d байт", blobstore.MaxObjectSize), nil)
	}

	task, err := s.taskRepo.FindByID(ctx, payload.TaskID)
	if err != nil {
		return nil, err
	}
	if !authz.CanReadTask(actor, task) {
		return nil, apperrors.NotFound("запись не найдена")
	}

	var key string
	if payload.ReportID != nil {
		key = blobstore.KeyForReport(task.ID, *payload.ReportID, payload.FileName)
	} else {
		key = blobstore.KeyForTask(task.ID, payload.FileName)
	}

	uploadID, err := s.store.CreateMultipart(ctx, key, payload.ContentType)
	if err != nil {
		return nil, apperrors.ExternalUnavailable("хранилище файлов недоступно", err)
	}

	return &dto.CreateUploadResponseDTO{
		StorageKey: key,
		UploadID:   uploadID,
		PartSize:   blobstore.DefaultPartSize,
		PartsTotal: int(math.Ceil(float64(payload.FileSize) / float64(blobstore.DefaultPartSize))),
	}, nil
}

func (s *attachmentService) SignPart(ctx context.Context, actor authz.Actor, payload dto.SignPartDTO) (string, error) {
	url, err := s.store.SignPart(ctx, payload.StorageKey, payload.UploadID, payload.PartNumber, signedURLTTL)
	if err != nil {
		return "", apperrors.ExternalUnavailable("хранилище файлов недоступно", err)
	}
	return url, nil
}

func (s *attachmentService) CompleteUpload(ctx context.Context, actor authz.Actor, payload dto.CompleteUploadDTO) error {
	parts := make([]blobstore.CompletedPart, 0, len(payload.Parts))
	for _, p := range payload.Parts {
		parts = append(parts, blobstore.CompletedPart{PartNumber: p.PartNumber, ETag: p.ETag})
	}
	if err := s.store.CompleteMultipart(ctx, payload.StorageKey, payload.UploadID, parts); err != nil {
		return apperrors.ExternalUnavailable("не удалось завершить загрузку", err)
	}
	return nil
}

func (s *attachmentService) AbortUpload(ctx context.Context, actor authz.Actor, storageKey, uploadID string) error {
	if err := s.store.AbortMultipart(ctx, storageKey, uploadID); err != nil {
		return apperrors.ExternalUnavailable("не удалось прервать загрузку", err)
	}
	return nil
}

// AddAttachment привязывает загруженный блоб к опубликованной задаче.
// Вложения к черновикам идут через операции черновиков.
func (s *attachmentService) AddAttachment(ctx context.Context, actor authz.Actor, taskID uint64, payload dto.NewAttachmentDTO) (*dto.AttachmentDTO, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !authz.CanReadTask(actor, task) {
		return nil, apperrors.NotFound("запись не найдена")
	}
	if task.Status == constants.StatusCompleted {
		return nil, apperrors.PreconditionFailed("к завершённой задаче вложения не добавляются")
	}

	if err := validation.ValidateAttachment(payload.FileType, payload.FileSize, nil); err != nil {
		return nil, err
	}
	if payload.FileType == constants.FileTypePhoto && payload.Mime != "" {
		allowed := false
		for _, mime := range constants.AllowedImageMimeTypes {
			if strings.EqualFold(payload.Mime, mime) {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil, apperrors.ValidationFailed("недопустимый MIME-тип для фото", nil)
		}
	}

	// Блоб обязан существовать: привязка битого ключа запрещена.
	if _, err := s.store.Head(ctx, payload.StorageKey); err != nil {
		return nil, apperrors.ValidationFailed("файл не найден в хранилище, завершите загрузку", nil)
	}

	attachment := &entities.TaskAttachment{
		TaskID:       task.ID,
		StorageKey:   payload.StorageKey,
		FileName:     payload.FileName,
		FileType:     payload.FileType,
		Mime:         payload.Mime,
		FileSize:     payload.FileSize,
		UploaderID:   actor.ID,
		UploaderRole: actor.Role,
	}
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		id, err := s.attachmentRepo.CreateInTx(ctx, tx, attachment)
		if err != nil {
			return err
		}
		attachment.ID = id
		relatedType := "attachment"
		return s.historySvc.RecordInTx(ctx, tx, task, HistoryRow{
			UserID:      actor.ID,
			EventType:   constants.EventAttachmentAdded,
			RelatedID:   &id,
			RelatedType: &relatedType,
		})
	})
	if err != nil {
		return nil, err
	}

	// Контрольную сумму и миниатюру досчитает фоновый воркер.
	s.bus.Publish(ctx, events.AttachmentUploaded{AttachmentID: attachment.ID})
	return s.toDTO(ctx, attachment), nil
}

func (s *attachmentService) RemoveAttachment(ctx context.Context, actor authz.Actor, attachmentID uint64) error {
	attachment, err := s.attachmentRepo.FindByID(ctx, attachmentID)
	if err != nil {
		return err
	}
	task, err := s.taskRepo.FindByID(ctx, attachment.TaskID)
	if err != nil {
		return err
	}
	if !authz.CanManageAttachment(actor, task, attachment.UploaderID) {
		return apperrors.Forbidden("нет прав на удаление этого вложения")
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.attachmentRepo.SoftDeleteInTx(ctx, tx, attachmentID); err != nil {
			return err
		}
		relatedType := "attachment"
		return s.historySvc.RecordInTx(ctx, tx, task, HistoryRow{
			UserID:      actor.ID,
			EventType:   constants.EventAttachmentRemoved,
			RelatedID:   &attachmentID,
			RelatedType: &relatedType,
		})
	})
	if err != nil {
		return err
	}

	s.bus.Publish(ctx, events.AttachmentRemoved{
		StorageKey:   attachment.StorageKey,
		ThumbnailKey: attachment.ThumbnailKey,
	})
	return nil
}

func (s *attachmentService) ListAttachments(ctx context.Context, actor authz.Actor, taskID uint64) ([]dto.AttachmentDTO, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !authz.CanReadTask(actor, task) {
		return nil, apperrors.NotFound("запись не найдена")
	}

	attachments, err := s.attachmentRepo.FindByTaskID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	result := make([]dto.AttachmentDTO, 0, len(attachments))
	for i := range attachments {
		result = append(result, *s.toDTO(ctx, &attachments[i]))
	}
	return result, nil
}

func (s *attachmentService) toDTO(ctx context.Context, a *entities.TaskAttachment) *dto.AttachmentDTO {
	url, err := s.store.SignGet(ctx, a.StorageKey, signedURLTTL)
	if err != nil {
		s.logger.Warn("не удалось подписать URL вложения",
			zap.Uint64("attachment_id", a.ID), zap.Error(err))
	}
	return &dto.AttachmentDTO{
		ID:           a.ID,
		TaskID:       a.TaskID,
		ReportID:     a.ReportID,
		StorageKey:   a.StorageKey,
		ThumbnailKey: a.ThumbnailKey,
		FileName:     a.FileName,
		FileType:     a.FileType,
		Mime:         a.Mime,
		FileSize:     a.FileSize,
		Processed:    a.Processed,
		URL:          url,
		CreatedAt:    a.CreatedAt,
	}
}
