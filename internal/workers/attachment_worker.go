// Файл: internal/workers/attachment_worker.go
package workers

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"dispatch-system/internal/repositories"
	"dispatch-system/pkg/blobstore"
	"dispatch-system/pkg/constants"
	"dispatch-system/pkg/validation"

	"go.uber.org/zap"
)

// AttachmentWorker досчитывает вложения после коммита: контрольная
// сумма содержимого и пометка processed.
type AttachmentWorker struct {
	attachmentRepo repositories.AttachmentRepositoryInterface
	store          blobstore.BlobStoreInterface
	logger         *zap.Logger
}

func NewAttachmentWorker(
	attachmentRepo repositories.AttachmentRepositoryInterface,
	store blobstore.BlobStoreInterface,
	logger *zap.Logger,
) *AttachmentWorker {
	return &AttachmentWorker{
		attachmentRepo: attachmentRepo,
		store:          store,
		logger:         logger,
	}
}

// Process считает sha256 содержимого и помечает вложение обработанным.
// Отсутствие блоба - постоянная ошибка, пишется в error_text без повторов.
func (w *AttachmentWorker) Process(ctx context.Context, attachmentID uint64) error {
	attachment, err := w.attachmentRepo.FindByID(ctx, attachmentID)
	if err != nil {
		// Вложение могли успеть удалить; повторять нет смысла.
		w.logger.Info("вложение для обработки не найдено",
			zap.Uint64("attachment_id", attachmentID))
		return nil
	}
	if attachment.Processed {
		return nil
	}

	data, err := w.store.Get(ctx, attachment.StorageKey)
	if err != nil {
		if markErr := w.attachmentRepo.MarkFailed(ctx, attachmentID,
			fmt.Sprintf("файл недоступен в хранилище: %v", err)); markErr != nil {
			return markErr
		}
		return nil
	}

	// Фото проверяются по содержимому: заявленный MIME мог врать.
	if attachment.FileType == constants.FileTypePhoto {
		if err := validation.ValidateAttachment(attachment.FileType, attachment.FileSize,
			bytes.NewReader(data)); err != nil {
			if markErr := w.attachmentRepo.MarkFailed(ctx, attachmentID, err.Error()); markErr != nil {
				return markErr
			}
			return nil
		}
	}

	sum := sha256.Sum256(data)
	checksum := hex.EncodeToString(sum[:])
	if int64(len(data)) != attachment.FileSize {
		w.logger.Warn("размер файла в хранилище не совпадает с заявленным",
			zap.Uint64("attachment_id", attachmentID),
			zap.Int64("declared", attachment.FileSize),
			zap.Int("actual", len(data)))
	}

	return w.attachmentRepo.MarkProcessed(ctx, attachmentID, checksum, nil)
}

// DeleteBlob убирает файл и миниатюру из хранилища. Delete идемпотентен,
// повтор после частичного успеха безопасен.
func (w *AttachmentWorker) DeleteBlob(ctx context.Context, storageKey string, thumbnailKey *string) error {
	if err := w.store.Delete(ctx, storageKey); err != nil {
		return err
	}
	if thumbnailKey != nil {
		return w.store.Delete(ctx, *thumbnailKey)
	}
	return nil
}

// Sweep добирает вложения, не обработанные через шину событий
// (например, после рестарта процесса).
func (w *AttachmentWorker) Sweep(ctx context.Context, batchSize int) error {
	pending, err := w.attachmentRepo.FindUnprocessed(ctx, batchSize)
	if err != nil {
		return err
	}
	for _, a := range pending {
		if err := w.Process(ctx, a.ID); err != nil {
			w.logger.Warn("не удалось обработать вложение",
				zap.Uint64("attachment_id", a.ID), zap.Error(err))
		}
	}
	return nil
}
