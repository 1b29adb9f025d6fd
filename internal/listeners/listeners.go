// Файл: internal/listeners/listeners.go
// Подписчики шины событий: превращают пост-коммитные события в фоновые
// задачи пула. Сами слушатели лёгкие, вся работа уходит в пул.
package listeners

import (
	"context"
	"fmt"

	"dispatch-system/internal/events"
	"dispatch-system/internal/services"
	"dispatch-system/internal/workers"
	"dispatch-system/pkg/eventbus"
)

const notificationBatchSize = 50

// Register подписывает обработчики на события домена.
func Register(
	bus *eventbus.Bus,
	pool *workers.Pool,
	notificationSvc services.NotificationServiceInterface,
	attachmentWorker *workers.AttachmentWorker,
) {
	bus.Subscribe(events.TaskHistoryRecordedName, func(ctx context.Context, event eventbus.Event) error {
		pool.Submit("notifications", func(ctx context.Context) error {
			return notificationSvc.SendPending(ctx, notificationBatchSize)
		})
		return nil
	})

	bus.Subscribe(events.AttachmentUploadedName, func(ctx context.Context, event eventbus.Event) error {
		ev, ok := event.(events.AttachmentUploaded)
		if !ok {
			return fmt.Errorf("неожиданный тип события: %T", event)
		}
		pool.Submit("attachment_process", func(ctx context.Context) error {
			return attachmentWorker.Process(ctx, ev.AttachmentID)
		})
		return nil
	})

	bus.Subscribe(events.AttachmentRemovedName, func(ctx context.Context, event eventbus.Event) error {
		ev, ok := event.(events.AttachmentRemoved)
		if !ok {
			return fmt.Errorf("неожиданный тип события: %T", event)
		}
		pool.Submit("blob_delete", func(ctx context.Context) error {
			return attachmentWorker.DeleteBlob(ctx, ev.StorageKey, ev.ThumbnailKey)
		})
		return nil
	})
}
