// Файл: internal/workers/sweeper.go
package workers

import (
	"context"
	"time"

	"dispatch-system/internal/services"

	"go.uber.org/zap"
)

const sweepBatchSize = 100

// Sweeper - страховочный цикл поверх шины событий: периодически
// отправляет зависшие уведомления и дорабатывает вложения. Делает
// доставку at-least-once устойчивой к рестартам процесса.
type Sweeper struct {
	notificationSvc  services.NotificationServiceInterface
	attachmentWorker *AttachmentWorker
	interval         time.Duration
	logger           *zap.Logger
}

func NewSweeper(
	notificationSvc services.NotificationServiceInterface,
	attachmentWorker *AttachmentWorker,
	interval time.Duration,
	logger *zap.Logger,
) *Sweeper {
	return &Sweeper{
		notificationSvc:  notificationSvc,
		attachmentWorker: attachmentWorker,
		interval:         interval,
		logger:           logger,
	}
}

func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.notificationSvc.SendPending(ctx, sweepBatchSize); err != nil {
				s.logger.Warn("зачистка очереди уведомлений не удалась", zap.Error(err))
			}
			if err := s.attachmentWorker.Sweep(ctx, sweepBatchSize); err != nil {
				s.logger.Warn("зачистка необработанных вложений не удалась", zap.Error(err))
			}
		}
	}
}
