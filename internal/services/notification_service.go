// Файл: internal/services/notification_service.go
package services

import (
	"context"

	"dispatch-system/internal/entities"
	"dispatch-system/internal/repositories"
	"dispatch-system/pkg/telegram"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type NotificationServiceInterface interface {
	QueueInTx(ctx context.Context, tx pgx.Tx, userID uint64, taskID *uint64, text string) (uint64, error)
	Send(ctx context.Context, n entities.Notification) error
	SendPending(ctx context.Context, batchSize int) error
}

type notificationService struct {
	notificationRepo repositories.NotificationRepositoryInterface
	userRepo         repositories.UserRepositoryInterface
	telegramSvc      telegram.ServiceInterface
	logger           *zap.Logger
}

func NewNotificationService(
	notificationRepo repositories.NotificationRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	telegramSvc telegram.ServiceInterface,
	logger *zap.Logger,
) NotificationServiceInterface {
	return &notificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		telegramSvc:      telegramSvc,
		logger:           logger,
	}
}

// QueueInTx кладёт уведомление в очередь в транзакции мутации.
// Откат мутации откатывает и уведомление: фантомных сообщений не бывает.
func (s *notificationService) QueueInTx(ctx context.Context, tx pgx.Tx, userID uint64, taskID *uint64, text string) (uint64, error) {
	return s.notificationRepo.CreateInTx(ctx, tx, &entities.Notification{
		UserID: userID,
		TaskID: taskID,
		Text:   text,
	})
}

// Send доставляет одно уведомление. Пользователь без привязанного
// telegram-чата получает отметку "отправлено" без доставки.
func (s *notificationService) Send(ctx context.Context, n entities.Notification) error {
	user, err := s.userRepo.FindByID(ctx, n.UserID)
	if err != nil {
		s.logger.Warn("получатель уведомления не найден, помечаем отправленным",
			zap.Uint64("notification_id", n.ID), zap.Uint64("user_id", n.UserID))
		return s.notificationRepo.MarkSent(ctx, n.ID)
	}
	if !user.TelegramChatID.Valid {
		return s.notificationRepo.MarkSent(ctx, n.ID)
	}

	if err := s.telegramSvc.SendMessage(ctx, user.TelegramChatID.Int64, n.Text); err != nil {
		return err
	}
	return s.notificationRepo.MarkSent(ctx, n.ID)
}

// SendPending - страховочная зачистка очереди для фонового воркера:
// добирает то, что не ушло через шину событий.
func (s *notificationService) SendPending(ctx context.Context, batchSize int) error {
	pending, err := s.notificationRepo.FindPending(ctx, batchSize)
	if err != nil {
		return err
	}
	for _, n := range pending {
		if err := s.Send(ctx, n); err != nil {
			s.logger.Warn("не удалось отправить уведомление",
				zap.Uint64("notification_id", n.ID), zap.Error(err))
		}
	}
	return nil
}
