package services

import (
	"context"

	"dispatch-system/internal/entities"
	"dispatch-system/internal/events"
	"dispatch-system/pkg/eventbus"
)

// publishHistoryRecorded уведомляет шину о закоммиченной мутации.
// Вызывается строго после успешного коммита транзакции.
func publishHistoryRecorded(ctx context.Context, bus *eventbus.Bus, task *entities.Task, actorID uint64, eventType string) {
	bus.Publish(ctx, events.TaskHistoryRecorded{
		TaskID:    task.ID,
		ActorID:   actorID,
		EventType: eventType,
		Status:    task.Status,
	})
}
