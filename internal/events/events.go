// Файл: internal/events/events.go
// События доменного уровня. Публикуются строго после коммита транзакции.
package events

const (
	TaskHistoryRecordedName = "task.history_recorded"
	AttachmentRemovedName   = "task.attachment_removed"
	AttachmentUploadedName  = "task.attachment_uploaded"
)

// TaskHistoryRecorded означает, что мутация задачи закоммичена вместе
// со строкой истории. Слушатели рассылают уведомления.
type TaskHistoryRecorded struct {
	TaskID    uint64
	ActorID   uint64
	EventType string
	Status    string
}

func (TaskHistoryRecorded) Name() string { return TaskHistoryRecordedName }

// AttachmentRemoved - вложение помечено удалённым; файл в хранилище
// нужно убрать фоном.
type AttachmentRemoved struct {
	StorageKey   string
	ThumbnailKey *string
}

func (AttachmentRemoved) Name() string { return AttachmentRemovedName }

// AttachmentUploaded - блоб привязан к задаче; воркеру пора считать
// контрольную сумму и миниатюру.
type AttachmentUploaded struct {
	AttachmentID uint64
}

func (AttachmentUploaded) Name() string { return AttachmentUploadedName }
