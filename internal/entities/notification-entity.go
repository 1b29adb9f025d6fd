package entities

import "time"

// Notification - исходящее сообщение пользователю. Создаётся в транзакции
// мутации, отправляется фоновым воркером после коммита.
type Notification struct {
	ID        uint64     `json:"id" db:"id"`
	UserID    uint64     `json:"user_id" db:"user_id"`
	TaskID    *uint64    `json:"task_id,omitempty" db:"task_id"`
	Text      string     `json:"text" db:"text"`
	IsSent    bool       `json:"is_sent" db:"is_sent"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	SentAt    *time.Time `json:"sent_at,omitempty" db:"sent_at"`
}
