// Файл: internal/entities/user-entity.go
package entities

import (
	"database/sql"
	"time"
)

type User struct {
	ID    uint64 `json:"id" db:"id"`
	Login string `json:"login" db:"login"`
	Fio   string `json:"fio" db:"fio"`

	Password string `json:"-" db:"password"`

	// Роль меняет только админ; внутри транзакции роль неизменна.
	Role     string `json:"role" db:"role"`
	IsActive bool   `json:"is_active" db:"is_active"`

	TelegramChatID sql.NullInt64 `json:"telegram_chat_id,omitempty" db:"telegram_chat_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
