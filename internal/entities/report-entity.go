package entities

import "time"

// TaskReport - отчёт монтажника о выполненной работе.
// Два независимых согласования: логист и техподдержка.
type TaskReport struct {
	ID          uint64 `json:"id" db:"id"`
	TaskID      uint64 `json:"task_id" db:"task_id"`
	InstallerID uint64 `json:"installer_id" db:"installer_id"`

	Text string `json:"text" db:"text"`
	// Дублирует storage_key вложений отчёта для удобства чтения.
	StorageKeys []string `json:"storage_keys" db:"storage_keys"`

	LogistApproval string `json:"logist_approval" db:"logist_approval"`
	TechApproval   string `json:"tech_approval" db:"tech_approval"`

	ReviewComment *string    `json:"review_comment,omitempty" db:"review_comment"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty" db:"reviewed_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
