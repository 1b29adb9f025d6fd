package entities

import "time"

type TaskAttachment struct {
	ID       uint64  `json:"id" db:"id"`
	TaskID   uint64  `json:"task_id" db:"task_id"`
	ReportID *uint64 `json:"report_id,omitempty" db:"report_id"`

	StorageKey   string  `json:"storage_key" db:"storage_key"`
	ThumbnailKey *string `json:"thumbnail_key,omitempty" db:"thumbnail_key"`

	FileName string `json:"file_name" db:"file_name"`
	FileType string `json:"file_type" db:"file_type"`
	Mime     string `json:"mime" db:"mime"`
	FileSize int64  `json:"file_size" db:"file_size"`

	UploaderID uint64 `json:"uploader_id" db:"uploader_id"`
	// Срез роли загрузившего на момент загрузки.
	UploaderRole string `json:"uploader_role" db:"uploader_role"`

	Processed bool    `json:"processed" db:"processed"`
	ErrorText *string `json:"error_text,omitempty" db:"error_text"`
	Checksum  *string `json:"checksum,omitempty" db:"checksum"`

	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}
