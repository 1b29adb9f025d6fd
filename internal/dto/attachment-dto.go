package dto

import "time"

// NewAttachmentDTO - привязка уже загруженного в хранилище блоба к задаче.
type NewAttachmentDTO struct {
	StorageKey string `json:"storage_key" validate:"required"`
	FileName   string `json:"file_name" validate:"required"`
	FileType   string `json:"file_type" validate:"required,file_type"`
	Mime       string `json:"mime"`
	FileSize   int64  `json:"file_size" validate:"required,min=1"`
}

// StageAttachmentsDTO - списки add/remove для сверки вложений черновика.
type StageAttachmentsDTO struct {
	Add    []NewAttachmentDTO `json:"attachments_add" validate:"dive"`
	Remove []uint64           `json:"attachments_remove"`
}

type AttachmentDTO struct {
	ID           uint64    `json:"id"`
	TaskID       uint64    `json:"task_id"`
	ReportID     *uint64   `json:"report_id,omitempty"`
	StorageKey   string    `json:"storage_key"`
	ThumbnailKey *string   `json:"thumbnail_key,omitempty"`
	FileName     string    `json:"file_name"`
	FileType     string    `json:"file_type"`
	Mime         string    `json:"mime"`
	FileSize     int64     `json:"file_size"`
	Processed    bool      `json:"processed"`
	URL          string    `json:"url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// --- Multipart-загрузка ---

type CreateUploadDTO struct {
	TaskID      uint64  `json:"task_id" validate:"required"`
	ReportID    *uint64 `json:"report_id,omitempty"`
	FileName    string  `json:"file_name" validate:"required"`
	ContentType string  `json:"content_type" validate:"required"`
	FileSize    int64   `json:"file_size" validate:"required,min=1"`
}

type CreateUploadResponseDTO struct {
	StorageKey string `json:"storage_key"`
	UploadID   string `json:"upload_id"`
	PartSize   int64  `json:"part_size"`
	PartsTotal int    `json:"parts_total"`
}

type SignPartDTO struct {
	StorageKey string `json:"storage_key" validate:"required"`
	UploadID   string `json:"upload_id" validate:"required"`
	PartNumber int    `json:"part_number" validate:"required,min=1"`
}

type CompletedPartDTO struct {
	PartNumber int    `json:"part_number" validate:"required,min=1"`
	ETag       string `json:"etag"`
}

type CompleteUploadDTO struct {
	StorageKey string             `json:"storage_key" validate:"required"`
	UploadID   string             `json:"upload_id" validate:"required"`
	Parts      []CompletedPartDTO `json:"parts" validate:"required,dive"`
}
