package dto

import "time"

type SaveReportDTO struct {
	Text        string   `json:"text" validate:"required"`
	StorageKeys []string `json:"storage_keys,omitempty"`
}

// ReviewReportDTO - решение проверяющего по отчёту.
// tech_supp в реализованном протоколе может только approve.
type ReviewReportDTO struct {
	Decision string `json:"decision" validate:"required,oneof=approve reject"`
	Comment  string `json:"comment"`
}

type ReportDTO struct {
	ID             uint64     `json:"id"`
	TaskID         uint64     `json:"task_id"`
	InstallerID    uint64     `json:"installer_id"`
	Text           string     `json:"text"`
	StorageKeys    []string   `json:"storage_keys"`
	LogistApproval string     `json:"logist_approval"`
	TechApproval   string     `json:"tech_approval"`
	ReviewComment  *string    `json:"review_comment,omitempty"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
