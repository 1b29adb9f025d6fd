package dto

import (
	"time"

	"github.com/aarondl/null/v8"
)

type TaskWorkItemDTO struct {
	WorkTypeID uint64 `json:"work_type_id" validate:"required"`
	Quantity   int32  `json:"quantity" validate:"omitempty,min=1"`
}

type TaskEquipmentItemDTO struct {
	EquipmentID  uint64  `json:"equipment_id" validate:"required"`
	Quantity     int32   `json:"quantity" validate:"omitempty,min=1"`
	SerialNumber *string `json:"serial_number,omitempty"`
}

// SaveDraftDTO - редактируемое подмножество полей задачи.
// Цены клиентом не передаются: они всегда пересчитываются сервисом.
type SaveDraftDTO struct {
	ContactPersonID *uint64    `json:"contact_person_id,omitempty"`
	ScheduledAt     *time.Time `json:"scheduled_at,omitempty"`
	Address         string     `json:"address"`
	VehicleInfo     string     `json:"vehicle_info"`
	Comment         string     `json:"comment"`
	PhotoRequired   bool       `json:"photo_required"`
	AssignmentType  string     `json:"assignment_type" validate:"required,assignment_type"`
	AssignedUserID  *uint64    `json:"assigned_user_id,omitempty"`

	WorkTypes []TaskWorkItemDTO      `json:"work_types" validate:"dive"`
	Equipment []TaskEquipmentItemDTO `json:"equipment" validate:"dive"`
}

// UpdateTaskDTO - частичное редактирование опубликованной задачи
// логистом или админом. Непереданные поля не трогаются.
type UpdateTaskDTO struct {
	ContactPersonID null.Uint64 `json:"contact_person_id"`
	ScheduledAt     null.Time   `json:"scheduled_at"`
	Address         null.String `json:"address"`
	VehicleInfo     null.String `json:"vehicle_info"`
	Comment         null.String `json:"comment"`
	PhotoRequired   null.Bool   `json:"photo_required"`
	AssignedUserID  null.Uint64 `json:"assigned_user_id"`

	WorkTypes []TaskWorkItemDTO      `json:"work_types,omitempty" validate:"omitempty,dive"`
	Equipment []TaskEquipmentItemDTO `json:"equipment,omitempty" validate:"omitempty,dive"`

	// Ожидаемая версия задачи для оптимистической блокировки.
	Version uint64 `json:"version" validate:"required"`
}

type TaskDTO struct {
	ID              uint64     `json:"id"`
	CreatorID       uint64     `json:"creator_id"`
	AssignedUserID  *uint64    `json:"assigned_user_id,omitempty"`
	ContactPersonID *uint64    `json:"contact_person_id,omitempty"`
	CompanyID       *uint64    `json:"company_id,omitempty"`
	ScheduledAt     *time.Time `json:"scheduled_at,omitempty"`
	Address         string     `json:"address"`
	VehicleInfo     string     `json:"vehicle_info"`
	Comment         string     `json:"comment"`
	ClientPrice     float64    `json:"client_price"`
	InstallerReward float64    `json:"installer_reward"`
	PhotoRequired   bool       `json:"photo_required"`
	AssignmentType  string     `json:"assignment_type"`
	IsDraft         bool       `json:"is_draft"`
	Status          string     `json:"status"`
	Version         uint64     `json:"version"`
	CreatedAt       time.Time  `json:"created_at"`
	AcceptedAt      *time.Time `json:"accepted_at,omitempty"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`

	WorkTypes []TaskWorkItemDTO      `json:"work_types,omitempty"`
	Equipment []TaskEquipmentItemDTO `json:"equipment,omitempty"`
}

type TaskListFilterDTO struct {
	Status         string     `query:"status"`
	AssignmentType string     `query:"assignment_type"`
	DateFrom       *time.Time `query:"date_from"`
	DateTo         *time.Time `query:"date_to"`
	Limit          uint64     `query:"limit"`
	Offset         uint64     `query:"offset"`
}
