package entities

import "time"

// TaskSnapshot - полный срез ключевых полей задачи на момент события.
// Пишется в каждую строку истории; переименование справочников задним
// числом историю не переписывает.
type TaskSnapshot struct {
	Status          string     `json:"status"`
	IsDraft         bool       `json:"is_draft"`
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
	Version         uint64     `json:"version"`
}

type WorkTypeSnap struct {
	Name     string `json:"name"`
	Quantity int32  `json:"quantity"`
}

type EquipmentSnap struct {
	Name     string  `json:"name"`
	Quantity int32   `json:"quantity"`
	Serial   *string `json:"serial,omitempty"`
}

// FieldDelta - одно изменение поля в составе группового обновления.
type FieldDelta struct {
	Field    string `json:"field"`
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
}

// TaskHistory - строка append-only журнала. После вставки не меняется
// и не удаляется иначе как каскадом вместе с задачей.
type TaskHistory struct {
	ID     uint64 `json:"id" db:"id"`
	TaskID uint64 `json:"task_id" db:"task_id"`
	UserID uint64 `json:"user_id" db:"user_id"`

	// Статус задачи на момент события.
	Action    string `json:"action" db:"action"`
	EventType string `json:"event_type" db:"event_type"`

	FieldName *string `json:"field_name,omitempty" db:"field_name"`
	OldValue  *string `json:"old_value,omitempty" db:"old_value"`
	NewValue  *string `json:"new_value,omitempty" db:"new_value"`

	// Связанный объект события (например, отчёт или вложение).
	RelatedID   *uint64 `json:"related_id,omitempty" db:"related_id"`
	RelatedType *string `json:"related_type,omitempty" db:"related_type"`

	// Для групповых обновлений - сериализованный список FieldDelta.
	Comment *string `json:"comment,omitempty" db:"comment"`

	Snapshot          TaskSnapshot    `json:"snapshot" db:"snapshot"`
	WorkTypesSnapshot []WorkTypeSnap  `json:"work_types_snapshot" db:"work_types_snapshot"`
	EquipmentSnapshot []EquipmentSnap `json:"equipment_snapshot" db:"equipment_snapshot"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
