package dto

import "dispatch-system/internal/entities"

type ShortUserDTO struct {
	ID   uint64 `json:"id"`
	Fio  string `json:"fio"`
	Role string `json:"role"`
}

// TimelineEventDTO - одно событие истории задачи для фронтенда:
// человекочитаемые строки плюс сырые данные среза.
type TimelineEventDTO struct {
	ID        uint64                   `json:"id"`
	EventType string                   `json:"event_type"`
	Action    string                   `json:"action"`
	Actor     ShortUserDTO             `json:"actor"`
	Lines     []string                 `json:"lines"`
	FieldName *string                  `json:"field_name,omitempty"`
	OldValue  *string                  `json:"old_value,omitempty"`
	NewValue  *string                  `json:"new_value,omitempty"`
	Snapshot  entities.TaskSnapshot    `json:"snapshot"`
	WorkTypes []entities.WorkTypeSnap  `json:"work_types_snapshot"`
	Equipment []entities.EquipmentSnap `json:"equipment_snapshot"`
	CreatedAt string                   `json:"created_at"`
}
