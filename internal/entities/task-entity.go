package entities

import "time"

// Task - центральный агрегат. Связи - только внешние ключи, без объектных
// графов в памяти; связанные сущности дотягиваются отдельными запросами.
type Task struct {
	ID        uint64 `json:"id" db:"id"`
	CreatorID uint64 `json:"creator_id" db:"creator_id"`

	AssignedUserID *uint64 `json:"assigned_user_id,omitempty" db:"assigned_user_id"`

	// company_id всегда равен компании контакта, пока контакт установлен;
	// очищаются оба поля вместе.
	ContactPersonID *uint64 `json:"contact_person_id,omitempty" db:"contact_person_id"`
	CompanyID       *uint64 `json:"company_id,omitempty" db:"company_id"`

	ScheduledAt *time.Time `json:"scheduled_at,omitempty" db:"scheduled_at"`
	Address     string     `json:"address" db:"address"`
	VehicleInfo string     `json:"vehicle_info" db:"vehicle_info"`
	Comment     string     `json:"comment" db:"comment"`

	// Производные суммы по выбранным видам работ; от клиента не принимаются.
	ClientPrice     float64 `json:"client_price" db:"client_price"`
	InstallerReward float64 `json:"installer_reward" db:"installer_reward"`

	PhotoRequired  bool   `json:"photo_required" db:"photo_required"`
	AssignmentType string `json:"assignment_type" db:"assignment_type"`

	IsDraft bool   `json:"is_draft" db:"is_draft"`
	Status  string `json:"status" db:"status"`

	// Монотонная версия для оптимистической блокировки.
	Version uint64 `json:"version" db:"version"`

	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty" db:"accepted_at"`
	StartedAt   *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// TaskWork - связь задачи с видом работ. Количество - учётная величина,
// на цены не влияет.
type TaskWork struct {
	ID         uint64 `json:"id" db:"id"`
	TaskID     uint64 `json:"task_id" db:"task_id"`
	WorkTypeID uint64 `json:"work_type_id" db:"work_type_id"`
	Quantity   int32  `json:"quantity" db:"quantity"`
}

type TaskEquipment struct {
	ID          uint64  `json:"id" db:"id"`
	TaskID      uint64  `json:"task_id" db:"task_id"`
	EquipmentID uint64  `json:"equipment_id" db:"equipment_id"`
	Quantity    int32   `json:"quantity" db:"quantity"`
	SerialNumber *string `json:"serial_number,omitempty" db:"serial_number"`
}

// BroadcastResponse - отклик монтажника на broadcast-задачу.
// is_first=true - победитель гонки, не более одного на задачу.
type BroadcastResponse struct {
	ID        uint64    `json:"id" db:"id"`
	TaskID    uint64    `json:"task_id" db:"task_id"`
	UserID    uint64    `json:"user_id" db:"user_id"`
	IsFirst   bool      `json:"is_first" db:"is_first"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
