package dto

type CreateUserDTO struct {
	Login          string `json:"login" validate:"required"`
	Password       string `json:"password" validate:"required,min=8"`
	Fio            string `json:"fio" validate:"required"`
	Role           string `json:"role" validate:"required,task_role"`
	TelegramChatID *int64 `json:"telegram_chat_id,omitempty"`
}

// ChangeRoleDTO - смена роли. Доступна только админу.
type ChangeRoleDTO struct {
	Role string `json:"role" validate:"required,task_role"`
}

type UserDTO struct {
	ID       uint64 `json:"id"`
	Login    string `json:"login"`
	Fio      string `json:"fio"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}
