package entities

import "time"

type ClientCompany struct {
	ID        uint64    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ContactPerson принадлежит ровно одной компании; удаление компании
// каскадно удаляет её контактов.
type ContactPerson struct {
	ID        uint64    `json:"id" db:"id"`
	CompanyID uint64    `json:"company_id" db:"company_id"`
	Fio       string    `json:"fio" db:"fio"`
	Phone     string    `json:"phone" db:"phone"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
