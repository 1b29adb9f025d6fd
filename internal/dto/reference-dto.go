package dto

import "github.com/aarondl/null/v8"

type SaveWorkTypeDTO struct {
	Name               string   `json:"name" validate:"required"`
	ClientPrice        float64  `json:"client_price" validate:"required,min=0"`
	InstallerPrice     *float64 `json:"installer_price,omitempty" validate:"omitempty,min=0"`
	RequiresTechReview bool     `json:"requires_tech_review"`
	IsActive           bool     `json:"is_active"`
}

type UpdateWorkTypeDTO struct {
	Name               null.String  `json:"name"`
	ClientPrice        null.Float64 `json:"client_price"`
	InstallerPrice     null.Float64 `json:"installer_price"`
	RequiresTechReview null.Bool    `json:"requires_tech_review"`
	IsActive           null.Bool    `json:"is_active"`
}

type SaveEquipmentDTO struct {
	Name      string  `json:"name" validate:"required"`
	Category  string  `json:"category"`
	UnitPrice float64 `json:"unit_price" validate:"min=0"`
}

type SaveCompanyDTO struct {
	Name string `json:"name" validate:"required"`
}

type SaveContactPersonDTO struct {
	CompanyID uint64 `json:"company_id" validate:"required"`
	Fio       string `json:"fio" validate:"required"`
	Phone     string `json:"phone"`
}
