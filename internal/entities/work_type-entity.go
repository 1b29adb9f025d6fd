package entities

import "time"

type WorkType struct {
	ID          uint64  `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	ClientPrice float64 `json:"client_price" db:"client_price"`
	// Вознаграждение монтажника; NULL - берётся client_price.
	InstallerPrice     *float64  `json:"installer_price,omitempty" db:"installer_price"`
	RequiresTechReview bool      `json:"requires_tech_review" db:"requires_tech_review"`
	IsActive           bool      `json:"is_active" db:"is_active"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
}

// EffectiveInstallerPrice возвращает цену монтажника с фолбэком на клиентскую.
func (wt *WorkType) EffectiveInstallerPrice() float64 {
	if wt.InstallerPrice != nil {
		return *wt.InstallerPrice
	}
	return wt.ClientPrice
}
