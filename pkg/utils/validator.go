package utils

import (
	"net/http"

	apperrors "dispatch-system/pkg/errors"

	"github.com/go-playground/validator/v10"
)

// Validator - адаптер go-playground/validator под echo.Validator.
type Validator struct {
	validate *validator.Validate
}

func NewValidator(v *validator.Validate) *Validator {
	return &Validator{validate: v}
}

func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		fields := map[string]string{}
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
		}
		return apperrors.NewHttpError(http.StatusBadRequest, "Ошибка валидации входных данных", err, fields)
	}
	return nil
}
