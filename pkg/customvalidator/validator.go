package customvalidator

import (
	"dispatch-system/pkg/constants"

	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidations регистрирует доменные правила валидации
// в переданном экземпляре валидатора.
func RegisterCustomValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("task_role", isKnownRole); err != nil {
		return err
	}
	if err := v.RegisterValidation("assignment_type", isAssignmentType); err != nil {
		return err
	}
	if err := v.RegisterValidation("file_type", isFileType); err != nil {
		return err
	}
	return nil
}

func isKnownRole(fl validator.FieldLevel) bool {
	return constants.IsKnownRole(fl.Field().String())
}

func isAssignmentType(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == constants.AssignmentIndividual || s == constants.AssignmentBroadcast
}

func isFileType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case constants.FileTypePhoto, constants.FileTypeDocument, constants.FileTypeVideo:
		return true
	}
	return false
}
