// Файл: internal/controllers/reference-controller.go
package controllers

import (
	"net/http"
	"strconv"

	"dispatch-system/internal/dto"
	"dispatch-system/internal/services"
	apperrors "dispatch-system/pkg/errors"
	"dispatch-system/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type ReferenceController struct {
	referenceSvc services.ReferenceServiceInterface
	logger       *zap.Logger
}

func NewReferenceController(referenceSvc services.ReferenceServiceInterface, logger *zap.Logger) *ReferenceController {
	return &ReferenceController{referenceSvc: referenceSvc, logger: logger}
}

// --- Виды работ ---

func (ctrl *ReferenceController) CreateWorkType(c echo.Context) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	var payload dto.SaveWorkTypeDTO
	if err := c.Bind(&payload); err != nil {
		return utils.ErrorResponse(c, apperrors.ErrBadRequest, ctrl.logger)
	}
	if err := c.Validate(&payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	wt, err := ctrl.referenceSvc.CreateWorkType(c.Request().Context(), actor, payload)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, wt, "Вид работ создан", http.StatusCreated)
}

func (ctrl *ReferenceController) UpdateWorkType(c echo.Context) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	var payload dto.UpdateWorkTypeDTO
	if err := c.Bind(&payload); err != nil {
		return utils.ErrorResponse(c, apperrors.ErrBadRequest, ctrl.logger)
	}

	wt, err := ctrl.referenceSvc.UpdateWorkType(c.Request().Context(), actor, id, payload)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, wt, "Вид работ обновлён", http.StatusOK)
}

func (ctrl *ReferenceController) ListWorkTypes(c echo.Context) error {
	onlyActive, _ := strconv.ParseBool(c.QueryParam("only_active"))
	workTypes, err := ctrl.referenceSvc.ListWorkTypes(c.Request().Context(), onlyActive)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, workTypes, "Виды работ", http.StatusOK)
}

func (ctrl *ReferenceController) DeleteWorkType(c echo.Context) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	if err := ctrl.referenceSvc.DeleteWorkType(c.Request().Context(), actor, id); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, nil, "Вид работ удалён", http.StatusOK)
}

// --- Оборудование ---

func (ctrl *ReferenceController) CreateEquipment(c echo.Context) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	var payload dto.SaveEquipmentDTO
	if err := c.Bind(&payload); err != nil {
		return utils.ErrorResponse(c, apperrors.ErrBadRequest, ctrl.logger)
	}
	if err := c.Validate(&payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	eq, err := ctrl.referenceSvc.CreateEquipment(c.Request().Context(), actor, payload)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, eq, "Оборудование создано", http.StatusCreated)
}

func (ctrl *ReferenceController) UpdateEquipment(c echo.Context) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	var payload dto.SaveEquipmentDTO
	if err := c.Bind(&payload); err != nil {
		return utils.ErrorResponse(c, apperrors.ErrBadRequest, ctrl.logger)
	}
	if err := c.Validate(&payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	eq, err := ctrl.referenceSvc.UpdateEquipment(c.Request().Context(), actor, id, payload)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, eq, "Оборудование обновлено", http.StatusOK)
}

func (ctrl *ReferenceController) ListEquipment(c echo.Context) error {
	equipment, err := ctrl.referenceSvc.ListEquipment(c.Request().Context())
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, equipment, "Оборудование", http.StatusOK)
}

func (ctrl *ReferenceController) DeleteEquipment(c echo.Context) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	if err := ctrl.referenceSvc.DeleteEquipment(c.Request().Context(), actor, id); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, nil, "Оборудование удалено", http.StatusOK)
}

// --- Компании и контактные лица ---

func (ctrl *ReferenceController) CreateCompany(c echo.Context) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	var payload dto.SaveCompanyDTO
	if err := c.Bind(&payload); err != nil {
		return utils.ErrorResponse(c, apperrors.ErrBadRequest, ctrl.logger)
	}
	if err := c.Validate(&payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	company, err := ctrl.referenceSvc.CreateCompany(c.Request().Context(), actor, payload)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, company, "Компания создана", http.StatusCreated)
}

func (ctrl *ReferenceController) UpdateCompany(c echo.Context) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	var payload dto.SaveCompanyDTO
	if err := c.Bind(&payload); err != nil {
		return utils.ErrorResponse(c, apperrors.ErrBadRequest, ctrl.logger)
	}
	if err := c.Validate(&payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	company, err := ctrl.referenceSvc.UpdateCompany(c.Request().Context(), actor, id, payload)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, company, "Компания обновлена", http.StatusOK)
}

func (ctrl *ReferenceController) ListCompanies(c echo.Context) error {
	companies, err := ctrl.referenceSvc.ListCompanies(c.Request().Context())
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, companies, "Компании", http.StatusOK)
}

func (ctrl *ReferenceController) DeleteCompany(c echo.Context) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	if err := ctrl.referenceSvc.DeleteCompany(c.Request().Context(), actor, id); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, nil, "Компания удалена вместе с контактами", http.StatusOK)
}

func (ctrl *ReferenceController) CreateContact(c echo.Context) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	var payload dto.SaveContactPersonDTO
	if err := c.Bind(&payload); err != nil {
		return utils.ErrorResponse(c, apperrors.ErrBadRequest, ctrl.logger)
	}
	if err := c.Validate(&payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	contact, err := ctrl.referenceSvc.CreateContact(c.Request().Context(), actor, payload)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, contact, "Контактное лицо создано", http.StatusCreated)
}

func (ctrl *ReferenceController) UpdateContact(c echo.Context) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	var payload dto.SaveContactPersonDTO
	if err := c.Bind(&payload); err != nil {
		return utils.ErrorResponse(c, apperrors.ErrBadRequest, ctrl.logger)
	}
	if err := c.Validate(&payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	contact, err := ctrl.referenceSvc.UpdateContact(c.Request().Context(), actor, id, payload)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, contact, "Контактное лицо обновлено", http.StatusOK)
}

func (ctrl *ReferenceController) ListContacts(c echo.Context) error {
	companyID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	contacts, err := ctrl.referenceSvc.ListContacts(c.Request().Context(), companyID)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, contacts, "Контактные лица", http.StatusOK)
}

func (ctrl *ReferenceController) DeleteContact(c echo.Context) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	if err := ctrl.referenceSvc.DeleteContact(c.Request().Context(), actor, id); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, nil, "Контактное лицо удалено", http.StatusOK)
}
