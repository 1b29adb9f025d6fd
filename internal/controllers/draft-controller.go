// Файл: internal/controllers/draft-controller.go
package controllers

import (
	"net/http"

	"dispatch-system/internal/dto"
	"dispatch-system/internal/services"
	apperrors "dispatch-system/pkg/errors"
	"dispatch-system/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type DraftController struct {
	draftSvc services.DraftServiceInterface
	logger   *zap.Logger
}

func NewDraftController(draftSvc services.DraftServiceInterface, logger *zap.Logger) *DraftController {
	return &DraftController{draftSvc: draftSvc, logger: logger}
}

func (ctrl *DraftController) Create(c echo.Context) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	var payload dto.SaveDraftDTO
	if err := c.Bind(&payload); err != nil {
		return utils.ErrorResponse(c, apperrors.ErrBadRequest, ctrl.logger)
	}
	if err := c.Validate(&payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	task, err := ctrl.draftSvc.CreateDraft(c.Request().Context(), actor, payload)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, task, "Черновик создан", http.StatusCreated)
}

func (ctrl *DraftController) Update(c echo.Context) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	taskID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	var payload dto.SaveDraftDTO
	if err := c.Bind(&payload); err != nil {
		return utils.ErrorResponse(c, apperrors.ErrBadRequest, ctrl.logger)
	}
	if err := c.Validate(&payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	task, err := ctrl.draftSvc.UpdateDraft(c.Request().Context(), actor, taskID, payload)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, task, "Черновик обновлён", http.StatusOK)
}

func (ctrl *DraftController) StageAttachments(c echo.Context) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	taskID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	var payload dto.StageAttachmentsDTO
	if err := c.Bind(&payload); err != nil {
		return utils.ErrorResponse(c, apperrors.ErrBadRequest, ctrl.logger)
	}
	if err := c.Validate(&payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	if err := ctrl.draftSvc.StageAttachments(c.Request().Context(), actor, taskID, payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, nil, "Вложения обновлены", http.StatusOK)
}

func (ctrl *DraftController) Publish(c echo.Context) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	taskID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	task, err := ctrl.draftSvc.Publish(c.Request().Context(), actor, taskID)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, task, "Задача опубликована", http.StatusOK)
}

func (ctrl *DraftController) Discard(c echo.Context) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	taskID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	if err := ctrl.draftSvc.Discard(c.Request().Context(), actor, taskID); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, nil, "Черновик удалён", http.StatusOK)
}
