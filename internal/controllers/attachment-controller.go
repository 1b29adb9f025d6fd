// Файл: internal/controllers/attachment-controller.go
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

type AttachmentController struct {
	attachmentSvc services.AttachmentServiceInterface
	logger        *zap.Logger
}

func NewAttachmentController(attachmentSvc services.AttachmentServiceInterface, logger *zap.Logger) *AttachmentController {
	return &AttachmentController{attachmentSvc: attachmentSvc, logger: logger}
}

func (ctrl *AttachmentController) CreateUpload(c echo.Context) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	var payload dto.CreateUploadDTO
	if err := c.Bind(&payload); err != nil {
		return utils.ErrorResponse(c, apperrors.ErrBadRequest, ctrl.logger)
	}
	if err := c.Validate(&payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	result, err := ctrl.attachmentSvc.CreateUpload(c.Request().Context(), actor, payload)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, result, "Загрузка начата", http.StatusCreated)
}

func (ctrl *AttachmentController) SignPart(c echo.Context) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	var payload dto.SignPartDTO
	if err := c.Bind(&payload); err != nil {
		return utils.ErrorResponse(c, apperrors.ErrBadRequest, ctrl.logger)
	}
	if err := c.Validate(&payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	url, err := ctrl.attachmentSvc.SignPart(c.Request().Context(), actor, payload)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, map[string]string{"url": url}, "URL части подписан", http.StatusOK)
}

func (ctrl *AttachmentController) CompleteUpload(c echo.Context) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	var payload dto.CompleteUploadDTO
	if err := c.Bind(&payload); err != nil {
		return utils.ErrorResponse(c, apperrors.ErrBadRequest, ctrl.logger)
	}
	if err := c.Validate(&payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	if err := ctrl.attachmentSvc.CompleteUpload(c.Request().Context(), actor, payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, nil, "Загрузка завершена", http.StatusOK)
}

func (ctrl *AttachmentController) AbortUpload(c echo.Context) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	var payload dto.SignPartDTO // storage_key + upload_id, part_number игнорируется
	if err := c.Bind(&payload); err != nil {
		return utils.ErrorResponse(c, apperrors.ErrBadRequest, ctrl.logger)
	}

	if err := ctrl.attachmentSvc.AbortUpload(c.Request().Context(), actor, payload.StorageKey, payload.UploadID); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, nil, "Загрузка прервана", http.StatusOK)
}

func (ctrl *AttachmentController) Add(c echo.Context) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	taskID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	var payload dto.NewAttachmentDTO
	if err := c.Bind(&payload); err != nil {
		return utils.ErrorResponse(c, apperrors.ErrBadRequest, ctrl.logger)
	}
	if err := c.Validate(&payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	attachment, err := ctrl.attachmentSvc.AddAttachment(c.Request().Context(), actor, taskID, payload)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, attachment, "Вложение добавлено", http.StatusCreated)
}

func (ctrl *AttachmentController) Remove(c echo.Context) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	attachmentID, err := parseIDParam(c, "attachmentId")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	if err := ctrl.attachmentSvc.RemoveAttachment(c.Request().Context(), actor, attachmentID); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, nil, "Вложение удалено", http.StatusOK)
}

func (ctrl *AttachmentController) List(c echo.Context) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	taskID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	attachments, err := ctrl.attachmentSvc.ListAttachments(c.Request().Context(), actor, taskID)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, attachments, "Вложения задачи", http.StatusOK)
}
