// Файл: internal/controllers/report-controller.go
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

type ReportController struct {
	reviewSvc services.ReviewServiceInterface
	logger    *zap.Logger
}

func NewReportController(reviewSvc services.ReviewServiceInterface, logger *zap.Logger) *ReportController {
	return &ReportController{reviewSvc: reviewSvc, logger: logger}
}

// Submit отправляет отчёт на проверку; из статуса returned это
// повторная отправка того же отчёта.
func (ctrl *ReportController) Submit(c echo.Context) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	taskID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	var payload dto.SaveReportDTO
	if err := c.Bind(&payload); err != nil {
		return utils.ErrorResponse(c, apperrors.ErrBadRequest, ctrl.logger)
	}
	if err := c.Validate(&payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	report, err := ctrl.reviewSvc.SubmitReport(c.Request().Context(), actor, taskID, payload)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, report, "Отчёт отправлен на проверку", http.StatusCreated)
}

func (ctrl *ReportController) Review(c echo.Context) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	taskID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	var payload dto.ReviewReportDTO
	if err := c.Bind(&payload); err != nil {
		return utils.ErrorResponse(c, apperrors.ErrBadRequest, ctrl.logger)
	}
	if err := c.Validate(&payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	report, err := ctrl.reviewSvc.Review(c.Request().Context(), actor, taskID, payload)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, report, "Решение сохранено", http.StatusOK)
}

func (ctrl *ReportController) List(c echo.Context) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	taskID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	reports, err := ctrl.reviewSvc.GetReports(c.Request().Context(), actor, taskID)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, reports, "Отчёты по задаче", http.StatusOK)
}
