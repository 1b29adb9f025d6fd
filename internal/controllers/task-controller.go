// Файл: internal/controllers/task-controller.go
package controllers

import (
	"net/http"

	"dispatch-system/internal/dto"
	"dispatch-system/internal/services"
	"dispatch-system/pkg/constants"
	apperrors "dispatch-system/pkg/errors"
	"dispatch-system/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type TaskController struct {
	taskSvc    services.TaskServiceInterface
	historySvc services.HistoryServiceInterface
	exportSvc  services.ExportServiceInterface
	logger     *zap.Logger
}

func NewTaskController(
	taskSvc services.TaskServiceInterface,
	historySvc services.HistoryServiceInterface,
	exportSvc services.ExportServiceInterface,
	logger *zap.Logger,
) *TaskController {
	return &TaskController{
		taskSvc:    taskSvc,
		historySvc: historySvc,
		exportSvc:  exportSvc,
		logger:     logger,
	}
}

func (ctrl *TaskController) List(c echo.Context) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	var filter dto.TaskListFilterDTO
	if err := c.Bind(&filter); err != nil {
		return utils.ErrorResponse(c, apperrors.ErrBadRequest, ctrl.logger)
	}

	tasks, total, err := ctrl.taskSvc.List(c.Request().Context(), actor, filter)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, map[string]interface{}{
		"items": tasks,
		"total": total,
	}, "Список задач", http.StatusOK)
}

func (ctrl *TaskController) Get(c echo.Context) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	taskID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	task, err := ctrl.taskSvc.GetTask(c.Request().Context(), actor, taskID)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, task, "Задача", http.StatusOK)
}

func (ctrl *TaskController) Update(c echo.Context) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	taskID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	var payload dto.UpdateTaskDTO
	if err := c.Bind(&payload); err != nil {
		return utils.ErrorResponse(c, apperrors.ErrBadRequest, ctrl.logger)
	}
	if err := c.Validate(&payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	task, err := ctrl.taskSvc.UpdateTask(c.Request().Context(), actor, taskID, payload)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, task, "Задача обновлена", http.StatusOK)
}

// transition - общий обработчик переходов исполнителя.
func (ctrl *TaskController) transition(c echo.Context, transition string) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	taskID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	task, err := ctrl.taskSvc.Transition(c.Request().Context(), actor, taskID, transition)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, task, "Статус обновлён", http.StatusOK)
}

func (ctrl *TaskController) Accept(c echo.Context) error {
	return ctrl.transition(c, constants.TransitionAccept)
}

func (ctrl *TaskController) EnRoute(c echo.Context) error {
	return ctrl.transition(c, constants.TransitionEnRoute)
}

func (ctrl *TaskController) Arrive(c echo.Context) error {
	return ctrl.transition(c, constants.TransitionArrive)
}

func (ctrl *TaskController) Begin(c echo.Context) error {
	return ctrl.transition(c, constants.TransitionBegin)
}

func (ctrl *TaskController) Timeline(c echo.Context) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	taskID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	timeline, err := ctrl.historySvc.GetTimeline(c.Request().Context(), actor, taskID)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, timeline, "История задачи", http.StatusOK)
}

// ExportTimeline отдаёт историю задачи xlsx-файлом.
func (ctrl *TaskController) ExportTimeline(c echo.Context) error {
	actor, err := actorFromCtx(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	taskID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	buf, filename, err := ctrl.exportSvc.ExportTimelineXLSX(c.Request().Context(), actor, taskID)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
