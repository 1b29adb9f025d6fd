package controllers

import (
	"strconv"

	"dispatch-system/internal/authz"
	apperrors "dispatch-system/pkg/errors"
	"dispatch-system/pkg/utils"

	"github.com/labstack/echo/v4"
)

// actorFromCtx достаёт аутентифицированного пользователя из контекста запроса.
func actorFromCtx(c echo.Context) (authz.Actor, error) {
	ctx := c.Request().Context()
	userID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return authz.Actor{}, err
	}
	role, err := utils.GetUserRoleFromCtx(ctx)
	if err != nil {
		return authz.Actor{}, err
	}
	return authz.Actor{ID: userID, Role: role}, nil
}

func parseIDParam(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.ValidationFailed("некорректный идентификатор в пути запроса", nil)
	}
	return id, nil
}
