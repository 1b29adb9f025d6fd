// Файл: internal/controllers/auth-controller.go
package controllers

import (
	"net/http"
	"time"

	"dispatch-system/internal/dto"
	"dispatch-system/internal/services"
	"dispatch-system/pkg/contextkeys"
	apperrors "dispatch-system/pkg/errors"
	"dispatch-system/pkg/service"
	"dispatch-system/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AuthController struct {
	authSvc services.AuthServiceInterface
	jwtSvc  service.JWTService
	logger  *zap.Logger
}

func NewAuthController(authSvc services.AuthServiceInterface, jwtSvc service.JWTService, logger *zap.Logger) *AuthController {
	return &AuthController{authSvc: authSvc, jwtSvc: jwtSvc, logger: logger}
}

func (ctrl *AuthController) Login(c echo.Context) error {
	var payload dto.LoginDTO
	if err := c.Bind(&payload); err != nil {
		return utils.ErrorResponse(c, apperrors.ErrBadRequest, ctrl.logger)
	}
	if err := c.Validate(&payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	result, err := ctrl.authSvc.Login(c.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, result, "Вход выполнен", http.StatusOK)
}

func (ctrl *AuthController) Refresh(c echo.Context) error {
	var payload dto.RefreshDTO
	if err := c.Bind(&payload); err != nil {
		return utils.ErrorResponse(c, apperrors.ErrBadRequest, ctrl.logger)
	}
	if err := c.Validate(&payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	tokens, err := ctrl.authSvc.Refresh(c.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, tokens, "Токены обновлены", http.StatusOK)
}

// Logout отзывает текущий access-токен и, если клиент его передал,
// парный refresh-токен.
func (ctrl *AuthController) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	tokenID, _ := ctx.Value(contextkeys.TokenIDKey).(string)
	if tokenID == "" {
		return utils.ErrorResponse(c, apperrors.ErrUnauthorized, ctrl.logger)
	}

	var payload dto.RefreshDTO
	_ = c.Bind(&payload) // refresh-токен в теле необязателен

	expiresAt := time.Now().Add(ctrl.jwtSvc.GetAccessTokenTTL())
	if err := ctrl.authSvc.Logout(ctx, tokenID, expiresAt, payload.RefreshToken); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, nil, "Выход выполнен", http.StatusOK)
}
