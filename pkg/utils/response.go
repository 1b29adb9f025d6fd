package utils

import (
	"net/http"

	apperrors "dispatch-system/pkg/errors"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type HttpResponse struct {
	Status  bool        `json:"status"`
	Body    interface{} `json:"body,omitempty"`
	Kind    string      `json:"kind,omitempty"`
	Message string      `json:"message"`
}

func SuccessResponse(ctx echo.Context, body interface{}, message string, code int) error {
	return ctx.JSON(code, &HttpResponse{
		Status:  true,
		Body:    body,
		Message: message,
	})
}

// ErrorResponse приводит ошибку к HttpError и отдаёт клиенту стабильный kind
// и сообщение. Детали internal-ошибок остаются только в логе.
func ErrorResponse(ctx echo.Context, err error, logger *zap.Logger) error {
	httpErr := apperrors.AsHttpError(err)

	if httpErr.Code >= http.StatusInternalServerError {
		logger.Error("внутренняя ошибка",
			zap.String("uri", ctx.Request().RequestURI),
			zap.Error(err),
		)
	}

	return ctx.JSON(httpErr.Code, &HttpResponse{
		Status:  false,
		Kind:    httpErr.Kind,
		Message: httpErr.Message,
	})
}
