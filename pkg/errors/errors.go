package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Коды ошибок (kind). Стабильные строки, по ним клиент различает причину отказа.
const (
	KindAuthRequired        = "auth_required"
	KindAuthInvalid         = "auth_invalid"
	KindForbidden           = "forbidden"
	KindNotFound            = "not_found"
	KindConflict            = "conflict"
	KindPreconditionFailed  = "precondition_failed"
	KindValidationFailed    = "validation_failed"
	KindExternalUnavailable = "external_unavailable"
	KindInternal            = "internal"
)

var (
	// JWT и токены
	ErrInvalidSigningMethod = fmt.Errorf("неверный метод подписи токена")
	ErrInvalidToken         = fmt.Errorf("недопустимый токен")
	ErrTokenExpired         = fmt.Errorf("срок действия токена истёк")
	ErrTokenRevoked         = fmt.Errorf("токен отозван")
	ErrTokenIsNotRefresh    = fmt.Errorf("токен не является refresh-токеном")
	ErrTokenIsNotAccess     = fmt.Errorf("токен не является access-токеном")

	// Авторизация
	ErrEmptyAuthHeader    = fmt.Errorf("заголовок авторизации отсутствует")
	ErrInvalidAuthHeader  = fmt.Errorf("неверный формат заголовка авторизации")
	ErrInvalidCredentials = fmt.Errorf("неверные учётные данные")
	ErrUnauthorized       = fmt.Errorf("неавторизован")
	ErrForbidden          = fmt.Errorf("доступ запрещён")

	// Контекст
	ErrUserIDNotFoundInContext = fmt.Errorf("UserID не найден в контексте запроса")
	ErrInvalidUserID           = fmt.Errorf("недопустимый UserID")

	// Общие
	ErrNotFound           = fmt.Errorf("запись не найдена")
	ErrBadRequest         = fmt.Errorf("неверный запрос")
	ErrConflict           = fmt.Errorf("конфликт данных")
	ErrVersionMismatch    = fmt.Errorf("задача была изменена параллельно, повторите запрос")
	ErrAlreadyTaken       = fmt.Errorf("задача уже взята другим монтажником")
	ErrPreconditionFailed = fmt.Errorf("операция недопустима в текущем состоянии")
)

// HttpError - основной тип ошибки сервиса: HTTP-статус, стабильный kind
// и человекочитаемое сообщение. Исходная ошибка хранится для логов и
// никогда не уходит клиенту.
type HttpError struct {
	Code    int         `json:"-"`
	Kind    string      `json:"kind"`
	Message string      `json:"message"`
	Err     error       `json:"-"`
	Details interface{} `json:"details,omitempty"`
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error {
	return e.Err
}

func NewHttpError(code int, message string, err error, details interface{}) *HttpError {
	return &HttpError{
		Code:    code,
		Kind:    kindForStatus(code),
		Message: message,
		Err:     err,
		Details: details,
	}
}

func kindForStatus(code int) string {
	switch code {
	case http.StatusUnauthorized:
		return KindAuthInvalid
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	case http.StatusUnprocessableEntity:
		return KindPreconditionFailed
	case http.StatusBadRequest:
		return KindValidationFailed
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		return KindExternalUnavailable
	default:
		return KindInternal
	}
}

// Конструкторы по таксономии.

func AuthRequired(message string) *HttpError {
	return &HttpError{Code: http.StatusUnauthorized, Kind: KindAuthRequired, Message: message}
}

func AuthInvalid(message string, err error) *HttpError {
	return &HttpError{Code: http.StatusUnauthorized, Kind: KindAuthInvalid, Message: message, Err: err}
}

func Forbidden(message string) *HttpError {
	return &HttpError{Code: http.StatusForbidden, Kind: KindForbidden, Message: message}
}

func NotFound(message string) *HttpError {
	return &HttpError{Code: http.StatusNotFound, Kind: KindNotFound, Message: message}
}

func Conflict(message string, err error) *HttpError {
	return &HttpError{Code: http.StatusConflict, Kind: KindConflict, Message: message, Err: err}
}

func PreconditionFailed(message string) *HttpError {
	return &HttpError{Code: http.StatusUnprocessableEntity, Kind: KindPreconditionFailed, Message: message}
}

func ValidationFailed(message string, details interface{}) *HttpError {
	return &HttpError{Code: http.StatusBadRequest, Kind: KindValidationFailed, Message: message, Details: details}
}

func ExternalUnavailable(message string, err error) *HttpError {
	return &HttpError{Code: http.StatusBadGateway, Kind: KindExternalUnavailable, Message: message, Err: err}
}

func Internal(err error) *HttpError {
	return &HttpError{Code: http.StatusInternalServerError, Kind: KindInternal, Message: "Внутренняя ошибка сервера", Err: err}
}

// AsHttpError приводит произвольную ошибку к *HttpError.
// Сентинельные ошибки получают свой статус, всё остальное - internal.
func AsHttpError(err error) *HttpError {
	var httpErr *HttpError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return NotFound(err.Error())
	case errors.Is(err, ErrForbidden):
		return Forbidden(err.Error())
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrTokenRevoked),
		errors.Is(err, ErrInvalidCredentials):
		return AuthInvalid(err.Error(), nil)
	case errors.Is(err, ErrEmptyAuthHeader), errors.Is(err, ErrInvalidAuthHeader):
		return AuthRequired(err.Error())
	case errors.Is(err, ErrConflict),
		errors.Is(err, ErrVersionMismatch),
		errors.Is(err, ErrAlreadyTaken):
		return Conflict(err.Error(), nil)
	case errors.Is(err, ErrPreconditionFailed):
		return PreconditionFailed(err.Error())
	case errors.Is(err, ErrBadRequest):
		return ValidationFailed(err.Error(), nil)
	default:
		return Internal(err)
	}
}

// Кастомные типы ошибок
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string { return e.Message }

func NewInvalidInputError(format string, args ...interface{}) error {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}
