package middleware

import (
	"context"
	"strings"

	"dispatch-system/pkg/contextkeys"
	apperrors "dispatch-system/pkg/errors"
	"dispatch-system/pkg/service"
	"dispatch-system/pkg/utils"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// BlacklistChecker - чёрный список отозванных токенов (Redis).
// Семантика fail-open: если кеш недоступен, ядро работает без него.
type BlacklistChecker interface {
	Contains(ctx context.Context, tokenID string) (bool, error)
}

type AuthMiddleware struct {
	jwtService service.JWTService
	blacklist  BlacklistChecker
	logger     *zap.Logger
}

func NewAuthMiddleware(jwtSvc service.JWTService, blacklist BlacklistChecker, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtSvc,
		blacklist:  blacklist,
		logger:     logger,
	}
}

func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return utils.ErrorResponse(c, apperrors.ErrEmptyAuthHeader, m.logger)
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return utils.ErrorResponse(c, apperrors.ErrInvalidAuthHeader, m.logger)
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			m.logger.Warn("ошибка валидации токена", zap.Error(err))
			return utils.ErrorResponse(c, err, m.logger)
		}

		if claims.IsRefreshToken {
			return utils.ErrorResponse(c, apperrors.ErrTokenIsNotAccess, m.logger)
		}

		if m.blacklist != nil && claims.ID != "" {
			revoked, err := m.blacklist.Contains(c.Request().Context(), claims.ID)
			if err != nil && err != redis.Nil {
				// Кеш лежит - пропускаем без проверки.
				m.logger.Warn("чёрный список токенов недоступен, продолжаем без проверки", zap.Error(err))
			} else if revoked {
				return utils.ErrorResponse(c, apperrors.ErrTokenRevoked, m.logger)
			}
		}

		ctx := c.Request().Context()
		ctx = context.WithValue(ctx, contextkeys.UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, contextkeys.UserRoleKey, claims.Role)
		ctx = context.WithValue(ctx, contextkeys.TokenIDKey, claims.ID)
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}
