// Файл: internal/services/auth_service.go
package services

import (
	"context"
	"time"

	"dispatch-system/internal/dto"
	"dispatch-system/internal/repositories"
	apperrors "dispatch-system/pkg/errors"
	"dispatch-system/pkg/service"
	"dispatch-system/pkg/utils"

	"go.uber.org/zap"
)

type AuthServiceInterface interface {
	Login(ctx context.Context, payload dto.LoginDTO) (*dto.LoginResponseDTO, error)
	Refresh(ctx context.Context, payload dto.RefreshDTO) (*dto.TokenPairDTO, error)
	Logout(ctx context.Context, accessTokenID string, accessExpiresAt time.Time, refreshToken string) error
}

type authService struct {
	userRepo  repositories.UserRepositoryInterface
	cacheRepo *repositories.RedisCacheRepository
	jwtSvc    service.JWTService
	logger    *zap.Logger
}

func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	cacheRepo *repositories.RedisCacheRepository,
	jwtSvc service.JWTService,
	logger *zap.Logger,
) AuthServiceInterface {
	return &authService{
		userRepo:  userRepo,
		cacheRepo: cacheRepo,
		jwtSvc:    jwtSvc,
		logger:    logger,
	}
}

func (s *authService) Login(ctx context.Context, payload dto.LoginDTO) (*dto.LoginResponseDTO, error) {
	user, err := s.userRepo.FindByLogin(ctx, payload.Login)
	if err != nil {
		// Не раскрываем, существует ли логин.
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.Forbidden("учётная запись деактивирована")
	}
	if !utils.CheckPassword(user.Password, payload.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	accessToken, refreshToken, err := s.jwtSvc.GenerateTokens(user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	s.logger.Info("пользователь вошёл в систему",
		zap.Uint64("user_id", user.ID), zap.String("role", user.Role))
	return &dto.LoginResponseDTO{
		User: dto.AuthUserDTO{
			ID:    user.ID,
			Login: user.Login,
			Fio:   user.Fio,
			Role:  user.Role,
		},
		Tokens: dto.TokenPairDTO{AccessToken: accessToken, RefreshToken: refreshToken},
	}, nil
}

// Refresh ротирует пару токенов: старый refresh уходит в чёрный список
// на остаток своего срока жизни.
func (s *authService) Refresh(ctx context.Context, payload dto.RefreshDTO) (*dto.TokenPairDTO, error) {
	claims, err := s.jwtSvc.ValidateToken(payload.RefreshToken)
	if err != nil {
		return nil, err
	}
	if !claims.IsRefreshToken {
		return nil, apperrors.ErrTokenIsNotRefresh
	}

	revoked, err := s.cacheRepo.Contains(ctx, claims.ID)
	if err != nil {
		s.logger.Warn("чёрный список токенов недоступен, продолжаем без проверки", zap.Error(err))
	} else if revoked {
		return nil, apperrors.ErrTokenRevoked
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}
	if !user.IsActive {
		return nil, apperrors.Forbidden("учётная запись деактивирована")
	}

	if claims.ExpiresAt != nil {
		if ttl := time.Until(claims.ExpiresAt.Time); ttl > 0 {
			if err := s.cacheRepo.Add(ctx, claims.ID, ttl); err != nil {
				s.logger.Warn("не удалось отозвать использованный refresh-токен", zap.Error(err))
			}
		}
	}

	accessToken, refreshToken, err := s.jwtSvc.GenerateTokens(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &dto.TokenPairDTO{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Logout отзывает access-токен текущей сессии и, если передан,
// парный refresh-токен.
func (s *authService) Logout(ctx context.Context, accessTokenID string, accessExpiresAt time.Time, refreshToken string) error {
	if ttl := time.Until(accessExpiresAt); ttl > 0 {
		if err := s.cacheRepo.Add(ctx, accessTokenID, ttl); err != nil {
			return apperrors.ExternalUnavailable("не удалось отозвать токен", err)
		}
	}

	if refreshToken != "" {
		claims, err := s.jwtSvc.ValidateToken(refreshToken)
		if err == nil && claims.IsRefreshToken && claims.ExpiresAt != nil {
			if ttl := time.Until(claims.ExpiresAt.Time); ttl > 0 {
				if err := s.cacheRepo.Add(ctx, claims.ID, ttl); err != nil {
					s.logger.Warn("не удалось отозвать refresh-токен", zap.Error(err))
				}
			}
		}
	}
	return nil
}
