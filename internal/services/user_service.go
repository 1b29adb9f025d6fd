package services

import (
	"context"
	"database/sql"

	"dispatch-system/internal/authz"
	"dispatch-system/internal/dto"
	"dispatch-system/internal/entities"
	"dispatch-system/internal/repositories"
	"dispatch-system/pkg/constants"
	apperrors "dispatch-system/pkg/errors"
	"dispatch-system/pkg/utils"

	"go.uber.org/zap"
)

type UserServiceInterface interface {
	CreateUser(ctx context.Context, actor authz.Actor, payload dto.CreateUserDTO) (*dto.UserDTO, error)
	ChangeRole(ctx context.Context, actor authz.Actor, userID uint64, payload dto.ChangeRoleDTO) error
	ListUsers(ctx context.Context, actor authz.Actor, role string) ([]dto.UserDTO, error)
}

type userService struct {
	userRepo repositories.UserRepositoryInterface
	logger   *zap.Logger
}

func NewUserService(userRepo repositories.UserRepositoryInterface, logger *zap.Logger) UserServiceInterface {
	return &userService{userRepo: userRepo, logger: logger}
}

func (s *userService) CreateUser(ctx context.Context, actor authz.Actor, payload dto.CreateUserDTO) (*dto.UserDTO, error) {
	if !authz.CanManageUsers(actor) {
		return nil, apperrors.Forbidden("управление пользователями доступно только администратору")
	}

	hash, err := utils.HashPassword(payload.Password)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		Login:    payload.Login,
		Fio:      payload.Fio,
		Password: hash,
		Role:     payload.Role,
		IsActive: true,
	}
	if payload.TelegramChatID != nil {
		user.TelegramChatID = sql.NullInt64{Int64: *payload.TelegramChatID, Valid: true}
	}

	id, err := s.userRepo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("создан пользователь",
		zap.Uint64("user_id", id), zap.String("role", payload.Role))
	return &dto.UserDTO{
		ID:       id,
		Login:    user.Login,
		Fio:      user.Fio,
		Role:     user.Role,
		IsActive: user.IsActive,
	}, nil
}

// ChangeRole меняет роль пользователя. Только админ; себя понизить нельзя,
// чтобы не остаться без администраторов.
func (s *userService) ChangeRole(ctx context.Context, actor authz.Actor, userID uint64, payload dto.ChangeRoleDTO) error {
	if !authz.CanManageUsers(actor) {
		return apperrors.Forbidden("смена роли доступна только администратору")
	}
	if userID == actor.ID && payload.Role != constants.RoleAdmin {
		return apperrors.PreconditionFailed("нельзя снять роль администратора с самого себя")
	}
	return s.userRepo.UpdateRole(ctx, userID, payload.Role)
}

func (s *userService) ListUsers(ctx context.Context, actor authz.Actor, role string) ([]dto.UserDTO, error) {
	// Список монтажников нужен логисту для назначения; полный список - админу.
	if !authz.CanManageUsers(actor) {
		if !authz.CanManageReferences(actor) || role != constants.RoleMontajnik {
			return nil, apperrors.Forbidden("список пользователей недоступен этой роли")
		}
	}
	if role != "" && !constants.IsKnownRole(role) {
		return nil, apperrors.ValidationFailed("неизвестная роль", nil)
	}

	users, err := s.userRepo.List(ctx, role)
	if err != nil {
		return nil, err
	}
	result := make([]dto.UserDTO, 0, len(users))
	for _, u := range users {
		result = append(result, dto.UserDTO{
			ID:       u.ID,
			Login:    u.Login,
			Fio:      u.Fio,
			Role:     u.Role,
			IsActive: u.IsActive,
		})
	}
	return result, nil
}
