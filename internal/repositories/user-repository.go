// Файл: internal/repositories/user-repository.go
package repositories

import (
	"context"
	"errors"

	"dispatch-system/internal/entities"
	apperrors "dispatch-system/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type UserRepositoryInterface interface {
	Create(ctx context.Context, user *entities.User) (uint64, error)
	FindByID(ctx context.Context, id uint64) (*entities.User, error)
	FindByLogin(ctx context.Context, login string) (*entities.User, error)
	UpdateRole(ctx context.Context, id uint64, role string) error
	List(ctx context.Context, role string) ([]entities.User, error)
}

type userRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewUserRepository(storage *pgxpool.Pool, logger *zap.Logger) UserRepositoryInterface {
	return &userRepository{storage: storage, logger: logger}
}

const userColumns = `id, login, fio, password, role, is_active, telegram_chat_id, created_at, updated_at`

func (r *userRepository) scanUser(row pgx.Row) (*entities.User, error) {
	var u entities.User
	err := row.Scan(&u.ID, &u.Login, &u.Fio, &u.Password, &u.Role, &u.IsActive,
		&u.TelegramChatID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) Create(ctx context.Context, user *entities.User) (uint64, error) {
	query := `
		INSERT INTO users (login, fio, password, role, is_active, telegram_chat_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	var id uint64
	err := r.storage.QueryRow(ctx, query,
		user.Login, user.Fio, user.Password, user.Role, user.IsActive, user.TelegramChatID,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505 - нарушение уникальности login.
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, apperrors.Conflict("пользователь с таким логином уже существует", err)
		}
		return 0, err
	}
	return id, nil
}

func (r *userRepository) FindByID(ctx context.Context, id uint64) (*entities.User, error) {
	return r.scanUser(r.storage.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *userRepository) FindByLogin(ctx context.Context, login string) (*entities.User, error) {
	return r.scanUser(r.storage.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE login = $1`, login))
}

func (r *userRepository) UpdateRole(ctx context.Context, id uint64, role string) error {
	tag, err := r.storage.Exec(ctx,
		`UPDATE users SET role = $2, updated_at = now() WHERE id = $1`, id, role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *userRepository) List(ctx context.Context, role string) ([]entities.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ($1 = '' OR role = $1::user_role) ORDER BY fio`
	rows, err := r.storage.Query(ctx, query, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []entities.User
	for rows.Next() {
		var u entities.User
		if err := rows.Scan(&u.ID, &u.Login, &u.Fio, &u.Password, &u.Role, &u.IsActive,
			&u.TelegramChatID, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
