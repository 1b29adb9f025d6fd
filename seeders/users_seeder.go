// Файл: seeders/users_seeder.go
package seeders

import (
	"context"
	"fmt"
	"log"
	"os"

	"dispatch-system/pkg/constants"
	"dispatch-system/pkg/utils"

	"github.com/jackc/pgx/v5/pgxpool"
)

func seedAdmin(ctx context.Context, db *pgxpool.Pool) error {
	login := "admin"
	var userID uint64
	err := db.QueryRow(ctx, "SELECT id FROM users WHERE login = $1", login).Scan(&userID)
	if err == nil {
		log.Println("    - Администратор уже существует. Пропускаем.")
		return nil
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin"
		log.Println("    - ADMIN_PASSWORD не задан, используется пароль по умолчанию 'admin'.")
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("не удалось захешировать пароль администратора: %w", err)
	}

	_, err = db.Exec(ctx,
		`INSERT INTO users (login, fio, password, role) VALUES ($1, $2, $3, $4)`,
		login, "Администратор системы", hash, constants.RoleAdmin)
	if err != nil {
		return fmt.Errorf("не удалось создать администратора: %w", err)
	}
	log.Println("    - Администратор создан (login: admin).")
	return nil
}

var demoUsers = []struct {
	Login string
	Fio   string
	Role  string
}{
	{Login: "logist", Fio: "Логистова Лариса Л.", Role: constants.RoleLogist},
	{Login: "montajnik1", Fio: "Монтажников Михаил М.", Role: constants.RoleMontajnik},
	{Login: "montajnik2", Fio: "Установщиков Игорь И.", Role: constants.RoleMontajnik},
	{Login: "tech_supp", Fio: "Поддержкин Тимур Т.", Role: constants.RoleTechSupp},
}

func seedDemoUsers(ctx context.Context, db *pgxpool.Pool) error {
	hash, err := utils.HashPassword("password")
	if err != nil {
		return err
	}
	for _, u := range demoUsers {
		tag, err := db.Exec(ctx,
			`INSERT INTO users (login, fio, password, role)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (login) DO NOTHING`,
			u.Login, u.Fio, hash, u.Role)
		if err != nil {
			return fmt.Errorf("не удалось создать пользователя %s: %w", u.Login, err)
		}
		if tag.RowsAffected() > 0 {
			log.Printf("    - Пользователь %s (%s) создан.", u.Login, u.Role)
		}
	}
	return nil
}
