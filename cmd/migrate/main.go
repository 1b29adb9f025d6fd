// Файл: cmd/migrate/main.go
// Применение миграций: go run ./cmd/migrate [up|down|status]
package main

import (
	"database/sql"
	"log"
	"os"

	"github.com/pressly/goose/v3"

	"dispatch-system/pkg/config"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	cfg := config.New()

	db, err := sql.Open("pgx", cfg.Postgres.DSN)
	if err != nil {
		log.Fatalf("не удалось открыть соединение с БД: %v", err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("goose: %v", err)
	}

	switch command {
	case "up":
		err = goose.Up(db, "migrations")
	case "down":
		err = goose.Down(db, "migrations")
	case "status":
		err = goose.Status(db, "migrations")
	default:
		log.Fatalf("неизвестная команда %q, ожидается up, down или status", command)
	}
	if err != nil {
		log.Fatalf("goose %s: %v", command, err)
	}
	log.Printf("goose %s: выполнено", command)
}
