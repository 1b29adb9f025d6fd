package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SeedCoreDictionaries наполняет справочники, не имеющие зависимостей.
func SeedCoreDictionaries(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("▶️  Запуск наполнения справочников...")

	if err := seedWorkTypes(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения видов работ: %v", err)
	}
	if err := seedEquipment(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения оборудования: %v", err)
	}
	if err := seedCompanies(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения компаний: %v", err)
	}
	log.Println("✅ Наполнение справочников завершено!")
}

// SeedUsers создаёт администратора и демонстрационные учётные записи.
func SeedUsers(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("▶️  Запуск создания пользователей...")

	if err := seedAdmin(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка создания администратора: %v", err)
	}
	if err := seedDemoUsers(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка создания демо-пользователей: %v", err)
	}
	log.Println("✅ Создание пользователей завершено!")
}
