package main

import (
	"context"
	"flag"
	"log"

	"dispatch-system/pkg/config"
	"dispatch-system/pkg/database/postgresql"
	"dispatch-system/seeders"
)

func main() {
	log.Println("======================================================")
	log.Println("       🌱 СИСТЕМА СИДЕРОВ (Наполнение БД)           ")
	log.Println("======================================================")

	runCore := flag.Bool("core", false, "Наполнить справочники (виды работ, оборудование, компании)")
	runUsers := flag.Bool("users", false, "Создать администратора и демо-пользователей")
	runAll := flag.Bool("all", false, "Запустить все сидеры (эквивалентно -core -users)")

	flag.Parse()

	if !*runCore && !*runUsers && !*runAll {
		log.Println("❌ Не выбран ни один сидер для запуска.")
		log.Println("")
		log.Println("Доступные флаги:")
		flag.PrintDefaults()
		log.Println("")
		log.Println("Примеры использования:")
		log.Println("  go run ./seeders/cmd/seed -core")
		log.Println("  go run ./seeders/cmd/seed -all")
		log.Println("======================================================")
		return
	}

	cfg := config.New()
	log.Println("📦 Используется DSN:", cfg.Postgres.DSN)

	dbPool, err := postgresql.ConnectDB(context.Background(), cfg.Postgres.DSN)
	if err != nil {
		log.Fatalf("❌ Не удалось подключиться к БД: %v", err)
	}
	defer dbPool.Close()

	log.Println("======================================================")

	if *runAll || *runCore {
		seeders.SeedCoreDictionaries(dbPool)
	}
	if *runAll || *runUsers {
		seeders.SeedUsers(dbPool)
	}

	log.Println("🎉 Все выбранные сидеры отработали успешно.")
}
