// Файл: seeders/equipment_seeder.go
package seeders

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

var equipmentData = []struct {
	Name      string
	Category  string
	UnitPrice float64
}{
	{Name: "GPS-трекер Teltonika FMB120", Category: "трекеры", UnitPrice: 7500},
	{Name: "GPS-трекер Navtelecom СМАРТ S-2423", Category: "трекеры", UnitPrice: 6200},
	{Name: "Датчик уровня топлива Escort ТД-500", Category: "датчики", UnitPrice: 9800},
	{Name: "Реле блокировки двигателя", Category: "исполнительные", UnitPrice: 1200},
	{Name: "SIM-карта М2М", Category: "расходные", UnitPrice: 150},
}

func seedEquipment(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение оборудования...")
	for _, eq := range equipmentData {
		var exists bool
		if err := db.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM equipment WHERE name = $1)", eq.Name).Scan(&exists); err != nil {
			return err
		}
		if exists {
			continue
		}
		_, err := db.Exec(ctx,
			`INSERT INTO equipment (name, category, unit_price) VALUES ($1, $2, $3)`,
			eq.Name, eq.Category, eq.UnitPrice)
		if err != nil {
			return fmt.Errorf("оборудование %q: %w", eq.Name, err)
		}
	}
	return nil
}
