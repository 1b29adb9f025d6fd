// Файл: seeders/work_types_seeder.go
package seeders

import (
	"context"
	"fmt"
	"log"

	"dispatch-system/pkg/utils"

	"github.com/jackc/pgx/v5/pgxpool"
)

var workTypesData = []struct {
	Name               string
	ClientPrice        float64
	InstallerPrice     *float64
	RequiresTechReview bool
}{
	{Name: "Установка GPS-трекера", ClientPrice: 3500, InstallerPrice: utils.Ptr(2000.0), RequiresTechReview: true},
	{Name: "Демонтаж GPS-трекера", ClientPrice: 1500, InstallerPrice: utils.Ptr(900.0), RequiresTechReview: false},
	{Name: "Установка датчика уровня топлива", ClientPrice: 6000, InstallerPrice: utils.Ptr(3500.0), RequiresTechReview: true},
	{Name: "Тарировка датчика топлива", ClientPrice: 2500, InstallerPrice: nil, RequiresTechReview: true},
	{Name: "Диагностика оборудования", ClientPrice: 1000, InstallerPrice: nil, RequiresTechReview: false},
	{Name: "Замена SIM-карты", ClientPrice: 500, InstallerPrice: utils.Ptr(300.0), RequiresTechReview: false},
}

func seedWorkTypes(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение видов работ...")
	for _, wt := range workTypesData {
		var exists bool
		if err := db.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM work_types WHERE name = $1)", wt.Name).Scan(&exists); err != nil {
			return err
		}
		if exists {
			continue
		}
		_, err := db.Exec(ctx,
			`INSERT INTO work_types (name, client_price, installer_price, requires_tech_review)
			 VALUES ($1, $2, $3, $4)`,
			wt.Name, wt.ClientPrice, wt.InstallerPrice, wt.RequiresTechReview)
		if err != nil {
			return fmt.Errorf("вид работ %q: %w", wt.Name, err)
		}
	}
	return nil
}
