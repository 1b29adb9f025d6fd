// Файл: seeders/companies_seeder.go
package seeders

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

var companiesData = []struct {
	Name     string
	Contacts []struct {
		Fio   string
		Phone string
	}
}{
	{
		Name: "ООО «ТрансЛогистика»",
		Contacts: []struct {
			Fio   string
			Phone string
		}{
			{Fio: "Петров Пётр Петрович", Phone: "+7 912 000-11-22"},
			{Fio: "Сидорова Анна Ивановна", Phone: "+7 912 000-33-44"},
		},
	},
	{
		Name: "АО «СтройТехПарк»",
		Contacts: []struct {
			Fio   string
			Phone string
		}{
			{Fio: "Кузнецов Олег Васильевич", Phone: "+7 922 555-66-77"},
		},
	},
}

func seedCompanies(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение компаний и контактных лиц...")
	for _, c := range companiesData {
		var companyID uint64
		err := db.QueryRow(ctx, "SELECT id FROM client_companies WHERE name = $1", c.Name).Scan(&companyID)
		if err != nil {
			err = db.QueryRow(ctx,
				"INSERT INTO client_companies (name) VALUES ($1) RETURNING id", c.Name).Scan(&companyID)
			if err != nil {
				return fmt.Errorf("компания %q: %w", c.Name, err)
			}
		}
		for _, contact := range c.Contacts {
			var exists bool
			if err := db.QueryRow(ctx,
				"SELECT EXISTS (SELECT 1 FROM contact_persons WHERE company_id = $1 AND fio = $2)",
				companyID, contact.Fio).Scan(&exists); err != nil {
				return err
			}
			if exists {
				continue
			}
			if _, err := db.Exec(ctx,
				"INSERT INTO contact_persons (company_id, fio, phone) VALUES ($1, $2, $3)",
				companyID, contact.Fio, contact.Phone); err != nil {
				return fmt.Errorf("контакт %q: %w", contact.Fio, err)
			}
		}
	}
	return nil
}
