package repositories

import (
	"context"
	"errors"

	"dispatch-system/internal/entities"
	apperrors "dispatch-system/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CompanyRepositoryInterface interface {
	Create(ctx context.Context, c *entities.ClientCompany) (uint64, error)
	FindByID(ctx context.Context, id uint64) (*entities.ClientCompany, error)
	Update(ctx context.Context, c *entities.ClientCompany) error
	List(ctx context.Context) ([]entities.ClientCompany, error)
	Delete(ctx context.Context, id uint64) error

	CreateContact(ctx context.Context, cp *entities.ContactPerson) (uint64, error)
	FindContactByID(ctx context.Context, id uint64) (*entities.ContactPerson, error)
	UpdateContact(ctx context.Context, cp *entities.ContactPerson) error
	ListContacts(ctx context.Context, companyID uint64) ([]entities.ContactPerson, error)
	DeleteContact(ctx context.Context, id uint64) error
}

type companyRepository struct {
	storage *pgxpool.Pool
}

func NewCompanyRepository(storage *pgxpool.Pool) CompanyRepositoryInterface {
	return &companyRepository{storage: storage}
}

func (r *companyRepository) Create(ctx context.Context, c *entities.ClientCompany) (uint64, error) {
	var id uint64
	err := r.storage.QueryRow(ctx,
		`INSERT INTO client_companies (name) VALUES ($1) RETURNING id`, c.Name,
	).Scan(&id)
	return id, err
}

func (r *companyRepository) FindByID(ctx context.Context, id uint64) (*entities.ClientCompany, error) {
	var c entities.ClientCompany
	err := r.storage.QueryRow(ctx,
		`SELECT id, name, created_at FROM client_companies WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *companyRepository) Update(ctx context.Context, c *entities.ClientCompany) error {
	tag, err := r.storage.Exec(ctx,
		`UPDATE client_companies SET name = $2 WHERE id = $1`, c.ID, c.Name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *companyRepository) List(ctx context.Context) ([]entities.ClientCompany, error) {
	rows, err := r.storage.Query(ctx,
		`SELECT id, name, created_at FROM client_companies ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []entities.ClientCompany
	for rows.Next() {
		var c entities.ClientCompany
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// Delete удаляет компанию; контакты уходят каскадом (ON DELETE CASCADE).
func (r *companyRepository) Delete(ctx context.Context, id uint64) error {
	tag, err := r.storage.Exec(ctx, `DELETE FROM client_companies WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *companyRepository) CreateContact(ctx context.Context, cp *entities.ContactPerson) (uint64, error) {
	var id uint64
	err := r.storage.QueryRow(ctx,
		`INSERT INTO contact_persons (company_id, fio, phone) VALUES ($1, $2, $3) RETURNING id`,
		cp.CompanyID, cp.Fio, cp.Phone,
	).Scan(&id)
	return id, err
}

func (r *companyRepository) FindContactByID(ctx context.Context, id uint64) (*entities.ContactPerson, error) {
	var cp entities.ContactPerson
	err := r.storage.QueryRow(ctx,
		`SELECT id, company_id, fio, phone, created_at FROM contact_persons WHERE id = $1`, id,
	).Scan(&cp.ID, &cp.CompanyID, &cp.Fio, &cp.Phone, &cp.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &cp, nil
}

func (r *companyRepository) UpdateContact(ctx context.Context, cp *entities.ContactPerson) error {
	tag, err := r.storage.Exec(ctx,
		`UPDATE contact_persons SET fio = $2, phone = $3 WHERE id = $1`,
		cp.ID, cp.Fio, cp.Phone)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *companyRepository) ListContacts(ctx context.Context, companyID uint64) ([]entities.ContactPerson, error) {
	rows, err := r.storage.Query(ctx,
		`SELECT id, company_id, fio, phone, created_at FROM contact_persons WHERE company_id = $1 ORDER BY fio`,
		companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []entities.ContactPerson
	for rows.Next() {
		var cp entities.ContactPerson
		if err := rows.Scan(&cp.ID, &cp.CompanyID, &cp.Fio, &cp.Phone, &cp.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, cp)
	}
	return result, rows.Err()
}

func (r *companyRepository) DeleteContact(ctx context.Context, id uint64) error {
	tag, err := r.storage.Exec(ctx, `DELETE FROM contact_persons WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
