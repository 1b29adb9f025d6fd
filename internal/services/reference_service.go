// Файл: internal/services/reference_service.go
// Справочники: виды работ, оборудование, компании и контактные лица.
package services

import (
	"context"

	"dispatch-system/internal/authz"
	"dispatch-system/internal/dto"
	"dispatch-system/internal/entities"
	"dispatch-system/internal/repositories"
	apperrors "dispatch-system/pkg/errors"

	"go.uber.org/zap"
)

type ReferenceServiceInterface interface {
	CreateWorkType(ctx context.Context, actor authz.Actor, payload dto.SaveWorkTypeDTO) (*entities.WorkType, error)
	UpdateWorkType(ctx context.Context, actor authz.Actor, id uint64, payload dto.UpdateWorkTypeDTO) (*entities.WorkType, error)
	ListWorkTypes(ctx context.Context, onlyActive bool) ([]entities.WorkType, error)
	DeleteWorkType(ctx context.Context, actor authz.Actor, id uint64) error

	CreateEquipment(ctx context.Context, actor authz.Actor, payload dto.SaveEquipmentDTO) (*entities.Equipment, error)
	UpdateEquipment(ctx context.Context, actor authz.Actor, id uint64, payload dto.SaveEquipmentDTO) (*entities.Equipment, error)
	ListEquipment(ctx context.Context) ([]entities.Equipment, error)
	DeleteEquipment(ctx context.Context, actor authz.Actor, id uint64) error

	CreateCompany(ctx context.Context, actor authz.Actor, payload dto.SaveCompanyDTO) (*entities.ClientCompany, error)
	UpdateCompany(ctx context.Context, actor authz.Actor, id uint64, payload dto.SaveCompanyDTO) (*entities.ClientCompany, error)
	ListCompanies(ctx context.Context) ([]entities.ClientCompany, error)
	DeleteCompany(ctx context.Context, actor authz.Actor, id uint64) error

	CreateContact(ctx context.Context, actor authz.Actor, payload dto.SaveContactPersonDTO) (*entities.ContactPerson, error)
	UpdateContact(ctx context.Context, actor authz.Actor, id uint64, payload dto.SaveContactPersonDTO) (*entities.ContactPerson, error)
	ListContacts(ctx context.Context, companyID uint64) ([]entities.ContactPerson, error)
	DeleteContact(ctx context.Context, actor authz.Actor, id uint64) error
}

type referenceService struct {
	workTypeRepo  repositories.WorkTypeRepositoryInterface
	equipmentRepo repositories.EquipmentRepositoryInterface
	companyRepo   repositories.CompanyRepositoryInterface
	logger        *zap.Logger
}

func NewReferenceService(
	workTypeRepo repositories.WorkTypeRepositoryInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	companyRepo repositories.CompanyRepositoryInterface,
	logger *zap.Logger,
) ReferenceServiceInterface {
	return &referenceService{
		workTypeRepo:  workTypeRepo,
		equipmentRepo: equipmentRepo,
		companyRepo:   companyRepo,
		logger:        logger,
	}
}

func (s *referenceService) guard(actor authz.Actor) error {
	if !authz.CanManageReferences(actor) {
		return apperrors.Forbidden("справочники ведут логисты и администраторы")
	}
	return nil
}

// --- Виды работ ---

func (s *referenceService) CreateWorkType(ctx context.Context, actor authz.Actor, payload dto.SaveWorkTypeDTO) (*entities.WorkType, error) {
	if err := s.guard(actor); err != nil {
		return nil, err
	}
	wt := &entities.WorkType{
		Name:               payload.Name,
		ClientPrice:        payload.ClientPrice,
		InstallerPrice:     payload.InstallerPrice,
		RequiresTechReview: payload.RequiresTechReview,
		IsActive:           payload.IsActive,
	}
	id, err := s.workTypeRepo.Create(ctx, wt)
	if err != nil {
		return nil, err
	}
	return s.workTypeRepo.FindByID(ctx, id)
}

// UpdateWorkType меняет только переданные поля. Историю задач правка
// справочника не трогает: там лежат снапшоты имён и цен.
func (s *referenceService) UpdateWorkType(ctx context.Context, actor authz.Actor, id uint64, payload dto.UpdateWorkTypeDTO) (*entities.WorkType, error) {
	if err := s.guard(actor); err != nil {
		return nil, err
	}
	wt, err := s.workTypeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payload.Name.Valid {
		wt.Name = payload.Name.String
	}
	if payload.ClientPrice.Valid {
		wt.ClientPrice = payload.ClientPrice.Float64
	}
	if payload.InstallerPrice.Valid {
		v := payload.InstallerPrice.Float64
		wt.InstallerPrice = &v
	}
	if payload.RequiresTechReview.Valid {
		wt.RequiresTechReview = payload.RequiresTechReview.Bool
	}
	if payload.IsActive.Valid {
		wt.IsActive = payload.IsActive.Bool
	}
	if err := s.workTypeRepo.Update(ctx, wt); err != nil {
		return nil, err
	}
	return wt, nil
}

func (s *referenceService) ListWorkTypes(ctx context.Context, onlyActive bool) ([]entities.WorkType, error) {
	return s.workTypeRepo.List(ctx, onlyActive)
}

func (s *referenceService) DeleteWorkType(ctx context.Context, actor authz.Actor, id uint64) error {
	if err := s.guard(actor); err != nil {
		return err
	}
	// Вид работ, задействованный в задачах, защищён внешним ключом.
	if err := s.workTypeRepo.Delete(ctx, id); err != nil {
		if httpErr := apperrors.AsHttpError(err); httpErr.Kind == apperrors.KindInternal {
			return apperrors.Conflict("вид работ используется в задачах, деактивируйте его вместо удаления", err)
		}
		return err
	}
	return nil
}

// --- Оборудование ---

func (s *referenceService) CreateEquipment(ctx context.Context, actor authz.Actor, payload dto.SaveEquipmentDTO) (*entities.Equipment, error) {
	if err := s.guard(actor); err != nil {
		return nil, err
	}
	eq := &entities.Equipment{
		Name:      payload.Name,
		Category:  payload.Category,
		UnitPrice: payload.UnitPrice,
	}
	id, err := s.equipmentRepo.Create(ctx, eq)
	if err != nil {
		return nil, err
	}
	return s.equipmentRepo.FindByID(ctx, id)
}

func (s *referenceService) UpdateEquipment(ctx context.Context, actor authz.Actor, id uint64, payload dto.SaveEquipmentDTO) (*entities.Equipment, error) {
	if err := s.guard(actor); err != nil {
		return nil, err
	}
	eq, err := s.equipmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	eq.Name = payload.Name
	eq.Category = payload.Category
	eq.UnitPrice = payload.UnitPrice
	if err := s.equipmentRepo.Update(ctx, eq); err != nil {
		return nil, err
	}
	return eq, nil
}

func (s *referenceService) ListEquipment(ctx context.Context) ([]entities.Equipment, error) {
	return s.equipmentRepo.List(ctx)
}

func (s *referenceService) DeleteEquipment(ctx context.Context, actor authz.Actor, id uint64) error {
	if err := s.guard(actor); err != nil {
		return err
	}
	return s.equipmentRepo.Delete(ctx, id)
}

// --- Компании и контактные лица ---

func (s *referenceService) CreateCompany(ctx context.Context, actor authz.Actor, payload dto.SaveCompanyDTO) (*entities.ClientCompany, error) {
	if err := s.guard(actor); err != nil {
		return nil, err
	}
	c := &entities.ClientCompany{Name: payload.Name}
	id, err := s.companyRepo.Create(ctx, c)
	if err != nil {
		return nil, err
	}
	return s.companyRepo.FindByID(ctx, id)
}

func (s *referenceService) UpdateCompany(ctx context.Context, actor authz.Actor, id uint64, payload dto.SaveCompanyDTO) (*entities.ClientCompany, error) {
	if err := s.guard(actor); err != nil {
		return nil, err
	}
	c, err := s.companyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Name = payload.Name
	if err := s.companyRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *referenceService) ListCompanies(ctx context.Context) ([]entities.ClientCompany, error) {
	return s.companyRepo.List(ctx)
}

// DeleteCompany удаляет компанию вместе с контактами (каскад в БД).
func (s *referenceService) DeleteCompany(ctx context.Context, actor authz.Actor, id uint64) error {
	if err := s.guard(actor); err != nil {
		return err
	}
	return s.companyRepo.Delete(ctx, id)
}

func (s *referenceService) CreateContact(ctx context.Context, actor authz.Actor, payload dto.SaveContactPersonDTO) (*entities.ContactPerson, error) {
	if err := s.guard(actor); err != nil {
		return nil, err
	}
	if _, err := s.companyRepo.FindByID(ctx, payload.CompanyID); err != nil {
		return nil, apperrors.ValidationFailed("компания не найдена", nil)
	}
	cp := &entities.ContactPerson{
		CompanyID: payload.CompanyID,
		Fio:       payload.Fio,
		Phone:     payload.Phone,
	}
	id, err := s.companyRepo.CreateContact(ctx, cp)
	if err != nil {
		return nil, err
	}
	return s.companyRepo.FindContactByID(ctx, id)
}

// UpdateContact не переносит контакта между компаниями: связь контакта
// с компанией фиксирована с создания.
func (s *referenceService) UpdateContact(ctx context.Context, actor authz.Actor, id uint64, payload dto.SaveContactPersonDTO) (*entities.ContactPerson, error) {
	if err := s.guard(actor); err != nil {
		return nil, err
	}
	cp, err := s.companyRepo.FindContactByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cp.Fio = payload.Fio
	cp.Phone = payload.Phone
	if err := s.companyRepo.UpdateContact(ctx, cp); err != nil {
		return nil, err
	}
	return cp, nil
}

func (s *referenceService) ListContacts(ctx context.Context, companyID uint64) ([]entities.ContactPerson, error) {
	return s.companyRepo.ListContacts(ctx, companyID)
}

func (s *referenceService) DeleteContact(ctx context.Context, actor authz.Actor, id uint64) error {
	if err := s.guard(actor); err != nil {
		return err
	}
	return s.companyRepo.DeleteContact(ctx, id)
}
