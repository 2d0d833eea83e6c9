package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"freight/models"
)

// Repository - контракт слоя данных. Репозиторий не знает о доменных ошибках:
// отсутствие строки это nil/пустой список, ошибки стора идут наверх как есть.
type Repository interface {
	GetApplicationByID(ctx context.Context, id int) (*models.ApplicationPublic, error)
	CreateApplication(ctx context.Context, dto *models.ApplicationDTO) (*models.ApplicationPublic, error)
	DeleteApplicationByID(ctx context.Context, id int) (bool, error)
	GetApplications(ctx context.Context, filters models.ApplicationFilters) ([]models.ApplicationPublic, error)

	GetBidByID(ctx context.Context, id int) (*models.BidPublic, error)
	CreateBid(ctx context.Context, dto *models.BidDTO) (*models.BidPublic, error)
	UpdateBidStatus(ctx context.Context, id int, status string, updatedBy int) (*models.BidPublic, error)
	GetBidsApplicationID(ctx context.Context, applicationID int) ([]models.BidPublic, error)

	GetLoadTypes(ctx context.Context) ([]models.CatalogItem, error)
	GetTransportTypes(ctx context.Context) ([]models.CatalogItem, error)
	GetPaymentMethods(ctx context.Context) ([]models.CatalogItem, error)
	GetPaymentConditions(ctx context.Context) ([]models.CatalogItem, error)
}

// Service валидирует вход до обращения к базе и переводит "нет строки"
// в ErrNotFound
type Service struct {
	repo     Repository
	validate *validator.Validate
	log      zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		validate: models.NewValidator(),
		log:      log,
	}
}

func (s *Service) checkID(id int) error {
	if id <= 0 {
		return fmt.Errorf("%w: id must be a positive integer", ErrInvalidInput)
	}
	return nil
}

func (s *Service) checkStruct(v interface{}) error {
	if err := s.validate.Struct(v); err != nil {
		s.log.Error().Err(err).Msg("invalid data")
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

func (s *Service) GetApplicationByID(ctx context.Context, id int) (*models.ApplicationPublic, error) {
	if err := s.checkID(id); err != nil {
		return nil, err
	}
	application, err := s.repo.GetApplicationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if application == nil {
		s.log.Error().Int("id", id).Msg("application is not found")
		return nil, fmt.Errorf("%w: application", ErrNotFound)
	}
	return application, nil
}

func (s *Service) CreateApplication(ctx context.Context, dto *models.ApplicationDTO) (*models.ApplicationPublic, error) {
	if err := s.checkStruct(dto); err != nil {
		return nil, err
	}
	return s.repo.CreateApplication(ctx, dto)
}

func (s *Service) DeleteApplicationByID(ctx context.Context, id int) error {
	if err := s.checkID(id); err != nil {
		return err
	}
	deleted, err := s.repo.DeleteApplicationByID(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		s.log.Error().Int("id", id).Msg("deleting application failed: no such row")
		return fmt.Errorf("%w: application", ErrNotFound)
	}
	return nil
}

func (s *Service) GetApplications(ctx context.Context, filters models.ApplicationFilters) ([]models.ApplicationPublic, error) {
	if err := s.checkStruct(&filters); err != nil {
		return nil, err
	}
	return s.repo.GetApplications(ctx, filters)
}

func (s *Service) CreateBid(ctx context.Context, dto *models.BidDTO) (*models.BidPublic, error) {
	if err := s.checkStruct(dto); err != nil {
		return nil, err
	}
	return s.repo.CreateBid(ctx, dto)
}

func (s *Service) GetBidByID(ctx context.Context, id int) (*models.BidPublic, error) {
	if err := s.checkID(id); err != nil {
		return nil, err
	}
	bid, err := s.repo.GetBidByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if bid == nil {
		s.log.Error().Int("id", id).Msg("bid is not found")
		return nil, fmt.Errorf("%w: bid", ErrNotFound)
	}
	return bid, nil
}

// UpdateBidStatus не проверяет текущий статус: любой статус может сменить
// любой. Гонку "проверили - обновили" закрывает сам репозиторий: ноль
// затронутых строк приходит как nil и превращается в ErrNotFound.
func (s *Service) UpdateBidStatus(ctx context.Context, id int, status string, updatedBy int) (*models.BidPublic, error) {
	if err := s.checkID(id); err != nil {
		return nil, err
	}
	if err := s.checkID(updatedBy); err != nil {
		return nil, err
	}
	if err := s.validate.Var(status, "required,oneof=pending rejected accepted"); err != nil {
		s.log.Error().Str("status", status).Msg("invalid bid status")
		return nil, fmt.Errorf("%w: status must be one of pending, rejected, accepted", ErrInvalidInput)
	}

	bid, err := s.repo.UpdateBidStatus(ctx, id, status, updatedBy)
	if err != nil {
		return nil, err
	}
	if bid == nil {
		s.log.Error().Int("id", id).Msg("bid is not found")
		return nil, fmt.Errorf("%w: bid", ErrNotFound)
	}
	return bid, nil
}

func (s *Service) GetBidsApplicationID(ctx context.Context, applicationID int) ([]models.BidPublic, error) {
	if err := s.checkID(applicationID); err != nil {
		return nil, err
	}
	return s.repo.GetBidsApplicationID(ctx, applicationID)
}

func (s *Service) catalog(items []models.CatalogItem, err error, what string) ([]models.CatalogItem, error) {
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		s.log.Error().Str("catalog", what).Msg("catalog is empty")
		return nil, fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return items, nil
}

func (s *Service) GetLoadTypes(ctx context.Context) ([]models.CatalogItem, error) {
	items, err := s.repo.GetLoadTypes(ctx)
	return s.catalog(items, err, "load types")
}

func (s *Service) GetTransportTypes(ctx context.Context) ([]models.CatalogItem, error) {
	items, err := s.repo.GetTransportTypes(ctx)
	return s.catalog(items, err, "transport types")
}

func (s *Service) GetPaymentMethods(ctx context.Context) ([]models.CatalogItem, error) {
	items, err := s.repo.GetPaymentMethods(ctx)
	return s.catalog(items, err, "payment methods")
}

func (s *Service) GetPaymentConditions(ctx context.Context) ([]models.CatalogItem, error) {
	items, err := s.repo.GetPaymentConditions(ctx)
	return s.catalog(items, err, "payment conditions")
}
