package db

import (
	"context"
	"fmt"

	"freight/models"
)

// Справочники маленькие, читаем целиком
func (s *Storage) selectCatalog(ctx context.Context, table string) ([]models.CatalogItem, error) {
	items := []models.CatalogItem{}
	query := fmt.Sprintf("SELECT id, name FROM %s ORDER BY id ASC", table)
	if err := s.db.SelectContext(ctx, &items, query); err != nil {
		return nil, err
	}
	for i := range items {
		if err := validateRow(&items[i]); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (s *Storage) GetLoadTypes(ctx context.Context) ([]models.CatalogItem, error) {
	return s.selectCatalog(ctx, "load_types")
}

func (s *Storage) GetTransportTypes(ctx context.Context) ([]models.CatalogItem, error) {
	return s.selectCatalog(ctx, "transport_types")
}

func (s *Storage) GetPaymentMethods(ctx context.Context) ([]models.CatalogItem, error) {
	return s.selectCatalog(ctx, "payment_methods")
}

func (s *Storage) GetPaymentConditions(ctx context.Context) ([]models.CatalogItem, error) {
	return s.selectCatalog(ctx, "payment_conditions")
}
