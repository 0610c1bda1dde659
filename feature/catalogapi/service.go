package catalogapi

import (
	"context"

	"catalog-unifier/core/catalog"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service handles catalog read operations.
type Service struct {
	repo   *catalog.Repository
	logger *zap.Logger
}

// NewService creates a new catalog service.
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{repo: catalog.NewRepository(db), logger: logger}
}

// ListProducts returns a page of the catalog in code order. A limit of 0
// means no limit.
func (s *Service) ListProducts(ctx context.Context, limit, offset int) ([]catalog.Product, error) {
	products, err := s.repo.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(products) {
		return []catalog.Product{}, nil
	}
	products = products[offset:]
	if limit > 0 && limit < len(products) {
		products = products[:limit]
	}
	return products, nil
}

// GetProduct returns one product with its variants.
func (s *Service) GetProduct(ctx context.Context, code string) (*catalog.Product, error) {
	return s.repo.FindByCode(ctx, code)
}
