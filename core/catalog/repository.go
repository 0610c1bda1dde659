package catalog

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Repository reads and replaces the durable prior catalog.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a repository over an open catalog database.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// LoadAll returns every prior-catalog product with its variants.
func (r *Repository) LoadAll(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := r.db.WithContext(ctx).Preload("Variants").Order("code").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("loading prior catalog: %w", err)
	}
	return products, nil
}

// FindByCode returns one product by its product code.
func (r *Repository) FindByCode(ctx context.Context, code string) (*Product, error) {
	var product Product
	err := r.db.WithContext(ctx).Preload("Variants").Where("code = ?", code).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// CodesInUse returns every product and variant code in the stored catalog,
// in code order.
func (r *Repository) CodesInUse(ctx context.Context) ([]string, error) {
	var codes []string
	if err := r.db.WithContext(ctx).Model(&Product{}).Order("code").Pluck("code", &codes).Error; err != nil {
		return nil, fmt.Errorf("listing product codes: %w", err)
	}
	var variantCodes []string
	if err := r.db.WithContext(ctx).Model(&ProductVariant{}).Order("code").Pluck("code", &variantCodes).Error; err != nil {
		return nil, fmt.Errorf("listing variant codes: %w", err)
	}
	return append(codes, variantCodes...), nil
}

// ReplaceAll swaps the stored catalog for the given product set in one
// transaction, so a failed export never leaves a half-written catalog behind.
func (r *Repository) ReplaceAll(ctx context.Context, products []Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&ProductVariant{}).Error; err != nil {
			return fmt.Errorf("clearing prior variants: %w", err)
		}
		if err := tx.Where("1 = 1").Delete(&Product{}).Error; err != nil {
			return fmt.Errorf("clearing prior products: %w", err)
		}
		for i := range products {
			products[i].ID = 0
			for j := range products[i].Variants {
				products[i].Variants[j].ID = 0
				products[i].Variants[j].ProductID = 0
			}
			if err := tx.Create(&products[i]).Error; err != nil {
				return fmt.Errorf("storing product %s: %w", products[i].Code, err)
			}
		}
		return nil
	})
}
