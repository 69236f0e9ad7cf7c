package repository

import (
	"context"

	"tariff-backend/internal/model"

	"gorm.io/gorm"
)

// ProductRepository reads the HTS product catalogue
type ProductRepository interface {
	FindByHTS8(ctx context.Context, hts8 string) (*model.Product, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) FindByHTS8(ctx context.Context, hts8 string) (*model.Product, error) {
	var product model.Product
	if err := GetDB(ctx, r.db).First(&product, "hts8 = ?", hts8).Error; err != nil {
		return nil, err
	}
	return &product, nil
}
