package repository

import (
	"context"

	"tariff-backend/internal/model"

	"gorm.io/gorm"
)

// TariffRateRepository reads the MFN and agreement rate tables
type TariffRateRepository interface {
	// FindMFNRate returns the latest-starting MFN row for the product, gorm.ErrRecordNotFound when none exists.
	FindMFNRate(ctx context.Context, hts8 string) (*model.MfnTariffRate, error)
	FindAgreementRates(ctx context.Context, hts8, destination string) ([]model.AgreementRate, error)
}

type tariffRateRepository struct {
	db *gorm.DB
}

func NewTariffRateRepository(db *gorm.DB) TariffRateRepository {
	return &tariffRateRepository{db: db}
}

func (r *tariffRateRepository) FindMFNRate(ctx context.Context, hts8 string) (*model.MfnTariffRate, error) {
	var rate model.MfnTariffRate
	if err := GetDB(ctx, r.db).
		Joins("JOIN products ON products.id = mfn_tariff_rates.product_id").
		Where("products.hts8 = ?", hts8).
		Order("mfn_tariff_rates.begin_effect_date DESC NULLS LAST").
		First(&rate).Error; err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *tariffRateRepository) FindAgreementRates(ctx context.Context, hts8, destination string) ([]model.AgreementRate, error) {
	var rates []model.AgreementRate
	if err := GetDB(ctx, r.db).
		Preload("Agreement").
		Joins("JOIN products ON products.id = agreement_rates.product_id").
		Joins("JOIN countries ON countries.id = agreement_rates.country_id").
		Where("products.hts8 = ? AND countries.country_code = ?", hts8, destination).
		Order("agreement_rates.effective_date DESC").
		Find(&rates).Error; err != nil {
		return nil, err
	}
	return rates, nil
}
