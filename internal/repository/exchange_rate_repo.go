package repository

import (
	"context"
	"time"

	"tariff-backend/internal/model"

	"gorm.io/gorm"
)

// ExchangeRateRepository reads the FX table. Both lookups return gorm.ErrRecordNotFound when no row matches.
type ExchangeRateRepository interface {
	FindLatest(ctx context.Context, base, target string, asOf time.Time) (*model.CurrencyExchangeRate, error)
	FindOnDate(ctx context.Context, base, target string, date time.Time) (*model.CurrencyExchangeRate, error)
}

type exchangeRateRepository struct {
	db *gorm.DB
}

func NewExchangeRateRepository(db *gorm.DB) ExchangeRateRepository {
	return &exchangeRateRepository{db: db}
}

func (r *exchangeRateRepository) FindLatest(ctx context.Context, base, target string, asOf time.Time) (*model.CurrencyExchangeRate, error) {
	var rate model.CurrencyExchangeRate
	if err := GetDB(ctx, r.db).
		Where("base_currency_code = ? AND target_currency_code = ? AND effective_date <= ?", base, target, asOf).
		Order("effective_date DESC").
		First(&rate).Error; err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *exchangeRateRepository) FindOnDate(ctx context.Context, base, target string, date time.Time) (*model.CurrencyExchangeRate, error) {
	var rate model.CurrencyExchangeRate
	if err := GetDB(ctx, r.db).
		Where("base_currency_code = ? AND target_currency_code = ? AND effective_date = ?", base, target, date.Format("2006-01-02")).
		First(&rate).Error; err != nil {
		return nil, err
	}
	return &rate, nil
}
