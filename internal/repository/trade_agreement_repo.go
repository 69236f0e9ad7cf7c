package repository

import (
	"context"

	"tariff-backend/internal/model"

	"gorm.io/gorm"
)

// TradeAgreementRepository resolves agreement participation by country code
type TradeAgreementRepository interface {
	FindBetweenCountries(ctx context.Context, origin, destination string) ([]model.TradeAgreement, error)
	FindByParticipant(ctx context.Context, country string) ([]model.TradeAgreement, error)
}

type tradeAgreementRepository struct {
	db *gorm.DB
}

func NewTradeAgreementRepository(db *gorm.DB) TradeAgreementRepository {
	return &tradeAgreementRepository{db: db}
}

// participantSubquery selects the agreement ids a country takes part in.
func (r *tradeAgreementRepository) participantSubquery(ctx context.Context, country string) *gorm.DB {
	return GetDB(ctx, r.db).
		Model(&model.AgreementParticipant{}).
		Select("agreement_participants.agreement_id").
		Joins("JOIN countries ON countries.id = agreement_participants.country_id").
		Where("countries.country_code = ?", country)
}

func (r *tradeAgreementRepository) FindBetweenCountries(ctx context.Context, origin, destination string) ([]model.TradeAgreement, error) {
	var agreements []model.TradeAgreement
	if err := GetDB(ctx, r.db).
		Where("id IN (?) AND id IN (?)", r.participantSubquery(ctx, origin), r.participantSubquery(ctx, destination)).
		Order("agreement_code").
		Find(&agreements).Error; err != nil {
		return nil, err
	}
	return agreements, nil
}

func (r *tradeAgreementRepository) FindByParticipant(ctx context.Context, country string) ([]model.TradeAgreement, error) {
	var agreements []model.TradeAgreement
	if err := GetDB(ctx, r.db).
		Where("id IN (?)", r.participantSubquery(ctx, country)).
		Order("agreement_code").
		Find(&agreements).Error; err != nil {
		return nil, err
	}
	return agreements, nil
}
