package repository

import (
	"context"

	"tariff-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CalculationRepository stores tariff calculation history
type CalculationRepository interface {
	Create(ctx context.Context, calc *model.TariffCalculation) error
	Update(ctx context.Context, calc *model.TariffCalculation) error
	// Delete reports whether a row was removed.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.TariffCalculation, error)
	List(ctx context.Context, page, limit int) ([]model.TariffCalculation, int64, error)
	ListByHTSCode(ctx context.Context, htsCode string, page, limit int) ([]model.TariffCalculation, int64, error)
	ListByDestination(ctx context.Context, destination string, page, limit int) ([]model.TariffCalculation, int64, error)
}

type calculationRepository struct {
	db *gorm.DB
}

func NewCalculationRepository(db *gorm.DB) CalculationRepository {
	return &calculationRepository{db: db}
}

func (r *calculationRepository) Create(ctx context.Context, calc *model.TariffCalculation) error {
	return GetDB(ctx, r.db).Create(calc).Error
}

func (r *calculationRepository) Update(ctx context.Context, calc *model.TariffCalculation) error {
	return GetDB(ctx, r.db).Save(calc).Error
}

func (r *calculationRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.TariffCalculation{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *calculationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.TariffCalculation, error) {
	var calc model.TariffCalculation
	if err := GetDB(ctx, r.db).First(&calc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &calc, nil
}

func (r *calculationRepository) List(ctx context.Context, page, limit int) ([]model.TariffCalculation, int64, error) {
	return r.paginate(GetDB(ctx, r.db).Model(&model.TariffCalculation{}), page, limit)
}

func (r *calculationRepository) ListByHTSCode(ctx context.Context, htsCode string, page, limit int) ([]model.TariffCalculation, int64, error) {
	return r.paginate(GetDB(ctx, r.db).Model(&model.TariffCalculation{}).Where("hts_code = ?", htsCode), page, limit)
}

func (r *calculationRepository) ListByDestination(ctx context.Context, destination string, page, limit int) ([]model.TariffCalculation, int64, error) {
	return r.paginate(GetDB(ctx, r.db).Model(&model.TariffCalculation{}).Where("destination_country = ?", destination), page, limit)
}

func (r *calculationRepository) paginate(query *gorm.DB, page, limit int) ([]model.TariffCalculation, int64, error) {
	var calcs []model.TariffCalculation
	var total int64

	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&calcs).Error; err != nil {
		return nil, 0, err
	}

	return calcs, total, nil
}
