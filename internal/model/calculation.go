package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CalculationTypeStandard is the only calculation type produced today
const CalculationTypeStandard = "STANDARD"

// TariffCalculation is the persisted snapshot of one duty calculation.
// Codes are copied as plain strings so history survives reference-data edits.
type TariffCalculation struct {
	ID                   uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	HTSCode              string          `gorm:"type:varchar(8);not null;index" json:"hts_code"`
	OriginCountry        string          `gorm:"type:varchar(3)" json:"origin_country"`
	DestinationCountry   string          `gorm:"type:varchar(3);not null;index" json:"destination_country"`
	ProductValue         decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"product_value"`
	Quantity             int             `gorm:"type:int;not null" json:"quantity"`
	Currency             string          `gorm:"type:varchar(3)" json:"currency"`
	CalculationType      string          `gorm:"type:varchar(50);not null" json:"calculation_type"`
	AppliedProgramType   string          `gorm:"type:varchar(20)" json:"applied_program_type"`
	AppliedProgramName   string          `gorm:"type:varchar(255)" json:"applied_program_name"`
	AppliedRateLabel     string          `gorm:"type:varchar(500)" json:"applied_rate_label"`
	TotalTariffAmount    decimal.Decimal `gorm:"type:decimal(18,2)" json:"total_tariff_amount"`
	TotalImportPrice     decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total_import_price"`
	SavingsVsMfn         decimal.Decimal `gorm:"type:decimal(18,2)" json:"savings_vs_mfn"`
	TariffEffectiveDate  *time.Time      `gorm:"type:date" json:"tariff_effective_date"`
	TariffExpirationDate *time.Time      `gorm:"type:date" json:"tariff_expiration_date"`
	CreatedBy            *uuid.UUID      `gorm:"type:uuid;index" json:"created_by"`
	CreatedAt            time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}
