package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CurrencyExchangeRate is one row of the FX table: 1 Base = Rate Target from EffectiveDate on
type CurrencyExchangeRate struct {
	ID                 uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BaseCurrencyCode   string          `gorm:"type:varchar(3);not null;index:idx_fx_pair" json:"base_currency_code"`
	TargetCurrencyCode string          `gorm:"type:varchar(3);not null;index:idx_fx_pair" json:"target_currency_code"`
	ExchangeRate       decimal.Decimal `gorm:"type:decimal(18,6);not null" json:"exchange_rate"`
	EffectiveDate      time.Time       `gorm:"type:date;not null;index" json:"effective_date"`
	Source             string          `gorm:"type:varchar(100)" json:"source"`
	CreatedAt          time.Time       `json:"created_at"`
}
