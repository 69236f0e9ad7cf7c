package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ad-valorem rates are stored as fractions everywhere: 0.10 = 10%.

// MfnTariffRate stores the Most-Favoured-Nation rate of a product with temporal validity
type MfnTariffRate struct {
	ID               uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductID        uuid.UUID        `gorm:"type:uuid;not null;index" json:"product_id"`
	Product          Product          `gorm:"foreignKey:ProductID" json:"-"`
	TextRate         string           `gorm:"type:varchar(500)" json:"text_rate"`                 // e.g. "10% + 5¢/kg"
	RateTypeCode     string           `gorm:"type:varchar(10)" json:"rate_type_code"`             // e.g. "7"
	AdValoremRate    *decimal.Decimal `gorm:"type:decimal(15,6)" json:"ad_valorem_rate"`          // e.g. 0.10 = 10%
	SpecificRate     *decimal.Decimal `gorm:"type:decimal(15,6)" json:"specific_rate"`            // per unit
	OtherRate        *decimal.Decimal `gorm:"type:decimal(15,6)" json:"other_rate"`               // informational only
	BeginEffectDate  *time.Time       `gorm:"type:date;index" json:"begin_effect_date"`           // Start date
	EndEffectiveDate *time.Time       `gorm:"type:date;index" json:"end_effective_date"`          // End date, nullable = currently active
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// AgreementRate stores the preferential rate of a product under a trade agreement for a destination
type AgreementRate struct {
	ID             uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductID      uuid.UUID        `gorm:"type:uuid;not null;index" json:"product_id"`
	Product        Product          `gorm:"foreignKey:ProductID" json:"-"`
	AgreementID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"agreement_id"`
	Agreement      TradeAgreement   `gorm:"foreignKey:AgreementID" json:"agreement"`
	CountryID      uuid.UUID        `gorm:"type:uuid;not null;index" json:"country_id"`
	Country        Country          `gorm:"foreignKey:CountryID" json:"-"`
	RateTypeCode   string           `gorm:"type:varchar(10)" json:"rate_type_code"`
	AdValoremRate  *decimal.Decimal `gorm:"type:decimal(18,8)" json:"ad_valorem_rate"`
	SpecificRate   *decimal.Decimal `gorm:"type:decimal(15,6)" json:"specific_rate"`
	TextRate       string           `gorm:"type:text" json:"text_rate"`
	Indicator      string           `gorm:"type:varchar(16)" json:"indicator"`
	EffectiveDate  *time.Time       `gorm:"type:date;index" json:"effective_date"`
	ExpirationDate *time.Time       `gorm:"type:date;index" json:"expiration_date"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}
