package model

import (
	"time"

	"github.com/google/uuid"
)

// TradeAgreement is a preferential trade program such as USMCA or GSP
type TradeAgreement struct {
	ID             uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AgreementCode  string                 `gorm:"type:varchar(20);uniqueIndex;not null" json:"agreement_code"`
	AgreementName  string                 `gorm:"type:varchar(255);not null" json:"agreement_name"`
	AgreementType  string                 `gorm:"type:varchar(50)" json:"agreement_type"`
	IsMultilateral bool                   `gorm:"default:false" json:"is_multilateral"`
	EffectiveDate  *time.Time             `gorm:"type:date;index" json:"effective_date"`
	ExpirationDate *time.Time             `gorm:"type:date;index" json:"expiration_date"` // nullable = open-ended
	Participants   []AgreementParticipant `gorm:"foreignKey:AgreementID" json:"-"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// InForce reports whether the agreement applies on day: effective on or before day, expiring strictly after it.
func (a TradeAgreement) InForce(day time.Time) bool {
	if a.EffectiveDate == nil || a.EffectiveDate.After(day) {
		return false
	}
	return a.ExpirationDate == nil || a.ExpirationDate.After(day)
}

// AgreementParticipant links a country to a trade agreement
type AgreementParticipant struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AgreementID uuid.UUID `gorm:"type:uuid;not null;index" json:"agreement_id"`
	CountryID   uuid.UUID `gorm:"type:uuid;not null;index" json:"country_id"`
	Country     Country   `gorm:"foreignKey:CountryID" json:"-"`
	Role        string    `gorm:"type:varchar(50)" json:"role"` // MEMBER, BENEFICIARY
	CreatedAt   time.Time `json:"created_at"`
}
