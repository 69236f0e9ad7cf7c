package model

import (
	"time"

	"github.com/google/uuid"
)

// Product is one 8-digit HTS line of the tariff schedule
type Product struct {
	ID               uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	HTS8             string    `gorm:"column:hts8;type:varchar(8);uniqueIndex;not null" json:"hts8"`
	BriefDescription string    `gorm:"type:text" json:"brief_description"`
	QuantityUnit     string    `gorm:"type:varchar(20)" json:"quantity_unit"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Country is a trading country keyed by its ISO code
type Country struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CountryCode string    `gorm:"type:varchar(3);uniqueIndex;not null" json:"country_code"`
	CountryName string    `gorm:"type:varchar(255);not null" json:"country_name"`
	Region      string    `gorm:"type:varchar(100)" json:"region"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
