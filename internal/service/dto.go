package service

import (
	"github.com/shopspring/decimal"
)

// --- Calculation DTOs ---

// CalculationRequest is the input of one duty calculation. Dates are YYYY-MM-DD strings.
type CalculationRequest struct {
	HTSCode              string          `json:"hts_code" example:"12345678"`
	OriginCountry        string          `json:"origin_country" example:"MX"` // optional
	DestinationCountry   string          `json:"destination_country" example:"US"`
	ProductValue         decimal.Decimal `json:"product_value" swaggertype:"string" example:"1000.00"`
	Quantity             int             `json:"quantity" example:"10"`
	Currency             string          `json:"currency" example:"USD"` // empty = configured default
	TariffEffectiveDate  string          `json:"tariff_effective_date" example:"2024-01-01"`
	TariffExpirationDate string          `json:"tariff_expiration_date" example:"2024-12-31"`
}

// RateOption is one evaluated MFN or preferential rate
type RateOption struct {
	ProgramType       string           `json:"program_type"` // MFN, Preferential
	ProgramName       string           `json:"program_name"`
	AgreementCode     string           `json:"agreement_code,omitempty"`
	TextRate          string           `json:"text_rate"`
	AdValoremRate     *decimal.Decimal `json:"ad_valorem_rate" swaggertype:"string"`
	SpecificRate      *decimal.Decimal `json:"specific_rate" swaggertype:"string"`
	CalculatedDuty    decimal.Decimal  `json:"calculated_duty" swaggertype:"string"`
	EligibilityStatus string           `json:"eligibility_status"`
}

// CalculationResult is the full outcome of a duty calculation.
// TotalImportPrice always equals CustomsBase + TotalTariffAmount.
type CalculationResult struct {
	HTSCode            string          `json:"hts_code"`
	ProductDescription string          `json:"product_description"`
	OriginCountry      string          `json:"origin_country"`
	DestinationCountry string          `json:"destination_country"`
	ProductValue       decimal.Decimal `json:"product_value" swaggertype:"string"`
	Quantity           int             `json:"quantity"`
	Currency           string          `json:"currency"`
	AppliedProgramType string          `json:"applied_program_type"`
	AppliedProgramName string          `json:"applied_program_name"`
	AppliedRateLabel   string          `json:"applied_rate_label"`
	MFNTariffAmount    decimal.Decimal `json:"mfn_tariff_amount" swaggertype:"string"`
	TotalTariffAmount  decimal.Decimal `json:"total_tariff_amount" swaggertype:"string"`
	CustomsBase        decimal.Decimal `json:"customs_base" swaggertype:"string"`
	TotalImportPrice   decimal.Decimal `json:"total_import_price" swaggertype:"string"`
	SavingsVsMFN       decimal.Decimal `json:"savings_vs_mfn" swaggertype:"string"` // MFNTariffAmount - TotalTariffAmount
	Recommendation     string          `json:"recommendation"`
	ApplicablePrograms []string        `json:"applicable_programs"`
	ComplianceNotes    []string        `json:"compliance_notes"`
	DateWarnings       []string        `json:"date_warnings"`
	RateComparison     []RateOption    `json:"rate_comparison"`
	EffectiveDate      string          `json:"effective_date"`
}

// DateRangeValidation is the outcome of checking a requested tariff window against the rate tables
type DateRangeValidation struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// HTSValidation describes whether an HTS code resolves to a product
type HTSValidation struct {
	Valid        bool             `json:"valid"`
	Message      string           `json:"message"`
	ErrorCode    string           `json:"error_code,omitempty"`
	ProvidedCode string           `json:"provided_code,omitempty"`
	HTSCode      string           `json:"hts_code,omitempty"`
	Description  string           `json:"description,omitempty"`
	HasMFNRate   bool             `json:"has_mfn_rate"`
	MFNRate      *decimal.Decimal `json:"mfn_rate,omitempty" swaggertype:"string"`
	MFNRateType  string           `json:"mfn_rate_type,omitempty"`
	Suggestion   string           `json:"suggestion,omitempty"`
}

// CostBreakdown summarises landed cost in the working currency
type CostBreakdown struct {
	HTSCode            string            `json:"hts_code"`
	DestinationCountry string            `json:"destination_country"`
	Quantity           int               `json:"quantity"`
	AppliedProgram     string            `json:"applied_program"`
	PurchasePrice      decimal.Decimal   `json:"purchase_price" swaggertype:"string"`
	TariffAmount       decimal.Decimal   `json:"tariff_amount" swaggertype:"string"`
	TotalImportPrice   decimal.Decimal   `json:"total_import_price" swaggertype:"string"`
	Breakdown          map[string]string `json:"breakdown"`
}

// --- Calculation history DTOs ---

type CalculationRecordResponse struct {
	ID                   string  `json:"id"`
	HTSCode              string  `json:"hts_code"`
	OriginCountry        string  `json:"origin_country"`
	DestinationCountry   string  `json:"destination_country"`
	ProductValue         string  `json:"product_value"`
	Quantity             int     `json:"quantity"`
	Currency             string  `json:"currency"`
	CalculationType      string  `json:"calculation_type"`
	AppliedProgramType   string  `json:"applied_program_type"`
	AppliedProgramName   string  `json:"applied_program_name"`
	AppliedRateLabel     string  `json:"applied_rate_label"`
	TotalTariffAmount    string  `json:"total_tariff_amount"`
	TotalImportPrice     string  `json:"total_import_price"`
	SavingsVsMFN         string  `json:"savings_vs_mfn"`
	TariffEffectiveDate  *string `json:"tariff_effective_date"`
	TariffExpirationDate *string `json:"tariff_expiration_date"`
	CreatedBy            string  `json:"created_by,omitempty"`
	CreatedAt            string  `json:"created_at"`
	UpdatedAt            string  `json:"updated_at"`
}

// CalculationFilter narrows a history listing; HTSCode wins when both are set.
type CalculationFilter struct {
	HTSCode     string
	Destination string
}

// --- Currency DTOs ---

type ConversionResponse struct {
	Amount          string `json:"amount"`
	From            string `json:"from"`
	To              string `json:"to"`
	ConvertedAmount string `json:"converted_amount"`
	Date            string `json:"date,omitempty"`
}

type ExchangeRateResponse struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Rate      string `json:"rate"`
	Available bool   `json:"available"`
}

// SavedCalculationResponse pairs a stored history row with the calculation that produced it
type SavedCalculationResponse struct {
	Record CalculationRecordResponse `json:"record"`
	Result *CalculationResult        `json:"result"`
}

// CalculationEvent is broadcast after a history row changes
type CalculationEvent struct {
	Action             string `json:"action"`
	CalculationID      string `json:"calculation_id"`
	HTSCode            string `json:"hts_code,omitempty"`
	DestinationCountry string `json:"destination_country,omitempty"`
	TotalImportPrice   string `json:"total_import_price,omitempty"`
	Currency           string `json:"currency,omitempty"`
	At                 string `json:"at"`
}
