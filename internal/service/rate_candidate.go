package service

import (
	"time"

	"tariff-backend/internal/model"

	"github.com/shopspring/decimal"
)

const (
	ProgramTypeMFN          = "MFN"
	ProgramTypePreferential = "Preferential"

	eligibilityUnknown = "Unknown"
)

// RateCandidate is the flat projection of one MFN or agreement rate row the engine evaluates
type RateCandidate struct {
	ProgramLabel   string
	AdValoremRate  *decimal.Decimal // fraction
	SpecificRate   *decimal.Decimal // per unit
	TextRate       string
	IsMFN          bool
	AgreementCode  string
	AgreementName  string
	EffectiveDate  *time.Time
	ExpirationDate *time.Time
}

func mfnCandidate(r *model.MfnTariffRate) RateCandidate {
	return RateCandidate{
		ProgramLabel:   ProgramTypeMFN,
		AdValoremRate:  r.AdValoremRate,
		SpecificRate:   r.SpecificRate,
		TextRate:       r.TextRate,
		IsMFN:          true,
		EffectiveDate:  r.BeginEffectDate,
		ExpirationDate: r.EndEffectiveDate,
	}
}

func agreementCandidate(r model.AgreementRate) RateCandidate {
	label := r.Agreement.AgreementName
	if label == "" {
		label = r.Agreement.AgreementCode
	}
	return RateCandidate{
		ProgramLabel:   label,
		AdValoremRate:  r.AdValoremRate,
		SpecificRate:   r.SpecificRate,
		TextRate:       r.TextRate,
		AgreementCode:  r.Agreement.AgreementCode,
		AgreementName:  r.Agreement.AgreementName,
		EffectiveDate:  r.EffectiveDate,
		ExpirationDate: r.ExpirationDate,
	}
}

// components resolves the numeric rate parts; a missing column is zero. TextRate is never priced.
func (c RateCandidate) components() (adValorem, specific decimal.Decimal) {
	if c.AdValoremRate != nil {
		adValorem = *c.AdValoremRate
	}
	if c.SpecificRate != nil {
		specific = *c.SpecificRate
	}
	return adValorem, specific
}

// duty prices the candidate for one shipment.
func (c RateCandidate) duty(productValue decimal.Decimal, quantity int) decimal.Decimal {
	adValorem, specific := c.components()
	return ComputeDuty(&adValorem, &specific, productValue, quantity)
}

func (c RateCandidate) option(duty decimal.Decimal) RateOption {
	opt := RateOption{
		ProgramType:       ProgramTypePreferential,
		ProgramName:       c.ProgramLabel,
		AgreementCode:     c.AgreementCode,
		TextRate:          c.TextRate,
		AdValoremRate:     c.AdValoremRate,
		SpecificRate:      c.SpecificRate,
		CalculatedDuty:    duty,
		EligibilityStatus: eligibilityUnknown,
	}
	if c.IsMFN {
		opt.ProgramType = ProgramTypeMFN
		opt.EligibilityStatus = "Eligible"
	}
	return opt
}
