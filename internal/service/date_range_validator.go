package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tariff-backend/internal/repository"

	"gorm.io/gorm"
)

// DateRangeValidator checks a requested tariff window against the rate tables.
// MFN bounds are hard errors, agreement bounds only warn.
type DateRangeValidator interface {
	ValidateWindow(ctx context.Context, htsCode, destination string, effective, expiration *time.Time) (DateRangeValidation, error)
}

type dateRangeValidator struct {
	rateRepo repository.TariffRateRepository
}

func NewDateRangeValidator(rateRepo repository.TariffRateRepository) DateRangeValidator {
	return &dateRangeValidator{rateRepo: rateRepo}
}

// ValidateWindow returns an error only when a lookup fails; rule violations are reported in the result.
func (v *dateRangeValidator) ValidateWindow(ctx context.Context, htsCode, destination string, effective, expiration *time.Time) (DateRangeValidation, error) {
	res := DateRangeValidation{Valid: true, Errors: []string{}, Warnings: []string{}}
	if effective == nil && expiration == nil {
		return res, nil
	}

	mfn, err := v.rateRepo.FindMFNRate(ctx, htsCode)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return DateRangeValidation{}, fmt.Errorf("failed to fetch MFN rate: %w", err)
	}
	if mfn != nil {
		if msg := mfnWindowViolation(effective, expiration, mfn.BeginEffectDate, mfn.EndEffectiveDate); msg != "" {
			res.Valid = false
			res.Errors = append(res.Errors, msg)
			return res, nil
		}
	}

	rates, err := v.rateRepo.FindAgreementRates(ctx, htsCode, destination)
	if err != nil {
		return DateRangeValidation{}, fmt.Errorf("failed to fetch agreement rates: %w", err)
	}
	for _, r := range rates {
		code := r.Agreement.AgreementCode
		if effective != nil && r.EffectiveDate != nil && effective.Before(*r.EffectiveDate) {
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"Tariff effective date (%s) is before agreement rate effective date (%s) for agreement %s",
				effective.Format(dateLayout), r.EffectiveDate.Format(dateLayout), code))
		}
		if expiration != nil && r.ExpirationDate != nil && expiration.After(*r.ExpirationDate) {
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"Tariff expiration date (%s) is after agreement rate expiration date (%s) for agreement %s",
				expiration.Format(dateLayout), r.ExpirationDate.Format(dateLayout), code))
		}
	}

	return res, nil
}

// mfnWindowViolation returns the first violated MFN bound, or "" when the window fits.
func mfnWindowViolation(effective, expiration, mfnBegin, mfnEnd *time.Time) string {
	if effective != nil && mfnBegin != nil && effective.Before(*mfnBegin) {
		return fmt.Sprintf("Tariff effective date (%s) is before MFN rate effective date (%s)",
			effective.Format(dateLayout), mfnBegin.Format(dateLayout))
	}
	if expiration != nil && mfnEnd != nil && expiration.After(*mfnEnd) {
		return fmt.Sprintf("Tariff expiration date (%s) is after MFN rate expiration date (%s)",
			expiration.Format(dateLayout), mfnEnd.Format(dateLayout))
	}
	if effective != nil && mfnEnd != nil && effective.After(*mfnEnd) {
		return fmt.Sprintf("Tariff effective date (%s) is after MFN rate expiration date (%s)",
			effective.Format(dateLayout), mfnEnd.Format(dateLayout))
	}
	return ""
}
