package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tariff-backend/internal/repository"
	"tariff-backend/pkg/apperror"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const htsCodeLength = 8

// CalculationSettings carries the currency configuration of the engine
type CalculationSettings struct {
	// WorkingCurrency is the currency product values and rate tables are expressed in.
	WorkingCurrency string
	// DefaultCurrency is the result currency when a request names none.
	DefaultCurrency string
}

// CalculationMetrics receives calculation outcomes
type CalculationMetrics interface {
	ObserveCalculation(programType string, elapsed time.Duration)
	ObserveFailure(kind string)
	ObserveRecordChange(action string)
}

// NopMetrics discards every observation.
type NopMetrics struct{}

func (NopMetrics) ObserveCalculation(string, time.Duration) {}
func (NopMetrics) ObserveFailure(string)                    {}
func (NopMetrics) ObserveRecordChange(string)               {}

// TariffCalculationService resolves the cheapest applicable duty for a shipment
type TariffCalculationService interface {
	Calculate(ctx context.Context, req CalculationRequest) (*CalculationResult, error)
	ValidateHTSCode(ctx context.Context, code string) (HTSValidation, error)
	CostBreakdown(ctx context.Context, req CalculationRequest) (*CostBreakdown, error)
}

type tariffCalculationService struct {
	productRepo repository.ProductRepository
	rateRepo    repository.TariffRateRepository
	currency    CurrencyService
	programs    ProgramService
	validator   DateRangeValidator
	metrics     CalculationMetrics
	settings    CalculationSettings
	logger      *zap.Logger
}

func NewTariffCalculationService(
	productRepo repository.ProductRepository,
	rateRepo repository.TariffRateRepository,
	currency CurrencyService,
	programs ProgramService,
	validator DateRangeValidator,
	metrics CalculationMetrics,
	settings CalculationSettings,
	logger *zap.Logger,
) TariffCalculationService {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	settings.WorkingCurrency = normalizeCode(settings.WorkingCurrency)
	settings.DefaultCurrency = normalizeCode(settings.DefaultCurrency)
	if settings.DefaultCurrency == "" {
		settings.DefaultCurrency = settings.WorkingCurrency
	}
	return &tariffCalculationService{
		productRepo: productRepo,
		rateRepo:    rateRepo,
		currency:    currency,
		programs:    programs,
		validator:   validator,
		metrics:     metrics,
		settings:    settings,
		logger:      logger.Named("calculation"),
	}
}

// calculationInput is a validated and normalized CalculationRequest.
type calculationInput struct {
	htsCode      string
	origin       string
	destination  string
	productValue decimal.Decimal
	quantity     int
	currency     string
	effective    *time.Time
	expiration   *time.Time
}

func (in calculationInput) hasWindow() bool {
	return in.effective != nil || in.expiration != nil
}

// Calculate returns either a complete result or a single *apperror.Error.
func (s *tariffCalculationService) Calculate(ctx context.Context, req CalculationRequest) (*CalculationResult, error) {
	start := time.Now()
	res, err := s.calculate(ctx, req)
	if err != nil {
		s.metrics.ObserveFailure(string(apperror.KindOf(err)))
		s.logger.Info("tariff calculation rejected",
			zap.String("hts_code", req.HTSCode),
			zap.String("destination", req.DestinationCountry),
			zap.Error(err))
		return nil, err
	}
	s.metrics.ObserveCalculation(res.AppliedProgramType, time.Since(start))
	s.logger.Info("tariff calculated",
		zap.String("hts_code", res.HTSCode),
		zap.String("destination", res.DestinationCountry),
		zap.String("program", res.AppliedProgramName),
		zap.String("total_tariff", res.TotalTariffAmount.StringFixed(2)),
		zap.String("currency", res.Currency))
	return res, nil
}

func (s *tariffCalculationService) calculate(ctx context.Context, req CalculationRequest) (*CalculationResult, error) {
	in, err := s.normalize(req)
	if err != nil {
		return nil, err
	}

	dateWarnings := []string{}
	if in.hasWindow() {
		check, err := s.validator.ValidateWindow(ctx, in.htsCode, in.destination, in.effective, in.expiration)
		if err != nil {
			return nil, apperror.CalculationFailed(fmt.Errorf("failed to validate tariff window: %w", err))
		}
		if !check.Valid {
			return nil, apperror.DateRangeViolation(check.Errors[0])
		}
		dateWarnings = append(dateWarnings, check.Warnings...)
	}

	product, err := s.productRepo.FindByHTS8(ctx, in.htsCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("HTS code", in.htsCode)
		}
		return nil, apperror.CalculationFailed(fmt.Errorf("failed to fetch product: %w", err))
	}

	mfn, preferential, err := s.candidates(ctx, in)
	if err != nil {
		return nil, apperror.CalculationFailed(err)
	}

	// MFN duty is zero when the product has no MFN row.
	mfnDuty := decimal.Zero
	comparison := make([]RateOption, 0, len(preferential)+1)
	var chosen *RateCandidate
	if mfn != nil {
		mfnDuty = mfn.duty(in.productValue, in.quantity)
		comparison = append(comparison, mfn.option(mfnDuty))
		chosen = mfn
	}

	lowest := mfnDuty
	for i := range preferential {
		c := &preferential[i]
		duty := c.duty(in.productValue, in.quantity)
		comparison = append(comparison, c.option(duty))
		// Strictly cheaper only: ties keep MFN, then the first preferential rate seen.
		if duty.LessThan(lowest) {
			lowest = duty
			chosen = c
		}
	}

	programs := s.programs.ApplicablePrograms(ctx, in.origin, in.destination)

	// Recompute the applied amounts from the chosen components so the totals add up exactly.
	var adValorem, specific decimal.Decimal
	programType, programName, label := ProgramTypeMFN, ProgramTypeMFN, ""
	if chosen != nil {
		adValorem, specific = chosen.components()
		label = chosen.TextRate
		if !chosen.IsMFN {
			programType, programName = ProgramTypePreferential, chosen.ProgramLabel
		}
	}
	if strings.TrimSpace(label) == "" {
		label = formatRateLabel(adValorem, specific)
	}
	totalTariff := ComputeDuty(&adValorem, &specific, in.productValue, in.quantity)
	customsBase := in.productValue.Mul(decimal.NewFromInt(int64(in.quantity)))

	convert := s.converter(ctx, in)
	convertedBase := convert(customsBase)
	convertedTariff := convert(totalTariff)
	convertedMFN := convert(mfnDuty)
	for i := range comparison {
		comparison[i].CalculatedDuty = convert(comparison[i].CalculatedDuty)
	}

	effectiveDate := today(time.Now()).Format(dateLayout)
	if in.effective != nil {
		effectiveDate = in.effective.Format(dateLayout)
	}

	return &CalculationResult{
		HTSCode:            in.htsCode,
		ProductDescription: product.BriefDescription,
		OriginCountry:      in.origin,
		DestinationCountry: in.destination,
		ProductValue:       in.productValue,
		Quantity:           in.quantity,
		Currency:           in.currency,
		AppliedProgramType: programType,
		AppliedProgramName: programName,
		AppliedRateLabel:   label,
		MFNTariffAmount:    convertedMFN,
		TotalTariffAmount:  convertedTariff,
		CustomsBase:        convertedBase,
		TotalImportPrice:   convertedBase.Add(convertedTariff),
		SavingsVsMFN:       convertedMFN.Sub(convertedTariff),
		Recommendation:     recommendation(programType, programName),
		ApplicablePrograms: programs,
		ComplianceNotes:    complianceNotes(programs, in.effective, in.expiration),
		DateWarnings:       dateWarnings,
		RateComparison:     comparison,
		EffectiveDate:      effectiveDate,
	}, nil
}

// candidates fetches the MFN rate (nil when absent) and every preferential rate for the destination.
func (s *tariffCalculationService) candidates(ctx context.Context, in calculationInput) (*RateCandidate, []RateCandidate, error) {
	var mfn *RateCandidate
	row, err := s.rateRepo.FindMFNRate(ctx, in.htsCode)
	switch {
	case err == nil:
		c := mfnCandidate(row)
		mfn = &c
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil, fmt.Errorf("failed to fetch MFN rate: %w", err)
	}

	rows, err := s.rateRepo.FindAgreementRates(ctx, in.htsCode, in.destination)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch agreement rates: %w", err)
	}
	preferential := make([]RateCandidate, 0, len(rows))
	for _, r := range rows {
		preferential = append(preferential, agreementCandidate(r))
	}
	return mfn, preferential, nil
}

// converter moves working-currency amounts into the requested currency, on the tariff date when one was given.
func (s *tariffCalculationService) converter(ctx context.Context, in calculationInput) func(decimal.Decimal) decimal.Decimal {
	from, to := s.settings.WorkingCurrency, in.currency
	return func(amount decimal.Decimal) decimal.Decimal {
		if in.effective != nil {
			return s.currency.ConvertOn(ctx, amount, from, to, *in.effective)
		}
		return s.currency.Convert(ctx, amount, from, to)
	}
}

func (s *tariffCalculationService) normalize(req CalculationRequest) (calculationInput, error) {
	if strings.TrimSpace(req.HTSCode) == "" {
		return calculationInput{}, apperror.InvalidInput("HTS code is required")
	}
	if !req.ProductValue.IsPositive() {
		return calculationInput{}, apperror.InvalidInput("product value must be greater than 0")
	}
	// Values are stored at cent precision; anything finer would not survive persistence.
	if !req.ProductValue.Equal(req.ProductValue.Round(2)) {
		return calculationInput{}, apperror.InvalidInput("product value must have at most 2 decimal places")
	}
	if req.Quantity <= 0 {
		return calculationInput{}, apperror.InvalidInput("quantity must be greater than 0")
	}

	hts := cleanHTSCode(req.HTSCode)
	if len(hts) != htsCodeLength {
		return calculationInput{}, apperror.InvalidInput("HTS code must be exactly 8 digits").
			WithContext("hts_code", req.HTSCode)
	}

	destination := normalizeCode(req.DestinationCountry)
	if destination == "" {
		return calculationInput{}, apperror.InvalidInput("destination country is required")
	}

	effective, err := parseOptionalDate(req.TariffEffectiveDate)
	if err != nil {
		return calculationInput{}, apperror.InvalidInput("invalid tariff effective date format (expected YYYY-MM-DD)")
	}
	expiration, err := parseOptionalDate(req.TariffExpirationDate)
	if err != nil {
		return calculationInput{}, apperror.InvalidInput("invalid tariff expiration date format (expected YYYY-MM-DD)")
	}
	if effective != nil && expiration != nil && effective.After(*expiration) {
		return calculationInput{}, apperror.InvalidInput("tariff effective date must not be after tariff expiration date")
	}

	currency := normalizeCode(req.Currency)
	if currency == "" {
		currency = s.settings.DefaultCurrency
	}
	if len(currency) != 3 {
		return calculationInput{}, apperror.InvalidInput("currency must be a 3-letter code")
	}

	return calculationInput{
		htsCode:      hts,
		origin:       normalizeCode(req.OriginCountry),
		destination:  destination,
		productValue: req.ProductValue,
		quantity:     req.Quantity,
		currency:     currency,
		effective:    effective,
		expiration:   expiration,
	}, nil
}

// ValidateHTSCode reports whether code resolves to a catalogued product. Only lookup failures are errors.
func (s *tariffCalculationService) ValidateHTSCode(ctx context.Context, code string) (HTSValidation, error) {
	if strings.TrimSpace(code) == "" {
		return HTSValidation{Message: "HTS code cannot be empty", ErrorCode: "EMPTY_HTS_CODE"}, nil
	}

	cleaned := cleanHTSCode(code)
	if len(cleaned) != htsCodeLength {
		return HTSValidation{
			Message:      "HTS code must be exactly 8 digits",
			ErrorCode:    "INVALID_FORMAT",
			ProvidedCode: code,
			HTSCode:      cleaned,
		}, nil
	}

	product, err := s.productRepo.FindByHTS8(ctx, cleaned)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return HTSValidation{
				Message:    "HTS code not found in database",
				ErrorCode:  "HTS_CODE_NOT_FOUND",
				HTSCode:    cleaned,
				Suggestion: "Verify the HTS code or check if it exists in the tariff database",
			}, nil
		}
		return HTSValidation{}, fmt.Errorf("failed to fetch product: %w", err)
	}

	res := HTSValidation{
		Valid:       true,
		Message:     "Valid HTS code",
		HTSCode:     cleaned,
		Description: product.BriefDescription,
	}
	mfn, err := s.rateRepo.FindMFNRate(ctx, cleaned)
	switch {
	case err == nil:
		res.HasMFNRate = true
		res.MFNRate = mfn.AdValoremRate
		if res.MFNRate == nil {
			// Display only: rows without a numeric column still show the rate written in the label.
			if pct := parsePercentFromLabel(mfn.TextRate); !pct.IsZero() {
				res.MFNRate = &pct
			}
		}
		res.MFNRateType = mfn.RateTypeCode
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return HTSValidation{}, fmt.Errorf("failed to fetch MFN rate: %w", err)
	}
	return res, nil
}

// CostBreakdown prices the shipment in the working currency.
func (s *tariffCalculationService) CostBreakdown(ctx context.Context, req CalculationRequest) (*CostBreakdown, error) {
	req.Currency = s.settings.WorkingCurrency
	res, err := s.Calculate(ctx, req)
	if err != nil {
		return nil, err
	}

	return &CostBreakdown{
		HTSCode:            res.HTSCode,
		DestinationCountry: res.DestinationCountry,
		Quantity:           res.Quantity,
		AppliedProgram:     res.AppliedProgramName,
		PurchasePrice:      res.CustomsBase,
		TariffAmount:       res.TotalTariffAmount,
		TotalImportPrice:   res.TotalImportPrice,
		Breakdown: map[string]string{
			"Purchase Price":     formatMoney(res.CustomsBase),
			"Applied Program":    res.AppliedProgramName,
			"Tariff Amount":      formatMoney(res.TotalTariffAmount),
			"Total Import Price": formatMoney(res.TotalImportPrice),
		},
	}, nil
}

func formatMoney(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func recommendation(programType, programName string) string {
	if programType == ProgramTypeMFN {
		return "MFN rate is the best available option"
	}
	return "Use " + programName + " for lowest duty rate"
}

func complianceNotes(programs []string, effective, expiration *time.Time) []string {
	notes := make([]string, 0, 6)
	if len(programs) == 0 {
		notes = append(notes, "No preferential trade programs available for this product/country combination")
	} else {
		notes = append(notes, "ELIGIBLE programs (to be verified): "+strings.Join(programs, ", "))
	}

	var hasGSP, hasUSMCA bool
	for _, p := range programs {
		hasGSP = hasGSP || strings.Contains(p, "GSP")
		hasUSMCA = hasUSMCA || strings.Contains(p, "USMCA")
	}
	if hasGSP {
		notes = append(notes, "GSP: Verify country eligibility and product requirements")
	}
	if hasUSMCA {
		notes = append(notes, "USMCA: Verify rules of origin requirements")
	}

	notes = append(notes,
		"Ensure proper documentation for preferential treatment",
		"Verify country of origin certification requirements",
	)

	switch {
	case effective != nil && expiration != nil:
		notes = append(notes, fmt.Sprintf("Tariff rates effective from %s to %s", effective.Format(dateLayout), expiration.Format(dateLayout)))
	case effective != nil:
		notes = append(notes, "Tariff rates effective from "+effective.Format(dateLayout))
	case expiration != nil:
		notes = append(notes, "Tariff rates effective until "+expiration.Format(dateLayout))
	}
	return notes
}
