package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tariff-backend/internal/model"
	"tariff-backend/internal/service"
	"tariff-backend/pkg/apperror"
)

const testHTS = "12345678"

type calcFixture struct {
	products   *mockProductRepository
	rates      *mockTariffRateRepository
	fx         *mockExchangeRateRepository
	agreements *mockTradeAgreementRepository
	metrics    *recordingMetrics
}

// newCalcFixture serves product 12345678 with an MFN rate of 10% + 5.00/unit effective 2024-01-01.
func newCalcFixture() *calcFixture {
	return &calcFixture{
		products: &mockProductRepository{
			findByHTS8Func: func(_ context.Context, hts8 string) (*model.Product, error) {
				if hts8 == testHTS {
					return product(hts8), nil
				}
				return nil, gorm.ErrRecordNotFound
			},
		},
		rates: &mockTariffRateRepository{
			findMFNRateFunc: func(context.Context, string) (*model.MfnTariffRate, error) {
				return &model.MfnTariffRate{
					AdValoremRate:   decPtr("0.10"),
					SpecificRate:    decPtr("5.00"),
					RateTypeCode:    "7",
					BeginEffectDate: date("2024-01-01"),
				}, nil
			},
		},
		fx:         &mockExchangeRateRepository{},
		agreements: &mockTradeAgreementRepository{},
		metrics:    &recordingMetrics{},
	}
}

func (f *calcFixture) withPreferential(rates ...model.AgreementRate) *calcFixture {
	f.rates.findAgreementRatesFunc = func(context.Context, string, string) ([]model.AgreementRate, error) {
		return rates, nil
	}
	return f
}

func (f *calcFixture) service() service.TariffCalculationService {
	logger := zap.NewNop()
	return service.NewTariffCalculationService(
		f.products,
		f.rates,
		service.NewCurrencyService(f.fx, logger),
		service.NewProgramService(f.agreements, logger),
		service.NewDateRangeValidator(f.rates),
		f.metrics,
		service.CalculationSettings{WorkingCurrency: "USD", DefaultCurrency: "USD"},
		logger,
	)
}

func baseRequest() service.CalculationRequest {
	return service.CalculationRequest{
		HTSCode:            testHTS,
		OriginCountry:      "MX",
		DestinationCountry: "US",
		ProductValue:       dec("1000.00"),
		Quantity:           10,
	}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "%s: want %s, got %s", field, want, got)
}

func TestCalculate_MFNOnly(t *testing.T) {
	f := newCalcFixture()

	res, err := f.service().Calculate(context.Background(), baseRequest())
	require.NoError(t, err)

	assert.Equal(t, testHTS, res.HTSCode)
	assert.Equal(t, "Test widgets", res.ProductDescription)
	assert.Equal(t, service.ProgramTypeMFN, res.AppliedProgramType)
	assert.Equal(t, "MFN", res.AppliedProgramName)
	assert.Equal(t, "10% + 5 per unit", res.AppliedRateLabel)
	assertDecimal(t, "150.00", res.MFNTariffAmount, "mfn tariff")
	assertDecimal(t, "150.00", res.TotalTariffAmount, "total tariff")
	assertDecimal(t, "10000.00", res.CustomsBase, "customs base")
	assertDecimal(t, "10150.00", res.TotalImportPrice, "total import price")
	assertDecimal(t, "0", res.SavingsVsMFN, "savings")
	assert.Equal(t, "USD", res.Currency)
	assert.Equal(t, "MFN rate is the best available option", res.Recommendation)
	assert.Equal(t, []string{
		"No preferential trade programs available for this product/country combination",
		"Ensure proper documentation for preferential treatment",
		"Verify country of origin certification requirements",
	}, res.ComplianceNotes)
	require.Len(t, res.RateComparison, 1)
	assert.Equal(t, "Eligible", res.RateComparison[0].EligibilityStatus)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), res.EffectiveDate)
	assert.Equal(t, []string{service.ProgramTypeMFN}, f.metrics.calculations)
}

func TestCalculate_PreferentialStrictlyCheaper(t *testing.T) {
	pref := agreementRate("USMCA", "United States-Mexico-Canada Agreement", decPtr("0.03"), decPtr("1.50"))
	pref.TextRate = "3% + $1.50/unit"
	f := newCalcFixture().withPreferential(pref)
	f.agreements.findBetweenCountriesFunc = func(context.Context, string, string) ([]model.TradeAgreement, error) {
		return []model.TradeAgreement{
			agreement("USMCA", "United States-Mexico-Canada Agreement", date("2020-07-01"), nil),
			agreement("GSP", "Generalized System of Preferences", date("1976-01-01"), nil),
		}, nil
	}

	res, err := f.service().Calculate(context.Background(), baseRequest())
	require.NoError(t, err)

	assert.Equal(t, service.ProgramTypePreferential, res.AppliedProgramType)
	assert.Equal(t, "United States-Mexico-Canada Agreement", res.AppliedProgramName)
	assert.Equal(t, "3% + $1.50/unit", res.AppliedRateLabel)
	assertDecimal(t, "150.00", res.MFNTariffAmount, "mfn tariff")
	assertDecimal(t, "45.00", res.TotalTariffAmount, "total tariff")
	assertDecimal(t, "105.00", res.SavingsVsMFN, "savings")
	assertDecimal(t, "10045.00", res.TotalImportPrice, "total import price")
	assert.Equal(t, "Use United States-Mexico-Canada Agreement for lowest duty rate", res.Recommendation)
	assert.Equal(t, []string{
		"ELIGIBLE programs (to be verified): USMCA - United States-Mexico-Canada Agreement, GSP - Generalized System of Preferences",
		"GSP: Verify country eligibility and product requirements",
		"USMCA: Verify rules of origin requirements",
		"Ensure proper documentation for preferential treatment",
		"Verify country of origin certification requirements",
	}, res.ComplianceNotes)

	require.Len(t, res.RateComparison, 2)
	assert.Equal(t, "USMCA", res.RateComparison[1].AgreementCode)
	assert.Equal(t, "Unknown", res.RateComparison[1].EligibilityStatus)
	assertDecimal(t, "45.00", res.RateComparison[1].CalculatedDuty, "preferential duty")
}

func TestCalculate_TiesPreferMFN(t *testing.T) {
	f := newCalcFixture().withPreferential(
		agreementRate("KORUS", "Korea FTA", decPtr("0.10"), decPtr("5.00")),
	)

	res, err := f.service().Calculate(context.Background(), baseRequest())
	require.NoError(t, err)

	assert.Equal(t, service.ProgramTypeMFN, res.AppliedProgramType)
	assertDecimal(t, "150.00", res.TotalTariffAmount, "total tariff")
	assertDecimal(t, "0", res.SavingsVsMFN, "savings")
}

func TestCalculate_FirstOfEqualPreferentialWins(t *testing.T) {
	f := newCalcFixture().withPreferential(
		agreementRate("A", "Agreement A", decPtr("0.01"), nil),
		agreementRate("B", "Agreement B", decPtr("0.01"), nil),
		agreementRate("C", "Agreement C", decPtr("0.02"), nil),
	)

	res, err := f.service().Calculate(context.Background(), baseRequest())
	require.NoError(t, err)

	assert.Equal(t, "Agreement A", res.AppliedProgramName)
	assert.Equal(t, "1%", res.AppliedRateLabel)
	assertDecimal(t, "10.00", res.TotalTariffAmount, "total tariff")
	assertDecimal(t, "140.00", res.SavingsVsMFN, "savings")
}

func TestCalculate_InvalidInputBeforeLookup(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*service.CalculationRequest)
		msg    string
	}{
		{"missing HTS code", func(r *service.CalculationRequest) { r.HTSCode = "  " }, "HTS code is required"},
		{"zero product value", func(r *service.CalculationRequest) { r.ProductValue = decimal.Zero }, "product value must be greater than 0"},
		{"negative product value", func(r *service.CalculationRequest) { r.ProductValue = dec("-1") }, "product value must be greater than 0"},
		{"sub-cent product value", func(r *service.CalculationRequest) { r.ProductValue = dec("10.005") }, "product value must have at most 2 decimal places"},
		{"zero quantity", func(r *service.CalculationRequest) { r.Quantity = 0 }, "quantity must be greater than 0"},
		{"negative quantity", func(r *service.CalculationRequest) { r.Quantity = -3 }, "quantity must be greater than 0"},
		{"short HTS code", func(r *service.CalculationRequest) { r.HTSCode = "1234.56" }, "HTS code must be exactly 8 digits"},
		{"missing destination", func(r *service.CalculationRequest) { r.DestinationCountry = "" }, "destination country is required"},
		{"malformed date", func(r *service.CalculationRequest) { r.TariffEffectiveDate = "01/02/2024" }, "invalid tariff effective date format (expected YYYY-MM-DD)"},
		{"inverted window", func(r *service.CalculationRequest) {
			r.TariffEffectiveDate, r.TariffExpirationDate = "2024-06-01", "2024-05-31"
		}, "tariff effective date must not be after tariff expiration date"},
		{"bad currency", func(r *service.CalculationRequest) { r.Currency = "EURO" }, "currency must be a 3-letter code"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCalcFixture()
			req := baseRequest()
			tt.mutate(&req)

			res, err := f.service().Calculate(context.Background(), req)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.Equal(t, apperror.KindInvalidInput, apperror.KindOf(err))
			assert.Equal(t, tt.msg, err.Error())
			assert.Zero(t, f.products.calls, "no product lookup expected")
			assert.Zero(t, f.rates.calls, "no rate lookup expected")
			assert.Equal(t, []string{string(apperror.KindInvalidInput)}, f.metrics.failures)
		})
	}
}

func TestCalculate_UnknownHTSCode(t *testing.T) {
	req := baseRequest()
	req.HTSCode = "8765.43.21"

	_, err := newCalcFixture().service().Calculate(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	assert.Contains(t, err.Error(), "87654321")
}

func TestCalculate_NormalizesHTSCode(t *testing.T) {
	req := baseRequest()
	req.HTSCode = "1234.56.78"

	res, err := newCalcFixture().service().Calculate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, testHTS, res.HTSCode)
}

func TestCalculate_DateRangeBoundary(t *testing.T) {
	t.Run("one day before MFN begin fails", func(t *testing.T) {
		f := newCalcFixture()
		req := baseRequest()
		req.TariffEffectiveDate = "2023-12-31"

		res, err := f.service().Calculate(context.Background(), req)
		require.Error(t, err)
		assert.Nil(t, res)
		assert.Equal(t, apperror.KindDateRangeViolation, apperror.KindOf(err))
		assert.Equal(t, "Tariff effective date (2023-12-31) is before MFN rate effective date (2024-01-01)", err.Error())
		assert.Zero(t, f.products.calls)
	})

	t.Run("equal to MFN begin succeeds", func(t *testing.T) {
		req := baseRequest()
		req.TariffEffectiveDate = "2024-01-01"
		req.TariffExpirationDate = "2024-12-31"

		res, err := newCalcFixture().service().Calculate(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "2024-01-01", res.EffectiveDate)
		assert.Contains(t, res.ComplianceNotes, "Tariff rates effective from 2024-01-01 to 2024-12-31")
	})

	t.Run("agreement warnings do not block", func(t *testing.T) {
		pref := agreementRate("USMCA", "USMCA", decPtr("0"), nil)
		pref.ExpirationDate = date("2024-06-30")
		req := baseRequest()
		req.TariffExpirationDate = "2024-12-31"

		res, err := newCalcFixture().withPreferential(pref).service().Calculate(context.Background(), req)
		require.NoError(t, err)
		assert.Len(t, res.DateWarnings, 1)
		assert.Contains(t, res.ComplianceNotes, "Tariff rates effective until 2024-12-31")
	})
}

func TestCalculate_DownstreamFailure(t *testing.T) {
	boom := errors.New("connection reset")
	f := newCalcFixture()
	f.rates.findAgreementRatesFunc = func(context.Context, string, string) ([]model.AgreementRate, error) {
		return nil, boom
	}

	res, err := f.service().Calculate(context.Background(), baseRequest())
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Equal(t, apperror.KindCalculationFailed, apperror.KindOf(err))
	assert.ErrorIs(t, err, boom)
}

func TestCalculate_NoMFNRate(t *testing.T) {
	f := newCalcFixture()
	f.rates.findMFNRateFunc = nil

	res, err := f.service().Calculate(context.Background(), baseRequest())
	require.NoError(t, err)

	assert.Equal(t, service.ProgramTypeMFN, res.AppliedProgramType)
	assert.Equal(t, "Free", res.AppliedRateLabel)
	assertDecimal(t, "0", res.TotalTariffAmount, "total tariff")
	assertDecimal(t, "10000.00", res.TotalImportPrice, "total import price")
	assert.Empty(t, res.RateComparison)
}

func TestCalculate_TextRateIsNotPriced(t *testing.T) {
	f := newCalcFixture()
	f.rates.findMFNRateFunc = func(context.Context, string) (*model.MfnTariffRate, error) {
		return &model.MfnTariffRate{TextRate: "2.5% + 5¢/kg", SpecificRate: decPtr("5")}, nil
	}
	// Reading 2.5% from the MFN label would price MFN at 75.00 and hand the win to this rate.
	f.withPreferential(agreementRate("X", "Specific Only", nil, decPtr("5.5")))

	res, err := f.service().Calculate(context.Background(), baseRequest())
	require.NoError(t, err)

	want := service.ComputeDuty(nil, decPtr("5"), dec("1000.00"), 10)
	assertDecimal(t, "50.00", want, "formula")
	assertDecimal(t, want.String(), res.TotalTariffAmount, "total tariff")
	assertDecimal(t, want.String(), res.MFNTariffAmount, "mfn tariff")
	assert.Equal(t, service.ProgramTypeMFN, res.AppliedProgramType)
	assert.Equal(t, "2.5% + 5¢/kg", res.AppliedRateLabel)
	assertDecimal(t, "55.00", res.RateComparison[1].CalculatedDuty, "preferential duty")
}

func TestCalculate_SavingsMatchConvertedAmounts(t *testing.T) {
	f := newCalcFixture().withPreferential(agreementRate("X", "Partial", decPtr("0.037"), decPtr("0.333")))
	f.fx.findLatestFunc = func(_ context.Context, base, target string, _ time.Time) (*model.CurrencyExchangeRate, error) {
		if base == "USD" && target == "GBP" {
			return &model.CurrencyExchangeRate{ExchangeRate: dec("0.333")}, nil
		}
		return nil, gorm.ErrRecordNotFound
	}
	req := baseRequest()
	req.Currency = "GBP"

	res, err := f.service().Calculate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, service.ProgramTypePreferential, res.AppliedProgramType)
	assert.True(t, res.SavingsVsMFN.Equal(res.MFNTariffAmount.Sub(res.TotalTariffAmount)),
		"%s != %s - %s", res.SavingsVsMFN, res.MFNTariffAmount, res.TotalTariffAmount)
	assert.True(t, res.TotalImportPrice.Sub(res.TotalTariffAmount).Equal(res.CustomsBase))
}

func TestCalculate_CurrencyConversion(t *testing.T) {
	t.Run("converts base and tariff consistently", func(t *testing.T) {
		f := newCalcFixture()
		f.fx.findLatestFunc = func(_ context.Context, base, target string, _ time.Time) (*model.CurrencyExchangeRate, error) {
			if base == "USD" && target == "EUR" {
				return &model.CurrencyExchangeRate{ExchangeRate: dec("0.5")}, nil
			}
			return nil, gorm.ErrRecordNotFound
		}
		req := baseRequest()
		req.Currency = "eur"

		res, err := f.service().Calculate(context.Background(), req)
		require.NoError(t, err)

		assert.Equal(t, "EUR", res.Currency)
		assertDecimal(t, "75.00", res.TotalTariffAmount, "total tariff")
		assertDecimal(t, "5000.00", res.CustomsBase, "customs base")
		assertDecimal(t, "5075.00", res.TotalImportPrice, "total import price")
		assert.True(t, res.TotalImportPrice.Sub(res.TotalTariffAmount).Equal(res.CustomsBase))
	})

	t.Run("uses the tariff date for dated requests", func(t *testing.T) {
		f := newCalcFixture()
		f.fx.findOnDateFunc = func(_ context.Context, base, target string, d time.Time) (*model.CurrencyExchangeRate, error) {
			if base == "USD" && target == "CAD" && d.Equal(*date("2024-03-01")) {
				return &model.CurrencyExchangeRate{ExchangeRate: dec("2")}, nil
			}
			return nil, gorm.ErrRecordNotFound
		}
		req := baseRequest()
		req.Currency = "CAD"
		req.TariffEffectiveDate = "2024-03-01"

		res, err := f.service().Calculate(context.Background(), req)
		require.NoError(t, err)
		assertDecimal(t, "300.00", res.TotalTariffAmount, "total tariff")
	})

	t.Run("missing rate leaves amounts unchanged", func(t *testing.T) {
		req := baseRequest()
		req.Currency = "JPY"

		res, err := newCalcFixture().service().Calculate(context.Background(), req)
		require.NoError(t, err)
		assertDecimal(t, "150.00", res.TotalTariffAmount, "total tariff")
		assertDecimal(t, "10150.00", res.TotalImportPrice, "total import price")
	})
}

func TestCalculate_TotalsAddUp(t *testing.T) {
	cases := []struct {
		value    string
		quantity int
	}{
		{"0.01", 1},
		{"10.000", 1},
		{"19.99", 7},
		{"333.33", 3},
		{"1000.00", 10},
		{"12345.67", 250},
	}
	for _, c := range cases {
		req := baseRequest()
		req.ProductValue = dec(c.value)
		req.Quantity = c.quantity

		res, err := newCalcFixture().withPreferential(
			agreementRate("X", "Partial", decPtr("0.037"), decPtr("0.333")),
		).service().Calculate(context.Background(), req)
		require.NoError(t, err)

		base := dec(c.value).Mul(decimal.NewFromInt(int64(c.quantity)))
		assert.True(t, res.TotalImportPrice.Sub(res.TotalTariffAmount).Equal(base),
			"value %s qty %d: %s - %s != %s", c.value, c.quantity, res.TotalImportPrice, res.TotalTariffAmount, base)
		assert.True(t, res.SavingsVsMFN.Equal(res.MFNTariffAmount.Sub(res.TotalTariffAmount)))
	}
}

func TestValidateHTSCode(t *testing.T) {
	ctx := context.Background()
	svc := newCalcFixture().service()

	res, err := svc.ValidateHTSCode(ctx, "")
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, "EMPTY_HTS_CODE", res.ErrorCode)

	res, err = svc.ValidateHTSCode(ctx, "1234")
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, "INVALID_FORMAT", res.ErrorCode)
	assert.Equal(t, "1234", res.ProvidedCode)

	res, err = svc.ValidateHTSCode(ctx, "9999.99.99")
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, "HTS_CODE_NOT_FOUND", res.ErrorCode)
	assert.Equal(t, "99999999", res.HTSCode)

	res, err = svc.ValidateHTSCode(ctx, "1234.56.78")
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.True(t, res.HasMFNRate)
	assert.Equal(t, "7", res.MFNRateType)
	require.NotNil(t, res.MFNRate)
	assertDecimal(t, "0.10", *res.MFNRate, "mfn rate")
}

func TestValidateHTSCode_RateFromLabel(t *testing.T) {
	f := newCalcFixture()
	f.rates.findMFNRateFunc = func(context.Context, string) (*model.MfnTariffRate, error) {
		return &model.MfnTariffRate{TextRate: "6.5%"}, nil
	}

	res, err := f.service().ValidateHTSCode(context.Background(), testHTS)
	require.NoError(t, err)
	require.NotNil(t, res.MFNRate)
	assertDecimal(t, "0.065", *res.MFNRate, "mfn rate")
}

func TestCostBreakdown(t *testing.T) {
	req := baseRequest()
	req.Currency = "EUR" // breakdown always reports the working currency

	res, err := newCalcFixture().service().CostBreakdown(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "MFN", res.AppliedProgram)
	assertDecimal(t, "10000.00", res.PurchasePrice, "purchase price")
	assertDecimal(t, "150.00", res.TariffAmount, "tariff amount")
	assertDecimal(t, "10150.00", res.TotalImportPrice, "total import price")
	assert.Equal(t, map[string]string{
		"Purchase Price":     "$10000.00",
		"Applied Program":    "MFN",
		"Tariff Amount":      "$150.00",
		"Total Import Price": "$10150.00",
	}, res.Breakdown)
}
