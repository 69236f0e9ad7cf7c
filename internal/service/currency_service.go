package service

import (
	"context"
	"errors"
	"time"

	"tariff-backend/internal/model"
	"tariff-backend/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// inverseRatePrecision is the number of decimals kept when a reverse rate row is inverted.
const inverseRatePrecision = 6

// CurrencyService converts amounts through the exchange rate table.
// Conversion is best-effort: when no rate exists, or the lookup fails, the amount is returned unchanged.
type CurrencyService interface {
	// Convert uses the latest rate effective today.
	Convert(ctx context.Context, amount decimal.Decimal, from, to string) decimal.Decimal
	// ConvertOn prefers a rate effective exactly on date and falls back to Convert.
	ConvertOn(ctx context.Context, amount decimal.Decimal, from, to string, date time.Time) decimal.Decimal
	// Rate returns the latest effective rate and whether one exists. Identical currencies yield 1.
	Rate(ctx context.Context, from, to string) (decimal.Decimal, bool)
}

type currencyService struct {
	rateRepo repository.ExchangeRateRepository
	logger   *zap.Logger
}

func NewCurrencyService(rateRepo repository.ExchangeRateRepository, logger *zap.Logger) CurrencyService {
	return &currencyService{rateRepo: rateRepo, logger: logger.Named("currency")}
}

type rateLookup func(ctx context.Context, base, target string) (*model.CurrencyExchangeRate, error)

func (s *currencyService) Convert(ctx context.Context, amount decimal.Decimal, from, to string) decimal.Decimal {
	from, to = normalizeCode(from), normalizeCode(to)
	if from == to {
		return amount
	}
	rate, ok := s.resolve(ctx, from, to, s.latest)
	if !ok {
		s.logger.Debug("no exchange rate available, amount left unchanged",
			zap.String("from", from), zap.String("to", to))
		return amount
	}
	return roundMoney(amount.Mul(rate))
}

func (s *currencyService) ConvertOn(ctx context.Context, amount decimal.Decimal, from, to string, date time.Time) decimal.Decimal {
	from, to = normalizeCode(from), normalizeCode(to)
	if from == to {
		return amount
	}
	onDate := func(ctx context.Context, base, target string) (*model.CurrencyExchangeRate, error) {
		return s.rateRepo.FindOnDate(ctx, base, target, date)
	}
	if rate, ok := s.resolve(ctx, from, to, onDate); ok {
		return roundMoney(amount.Mul(rate))
	}
	return s.Convert(ctx, amount, from, to)
}

func (s *currencyService) Rate(ctx context.Context, from, to string) (decimal.Decimal, bool) {
	from, to = normalizeCode(from), normalizeCode(to)
	if from == to {
		return decimal.NewFromInt(1), true
	}
	return s.resolve(ctx, from, to, s.latest)
}

func (s *currencyService) latest(ctx context.Context, base, target string) (*model.CurrencyExchangeRate, error) {
	return s.rateRepo.FindLatest(ctx, base, target, today(time.Now()))
}

// resolve tries the direct pair first, then the reverse pair inverted.
func (s *currencyService) resolve(ctx context.Context, from, to string, lookup rateLookup) (decimal.Decimal, bool) {
	if row, ok := s.find(ctx, from, to, lookup); ok {
		return row.ExchangeRate, true
	}
	row, ok := s.find(ctx, to, from, lookup)
	if !ok || row.ExchangeRate.IsZero() {
		return decimal.Zero, false
	}
	return decimal.NewFromInt(1).DivRound(row.ExchangeRate, inverseRatePrecision), true
}

func (s *currencyService) find(ctx context.Context, base, target string, lookup rateLookup) (*model.CurrencyExchangeRate, bool) {
	row, err := lookup(ctx, base, target)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("exchange rate lookup failed",
				zap.String("base", base), zap.String("target", target), zap.Error(err))
		}
		return nil, false
	}
	return row, row != nil
}

// FormatConvertedAmount renders a conversion result at cent precision, except for identity
// conversions, which keep the caller's amount as given.
func FormatConvertedAmount(amount decimal.Decimal, from, to string) string {
	if normalizeCode(from) == normalizeCode(to) {
		return amount.String()
	}
	return amount.StringFixed(2)
}
