package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"tariff-backend/internal/model"
	"tariff-backend/internal/service"
)

// --- Mock implementations ---

type mockProductRepository struct {
	findByHTS8Func func(ctx context.Context, hts8 string) (*model.Product, error)
	calls          int
}

func (m *mockProductRepository) FindByHTS8(ctx context.Context, hts8 string) (*model.Product, error) {
	m.calls++
	if m.findByHTS8Func != nil {
		return m.findByHTS8Func(ctx, hts8)
	}
	return nil, gorm.ErrRecordNotFound
}

type mockTariffRateRepository struct {
	findMFNRateFunc        func(ctx context.Context, hts8 string) (*model.MfnTariffRate, error)
	findAgreementRatesFunc func(ctx context.Context, hts8, destination string) ([]model.AgreementRate, error)
	calls                  int
}

func (m *mockTariffRateRepository) FindMFNRate(ctx context.Context, hts8 string) (*model.MfnTariffRate, error) {
	m.calls++
	if m.findMFNRateFunc != nil {
		return m.findMFNRateFunc(ctx, hts8)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTariffRateRepository) FindAgreementRates(ctx context.Context, hts8, destination string) ([]model.AgreementRate, error) {
	m.calls++
	if m.findAgreementRatesFunc != nil {
		return m.findAgreementRatesFunc(ctx, hts8, destination)
	}
	return nil, nil
}

type mockExchangeRateRepository struct {
	findLatestFunc func(ctx context.Context, base, target string, asOf time.Time) (*model.CurrencyExchangeRate, error)
	findOnDateFunc func(ctx context.Context, base, target string, date time.Time) (*model.CurrencyExchangeRate, error)
}

func (m *mockExchangeRateRepository) FindLatest(ctx context.Context, base, target string, asOf time.Time) (*model.CurrencyExchangeRate, error) {
	if m.findLatestFunc != nil {
		return m.findLatestFunc(ctx, base, target, asOf)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockExchangeRateRepository) FindOnDate(ctx context.Context, base, target string, date time.Time) (*model.CurrencyExchangeRate, error) {
	if m.findOnDateFunc != nil {
		return m.findOnDateFunc(ctx, base, target, date)
	}
	return nil, gorm.ErrRecordNotFound
}

type mockTradeAgreementRepository struct {
	findBetweenCountriesFunc func(ctx context.Context, origin, destination string) ([]model.TradeAgreement, error)
	findByParticipantFunc    func(ctx context.Context, country string) ([]model.TradeAgreement, error)
}

func (m *mockTradeAgreementRepository) FindBetweenCountries(ctx context.Context, origin, destination string) ([]model.TradeAgreement, error) {
	if m.findBetweenCountriesFunc != nil {
		return m.findBetweenCountriesFunc(ctx, origin, destination)
	}
	return nil, nil
}

func (m *mockTradeAgreementRepository) FindByParticipant(ctx context.Context, country string) ([]model.TradeAgreement, error) {
	if m.findByParticipantFunc != nil {
		return m.findByParticipantFunc(ctx, country)
	}
	return nil, nil
}

// mockCalculationRepository is an in-memory history table.
type mockCalculationRepository struct {
	mu        sync.Mutex
	rows      map[uuid.UUID]model.TariffCalculation
	createErr error
	lastQuery string
}

func newMockCalculationRepository() *mockCalculationRepository {
	return &mockCalculationRepository{rows: map[uuid.UUID]model.TariffCalculation{}}
}

func (m *mockCalculationRepository) Create(_ context.Context, calc *model.TariffCalculation) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if calc.ID == uuid.Nil {
		calc.ID = uuid.New()
	}
	calc.CreatedAt = time.Now()
	calc.UpdatedAt = calc.CreatedAt
	m.rows[calc.ID] = *calc
	return nil
}

func (m *mockCalculationRepository) Update(_ context.Context, calc *model.TariffCalculation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	calc.UpdatedAt = time.Now()
	m.rows[calc.ID] = *calc
	return nil
}

func (m *mockCalculationRepository) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return false, nil
	}
	delete(m.rows, id)
	return true, nil
}

func (m *mockCalculationRepository) FindByID(_ context.Context, id uuid.UUID) (*model.TariffCalculation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

func (m *mockCalculationRepository) List(_ context.Context, _, _ int) ([]model.TariffCalculation, int64, error) {
	m.lastQuery = "all"
	return m.filter(func(model.TariffCalculation) bool { return true })
}

func (m *mockCalculationRepository) ListByHTSCode(_ context.Context, htsCode string, _, _ int) ([]model.TariffCalculation, int64, error) {
	m.lastQuery = "hts:" + htsCode
	return m.filter(func(c model.TariffCalculation) bool { return c.HTSCode == htsCode })
}

func (m *mockCalculationRepository) ListByDestination(_ context.Context, destination string, _, _ int) ([]model.TariffCalculation, int64, error) {
	m.lastQuery = "destination:" + destination
	return m.filter(func(c model.TariffCalculation) bool { return c.DestinationCountry == destination })
}

func (m *mockCalculationRepository) filter(keep func(model.TariffCalculation) bool) ([]model.TariffCalculation, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.TariffCalculation
	for _, row := range m.rows {
		if keep(row) {
			out = append(out, row)
		}
	}
	return out, int64(len(out)), nil
}

type mockAuditRepository struct {
	entries []model.AuditLog
	logErr  error
}

func (m *mockAuditRepository) Log(_ context.Context, entry *model.AuditLog) error {
	if m.logErr != nil {
		return m.logErr
	}
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockAuditRepository) List(_ context.Context, action string, _, _ int) ([]model.AuditLog, int64, error) {
	var out []model.AuditLog
	for _, e := range m.entries {
		if action == "" || e.Action == action {
			out = append(out, e)
		}
	}
	return out, int64(len(out)), nil
}

// mockTransactionManager runs fn directly; a failing fn leaves earlier writes in place, so tests assert on errors only.
type mockTransactionManager struct {
	runs int
}

func (m *mockTransactionManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	m.runs++
	return fn(ctx)
}

type mockNotifier struct {
	events []service.CalculationEvent
}

func (m *mockNotifier) PublishCalculationEvent(event service.CalculationEvent) {
	m.events = append(m.events, event)
}

type recordingMetrics struct {
	calculations []string
	failures     []string
	changes      []string
}

func (r *recordingMetrics) ObserveCalculation(programType string, _ time.Duration) {
	r.calculations = append(r.calculations, programType)
}

func (r *recordingMetrics) ObserveFailure(kind string) {
	r.failures = append(r.failures, kind)
}

func (r *recordingMetrics) ObserveRecordChange(action string) {
	r.changes = append(r.changes, action)
}

// --- Fixtures ---

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func date(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func product(hts string) *model.Product {
	return &model.Product{ID: uuid.New(), HTS8: hts, BriefDescription: "Test widgets"}
}

func agreementRate(code, name string, adValorem, specific *decimal.Decimal) model.AgreementRate {
	return model.AgreementRate{
		ID:            uuid.New(),
		AdValoremRate: adValorem,
		SpecificRate:  specific,
		Agreement:     model.TradeAgreement{AgreementCode: code, AgreementName: name},
	}
}
