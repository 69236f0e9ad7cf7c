// Package app assembles repositories and services for the server and the CLI.
package app

import (
	"tariff-backend/internal/config"
	"tariff-backend/internal/repository"
	"tariff-backend/internal/service"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services is the set of domain services shared by every entry point
type Services struct {
	Calculator service.TariffCalculationService
	Records    service.CalculationRecordService
	Programs   service.ProgramService
	Currency   service.CurrencyService
	Audit      service.AuditService
}

// NewServices wires Repository -> Service. notifier and metrics may be nil.
func NewServices(db *gorm.DB, cfg *config.Config, notifier service.CalculationNotifier, metrics service.CalculationMetrics, logger *zap.Logger) *Services {
	productRepo := repository.NewProductRepository(db)
	rateRepo := repository.NewTariffRateRepository(db)
	exchangeRepo := repository.NewExchangeRateRepository(db)
	agreementRepo := repository.NewTradeAgreementRepository(db)
	calcRepo := repository.NewCalculationRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	txManager := repository.NewTransactionManager(db)

	if metrics == nil {
		metrics = service.NopMetrics{}
	}

	currency := service.NewCurrencyService(exchangeRepo, logger)
	programs := service.NewProgramService(agreementRepo, logger)
	calculator := service.NewTariffCalculationService(
		productRepo,
		rateRepo,
		currency,
		programs,
		service.NewDateRangeValidator(rateRepo),
		metrics,
		service.CalculationSettings{
			WorkingCurrency: cfg.Calculation.WorkingCurrency,
			DefaultCurrency: cfg.Calculation.DefaultCurrency,
		},
		logger,
	)

	return &Services{
		Calculator: calculator,
		Records:    service.NewCalculationRecordService(calculator, calcRepo, auditRepo, txManager, notifier, metrics, logger),
		Programs:   programs,
		Currency:   currency,
		Audit:      service.NewAuditService(auditRepo),
	}
}
