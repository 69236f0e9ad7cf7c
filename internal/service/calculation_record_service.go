package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tariff-backend/internal/model"
	"tariff-backend/internal/repository"
	"tariff-backend/pkg/apperror"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	EventCalculationCreated = "calculation.created"
	EventCalculationUpdated = "calculation.updated"
	EventCalculationDeleted = "calculation.deleted"
)

// CalculationNotifier fans history changes out to live listeners
type CalculationNotifier interface {
	PublishCalculationEvent(event CalculationEvent)
}

// CalculationRecordService keeps the history of calculations.
// Stored totals always come from TariffCalculationService; the store never recomputes them itself.
type CalculationRecordService interface {
	Create(ctx context.Context, userID string, req CalculationRequest) (SavedCalculationResponse, error)
	Get(ctx context.Context, id string) (CalculationRecordResponse, error)
	List(ctx context.Context, filter CalculationFilter, page, limit int) ([]CalculationRecordResponse, int64, error)
	Update(ctx context.Context, userID, id string, req CalculationRequest) (SavedCalculationResponse, error)
	// Delete reports whether the record existed.
	Delete(ctx context.Context, userID, id string) (bool, error)
}

type calculationRecordService struct {
	calculator TariffCalculationService
	calcRepo   repository.CalculationRepository
	auditRepo  repository.AuditRepository
	txManager  repository.TransactionManager
	notifier   CalculationNotifier
	metrics    CalculationMetrics
	logger     *zap.Logger
}

func NewCalculationRecordService(
	calculator TariffCalculationService,
	calcRepo repository.CalculationRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	notifier CalculationNotifier,
	metrics CalculationMetrics,
	logger *zap.Logger,
) CalculationRecordService {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &calculationRecordService{
		calculator: calculator,
		calcRepo:   calcRepo,
		auditRepo:  auditRepo,
		txManager:  txManager,
		notifier:   notifier,
		metrics:    metrics,
		logger:     logger.Named("history"),
	}
}

func (s *calculationRecordService) Create(ctx context.Context, userID string, req CalculationRequest) (SavedCalculationResponse, error) {
	result, err := s.calculator.Calculate(ctx, req)
	if err != nil {
		return SavedCalculationResponse{}, err
	}

	calc := model.TariffCalculation{CalculationType: model.CalculationTypeStandard}
	applyResult(&calc, result, req)
	calc.CreatedBy = parseUserID(userID)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.calcRepo.Create(txCtx, &calc); err != nil {
			return fmt.Errorf("failed to create tariff calculation: %w", err)
		}
		return s.writeAuditLog(txCtx, userID, model.ActionCreateCalculation, &calc, req)
	})
	if err != nil {
		return SavedCalculationResponse{}, err
	}

	s.afterCommit(EventCalculationCreated, &calc)
	return SavedCalculationResponse{Record: toCalculationRecordResponse(calc), Result: result}, nil
}

func (s *calculationRecordService) Get(ctx context.Context, id string) (CalculationRecordResponse, error) {
	calcID, err := parseCalculationID(id)
	if err != nil {
		return CalculationRecordResponse{}, err
	}

	calc, err := s.calcRepo.FindByID(ctx, calcID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CalculationRecordResponse{}, apperror.NotFound("tariff calculation", id)
		}
		return CalculationRecordResponse{}, fmt.Errorf("failed to fetch tariff calculation: %w", err)
	}
	return toCalculationRecordResponse(*calc), nil
}

func (s *calculationRecordService) List(ctx context.Context, filter CalculationFilter, page, limit int) ([]CalculationRecordResponse, int64, error) {
	var (
		calcs []model.TariffCalculation
		total int64
		err   error
	)
	switch {
	case filter.HTSCode != "":
		calcs, total, err = s.calcRepo.ListByHTSCode(ctx, cleanHTSCode(filter.HTSCode), page, limit)
	case filter.Destination != "":
		calcs, total, err = s.calcRepo.ListByDestination(ctx, normalizeCode(filter.Destination), page, limit)
	default:
		calcs, total, err = s.calcRepo.List(ctx, page, limit)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tariff calculations: %w", err)
	}

	res := make([]CalculationRecordResponse, 0, len(calcs))
	for _, c := range calcs {
		res = append(res, toCalculationRecordResponse(c))
	}
	return res, total, nil
}

// Update re-runs the calculation, date window included, and replaces the stored totals.
func (s *calculationRecordService) Update(ctx context.Context, userID, id string, req CalculationRequest) (SavedCalculationResponse, error) {
	calcID, err := parseCalculationID(id)
	if err != nil {
		return SavedCalculationResponse{}, err
	}

	calc, err := s.calcRepo.FindByID(ctx, calcID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SavedCalculationResponse{}, apperror.NotFound("tariff calculation", id)
		}
		return SavedCalculationResponse{}, fmt.Errorf("failed to fetch tariff calculation: %w", err)
	}

	result, err := s.calculator.Calculate(ctx, req)
	if err != nil {
		return SavedCalculationResponse{}, err
	}
	applyResult(calc, result, req)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.calcRepo.Update(txCtx, calc); err != nil {
			return fmt.Errorf("failed to update tariff calculation: %w", err)
		}
		return s.writeAuditLog(txCtx, userID, model.ActionUpdateCalculation, calc, req)
	})
	if err != nil {
		return SavedCalculationResponse{}, err
	}

	s.afterCommit(EventCalculationUpdated, calc)
	return SavedCalculationResponse{Record: toCalculationRecordResponse(*calc), Result: result}, nil
}

func (s *calculationRecordService) Delete(ctx context.Context, userID, id string) (bool, error) {
	calcID, err := parseCalculationID(id)
	if err != nil {
		return false, err
	}

	var deleted bool
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		deleted, err = s.calcRepo.Delete(txCtx, calcID)
		if err != nil {
			return fmt.Errorf("failed to delete tariff calculation: %w", err)
		}
		if !deleted {
			return nil
		}
		return s.writeAuditLog(txCtx, userID, model.ActionDeleteCalculation,
			&model.TariffCalculation{ID: calcID}, map[string]string{"deleted_id": id})
	})
	if err != nil {
		return false, err
	}

	if deleted {
		s.afterCommit(EventCalculationDeleted, &model.TariffCalculation{ID: calcID})
	}
	return deleted, nil
}

func (s *calculationRecordService) afterCommit(action string, calc *model.TariffCalculation) {
	s.metrics.ObserveRecordChange(action)
	if s.notifier == nil {
		return
	}
	event := CalculationEvent{
		Action:        action,
		CalculationID: calc.ID.String(),
		At:            time.Now().UTC().Format(time.RFC3339),
	}
	if action != EventCalculationDeleted {
		event.HTSCode = calc.HTSCode
		event.DestinationCountry = calc.DestinationCountry
		event.TotalImportPrice = calc.TotalImportPrice.StringFixed(2)
		event.Currency = calc.Currency
	}
	s.notifier.PublishCalculationEvent(event)
}

// writeAuditLog runs inside the caller's transaction, so a failed audit write rolls the change back.
func (s *calculationRecordService) writeAuditLog(ctx context.Context, userID, action string, calc *model.TariffCalculation, details interface{}) error {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to encode audit details: %w", err)
	}

	entry := model.AuditLog{
		UserID:     parseUserID(userID),
		Action:     action,
		EntityID:   calc.ID.String(),
		EntityName: auditEntityName(calc),
		Details:    string(detailsJSON),
	}
	if err := s.auditRepo.Log(ctx, &entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func auditEntityName(calc *model.TariffCalculation) string {
	if calc.HTSCode == "" {
		return "tariff calculation"
	}
	return calc.HTSCode + " " + calc.OriginCountry + "->" + calc.DestinationCountry
}

// applyResult copies the request fields and derived totals onto the stored row.
func applyResult(calc *model.TariffCalculation, result *CalculationResult, req CalculationRequest) {
	calc.HTSCode = result.HTSCode
	calc.OriginCountry = result.OriginCountry
	calc.DestinationCountry = result.DestinationCountry
	calc.ProductValue = result.ProductValue
	calc.Quantity = result.Quantity
	calc.Currency = result.Currency
	calc.AppliedProgramType = result.AppliedProgramType
	calc.AppliedProgramName = result.AppliedProgramName
	calc.AppliedRateLabel = result.AppliedRateLabel
	calc.TotalTariffAmount = result.TotalTariffAmount
	calc.TotalImportPrice = result.TotalImportPrice
	calc.SavingsVsMfn = result.SavingsVsMFN
	// Dates were validated by the calculation.
	calc.TariffEffectiveDate, _ = parseOptionalDate(req.TariffEffectiveDate)
	calc.TariffExpirationDate, _ = parseOptionalDate(req.TariffExpirationDate)
}

func parseCalculationID(id string) (uuid.UUID, error) {
	calcID, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, apperror.InvalidInput("invalid tariff calculation id").WithContext("id", id)
	}
	return calcID, nil
}

func parseUserID(userID string) *uuid.UUID {
	if userID == "" {
		return nil
	}
	parsed, err := uuid.Parse(userID)
	if err != nil {
		return nil
	}
	return &parsed
}

func toCalculationRecordResponse(c model.TariffCalculation) CalculationRecordResponse {
	resp := CalculationRecordResponse{
		ID:                   c.ID.String(),
		HTSCode:              c.HTSCode,
		OriginCountry:        c.OriginCountry,
		DestinationCountry:   c.DestinationCountry,
		ProductValue:         c.ProductValue.StringFixed(2),
		Quantity:             c.Quantity,
		Currency:             c.Currency,
		CalculationType:      c.CalculationType,
		AppliedProgramType:   c.AppliedProgramType,
		AppliedProgramName:   c.AppliedProgramName,
		AppliedRateLabel:     c.AppliedRateLabel,
		TotalTariffAmount:    c.TotalTariffAmount.StringFixed(2),
		TotalImportPrice:     c.TotalImportPrice.StringFixed(2),
		SavingsVsMFN:         c.SavingsVsMfn.StringFixed(2),
		TariffEffectiveDate:  formatOptionalDate(c.TariffEffectiveDate),
		TariffExpirationDate: formatOptionalDate(c.TariffExpirationDate),
		CreatedAt:            c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:            c.UpdatedAt.Format(time.RFC3339),
	}
	if c.CreatedBy != nil {
		resp.CreatedBy = c.CreatedBy.String()
	}
	return resp
}
