package service

import (
	"context"
	"time"

	"tariff-backend/internal/model"
	"tariff-backend/internal/repository"

	"go.uber.org/zap"
)

// ProgramService lists the trade programs in force between two countries.
// The listing is advisory: lookup failures produce an empty list, never an error.
type ProgramService interface {
	ApplicablePrograms(ctx context.Context, origin, destination string) []string
}

type programService struct {
	agreementRepo repository.TradeAgreementRepository
	logger        *zap.Logger
}

func NewProgramService(agreementRepo repository.TradeAgreementRepository, logger *zap.Logger) ProgramService {
	return &programService{agreementRepo: agreementRepo, logger: logger.Named("programs")}
}

// ApplicablePrograms returns "<code> - <name>" labels in lookup order.
// With no origin, every agreement the destination takes part in is considered.
func (s *programService) ApplicablePrograms(ctx context.Context, origin, destination string) []string {
	origin, destination = normalizeCode(origin), normalizeCode(destination)

	var (
		agreements []model.TradeAgreement
		err        error
	)
	if origin != "" {
		agreements, err = s.agreementRepo.FindBetweenCountries(ctx, origin, destination)
	} else {
		agreements, err = s.agreementRepo.FindByParticipant(ctx, destination)
	}
	if err != nil {
		s.logger.Warn("trade agreement lookup failed",
			zap.String("origin", origin), zap.String("destination", destination), zap.Error(err))
		return []string{}
	}

	day := today(time.Now())
	programs := make([]string, 0, len(agreements))
	for _, a := range agreements {
		if a.InForce(day) {
			programs = append(programs, a.AgreementCode+" - "+a.AgreementName)
		}
	}
	return programs
}
