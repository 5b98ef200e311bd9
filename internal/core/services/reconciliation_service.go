package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/shiwake-app/shiwake_backend/internal/core/domain"
	portsrepo "github.com/shiwake-app/shiwake_backend/internal/core/ports/repositories"
	portssvc "github.com/shiwake-app/shiwake_backend/internal/core/ports/services"
	"github.com/shiwake-app/shiwake_backend/internal/dto"
	"github.com/shiwake-app/shiwake_backend/internal/middleware"
)

// reconciliationService manages the department/account pairings the
// reconciliation report compares.
type reconciliationService struct {
	reconciliationRepo portsrepo.ReconciliationRepository
	departmentRepo     portsrepo.DepartmentRepository
	accountRepo        portsrepo.AccountRepository
}

// NewReconciliationService creates a new ReconciliationService.
func NewReconciliationService(
	reconciliationRepo portsrepo.ReconciliationRepository,
	departmentRepo portsrepo.DepartmentRepository,
	accountRepo portsrepo.AccountRepository,
) portssvc.ReconciliationSvcFacade {
	return &reconciliationService{
		reconciliationRepo: reconciliationRepo,
		departmentRepo:     departmentRepo,
		accountRepo:        accountRepo,
	}
}

var _ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)

func (s *reconciliationService) CreateMapping(ctx context.Context, req dto.CreateReconciliationMappingRequest, userID string) (*domain.ReconciliationMapping, error) {
	// Both sides must reference existing masters.
	if _, err := s.departmentRepo.FindDepartmentByCode(ctx, req.DepartmentCode); err != nil {
		return nil, err
	}
	if _, err := s.departmentRepo.FindDepartmentByCode(ctx, req.CounterDepartmentCode); err != nil {
		return nil, err
	}
	if _, err := s.accountRepo.FindAccountByCode(ctx, req.AccountCode); err != nil {
		return nil, err
	}
	if _, err := s.accountRepo.FindAccountByCode(ctx, req.CounterAccountCode); err != nil {
		return nil, err
	}

	mapping := domain.ReconciliationMapping{
		MappingID:             uuid.NewString(),
		DepartmentCode:        req.DepartmentCode,
		AccountCode:           req.AccountCode,
		CounterDepartmentCode: req.CounterDepartmentCode,
		CounterAccountCode:    req.CounterAccountCode,
		IsActive:              true,
		AuditFields:           newAudit(userID),
	}
	if err := s.reconciliationRepo.SaveMapping(ctx, mapping); err != nil {
		return nil, fmt.Errorf("failed to save reconciliation mapping: %w", err)
	}

	middleware.GetLoggerFromCtx(ctx).Info("Reconciliation mapping created",
		slog.String("mapping_id", mapping.MappingID),
		slog.String("department_code", mapping.DepartmentCode),
		slog.String("counter_department_code", mapping.CounterDepartmentCode))
	return &mapping, nil
}

func (s *reconciliationService) GetMapping(ctx context.Context, mappingID string) (*domain.ReconciliationMapping, error) {
	return s.reconciliationRepo.FindMappingByID(ctx, mappingID)
}

func (s *reconciliationService) ListMappings(ctx context.Context, onlyActive bool) ([]domain.ReconciliationMapping, error) {
	return s.reconciliationRepo.ListMappings(ctx, onlyActive)
}

func (s *reconciliationService) DeactivateMapping(ctx context.Context, mappingID string, userID string) error {
	mapping, err := s.reconciliationRepo.FindMappingByID(ctx, mappingID)
	if err != nil {
		return err
	}
	if !mapping.IsActive {
		return nil
	}
	mapping.IsActive = false
	touchAudit(&mapping.AuditFields, userID)
	return s.reconciliationRepo.UpdateMapping(ctx, *mapping)
}
