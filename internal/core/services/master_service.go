package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shiwake-app/shiwake_backend/internal/core/domain"
	portsrepo "github.com/shiwake-app/shiwake_backend/internal/core/ports/repositories"
	portssvc "github.com/shiwake-app/shiwake_backend/internal/core/ports/services"
	"github.com/shiwake-app/shiwake_backend/internal/dto"
	"github.com/shiwake-app/shiwake_backend/internal/middleware"
)

// masterService provides CRUD for the simple master entities. Each entity
// follows the same lifecycle: created active, renamed in place, soft
// deactivated; uniqueness is enforced by the backend and surfaces as
// ErrDuplicate.
type masterService struct {
	subAccountRepo   portsrepo.SubAccountRepository
	partnerRepo      portsrepo.PartnerRepository
	analysisCodeRepo portsrepo.AnalysisCodeRepository
	taxRateRepo      portsrepo.TaxRateRepository
	departmentRepo   portsrepo.DepartmentRepository
	accountRepo      portsrepo.AccountRepository
}

// NewMasterService creates a new MasterService.
func NewMasterService(
	subAccountRepo portsrepo.SubAccountRepository,
	partnerRepo portsrepo.PartnerRepository,
	analysisCodeRepo portsrepo.AnalysisCodeRepository,
	taxRateRepo portsrepo.TaxRateRepository,
	departmentRepo portsrepo.DepartmentRepository,
	accountRepo portsrepo.AccountRepository,
) portssvc.MasterSvcFacade {
	return &masterService{
		subAccountRepo:   subAccountRepo,
		partnerRepo:      partnerRepo,
		analysisCodeRepo: analysisCodeRepo,
		taxRateRepo:      taxRateRepo,
		departmentRepo:   departmentRepo,
		accountRepo:      accountRepo,
	}
}

var _ portssvc.MasterSvcFacade = (*masterService)(nil)

func newAudit(userID string) domain.AuditFields {
	now := time.Now().UTC()
	return domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}
}

func touchAudit(a *domain.AuditFields, userID string) {
	a.LastUpdatedAt = time.Now().UTC()
	a.LastUpdatedBy = userID
}

// --- Sub-accounts ---

func (s *masterService) CreateSubAccount(ctx context.Context, accountCode string, req dto.CreateSubAccountRequest, userID string) (*domain.SubAccount, error) {
	// The parent account must exist; FindAccountByCode yields ErrNotFound otherwise.
	if _, err := s.accountRepo.FindAccountByCode(ctx, accountCode); err != nil {
		return nil, err
	}

	subAccount := domain.SubAccount{
		AccountCode:    accountCode,
		SubAccountCode: req.SubAccountCode,
		Name:           req.Name,
		IsActive:       true,
		AuditFields:    newAudit(userID),
	}
	if err := s.subAccountRepo.SaveSubAccount(ctx, subAccount); err != nil {
		return nil, fmt.Errorf("failed to save sub-account %s/%s: %w", accountCode, req.SubAccountCode, err)
	}

	middleware.GetLoggerFromCtx(ctx).Info("Sub-account created",
		slog.String("account_code", accountCode),
		slog.String("sub_account_code", req.SubAccountCode))
	return &subAccount, nil
}

func (s *masterService) ListSubAccounts(ctx context.Context, accountCode string, onlyActive bool) ([]domain.SubAccount, error) {
	return s.subAccountRepo.ListSubAccounts(ctx, accountCode, onlyActive)
}

func (s *masterService) UpdateSubAccount(ctx context.Context, accountCode, subAccountCode string, req dto.UpdateMasterRequest, userID string) (*domain.SubAccount, error) {
	subAccount, err := s.subAccountRepo.FindSubAccount(ctx, accountCode, subAccountCode)
	if err != nil {
		return nil, err
	}
	if req.Name == nil {
		return subAccount, nil
	}
	subAccount.Name = *req.Name
	touchAudit(&subAccount.AuditFields, userID)
	if err := s.subAccountRepo.UpdateSubAccount(ctx, *subAccount); err != nil {
		return nil, fmt.Errorf("failed to update sub-account %s/%s: %w", accountCode, subAccountCode, err)
	}
	return subAccount, nil
}

func (s *masterService) DeactivateSubAccount(ctx context.Context, accountCode, subAccountCode string, userID string) error {
	subAccount, err := s.subAccountRepo.FindSubAccount(ctx, accountCode, subAccountCode)
	if err != nil {
		return err
	}
	if !subAccount.IsActive {
		return nil
	}
	subAccount.IsActive = false
	touchAudit(&subAccount.AuditFields, userID)
	return s.subAccountRepo.UpdateSubAccount(ctx, *subAccount)
}

// --- Partners ---

func (s *masterService) CreatePartner(ctx context.Context, req dto.CreatePartnerRequest, userID string) (*domain.Partner, error) {
	partner := domain.Partner{
		PartnerCode: req.PartnerCode,
		Name:        req.Name,
		NameKana:    req.NameKana,
		IsActive:    true,
		AuditFields: newAudit(userID),
	}
	if err := s.partnerRepo.SavePartner(ctx, partner); err != nil {
		return nil, fmt.Errorf("failed to save partner %s: %w", req.PartnerCode, err)
	}
	middleware.GetLoggerFromCtx(ctx).Info("Partner created", slog.String("partner_code", req.PartnerCode))
	return &partner, nil
}

func (s *masterService) ListPartners(ctx context.Context, onlyActive bool) ([]domain.Partner, error) {
	return s.partnerRepo.ListPartners(ctx, onlyActive)
}

func (s *masterService) UpdatePartner(ctx context.Context, partnerCode string, req dto.UpdateMasterRequest, userID string) (*domain.Partner, error) {
	partner, err := s.partnerRepo.FindPartnerByCode(ctx, partnerCode)
	if err != nil {
		return nil, err
	}
	if req.Name == nil {
		return partner, nil
	}
	partner.Name = *req.Name
	touchAudit(&partner.AuditFields, userID)
	if err := s.partnerRepo.UpdatePartner(ctx, *partner); err != nil {
		return nil, fmt.Errorf("failed to update partner %s: %w", partnerCode, err)
	}
	return partner, nil
}

func (s *masterService) DeactivatePartner(ctx context.Context, partnerCode string, userID string) error {
	partner, err := s.partnerRepo.FindPartnerByCode(ctx, partnerCode)
	if err != nil {
		return err
	}
	if !partner.IsActive {
		return nil
	}
	partner.IsActive = false
	touchAudit(&partner.AuditFields, userID)
	return s.partnerRepo.UpdatePartner(ctx, *partner)
}

// --- Analysis codes ---

func (s *masterService) CreateAnalysisCode(ctx context.Context, req dto.CreateAnalysisCodeRequest, userID string) (*domain.AnalysisCode, error) {
	code := domain.AnalysisCode{
		AnalysisCode: req.AnalysisCode,
		Name:         req.Name,
		IsActive:     true,
		AuditFields:  newAudit(userID),
	}
	if err := s.analysisCodeRepo.SaveAnalysisCode(ctx, code); err != nil {
		return nil, fmt.Errorf("failed to save analysis code %s: %w", req.AnalysisCode, err)
	}
	middleware.GetLoggerFromCtx(ctx).Info("Analysis code created", slog.String("analysis_code", req.AnalysisCode))
	return &code, nil
}

func (s *masterService) ListAnalysisCodes(ctx context.Context, onlyActive bool) ([]domain.AnalysisCode, error) {
	return s.analysisCodeRepo.ListAnalysisCodes(ctx, onlyActive)
}

func (s *masterService) UpdateAnalysisCode(ctx context.Context, analysisCode string, req dto.UpdateMasterRequest, userID string) (*domain.AnalysisCode, error) {
	code, err := s.analysisCodeRepo.FindAnalysisCode(ctx, analysisCode)
	if err != nil {
		return nil, err
	}
	if req.Name == nil {
		return code, nil
	}
	code.Name = *req.Name
	touchAudit(&code.AuditFields, userID)
	if err := s.analysisCodeRepo.UpdateAnalysisCode(ctx, *code); err != nil {
		return nil, fmt.Errorf("failed to update analysis code %s: %w", analysisCode, err)
	}
	return code, nil
}

func (s *masterService) DeactivateAnalysisCode(ctx context.Context, analysisCode string, userID string) error {
	code, err := s.analysisCodeRepo.FindAnalysisCode(ctx, analysisCode)
	if err != nil {
		return err
	}
	if !code.IsActive {
		return nil
	}
	code.IsActive = false
	touchAudit(&code.AuditFields, userID)
	return s.analysisCodeRepo.UpdateAnalysisCode(ctx, *code)
}

// --- Tax rates ---

func (s *masterService) CreateTaxRate(ctx context.Context, req dto.CreateTaxRateRequest, userID string) (*domain.TaxRate, error) {
	taxRate := domain.TaxRate{
		TaxCode:     req.TaxCode,
		Name:        req.Name,
		Rate:        req.Rate,
		IsActive:    true,
		AuditFields: newAudit(userID),
	}
	if err := s.taxRateRepo.SaveTaxRate(ctx, taxRate); err != nil {
		return nil, fmt.Errorf("failed to save tax rate %s: %w", req.TaxCode, err)
	}
	middleware.GetLoggerFromCtx(ctx).Info("Tax rate created", slog.String("tax_code", req.TaxCode))
	return &taxRate, nil
}

func (s *masterService) ListTaxRates(ctx context.Context, onlyActive bool) ([]domain.TaxRate, error) {
	return s.taxRateRepo.ListTaxRates(ctx, onlyActive)
}

func (s *masterService) UpdateTaxRate(ctx context.Context, taxCode string, req dto.UpdateMasterRequest, userID string) (*domain.TaxRate, error) {
	taxRate, err := s.taxRateRepo.FindTaxRateByCode(ctx, taxCode)
	if err != nil {
		return nil, err
	}
	if req.Name == nil {
		return taxRate, nil
	}
	taxRate.Name = *req.Name
	touchAudit(&taxRate.AuditFields, userID)
	if err := s.taxRateRepo.UpdateTaxRate(ctx, *taxRate); err != nil {
		return nil, fmt.Errorf("failed to update tax rate %s: %w", taxCode, err)
	}
	return taxRate, nil
}

func (s *masterService) DeactivateTaxRate(ctx context.Context, taxCode string, userID string) error {
	taxRate, err := s.taxRateRepo.FindTaxRateByCode(ctx, taxCode)
	if err != nil {
		return err
	}
	if !taxRate.IsActive {
		return nil
	}
	taxRate.IsActive = false
	touchAudit(&taxRate.AuditFields, userID)
	return s.taxRateRepo.UpdateTaxRate(ctx, *taxRate)
}

// --- Departments ---

func (s *masterService) CreateDepartment(ctx context.Context, req dto.CreateDepartmentRequest, userID string) (*domain.Department, error) {
	department := domain.Department{
		DepartmentCode: req.DepartmentCode,
		Name:           req.Name,
		IsActive:       true,
		AuditFields:    newAudit(userID),
	}
	if err := s.departmentRepo.SaveDepartment(ctx, department); err != nil {
		return nil, fmt.Errorf("failed to save department %s: %w", req.DepartmentCode, err)
	}
	middleware.GetLoggerFromCtx(ctx).Info("Department created", slog.String("department_code", req.DepartmentCode))
	return &department, nil
}

func (s *masterService) ListDepartments(ctx context.Context, onlyActive bool) ([]domain.Department, error) {
	return s.departmentRepo.ListDepartments(ctx, onlyActive)
}

func (s *masterService) UpdateDepartment(ctx context.Context, departmentCode string, req dto.UpdateMasterRequest, userID string) (*domain.Department, error) {
	department, err := s.departmentRepo.FindDepartmentByCode(ctx, departmentCode)
	if err != nil {
		return nil, err
	}
	if req.Name == nil {
		return department, nil
	}
	department.Name = *req.Name
	touchAudit(&department.AuditFields, userID)
	if err := s.departmentRepo.UpdateDepartment(ctx, *department); err != nil {
		return nil, fmt.Errorf("failed to update department %s: %w", departmentCode, err)
	}
	return department, nil
}

func (s *masterService) DeactivateDepartment(ctx context.Context, departmentCode string, userID string) error {
	department, err := s.departmentRepo.FindDepartmentByCode(ctx, departmentCode)
	if err != nil {
		return err
	}
	if !department.IsActive {
		return nil
	}
	department.IsActive = false
	touchAudit(&department.AuditFields, userID)
	return s.departmentRepo.UpdateDepartment(ctx, *department)
}
