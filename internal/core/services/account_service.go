package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shiwake-app/shiwake_backend/internal/apperrors"
	"github.com/shiwake-app/shiwake_backend/internal/core/domain"
	portsrepo "github.com/shiwake-app/shiwake_backend/internal/core/ports/repositories"
	portssvc "github.com/shiwake-app/shiwake_backend/internal/core/ports/services"
	"github.com/shiwake-app/shiwake_backend/internal/dto"
	"github.com/shiwake-app/shiwake_backend/internal/middleware"
)

// accountService provides ledger account operations.
type accountService struct {
	accountRepo portsrepo.AccountRepository
}

// NewAccountService creates a new AccountService.
func NewAccountService(accountRepo portsrepo.AccountRepository) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: accountRepo}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	account := domain.Account{
		AccountCode: req.AccountCode,
		Name:        req.Name,
		AccountType: domain.AccountType(req.AccountType),
		IsActive:    true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrDuplicate, req.AccountCode)
		}
		logger.Error("Failed to save account", slog.String("account_code", req.AccountCode), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	logger.Info("Account created", slog.String("account_code", account.AccountCode))
	return &account, nil
}

func (s *accountService) GetAccountByCode(ctx context.Context, accountCode string) (*domain.Account, error) {
	return s.accountRepo.FindAccountByCode(ctx, accountCode)
}

func (s *accountService) GetAccountsByCodes(ctx context.Context, accountCodes []string) (map[string]domain.Account, error) {
	return s.accountRepo.FindAccountsByCodes(ctx, accountCodes)
}

func (s *accountService) ListAccounts(ctx context.Context, onlyActive bool) ([]domain.Account, error) {
	return s.accountRepo.ListAccounts(ctx, onlyActive)
}

func (s *accountService) UpdateAccount(ctx context.Context, accountCode string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByCode(ctx, accountCode)
	if err != nil {
		return nil, err
	}

	if req.Name == nil {
		return account, nil
	}
	account.Name = *req.Name
	account.LastUpdatedAt = time.Now().UTC()
	account.LastUpdatedBy = userID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		logger.Error("Failed to update account", slog.String("account_code", accountCode), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to update account %s: %w", accountCode, err)
	}
	return account, nil
}

func (s *accountService) DeactivateAccount(ctx context.Context, accountCode string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByCode(ctx, accountCode)
	if err != nil {
		return err
	}
	if !account.IsActive {
		return nil // already inactive
	}

	account.IsActive = false
	account.LastUpdatedAt = time.Now().UTC()
	account.LastUpdatedBy = userID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		logger.Error("Failed to deactivate account", slog.String("account_code", accountCode), slog.String("error", err.Error()))
		return fmt.Errorf("failed to deactivate account %s: %w", accountCode, err)
	}

	logger.Info("Account deactivated", slog.String("account_code", accountCode))
	return nil
}
