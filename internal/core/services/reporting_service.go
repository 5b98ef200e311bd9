package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shiwake-app/shiwake_backend/internal/apperrors"
	"github.com/shiwake-app/shiwake_backend/internal/core/domain"
	portsrepo "github.com/shiwake-app/shiwake_backend/internal/core/ports/repositories"
	portssvc "github.com/shiwake-app/shiwake_backend/internal/core/ports/services"
	"github.com/shiwake-app/shiwake_backend/internal/dto"
	"github.com/shiwake-app/shiwake_backend/internal/middleware"
)

// reportingService computes trial balance and reconciliation reports from
// aggregated journal data.
type reportingService struct {
	reportingRepo      portsrepo.ReportingRepository
	reconciliationRepo portsrepo.ReconciliationRepository
}

// NewReportingService creates a new ReportingService.
func NewReportingService(reportingRepo portsrepo.ReportingRepository, reconciliationRepo portsrepo.ReconciliationRepository) portssvc.ReportingSvcFacade {
	return &reportingService{reportingRepo: reportingRepo, reconciliationRepo: reconciliationRepo}
}

var _ portssvc.ReportingSvcFacade = (*reportingService)(nil)

// signedBalance nets debits against credits in the account's normal direction:
// debit-positive for assets and expenses, credit-positive for liabilities,
// equity and revenue.
func signedBalance(accountType domain.AccountType, debit, credit decimal.Decimal) decimal.Decimal {
	switch accountType {
	case domain.Asset, domain.Expense:
		return debit.Sub(credit)
	default:
		return credit.Sub(debit)
	}
}

func (s *reportingService) TrialBalance(ctx context.Context, from, to time.Time) (*dto.TrialBalanceResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if to.Before(from) {
		return nil, fmt.Errorf("%w: report range end %s precedes start %s",
			apperrors.ErrValidation, to.Format("2006-01-02"), from.Format("2006-01-02"))
	}

	sums, err := s.reportingRepo.GetTrialBalanceSums(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate trial balance: %w", err)
	}

	resp := &dto.TrialBalanceResponse{
		From:        from,
		To:          to,
		Rows:        make([]domain.TrialBalanceRow, 0, len(sums)),
		DebitTotal:  decimal.Zero,
		CreditTotal: decimal.Zero,
	}
	for _, sum := range sums {
		opening := signedBalance(sum.AccountType, sum.OpeningDebit, sum.OpeningCredit)
		periodNet := signedBalance(sum.AccountType, sum.PeriodDebit, sum.PeriodCredit)
		resp.Rows = append(resp.Rows, domain.TrialBalanceRow{
			AccountCode:    sum.AccountCode,
			AccountName:    sum.AccountName,
			AccountType:    sum.AccountType,
			OpeningBalance: opening,
			DebitTotal:     sum.PeriodDebit,
			CreditTotal:    sum.PeriodCredit,
			ClosingBalance: opening.Add(periodNet),
		})
		resp.DebitTotal = resp.DebitTotal.Add(sum.PeriodDebit)
		resp.CreditTotal = resp.CreditTotal.Add(sum.PeriodCredit)
	}

	logger.Info("Trial balance computed",
		slog.Int("accounts", len(resp.Rows)),
		slog.String("debit_total", resp.DebitTotal.String()),
		slog.String("credit_total", resp.CreditTotal.String()))
	return resp, nil
}

func (s *reportingService) Reconciliation(ctx context.Context, from, to time.Time) (*dto.ReconciliationResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if to.Before(from) {
		return nil, fmt.Errorf("%w: report range end %s precedes start %s",
			apperrors.ErrValidation, to.Format("2006-01-02"), from.Format("2006-01-02"))
	}

	mappings, err := s.reconciliationRepo.ListMappings(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list reconciliation mappings: %w", err)
	}

	resp := &dto.ReconciliationResponse{
		From: from,
		To:   to,
		Rows: make([]domain.ReconciliationRow, 0, len(mappings)),
	}
	for _, m := range mappings {
		amount, err := s.reportingRepo.GetDepartmentAccountNet(ctx, m.DepartmentCode, m.AccountCode, from, to)
		if err != nil {
			return nil, fmt.Errorf("failed to net %s/%s: %w", m.DepartmentCode, m.AccountCode, err)
		}
		counter, err := s.reportingRepo.GetDepartmentAccountNet(ctx, m.CounterDepartmentCode, m.CounterAccountCode, from, to)
		if err != nil {
			return nil, fmt.Errorf("failed to net %s/%s: %w", m.CounterDepartmentCode, m.CounterAccountCode, err)
		}

		// The counter side posts with the opposite sign, so a matched pair
		// nets to zero when the two sides are added together.
		difference := amount.Add(counter)
		row := domain.ReconciliationRow{
			MappingID:             m.MappingID,
			DepartmentCode:        m.DepartmentCode,
			AccountCode:           m.AccountCode,
			CounterDepartmentCode: m.CounterDepartmentCode,
			CounterAccountCode:    m.CounterAccountCode,
			Amount:                amount,
			CounterAmount:         counter,
			Difference:            difference,
			Matched:               difference.IsZero(),
		}
		if !row.Matched {
			resp.Mismatches++
		}
		resp.Rows = append(resp.Rows, row)
	}

	logger.Info("Reconciliation computed",
		slog.Int("mappings", len(resp.Rows)),
		slog.Int("mismatches", resp.Mismatches))
	return resp, nil
}
