package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/shiwake-app/shiwake_backend/internal/apperrors"
	"github.com/shiwake-app/shiwake_backend/internal/core/domain"
	portsrepo "github.com/shiwake-app/shiwake_backend/internal/core/ports/repositories"
	portssvc "github.com/shiwake-app/shiwake_backend/internal/core/ports/services"
	"github.com/shiwake-app/shiwake_backend/internal/core/services"
)

type MockReportingRepository struct {
	mock.Mock
}

var _ portsrepo.ReportingRepository = (*MockReportingRepository)(nil)

func (m *MockReportingRepository) GetTrialBalanceSums(ctx context.Context, from, to time.Time) ([]domain.AccountPeriodSums, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountPeriodSums), args.Error(1)
}

func (m *MockReportingRepository) GetDepartmentAccountNet(ctx context.Context, departmentCode, accountCode string, from, to time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, departmentCode, accountCode, from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockReconciliationRepository struct {
	mock.Mock
}

var _ portsrepo.ReconciliationRepository = (*MockReconciliationRepository)(nil)

func (m *MockReconciliationRepository) SaveMapping(ctx context.Context, mapping domain.ReconciliationMapping) error {
	args := m.Called(ctx, mapping)
	return args.Error(0)
}

func (m *MockReconciliationRepository) FindMappingByID(ctx context.Context, mappingID string) (*domain.ReconciliationMapping, error) {
	args := m.Called(ctx, mappingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReconciliationMapping), args.Error(1)
}

func (m *MockReconciliationRepository) ListMappings(ctx context.Context, onlyActive bool) ([]domain.ReconciliationMapping, error) {
	args := m.Called(ctx, onlyActive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReconciliationMapping), args.Error(1)
}

func (m *MockReconciliationRepository) UpdateMapping(ctx context.Context, mapping domain.ReconciliationMapping) error {
	args := m.Called(ctx, mapping)
	return args.Error(0)
}

type ReportingServiceTestSuite struct {
	suite.Suite
	mockReporting *MockReportingRepository
	mockReconRepo *MockReconciliationRepository
	service       portssvc.ReportingSvcFacade
	ctx           context.Context
	from, to      time.Time
}

func (s *ReportingServiceTestSuite) SetupTest() {
	s.mockReporting = new(MockReportingRepository)
	s.mockReconRepo = new(MockReconciliationRepository)
	s.service = services.NewReportingService(s.mockReporting, s.mockReconRepo)
	s.ctx = context.Background()
	s.from = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.to = time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
}

// Assets carry debit-positive balances, revenue credit-positive; closing is
// opening plus the period net in the account's normal direction.
func (s *ReportingServiceTestSuite) TestTrialBalance() {
	sums := []domain.AccountPeriodSums{
		{
			AccountCode: "1010", AccountName: "現金", AccountType: domain.Asset,
			OpeningDebit: decimal.NewFromInt(500), OpeningCredit: decimal.NewFromInt(200),
			PeriodDebit: decimal.NewFromInt(100), PeriodCredit: decimal.NewFromInt(40),
		},
		{
			AccountCode: "4000", AccountName: "売上高", AccountType: domain.Revenue,
			OpeningDebit: decimal.Zero, OpeningCredit: decimal.NewFromInt(300),
			PeriodDebit: decimal.NewFromInt(10), PeriodCredit: decimal.NewFromInt(100),
		},
	}
	s.mockReporting.On("GetTrialBalanceSums", s.ctx, s.from, s.to).Return(sums, nil).Once()

	resp, err := s.service.TrialBalance(s.ctx, s.from, s.to)

	s.Require().NoError(err)
	s.Require().Len(resp.Rows, 2)

	cash := resp.Rows[0]
	s.True(cash.OpeningBalance.Equal(decimal.NewFromInt(300)), "opening %s", cash.OpeningBalance)
	s.True(cash.ClosingBalance.Equal(decimal.NewFromInt(360)), "closing %s", cash.ClosingBalance)

	sales := resp.Rows[1]
	s.True(sales.OpeningBalance.Equal(decimal.NewFromInt(300)), "opening %s", sales.OpeningBalance)
	s.True(sales.ClosingBalance.Equal(decimal.NewFromInt(390)), "closing %s", sales.ClosingBalance)

	s.True(resp.DebitTotal.Equal(decimal.NewFromInt(110)))
	s.True(resp.CreditTotal.Equal(decimal.NewFromInt(140)))
}

func (s *ReportingServiceTestSuite) TestTrialBalance_InvertedRange() {
	_, err := s.service.TrialBalance(s.ctx, s.to, s.from)

	s.ErrorIs(err, apperrors.ErrValidation)
	s.mockReporting.AssertNotCalled(s.T(), "GetTrialBalanceSums")
}

func (s *ReportingServiceTestSuite) TestTrialBalance_NoData() {
	s.mockReporting.On("GetTrialBalanceSums", s.ctx, s.from, s.to).
		Return([]domain.AccountPeriodSums{}, nil).Once()

	resp, err := s.service.TrialBalance(s.ctx, s.from, s.to)

	s.Require().NoError(err)
	s.Empty(resp.Rows)
	s.True(resp.DebitTotal.IsZero())
	s.True(resp.CreditTotal.IsZero())
}

// A matched pair nets to zero because the counter side posts the opposite sign.
func (s *ReportingServiceTestSuite) TestReconciliation() {
	mappings := []domain.ReconciliationMapping{
		{MappingID: "map-1", DepartmentCode: "D01", AccountCode: "1510", CounterDepartmentCode: "D02", CounterAccountCode: "2510"},
		{MappingID: "map-2", DepartmentCode: "D01", AccountCode: "1520", CounterDepartmentCode: "D03", CounterAccountCode: "2520"},
	}
	s.mockReconRepo.On("ListMappings", s.ctx, true).Return(mappings, nil).Once()
	s.mockReporting.On("GetDepartmentAccountNet", s.ctx, "D01", "1510", s.from, s.to).
		Return(decimal.NewFromInt(1000), nil).Once()
	s.mockReporting.On("GetDepartmentAccountNet", s.ctx, "D02", "2510", s.from, s.to).
		Return(decimal.NewFromInt(-1000), nil).Once()
	s.mockReporting.On("GetDepartmentAccountNet", s.ctx, "D01", "1520", s.from, s.to).
		Return(decimal.NewFromInt(500), nil).Once()
	s.mockReporting.On("GetDepartmentAccountNet", s.ctx, "D03", "2520", s.from, s.to).
		Return(decimal.NewFromInt(-300), nil).Once()

	resp, err := s.service.Reconciliation(s.ctx, s.from, s.to)

	s.Require().NoError(err)
	s.Require().Len(resp.Rows, 2)

	s.True(resp.Rows[0].Matched)
	s.True(resp.Rows[0].Difference.IsZero())

	s.False(resp.Rows[1].Matched)
	s.True(resp.Rows[1].Difference.Equal(decimal.NewFromInt(200)), "difference %s", resp.Rows[1].Difference)

	s.Equal(1, resp.Mismatches)
}

func (s *ReportingServiceTestSuite) TestReconciliation_NoMappings() {
	s.mockReconRepo.On("ListMappings", s.ctx, true).
		Return([]domain.ReconciliationMapping{}, nil).Once()

	resp, err := s.service.Reconciliation(s.ctx, s.from, s.to)

	s.Require().NoError(err)
	s.Empty(resp.Rows)
	s.Zero(resp.Mismatches)
	s.mockReporting.AssertNotCalled(s.T(), "GetDepartmentAccountNet")
}

func TestReportingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReportingServiceTestSuite))
}
