package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/shiwake-app/shiwake_backend/internal/apperrors"
	"github.com/shiwake-app/shiwake_backend/internal/core/domain"
	portssvc "github.com/shiwake-app/shiwake_backend/internal/core/ports/services"
	"github.com/shiwake-app/shiwake_backend/internal/core/services"
	"github.com/shiwake-app/shiwake_backend/internal/dto"
)

type AccountServiceTestSuite struct {
	suite.Suite
	mockRepo *MockAccountRepository
	service  portssvc.AccountSvcFacade
	ctx      context.Context
}

func (s *AccountServiceTestSuite) SetupTest() {
	s.mockRepo = new(MockAccountRepository)
	s.service = services.NewAccountService(s.mockRepo)
	s.ctx = context.Background()
}

func (s *AccountServiceTestSuite) TestCreateAccount() {
	s.mockRepo.On("SaveAccount", s.ctx, mock.Anything).Return(nil).Once()

	account, err := s.service.CreateAccount(s.ctx, dto.CreateAccountRequest{
		AccountCode: "1010",
		Name:        "現金",
		AccountType: "ASSET",
	}, "admin-1")

	s.Require().NoError(err)
	s.Equal("1010", account.AccountCode)
	s.Equal(domain.Asset, account.AccountType)
	s.True(account.IsActive)
	s.Equal("admin-1", account.CreatedBy)
}

func (s *AccountServiceTestSuite) TestCreateAccount_DuplicateCode() {
	s.mockRepo.On("SaveAccount", s.ctx, mock.Anything).Return(apperrors.ErrDuplicate).Once()

	_, err := s.service.CreateAccount(s.ctx, dto.CreateAccountRequest{
		AccountCode: "1010",
		Name:        "現金",
		AccountType: "ASSET",
	}, "admin-1")

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrDuplicate)
	s.Contains(err.Error(), "1010")
}

func (s *AccountServiceTestSuite) TestUpdateAccount_NameOnly() {
	existing := &domain.Account{AccountCode: "1010", Name: "現金", AccountType: domain.Asset, IsActive: true}
	s.mockRepo.On("FindAccountByCode", s.ctx, "1010").Return(existing, nil).Once()
	s.mockRepo.On("UpdateAccount", s.ctx, mock.Anything).Return(nil).Once()

	newName := "現金及び預金"
	updated, err := s.service.UpdateAccount(s.ctx, "1010", dto.UpdateAccountRequest{Name: &newName}, "admin-1")

	s.Require().NoError(err)
	s.Equal("現金及び預金", updated.Name)
	s.Equal(domain.Asset, updated.AccountType)
}

// A nil name is a no-op: nothing is written.
func (s *AccountServiceTestSuite) TestUpdateAccount_NoChanges() {
	existing := &domain.Account{AccountCode: "1010", Name: "現金", AccountType: domain.Asset, IsActive: true}
	s.mockRepo.On("FindAccountByCode", s.ctx, "1010").Return(existing, nil).Once()

	updated, err := s.service.UpdateAccount(s.ctx, "1010", dto.UpdateAccountRequest{}, "admin-1")

	s.Require().NoError(err)
	s.Equal("現金", updated.Name)
	s.mockRepo.AssertNotCalled(s.T(), "UpdateAccount")
}

func (s *AccountServiceTestSuite) TestDeactivateAccount() {
	existing := &domain.Account{AccountCode: "1010", Name: "現金", AccountType: domain.Asset, IsActive: true}
	s.mockRepo.On("FindAccountByCode", s.ctx, "1010").Return(existing, nil).Once()
	s.mockRepo.On("UpdateAccount", s.ctx, mock.Anything).Return(nil).Once()

	err := s.service.DeactivateAccount(s.ctx, "1010", "admin-1")

	s.Require().NoError(err)
	saved := s.mockRepo.Calls[1].Arguments.Get(1).(domain.Account)
	s.False(saved.IsActive)
}

func (s *AccountServiceTestSuite) TestDeactivateAccount_AlreadyInactive() {
	existing := &domain.Account{AccountCode: "1010", Name: "現金", AccountType: domain.Asset, IsActive: false}
	s.mockRepo.On("FindAccountByCode", s.ctx, "1010").Return(existing, nil).Once()

	err := s.service.DeactivateAccount(s.ctx, "1010", "admin-1")

	s.Require().NoError(err)
	s.mockRepo.AssertNotCalled(s.T(), "UpdateAccount")
}

func (s *AccountServiceTestSuite) TestDeactivateAccount_NotFound() {
	s.mockRepo.On("FindAccountByCode", s.ctx, "9999").Return(nil, apperrors.ErrNotFound).Once()

	err := s.service.DeactivateAccount(s.ctx, "9999", "admin-1")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
