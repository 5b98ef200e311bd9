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

type ReconciliationServiceTestSuite struct {
	suite.Suite
	mockMappings    *MockReconciliationRepository
	mockDepartments *MockDepartmentRepository
	mockAccounts    *MockAccountRepository
	service         portssvc.ReconciliationSvcFacade
	ctx             context.Context
}

func (s *ReconciliationServiceTestSuite) SetupTest() {
	s.mockMappings = new(MockReconciliationRepository)
	s.mockDepartments = new(MockDepartmentRepository)
	s.mockAccounts = new(MockAccountRepository)
	s.service = services.NewReconciliationService(s.mockMappings, s.mockDepartments, s.mockAccounts)
	s.ctx = context.Background()
}

func (s *ReconciliationServiceTestSuite) validRequest() dto.CreateReconciliationMappingRequest {
	return dto.CreateReconciliationMappingRequest{
		DepartmentCode:        "D01",
		AccountCode:           "1510",
		CounterDepartmentCode: "D02",
		CounterAccountCode:    "2510",
	}
}

func (s *ReconciliationServiceTestSuite) expectMastersExist() {
	s.mockDepartments.On("FindDepartmentByCode", s.ctx, "D01").
		Return(&domain.Department{DepartmentCode: "D01", IsActive: true}, nil).Once()
	s.mockDepartments.On("FindDepartmentByCode", s.ctx, "D02").
		Return(&domain.Department{DepartmentCode: "D02", IsActive: true}, nil).Once()
	s.mockAccounts.On("FindAccountByCode", s.ctx, "1510").
		Return(&domain.Account{AccountCode: "1510", AccountType: domain.Asset, IsActive: true}, nil).Once()
	s.mockAccounts.On("FindAccountByCode", s.ctx, "2510").
		Return(&domain.Account{AccountCode: "2510", AccountType: domain.Liability, IsActive: true}, nil).Once()
}

func (s *ReconciliationServiceTestSuite) TestCreateMapping() {
	s.expectMastersExist()
	s.mockMappings.On("SaveMapping", s.ctx, mock.Anything).Return(nil).Once()

	mapping, err := s.service.CreateMapping(s.ctx, s.validRequest(), "admin-1")

	s.Require().NoError(err)
	s.NotEmpty(mapping.MappingID)
	s.Equal("D01", mapping.DepartmentCode)
	s.Equal("2510", mapping.CounterAccountCode)
	s.True(mapping.IsActive)
	s.mockMappings.AssertExpectations(s.T())
}

func (s *ReconciliationServiceTestSuite) TestCreateMapping_UnknownDepartment() {
	s.mockDepartments.On("FindDepartmentByCode", s.ctx, "D01").
		Return(nil, apperrors.ErrNotFound).Once()

	_, err := s.service.CreateMapping(s.ctx, s.validRequest(), "admin-1")

	s.ErrorIs(err, apperrors.ErrNotFound)
	s.mockMappings.AssertNotCalled(s.T(), "SaveMapping")
}

func (s *ReconciliationServiceTestSuite) TestCreateMapping_DuplicatePair() {
	s.expectMastersExist()
	s.mockMappings.On("SaveMapping", s.ctx, mock.Anything).Return(apperrors.ErrDuplicate).Once()

	_, err := s.service.CreateMapping(s.ctx, s.validRequest(), "admin-1")

	s.ErrorIs(err, apperrors.ErrDuplicate)
}

func (s *ReconciliationServiceTestSuite) TestDeactivateMapping() {
	existing := &domain.ReconciliationMapping{MappingID: "map-1", IsActive: true}
	s.mockMappings.On("FindMappingByID", s.ctx, "map-1").Return(existing, nil).Once()
	s.mockMappings.On("UpdateMapping", s.ctx, mock.Anything).Return(nil).Once()

	err := s.service.DeactivateMapping(s.ctx, "map-1", "admin-1")

	s.Require().NoError(err)
	saved := s.mockMappings.Calls[1].Arguments.Get(1).(domain.ReconciliationMapping)
	s.False(saved.IsActive)
}

func (s *ReconciliationServiceTestSuite) TestDeactivateMapping_AlreadyInactive() {
	existing := &domain.ReconciliationMapping{MappingID: "map-1", IsActive: false}
	s.mockMappings.On("FindMappingByID", s.ctx, "map-1").Return(existing, nil).Once()

	err := s.service.DeactivateMapping(s.ctx, "map-1", "admin-1")

	s.Require().NoError(err)
	s.mockMappings.AssertNotCalled(s.T(), "UpdateMapping")
}

func TestReconciliationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReconciliationServiceTestSuite))
}
