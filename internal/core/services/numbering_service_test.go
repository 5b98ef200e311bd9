package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/shiwake-app/shiwake_backend/internal/apperrors"
	"github.com/shiwake-app/shiwake_backend/internal/core/services"
)

type NumberingServiceTestSuite struct {
	suite.Suite
	mockRepo *MockJournalRepository
	ctx      context.Context
	date     time.Time
}

func (s *NumberingServiceTestSuite) SetupTest() {
	s.mockRepo = new(MockJournalRepository)
	s.ctx = context.Background()
	s.date = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
}

func (s *NumberingServiceTestSuite) TestPreviewNextNumber() {
	s.mockRepo.On("MaxSequenceForDate", s.ctx, "20240115").Return(41, nil).Once()

	svc := services.NewNumberingService(s.mockRepo)
	number, err := svc.PreviewNextNumber(s.ctx, s.date)

	s.Require().NoError(err)
	s.Equal("20240115000042", number)
	s.mockRepo.AssertExpectations(s.T())
}

// Previewing reserves nothing: without an intervening insert, repeated calls
// return the same candidate.
func (s *NumberingServiceTestSuite) TestPreviewNextNumber_Idempotent() {
	s.mockRepo.On("MaxSequenceForDate", s.ctx, "20240115").Return(7, nil).Times(3)

	svc := services.NewNumberingService(s.mockRepo)
	for i := 0; i < 3; i++ {
		number, err := svc.PreviewNextNumber(s.ctx, s.date)
		s.Require().NoError(err)
		s.Equal("20240115000008", number)
	}
	s.mockRepo.AssertExpectations(s.T())
}

func (s *NumberingServiceTestSuite) TestPreviewNextNumber_EmptyDate() {
	s.mockRepo.On("MaxSequenceForDate", s.ctx, "20240115").Return(0, nil).Once()

	svc := services.NewNumberingService(s.mockRepo)
	number, err := svc.PreviewNextNumber(s.ctx, s.date)

	s.Require().NoError(err)
	s.Equal("20240115000001", number)
}

func (s *NumberingServiceTestSuite) TestPreviewNextNumber_RepoError() {
	dbErr := errors.New("connection reset")
	s.mockRepo.On("MaxSequenceForDate", s.ctx, "20240115").Return(0, dbErr).Once()

	svc := services.NewNumberingService(s.mockRepo)
	_, err := svc.PreviewNextNumber(s.ctx, s.date)

	s.Require().Error(err)
	s.ErrorIs(err, dbErr)
}

// A batch for one date queries the backend exactly once; subsequent
// candidates come from the call-scoped hint.
func (s *NumberingServiceTestSuite) TestAllocateBatch() {
	s.mockRepo.On("MaxSequenceForDate", s.ctx, "20240115").Return(10, nil).Once()

	svc := services.NewNumberingService(s.mockRepo)
	numbers, err := svc.AllocateBatch(s.ctx, s.date, 5)

	s.Require().NoError(err)
	s.Require().Len(numbers, 5)
	for i, n := range numbers {
		s.Equal(fmt.Sprintf("202401150000%02d", 11+i), n)
	}
	s.mockRepo.AssertExpectations(s.T())
	s.mockRepo.AssertNumberOfCalls(s.T(), "MaxSequenceForDate", 1)
}

// Hints do not survive the call: a second batch re-reads the backend.
func (s *NumberingServiceTestSuite) TestAllocateBatch_HintsAreCallScoped() {
	s.mockRepo.On("MaxSequenceForDate", s.ctx, "20240115").Return(0, nil).Twice()

	svc := services.NewNumberingService(s.mockRepo)

	first, err := svc.AllocateBatch(s.ctx, s.date, 2)
	s.Require().NoError(err)
	s.Equal([]string{"20240115000001", "20240115000002"}, first)

	second, err := svc.AllocateBatch(s.ctx, s.date, 2)
	s.Require().NoError(err)
	s.Equal(first, second)

	s.mockRepo.AssertNumberOfCalls(s.T(), "MaxSequenceForDate", 2)
}

func (s *NumberingServiceTestSuite) TestAllocateBatch_InvalidCount() {
	svc := services.NewNumberingService(s.mockRepo)

	_, err := svc.AllocateBatch(s.ctx, s.date, 0)
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = svc.AllocateBatch(s.ctx, s.date, -3)
	s.ErrorIs(err, apperrors.ErrValidation)

	s.mockRepo.AssertNotCalled(s.T(), "MaxSequenceForDate")
}

func (s *NumberingServiceTestSuite) TestAllocateBatch_SequenceExhausted() {
	s.mockRepo.On("MaxSequenceForDate", s.ctx, "20240115").Return(999998, nil).Once()

	svc := services.NewNumberingService(s.mockRepo)
	_, err := svc.AllocateBatch(s.ctx, s.date, 3)

	s.Require().Error(err)
}

func TestNumberingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(NumberingServiceTestSuite))
}

func TestPreviewNextNumber_DayBoundary(t *testing.T) {
	mockRepo := new(MockJournalRepository)
	ctx := context.Background()

	mockRepo.On("MaxSequenceForDate", ctx, "20240115").Return(999999, nil).Once()
	mockRepo.On("MaxSequenceForDate", ctx, "20240116").Return(0, nil).Once()

	svc := services.NewNumberingService(mockRepo)

	// The last slot of the day is taken; the preview overflows.
	_, err := svc.PreviewNextNumber(ctx, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)

	// The next day starts over at 000001.
	number, err := svc.PreviewNextNumber(ctx, time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "20240116000001", number)
}
