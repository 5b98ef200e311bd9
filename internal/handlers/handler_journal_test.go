package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/shiwake-app/shiwake_backend/internal/apperrors"
	"github.com/shiwake-app/shiwake_backend/internal/core/domain"
	portssvc "github.com/shiwake-app/shiwake_backend/internal/core/ports/services"
	"github.com/shiwake-app/shiwake_backend/internal/dto"
	"github.com/shiwake-app/shiwake_backend/internal/handlers"
	"github.com/shiwake-app/shiwake_backend/internal/utils"
	"github.com/shiwake-app/shiwake_backend/pkg/config"
)

// --- Mock JournalService ---

type MockJournalService struct {
	mock.Mock
}

var _ portssvc.JournalSvcFacade = (*MockJournalService)(nil)

func (m *MockJournalService) CreateJournal(ctx context.Context, req dto.CreateJournalRequest, creatorUserID string) (*domain.JournalHeader, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalHeader), args.Error(1)
}

func (m *MockJournalService) GetJournal(ctx context.Context, journalNumber string) (*domain.JournalHeader, error) {
	args := m.Called(ctx, journalNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalHeader), args.Error(1)
}

func (m *MockJournalService) ListJournals(ctx context.Context, params dto.ListJournalsParams) (*dto.ListJournalsResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListJournalsResponse), args.Error(1)
}

func (m *MockJournalService) UpdateJournal(ctx context.Context, journalNumber string, req dto.UpdateJournalRequest, userID string) (*domain.JournalHeader, error) {
	args := m.Called(ctx, journalNumber, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalHeader), args.Error(1)
}

func (m *MockJournalService) DeleteJournal(ctx context.Context, journalNumber string, userID string) error {
	args := m.Called(ctx, journalNumber, userID)
	return args.Error(0)
}

func (m *MockJournalService) ApproveJournal(ctx context.Context, journalNumber string, approverUserID string) (*domain.JournalHeader, error) {
	args := m.Called(ctx, journalNumber, approverUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalHeader), args.Error(1)
}

func (m *MockJournalService) RejectJournal(ctx context.Context, journalNumber string, approverUserID string, reason string) (*domain.JournalHeader, error) {
	args := m.Called(ctx, journalNumber, approverUserID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalHeader), args.Error(1)
}

func (m *MockJournalService) ImportJournals(ctx context.Context, reqs []dto.CreateJournalRequest, creatorUserID string) (*dto.ImportJournalsResponse, error) {
	args := m.Called(ctx, reqs, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ImportJournalsResponse), args.Error(1)
}

func (m *MockJournalService) AttachFile(ctx context.Context, journalNumber string, attachment domain.Attachment) error {
	args := m.Called(ctx, journalNumber, attachment)
	return args.Error(0)
}

func (m *MockJournalService) GetAttachment(ctx context.Context, attachmentID string) (*domain.Attachment, error) {
	args := m.Called(ctx, attachmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Attachment), args.Error(1)
}

// --- Mock NumberingService ---

type MockNumberingService struct {
	mock.Mock
}

var _ portssvc.NumberingSvcFacade = (*MockNumberingService)(nil)

func (m *MockNumberingService) PreviewNextNumber(ctx context.Context, date time.Time) (string, error) {
	args := m.Called(ctx, date)
	return args.String(0), args.Error(1)
}

func (m *MockNumberingService) AllocateBatch(ctx context.Context, date time.Time, count int) ([]string, error) {
	args := m.Called(ctx, date, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// --- Test Suite ---

type JournalHandlerTestSuite struct {
	suite.Suite
	router             *gin.Engine
	mockJournalService *MockJournalService
	mockNumbering      *MockNumberingService
	cfg                *config.Config
}

func (suite *JournalHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.cfg = &config.Config{
		JWTSecret:         "test-secret-key-that-is-long-enough",
		JWTExpiryDuration: time.Hour,
		JWTIssuer:         "shiwake-test",
		IsProduction:      true, // skip swagger routes
		AttachmentDir:     suite.T().TempDir(),
	}

	suite.mockJournalService = new(MockJournalService)
	suite.mockNumbering = new(MockNumberingService)

	handlers.RegisterValidators()

	svcs := &portssvc.ServiceContainer{
		Journal:   suite.mockJournalService,
		Numbering: suite.mockNumbering,
	}
	handlers.RegisterRoutes(suite.router, suite.cfg, svcs, nil)
}

func (suite *JournalHandlerTestSuite) generateTestToken(userID string, role domain.Role) string {
	token, _, err := utils.GenerateJWT(userID, string(role), suite.cfg.JWTSecret, time.Hour, suite.cfg.JWTIssuer)
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return token
}

func (suite *JournalHandlerTestSuite) serve(method, url string, body []byte, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	suite.Require().NoError(err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *JournalHandlerTestSuite) TestGetJournal_Success() {
	header := &domain.JournalHeader{
		JournalNumber: "20240115000001",
		JournalDate:   time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Description:   "1月分売上",
		TotalAmount:   decimal.NewFromInt(100),
		Status:        domain.StatusPending,
		Details: []domain.JournalDetail{
			{JournalNumber: "20240115000001", LineNo: 1, Side: domain.Debit, AccountCode: "1010", TotalAmount: decimal.NewFromInt(100)},
			{JournalNumber: "20240115000001", LineNo: 2, Side: domain.Credit, AccountCode: "4000", TotalAmount: decimal.NewFromInt(100)},
		},
	}
	suite.mockJournalService.On("GetJournal", mock.Anything, "20240115000001").Return(header, nil).Once()

	token := suite.generateTestToken("user-1", domain.RoleReadOnly)
	w := suite.serve(http.MethodGet, "/api/v1/journals/20240115000001", nil, token)

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.JournalResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("20240115000001", resp.JournalNumber)
	suite.Len(resp.Details, 2)
	suite.mockJournalService.AssertExpectations(suite.T())
}

func (suite *JournalHandlerTestSuite) TestGetJournal_NotFound() {
	suite.mockJournalService.On("GetJournal", mock.Anything, "20240115999999").
		Return(nil, apperrors.ErrNotFound).Once()

	token := suite.generateTestToken("user-1", domain.RoleMember)
	w := suite.serve(http.MethodGet, "/api/v1/journals/20240115999999", nil, token)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *JournalHandlerTestSuite) TestGetJournal_MissingToken() {
	w := suite.serve(http.MethodGet, "/api/v1/journals/20240115000001", nil, "")

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockJournalService.AssertNotCalled(suite.T(), "GetJournal")
}

func (suite *JournalHandlerTestSuite) TestCreateJournal_Success() {
	reqBody := dto.CreateJournalRequest{
		Date:        time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Description: "備品購入",
		Details: []dto.JournalDetailRequest{
			{Side: "DEBIT", AccountCode: "5010", TotalAmount: decimal.NewFromInt(3000)},
			{Side: "CREDIT", AccountCode: "1010", TotalAmount: decimal.NewFromInt(3000)},
		},
	}
	created := &domain.JournalHeader{
		JournalNumber: "20240115000007",
		JournalDate:   reqBody.Date,
		Description:   reqBody.Description,
		TotalAmount:   decimal.NewFromInt(3000),
		Status:        domain.StatusPending,
	}
	suite.mockJournalService.On("CreateJournal", mock.Anything, mock.Anything, "user-1").
		Return(created, nil).Once()

	body, _ := json.Marshal(reqBody)
	token := suite.generateTestToken("user-1", domain.RoleMember)
	w := suite.serve(http.MethodPost, "/api/v1/journals", body, token)

	suite.Equal(http.StatusCreated, w.Code)

	var resp dto.JournalResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("20240115000007", resp.JournalNumber)
	suite.Equal("PENDING", resp.Status)
}

// Read-only users can list and fetch but never write.
func (suite *JournalHandlerTestSuite) TestCreateJournal_ReadonlyForbidden() {
	body, _ := json.Marshal(dto.CreateJournalRequest{
		Date:        time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Description: "x",
		Details: []dto.JournalDetailRequest{
			{Side: "DEBIT", AccountCode: "1010", TotalAmount: decimal.NewFromInt(1)},
			{Side: "CREDIT", AccountCode: "4000", TotalAmount: decimal.NewFromInt(1)},
		},
	})
	token := suite.generateTestToken("viewer-1", domain.RoleReadOnly)
	w := suite.serve(http.MethodPost, "/api/v1/journals", body, token)

	suite.Equal(http.StatusForbidden, w.Code)
	suite.mockJournalService.AssertNotCalled(suite.T(), "CreateJournal")
}

func (suite *JournalHandlerTestSuite) TestCreateJournal_InvalidSide() {
	body := []byte(`{
		"date": "2024-01-15T00:00:00Z",
		"description": "typo",
		"details": [
			{"side": "DEBET", "accountCode": "1010", "totalAmount": "100"},
			{"side": "CREDIT", "accountCode": "4000", "totalAmount": "100"}
		]
	}`)
	token := suite.generateTestToken("user-1", domain.RoleMember)
	w := suite.serve(http.MethodPost, "/api/v1/journals", body, token)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockJournalService.AssertNotCalled(suite.T(), "CreateJournal")
}

func (suite *JournalHandlerTestSuite) TestDeleteJournal_ApprovedConflict() {
	suite.mockJournalService.On("DeleteJournal", mock.Anything, "20240115000001", "user-1").
		Return(fmt.Errorf("%w: approved journal cannot be deleted", apperrors.ErrConflict)).Once()

	token := suite.generateTestToken("user-1", domain.RoleAdmin)
	w := suite.serve(http.MethodDelete, "/api/v1/journals/20240115000001", nil, token)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *JournalHandlerTestSuite) TestNextNumber() {
	expectedDate := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	suite.mockNumbering.On("PreviewNextNumber", mock.Anything, expectedDate).
		Return("20240115000042", nil).Once()

	token := suite.generateTestToken("user-1", domain.RoleReadOnly)
	w := suite.serve(http.MethodGet, "/api/v1/journals/next-number?date=2024-01-15", nil, token)

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.NextNumberResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("20240115000042", resp.JournalNumber)
	suite.Equal("20240115", resp.DatePrefix)
}

func (suite *JournalHandlerTestSuite) TestNextNumber_BadDate() {
	token := suite.generateTestToken("user-1", domain.RoleMember)
	w := suite.serve(http.MethodGet, "/api/v1/journals/next-number?date=Jan-15", nil, token)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockNumbering.AssertNotCalled(suite.T(), "PreviewNextNumber")
}

func (suite *JournalHandlerTestSuite) TestRejectJournal_MissingReason() {
	token := suite.generateTestToken("user-1", domain.RoleAdmin)
	w := suite.serve(http.MethodPost, "/api/v1/journals/20240115000001/reject", []byte(`{}`), token)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockJournalService.AssertNotCalled(suite.T(), "RejectJournal")
}

func (suite *JournalHandlerTestSuite) TestExportJournals_Success() {
	header := &domain.JournalHeader{
		JournalNumber: "20240115000001",
		JournalDate:   time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Description:   "1月分売上",
		TotalAmount:   decimal.NewFromInt(100),
		Status:        domain.StatusApproved,
		Details: []domain.JournalDetail{
			{JournalNumber: "20240115000001", LineNo: 1, Side: domain.Debit, AccountCode: "1010", BaseAmount: decimal.NewFromInt(100), TaxAmount: decimal.Zero, TotalAmount: decimal.NewFromInt(100)},
			{JournalNumber: "20240115000001", LineNo: 2, Side: domain.Credit, AccountCode: "4000", BaseAmount: decimal.NewFromInt(100), TaxAmount: decimal.Zero, TotalAmount: decimal.NewFromInt(100)},
		},
	}
	page := &dto.ListJournalsResponse{Journals: []dto.JournalResponse{dto.ToJournalResponse(header)}}
	suite.mockJournalService.On("ListJournals", mock.Anything, mock.Anything).Return(page, nil).Once()
	suite.mockJournalService.On("GetJournal", mock.Anything, "20240115000001").Return(header, nil).Once()

	token := suite.generateTestToken("user-1", domain.RoleReadOnly)
	w := suite.serve(http.MethodGet, "/api/v1/journals/export", nil, token)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Header().Get("Content-Type"), "text/csv")

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	suite.Require().Len(lines, 3) // header row + one record per detail line
	suite.Contains(lines[0], "date,description,side")
	suite.Contains(lines[1], "DEBIT")
	suite.Contains(lines[2], "CREDIT")
}

// A listing failure surfaces as a JSON error response, never as an error
// payload trailing an already-started 200 CSV.
func (suite *JournalHandlerTestSuite) TestExportJournals_ListFailure() {
	suite.mockJournalService.On("ListJournals", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrValidation, "SHIPPED")).Once()

	token := suite.generateTestToken("user-1", domain.RoleReadOnly)
	w := suite.serve(http.MethodGet, "/api/v1/journals/export", nil, token)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Header().Get("Content-Type"), "application/json")
	suite.NotContains(w.Body.String(), "date,description")
}

func TestJournalHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(JournalHandlerTestSuite))
}
