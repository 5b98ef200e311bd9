package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shiwake-app/shiwake_backend/internal/core/domain"
	portssvc "github.com/shiwake-app/shiwake_backend/internal/core/ports/services"
	"github.com/shiwake-app/shiwake_backend/internal/dto"
	"github.com/shiwake-app/shiwake_backend/internal/middleware"
)

// accountHandler handles HTTP requests for ledger accounts and their
// sub-accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
	masterService  portssvc.MasterSvcFacade
}

func newAccountHandler(accountService portssvc.AccountSvcFacade, masterService portssvc.MasterSvcFacade) *accountHandler {
	return &accountHandler{accountService: accountService, masterService: masterService}
}

// createAccount godoc
// @Summary Create a ledger account
// @Tags masters
// @Accept  json
// @Produce  json
// @Param   account body dto.CreateAccountRequest true "Account"
// @Success 201 {object} dto.AccountResponse
// @Failure 409 {object} map[string]string "Account code already exists"
// @Router /accounts [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	account, err := h.accountService.CreateAccount(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create account")
		return
	}

	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// getAccount godoc
// @Summary Get a ledger account
// @Tags masters
// @Produce  json
// @Param   accountCode path string true "Account code"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} map[string]string "Account not found"
// @Router /accounts/{accountCode} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	account, err := h.accountService.GetAccountByCode(c.Request.Context(), c.Param("accountCode"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve account")
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// listAccounts godoc
// @Summary List ledger accounts
// @Tags masters
// @Produce  json
// @Param   onlyActive query bool false "Only active accounts (default true)"
// @Success 200 {array} dto.AccountResponse
// @Router /accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), onlyActiveParam(c))
	if err != nil {
		respondError(c, logger, err, "Failed to list accounts")
		return
	}

	responses := make([]dto.AccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = dto.ToAccountResponse(&accounts[i])
	}
	c.JSON(http.StatusOK, responses)
}

// updateAccount godoc
// @Summary Rename a ledger account
// @Tags masters
// @Accept  json
// @Produce  json
// @Param   accountCode path string true "Account code"
// @Param   account body dto.UpdateAccountRequest true "Fields to update"
// @Success 200 {object} dto.AccountResponse
// @Router /accounts/{accountCode} [put]
func (h *accountHandler) updateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	account, err := h.accountService.UpdateAccount(c.Request.Context(), c.Param("accountCode"), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to update account")
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// deactivateAccount godoc
// @Summary Deactivate a ledger account
// @Description Soft delete: the account stops accepting new journal lines but stays in history
// @Tags masters
// @Param   accountCode path string true "Account code"
// @Success 204 "Deactivated"
// @Router /accounts/{accountCode} [delete]
func (h *accountHandler) deactivateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.accountService.DeactivateAccount(c.Request.Context(), c.Param("accountCode"), userID); err != nil {
		respondError(c, logger, err, "Failed to deactivate account")
		return
	}

	c.Status(http.StatusNoContent)
}

// createSubAccount godoc
// @Summary Create a sub-account beneath an account
// @Tags masters
// @Accept  json
// @Produce  json
// @Param   accountCode path string true "Parent account code"
// @Param   subAccount body dto.CreateSubAccountRequest true "Sub-account"
// @Success 201 {object} domain.SubAccount
// @Router /accounts/{accountCode}/sub-accounts [post]
func (h *accountHandler) createSubAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateSubAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	subAccount, err := h.masterService.CreateSubAccount(c.Request.Context(), c.Param("accountCode"), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create sub-account")
		return
	}

	c.JSON(http.StatusCreated, subAccount)
}

// listSubAccounts godoc
// @Summary List sub-accounts of an account
// @Tags masters
// @Produce  json
// @Param   accountCode path string true "Parent account code"
// @Param   onlyActive query bool false "Only active sub-accounts (default true)"
// @Success 200 {array} domain.SubAccount
// @Router /accounts/{accountCode}/sub-accounts [get]
func (h *accountHandler) listSubAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	subAccounts, err := h.masterService.ListSubAccounts(c.Request.Context(), c.Param("accountCode"), onlyActiveParam(c))
	if err != nil {
		respondError(c, logger, err, "Failed to list sub-accounts")
		return
	}

	c.JSON(http.StatusOK, subAccounts)
}

// updateSubAccount godoc
// @Summary Rename a sub-account
// @Tags masters
// @Accept  json
// @Produce  json
// @Param   accountCode path string true "Parent account code"
// @Param   subAccountCode path string true "Sub-account code"
// @Param   subAccount body dto.UpdateMasterRequest true "Fields to update"
// @Success 200 {object} domain.SubAccount
// @Router /accounts/{accountCode}/sub-accounts/{subAccountCode} [put]
func (h *accountHandler) updateSubAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.UpdateMasterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	subAccount, err := h.masterService.UpdateSubAccount(c.Request.Context(), c.Param("accountCode"), c.Param("subAccountCode"), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to update sub-account")
		return
	}

	c.JSON(http.StatusOK, subAccount)
}

// deactivateSubAccount godoc
// @Summary Deactivate a sub-account
// @Tags masters
// @Param   accountCode path string true "Parent account code"
// @Param   subAccountCode path string true "Sub-account code"
// @Success 204 "Deactivated"
// @Router /accounts/{accountCode}/sub-accounts/{subAccountCode} [delete]
func (h *accountHandler) deactivateSubAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.masterService.DeactivateSubAccount(c.Request.Context(), c.Param("accountCode"), c.Param("subAccountCode"), userID); err != nil {
		respondError(c, logger, err, "Failed to deactivate sub-account")
		return
	}

	c.Status(http.StatusNoContent)
}

// onlyActiveParam reads the onlyActive query flag, defaulting to true so
// listings show usable masters unless history is explicitly requested.
func onlyActiveParam(c *gin.Context) bool {
	return c.DefaultQuery("onlyActive", "true") == "true"
}

// registerAccountRoutes registers account and sub-account routes. Mutations
// are restricted to admins.
func registerAccountRoutes(group *gin.RouterGroup, accountSvc portssvc.AccountSvcFacade, masterSvc portssvc.MasterSvcFacade) {
	h := newAccountHandler(accountSvc, masterSvc)

	accounts := group.Group("/accounts")
	{
		accounts.GET("", h.listAccounts)
		accounts.GET("/:accountCode", h.getAccount)
		accounts.GET("/:accountCode/sub-accounts", h.listSubAccounts)

		admin := accounts.Group("", middleware.RequireRole(domain.RoleAdmin))
		{
			admin.POST("", h.createAccount)
			admin.PUT("/:accountCode", h.updateAccount)
			admin.DELETE("/:accountCode", h.deactivateAccount)
			admin.POST("/:accountCode/sub-accounts", h.createSubAccount)
			admin.PUT("/:accountCode/sub-accounts/:subAccountCode", h.updateSubAccount)
			admin.DELETE("/:accountCode/sub-accounts/:subAccountCode", h.deactivateSubAccount)
		}
	}
}
