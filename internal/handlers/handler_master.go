package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shiwake-app/shiwake_backend/internal/core/domain"
	portssvc "github.com/shiwake-app/shiwake_backend/internal/core/ports/services"
	"github.com/shiwake-app/shiwake_backend/internal/dto"
	"github.com/shiwake-app/shiwake_backend/internal/middleware"
)

// masterHandler handles HTTP requests for partners, analysis codes, tax
// rates and departments. The four entities share the same CRUD shape.
type masterHandler struct {
	masterService portssvc.MasterSvcFacade
}

func newMasterHandler(masterService portssvc.MasterSvcFacade) *masterHandler {
	return &masterHandler{masterService: masterService}
}

// --- Partners ---

// createPartner godoc
// @Summary Create a counterparty
// @Tags masters
// @Accept  json
// @Produce  json
// @Param   partner body dto.CreatePartnerRequest true "Partner"
// @Success 201 {object} domain.Partner
// @Failure 409 {object} map[string]string "Partner code already exists"
// @Router /partners [post]
func (h *masterHandler) createPartner(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreatePartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	partner, err := h.masterService.CreatePartner(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create partner")
		return
	}
	c.JSON(http.StatusCreated, partner)
}

func (h *masterHandler) listPartners(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	partners, err := h.masterService.ListPartners(c.Request.Context(), onlyActiveParam(c))
	if err != nil {
		respondError(c, logger, err, "Failed to list partners")
		return
	}
	c.JSON(http.StatusOK, partners)
}

func (h *masterHandler) updatePartner(c *gin.Context) {
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

	partner, err := h.masterService.UpdatePartner(c.Request.Context(), c.Param("partnerCode"), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to update partner")
		return
	}
	c.JSON(http.StatusOK, partner)
}

func (h *masterHandler) deactivatePartner(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	if err := h.masterService.DeactivatePartner(c.Request.Context(), c.Param("partnerCode"), userID); err != nil {
		respondError(c, logger, err, "Failed to deactivate partner")
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Analysis codes ---

// createAnalysisCode godoc
// @Summary Create an analysis code
// @Tags masters
// @Accept  json
// @Produce  json
// @Param   analysisCode body dto.CreateAnalysisCodeRequest true "Analysis code"
// @Success 201 {object} domain.AnalysisCode
// @Router /analysis-codes [post]
func (h *masterHandler) createAnalysisCode(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateAnalysisCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	code, err := h.masterService.CreateAnalysisCode(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create analysis code")
		return
	}
	c.JSON(http.StatusCreated, code)
}

func (h *masterHandler) listAnalysisCodes(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	codes, err := h.masterService.ListAnalysisCodes(c.Request.Context(), onlyActiveParam(c))
	if err != nil {
		respondError(c, logger, err, "Failed to list analysis codes")
		return
	}
	c.JSON(http.StatusOK, codes)
}

func (h *masterHandler) updateAnalysisCode(c *gin.Context) {
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

	code, err := h.masterService.UpdateAnalysisCode(c.Request.Context(), c.Param("analysisCode"), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to update analysis code")
		return
	}
	c.JSON(http.StatusOK, code)
}

func (h *masterHandler) deactivateAnalysisCode(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	if err := h.masterService.DeactivateAnalysisCode(c.Request.Context(), c.Param("analysisCode"), userID); err != nil {
		respondError(c, logger, err, "Failed to deactivate analysis code")
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Tax rates ---

// createTaxRate godoc
// @Summary Create a tax code with its rate
// @Tags masters
// @Accept  json
// @Produce  json
// @Param   taxRate body dto.CreateTaxRateRequest true "Tax rate"
// @Success 201 {object} domain.TaxRate
// @Router /tax-rates [post]
func (h *masterHandler) createTaxRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateTaxRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	taxRate, err := h.masterService.CreateTaxRate(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create tax rate")
		return
	}
	c.JSON(http.StatusCreated, taxRate)
}

func (h *masterHandler) listTaxRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	taxRates, err := h.masterService.ListTaxRates(c.Request.Context(), onlyActiveParam(c))
	if err != nil {
		respondError(c, logger, err, "Failed to list tax rates")
		return
	}
	c.JSON(http.StatusOK, taxRates)
}

func (h *masterHandler) updateTaxRate(c *gin.Context) {
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

	taxRate, err := h.masterService.UpdateTaxRate(c.Request.Context(), c.Param("taxCode"), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to update tax rate")
		return
	}
	c.JSON(http.StatusOK, taxRate)
}

func (h *masterHandler) deactivateTaxRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	if err := h.masterService.DeactivateTaxRate(c.Request.Context(), c.Param("taxCode"), userID); err != nil {
		respondError(c, logger, err, "Failed to deactivate tax rate")
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Departments ---

// createDepartment godoc
// @Summary Create a department
// @Tags masters
// @Accept  json
// @Produce  json
// @Param   department body dto.CreateDepartmentRequest true "Department"
// @Success 201 {object} domain.Department
// @Router /departments [post]
func (h *masterHandler) createDepartment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	department, err := h.masterService.CreateDepartment(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create department")
		return
	}
	c.JSON(http.StatusCreated, department)
}

func (h *masterHandler) listDepartments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	departments, err := h.masterService.ListDepartments(c.Request.Context(), onlyActiveParam(c))
	if err != nil {
		respondError(c, logger, err, "Failed to list departments")
		return
	}
	c.JSON(http.StatusOK, departments)
}

func (h *masterHandler) updateDepartment(c *gin.Context) {
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

	department, err := h.masterService.UpdateDepartment(c.Request.Context(), c.Param("departmentCode"), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to update department")
		return
	}
	c.JSON(http.StatusOK, department)
}

func (h *masterHandler) deactivateDepartment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	if err := h.masterService.DeactivateDepartment(c.Request.Context(), c.Param("departmentCode"), userID); err != nil {
		respondError(c, logger, err, "Failed to deactivate department")
		return
	}
	c.Status(http.StatusNoContent)
}

// registerMasterRoutes registers the remaining master data routes. Listing is
// open to any authenticated user; mutations are admin only.
func registerMasterRoutes(group *gin.RouterGroup, masterSvc portssvc.MasterSvcFacade) {
	h := newMasterHandler(masterSvc)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	partners := group.Group("/partners")
	{
		partners.GET("", h.listPartners)
		partners.POST("", adminOnly, h.createPartner)
		partners.PUT("/:partnerCode", adminOnly, h.updatePartner)
		partners.DELETE("/:partnerCode", adminOnly, h.deactivatePartner)
	}

	analysisCodes := group.Group("/analysis-codes")
	{
		analysisCodes.GET("", h.listAnalysisCodes)
		analysisCodes.POST("", adminOnly, h.createAnalysisCode)
		analysisCodes.PUT("/:analysisCode", adminOnly, h.updateAnalysisCode)
		analysisCodes.DELETE("/:analysisCode", adminOnly, h.deactivateAnalysisCode)
	}

	taxRates := group.Group("/tax-rates")
	{
		taxRates.GET("", h.listTaxRates)
		taxRates.POST("", adminOnly, h.createTaxRate)
		taxRates.PUT("/:taxCode", adminOnly, h.updateTaxRate)
		taxRates.DELETE("/:taxCode", adminOnly, h.deactivateTaxRate)
	}

	departments := group.Group("/departments")
	{
		departments.GET("", h.listDepartments)
		departments.POST("", adminOnly, h.createDepartment)
		departments.PUT("/:departmentCode", adminOnly, h.updateDepartment)
		departments.DELETE("/:departmentCode", adminOnly, h.deactivateDepartment)
	}
}
