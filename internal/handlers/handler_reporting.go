package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/shiwake-app/shiwake_backend/internal/core/domain"
	portssvc "github.com/shiwake-app/shiwake_backend/internal/core/ports/services"
	"github.com/shiwake-app/shiwake_backend/internal/dto"
	"github.com/shiwake-app/shiwake_backend/internal/middleware"
)

// reportingHandler handles report and reconciliation mapping requests.
type reportingHandler struct {
	reportingService      portssvc.ReportingSvcFacade
	reconciliationService portssvc.ReconciliationSvcFacade
}

func newReportingHandler(reportingService portssvc.ReportingSvcFacade, reconciliationService portssvc.ReconciliationSvcFacade) *reportingHandler {
	return &reportingHandler{
		reportingService:      reportingService,
		reconciliationService: reconciliationService,
	}
}

// trialBalance godoc
// @Summary Trial balance over a date range
// @Description Per-account opening balance, period debit/credit totals and closing balance. format=xlsx downloads a spreadsheet.
// @Tags reports
// @Produce  json
// @Param   from query string true "Period start (YYYY-MM-DD)"
// @Param   to query string true "Period end (YYYY-MM-DD)"
// @Param   format query string false "xlsx for spreadsheet download"
// @Success 200 {object} dto.TrialBalanceResponse
// @Router /reports/trial-balance [get]
func (h *reportingHandler) trialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ReportPeriodParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to are required as YYYY-MM-DD"})
		return
	}

	report, err := h.reportingService.TrialBalance(c.Request.Context(), params.From, params.To)
	if err != nil {
		respondError(c, logger, err, "Failed to compute trial balance")
		return
	}

	if c.Query("format") == "xlsx" {
		h.writeTrialBalanceXLSX(c, logger, report)
		return
	}
	c.JSON(http.StatusOK, report)
}

// writeTrialBalanceXLSX streams the report as a spreadsheet.
func (h *reportingHandler) writeTrialBalanceXLSX(c *gin.Context, logger *slog.Logger, report *dto.TrialBalanceResponse) {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	sheet := "TrialBalance"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Account Code", "Account Name", "Type", "Opening", "Debit", "Credit", "Closing"}
	for i, title := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, title)
	}

	for rowIdx, row := range report.Rows {
		values := []any{
			row.AccountCode,
			row.AccountName,
			string(row.AccountType),
			row.OpeningBalance.InexactFloat64(),
			row.DebitTotal.InexactFloat64(),
			row.CreditTotal.InexactFloat64(),
			row.ClosingBalance.InexactFloat64(),
		}
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	fileName := fmt.Sprintf("trial_balance_%s_%s.xlsx",
		report.From.Format("20060102"), report.To.Format("20060102"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, fileName))
	if err := f.Write(c.Writer); err != nil {
		logger.Error("Failed to write XLSX response", slog.String("error", err.Error()))
	}
}

// reconciliation godoc
// @Summary Reconciliation report over a date range
// @Description Compares the net postings of each active mapping's two sides and flags unequal pairs
// @Tags reports
// @Produce  json
// @Param   from query string true "Period start (YYYY-MM-DD)"
// @Param   to query string true "Period end (YYYY-MM-DD)"
// @Success 200 {object} dto.ReconciliationResponse
// @Router /reports/reconciliation [get]
func (h *reportingHandler) reconciliation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ReportPeriodParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to are required as YYYY-MM-DD"})
		return
	}

	report, err := h.reportingService.Reconciliation(c.Request.Context(), params.From, params.To)
	if err != nil {
		respondError(c, logger, err, "Failed to compute reconciliation report")
		return
	}
	c.JSON(http.StatusOK, report)
}

// createMapping godoc
// @Summary Create a reconciliation mapping
// @Tags reports
// @Accept  json
// @Produce  json
// @Param   mapping body dto.CreateReconciliationMappingRequest true "Mapping"
// @Success 201 {object} domain.ReconciliationMapping
// @Router /reconciliation-mappings [post]
func (h *reportingHandler) createMapping(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateReconciliationMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	mapping, err := h.reconciliationService.CreateMapping(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create reconciliation mapping")
		return
	}
	c.JSON(http.StatusCreated, mapping)
}

func (h *reportingHandler) getMapping(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	mapping, err := h.reconciliationService.GetMapping(c.Request.Context(), c.Param("mappingID"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve reconciliation mapping")
		return
	}
	c.JSON(http.StatusOK, mapping)
}

func (h *reportingHandler) listMappings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	mappings, err := h.reconciliationService.ListMappings(c.Request.Context(), onlyActiveParam(c))
	if err != nil {
		respondError(c, logger, err, "Failed to list reconciliation mappings")
		return
	}
	c.JSON(http.StatusOK, mappings)
}

func (h *reportingHandler) deactivateMapping(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	if err := h.reconciliationService.DeactivateMapping(c.Request.Context(), c.Param("mappingID"), userID); err != nil {
		respondError(c, logger, err, "Failed to deactivate reconciliation mapping")
		return
	}
	c.Status(http.StatusNoContent)
}

// registerReportingRoutes registers report and mapping routes. Reports are
// readable by any authenticated user; mapping maintenance is admin only.
func registerReportingRoutes(group *gin.RouterGroup, reportingSvc portssvc.ReportingSvcFacade, reconciliationSvc portssvc.ReconciliationSvcFacade) {
	h := newReportingHandler(reportingSvc, reconciliationSvc)

	reports := group.Group("/reports")
	{
		reports.GET("/trial-balance", h.trialBalance)
		reports.GET("/reconciliation", h.reconciliation)
	}

	mappings := group.Group("/reconciliation-mappings")
	{
		mappings.GET("", h.listMappings)
		mappings.GET("/:mappingID", h.getMapping)

		admin := mappings.Group("", middleware.RequireRole(domain.RoleAdmin))
		{
			admin.POST("", h.createMapping)
			admin.DELETE("/:mappingID", h.deactivateMapping)
		}
	}
}
