package handlers

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shiwake-app/shiwake_backend/internal/core/domain"
	portssvc "github.com/shiwake-app/shiwake_backend/internal/core/ports/services"
	"github.com/shiwake-app/shiwake_backend/internal/dto"
	"github.com/shiwake-app/shiwake_backend/internal/middleware"
	"github.com/shiwake-app/shiwake_backend/pkg/config"
)

const dateParamLayout = "2006-01-02"

// journalHandler handles HTTP requests related to journal entries.
type journalHandler struct {
	journalService   portssvc.JournalSvcFacade
	numberingService portssvc.NumberingSvcFacade
	attachmentDir    string
}

// newJournalHandler creates a new journalHandler.
func newJournalHandler(journalService portssvc.JournalSvcFacade, numberingService portssvc.NumberingSvcFacade, attachmentDir string) *journalHandler {
	return &journalHandler{
		journalService:   journalService,
		numberingService: numberingService,
		attachmentDir:    attachmentDir,
	}
}

// createJournal godoc
// @Summary Create a journal entry
// @Description Validates the entry, allocates the next journal number for its date and persists it
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   journal body dto.CreateJournalRequest true "Journal entry"
// @Success 201 {object} dto.JournalResponse
// @Failure 400 {object} map[string]string "Invalid request or unbalanced entry"
// @Failure 409 {object} map[string]string "Number allocation exhausted retries"
// @Router /journals [post]
func (h *journalHandler) createJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createJournal", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	journal, err := h.journalService.CreateJournal(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create journal")
		return
	}

	c.JSON(http.StatusCreated, dto.ToJournalResponse(journal))
}

// getJournal godoc
// @Summary Get a journal entry with its detail lines
// @Tags journals
// @Produce  json
// @Param   journalNumber path string true "Journal number"
// @Success 200 {object} dto.JournalResponse
// @Failure 404 {object} map[string]string "Journal not found"
// @Router /journals/{journalNumber} [get]
func (h *journalHandler) getJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalNumber := c.Param("journalNumber")

	journal, err := h.journalService.GetJournal(c.Request.Context(), journalNumber)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve journal")
		return
	}

	c.JSON(http.StatusOK, dto.ToJournalResponse(journal))
}

// listJournals godoc
// @Summary List journal entries
// @Description Token-paginated listing ordered by journal number descending, filterable by date range and status
// @Tags journals
// @Produce  json
// @Param   dateFrom query string false "Start date (YYYY-MM-DD)"
// @Param   dateTo query string false "End date (YYYY-MM-DD)"
// @Param   status query string false "PENDING, APPROVED or REJECTED"
// @Param   limit query int false "Page size (default 20)"
// @Param   nextToken query string false "Pagination token from the previous page"
// @Success 200 {object} dto.ListJournalsResponse
// @Router /journals [get]
func (h *journalHandler) listJournals(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListJournalsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for listJournals", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	resp, err := h.journalService.ListJournals(c.Request.Context(), params)
	if err != nil {
		respondError(c, logger, err, "Failed to list journals")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// updateJournal godoc
// @Summary Replace a journal entry's content
// @Description Replaces date, description and all detail lines; the approval status resets to PENDING
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   journalNumber path string true "Journal number"
// @Param   journal body dto.UpdateJournalRequest true "Replacement content"
// @Success 200 {object} dto.JournalResponse
// @Failure 404 {object} map[string]string "Journal not found"
// @Router /journals/{journalNumber} [put]
func (h *journalHandler) updateJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalNumber := c.Param("journalNumber")

	var req dto.UpdateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for updateJournal", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	journal, err := h.journalService.UpdateJournal(c.Request.Context(), journalNumber, req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to update journal")
		return
	}

	c.JSON(http.StatusOK, dto.ToJournalResponse(journal))
}

// deleteJournal godoc
// @Summary Delete a journal entry
// @Description Removes the header, details and attachments atomically; approved entries cannot be deleted
// @Tags journals
// @Param   journalNumber path string true "Journal number"
// @Success 204 "Deleted"
// @Failure 404 {object} map[string]string "Journal not found"
// @Failure 409 {object} map[string]string "Journal is approved"
// @Router /journals/{journalNumber} [delete]
func (h *journalHandler) deleteJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalNumber := c.Param("journalNumber")

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.journalService.DeleteJournal(c.Request.Context(), journalNumber, userID); err != nil {
		respondError(c, logger, err, "Failed to delete journal")
		return
	}

	c.Status(http.StatusNoContent)
}

// approveJournal godoc
// @Summary Approve a pending journal entry
// @Tags journals
// @Produce  json
// @Param   journalNumber path string true "Journal number"
// @Success 200 {object} dto.JournalResponse
// @Failure 409 {object} map[string]string "Journal is not pending"
// @Router /journals/{journalNumber}/approve [post]
func (h *journalHandler) approveJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalNumber := c.Param("journalNumber")

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	journal, err := h.journalService.ApproveJournal(c.Request.Context(), journalNumber, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to approve journal")
		return
	}

	c.JSON(http.StatusOK, dto.ToJournalResponse(journal))
}

// rejectJournal godoc
// @Summary Reject a pending journal entry
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   journalNumber path string true "Journal number"
// @Param   rejection body dto.RejectJournalRequest true "Rejection reason"
// @Success 200 {object} dto.JournalResponse
// @Failure 409 {object} map[string]string "Journal is not pending"
// @Router /journals/{journalNumber}/reject [post]
func (h *journalHandler) rejectJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalNumber := c.Param("journalNumber")

	var req dto.RejectJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rejection reason is required"})
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	journal, err := h.journalService.RejectJournal(c.Request.Context(), journalNumber, userID, req.Reason)
	if err != nil {
		respondError(c, logger, err, "Failed to reject journal")
		return
	}

	c.JSON(http.StatusOK, dto.ToJournalResponse(journal))
}

// nextNumber godoc
// @Summary Preview the next journal number for a date
// @Description Read-only: the returned candidate is not reserved
// @Tags journals
// @Produce  json
// @Param   date query string true "Posting date (YYYY-MM-DD)"
// @Success 200 {object} dto.NextNumberResponse
// @Router /journals/next-number [get]
func (h *journalHandler) nextNumber(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	date, err := time.Parse(dateParamLayout, c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	number, err := h.numberingService.PreviewNextNumber(c.Request.Context(), date)
	if err != nil {
		respondError(c, logger, err, "Failed to preview journal number")
		return
	}

	c.JSON(http.StatusOK, dto.NextNumberResponse{
		JournalNumber: number,
		DatePrefix:    domain.DatePrefix(date),
	})
}

// csvHeader is the column layout shared by journal export and import.
var csvHeader = []string{
	"date", "description", "side", "account_code", "sub_account_code",
	"partner_code", "analysis_code", "department_code",
	"base_amount", "tax_amount", "total_amount", "tax_code", "memo",
}

// exportJournals godoc
// @Summary Export journal entries as CSV
// @Description One row per detail line, filterable like the listing endpoint
// @Tags journals
// @Produce  text/csv
// @Param   dateFrom query string false "Start date (YYYY-MM-DD)"
// @Param   dateTo query string false "End date (YYYY-MM-DD)"
// @Param   status query string false "PENDING, APPROVED or REJECTED"
// @Success 200 {string} string "CSV payload"
// @Router /journals/export [get]
func (h *journalHandler) exportJournals(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListJournalsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}
	params.Limit = 200

	// The first page is assembled before any byte goes out, so its errors
	// still produce a JSON error response instead of trailing a 200 CSV.
	page, err := h.journalService.ListJournals(c.Request.Context(), params)
	if err != nil {
		respondError(c, logger, err, "Failed to export journals")
		return
	}
	records, err := h.exportRecords(c.Request.Context(), page.Journals)
	if err != nil {
		respondError(c, logger, err, "Failed to export journals")
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="journals.csv"`)
	w := csv.NewWriter(c.Writer)
	if err := w.Write(csvHeader); err != nil {
		logger.Error("Failed to write CSV header", slog.String("error", err.Error()))
		return
	}

	for {
		if err := w.WriteAll(records); err != nil {
			logger.Error("Failed to write CSV records", slog.String("error", err.Error()))
			return
		}
		if page.NextToken == nil {
			return
		}
		params.NextToken = page.NextToken

		page, err = h.journalService.ListJournals(c.Request.Context(), params)
		if err == nil {
			records, err = h.exportRecords(c.Request.Context(), page.Journals)
		}
		if err != nil {
			// The status line is already on the wire; cut the stream short
			// rather than appending a JSON error to the CSV.
			logger.Error("Journal export aborted mid-stream", slog.String("error", err.Error()))
			c.Abort()
			return
		}
	}
}

// exportRecords expands journal headers into one CSV record per detail line.
func (h *journalHandler) exportRecords(ctx context.Context, journals []dto.JournalResponse) ([][]string, error) {
	var records [][]string
	for _, j := range journals {
		full, err := h.journalService.GetJournal(ctx, j.JournalNumber)
		if err != nil {
			return nil, err
		}
		for _, d := range full.Details {
			records = append(records, []string{
				full.JournalDate.Format(dateParamLayout),
				full.Description,
				string(d.Side),
				d.AccountCode,
				derefOrEmpty(d.SubAccountCode),
				derefOrEmpty(d.PartnerCode),
				derefOrEmpty(d.AnalysisCode),
				derefOrEmpty(d.DepartmentCode),
				d.BaseAmount.String(),
				d.TaxAmount.String(),
				d.TotalAmount.String(),
				derefOrEmpty(d.TaxCode),
				d.Memo,
			})
		}
	}
	return records, nil
}

// importJournals godoc
// @Summary Import journal entries from a CSV file
// @Description Consecutive rows sharing date and description form one entry; numbers come from the batch allocator
// @Tags journals
// @Accept  multipart/form-data
// @Produce  json
// @Param   file formData file true "CSV file"
// @Success 200 {object} dto.ImportJournalsResponse
// @Failure 400 {object} map[string]string "Malformed CSV"
// @Router /journals/import [post]
func (h *journalHandler) importJournals(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "CSV file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to open uploaded file"})
		return
	}
	defer file.Close()

	reqs, err := parseJournalsCSV(csv.NewReader(file))
	if err != nil {
		logger.Warn("Malformed journal CSV", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.journalService.ImportJournals(c.Request.Context(), reqs, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to import journals")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// parseJournalsCSV turns CSV rows into create requests. Consecutive rows with
// the same date and description belong to one journal entry.
func parseJournalsCSV(r *csv.Reader) ([]dto.CreateJournalRequest, error) {
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("CSV must contain a header row and at least one data row")
	}
	if len(records[0]) != len(csvHeader) {
		return nil, fmt.Errorf("CSV header must have %d columns: %s", len(csvHeader), strings.Join(csvHeader, ","))
	}

	var reqs []dto.CreateJournalRequest
	var current *dto.CreateJournalRequest
	for i, rec := range records[1:] {
		rowNo := i + 2
		if len(rec) != len(csvHeader) {
			return nil, fmt.Errorf("row %d: expected %d columns, got %d", rowNo, len(csvHeader), len(rec))
		}

		date, err := time.Parse(dateParamLayout, rec[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid date %q", rowNo, rec[0])
		}
		baseAmount, err := decimal.NewFromString(rec[8])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid base_amount %q", rowNo, rec[8])
		}
		taxAmount, err := decimal.NewFromString(rec[9])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid tax_amount %q", rowNo, rec[9])
		}
		totalAmount, err := decimal.NewFromString(rec[10])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid total_amount %q", rowNo, rec[10])
		}

		detail := dto.JournalDetailRequest{
			Side:           rec[2],
			AccountCode:    rec[3],
			SubAccountCode: nilIfEmpty(rec[4]),
			PartnerCode:    nilIfEmpty(rec[5]),
			AnalysisCode:   nilIfEmpty(rec[6]),
			DepartmentCode: nilIfEmpty(rec[7]),
			BaseAmount:     baseAmount,
			TaxAmount:      taxAmount,
			TotalAmount:    totalAmount,
			TaxCode:        nilIfEmpty(rec[11]),
			Memo:           rec[12],
		}

		if current == nil || !current.Date.Equal(date) || current.Description != rec[1] {
			if current != nil {
				reqs = append(reqs, *current)
			}
			current = &dto.CreateJournalRequest{Date: date, Description: rec[1]}
		}
		current.Details = append(current.Details, detail)
	}
	if current != nil {
		reqs = append(reqs, *current)
	}
	return reqs, nil
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// uploadAttachment godoc
// @Summary Attach a file to a journal entry
// @Tags journals
// @Accept  multipart/form-data
// @Produce  json
// @Param   journalNumber path string true "Journal number"
// @Param   file formData file true "File to attach"
// @Success 201 {object} domain.Attachment
// @Failure 404 {object} map[string]string "Journal not found"
// @Router /journals/{journalNumber}/attachments [post]
func (h *journalHandler) uploadAttachment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalNumber := c.Param("journalNumber")

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	attachment := domain.Attachment{
		AttachmentID:  uuid.NewString(),
		JournalNumber: journalNumber,
		FileName:      filepath.Base(fileHeader.Filename),
		ContentType:   fileHeader.Header.Get("Content-Type"),
		SizeBytes:     fileHeader.Size,
		UploadedAt:    time.Now().UTC(),
		UploadedBy:    userID,
	}
	attachment.StoragePath = filepath.Join(h.attachmentDir, attachment.AttachmentID+filepath.Ext(attachment.FileName))

	if err := c.SaveUploadedFile(fileHeader, attachment.StoragePath); err != nil {
		logger.Error("Failed to store attachment file", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	if err := h.journalService.AttachFile(c.Request.Context(), journalNumber, attachment); err != nil {
		respondError(c, logger, err, "Failed to attach file")
		return
	}

	c.JSON(http.StatusCreated, attachment)
}

// downloadAttachment godoc
// @Summary Download an attached file
// @Tags journals
// @Param   attachmentID path string true "Attachment ID"
// @Success 200 {file} binary
// @Failure 404 {object} map[string]string "Attachment not found"
// @Router /attachments/{attachmentID} [get]
func (h *journalHandler) downloadAttachment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	attachment, err := h.journalService.GetAttachment(c.Request.Context(), c.Param("attachmentID"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve attachment")
		return
	}

	c.FileAttachment(attachment.StoragePath, attachment.FileName)
}

// registerJournalRoutes registers journal specific routes.
func registerJournalRoutes(group *gin.RouterGroup, cfg *config.Config, journalSvc portssvc.JournalSvcFacade, numberingSvc portssvc.NumberingSvcFacade) {
	h := newJournalHandler(journalSvc, numberingSvc, cfg.AttachmentDir)

	journals := group.Group("/journals")
	{
		journals.GET("", h.listJournals)
		journals.GET("/next-number", h.nextNumber)
		journals.GET("/export", h.exportJournals)
		journals.GET("/:journalNumber", h.getJournal)

		write := journals.Group("", middleware.RequireRole(domain.RoleAdmin, domain.RoleMember))
		{
			write.POST("", h.createJournal)
			write.POST("/import", h.importJournals)
			write.PUT("/:journalNumber", h.updateJournal)
			write.DELETE("/:journalNumber", h.deleteJournal)
			write.POST("/:journalNumber/approve", h.approveJournal)
			write.POST("/:journalNumber/reject", h.rejectJournal)
			write.POST("/:journalNumber/attachments", h.uploadAttachment)
		}
	}

	group.GET("/attachments/:attachmentID", h.downloadAttachment)
}
