package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "scripfolio/internal/errors"
	"scripfolio/internal/pagination"
	"scripfolio/internal/services"
)

// ReportHandler handles report and holdings requests.
type ReportHandler struct {
	reports services.Reports
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reports services.Reports) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// fyQuery binds the optional financial year filter.
type fyQuery struct {
	FY string `form:"fy" binding:"omitempty,fy_label"`
}

// FYList lists financial years with activity
// @Summary     List financial years
// @Description Return every financial year with trade activity, oldest first.
// @Tags        reports
// @Produce     json
// @Success     200 {object} map[string][]string "Financial years"
// @Router      /reports/fy [get]
func (h *ReportHandler) FYList(c *gin.Context) {
	years, err := h.reports.FYList(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"financial_years": years})
}

// Dashboard returns the portfolio dashboard
// @Summary     Portfolio dashboard
// @Description Current holdings valued at last traded prices plus portfolio totals. A financial year filter scopes the realized figures; quote outages degrade to missing market fields.
// @Tags        reports
// @Produce     json
// @Param       fy query string false "Financial year filter for realized figures, e.g. FY2025"
// @Success     200 {object} services.Dashboard "Dashboard"
// @Failure     400 {object} ErrorResponse "Invalid financial year"
// @Router      /reports/dashboard [get]
func (h *ReportHandler) Dashboard(c *gin.Context) {
	var fy fyQuery
	if err := c.ShouldBindQuery(&fy); err != nil {
		respondWithError(c, apperrors.ErrInvalidFYLabel)
		return
	}

	dash, err := h.reports.Dashboard(c.Request.Context(), fy.FY)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}

// Summary returns the per-financial-year summary
// @Summary     Financial year summary
// @Description Invested cost basis at each year end, realized P&L and charges per financial year.
// @Tags        reports
// @Produce     json
// @Success     200 {object} services.Summary "Summary"
// @Router      /reports/summary [get]
func (h *ReportHandler) Summary(c *gin.Context) {
	summary, err := h.reports.Summary(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Realized lists realized trades
// @Summary     List realized trades
// @Description Realized trades from the last committed replay, optionally filtered by financial year.
// @Tags        reports
// @Produce     json
// @Param       fy        query string false "Financial year filter, e.g. FY2025"
// @Param       page      query int    false "Page number"
// @Param       page_size query int    false "Page size"
// @Success     200 {object} pagination.PageResponse[models.RealizedTrade] "Realized trades"
// @Failure     400 {object} ErrorResponse "Invalid financial year"
// @Router      /reports/realized [get]
func (h *ReportHandler) Realized(c *gin.Context) {
	var fy fyQuery
	if err := c.ShouldBindQuery(&fy); err != nil {
		respondWithError(c, apperrors.ErrInvalidFYLabel)
		return
	}
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.reports.Realized(c.Request.Context(), fy.FY, page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Unmatched lists unmatched sells
// @Summary     List unmatched sells
// @Description Sells the FIFO replay could not match against any buy lot, optionally filtered by financial year.
// @Tags        reports
// @Produce     json
// @Param       fy query string false "Financial year filter, e.g. FY2025"
// @Success     200 {object} map[string]interface{} "Unmatched sells"
// @Failure     400 {object} ErrorResponse "Invalid financial year"
// @Router      /reports/unmatched [get]
func (h *ReportHandler) Unmatched(c *gin.Context) {
	var fy fyQuery
	if err := c.ShouldBindQuery(&fy); err != nil {
		respondWithError(c, apperrors.ErrInvalidFYLabel)
		return
	}

	rows, err := h.reports.Unmatched(c.Request.Context(), fy.FY)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unmatched_sells": rows})
}

// Holdings lists current open positions
// @Summary     List holdings
// @Description Open positions computed by a fresh FIFO replay over committed trades.
// @Tags        holdings
// @Produce     json
// @Success     200 {object} map[string]interface{} "Holdings"
// @Router      /holdings [get]
func (h *ReportHandler) Holdings(c *gin.Context) {
	holdings, err := h.reports.Holdings(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"holdings": holdings})
}
