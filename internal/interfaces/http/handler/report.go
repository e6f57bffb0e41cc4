package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	reportapp "github.com/ordertrack/backend/internal/application/report"
)

// ReportHandler handles financial reporting API endpoints
type ReportHandler struct {
	BaseHandler
	service *reportapp.SummaryService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(service *reportapp.SummaryService) *ReportHandler {
	return &ReportHandler{service: service}
}

// MonthlySummary returns the income, expense, net and margin figures for one
// month. Defaults to the current month when year or month is omitted.
func (h *ReportHandler) MonthlySummary(c *gin.Context) {
	now := time.Now()
	year, err := intQuery(c, "year", now.Year())
	if err != nil {
		h.BadRequest(c, "Invalid year")
		return
	}
	month, err := intQuery(c, "month", int(now.Month()))
	if err != nil {
		h.BadRequest(c, "Invalid month")
		return
	}

	summary, err := h.service.MonthlySummary(c.Request.Context(), year, time.Month(month))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// AnnualSummary returns twelve monthly rows plus the year total and the
// best and worst month. Defaults to the current year.
func (h *ReportHandler) AnnualSummary(c *gin.Context) {
	year, err := intQuery(c, "year", time.Now().Year())
	if err != nil {
		h.BadRequest(c, "Invalid year")
		return
	}

	summary, err := h.service.AnnualSummary(c.Request.Context(), year)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// TopProducts returns products ranked by collected revenue
func (h *ReportHandler) TopProducts(c *gin.Context) {
	limit, err := intQuery(c, "limit", 0)
	if err != nil {
		h.BadRequest(c, "Invalid limit")
		return
	}

	products, err := h.service.TopProducts(c.Request.Context(), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, products)
}

// Dashboard returns the headline counters for the landing screen
func (h *ReportHandler) Dashboard(c *gin.Context) {
	stats, err := h.service.Dashboard(c.Request.Context(), time.Now())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stats)
}

func intQuery(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

// RegisterRoutes registers all report routes
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reports := rg.Group("/reports")
	{
		reports.GET("/monthly", h.MonthlySummary)
		reports.GET("/annual", h.AnnualSummary)
		reports.GET("/top-products", h.TopProducts)
		reports.GET("/dashboard", h.Dashboard)
	}
}
