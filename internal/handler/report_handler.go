package handler

import (
	"net/http"
	"time"

	"delipos/internal/repository"
	"delipos/internal/service"
	"delipos/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService service.ReportService
}

func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/api/reports")
	{
		reports.GET("/sales", h.SalesReport)
		reports.GET("/purchases", h.PurchasesReport)
		reports.GET("/cashflow", h.CashFlow)
		reports.GET("/inventory", h.InventoryFlow)
		reports.GET("/totals", h.Totals)
		reports.GET("/movements", h.Movements)
	}
}

func (h *ReportHandler) SalesReport(c *gin.Context) {
	from, to, ok := reportRange(c)
	if !ok {
		return
	}
	rows, err := h.reportService.SalesReport(c.Request.Context(), from, to)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rows))
}

func (h *ReportHandler) PurchasesReport(c *gin.Context) {
	from, to, ok := reportRange(c)
	if !ok {
		return
	}
	rows, err := h.reportService.PurchasesReport(c.Request.Context(), from, to)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rows))
}

func (h *ReportHandler) CashFlow(c *gin.Context) {
	from, to, ok := reportRange(c)
	if !ok {
		return
	}
	report, err := h.reportService.CashFlow(c.Request.Context(), from, to)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, report))
}

func (h *ReportHandler) InventoryFlow(c *gin.Context) {
	from, to, ok := reportRange(c)
	if !ok {
		return
	}
	report, err := h.reportService.InventoryFlow(c.Request.Context(), from, to)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, report))
}

func (h *ReportHandler) Totals(c *gin.Context) {
	from, to, ok := reportRange(c)
	if !ok {
		return
	}
	totals, err := h.reportService.TotalsReport(c.Request.Context(), from, to)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, totals))
}

func (h *ReportHandler) Movements(c *gin.Context) {
	from, to, ok := reportRange(c)
	if !ok {
		return
	}
	filter := repository.MovementFilter{Kind: c.Query("kind"), From: from, To: to}
	if productID, ok := optionalUintQuery(c, "product_id"); ok {
		filter.ProductID = productID
	} else {
		return
	}
	movements, err := h.reportService.ListMovements(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, movements))
}

func reportRange(c *gin.Context) (from, to *time.Time, ok bool) {
	if from, ok = queryTime(c, "from"); !ok {
		return nil, nil, false
	}
	if to, ok = queryTime(c, "to"); !ok {
		return nil, nil, false
	}
	return from, to, true
}
