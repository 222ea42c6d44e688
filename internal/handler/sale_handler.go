package handler

import (
	"net/http"

	"delipos/internal/repository"
	"delipos/internal/service"
	"delipos/pkg/pagination"
	"delipos/pkg/response"

	"github.com/gin-gonic/gin"
)

type SaleHandler struct {
	ledgerService service.LedgerService
	reportService service.ReportService
}

func NewSaleHandler(ledgerService service.LedgerService, reportService service.ReportService) *SaleHandler {
	return &SaleHandler{ledgerService: ledgerService, reportService: reportService}
}

func (h *SaleHandler) RegisterRoutes(router *gin.RouterGroup) {
	sales := router.Group("/api/sales")
	{
		sales.GET("", h.ListSales)
		sales.POST("", h.RecordSale)
		sales.DELETE("/:id", h.DeleteSale)
	}
}

func (h *SaleHandler) ListSales(c *gin.Context) {
	from, ok := queryTime(c, "from")
	if !ok {
		return
	}
	to, ok := queryTime(c, "to")
	if !ok {
		return
	}
	filter := repository.SaleFilter{Status: c.Query("status"), From: from, To: to}
	if clientID, ok := optionalUintQuery(c, "client_id"); ok {
		filter.ClientID = clientID
	} else {
		return
	}
	p := pagination.Parse(c)
	sales, total, err := h.reportService.ListSales(c.Request.Context(), filter, p.Page, p.Limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"items": sales, "total": total}))
}

func (h *SaleHandler) RecordSale(c *gin.Context) {
	var req service.RecordSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request payload: "+err.Error())
		return
	}
	sale, err := h.ledgerService.RecordSale(c.Request.Context(), c.GetHeader("X-User-ID"), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, sale))
}

func (h *SaleHandler) DeleteSale(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.ledgerService.DeleteSale(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": id}))
}
