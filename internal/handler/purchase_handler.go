package handler

import (
	"net/http"

	"delipos/internal/repository"
	"delipos/internal/service"
	"delipos/pkg/pagination"
	"delipos/pkg/response"

	"github.com/gin-gonic/gin"
)

type PurchaseHandler struct {
	ledgerService service.LedgerService
	reportService service.ReportService
}

func NewPurchaseHandler(ledgerService service.LedgerService, reportService service.ReportService) *PurchaseHandler {
	return &PurchaseHandler{ledgerService: ledgerService, reportService: reportService}
}

func (h *PurchaseHandler) RegisterRoutes(router *gin.RouterGroup) {
	purchases := router.Group("/api/purchases")
	{
		purchases.GET("", h.ListPurchases)
		purchases.POST("", h.RecordPurchase)
		purchases.DELETE("/:id", h.DeletePurchase)
	}
}

func (h *PurchaseHandler) ListPurchases(c *gin.Context) {
	from, ok := queryTime(c, "from")
	if !ok {
		return
	}
	to, ok := queryTime(c, "to")
	if !ok {
		return
	}
	filter := repository.PurchaseFilter{Supplier: c.Query("supplier"), From: from, To: to}
	p := pagination.Parse(c)
	purchases, total, err := h.reportService.ListPurchases(c.Request.Context(), filter, p.Page, p.Limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"items": purchases, "total": total}))
}

func (h *PurchaseHandler) RecordPurchase(c *gin.Context) {
	var req service.RecordPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request payload: "+err.Error())
		return
	}
	purchase, err := h.ledgerService.RecordPurchase(c.Request.Context(), c.GetHeader("X-User-ID"), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, purchase))
}

func (h *PurchaseHandler) DeletePurchase(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.ledgerService.DeletePurchase(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": id}))
}
