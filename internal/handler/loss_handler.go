package handler

import (
	"net/http"

	"delipos/internal/repository"
	"delipos/internal/service"
	"delipos/pkg/pagination"
	"delipos/pkg/response"

	"github.com/gin-gonic/gin"
)

type LossHandler struct {
	ledgerService service.LedgerService
	reportService service.ReportService
}

func NewLossHandler(ledgerService service.LedgerService, reportService service.ReportService) *LossHandler {
	return &LossHandler{ledgerService: ledgerService, reportService: reportService}
}

func (h *LossHandler) RegisterRoutes(router *gin.RouterGroup) {
	losses := router.Group("/api/losses")
	{
		losses.GET("", h.ListLosses)
		losses.POST("", h.RecordLoss)
		losses.DELETE("/:id", h.DeleteLoss)
	}
}

func (h *LossHandler) ListLosses(c *gin.Context) {
	from, ok := queryTime(c, "from")
	if !ok {
		return
	}
	to, ok := queryTime(c, "to")
	if !ok {
		return
	}
	filter := repository.LossFilter{LossType: c.Query("loss_type"), From: from, To: to}
	if productID, ok := optionalUintQuery(c, "product_id"); ok {
		filter.ProductID = productID
	} else {
		return
	}
	p := pagination.Parse(c)
	losses, total, err := h.reportService.ListLosses(c.Request.Context(), filter, p.Page, p.Limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"items": losses, "total": total}))
}

func (h *LossHandler) RecordLoss(c *gin.Context) {
	var req service.RecordLossRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request payload: "+err.Error())
		return
	}
	loss, err := h.ledgerService.RecordLoss(c.Request.Context(), c.GetHeader("X-User-ID"), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, loss))
}

func (h *LossHandler) DeleteLoss(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.ledgerService.DeleteLoss(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": id}))
}
