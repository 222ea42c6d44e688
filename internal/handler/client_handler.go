package handler

import (
	"net/http"

	"delipos/internal/repository"
	"delipos/internal/service"
	"delipos/pkg/pagination"
	"delipos/pkg/response"

	"github.com/gin-gonic/gin"
)

type ClientHandler struct {
	clientService service.ClientService
	ledgerService service.LedgerService
	reportService service.ReportService
}

func NewClientHandler(clientService service.ClientService, ledgerService service.LedgerService, reportService service.ReportService) *ClientHandler {
	return &ClientHandler{clientService: clientService, ledgerService: ledgerService, reportService: reportService}
}

func (h *ClientHandler) RegisterRoutes(router *gin.RouterGroup) {
	clients := router.Group("/api/clients")
	{
		clients.GET("", h.SearchClients)
		clients.POST("", h.CreateClient)
		clients.GET("/:id", h.GetClient)
		clients.PUT("/:id", h.UpdateClient)
		clients.DELETE("/:id", h.DeleteClient)
		clients.GET("/:id/credit", h.AvailableCredit)
		clients.GET("/:id/transactions", h.ListTransactions)
		clients.POST("/:id/payments", h.ApplyPayment)
		clients.POST("/:id/recompute", h.RecomputeDebt)
	}
}

func (h *ClientHandler) SearchClients(c *gin.Context) {
	p := pagination.Parse(c)
	clients, total, err := h.clientService.SearchClients(c.Request.Context(), c.Query("q"), p.Page, p.Limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"items": clients, "total": total}))
}

func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req service.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request payload: "+err.Error())
		return
	}
	client, err := h.clientService.CreateClient(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, client))
}

func (h *ClientHandler) GetClient(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	client, err := h.clientService.GetClient(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, client))
}

func (h *ClientHandler) UpdateClient(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req service.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request payload: "+err.Error())
		return
	}
	client, err := h.clientService.UpdateClient(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, client))
}

func (h *ClientHandler) DeleteClient(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.clientService.DeleteClient(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": id}))
}

func (h *ClientHandler) AvailableCredit(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	available, err := h.clientService.AvailableCredit(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"available_credit": available}))
}

func (h *ClientHandler) ListTransactions(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	limit := pagination.Parse(c).Limit
	txs, err := h.reportService.ListTransactions(c.Request.Context(), repository.TransactionFilter{ClientID: &id, Limit: limit})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, txs))
}

func (h *ClientHandler) ApplyPayment(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req service.ApplyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request payload: "+err.Error())
		return
	}
	req.ClientID = id
	result, err := h.ledgerService.ApplyPayment(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

func (h *ClientHandler) RecomputeDebt(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	debt, err := h.ledgerService.RecomputeDebt(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"total_debt": debt}))
}
