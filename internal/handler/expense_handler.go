package handler

import (
	"net/http"

	"delipos/internal/repository"
	"delipos/internal/service"
	"delipos/pkg/pagination"
	"delipos/pkg/response"

	"github.com/gin-gonic/gin"
)

type ExpenseHandler struct {
	expenseService service.ExpenseService
}

func NewExpenseHandler(expenseService service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

func (h *ExpenseHandler) RegisterRoutes(router *gin.RouterGroup) {
	expenses := router.Group("/api/expenses")
	{
		expenses.GET("", h.ListExpenses)
		expenses.POST("", h.CreateExpense)
		expenses.GET("/:id", h.GetExpense)
		expenses.PUT("/:id", h.UpdateExpense)
		expenses.DELETE("/:id", h.DeleteExpense)
	}
}

func (h *ExpenseHandler) ListExpenses(c *gin.Context) {
	from, ok := queryTime(c, "from")
	if !ok {
		return
	}
	to, ok := queryTime(c, "to")
	if !ok {
		return
	}
	p := pagination.Parse(c)
	expenses, total, err := h.expenseService.ListExpenses(c.Request.Context(), repository.ExpenseFilter{From: from, To: to}, p.Page, p.Limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"items": expenses, "total": total}))
}

func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	var req service.ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request payload: "+err.Error())
		return
	}
	expense, err := h.expenseService.CreateExpense(c.Request.Context(), c.GetHeader("X-User-ID"), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, expense))
}

func (h *ExpenseHandler) GetExpense(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	expense, err := h.expenseService.GetExpense(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, expense))
}

func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req service.ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request payload: "+err.Error())
		return
	}
	expense, err := h.expenseService.UpdateExpense(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, expense))
}

func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.expenseService.DeleteExpense(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": id}))
}
