package handler

import (
	"encoding/csv"
	"net/http"

	"delipos/internal/service"
	"delipos/pkg/pagination"
	"delipos/pkg/response"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	products := router.Group("/api/products")
	{
		products.GET("", h.ListProducts)
		products.POST("", h.CreateProduct)
		products.GET("/search", h.SearchByPrefix)
		products.POST("/import", h.ImportProducts)
		products.GET("/:id", h.GetProduct)
		products.PUT("/:id", h.UpdateProduct)
		products.DELETE("/:id", h.DeleteProduct)
	}
}

func (h *CatalogHandler) ListProducts(c *gin.Context) {
	p := pagination.Parse(c)
	products, total, err := h.catalogService.ListProducts(c.Request.Context(), p.Page, p.Limit, c.Query("search"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"items": products, "total": total}))
}

func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request payload: "+err.Error())
		return
	}
	product, err := h.catalogService.CreateProduct(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, product))
}

func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}

func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req service.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request payload: "+err.Error())
		return
	}
	product, err := h.catalogService.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}

func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalogService.DeleteProduct(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": id}))
}

func (h *CatalogHandler) SearchByPrefix(c *gin.Context) {
	products, err := h.catalogService.SearchByPrefix(c.Request.Context(), c.Query("prefix"), pagination.Parse(c).Limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, products))
}

// ImportProducts accepts a CSV body with a {name, price, stock} header and
// reports the outcome of every row.
func (h *CatalogHandler) ImportProducts(c *gin.Context) {
	reader := csv.NewReader(c.Request.Body)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		badRequest(c, "invalid CSV: "+err.Error())
		return
	}
	outcomes, err := h.catalogService.ImportRows(c.Request.Context(), rows)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, outcomes))
}
