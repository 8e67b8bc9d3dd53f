package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/response"
	"github.com/wyfcoding/velure/internal/catalog/application"
	"github.com/wyfcoding/velure/internal/catalog/domain"
)

// CatalogHandler 商品目录 HTTP 处理器
type CatalogHandler struct {
	app *application.CatalogApplicationService
}

// NewCatalogHandler 创建 HTTP 处理器实例
func NewCatalogHandler(app *application.CatalogApplicationService) *CatalogHandler {
	return &CatalogHandler{app: app}
}

// RegisterRoutes 注册路由，写操作需经过 admin 中间件
func (h *CatalogHandler) RegisterRoutes(api *gin.RouterGroup, admin gin.HandlerFunc) {
	products := api.Group("/products")
	{
		products.GET("", h.ListProducts)
		products.GET("/:id", h.GetProduct)
		products.POST("", admin, h.CreateProduct)
		products.PATCH("/:id", admin, h.UpdateProduct)
		products.DELETE("/:id", admin, h.DeleteProduct)
	}
}

type productRequest struct {
	Name           *string          `json:"name"`
	Description    *string          `json:"description"`
	ProductDetails *string          `json:"productDetails"`
	Category       *string          `json:"category"`
	Metal          *string          `json:"metal"`
	PriceINR       *decimal.Decimal `json:"priceINR"`
	PriceUSD       *decimal.Decimal `json:"priceUSD"`
	Stock          *int             `json:"stock"`
	Featured       *bool            `json:"featured"`
	Images         []string         `json:"images"`
	Image1         string           `json:"image1"`
	Image2         string           `json:"image2"`
	Image3         string           `json:"image3"`
	Image4         string           `json:"image4"`
}

func (r *productRequest) description() *string {
	if r.Description != nil {
		return r.Description
	}
	return r.ProductDetails
}

func (r *productRequest) images() []string {
	if len(r.Images) > 0 {
		return r.Images
	}
	return []string{r.Image1, r.Image2, r.Image3, r.Image4}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// ListProducts 商品列表
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	currency, err := domain.ParseCurrency(firstNonEmpty(c.Query("currency"), c.Query("market")))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	q := application.ListProductsQuery{
		Category:    c.Query("category"),
		Search:      c.Query("search"),
		Currency:    currency,
		InStockOnly: c.Query("inStockOnly") == "true",
		SortBy:      c.Query("sortBy"),
	}
	if q.MinPrice, err = parsePrice(c.Query("minPrice")); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid minPrice", "")
		return
	}
	if q.MaxPrice, err = parsePrice(c.Query("maxPrice")); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid maxPrice", "")
		return
	}
	if v := c.Query("page"); v != "" {
		if q.Page, err = strconv.Atoi(v); err != nil {
			response.ErrorWithStatus(c, http.StatusBadRequest, "invalid page", "")
			return
		}
	}
	if v := c.Query("pageSize"); v != "" {
		if q.PageSize, err = strconv.Atoi(v); err != nil {
			response.ErrorWithStatus(c, http.StatusBadRequest, "invalid pageSize", "")
			return
		}
	}

	page, err := h.app.ListProducts(c.Request.Context(), q)
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to fetch products", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, "Failed to fetch products", "")
		return
	}
	response.Success(c, page)
}

// GetProduct 商品详情
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	product, err := h.app.GetProduct(c.Request.Context(), id)
	if err != nil {
		writeError(c, "Failed to fetch product", err)
		return
	}
	response.Success(c, gin.H{"product": product})
}

// CreateProduct 创建商品
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	product, err := h.app.CreateProduct(c.Request.Context(), application.CreateProductCommand{
		Name:        deref(req.Name),
		Description: deref(req.description()),
		Category:    deref(req.Category),
		Metal:       deref(req.Metal),
		PriceINR:    deref(req.PriceINR),
		PriceUSD:    deref(req.PriceUSD),
		Images:      req.images(),
		Stock:       deref(req.Stock),
		Featured:    deref(req.Featured),
	})
	if err != nil {
		writeError(c, "Failed to create product", err)
		return
	}
	response.Success(c, gin.H{"message": "Product created successfully", "product": product})
}

// UpdateProduct 部分更新商品
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	product, err := h.app.UpdateProduct(c.Request.Context(), application.UpdateProductCommand{
		ID:          id,
		Name:        req.Name,
		Description: req.description(),
		Category:    req.Category,
		Metal:       req.Metal,
		PriceINR:    req.PriceINR,
		PriceUSD:    req.PriceUSD,
		Stock:       req.Stock,
		Images:      req.images(),
		Featured:    req.Featured,
	})
	if err != nil {
		writeError(c, "Failed to update product", err)
		return
	}
	response.Success(c, gin.H{"message": "Product updated successfully", "product": product})
}

// DeleteProduct 删除商品
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.app.DeleteProduct(c.Request.Context(), id); err != nil {
		writeError(c, "Failed to delete product", err)
		return
	}
	response.Success(c, gin.H{"message": "Product deleted successfully"})
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.ErrorWithStatus(c, http.StatusBadRequest, "Invalid product ID", "")
		return 0, false
	}
	return uint(id), true
}

func parsePrice(v string) (*decimal.Decimal, error) {
	if v == "" || strings.EqualFold(v, "Infinity") {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func writeError(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		response.ErrorWithStatus(c, http.StatusNotFound, "Product not found", "")
	case errors.Is(err, domain.ErrInvalidProduct):
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
	default:
		logging.Error(c.Request.Context(), msg, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, msg, "")
	}
}
