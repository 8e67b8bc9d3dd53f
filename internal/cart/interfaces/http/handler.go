package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/response"
	"github.com/wyfcoding/velure/internal/cart/application"
	"github.com/wyfcoding/velure/internal/cart/domain"
	"github.com/wyfcoding/velure/pkg/middleware"
)

// CartHandler 购物车 HTTP 处理器
type CartHandler struct {
	app *application.CartApplicationService
}

// NewCartHandler 创建 HTTP 处理器实例
func NewCartHandler(app *application.CartApplicationService) *CartHandler {
	return &CartHandler{app: app}
}

// RegisterRoutes 注册路由
func (h *CartHandler) RegisterRoutes(api *gin.RouterGroup) {
	cart := api.Group("/cart")
	{
		cart.GET("", h.GetCart)
		cart.POST("", h.AddItem)
		cart.PUT("", h.SetQuantity)
		cart.DELETE("", h.RemoveItem)
	}
}

type addItemRequest struct {
	ProductID uint   `json:"productId"`
	Quantity  *int   `json:"quantity"`
	Market    string `json:"market"`
	Currency  string `json:"currency"`
}

type setQuantityRequest struct {
	ProductID uint `json:"productId"`
	Quantity  int  `json:"quantity"`
}

// GetCart 获取当前用户购物车
func (h *CartHandler) GetCart(c *gin.Context) {
	cart, err := h.app.Fetch(c.Request.Context(), middleware.OwnerID(c.Request.Context()))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Cart fetched successfully", "cart": application.NewCartView(cart)})
}

// AddItem 加入购物车
func (h *CartHandler) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	currency := req.Currency
	if currency == "" {
		currency = req.Market
	}

	cart, err := h.app.AddItem(c.Request.Context(), application.AddItemRequest{
		OwnerID:   middleware.OwnerID(c.Request.Context()),
		ProductID: req.ProductID,
		Quantity:  application.QuantityOrDefault(req.Quantity),
		Currency:  currency,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Item added to cart", "cart": application.NewCartView(cart)})
}

// SetQuantity 修改数量
func (h *CartHandler) SetQuantity(c *gin.Context) {
	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	cart, err := h.app.SetQuantity(c.Request.Context(), application.SetQuantityRequest{
		OwnerID:   middleware.OwnerID(c.Request.Context()),
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Cart updated", "cart": application.NewCartView(cart)})
}

// RemoveItem 移除商品；deleteAll=true 时由管理员清空全部购物车
func (h *CartHandler) RemoveItem(c *gin.Context) {
	if c.Query("deleteAll") == "true" {
		h.purgeAll(c)
		return
	}

	var productID uint
	if v := c.Query("productId"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			response.ErrorWithStatus(c, http.StatusBadRequest, "Invalid product ID", "")
			return
		}
		productID = uint(id)
	}

	cart, err := h.app.RemoveItem(c.Request.Context(), application.RemoveItemRequest{
		OwnerID:   middleware.OwnerID(c.Request.Context()),
		ProductID: productID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Item removed from cart", "cart": application.NewCartView(cart)})
}

func (h *CartHandler) purgeAll(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c.Request.Context())
	if !ok {
		response.ErrorWithStatus(c, http.StatusUnauthorized, "not logged in", "")
		return
	}
	if !identity.IsAdmin() {
		response.ErrorWithStatus(c, http.StatusForbidden, "admin access required", "")
		return
	}

	n, err := h.app.PurgeAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "All carts deleted successfully", "deletedCount": n})
}

// httpStatus 错误类别到 HTTP 状态码
func httpStatus(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindUnauthenticated:
		return http.StatusUnauthorized
	case domain.KindInvalidArgument, domain.KindInsufficientStock:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	kind := domain.Kind(err)
	status := httpStatus(kind)
	if status == http.StatusInternalServerError {
		logging.Error(c.Request.Context(), "cart request failed", "error", err)
		response.ErrorWithStatus(c, status, "Internal server error", "")
		return
	}
	if kind == domain.KindUnavailable {
		logging.Warn(c.Request.Context(), "cart temporarily unavailable", "error", err)
	}
	response.ErrorWithStatus(c, status, err.Error(), "")
}
