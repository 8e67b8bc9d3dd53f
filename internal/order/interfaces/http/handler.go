package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/response"
	"github.com/wyfcoding/velure/internal/order/application"
	"github.com/wyfcoding/velure/internal/order/domain"
	"github.com/wyfcoding/velure/pkg/middleware"
)

// OrderHandler 订单 HTTP 处理器
type OrderHandler struct {
	app *application.OrderApplicationService
}

// NewOrderHandler 创建 HTTP 处理器实例
func NewOrderHandler(app *application.OrderApplicationService) *OrderHandler {
	return &OrderHandler{app: app}
}

// RegisterRoutes 注册路由，管理接口需经过 admin 中间件
func (h *OrderHandler) RegisterRoutes(api *gin.RouterGroup, admin gin.HandlerFunc) {
	api.POST("/checkout", h.Checkout)
	orders := api.Group("/orders")
	{
		orders.GET("/mine", h.ListMyOrders)
		orders.GET("", admin, h.ListOrders)
		orders.PUT("/:id", admin, h.UpdateStatus)
		orders.DELETE("", admin, h.PurgeAll)
	}
}

type checkoutRequest struct {
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// Checkout 下单
func (h *OrderHandler) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	order, err := h.app.Checkout(c.Request.Context(), application.CheckoutCommand{
		OwnerID:         middleware.OwnerID(c.Request.Context()),
		ShippingAddress: req.ShippingAddress,
	})
	if err != nil {
		writeError(c, "Failed to place order", err)
		return
	}
	response.Success(c, gin.H{"message": "Order placed successfully", "order": order})
}

// ListMyOrders 当前用户订单
func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	orders, err := h.app.ListMyOrders(c.Request.Context(), middleware.OwnerID(c.Request.Context()))
	if err != nil {
		writeError(c, "Failed to fetch orders", err)
		return
	}
	response.Success(c, gin.H{"orders": orders})
}

// ListOrders 管理员订单列表
func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.app.ListOrders(c.Request.Context(), c.Query("status"))
	if err != nil {
		writeError(c, "Failed to fetch orders", err)
		return
	}
	response.Success(c, gin.H{"orders": orders})
}

// UpdateStatus 修改订单状态
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.ErrorWithStatus(c, http.StatusBadRequest, "Invalid order ID", "")
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	order, err := h.app.UpdateStatus(c.Request.Context(), uint(id), req.Status)
	if err != nil {
		writeError(c, "Failed to update order", err)
		return
	}
	response.Success(c, gin.H{"message": "Order status updated successfully", "order": order})
}

// PurgeAll 删除全部订单
func (h *OrderHandler) PurgeAll(c *gin.Context) {
	n, err := h.app.PurgeAll(c.Request.Context())
	if err != nil {
		writeError(c, "Failed to delete orders", err)
		return
	}
	response.Success(c, gin.H{
		"message":      fmt.Sprintf("Successfully deleted %d orders", n),
		"deletedCount": n,
	})
}

func writeError(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		response.ErrorWithStatus(c, http.StatusUnauthorized, "not logged in", "")
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrInsufficientStock):
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
	case errors.Is(err, domain.ErrOrderNotFound):
		response.ErrorWithStatus(c, http.StatusNotFound, "Order not found", "")
	case errors.Is(err, domain.ErrConflict):
		response.ErrorWithStatus(c, http.StatusConflict, err.Error(), "")
	case errors.Is(err, domain.ErrUnavailable):
		logging.Warn(c.Request.Context(), msg, "error", err)
		response.ErrorWithStatus(c, http.StatusServiceUnavailable, "Service temporarily unavailable, please retry", "")
	default:
		logging.Error(c.Request.Context(), msg, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, msg, "")
	}
}
