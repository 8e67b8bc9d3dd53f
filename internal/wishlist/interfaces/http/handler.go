package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/response"
	"github.com/wyfcoding/velure/internal/wishlist/application"
	"github.com/wyfcoding/velure/internal/wishlist/domain"
	"github.com/wyfcoding/velure/pkg/middleware"
)

// WishlistHandler 心愿单 HTTP 处理器
type WishlistHandler struct {
	svc *application.WishlistService
}

// NewWishlistHandler 创建 HTTP 处理器实例
func NewWishlistHandler(svc *application.WishlistService) *WishlistHandler {
	return &WishlistHandler{svc: svc}
}

// RegisterRoutes 注册路由
func (h *WishlistHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/wishlist", h.Get)
	api.POST("/wishlist", h.Add)
	api.DELETE("/wishlist", h.Remove)
}

type addRequest struct {
	ProductID uint   `json:"productId"`
	Market    string `json:"market"`
	Currency  string `json:"currency"`
}

func (h *WishlistHandler) Get(c *gin.Context) {
	items, err := h.svc.Fetch(c.Request.Context(), middleware.OwnerID(c.Request.Context()))
	if err != nil {
		writeError(c, "Failed to fetch wishlist", err)
		return
	}
	response.Success(c, gin.H{"items": items})
}

func (h *WishlistHandler) Add(c *gin.Context) {
	var req addRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	currency := req.Currency
	if currency == "" {
		currency = req.Market
	}
	items, err := h.svc.Add(c.Request.Context(), middleware.OwnerID(c.Request.Context()), req.ProductID, currency)
	if err != nil {
		writeError(c, "Failed to add to wishlist", err)
		return
	}
	response.Success(c, gin.H{"items": items})
}

func (h *WishlistHandler) Remove(c *gin.Context) {
	id, err := strconv.ParseUint(c.Query("productId"), 10, 64)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "Product ID is required", "")
		return
	}
	items, err := h.svc.Remove(c.Request.Context(), middleware.OwnerID(c.Request.Context()), uint(id))
	if err != nil {
		writeError(c, "Failed to remove from wishlist", err)
		return
	}
	response.Success(c, gin.H{"items": items})
}

func writeError(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		response.ErrorWithStatus(c, http.StatusUnauthorized, "Unauthorized", "")
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrAlreadyExists):
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
	case errors.Is(err, domain.ErrProductNotFound):
		response.ErrorWithStatus(c, http.StatusNotFound, "Product not found", "")
	default:
		logging.Error(c.Request.Context(), msg, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, msg, "")
	}
}
