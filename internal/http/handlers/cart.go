package handlers

import (
	"github.com/mercato-next/internal/http/response"
	"github.com/mercato-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CartItemAddRequest 添加购物车项请求
type CartItemAddRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int    `json:"quantity" binding:"required,gte=1,lte=100"`
}

// CartBulkAddRequest 批量添加请求，单次最多 50 项
type CartBulkAddRequest struct {
	Items []CartItemAddRequest `json:"items" binding:"required,min=1,max=50,dive"`
}

// CartItemUpdateRequest 更新购物车项请求（绝对数量）
type CartItemUpdateRequest struct {
	Quantity int `json:"quantity" binding:"required,gte=1,lte=100"`
}

// CheckoutPrepareRequest 结算准备请求
type CheckoutPrepareRequest struct {
	ShippingAddress string `json:"shipping_address" binding:"required,min=10,max=500"`
	BillingAddress  string `json:"billing_address" binding:"omitempty,max=500"`
	Notes           string `json:"notes" binding:"omitempty,max=1000"`
}

// GetCart 获取当前用户购物车（不存在则创建空车）
func (h *Handler) GetCart(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	cart, err := h.CartService.GetCart(c.Request.Context(), userID)
	if err != nil {
		respondCartError(c, err, "error.cart_fetch_failed")
		return
	}
	response.Success(c, cart)
}

// GetCartSummary 获取购物车摘要
func (h *Handler) GetCartSummary(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	summary, err := h.CartService.GetSummary(c.Request.Context(), userID)
	if err != nil {
		respondCartError(c, err, "error.cart_fetch_failed")
		return
	}
	response.Success(c, summary)
}

// AddCartItem 添加商品到购物车
func (h *Handler) AddCartItem(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req CartItemAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "error.bad_request")
		return
	}
	cart, err := h.CartService.AddItem(c.Request.Context(), userID, service.AddItemInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		respondCartError(c, err, "error.cart_update_failed")
		return
	}
	response.Created(c, cart)
}

// AddCartItemsBulk 批量添加商品，逐项独立成败
func (h *Handler) AddCartItemsBulk(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req CartBulkAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "error.bad_request")
		return
	}
	items := make([]service.AddItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.AddItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	result, err := h.CartService.AddItemsBulk(c.Request.Context(), userID, items)
	if err != nil {
		respondCartError(c, err, "error.cart_update_failed")
		return
	}
	cart, err := h.CartService.GetCart(c.Request.Context(), userID)
	if err != nil {
		respondCartError(c, err, "error.cart_fetch_failed")
		return
	}
	response.Success(c, gin.H{
		"success": result.Success,
		"failed":  result.Failed,
		"errors":  result.Errors,
		"cart":    cart,
	})
}

// UpdateCartItem 更新购物车项数量
func (h *Handler) UpdateCartItem(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	productID := c.Param("product_id")
	var req CartItemUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "error.bad_request")
		return
	}
	cart, err := h.CartService.UpdateItem(c.Request.Context(), userID, productID, req.Quantity)
	if err != nil {
		respondCartError(c, err, "error.cart_update_failed")
		return
	}
	response.Success(c, cart)
}

// DeleteCartItem 删除购物车项
func (h *Handler) DeleteCartItem(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	cart, err := h.CartService.RemoveItem(c.Request.Context(), userID, c.Param("product_id"))
	if err != nil {
		respondCartError(c, err, "error.cart_update_failed")
		return
	}
	response.Success(c, cart)
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	if err := h.CartService.ClearCart(c.Request.Context(), userID); err != nil {
		respondCartError(c, err, "error.cart_update_failed")
		return
	}
	response.Success(c, gin.H{"message": "cart cleared"})
}

// PrepareCheckout 结算准备：校验地址与全车可用性，只读
func (h *Handler) PrepareCheckout(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req CheckoutPrepareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "error.bad_request")
		return
	}
	detail, err := h.CartService.PrepareCheckout(c.Request.Context(), userID, service.CheckoutInput{
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		Notes:           req.Notes,
	})
	if err != nil {
		respondCartError(c, err, "error.checkout_prepare_failed")
		return
	}
	response.Success(c, detail)
}

// SyncCartPrices 同步购物车快照价到目录现价
func (h *Handler) SyncCartPrices(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	cart, err := h.CartService.SyncPrices(c.Request.Context(), userID)
	if err != nil {
		respondCartError(c, err, "error.cart_update_failed")
		return
	}
	response.Success(c, cart)
}
