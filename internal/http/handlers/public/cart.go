package public

import (
	"strconv"

	"github.com/storefront-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// CartItemRequest 购物车项请求
type CartItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// CartItemUpdateRequest 覆盖数量请求,数量小于等于 0 等价于移除
type CartItemUpdateRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity"`
}

// GetCart 获取购物车
func (h *Handler) GetCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	summary, err := h.CartService.GetCart(c.Request.Context(), uid)
	if err != nil {
		respondCartError(c, err)
		return
	}

	response.Success(c, summary)
}

// AddCartItem 加入购物车（已有条目累加数量）
func (h *Handler) AddCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	if err := h.CartService.AddItem(c.Request.Context(), uid, req.ProductID, req.Quantity); err != nil {
		respondCartError(c, err)
		return
	}

	response.Success(c, gin.H{"added": true})
}

// UpdateCartItem 覆盖购物车项数量
func (h *Handler) UpdateCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req CartItemUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	if err := h.CartService.UpdateQuantity(c.Request.Context(), uid, req.ProductID, req.Quantity); err != nil {
		respondCartError(c, err)
		return
	}

	response.Success(c, gin.H{"updated": true})
}

// RemoveCartItem 移除购物车项
func (h *Handler) RemoveCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 64)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "product id invalid", nil)
		return
	}

	if err := h.CartService.RemoveItem(c.Request.Context(), uid, uint(productID)); err != nil {
		respondCartError(c, err)
		return
	}

	response.Success(c, gin.H{"removed": true})
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	if err := h.CartService.Clear(c.Request.Context(), uid); err != nil {
		respondCartError(c, err)
		return
	}

	response.Success(c, gin.H{"cleared": true})
}
