package admin

import (
	"errors"

	"github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminOrderListQuery 管理端订单列表查询参数
type AdminOrderListQuery struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Status   string `form:"status"`
	OrderNo  string `form:"order_no"`
	UserID   uint   `form:"user_id"`
}

// UpdateOrderStatusRequest 订单状态更新请求
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AdminListOrders 管理端订单列表
func (h *Handler) AdminListOrders(c *gin.Context) {
	var query AdminOrderListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	page, pageSize := shared.NormalizePagination(query.Page, query.PageSize)

	orders, total, err := h.OrderService.ListAdmin(repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   query.Status,
		OrderNo:  query.OrderNo,
		UserID:   query.UserID,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "fetch orders failed", err)
		return
	}

	response.SuccessWithPage(c, gin.H{"items": orders}, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// AdminGetOrder 管理端订单详情
func (h *Handler) AdminGetOrder(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	order, err := h.OrderService.GetAdmin(id)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "order not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "fetch order failed", err)
		return
	}

	response.Success(c, order)
}

// AdminUpdateOrderStatus 推进订单配送状态（只允许前进）
func (h *Handler) AdminUpdateOrderStatus(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	order, err := h.DeliveryService.UpdateStatus(id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "order not found", nil)
		case errors.Is(err, service.ErrInvalidStatus):
			respondError(c, response.CodeBadRequest, "status transition invalid", nil)
		default:
			respondError(c, response.CodeInternal, "update order status failed", err)
		}
		return
	}

	response.Success(c, order)
}
