package public

import (
	"errors"
	"strconv"
	"strings"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// PlaceOrderRequest 下单请求
type PlaceOrderRequest struct {
	Address       string `json:"address" binding:"required"`
	PaymentMethod string `json:"payment_method" binding:"required"`
}

// OrderListQuery 订单列表查询参数
type OrderListQuery struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Status   string `form:"status"`
}

func orderIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "order id invalid", nil)
		return 0, false
	}
	return uint(id), true
}

// PlaceOrder 从购物车下单
func (h *Handler) PlaceOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	order, err := h.OrderService.PlaceOrder(c.Request.Context(), service.PlaceOrderInput{
		UserID:        uid,
		Address:       req.Address,
		PaymentMethod: req.PaymentMethod,
		ClientIP:      c.ClientIP(),
	})
	if err != nil {
		respondOrderCreateError(c, err)
		return
	}

	response.Success(c, order)
}

// ListMyOrders 当前用户订单列表
func (h *Handler) ListMyOrders(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var query OrderListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	page, pageSize := shared.NormalizePagination(query.Page, query.PageSize)

	orders, total, err := h.OrderService.ListByUser(uid, repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   query.Status,
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

// GetMyOrder 当前用户订单详情
func (h *Handler) GetMyOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	order, err := h.OrderService.GetByIDForUser(orderID, uid)
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

// ConfirmDelivery 买家确认收货
func (h *Handler) ConfirmDelivery(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	order, err := h.DeliveryService.ConfirmDelivery(orderID, uid)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "order not found", nil)
		case errors.Is(err, service.ErrInvalidStatus):
			respondError(c, response.CodeBadRequest, "order is not out for delivery yet", nil)
		default:
			respondError(c, response.CodeInternal, "confirm delivery failed", err)
		}
		return
	}

	response.Success(c, order)
}

// ReleasePayment 买家放行货款（需先确认收货）
func (h *Handler) ReleasePayment(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	// 归属校验后再放行
	if _, err := h.OrderService.GetByIDForUser(orderID, uid); err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "order not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "fetch order failed", err)
		return
	}

	order, err := h.DeliveryService.ReleasePayment(orderID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "order not found", nil)
		case errors.Is(err, service.ErrNotYetDelivered):
			respondError(c, response.CodeBadRequest, "delivery must be confirmed before releasing payment", nil)
		default:
			respondError(c, response.CodeInternal, "release payment failed", err)
		}
		return
	}

	response.Success(c, order)
}

// GetRefundEligibility 查询订单是否可发起退款申诉
func (h *Handler) GetRefundEligibility(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	eligible, err := h.RefundService.CanRaiseConcern(orderID, uid)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "order not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "check refund eligibility failed", err)
		return
	}

	response.Success(c, gin.H{"eligible": eligible})
}

// RaiseRefundConcern 发起退款申诉（multipart，含证据图片）
func (h *Handler) RaiseRefundConcern(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	evidence, err := c.FormFile("evidence")
	if err != nil {
		respondError(c, response.CodeBadRequest, "evidence image is required", nil)
		return
	}
	evidencePath, err := h.UploadService.SaveFile(evidence, constants.UploadSceneEvidence)
	if err != nil {
		if errors.Is(err, service.ErrUploadInvalid) {
			respondError(c, response.CodeBadRequest, "evidence image invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "save evidence failed", err)
		return
	}

	itemIDs, err := parseItemIDs(c.PostForm("item_ids"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "item ids invalid", nil)
		return
	}

	concern, err := h.RefundService.RaiseConcern(service.RaiseConcernInput{
		OrderID:       orderID,
		UserID:        uid,
		Reason:        c.PostForm("reason"),
		Description:   c.PostForm("description"),
		EvidenceImage: evidencePath,
		RefundType:    c.PostForm("refund_type"),
		ItemIDs:       itemIDs,
	})
	if err != nil {
		respondRefundConcernError(c, err)
		return
	}

	response.Success(c, concern)
}

// GetRefundConcern 查询订单最近一次申诉及退款流水
func (h *Handler) GetRefundConcern(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	concern, history, err := h.RefundService.GetConcernForOrder(orderID, uid)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "order not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "fetch refund concern failed", err)
		return
	}

	response.Success(c, gin.H{
		"concern": concern,
		"history": history,
	})
}

func parseItemIDs(raw string) ([]uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]uint, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil || id == 0 {
			return nil, errors.New("invalid item id: " + part)
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}
