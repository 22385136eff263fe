package admin

import (
	"errors"

	"github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// RefundConcernListQuery 申诉列表查询参数
type RefundConcernListQuery struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Status   string `form:"status"`
	OrderID  uint   `form:"order_id"`
	UserID   uint   `form:"user_id"`
}

// AdminListRefundConcerns 管理端退款申诉列表
func (h *Handler) AdminListRefundConcerns(c *gin.Context) {
	var query RefundConcernListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	page, pageSize := shared.NormalizePagination(query.Page, query.PageSize)

	concerns, total, err := h.RefundService.ListConcernsAdmin(repository.RefundConcernListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   query.Status,
		OrderID:  query.OrderID,
		UserID:   query.UserID,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "fetch refund concerns failed", err)
		return
	}

	response.SuccessWithPage(c, gin.H{"items": concerns}, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// ApproveRefundRequest 批准退款请求,字段可选,缺省沿用申诉原值
type ApproveRefundRequest struct {
	RefundType string `json:"refund_type"`
	Amount     string `json:"amount"`
	ItemIDs    []uint `json:"item_ids"`
}

// AdminApproveRefund 批准退款申诉,可调整退款类型/金额/订单项
func (h *Handler) AdminApproveRefund(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req ApproveRefundRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, response.CodeBadRequest, "bad request", err)
			return
		}
	}

	concern, err := h.RefundService.ApproveRefund(id, service.ApproveRefundInput{
		RefundType: req.RefundType,
		Amount:     req.Amount,
		ItemIDs:    req.ItemIDs,
	})
	if err != nil {
		respondRefundResolveError(c, err)
		return
	}

	response.Success(c, concern)
}

// AdminRejectRefund 驳回退款申诉
func (h *Handler) AdminRejectRefund(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	concern, err := h.RefundService.RejectRefund(id)
	if err != nil {
		respondRefundResolveError(c, err)
		return
	}

	response.Success(c, concern)
}

func respondRefundResolveError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrConcernNotFound):
		respondError(c, response.CodeNotFound, "refund concern not found", nil)
	case errors.Is(err, service.ErrConcernResolved):
		respondError(c, response.CodeBadRequest, "refund concern already resolved", nil)
	case errors.Is(err, service.ErrRefundAmountInvalid):
		respondError(c, response.CodeBadRequest, "refund amount invalid", nil)
	case errors.Is(err, service.ErrRefundItemsRequired):
		respondError(c, response.CodeBadRequest, "refund items required", nil)
	case errors.Is(err, service.ErrValidation):
		respondError(c, response.CodeBadRequest, "refund type invalid", nil)
	default:
		respondError(c, response.CodeInternal, "resolve refund concern failed", err)
	}
}
