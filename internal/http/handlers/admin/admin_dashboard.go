package admin

import (
	"errors"

	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetDashboardOverview 仪表盘总览
func (h *Handler) GetDashboardOverview(c *gin.Context) {
	overview, err := h.DashboardService.GetOverview()
	if err != nil {
		respondError(c, response.CodeInternal, "fetch dashboard overview failed", err)
		return
	}

	response.Success(c, overview)
}

// GetDashboardTransactions 区间交易汇总(预设区间或 start/end 自定义日期)
func (h *Handler) GetDashboardTransactions(c *gin.Context) {
	var summary *service.TransactionSummary
	var err error
	if start := c.Query("start"); start != "" || c.Query("end") != "" {
		summary, err = h.DashboardService.GetTransactionsBetween(start, c.Query("end"))
	} else {
		summary, err = h.DashboardService.GetTransactions(c.Query("range"))
	}
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			respondError(c, response.CodeBadRequest, "range invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "fetch dashboard transactions failed", err)
		return
	}

	response.Success(c, summary)
}
