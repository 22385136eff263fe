package public

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CardCaptureRequest 卡支付捕获请求。捕获成功后立即下单。
type CardCaptureRequest struct {
	Address string `json:"address" binding:"required"`
}

// checkoutAmount 计算当前购物车应付金额（小计 + 运费）。
func (h *Handler) checkoutAmount(c *gin.Context, uid uint) (string, bool) {
	summary, err := h.CartService.GetCart(c.Request.Context(), uid)
	if err != nil {
		respondCartError(c, err)
		return "", false
	}
	if len(summary.Items) == 0 {
		respondError(c, response.CodeBadRequest, "cart is empty", nil)
		return "", false
	}
	shipping, err := models.NewMoneyFromString(h.Config.Order.ShippingFee)
	if err != nil {
		respondError(c, response.CodeInternal, "shipping fee misconfigured", err)
		return "", false
	}
	return summary.Subtotal.Add(shipping).String(), true
}

// RequestQRPayment 为当前购物车金额申请 NETS 二维码
func (h *Handler) RequestQRPayment(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	amount, ok := h.checkoutAmount(c, uid)
	if !ok {
		return
	}

	result, err := h.PaymentService.RequestQRPayment(c.Request.Context(), amount)
	if err != nil {
		respondPaymentError(c, err)
		return
	}

	response.Success(c, gin.H{
		"qr_code":           result.QRCode,
		"txn_retrieval_ref": result.TxnRetrievalRef,
		"amount":            amount,
	})
}

// StreamQRPaymentStatus 以 NDJSON 流推送 QR 支付轮询状态。
// 每次轮询先推网关原始载荷,终态时补一帧结果标记后关闭连接。
func (h *Handler) StreamQRPaymentStatus(c *gin.Context) {
	if _, ok := getUserID(c); !ok {
		return
	}

	ref := strings.TrimSpace(c.Param("ref"))
	if ref == "" {
		respondError(c, response.CodeBadRequest, "txn retrieval ref required", nil)
		return
	}

	c.Header("Content-Type", "application/x-ndjson")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	flusher, _ := c.Writer.(http.Flusher)
	writeFrame := func(v interface{}) bool {
		if err := json.NewEncoder(c.Writer).Encode(v); err != nil {
			return false
		}
		if flusher != nil {
			flusher.Flush()
		}
		return true
	}

	ctx := c.Request.Context()
	events := h.PaymentService.StreamQRStatus(ctx, ref)
	for event := range events {
		if len(event.Raw) > 0 {
			if !writeFrame(event.Raw) {
				return
			}
		}
		if !event.Terminal() {
			continue
		}
		switch {
		case event.Status == constants.QRPaymentStatusSuccess:
			writeFrame(gin.H{"success": true})
		case errors.Is(event.Err, service.ErrPaymentTimeout):
			writeFrame(gin.H{"timeout": true})
		case event.Err != nil:
			writeFrame(gin.H{"error": event.Err.Error()})
		default:
			writeFrame(gin.H{"fail": true})
		}
		shared.RequestLog(c).Infow("payment_qr_stream_closed",
			"txn_retrieval_ref", ref,
			"status", event.Status,
			"attempts", event.Attempt,
		)
		return
	}
}

// CreateCardPayment 为当前购物车金额创建卡支付网关订单
func (h *Handler) CreateCardPayment(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	amount, ok := h.checkoutAmount(c, uid)
	if !ok {
		return
	}

	referenceID := fmt.Sprintf("CHK%d-%d", uid, time.Now().Unix())
	result, err := h.PaymentService.CreateCardOrder(c.Request.Context(), referenceID, amount)
	if err != nil {
		respondPaymentError(c, err)
		return
	}

	response.Success(c, gin.H{
		"gateway_order_id": result.OrderID,
		"approval_url":     result.ApprovalURL,
		"status":           result.Status,
		"amount":           amount,
	})
}

// CaptureCardPayment 捕获卡支付。网关返回 COMPLETED 才会下单并清空购物车。
func (h *Handler) CaptureCardPayment(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	gatewayOrderID := strings.TrimSpace(c.Param("id"))
	if gatewayOrderID == "" {
		respondError(c, response.CodeBadRequest, "gateway order id required", nil)
		return
	}

	var req CardCaptureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	capture, err := h.PaymentService.CaptureCardOrder(c.Request.Context(), gatewayOrderID)
	if err != nil {
		respondPaymentError(c, err)
		return
	}

	order, err := h.OrderService.PlaceOrder(c.Request.Context(), service.PlaceOrderInput{
		UserID:        uid,
		Address:       req.Address,
		PaymentMethod: constants.PaymentMethodCard,
		ClientIP:      c.ClientIP(),
	})
	if err != nil {
		respondOrderCreateError(c, err)
		return
	}

	response.Success(c, gin.H{
		"order":      order,
		"capture_id": capture.CaptureID,
		"paid_at":    capture.PaidAt,
	})
}
