package public

import (
	"errors"

	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var cartErrorRules = []mappedHandlerError{
	{target: service.ErrProductNotFound, code: response.CodeNotFound, msg: "product not found"},
	{target: service.ErrProductNotAvailable, code: response.CodeBadRequest, msg: "product not available"},
	{target: service.ErrInvalidQuantity, code: response.CodeBadRequest, msg: "quantity invalid"},
	{target: service.ErrInsufficientStock, code: response.CodeBadRequest, msg: "insufficient stock"},
	{target: service.ErrCartItemMissing, code: response.CodeNotFound, msg: "cart item not found"},
}

var orderCreateErrorRules = []mappedHandlerError{
	{target: service.ErrValidation, code: response.CodeBadRequest, msg: "order request invalid"},
	{target: service.ErrEmptyCart, code: response.CodeBadRequest, msg: "cart is empty"},
	{target: service.ErrProductNotAvailable, code: response.CodeBadRequest, msg: "product not available"},
	{target: service.ErrStockExhausted, code: response.CodeBadRequest, msg: "insufficient stock"},
}

var refundConcernErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, msg: "order not found"},
	{target: service.ErrConcernPending, code: response.CodeBadRequest, msg: "a refund concern is already pending for this order"},
	{target: service.ErrRefundNotEligible, code: response.CodeBadRequest, msg: "order is not eligible for a refund concern"},
	{target: service.ErrDescriptionTooShort, code: response.CodeBadRequest, msg: "description is too short"},
	{target: service.ErrEvidenceRequired, code: response.CodeBadRequest, msg: "evidence image is required"},
	{target: service.ErrRefundItemsRequired, code: response.CodeBadRequest, msg: "partial refund requires selected items"},
	{target: service.ErrRefundAmountInvalid, code: response.CodeBadRequest, msg: "refund amount invalid"},
	{target: service.ErrValidation, code: response.CodeBadRequest, msg: "refund concern request invalid"},
}

var paymentErrorRules = []mappedHandlerError{
	{target: service.ErrValidation, code: response.CodeBadRequest, msg: "payment request invalid"},
	{target: service.ErrGatewayError, code: response.CodeBadRequest, msg: "payment gateway request failed"},
	{target: service.ErrPaymentNotCompleted, code: response.CodeBadRequest, msg: "payment was not completed"},
}

func respondCartError(c *gin.Context, err error) {
	respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "cart operation failed")
}

func respondOrderCreateError(c *gin.Context, err error) {
	respondWithMappedError(c, err, orderCreateErrorRules, response.CodeInternal, "order create failed")
}

func respondRefundConcernError(c *gin.Context, err error) {
	respondWithMappedError(c, err, refundConcernErrorRules, response.CodeInternal, "refund concern failed")
}

func respondPaymentError(c *gin.Context, err error) {
	respondWithMappedError(c, err, paymentErrorRules, response.CodeInternal, "payment failed")
}
