package service

import "errors"

// 业务错误定义,供 handler 层映射为响应码。
var (
	ErrValidation         = errors.New("request validation failed")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserDisabled       = errors.New("user is disabled")
	ErrWeakPassword       = errors.New("password does not meet policy")

	ErrProductNotFound     = errors.New("product not found")
	ErrProductNotAvailable = errors.New("product not available")
	ErrInvalidQuantity     = errors.New("quantity is invalid")
	ErrInsufficientStock   = errors.New("insufficient stock")

	ErrEmptyCart       = errors.New("cart is empty")
	ErrCartItemMissing = errors.New("cart item not found")

	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderCreateFailed = errors.New("order create failed")
	ErrStockExhausted    = errors.New("stock exhausted during checkout")
	ErrInvalidStatus     = errors.New("order status is invalid")
	ErrNotYetDelivered   = errors.New("order is not delivered yet")

	ErrRefundNotEligible     = errors.New("order is not eligible for refund")
	ErrConcernPending        = errors.New("a refund concern is already pending for this order")
	ErrConcernNotFound       = errors.New("refund concern not found")
	ErrConcernResolved       = errors.New("refund concern already resolved")
	ErrDescriptionTooShort   = errors.New("description is too short")
	ErrEvidenceRequired      = errors.New("evidence image is required")
	ErrRefundItemsRequired   = errors.New("refund items are required")
	ErrRefundAmountInvalid   = errors.New("refund amount is invalid")

	ErrGatewayError        = errors.New("payment gateway error")
	ErrPaymentNotCompleted = errors.New("payment is not completed")
	ErrPaymentTimeout      = errors.New("payment polling timed out")

	ErrUploadInvalid = errors.New("upload file is invalid")
)
