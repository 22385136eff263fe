package constants

// 订单状态常量
const (
	OrderStatusPending        = "pending"
	OrderStatusPacked         = "packed"
	OrderStatusOutForDelivery = "out_for_delivery"
	OrderStatusDelivered      = "delivered"
	OrderStatusRefunded       = "refunded"
)

// OrderStatuses 合法订单状态集合（流转校验用）
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusPacked,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
	OrderStatusRefunded,
}

// 支付方式常量
const (
	PaymentMethodNETSQR = "nets_qr"
	PaymentMethodCard   = "card"
)

// PaymentMethods 合法支付方式集合
var PaymentMethods = []string{PaymentMethodNETSQR, PaymentMethodCard}

// 退款类型常量
const (
	RefundTypeFull    = "full"
	RefundTypePartial = "partial"
)

// 退款申诉状态常量
const (
	RefundConcernStatusPending  = "pending"
	RefundConcernStatusApproved = "approved"
	RefundConcernStatusRejected = "rejected"
)

// 退款流水状态常量
const (
	RefundHistoryStatusProcessed = "processed"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 用户角色常量
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// QR 支付轮询状态常量
const (
	QRPaymentStatusPending = "pending"
	QRPaymentStatusSuccess = "success"
	QRPaymentStatusFailed  = "failed"
)

// 上传场景常量
const (
	UploadSceneProduct  = "product"
	UploadSceneEvidence = "evidence"
)

// 队列常量
const (
	QueueDefault         = "default"
	TaskOrderAutoConfirm = "order:auto_confirm"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "sf"
)

// 交易报表预设区间常量
const (
	TxnRangeToday    = "today"
	TxnRangeWeek     = "week"
	TxnRangeMonth    = "month"
	TxnRangeYear     = "year"
	TxnRangeLastYear = "lastYear"
)
