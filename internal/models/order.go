package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表
type Order struct {
	ID                  uint           `gorm:"primarykey" json:"id"`                                       // 主键
	OrderNo             string         `gorm:"uniqueIndex;not null" json:"order_no"`                       // 订单编号
	UserID              uint           `gorm:"index;not null" json:"user_id"`                              // 用户ID
	Address             string         `gorm:"type:varchar(255);not null" json:"address"`                  // 收货地址快照
	PaymentMethod       string         `gorm:"type:varchar(32);not null;index" json:"payment_method"`      // 支付方式
	Subtotal            Money          `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`      // 商品小计
	ShippingFee         Money          `gorm:"type:decimal(20,2);not null;default:0" json:"shipping_fee"`  // 运费
	TotalAmount         Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`  // 实付金额
	Status              string         `gorm:"type:varchar(32);index;not null" json:"status"`              // 订单状态
	IsDelivered         bool           `gorm:"not null;default:false;index" json:"is_delivered"`           // 买家是否已确认收货
	DeliveryConfirmedAt *time.Time     `json:"delivery_confirmed_at"`                                      // 确认收货时间
	IsPaymentReleased   bool           `gorm:"not null;default:false" json:"is_payment_released"`          // 货款是否已放行
	PaymentReleasedAt   *time.Time     `json:"payment_released_at"`                                        // 货款放行时间
	ClientIP            string         `gorm:"type:varchar(64)" json:"client_ip,omitempty"`                // 下单客户端IP
	CreatedAt           time.Time      `gorm:"index" json:"created_at"`                                    // 创建时间
	UpdatedAt           time.Time      `gorm:"index" json:"updated_at"`                                    // 更新时间
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`                                             // 软删除时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
	User  *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`   // 下单用户
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
