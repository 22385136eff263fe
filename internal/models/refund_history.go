package models

import "time"

// RefundHistory 退款流水表（只追加，不更新）
type RefundHistory struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                // 主键
	ConcernID uint      `gorm:"index;not null" json:"concern_id"`                    // 申诉ID
	OrderID   uint      `gorm:"index;not null" json:"order_id"`                      // 订单ID
	UserID    uint      `gorm:"index;not null" json:"user_id"`                       // 用户ID
	Amount    Money     `gorm:"type:decimal(20,2);not null;default:0" json:"amount"` // 退款金额
	Status    string    `gorm:"type:varchar(20);not null" json:"status"`             // 流水状态（processed）
	CreatedAt time.Time `gorm:"index" json:"created_at"`                             // 创建时间
}

// TableName 指定表名
func (RefundHistory) TableName() string {
	return "refund_histories"
}
