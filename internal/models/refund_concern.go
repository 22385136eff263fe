package models

import (
	"time"

	"gorm.io/gorm"
)

// RefundConcern 退款申诉表
type RefundConcern struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                 // 主键
	OrderID       uint           `gorm:"index;not null" json:"order_id"`                       // 订单ID
	UserID        uint           `gorm:"index;not null" json:"user_id"`                        // 申诉用户ID
	Reason        string         `gorm:"type:varchar(64);not null" json:"reason"`              // 申诉原因分类
	Description   string         `gorm:"type:text;not null" json:"description"`                // 详细描述（至少 10 个字符）
	EvidenceImage string         `gorm:"type:varchar(255);not null" json:"evidence_image"`     // 凭证图片路径（必填）
	RefundType    string         `gorm:"type:varchar(20);not null" json:"refund_type"`         // 退款类型（full/partial）
	ItemIDs       string         `gorm:"type:varchar(255)" json:"item_ids"`                    // 部分退款涉及的订单项ID（逗号分隔）
	Amount        Money          `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`  // 退款金额
	Status        string         `gorm:"type:varchar(20);index;not null" json:"status"`        // 状态（pending/approved/rejected）
	ResolvedAt    *time.Time     `json:"resolved_at"`                                          // 处理时间
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                              // 创建时间
	UpdatedAt     time.Time      `json:"updated_at"`                                           // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                       // 软删除时间

	Order *Order `gorm:"foreignKey:OrderID" json:"order,omitempty"` // 关联订单
	User  *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`   // 申诉用户
}

// TableName 指定表名
func (RefundConcern) TableName() string {
	return "refund_concerns"
}
