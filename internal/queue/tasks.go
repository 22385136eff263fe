package queue

import (
	"encoding/json"

	"github.com/storefront-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderAutoConfirm 自动确认收货巡检任务
	TaskOrderAutoConfirm = constants.TaskOrderAutoConfirm
)

// OrderAutoConfirmPayload 自动确认收货任务载荷。
// RequestedAt 为 Unix 秒时间戳，记录触发时刻。
type OrderAutoConfirmPayload struct {
	RequestedAt int64 `json:"requested_at"`
}

// NewOrderAutoConfirmTask 创建自动确认收货任务
func NewOrderAutoConfirmTask(payload OrderAutoConfirmPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderAutoConfirm, body), nil
}
