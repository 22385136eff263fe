package worker

import (
	"context"
	"encoding/json"

	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/provider"
	"github.com/storefront-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderAutoConfirm, c.handleOrderAutoConfirm)
}

func (c *Consumer) handleOrderAutoConfirm(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_auto_confirm_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderAutoConfirmPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_auto_confirm_unmarshal_failed", "error", err)
		return err
	}
	if c.DeliveryService == nil {
		logger.Warnw("worker_order_auto_confirm_skip_delivery_service_nil")
		return nil
	}
	confirmed, err := c.DeliveryService.AutoConfirmStaleOrders()
	if err != nil {
		logger.Warnw("worker_order_auto_confirm_failed", "error", err)
		return err
	}
	if confirmed > 0 {
		logger.Infow("worker_order_auto_confirm_done", "confirmed", confirmed, "requested_at", payload.RequestedAt)
	}
	return nil
}
