package service

import (
	"strings"
	"time"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
)

// DeliveryService 订单配送与货款放行服务
type DeliveryService struct {
	cfg        *config.Config
	orderRepo  repository.OrderRepository
	refundRepo repository.RefundRepository
}

// NewDeliveryService 创建配送服务
func NewDeliveryService(cfg *config.Config, orderRepo repository.OrderRepository, refundRepo repository.RefundRepository) *DeliveryService {
	return &DeliveryService{
		cfg:        cfg,
		orderRepo:  orderRepo,
		refundRepo: refundRepo,
	}
}

// statusRank 配送状态的先后次序,只允许向前流转。
// refunded 是最高位的终态:任何状态都可以进入,进入后不可再流转。
var statusRank = map[string]int{
	constants.OrderStatusPending:        0,
	constants.OrderStatusPacked:         1,
	constants.OrderStatusOutForDelivery: 2,
	constants.OrderStatusDelivered:      3,
	constants.OrderStatusRefunded:       4,
}

// UpdateStatus 管理端更新配送状态。只允许向前流转,回退视为非法。
func (s *DeliveryService) UpdateStatus(orderID uint, status string) (*models.Order, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	targetRank, ok := statusRank[status]
	if !ok {
		return nil, ErrInvalidStatus
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	currentRank, ok := statusRank[order.Status]
	if !ok || targetRank < currentRank {
		return nil, ErrInvalidStatus
	}
	if targetRank == currentRank {
		return order, nil
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if err := s.orderRepo.UpdateStatus(order.ID, status, updates); err != nil {
		return nil, err
	}
	logger.Infow("order_status_updated",
		"order_no", order.OrderNo,
		"from", order.Status,
		"to", status,
	)
	order.Status = status
	return order, nil
}

// ConfirmDelivery 买家确认收货。已确认时为幂等空操作。
func (s *DeliveryService) ConfirmDelivery(orderID, userID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.IsDelivered {
		return order, nil
	}
	if order.Status != constants.OrderStatusOutForDelivery && order.Status != constants.OrderStatusDelivered {
		return nil, ErrInvalidStatus
	}

	now := time.Now()
	updates := map[string]interface{}{
		"is_delivered":          true,
		"delivery_confirmed_at": now,
		"updated_at":            now,
	}
	if err := s.orderRepo.UpdateStatus(order.ID, constants.OrderStatusDelivered, updates); err != nil {
		return nil, err
	}
	logger.Infow("order_delivery_confirmed", "order_no", order.OrderNo, "user_id", userID)
	order.Status = constants.OrderStatusDelivered
	order.IsDelivered = true
	order.DeliveryConfirmedAt = &now
	return order, nil
}

// ReleasePayment 管理端放行货款,要求买家已确认收货。
func (s *DeliveryService) ReleasePayment(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !order.IsDelivered {
		return nil, ErrNotYetDelivered
	}
	if order.IsPaymentReleased {
		return order, nil
	}

	now := time.Now()
	updates := map[string]interface{}{
		"is_payment_released": true,
		"payment_released_at": now,
		"updated_at":          now,
	}
	if err := s.orderRepo.UpdateStatus(order.ID, order.Status, updates); err != nil {
		return nil, err
	}
	logger.Infow("order_payment_released", "order_no", order.OrderNo)
	order.IsPaymentReleased = true
	order.PaymentReleasedAt = &now
	return order, nil
}

// AutoConfirmStaleOrders 自动确认派送中超期且无未决申诉的订单,返回确认数量。
func (s *DeliveryService) AutoConfirmStaleOrders() (int64, error) {
	days := s.cfg.Order.AutoConfirmAfterDays
	if days <= 0 {
		days = 14
	}
	now := time.Now()
	cutoff := now.AddDate(0, 0, -days)

	confirmed, err := s.orderRepo.AutoConfirmStale(cutoff, now)
	if err != nil {
		return 0, err
	}
	if confirmed > 0 {
		logger.Infow("order_auto_confirm_done", "confirmed", confirmed, "cutoff", cutoff)
	}
	return confirmed, nil
}
