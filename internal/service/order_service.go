package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"gorm.io/gorm"
)

// OrderService 订单服务
type OrderService struct {
	cfg         *config.Config
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

// NewOrderService 创建订单服务
func NewOrderService(cfg *config.Config, orderRepo repository.OrderRepository, cartRepo repository.CartRepository, productRepo repository.ProductRepository) *OrderService {
	return &OrderService{
		cfg:         cfg,
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// PlaceOrderInput 下单输入
type PlaceOrderInput struct {
	UserID        uint
	Address       string
	PaymentMethod string
	ClientIP      string
}

// PlaceOrder 从购物车下单。库存扣减、订单写入与清空购物车在同一事务内,
// 任一商品库存不足则整单回滚。
func (s *OrderService) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error) {
	if input.UserID == 0 {
		return nil, ErrUnauthorized
	}
	address := strings.TrimSpace(input.Address)
	if address == "" {
		return nil, ErrValidation
	}
	method := strings.TrimSpace(input.PaymentMethod)
	if !isPaymentMethodSupported(method) {
		return nil, ErrValidation
	}

	items, err := s.cartRepo.ListByUser(input.UserID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	shippingFee, err := models.NewMoneyFromString(s.cfg.Order.ShippingFee)
	if err != nil {
		return nil, ErrOrderCreateFailed
	}

	order := &models.Order{
		OrderNo:       generateOrderNo(),
		UserID:        input.UserID,
		Address:       address,
		PaymentMethod: method,
		ShippingFee:   shippingFee,
		Status:        constants.OrderStatusPending,
		ClientIP:      strings.TrimSpace(input.ClientIP),
	}

	err = s.productRepo.Transaction(func(tx *gorm.DB) error {
		txProducts := s.productRepo.WithTx(tx)
		txOrders := s.orderRepo.WithTx(tx)
		txCart := s.cartRepo.WithTx(tx)

		var subtotal models.Money
		orderItems := make([]models.OrderItem, 0, len(items))
		for _, item := range items {
			product, err := txProducts.GetByID(item.ProductID)
			if err != nil {
				return err
			}
			if product == nil || !product.IsActive {
				return ErrProductNotAvailable
			}
			if item.Quantity <= 0 {
				return ErrInvalidQuantity
			}

			affected, err := txProducts.DecrementStock(item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			if affected == 0 {
				return ErrStockExhausted
			}

			lineTotal := product.PriceAmount.MulInt(item.Quantity)
			subtotal = subtotal.Add(lineTotal)
			orderItems = append(orderItems, models.OrderItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				UnitPrice:   product.PriceAmount,
				Quantity:    item.Quantity,
				TotalPrice:  lineTotal,
			})
		}

		order.Subtotal = subtotal
		order.TotalAmount = subtotal.Add(shippingFee)

		if err := txOrders.Create(order, orderItems); err != nil {
			return err
		}
		return txCart.ClearByUser(input.UserID)
	})
	if err != nil {
		if errors.Is(err, ErrStockExhausted) || errors.Is(err, ErrProductNotAvailable) || errors.Is(err, ErrInvalidQuantity) {
			return nil, err
		}
		logger.Errorw("order_place_failed", "user_id", input.UserID, "error", err)
		return nil, ErrOrderCreateFailed
	}

	if err := cache.DelCartSnapshot(ctx, input.UserID); err != nil {
		logger.Warnw("cart_cache_invalidate_failed", "user_id", input.UserID, "error", err)
	}

	logger.Infow("order_placed",
		"order_no", order.OrderNo,
		"user_id", input.UserID,
		"total_amount", order.TotalAmount.String(),
		"payment_method", method,
	)

	full, err := s.orderRepo.GetByID(order.ID)
	if err != nil || full == nil {
		return order, nil
	}
	return full, nil
}

// GetByIDForUser 获取用户自己的订单
func (s *OrderService) GetByIDForUser(orderID, userID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListByUser 用户订单列表
func (s *OrderService) ListByUser(userID uint, filter repository.OrderListFilter) ([]models.Order, int64, error) {
	filter.UserID = userID
	return s.orderRepo.ListByUser(filter)
}

// GetAdmin 管理端订单详情
func (s *OrderService) GetAdmin(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListAdmin 管理端订单列表
func (s *OrderService) ListAdmin(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.ListAdmin(filter)
}

func isPaymentMethodSupported(method string) bool {
	for _, m := range constants.PaymentMethods {
		if m == method {
			return true
		}
	}
	return false
}

func generateOrderNo() string {
	now := time.Now().Format("20060102150405")
	return fmt.Sprintf("SF%s%s", now, randNumeric(6))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(fmt.Sprintf("%d", n.Int64()))
	}
	return b.String()
}
