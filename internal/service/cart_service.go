package service

import (
	"context"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
)

// CartItemDetail 购物车项详情(用于响应)
type CartItemDetail struct {
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice models.Money    `json:"unit_price"`
	LineTotal models.Money    `json:"line_total"`
	Product   *models.Product `json:"product"`
}

// CartSummary 购物车汇总
type CartSummary struct {
	Items    []CartItemDetail `json:"items"`
	Subtotal models.Money     `json:"subtotal"`
	Count    int              `json:"count"`
}

// CartService 购物车服务
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// GetCart 获取用户购物车,优先读缓存,数据库始终是事实来源
func (s *CartService) GetCart(ctx context.Context, userID uint) (*CartSummary, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}

	if snapshot, ok, err := cache.GetCartSnapshot(ctx, userID); err == nil && ok {
		return s.buildSummary(userID, snapshot.Items), nil
	} else if err != nil {
		logger.Warnw("cart_cache_read_failed", "user_id", userID, "error", err)
	}

	items, err := s.cartRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	if err := cache.SetCartSnapshot(ctx, userID, items); err != nil {
		logger.Warnw("cart_cache_write_failed", "user_id", userID, "error", err)
	}
	return s.buildSummary(userID, items), nil
}

// AddItem 添加商品到购物车,已存在则累加数量
func (s *CartService) AddItem(ctx context.Context, userID, productID uint, quantity int) error {
	if userID == 0 {
		return ErrUnauthorized
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return err
	}
	if product == nil || !product.IsActive {
		return ErrProductNotFound
	}

	existing, err := s.cartRepo.GetByUserAndProduct(userID, productID)
	if err != nil {
		return err
	}
	total := quantity
	if existing != nil {
		total += existing.Quantity
	}
	if total > product.StockQuantity {
		return ErrInsufficientStock
	}

	if err := s.cartRepo.Upsert(&models.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  total,
	}); err != nil {
		return err
	}
	return s.invalidate(ctx, userID)
}

// UpdateQuantity 直接设置购物车项数量,数量小于等于 0 等价于移除
func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID uint, quantity int) error {
	if userID == 0 {
		return ErrUnauthorized
	}
	if quantity <= 0 {
		return s.RemoveItem(ctx, userID, productID)
	}

	existing, err := s.cartRepo.GetByUserAndProduct(userID, productID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrCartItemMissing
	}

	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return err
	}
	if product == nil || !product.IsActive {
		return ErrProductNotFound
	}
	if quantity > product.StockQuantity {
		return ErrInsufficientStock
	}

	existing.Quantity = quantity
	if err := s.cartRepo.Upsert(existing); err != nil {
		return err
	}
	return s.invalidate(ctx, userID)
}

// RemoveItem 移除购物车项
func (s *CartService) RemoveItem(ctx context.Context, userID, productID uint) error {
	if userID == 0 {
		return ErrUnauthorized
	}
	if err := s.cartRepo.DeleteByUserAndProduct(userID, productID); err != nil {
		return err
	}
	return s.invalidate(ctx, userID)
}

// Clear 清空购物车
func (s *CartService) Clear(ctx context.Context, userID uint) error {
	if userID == 0 {
		return ErrUnauthorized
	}
	if err := s.cartRepo.ClearByUser(userID); err != nil {
		return err
	}
	return s.invalidate(ctx, userID)
}

func (s *CartService) invalidate(ctx context.Context, userID uint) error {
	if err := cache.DelCartSnapshot(ctx, userID); err != nil {
		logger.Warnw("cart_cache_invalidate_failed", "user_id", userID, "error", err)
	}
	return nil
}

func (s *CartService) buildSummary(userID uint, items []models.CartItem) *CartSummary {
	summary := &CartSummary{Items: make([]CartItemDetail, 0, len(items))}
	var subtotal models.Money
	for _, item := range items {
		product := item.Product
		if product == nil || product.ID == 0 {
			p, err := s.productRepo.GetByID(item.ProductID)
			if err != nil || p == nil {
				continue
			}
			product = p
		}
		if !product.IsActive {
			// 已下架商品静默剔除,避免结账时才失败
			_ = s.cartRepo.DeleteByUserAndProduct(userID, item.ProductID)
			continue
		}
		lineTotal := product.PriceAmount.MulInt(item.Quantity)
		subtotal = subtotal.Add(lineTotal)
		summary.Items = append(summary.Items, CartItemDetail{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: product.PriceAmount,
			LineTotal: lineTotal,
			Product:   product,
		})
		summary.Count += item.Quantity
	}
	summary.Subtotal = subtotal
	return summary
}
