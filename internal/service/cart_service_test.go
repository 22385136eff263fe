package service

import (
	"context"
	"errors"
	"testing"

	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupCartServiceTest(t *testing.T) (*CartService, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.CartItem{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewCartService(repository.NewCartRepository(db), repository.NewProductRepository(db)), db
}

func createCartTestProduct(t *testing.T, db *gorm.DB, price string, stock int, active bool) *models.Product {
	t.Helper()
	amount, err := models.NewMoneyFromString(price)
	if err != nil {
		t.Fatalf("parse price failed: %v", err)
	}
	product := &models.Product{
		Name:          "购物车测试商品",
		PriceAmount:   amount,
		StockQuantity: stock,
		IsActive:      active,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func TestAddItemAccumulatesQuantity(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	ctx := context.Background()
	userID := uint(601)
	product := createCartTestProduct(t, db, "7.50", 10, true)

	if err := svc.AddItem(ctx, userID, product.ID, 2); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if err := svc.AddItem(ctx, userID, product.ID, 3); err != nil {
		t.Fatalf("second add failed: %v", err)
	}

	summary, err := svc.GetCart(ctx, userID)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(summary.Items) != 1 || summary.Items[0].Quantity != 5 {
		t.Fatalf("expected single line with quantity 5, got %+v", summary.Items)
	}
	if summary.Subtotal.String() != "37.50" {
		t.Fatalf("expected subtotal 37.50, got %s", summary.Subtotal.String())
	}
}

func TestAddItemRejectsOverStock(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	ctx := context.Background()
	userID := uint(602)
	product := createCartTestProduct(t, db, "7.50", 4, true)

	if err := svc.AddItem(ctx, userID, product.ID, 3); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := svc.AddItem(ctx, userID, product.ID, 2); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
}

func TestAddItemInactiveProduct(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := createCartTestProduct(t, db, "7.50", 4, false)

	if err := svc.AddItem(context.Background(), 603, product.ID, 1); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestUpdateQuantityAndRemove(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	ctx := context.Background()
	userID := uint(604)
	product := createCartTestProduct(t, db, "3.00", 10, true)

	if err := svc.UpdateQuantity(ctx, userID, product.ID, 2); !errors.Is(err, ErrCartItemMissing) {
		t.Fatalf("expected ErrCartItemMissing, got %v", err)
	}

	if err := svc.AddItem(ctx, userID, product.ID, 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := svc.UpdateQuantity(ctx, userID, product.ID, 4); err != nil {
		t.Fatalf("update quantity failed: %v", err)
	}

	summary, err := svc.GetCart(ctx, userID)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if summary.Count != 4 {
		t.Fatalf("expected count 4, got %d", summary.Count)
	}

	if err := svc.RemoveItem(ctx, userID, product.ID); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	summary, err = svc.GetCart(ctx, userID)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(summary.Items) != 0 {
		t.Fatalf("expected empty cart, got %+v", summary.Items)
	}
}

func TestAddItemAfterRemove(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	ctx := context.Background()
	userID := uint(606)
	product := createCartTestProduct(t, db, "4.20", 10, true)

	if err := svc.AddItem(ctx, userID, product.ID, 2); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if err := svc.RemoveItem(ctx, userID, product.ID); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	// 移除后的同一商品必须还能加回购物车（唯一索引不得被死行占用）
	if err := svc.AddItem(ctx, userID, product.ID, 3); err != nil {
		t.Fatalf("re-add after remove failed: %v", err)
	}

	summary, err := svc.GetCart(ctx, userID)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(summary.Items) != 1 || summary.Items[0].Quantity != 3 {
		t.Fatalf("expected single line with quantity 3, got %+v", summary.Items)
	}
}

func TestAddItemAfterClear(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	ctx := context.Background()
	userID := uint(607)
	product := createCartTestProduct(t, db, "4.20", 10, true)

	if err := svc.AddItem(ctx, userID, product.ID, 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := svc.Clear(ctx, userID); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if err := svc.AddItem(ctx, userID, product.ID, 1); err != nil {
		t.Fatalf("re-add after clear failed: %v", err)
	}

	summary, err := svc.GetCart(ctx, userID)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(summary.Items) != 1 || summary.Items[0].Quantity != 1 {
		t.Fatalf("expected single line with quantity 1, got %+v", summary.Items)
	}
}

func TestUpdateQuantityZeroRemovesItem(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	ctx := context.Background()
	userID := uint(608)
	product := createCartTestProduct(t, db, "6.00", 10, true)

	if err := svc.AddItem(ctx, userID, product.ID, 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := svc.UpdateQuantity(ctx, userID, product.ID, 0); err != nil {
		t.Fatalf("set quantity 0 failed: %v", err)
	}

	summary, err := svc.GetCart(ctx, userID)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(summary.Items) != 0 {
		t.Fatalf("quantity 0 should remove the line, got %+v", summary.Items)
	}

	if err := svc.AddItem(ctx, userID, product.ID, 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := svc.UpdateQuantity(ctx, userID, product.ID, -3); err != nil {
		t.Fatalf("negative quantity failed: %v", err)
	}
	summary, err = svc.GetCart(ctx, userID)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(summary.Items) != 0 {
		t.Fatalf("negative quantity should remove the line, got %+v", summary.Items)
	}
}

func TestGetCartDropsDeactivatedProducts(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	ctx := context.Background()
	userID := uint(605)
	product := createCartTestProduct(t, db, "5.00", 10, true)

	if err := svc.AddItem(ctx, userID, product.ID, 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := db.Model(&models.Product{}).Where("id = ?", product.ID).
		Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate product failed: %v", err)
	}

	summary, err := svc.GetCart(ctx, userID)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(summary.Items) != 0 {
		t.Fatalf("deactivated product must be dropped, got %+v", summary.Items)
	}
}
