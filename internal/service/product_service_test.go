package service

import (
	"errors"
	"testing"

	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupProductServiceTest(t *testing.T) (*ProductService, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewProductService(repository.NewProductRepository(db)), db
}

func TestProductCreateValidation(t *testing.T) {
	svc, _ := setupProductServiceTest(t)

	if _, err := svc.Create(ProductInput{Name: "  ", Price: "10.00"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("blank name want ErrValidation got %v", err)
	}
	if _, err := svc.Create(ProductInput{Name: "螺丝刀", Price: "abc"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("bad price want ErrValidation got %v", err)
	}
	if _, err := svc.Create(ProductInput{Name: "螺丝刀", Price: "0"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("zero price want ErrValidation got %v", err)
	}
}

func TestProductCreateAndListPublicHidesInactive(t *testing.T) {
	svc, _ := setupProductServiceTest(t)

	active, err := svc.Create(ProductInput{Name: "货架测试-上架商品", Price: "19.90", StockQuantity: 5})
	if err != nil {
		t.Fatalf("create active failed: %v", err)
	}
	inactiveFlag := false
	inactive, err := svc.Create(ProductInput{Name: "货架测试-下架商品", Price: "9.90", StockQuantity: 5, IsActive: &inactiveFlag})
	if err != nil {
		t.Fatalf("create inactive failed: %v", err)
	}

	items, total, err := svc.ListPublic(repository.ProductListFilter{Page: 1, PageSize: 10, Search: "货架测试"})
	if err != nil {
		t.Fatalf("list public failed: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].ID != active.ID {
		t.Fatalf("public list should only contain active product, got total=%d len=%d", total, len(items))
	}

	if _, err := svc.GetPublic(inactive.ID); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("inactive product want ErrProductNotFound got %v", err)
	}

	items, total, err = svc.ListAdmin(repository.ProductListFilter{Page: 1, PageSize: 10, Search: "货架测试"})
	if err != nil {
		t.Fatalf("list admin failed: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("admin list should contain both products, got total=%d len=%d", total, len(items))
	}
}

func TestProductUpdatePartial(t *testing.T) {
	svc, _ := setupProductServiceTest(t)

	product, err := svc.Create(ProductInput{Name: "键盘", Description: "原描述", Price: "50.00", StockQuantity: 3})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := svc.Update(product.ID, ProductInput{Price: "45.00", StockQuantity: 8})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.PriceAmount.String() != "45.00" {
		t.Fatalf("price want 45.00 got %s", updated.PriceAmount.String())
	}
	if updated.StockQuantity != 8 {
		t.Fatalf("stock want 8 got %d", updated.StockQuantity)
	}
	if updated.Name != "键盘" || updated.Description != "原描述" {
		t.Fatalf("untouched fields should survive, got name=%q desc=%q", updated.Name, updated.Description)
	}

	if _, err := svc.Update(9999, ProductInput{Price: "1.00"}); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("missing product want ErrProductNotFound got %v", err)
	}
}

func TestProductDelete(t *testing.T) {
	svc, _ := setupProductServiceTest(t)

	product, err := svc.Create(ProductInput{Name: "待删除商品", Price: "5.00"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.Delete(product.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := svc.Get(product.ID); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("deleted product want ErrProductNotFound got %v", err)
	}
	if err := svc.Delete(product.ID); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("double delete want ErrProductNotFound got %v", err)
	}
}
