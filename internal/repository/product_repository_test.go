package repository

import (
	"testing"

	"github.com/storefront-next/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupProductRepositoryTest(t *testing.T) (*GormProductRepository, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}); err != nil {
		t.Fatalf("migrate product failed: %v", err)
	}
	return NewProductRepository(db), db
}

func createTestProduct(t *testing.T, repo *GormProductRepository, name string, price int64, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:          name,
		PriceAmount:   models.NewMoneyFromDecimal(decimal.NewFromInt(price)),
		StockQuantity: stock,
		IsActive:      true,
	}
	if err := repo.Create(product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func TestDecrementStockSuccess(t *testing.T) {
	repo, _ := setupProductRepositoryTest(t)
	product := createTestProduct(t, repo, "decrement-ok", 10, 5)

	affected, err := repo.DecrementStock(product.ID, 3)
	if err != nil {
		t.Fatalf("decrement stock failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected 1 row affected, got %d", affected)
	}

	got, err := repo.GetByID(product.ID)
	if err != nil {
		t.Fatalf("get product failed: %v", err)
	}
	if got.StockQuantity != 2 {
		t.Fatalf("expected stock 2, got %d", got.StockQuantity)
	}
}

func TestDecrementStockInsufficient(t *testing.T) {
	repo, _ := setupProductRepositoryTest(t)
	product := createTestProduct(t, repo, "decrement-short", 10, 2)

	affected, err := repo.DecrementStock(product.ID, 3)
	if err != nil {
		t.Fatalf("decrement stock failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("expected 0 rows affected, got %d", affected)
	}

	got, err := repo.GetByID(product.ID)
	if err != nil {
		t.Fatalf("get product failed: %v", err)
	}
	if got.StockQuantity != 2 {
		t.Fatalf("stock must stay 2, got %d", got.StockQuantity)
	}
}

func TestDecrementStockExact(t *testing.T) {
	repo, _ := setupProductRepositoryTest(t)
	product := createTestProduct(t, repo, "decrement-exact", 10, 4)

	affected, err := repo.DecrementStock(product.ID, 4)
	if err != nil {
		t.Fatalf("decrement stock failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected 1 row affected, got %d", affected)
	}

	got, err := repo.GetByID(product.ID)
	if err != nil {
		t.Fatalf("get product failed: %v", err)
	}
	if got.StockQuantity != 0 {
		t.Fatalf("expected stock 0, got %d", got.StockQuantity)
	}
}

func TestDecrementStockInvalidParams(t *testing.T) {
	repo, _ := setupProductRepositoryTest(t)
	if _, err := repo.DecrementStock(0, 1); err == nil {
		t.Fatal("expected error for zero product id")
	}
	if _, err := repo.DecrementStock(1, 0); err == nil {
		t.Fatal("expected error for non-positive quantity")
	}
}
