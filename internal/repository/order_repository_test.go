package repository

import (
	"testing"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupOrderRepositoryTest(t *testing.T) (*GormOrderRepository, *GormRefundRepository, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Order{}, &models.OrderItem{}, &models.RefundConcern{}, &models.RefundHistory{}); err != nil {
		t.Fatalf("migrate order tables failed: %v", err)
	}
	return NewOrderRepository(db), NewRefundRepository(db), db
}

func createTestOrder(t *testing.T, db *gorm.DB, orderNo, status string, createdAt time.Time, delivered bool) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNo:       orderNo,
		UserID:        1,
		Address:       "1 Test Street",
		PaymentMethod: constants.PaymentMethodCard,
		Subtotal:      models.NewMoneyFromDecimal(decimal.NewFromInt(20)),
		ShippingFee:   models.NewMoneyFromDecimal(decimal.RequireFromString("3.99")),
		TotalAmount:   models.NewMoneyFromDecimal(decimal.RequireFromString("23.99")),
		Status:        status,
		IsDelivered:   delivered,
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	// created_at 需要手动回写，gorm 会覆盖为当前时间
	if err := db.Model(order).Update("created_at", createdAt).Error; err != nil {
		t.Fatalf("backdate order failed: %v", err)
	}
	return order
}

func TestAutoConfirmStaleMarksOldOrders(t *testing.T) {
	repo, _, db := setupOrderRepositoryTest(t)
	now := time.Now()
	old := createTestOrder(t, db, "ac-old", constants.OrderStatusOutForDelivery, now.AddDate(0, 0, -20), false)
	recent := createTestOrder(t, db, "ac-recent", constants.OrderStatusOutForDelivery, now.AddDate(0, 0, -3), false)

	affected, err := repo.AutoConfirmStale(now.AddDate(0, 0, -14), now)
	if err != nil {
		t.Fatalf("auto confirm failed: %v", err)
	}
	if affected < 1 {
		t.Fatalf("expected at least 1 order confirmed, got %d", affected)
	}

	gotOld, err := repo.GetByID(old.ID)
	if err != nil {
		t.Fatalf("get old order failed: %v", err)
	}
	if gotOld.Status != constants.OrderStatusDelivered || !gotOld.IsDelivered {
		t.Fatalf("old order should be auto-confirmed, status=%s delivered=%v", gotOld.Status, gotOld.IsDelivered)
	}
	if gotOld.DeliveryConfirmedAt == nil {
		t.Fatal("delivery_confirmed_at should be set")
	}

	gotRecent, err := repo.GetByID(recent.ID)
	if err != nil {
		t.Fatalf("get recent order failed: %v", err)
	}
	if gotRecent.Status != constants.OrderStatusOutForDelivery || gotRecent.IsDelivered {
		t.Fatalf("recent order must be untouched, status=%s delivered=%v", gotRecent.Status, gotRecent.IsDelivered)
	}
}

func TestAutoConfirmStaleSkipsOrdersWithConcerns(t *testing.T) {
	repo, refundRepo, db := setupOrderRepositoryTest(t)
	now := time.Now()
	disputed := createTestOrder(t, db, "ac-disputed", constants.OrderStatusOutForDelivery, now.AddDate(0, 0, -30), false)

	concern := &models.RefundConcern{
		OrderID:       disputed.ID,
		UserID:        1,
		Reason:        "damaged",
		Description:   "item arrived visibly damaged",
		EvidenceImage: "/uploads/evidence/x.jpg",
		RefundType:    constants.RefundTypeFull,
		Amount:        models.NewMoneyFromDecimal(decimal.RequireFromString("23.99")),
		Status:        constants.RefundConcernStatusPending,
	}
	if err := refundRepo.CreateConcern(concern); err != nil {
		t.Fatalf("create concern failed: %v", err)
	}

	if _, err := repo.AutoConfirmStale(now.AddDate(0, 0, -14), now); err != nil {
		t.Fatalf("auto confirm failed: %v", err)
	}

	got, err := repo.GetByID(disputed.ID)
	if err != nil {
		t.Fatalf("get disputed order failed: %v", err)
	}
	if got.IsDelivered || got.Status != constants.OrderStatusOutForDelivery {
		t.Fatalf("disputed order must not be auto-confirmed, status=%s delivered=%v", got.Status, got.IsDelivered)
	}
}

func TestAutoConfirmStaleSkipsDeliveredOrders(t *testing.T) {
	repo, _, db := setupOrderRepositoryTest(t)
	now := time.Now()
	confirmedAt := now.AddDate(0, 0, -16)
	done := createTestOrder(t, db, "ac-done", constants.OrderStatusDelivered, now.AddDate(0, 0, -30), true)
	if err := db.Model(done).Update("delivery_confirmed_at", confirmedAt).Error; err != nil {
		t.Fatalf("set confirmed at failed: %v", err)
	}

	if _, err := repo.AutoConfirmStale(now.AddDate(0, 0, -14), now); err != nil {
		t.Fatalf("auto confirm failed: %v", err)
	}

	got, err := repo.GetByID(done.ID)
	if err != nil {
		t.Fatalf("get delivered order failed: %v", err)
	}
	if got.DeliveryConfirmedAt == nil || got.DeliveryConfirmedAt.Unix() != confirmedAt.Unix() {
		t.Fatal("already delivered order must keep its original confirmation time")
	}
}
