package service

import (
	"errors"
	"testing"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupDashboardServiceTest(t *testing.T) (*DashboardService, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Order{}, &models.RefundConcern{}, &models.RefundHistory{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewDashboardService(repository.NewDashboardRepository(db)), db
}

func createDashboardTestOrder(t *testing.T, db *gorm.DB, orderNo, status, total string, createdAt time.Time) *models.Order {
	t.Helper()
	amount, err := models.NewMoneyFromString(total)
	if err != nil {
		t.Fatalf("parse total failed: %v", err)
	}
	order := &models.Order{
		OrderNo:       orderNo,
		UserID:        901,
		Address:       "测试地址",
		PaymentMethod: constants.PaymentMethodCard,
		Subtotal:      amount,
		TotalAmount:   amount,
		Status:        status,
		CreatedAt:     createdAt,
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func TestDashboardOverview(t *testing.T) {
	svc, db := setupDashboardServiceTest(t)

	baseline, err := svc.GetOverview()
	if err != nil {
		t.Fatalf("baseline overview failed: %v", err)
	}

	lastYear := time.Date(time.Now().Year()-1, time.June, 15, 12, 0, 0, 0, time.Local)
	delivered := createDashboardTestOrder(t, db, "DBO-1001", constants.OrderStatusDelivered, "100.00", lastYear)
	refunded := createDashboardTestOrder(t, db, "DBO-1002", constants.OrderStatusRefunded, "50.00", lastYear)

	concern := &models.RefundConcern{
		OrderID:     delivered.ID,
		UserID:      901,
		Reason:      "damaged",
		Description: "包装破损,商品无法使用",
		RefundType:  constants.RefundTypeFull,
		Status:      constants.RefundConcernStatusPending,
	}
	if err := db.Create(concern).Error; err != nil {
		t.Fatalf("create concern failed: %v", err)
	}
	history := &models.RefundHistory{
		ConcernID: concern.ID,
		OrderID:   refunded.ID,
		UserID:    901,
		Amount:    refunded.TotalAmount,
		Status:    constants.RefundHistoryStatusProcessed,
		CreatedAt: lastYear,
	}
	if err := db.Create(history).Error; err != nil {
		t.Fatalf("create refund history failed: %v", err)
	}

	overview, err := svc.GetOverview()
	if err != nil {
		t.Fatalf("get overview failed: %v", err)
	}
	if got := overview.OrdersTotal - baseline.OrdersTotal; got != 2 {
		t.Fatalf("orders total delta want 2 got %d", got)
	}
	if got := overview.OrdersRefunded - baseline.OrdersRefunded; got != 1 {
		t.Fatalf("orders refunded delta want 1 got %d", got)
	}
	if got := overview.ConcernsPending - baseline.ConcernsPending; got != 1 {
		t.Fatalf("concerns pending delta want 1 got %d", got)
	}
	// 已退款订单不计入营收
	if got := overview.EarningsTotal - baseline.EarningsTotal; got != 100 {
		t.Fatalf("earnings total delta want 100 got %v", got)
	}
	if got := overview.OrdersThisMonth - baseline.OrdersThisMonth; got != 0 {
		t.Fatalf("last-year orders should not count toward this month, delta %d", got)
	}

	found := false
	for _, entry := range overview.RecentRefunds {
		if entry.ID == history.ID {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("recent refunds should contain seeded entry %d", history.ID)
	}
}

func TestDashboardTransactions(t *testing.T) {
	svc, db := setupDashboardServiceTest(t)

	baseline, err := svc.GetTransactions(constants.TxnRangeLastYear)
	if err != nil {
		t.Fatalf("baseline transactions failed: %v", err)
	}

	lastYear := time.Date(time.Now().Year()-1, time.March, 3, 9, 0, 0, 0, time.Local)
	createDashboardTestOrder(t, db, "DBT-2001", constants.OrderStatusDelivered, "80.00", lastYear)
	refunded := createDashboardTestOrder(t, db, "DBT-2002", constants.OrderStatusRefunded, "30.00", lastYear)
	history := &models.RefundHistory{
		ConcernID: 1,
		OrderID:   refunded.ID,
		UserID:    901,
		Amount:    refunded.TotalAmount,
		Status:    constants.RefundHistoryStatusProcessed,
		CreatedAt: lastYear,
	}
	if err := db.Create(history).Error; err != nil {
		t.Fatalf("create refund history failed: %v", err)
	}

	summary, err := svc.GetTransactions(constants.TxnRangeLastYear)
	if err != nil {
		t.Fatalf("get transactions failed: %v", err)
	}
	if summary.Range != constants.TxnRangeLastYear {
		t.Fatalf("range want %s got %s", constants.TxnRangeLastYear, summary.Range)
	}
	if got := summary.Orders - baseline.Orders; got != 2 {
		t.Fatalf("orders delta want 2 got %d", got)
	}
	if got := summary.Earnings - baseline.Earnings; got != 80 {
		t.Fatalf("earnings delta want 80 got %v", got)
	}
	if got := summary.Refunded - baseline.Refunded; got != 30 {
		t.Fatalf("refunded delta want 30 got %v", got)
	}
}

func TestDashboardTransactionsBetween(t *testing.T) {
	svc, db := setupDashboardServiceTest(t)

	year := time.Now().Year() - 2
	start := time.Date(year, time.May, 10, 0, 0, 0, 0, time.Local)
	createDashboardTestOrder(t, db, "DBT-3001", constants.OrderStatusDelivered, "25.00", start.Add(6*time.Hour))
	createDashboardTestOrder(t, db, "DBT-3002", constants.OrderStatusDelivered, "15.00", start.AddDate(0, 0, 3))

	from := start.Format("2006-01-02")
	to := start.AddDate(0, 0, 1).Format("2006-01-02")
	summary, err := svc.GetTransactionsBetween(from, to)
	if err != nil {
		t.Fatalf("custom range failed: %v", err)
	}
	if summary.Range != "custom" {
		t.Fatalf("range want custom got %s", summary.Range)
	}
	// 右端含当天,只命中第一笔订单
	if summary.Orders != 1 || summary.Earnings != 25 {
		t.Fatalf("want 1 order / 25 earnings, got %d / %v", summary.Orders, summary.Earnings)
	}

	if _, err := svc.GetTransactionsBetween("2026/01/01", "2026-01-02"); !errors.Is(err, ErrValidation) {
		t.Fatalf("bad start date want ErrValidation got %v", err)
	}
	if _, err := svc.GetTransactionsBetween("2026-01-05", "2026-01-01"); !errors.Is(err, ErrValidation) {
		t.Fatalf("inverted range want ErrValidation got %v", err)
	}
}

func TestDashboardTransactionsInvalidRange(t *testing.T) {
	svc, _ := setupDashboardServiceTest(t)

	if _, err := svc.GetTransactions("quarter"); !errors.Is(err, ErrValidation) {
		t.Fatalf("invalid range want ErrValidation got %v", err)
	}
	if _, err := svc.GetTransactions(""); !errors.Is(err, ErrValidation) {
		t.Fatalf("empty range want ErrValidation got %v", err)
	}
}
