package service

import (
	"errors"
	"testing"
	"time"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupRefundServiceTest(t *testing.T) (*RefundService, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.Order{}, &models.OrderItem{},
		&models.RefundConcern{}, &models.RefundHistory{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.Order.RefundWindowDays = 14
	svc := NewRefundService(cfg,
		repository.NewOrderRepository(db),
		repository.NewRefundRepository(db),
		repository.NewProductRepository(db),
	)
	return svc, db
}

func seedDeliveredOrder(t *testing.T, db *gorm.DB, userID uint, method string, ageDays int) *models.Order {
	t.Helper()
	total, _ := models.NewMoneyFromString("23.99")
	subtotal, _ := models.NewMoneyFromString("20.00")
	shipping, _ := models.NewMoneyFromString("3.99")
	now := time.Now()
	order := &models.Order{
		OrderNo:             generateOrderNo(),
		UserID:              userID,
		Address:             "1 Test Street",
		PaymentMethod:       method,
		Subtotal:            subtotal,
		ShippingFee:         shipping,
		TotalAmount:         total,
		Status:              constants.OrderStatusDelivered,
		IsDelivered:         true,
		DeliveryConfirmedAt: &now,
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if ageDays > 0 {
		backdated := now.AddDate(0, 0, -ageDays)
		if err := db.Model(&models.Order{}).Where("id = ?", order.ID).
			Update("created_at", backdated).Error; err != nil {
			t.Fatalf("backdate order failed: %v", err)
		}
		order.CreatedAt = backdated
	}
	unit, _ := models.NewMoneyFromString("10.00")
	items := []models.OrderItem{
		{OrderID: order.ID, ProductID: 1, ProductName: "测试商品", UnitPrice: unit, Quantity: 2, TotalPrice: unit.MulInt(2)},
	}
	if err := db.Create(&items).Error; err != nil {
		t.Fatalf("create order items failed: %v", err)
	}
	order.Items = items
	return order
}

func validConcernInput(orderID, userID uint) RaiseConcernInput {
	return RaiseConcernInput{
		OrderID:       orderID,
		UserID:        userID,
		Reason:        "damaged",
		Description:   "item arrived broken in half",
		EvidenceImage: "/uploads/evidence/2026/08/a.jpg",
		RefundType:    constants.RefundTypeFull,
	}
}

func TestCanRaiseConcernMatrix(t *testing.T) {
	svc, db := setupRefundServiceTest(t)

	eligible := seedDeliveredOrder(t, db, 801, constants.PaymentMethodCard, 3)
	netsPaid := seedDeliveredOrder(t, db, 801, constants.PaymentMethodNETSQR, 3)
	tooOld := seedDeliveredOrder(t, db, 801, constants.PaymentMethodCard, 20)

	undelivered := seedDeliveredOrder(t, db, 801, constants.PaymentMethodCard, 3)
	if err := db.Model(&models.Order{}).Where("id = ?", undelivered.ID).
		Updates(map[string]interface{}{"is_delivered": false, "status": constants.OrderStatusOutForDelivery}).Error; err != nil {
		t.Fatalf("update order failed: %v", err)
	}

	cases := []struct {
		name    string
		orderID uint
		want    bool
	}{
		{"eligible", eligible.ID, true},
		{"nets_qr_paid", netsPaid.ID, false},
		{"past_window", tooOld.ID, false},
		{"not_delivered", undelivered.ID, false},
	}
	for _, c := range cases {
		got, err := svc.CanRaiseConcern(c.orderID, 801)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", c.name, err)
		}
		if got != c.want {
			t.Fatalf("%s: expected %v, got %v", c.name, c.want, got)
		}
	}

	if _, err := svc.CanRaiseConcern(eligible.ID, 999); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("foreign user should get ErrOrderNotFound, got %v", err)
	}
}

func TestRaiseConcernValidation(t *testing.T) {
	svc, db := setupRefundServiceTest(t)
	order := seedDeliveredOrder(t, db, 802, constants.PaymentMethodCard, 3)

	short := validConcernInput(order.ID, 802)
	short.Description = "too short"
	if _, err := svc.RaiseConcern(short); !errors.Is(err, ErrDescriptionTooShort) {
		t.Fatalf("expected ErrDescriptionTooShort, got %v", err)
	}

	noEvidence := validConcernInput(order.ID, 802)
	noEvidence.EvidenceImage = " "
	if _, err := svc.RaiseConcern(noEvidence); !errors.Is(err, ErrEvidenceRequired) {
		t.Fatalf("expected ErrEvidenceRequired, got %v", err)
	}

	partialNoItems := validConcernInput(order.ID, 802)
	partialNoItems.RefundType = constants.RefundTypePartial
	if _, err := svc.RaiseConcern(partialNoItems); !errors.Is(err, ErrRefundItemsRequired) {
		t.Fatalf("expected ErrRefundItemsRequired, got %v", err)
	}
}

func TestRaiseConcernPartialAmount(t *testing.T) {
	svc, db := setupRefundServiceTest(t)
	order := seedDeliveredOrder(t, db, 803, constants.PaymentMethodCard, 3)

	input := validConcernInput(order.ID, 803)
	input.RefundType = constants.RefundTypePartial
	input.ItemIDs = []uint{order.Items[0].ID}

	concern, err := svc.RaiseConcern(input)
	if err != nil {
		t.Fatalf("raise concern failed: %v", err)
	}
	// 部分退款金额 = 所选项单价×数量
	if concern.Amount.String() != "20.00" {
		t.Fatalf("expected partial amount 20.00, got %s", concern.Amount.String())
	}
	if concern.Status != constants.RefundConcernStatusPending {
		t.Fatalf("expected pending concern, got %s", concern.Status)
	}
}

func TestRaiseConcernRejectsSecondOpenConcern(t *testing.T) {
	svc, db := setupRefundServiceTest(t)
	order := seedDeliveredOrder(t, db, 804, constants.PaymentMethodCard, 3)

	if _, err := svc.RaiseConcern(validConcernInput(order.ID, 804)); err != nil {
		t.Fatalf("first concern failed: %v", err)
	}
	if _, err := svc.RaiseConcern(validConcernInput(order.ID, 804)); !errors.Is(err, ErrConcernPending) {
		t.Fatalf("expected ErrConcernPending, got %v", err)
	}
}

func TestApproveRefundWritesSingleHistoryRow(t *testing.T) {
	svc, db := setupRefundServiceTest(t)
	order := seedDeliveredOrder(t, db, 805, constants.PaymentMethodCard, 3)

	concern, err := svc.RaiseConcern(validConcernInput(order.ID, 805))
	if err != nil {
		t.Fatalf("raise concern failed: %v", err)
	}

	approved, err := svc.ApproveRefund(concern.ID, ApproveRefundInput{})
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.Status != constants.RefundConcernStatusApproved {
		t.Fatalf("expected approved, got %s", approved.Status)
	}
	if approved.Amount.String() != "23.99" {
		t.Fatalf("approve without overrides should keep concern amount, got %s", approved.Amount.String())
	}

	// 重复批准必须幂等失败,且不得追加第二条流水
	if _, err := svc.ApproveRefund(concern.ID, ApproveRefundInput{}); !errors.Is(err, ErrConcernResolved) {
		t.Fatalf("expected ErrConcernResolved on second approve, got %v", err)
	}

	var historyCount int64
	if err := db.Model(&models.RefundHistory{}).Where("concern_id = ?", concern.ID).Count(&historyCount).Error; err != nil {
		t.Fatalf("count history failed: %v", err)
	}
	if historyCount != 1 {
		t.Fatalf("expected exactly 1 history row, got %d", historyCount)
	}

	var status string
	if err := db.Model(&models.Order{}).Where("id = ?", order.ID).
		Select("status").Scan(&status).Error; err != nil {
		t.Fatalf("read order status failed: %v", err)
	}
	if status != constants.OrderStatusRefunded {
		t.Fatalf("full refund should mark order refunded, got %s", status)
	}
}

func TestApproveRefundWithAdjustedAmount(t *testing.T) {
	svc, db := setupRefundServiceTest(t)
	order := seedDeliveredOrder(t, db, 808, constants.PaymentMethodCard, 3)

	concern, err := svc.RaiseConcern(validConcernInput(order.ID, 808))
	if err != nil {
		t.Fatalf("raise concern failed: %v", err)
	}

	approved, err := svc.ApproveRefund(concern.ID, ApproveRefundInput{
		RefundType: constants.RefundTypePartial,
		Amount:     "10.00",
		ItemIDs:    []uint{order.Items[0].ID},
	})
	if err != nil {
		t.Fatalf("approve with overrides failed: %v", err)
	}
	if approved.RefundType != constants.RefundTypePartial || approved.Amount.String() != "10.00" {
		t.Fatalf("overrides not applied: type=%s amount=%s", approved.RefundType, approved.Amount.String())
	}

	var history models.RefundHistory
	if err := db.Where("concern_id = ?", concern.ID).First(&history).Error; err != nil {
		t.Fatalf("read history failed: %v", err)
	}
	if history.Amount.String() != "10.00" {
		t.Fatalf("history amount want 10.00 got %s", history.Amount.String())
	}

	// 改为部分退款时订单不应转入 refunded
	var status string
	if err := db.Model(&models.Order{}).Where("id = ?", order.ID).
		Select("status").Scan(&status).Error; err != nil {
		t.Fatalf("read order status failed: %v", err)
	}
	if status == constants.OrderStatusRefunded {
		t.Fatalf("partial refund must not mark order refunded")
	}
}

func TestApproveRefundOverrideValidation(t *testing.T) {
	svc, db := setupRefundServiceTest(t)
	order := seedDeliveredOrder(t, db, 809, constants.PaymentMethodCard, 3)

	concern, err := svc.RaiseConcern(validConcernInput(order.ID, 809))
	if err != nil {
		t.Fatalf("raise concern failed: %v", err)
	}

	if _, err := svc.ApproveRefund(concern.ID, ApproveRefundInput{Amount: "-5"}); !errors.Is(err, ErrRefundAmountInvalid) {
		t.Fatalf("negative amount want ErrRefundAmountInvalid got %v", err)
	}
	if _, err := svc.ApproveRefund(concern.ID, ApproveRefundInput{RefundType: "store_credit"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("unknown refund type want ErrValidation got %v", err)
	}
	// 全额申诉改为部分退款但未指定订单项
	if _, err := svc.ApproveRefund(concern.ID, ApproveRefundInput{RefundType: constants.RefundTypePartial}); !errors.Is(err, ErrRefundItemsRequired) {
		t.Fatalf("partial without items want ErrRefundItemsRequired got %v", err)
	}
}

func TestRejectRefund(t *testing.T) {
	svc, db := setupRefundServiceTest(t)
	order := seedDeliveredOrder(t, db, 806, constants.PaymentMethodCard, 3)

	concern, err := svc.RaiseConcern(validConcernInput(order.ID, 806))
	if err != nil {
		t.Fatalf("raise concern failed: %v", err)
	}

	rejected, err := svc.RejectRefund(concern.ID)
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.Status != constants.RefundConcernStatusRejected {
		t.Fatalf("expected rejected, got %s", rejected.Status)
	}

	var historyCount int64
	if err := db.Model(&models.RefundHistory{}).Where("concern_id = ?", concern.ID).Count(&historyCount).Error; err != nil {
		t.Fatalf("count history failed: %v", err)
	}
	if historyCount != 0 {
		t.Fatalf("reject must not write history, got %d rows", historyCount)
	}
}

func TestRejectRefundKeepsTerminalStatus(t *testing.T) {
	svc, db := setupRefundServiceTest(t)
	order := seedDeliveredOrder(t, db, 807, constants.PaymentMethodCard, 3)

	concern, err := svc.RaiseConcern(validConcernInput(order.ID, 807))
	if err != nil {
		t.Fatalf("raise concern failed: %v", err)
	}
	if _, err := svc.ApproveRefund(concern.ID, ApproveRefundInput{}); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	// 已批准的申诉不得被驳回覆盖
	if _, err := svc.RejectRefund(concern.ID); !errors.Is(err, ErrConcernResolved) {
		t.Fatalf("reject after approve want ErrConcernResolved got %v", err)
	}
	var status string
	if err := db.Model(&models.RefundConcern{}).Where("id = ?", concern.ID).
		Select("status").Scan(&status).Error; err != nil {
		t.Fatalf("read concern status failed: %v", err)
	}
	if status != constants.RefundConcernStatusApproved {
		t.Fatalf("concern should stay approved, got %s", status)
	}
}
