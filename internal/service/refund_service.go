package service

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"gorm.io/gorm"
)

const minConcernDescriptionLen = 10

// RefundService 退款申诉服务
type RefundService struct {
	cfg         *config.Config
	orderRepo   repository.OrderRepository
	refundRepo  repository.RefundRepository
	productRepo repository.ProductRepository
}

// NewRefundService 创建退款申诉服务
func NewRefundService(cfg *config.Config, orderRepo repository.OrderRepository, refundRepo repository.RefundRepository, productRepo repository.ProductRepository) *RefundService {
	return &RefundService{
		cfg:         cfg,
		orderRepo:   orderRepo,
		refundRepo:  refundRepo,
		productRepo: productRepo,
	}
}

// RaiseConcernInput 发起申诉输入
type RaiseConcernInput struct {
	OrderID       uint
	UserID        uint
	Reason        string
	Description   string
	EvidenceImage string
	RefundType    string
	ItemIDs       []uint
}

// CanRaiseConcern 判断订单当前是否可发起退款申诉。
// 条件:本人订单、已确认收货、非 NETS QR 支付、下单未超过退款窗口、无未决申诉。
func (s *RefundService) CanRaiseConcern(orderID, userID uint) (bool, error) {
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return false, err
	}
	if order == nil {
		return false, ErrOrderNotFound
	}
	if !order.IsDelivered || order.Status == constants.OrderStatusRefunded {
		return false, nil
	}
	if order.PaymentMethod == constants.PaymentMethodNETSQR {
		return false, nil
	}
	windowDays := s.cfg.Order.RefundWindowDays
	if windowDays <= 0 {
		windowDays = 14
	}
	if time.Since(order.CreatedAt) > time.Duration(windowDays)*24*time.Hour {
		return false, nil
	}
	open, err := s.refundRepo.GetOpenConcernByOrder(order.ID)
	if err != nil {
		return false, err
	}
	return open == nil, nil
}

// RaiseConcern 发起退款申诉
func (s *RefundService) RaiseConcern(input RaiseConcernInput) (*models.RefundConcern, error) {
	ok, err := s.CanRaiseConcern(input.OrderID, input.UserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		open, openErr := s.refundRepo.GetOpenConcernByOrder(input.OrderID)
		if openErr == nil && open != nil {
			return nil, ErrConcernPending
		}
		return nil, ErrRefundNotEligible
	}

	if len([]rune(strings.TrimSpace(input.Description))) < minConcernDescriptionLen {
		return nil, ErrDescriptionTooShort
	}
	if strings.TrimSpace(input.EvidenceImage) == "" {
		return nil, ErrEvidenceRequired
	}
	refundType := strings.ToLower(strings.TrimSpace(input.RefundType))
	if refundType != constants.RefundTypeFull && refundType != constants.RefundTypePartial {
		return nil, ErrValidation
	}

	order, err := s.orderRepo.GetByIDAndUser(input.OrderID, input.UserID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	var amount models.Money
	var itemIDsCSV string
	if refundType == constants.RefundTypePartial {
		if len(input.ItemIDs) == 0 {
			return nil, ErrRefundItemsRequired
		}
		items, err := s.orderRepo.ListItemsByIDs(order.ID, input.ItemIDs)
		if err != nil {
			return nil, err
		}
		if len(items) != len(input.ItemIDs) {
			return nil, ErrRefundItemsRequired
		}
		for _, item := range items {
			amount = amount.Add(item.UnitPrice.MulInt(item.Quantity))
		}
		itemIDsCSV = joinIDs(input.ItemIDs)
	} else {
		amount = order.TotalAmount
	}
	if !amount.IsPositive() {
		return nil, ErrRefundAmountInvalid
	}

	concern := &models.RefundConcern{
		OrderID:       order.ID,
		UserID:        input.UserID,
		Reason:        strings.TrimSpace(input.Reason),
		Description:   strings.TrimSpace(input.Description),
		EvidenceImage: strings.TrimSpace(input.EvidenceImage),
		RefundType:    refundType,
		ItemIDs:       itemIDsCSV,
		Amount:        amount,
		Status:        constants.RefundConcernStatusPending,
	}
	if err := s.refundRepo.CreateConcern(concern); err != nil {
		return nil, err
	}

	logger.Infow("refund_concern_raised",
		"concern_id", concern.ID,
		"order_no", order.OrderNo,
		"refund_type", refundType,
		"amount", amount.String(),
	)
	return concern, nil
}

// GetConcernForOrder 获取订单最近一次申诉及退款流水
func (s *RefundService) GetConcernForOrder(orderID, userID uint) (*models.RefundConcern, []models.RefundHistory, error) {
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, nil, err
	}
	if order == nil {
		return nil, nil, ErrOrderNotFound
	}
	concerns, _, err := s.refundRepo.ListConcerns(repository.RefundConcernListFilter{OrderID: order.ID, PageSize: 1})
	if err != nil {
		return nil, nil, err
	}
	history, err := s.refundRepo.ListHistoryByOrder(order.ID)
	if err != nil {
		return nil, nil, err
	}
	if len(concerns) == 0 {
		return nil, history, nil
	}
	return &concerns[0], history, nil
}

// ListConcernsAdmin 管理端申诉列表
func (s *RefundService) ListConcernsAdmin(filter repository.RefundConcernListFilter) ([]models.RefundConcern, int64, error) {
	return s.refundRepo.ListConcerns(filter)
}

// ApproveRefundInput 批准时管理员可调整的退款参数,零值沿用申诉原值
type ApproveRefundInput struct {
	RefundType string
	Amount     string
	ItemIDs    []uint
}

// ApproveRefund 批准退款。加行锁保证重复批准只产生一条退款流水。
// 管理员可在批准时调整退款类型、金额与涉及订单项,未提供时沿用申诉冻结的值。
func (s *RefundService) ApproveRefund(concernID uint, input ApproveRefundInput) (*models.RefundConcern, error) {
	overrideType := strings.ToLower(strings.TrimSpace(input.RefundType))
	if overrideType != "" && overrideType != constants.RefundTypeFull && overrideType != constants.RefundTypePartial {
		return nil, ErrValidation
	}
	var overrideAmount *models.Money
	if strings.TrimSpace(input.Amount) != "" {
		amount, err := models.NewMoneyFromString(input.Amount)
		if err != nil || !amount.IsPositive() {
			return nil, ErrRefundAmountInvalid
		}
		overrideAmount = &amount
	}

	var approved *models.RefundConcern
	err := s.productRepo.Transaction(func(tx *gorm.DB) error {
		txRefund := s.refundRepo.WithTx(tx)
		txOrder := s.orderRepo.WithTx(tx)

		concern, err := txRefund.GetConcernByIDForUpdate(concernID)
		if err != nil {
			return err
		}
		if concern == nil {
			return ErrConcernNotFound
		}
		if concern.Status != constants.RefundConcernStatusPending {
			return ErrConcernResolved
		}

		refundType := concern.RefundType
		if overrideType != "" {
			refundType = overrideType
		}
		itemIDsCSV := concern.ItemIDs
		if len(input.ItemIDs) > 0 {
			itemIDsCSV = joinIDs(input.ItemIDs)
		}
		if refundType == constants.RefundTypePartial && itemIDsCSV == "" {
			return ErrRefundItemsRequired
		}
		amount := concern.Amount
		if overrideAmount != nil {
			amount = *overrideAmount
		}
		if !amount.IsPositive() {
			return ErrRefundAmountInvalid
		}

		now := time.Now()
		if err := txRefund.UpdateConcern(concern.ID, map[string]interface{}{
			"status":      constants.RefundConcernStatusApproved,
			"refund_type": refundType,
			"item_ids":    itemIDsCSV,
			"amount":      amount,
			"resolved_at": now,
			"updated_at":  now,
		}); err != nil {
			return err
		}

		if err := txRefund.AppendHistory(&models.RefundHistory{
			ConcernID: concern.ID,
			OrderID:   concern.OrderID,
			UserID:    concern.UserID,
			Amount:    amount,
			Status:    constants.RefundHistoryStatusProcessed,
		}); err != nil {
			return err
		}

		if refundType == constants.RefundTypeFull {
			if err := txOrder.UpdateStatus(concern.OrderID, constants.OrderStatusRefunded, map[string]interface{}{
				"updated_at": now,
			}); err != nil {
				return err
			}
		}

		concern.Status = constants.RefundConcernStatusApproved
		concern.RefundType = refundType
		concern.ItemIDs = itemIDsCSV
		concern.Amount = amount
		concern.ResolvedAt = &now
		approved = concern
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrConcernNotFound) || errors.Is(err, ErrConcernResolved) {
			return nil, err
		}
		logger.Errorw("refund_approve_failed", "concern_id", concernID, "error", err)
		return nil, err
	}

	logger.Infow("refund_approved",
		"concern_id", approved.ID,
		"order_id", approved.OrderID,
		"amount", approved.Amount.String(),
	)
	return approved, nil
}

// RejectRefund 驳回退款申诉。与批准使用同一行锁与终态保护,终态不再流转。
func (s *RefundService) RejectRefund(concernID uint) (*models.RefundConcern, error) {
	var rejected *models.RefundConcern
	err := s.productRepo.Transaction(func(tx *gorm.DB) error {
		txRefund := s.refundRepo.WithTx(tx)

		concern, err := txRefund.GetConcernByIDForUpdate(concernID)
		if err != nil {
			return err
		}
		if concern == nil {
			return ErrConcernNotFound
		}
		if concern.Status != constants.RefundConcernStatusPending {
			return ErrConcernResolved
		}

		now := time.Now()
		if err := txRefund.UpdateConcern(concern.ID, map[string]interface{}{
			"status":      constants.RefundConcernStatusRejected,
			"resolved_at": now,
			"updated_at":  now,
		}); err != nil {
			return err
		}

		concern.Status = constants.RefundConcernStatusRejected
		concern.ResolvedAt = &now
		rejected = concern
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("refund_rejected", "concern_id", rejected.ID, "order_id", rejected.OrderID)
	return rejected, nil
}

func joinIDs(ids []uint) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatUint(uint64(id), 10))
	}
	return strings.Join(parts, ",")
}
