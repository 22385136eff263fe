package repository

import (
	"errors"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RefundRepository 退款申诉与流水数据访问接口
type RefundRepository interface {
	CreateConcern(concern *models.RefundConcern) error
	GetConcernByID(id uint) (*models.RefundConcern, error)
	GetConcernByIDForUpdate(id uint) (*models.RefundConcern, error)
	GetOpenConcernByOrder(orderID uint) (*models.RefundConcern, error)
	HasConcernForOrder(orderID uint) (bool, error)
	ListConcerns(filter RefundConcernListFilter) ([]models.RefundConcern, int64, error)
	UpdateConcern(id uint, updates map[string]interface{}) error
	AppendHistory(entry *models.RefundHistory) error
	ListHistoryByOrder(orderID uint) ([]models.RefundHistory, error)
	CountHistoryByConcern(concernID uint) (int64, error)
	WithTx(tx *gorm.DB) *GormRefundRepository
}

// GormRefundRepository GORM 实现
type GormRefundRepository struct {
	db *gorm.DB
}

// NewRefundRepository 创建退款仓库
func NewRefundRepository(db *gorm.DB) *GormRefundRepository {
	return &GormRefundRepository{db: db}
}

// WithTx 绑定事务
func (r *GormRefundRepository) WithTx(tx *gorm.DB) *GormRefundRepository {
	if tx == nil {
		return r
	}
	return &GormRefundRepository{db: tx}
}

// CreateConcern 创建退款申诉
func (r *GormRefundRepository) CreateConcern(concern *models.RefundConcern) error {
	return r.db.Create(concern).Error
}

// GetConcernByID 根据 ID 获取申诉
func (r *GormRefundRepository) GetConcernByID(id uint) (*models.RefundConcern, error) {
	var concern models.RefundConcern
	if err := r.db.Preload("Order").First(&concern, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &concern, nil
}

// GetConcernByIDForUpdate 加行锁获取申诉（审批事务内二次校验用）
func (r *GormRefundRepository) GetConcernByIDForUpdate(id uint) (*models.RefundConcern, error) {
	var concern models.RefundConcern
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&concern, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &concern, nil
}

// GetOpenConcernByOrder 获取订单下未处理的申诉
func (r *GormRefundRepository) GetOpenConcernByOrder(orderID uint) (*models.RefundConcern, error) {
	var concern models.RefundConcern
	err := r.db.Where("order_id = ? AND status = ?", orderID, constants.RefundConcernStatusPending).First(&concern).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &concern, nil
}

// HasConcernForOrder 订单是否存在任何申诉记录
func (r *GormRefundRepository) HasConcernForOrder(orderID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.RefundConcern{}).Where("order_id = ?", orderID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListConcerns 申诉列表
func (r *GormRefundRepository) ListConcerns(filter RefundConcernListFilter) ([]models.RefundConcern, int64, error) {
	query := r.db.Model(&models.RefundConcern{})
	if filter.OrderID > 0 {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if filter.UserID > 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var concerns []models.RefundConcern
	if err := query.Preload("Order").Preload("User").Order("created_at DESC").Find(&concerns).Error; err != nil {
		return nil, 0, err
	}
	return concerns, total, nil
}

// UpdateConcern 更新申诉字段
func (r *GormRefundRepository) UpdateConcern(id uint, updates map[string]interface{}) error {
	return r.db.Model(&models.RefundConcern{}).Where("id = ?", id).Updates(updates).Error
}

// AppendHistory 追加退款流水
func (r *GormRefundRepository) AppendHistory(entry *models.RefundHistory) error {
	return r.db.Create(entry).Error
}

// ListHistoryByOrder 订单退款流水
func (r *GormRefundRepository) ListHistoryByOrder(orderID uint) ([]models.RefundHistory, error) {
	var entries []models.RefundHistory
	if err := r.db.Where("order_id = ?", orderID).Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// CountHistoryByConcern 指定申诉的流水条数
func (r *GormRefundRepository) CountHistoryByConcern(concernID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.RefundHistory{}).Where("concern_id = ?", concernID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
