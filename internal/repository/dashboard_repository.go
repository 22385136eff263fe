package repository

import (
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

// DashboardRepository 仪表盘聚合查询接口
// 说明：仅聚合统计数据，不承载业务规则。
type DashboardRepository interface {
	GetOverview(monthStart time.Time) (DashboardOverviewRow, error)
	GetMonthlyEarnings(yearStart, yearEnd time.Time) ([]DashboardMonthlyEarningRow, error)
	SumTransactions(startAt, endAt time.Time) (DashboardTransactionSummaryRow, error)
	ListRecentRefunds(limit int) ([]models.RefundHistory, error)
}

// DashboardOverviewRow 仪表盘总览原始统计结果
type DashboardOverviewRow struct {
	OrdersTotal     int64
	OrdersThisMonth int64
	OrdersPending   int64
	OrdersRefunded  int64
	ConcernsPending int64
	EarningsTotal   float64
	EarningsMonth   float64
}

// DashboardMonthlyEarningRow 月度营收统计
type DashboardMonthlyEarningRow struct {
	Month    string
	Orders   int64
	Earnings float64
}

// DashboardTransactionSummaryRow 区间交易汇总
type DashboardTransactionSummaryRow struct {
	Orders   int64
	Earnings float64
	Refunded float64
}

// GormDashboardRepository GORM 仪表盘聚合实现
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository 创建仪表盘仓库
func NewDashboardRepository(db *gorm.DB) *GormDashboardRepository {
	return &GormDashboardRepository{db: db}
}

// earningBase 计入营收的订单（排除已退款）
func (r *GormDashboardRepository) earningBase() *gorm.DB {
	return r.db.Model(&models.Order{}).Where("status <> ?", constants.OrderStatusRefunded)
}

// GetOverview 获取总览统计
func (r *GormDashboardRepository) GetOverview(monthStart time.Time) (DashboardOverviewRow, error) {
	result := DashboardOverviewRow{}

	if err := r.db.Model(&models.Order{}).Count(&result.OrdersTotal).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.Order{}).Where("created_at >= ?", monthStart).Count(&result.OrdersThisMonth).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.Order{}).Where("status = ?", constants.OrderStatusPending).Count(&result.OrdersPending).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.Order{}).Where("status = ?", constants.OrderStatusRefunded).Count(&result.OrdersRefunded).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.RefundConcern{}).Where("status = ?", constants.RefundConcernStatusPending).Count(&result.ConcernsPending).Error; err != nil {
		return result, err
	}
	if err := r.earningBase().Select("COALESCE(SUM(total_amount), 0)").Scan(&result.EarningsTotal).Error; err != nil {
		return result, err
	}
	if err := r.earningBase().Where("created_at >= ?", monthStart).Select("COALESCE(SUM(total_amount), 0)").Scan(&result.EarningsMonth).Error; err != nil {
		return result, err
	}
	return result, nil
}

// GetMonthlyEarnings 按月统计营收（给定年度区间）
func (r *GormDashboardRepository) GetMonthlyEarnings(yearStart, yearEnd time.Time) ([]DashboardMonthlyEarningRow, error) {
	var rows []DashboardMonthlyEarningRow
	expr := monthExpr(r.db, "created_at")
	err := r.earningBase().
		Where("created_at >= ? AND created_at < ?", yearStart, yearEnd).
		Select(expr + " AS month, COUNT(*) AS orders, COALESCE(SUM(total_amount), 0) AS earnings").
		Group(expr).
		Order("month ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SumTransactions 统计区间内订单数、营收与退款额
func (r *GormDashboardRepository) SumTransactions(startAt, endAt time.Time) (DashboardTransactionSummaryRow, error) {
	result := DashboardTransactionSummaryRow{}

	if err := r.db.Model(&models.Order{}).
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Count(&result.Orders).Error; err != nil {
		return result, err
	}
	if err := r.earningBase().
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&result.Earnings).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.RefundHistory{}).
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&result.Refunded).Error; err != nil {
		return result, err
	}
	return result, nil
}

// ListRecentRefunds 最近退款流水
func (r *GormDashboardRepository) ListRecentRefunds(limit int) ([]models.RefundHistory, error) {
	if limit <= 0 {
		limit = 10
	}
	var entries []models.RefundHistory
	if err := r.db.Order("created_at DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
