package service

import (
	"strings"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
)

// DashboardService 管理端仪表盘服务
type DashboardService struct {
	dashboardRepo repository.DashboardRepository
}

// NewDashboardService 创建仪表盘服务
func NewDashboardService(dashboardRepo repository.DashboardRepository) *DashboardService {
	return &DashboardService{dashboardRepo: dashboardRepo}
}

// DashboardOverview 仪表盘总览
type DashboardOverview struct {
	OrdersTotal     int64                                   `json:"orders_total"`
	OrdersThisMonth int64                                   `json:"orders_this_month"`
	OrdersPending   int64                                   `json:"orders_pending"`
	OrdersRefunded  int64                                   `json:"orders_refunded"`
	ConcernsPending int64                                   `json:"concerns_pending"`
	EarningsTotal   float64                                 `json:"earnings_total"`
	EarningsMonth   float64                                 `json:"earnings_month"`
	MonthlyEarnings []repository.DashboardMonthlyEarningRow `json:"monthly_earnings"`
	RecentRefunds   []models.RefundHistory                  `json:"recent_refunds"`
}

// TransactionSummary 区间交易汇总
type TransactionSummary struct {
	Range    string  `json:"range"`
	StartAt  string  `json:"start_at"`
	EndAt    string  `json:"end_at"`
	Orders   int64   `json:"orders"`
	Earnings float64 `json:"earnings"`
	Refunded float64 `json:"refunded"`
}

// GetOverview 获取仪表盘总览
func (s *DashboardService) GetOverview() (*DashboardOverview, error) {
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
	yearEnd := yearStart.AddDate(1, 0, 0)

	row, err := s.dashboardRepo.GetOverview(monthStart)
	if err != nil {
		return nil, err
	}
	monthly, err := s.dashboardRepo.GetMonthlyEarnings(yearStart, yearEnd)
	if err != nil {
		return nil, err
	}
	refunds, err := s.dashboardRepo.ListRecentRefunds(6)
	if err != nil {
		return nil, err
	}

	return &DashboardOverview{
		OrdersTotal:     row.OrdersTotal,
		OrdersThisMonth: row.OrdersThisMonth,
		OrdersPending:   row.OrdersPending,
		OrdersRefunded:  row.OrdersRefunded,
		ConcernsPending: row.ConcernsPending,
		EarningsTotal:   row.EarningsTotal,
		EarningsMonth:   row.EarningsMonth,
		MonthlyEarnings: monthly,
		RecentRefunds:   refunds,
	}, nil
}

// GetTransactions 按预设区间获取交易汇总
func (s *DashboardService) GetTransactions(rangeName string) (*TransactionSummary, error) {
	rangeName = strings.TrimSpace(rangeName)
	startAt, endAt, ok := resolveTxnRange(rangeName, time.Now())
	if !ok {
		return nil, ErrValidation
	}
	return s.sumTransactions(rangeName, startAt, endAt)
}

// GetTransactionsBetween 按自定义日期区间获取交易汇总(日期格式 2006-01-02,右端含当天)
func (s *DashboardService) GetTransactionsBetween(start, end string) (*TransactionSummary, error) {
	startAt, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(start), time.Local)
	if err != nil {
		return nil, ErrValidation
	}
	endDay, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(end), time.Local)
	if err != nil {
		return nil, ErrValidation
	}
	endAt := endDay.AddDate(0, 0, 1)
	if !startAt.Before(endAt) {
		return nil, ErrValidation
	}
	return s.sumTransactions("custom", startAt, endAt)
}

func (s *DashboardService) sumTransactions(rangeName string, startAt, endAt time.Time) (*TransactionSummary, error) {
	row, err := s.dashboardRepo.SumTransactions(startAt, endAt)
	if err != nil {
		return nil, err
	}
	return &TransactionSummary{
		Range:    rangeName,
		StartAt:  startAt.Format(time.RFC3339),
		EndAt:    endAt.Format(time.RFC3339),
		Orders:   row.Orders,
		Earnings: row.Earnings,
		Refunded: row.Refunded,
	}, nil
}

func resolveTxnRange(name string, now time.Time) (time.Time, time.Time, bool) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch name {
	case constants.TxnRangeToday:
		return dayStart, dayStart.AddDate(0, 0, 1), true
	case constants.TxnRangeWeek:
		offset := int(now.Weekday())
		weekStart := dayStart.AddDate(0, 0, -offset)
		return weekStart, weekStart.AddDate(0, 0, 7), true
	case constants.TxnRangeMonth:
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return monthStart, monthStart.AddDate(0, 1, 0), true
	case constants.TxnRangeYear:
		yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		return yearStart, yearStart.AddDate(1, 0, 0), true
	case constants.TxnRangeLastYear:
		yearStart := time.Date(now.Year()-1, 1, 1, 0, 0, 0, 0, now.Location())
		return yearStart, yearStart.AddDate(1, 0, 0), true
	}
	return time.Time{}, time.Time{}, false
}
