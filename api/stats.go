package api

import (
	"time"

	"expensetracker/database"
	"expensetracker/models"

	"github.com/gin-gonic/gin"
)

// StatsHandler 公开统计处理器
// 提供无需登录的全站汇总数据，用于首页展示，不暴露任何单条记录
type StatsHandler struct{}

// NewStatsHandler 创建公开统计处理器
func NewStatsHandler() *StatsHandler {
	return &StatsHandler{}
}

// MonthlyTrendPoint 月度趋势数据点
type MonthlyTrendPoint struct {
	Month string  `json:"month"` // YYYY-MM
	Total float64 `json:"total"`
}

// PublicStats 公开统计数据
type PublicStats struct {
	TotalSpent       float64             `json:"total_spent"`
	MonthSpent       float64             `json:"month_spent"`
	MonthChange      float64             `json:"month_change"` // 环比变化率，上月为零时取 0
	TransactionCount int64               `json:"transaction_count"`
	ActiveCategories int64               `json:"active_categories"`
	TotalBalance     float64             `json:"total_balance"`
	ByCategory       []CategoryStat      `json:"by_category"`
	MonthlyTrend     []MonthlyTrendPoint `json:"monthly_trend"`
}

// GetStats 获取公开统计
// @Summary 获取公开统计
// @Description 获取全站汇总统计：消费总额、本月消费及环比、交易笔数、活跃类别数、账户总余额、类别分布与近六个月趋势
// @Tags 统计
// @Accept json
// @Produce json
// @Success 200 {object} Response{data=PublicStats} "获取成功"
// @Router /api/stats [get]
func (h *StatsHandler) GetStats(c *gin.Context) {
	var stats PublicStats

	type sumRow struct {
		Total float64
	}

	var totalRow sumRow
	if err := database.DB.Model(&models.Expense{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Scan(&totalRow).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "统计失败"))
		return
	}
	stats.TotalSpent = totalRow.Total

	if err := database.DB.Model(&models.Expense{}).Count(&stats.TransactionCount).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "统计失败"))
		return
	}

	// 本月与上月消费，计算环比变化率
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastMonthStart := monthStart.AddDate(0, -1, 0)

	var monthRow sumRow
	if err := database.DB.Model(&models.Expense{}).
		Where("expense_date >= ?", monthStart).
		Select("COALESCE(SUM(amount), 0) AS total").
		Scan(&monthRow).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "统计失败"))
		return
	}
	stats.MonthSpent = monthRow.Total

	var lastMonthRow sumRow
	if err := database.DB.Model(&models.Expense{}).
		Where("expense_date >= ? AND expense_date < ?", lastMonthStart, monthStart).
		Select("COALESCE(SUM(amount), 0) AS total").
		Scan(&lastMonthRow).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "统计失败"))
		return
	}
	if lastMonthRow.Total > 0 {
		stats.MonthChange = (stats.MonthSpent - lastMonthRow.Total) / lastMonthRow.Total
	}

	// 活跃类别数：有消费记录的类别
	if err := database.DB.Model(&models.Expense{}).
		Distinct("category_id").
		Count(&stats.ActiveCategories).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "统计失败"))
		return
	}

	var balanceRow sumRow
	if err := database.DB.Model(&models.Account{}).
		Select("COALESCE(SUM(current_balance), 0) AS total").
		Scan(&balanceRow).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "统计失败"))
		return
	}
	stats.TotalBalance = balanceRow.Total

	if err := database.DB.Model(&models.Expense{}).
		Select("expenses.category_id, categories.name AS category_name, COALESCE(SUM(expenses.amount), 0) AS total, COUNT(*) AS count").
		Joins("LEFT JOIN categories ON categories.id = expenses.category_id").
		Group("expenses.category_id, categories.name").
		Order("total DESC").
		Scan(&stats.ByCategory).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "统计失败"))
		return
	}
	if stats.ByCategory == nil {
		stats.ByCategory = []CategoryStat{}
	}

	// 近六个月趋势，缺数据的月份补零
	trendStart := monthStart.AddDate(0, -5, 0)
	type trendRow struct {
		Month string
		Total float64
	}
	var rows []trendRow
	if err := database.DB.Model(&models.Expense{}).
		Where("expense_date >= ?", trendStart).
		Select("DATE_FORMAT(expense_date, '%Y-%m') AS month, COALESCE(SUM(amount), 0) AS total").
		Group("month").
		Order("month ASC").
		Scan(&rows).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "统计失败"))
		return
	}

	totals := make(map[string]float64, len(rows))
	for _, r := range rows {
		totals[r.Month] = r.Total
	}
	stats.MonthlyTrend = make([]MonthlyTrendPoint, 0, 6)
	for i := 0; i < 6; i++ {
		m := trendStart.AddDate(0, i, 0).Format("2006-01")
		stats.MonthlyTrend = append(stats.MonthlyTrend, MonthlyTrendPoint{
			Month: m,
			Total: totals[m],
		})
	}

	Success(c, stats)
}
