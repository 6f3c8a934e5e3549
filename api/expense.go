package api

import (
	"strconv"
	"time"

	"expensetracker/database"
	"expensetracker/middleware"
	"expensetracker/models"
	"expensetracker/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ExpenseHandler 消费记录处理器
// 写操作全部委托给 service.ExpenseService，保证余额核销与记录变更同事务
type ExpenseHandler struct {
	svc *service.ExpenseService
}

// NewExpenseHandler 创建消费记录处理器
func NewExpenseHandler() *ExpenseHandler {
	return &ExpenseHandler{
		svc: service.NewExpenseService(database.DB),
	}
}

// ExpenseRequest 消费记录创建/更新请求
type ExpenseRequest struct {
	CategoryID      uint    `json:"category_id" binding:"required" example:"1"`
	PaymentMethodID uint    `json:"payment_method_id" binding:"required" example:"1"`
	AccountID       *uint   `json:"account_id" example:"1"` // 可选，关联账户后会核销余额
	Amount          float64 `json:"amount" binding:"required,gt=0" example:"38.50"`
	ExpenseDate     string  `json:"expense_date" binding:"required" example:"2025-01-15"`
	Description     string  `json:"description" binding:"max=200" example:"午餐"`
}

// toInput 转换为服务层参数，并校验类别、支付方式归属当前用户
func (r *ExpenseRequest) toInput(c *gin.Context, userID uint) (service.ExpenseInput, bool) {
	expenseDate, err := time.Parse("2006-01-02", r.ExpenseDate)
	if err != nil {
		BadRequest(c, "日期格式错误，应为 YYYY-MM-DD")
		return service.ExpenseInput{}, false
	}

	var category models.Category
	if err := database.DB.Where("id = ? AND user_id = ?", r.CategoryID, userID).First(&category).Error; err != nil {
		BadRequest(c, "无效的消费类别")
		return service.ExpenseInput{}, false
	}

	var method models.PaymentMethod
	if err := database.DB.Where("id = ? AND user_id = ?", r.PaymentMethodID, userID).First(&method).Error; err != nil {
		BadRequest(c, "无效的支付方式")
		return service.ExpenseInput{}, false
	}

	return service.ExpenseInput{
		UserID:          userID,
		CategoryID:      r.CategoryID,
		PaymentMethodID: r.PaymentMethodID,
		AccountID:       r.AccountID,
		Amount:          r.Amount,
		ExpenseDate:     expenseDate,
		Description:     r.Description,
	}, true
}

// List 获取消费记录列表
// @Summary 获取消费记录列表
// @Description 分页获取当前用户的消费记录，支持按类别、账户和日期区间过滤
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Param category_id query int false "类别ID"
// @Param account_id query int false "账户ID"
// @Param start_date query string false "开始日期 YYYY-MM-DD"
// @Param end_date query string false "结束日期 YYYY-MM-DD"
// @Success 200 {object} PageResponse{data=[]models.Expense} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/expenses [get]
func (h *ExpenseHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	query := database.DB.Model(&models.Expense{}).Where("user_id = ?", userID)

	if categoryID := c.Query("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	if accountID := c.Query("account_id"); accountID != "" {
		query = query.Where("account_id = ?", accountID)
	}
	if startDate := c.Query("start_date"); startDate != "" {
		if t, err := time.Parse("2006-01-02", startDate); err == nil {
			query = query.Where("expense_date >= ?", t)
		}
	}
	if endDate := c.Query("end_date"); endDate != "" {
		if t, err := time.Parse("2006-01-02", endDate); err == nil {
			// 结束日期取当日末尾，区间为闭区间
			query = query.Where("expense_date < ?", t.AddDate(0, 0, 1))
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	var expenses []models.Expense
	if err := query.
		Preload("Category").
		Preload("PaymentMethod").
		Preload("Account").
		Order("expense_date DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&expenses).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	SuccessPage(c, expenses, total, page, pageSize)
}

// Get 获取单条消费记录
// @Summary 获取单条消费记录
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "消费记录ID"
// @Success 200 {object} Response{data=models.Expense} "获取成功"
// @Failure 404 {object} Response "消费记录不存在"
// @Router /api/v1/expenses/{id} [get]
func (h *ExpenseHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	expense, err := h.svc.Get(c.Request.Context(), uint(id))
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	if expense == nil || expense.UserID != userID {
		NotFound(c, "消费记录不存在")
		return
	}

	Success(c, expense)
}

// Create 创建消费记录
// @Summary 创建消费记录
// @Description 创建消费记录。关联了存在的账户时会从其滚动余额扣减金额；账户已删除则静默跳过余额调整
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ExpenseRequest true "消费记录信息"
// @Success 200 {object} Response{data=models.Expense} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/expenses [post]
func (h *ExpenseHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	input, ok := req.toInput(c, userID)
	if !ok {
		return
	}

	expense, err := h.svc.Create(c.Request.Context(), input)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "创建消费记录失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", expense)
}

// Update 更新消费记录
// @Summary 更新消费记录
// @Description 更新消费记录的全部字段。原账户余额先恢复，再对新账户应用新扣减
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "消费记录ID"
// @Param request body ExpenseRequest true "消费记录信息"
// @Success 200 {object} Response{data=models.Expense} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 404 {object} Response "消费记录不存在"
// @Router /api/v1/expenses/{id} [put]
func (h *ExpenseHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	// 归属校验，避免越权更新他人记录
	existing, err := h.svc.Get(c.Request.Context(), uint(id))
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	if existing == nil || existing.UserID != userID {
		NotFound(c, "消费记录不存在")
		return
	}

	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	input, ok := req.toInput(c, userID)
	if !ok {
		return
	}

	found, err := h.svc.Update(c.Request.Context(), uint(id), input)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}
	if !found {
		NotFound(c, "消费记录不存在")
		return
	}

	expense, err := h.svc.Get(c.Request.Context(), uint(id))
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	SuccessWithMessage(c, "更新成功", expense)
}

// Delete 删除消费记录
// @Summary 删除消费记录
// @Description 删除消费记录，关联账户的余额会恢复被扣减的金额
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "消费记录ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "消费记录不存在"
// @Router /api/v1/expenses/{id} [delete]
func (h *ExpenseHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	existing, err := h.svc.Get(c.Request.Context(), uint(id))
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	if existing == nil || existing.UserID != userID {
		NotFound(c, "消费记录不存在")
		return
	}

	found, err := h.svc.Delete(c.Request.Context(), uint(id))
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}
	if !found {
		NotFound(c, "消费记录不存在")
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}

// CategoryStat 按类别统计结果
type CategoryStat struct {
	CategoryID   uint    `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Total        float64 `json:"total"`
	Count        int64   `json:"count"`
}

// ExpenseStatistics 消费统计结果
type ExpenseStatistics struct {
	TotalAmount float64        `json:"total_amount"`
	TotalCount  int64          `json:"total_count"`
	MonthAmount float64        `json:"month_amount"`
	MonthCount  int64          `json:"month_count"`
	ByCategory  []CategoryStat `json:"by_category"`
}

// Statistics 消费统计
// @Summary 消费统计
// @Description 统计当前用户的消费总额、笔数、本月消费以及按类别的分布，支持日期区间过滤
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param start_date query string false "开始日期 YYYY-MM-DD"
// @Param end_date query string false "结束日期 YYYY-MM-DD"
// @Success 200 {object} Response{data=ExpenseStatistics} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/expenses/statistics [get]
func (h *ExpenseHandler) Statistics(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	base := database.DB.Model(&models.Expense{}).Where("user_id = ?", userID)
	if startDate := c.Query("start_date"); startDate != "" {
		if t, err := time.Parse("2006-01-02", startDate); err == nil {
			base = base.Where("expense_date >= ?", t)
		}
	}
	if endDate := c.Query("end_date"); endDate != "" {
		if t, err := time.Parse("2006-01-02", endDate); err == nil {
			base = base.Where("expense_date < ?", t.AddDate(0, 0, 1))
		}
	}

	var stats ExpenseStatistics

	type totalRow struct {
		Total float64
		Count int64
	}
	var row totalRow
	if err := base.Session(&gorm.Session{}).
		Select("COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Scan(&row).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "统计失败"))
		return
	}
	stats.TotalAmount = row.Total
	stats.TotalCount = row.Count

	// 本月消费（自然月，不受日期区间过滤影响）
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	var monthRow totalRow
	if err := database.DB.Model(&models.Expense{}).
		Where("user_id = ? AND expense_date >= ?", userID, monthStart).
		Select("COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Scan(&monthRow).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "统计失败"))
		return
	}
	stats.MonthAmount = monthRow.Total
	stats.MonthCount = monthRow.Count

	if err := base.Session(&gorm.Session{}).
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

	Success(c, stats)
}
