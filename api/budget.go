package api

import (
	"strconv"
	"strings"

	"expensetracker/database"
	"expensetracker/middleware"
	"expensetracker/models"

	"github.com/gin-gonic/gin"
)

// BudgetHandler 预算处理器
type BudgetHandler struct{}

// NewBudgetHandler 创建预算处理器
func NewBudgetHandler() *BudgetHandler {
	return &BudgetHandler{}
}

// BudgetRequest 预算创建/更新请求
// 两种形态二选一：category_id 非空为类别预算；category_id 为空时 name 必填，表示月度总预算
type BudgetRequest struct {
	CategoryID *uint   `json:"category_id" example:"1"`
	Name       string  `json:"name" binding:"omitempty,max=50" example:"月度总预算"`
	Amount     float64 `json:"amount" binding:"required,gt=0" example:"3000.00"`
}

// validate 校验预算形态，并确认关联类别属于当前用户
func (r *BudgetRequest) validate(c *gin.Context, userID uint) bool {
	if r.CategoryID == nil {
		if strings.TrimSpace(r.Name) == "" {
			BadRequest(c, "总预算必须填写名称")
			return false
		}
		return true
	}

	var category models.Category
	if err := database.DB.Where("id = ? AND user_id = ?", *r.CategoryID, userID).First(&category).Error; err != nil {
		BadRequest(c, "无效的消费类别")
		return false
	}
	return true
}

// List 获取预算列表
// @Summary 获取预算列表
// @Description 获取当前用户的全部预算（类别预算与月度总预算）
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.Budget} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/budgets [get]
func (h *BudgetHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var budgets []models.Budget
	if err := database.DB.Where("user_id = ?", userID).Order("id ASC").Find(&budgets).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, budgets)
}

// Get 获取单个预算
// @Summary 获取单个预算
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "预算ID"
// @Success 200 {object} Response{data=models.Budget} "获取成功"
// @Failure 404 {object} Response "预算不存在"
// @Router /api/v1/budgets/{id} [get]
func (h *BudgetHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var budget models.Budget
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&budget).Error; err != nil {
		NotFound(c, "预算不存在")
		return
	}

	Success(c, budget)
}

// Create 创建预算
// @Summary 创建预算
// @Description 创建类别预算或月度总预算。预算仅作展示，不做超支拦截
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body BudgetRequest true "预算信息"
// @Success 200 {object} Response{data=models.Budget} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/budgets [post]
func (h *BudgetHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req BudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	if !req.validate(c, userID) {
		return
	}

	budget := models.Budget{
		UserID:     userID,
		CategoryID: req.CategoryID,
		Name:       strings.TrimSpace(req.Name),
		Amount:     req.Amount,
	}

	if err := database.DB.Create(&budget).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建预算失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", budget)
}

// Update 更新预算
// @Summary 更新预算
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "预算ID"
// @Param request body BudgetRequest true "预算信息"
// @Success 200 {object} Response{data=models.Budget} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 404 {object} Response "预算不存在"
// @Router /api/v1/budgets/{id} [put]
func (h *BudgetHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var budget models.Budget
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&budget).Error; err != nil {
		NotFound(c, "预算不存在")
		return
	}

	var req BudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	if !req.validate(c, userID) {
		return
	}

	updates := map[string]interface{}{
		"category_id": req.CategoryID,
		"name":        strings.TrimSpace(req.Name),
		"amount":      req.Amount,
	}
	if err := database.DB.Model(&budget).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	database.DB.First(&budget, budget.ID)
	SuccessWithMessage(c, "更新成功", budget)
}

// Delete 删除预算
// @Summary 删除预算
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "预算ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "预算不存在"
// @Router /api/v1/budgets/{id} [delete]
func (h *BudgetHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var budget models.Budget
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&budget).Error; err != nil {
		NotFound(c, "预算不存在")
		return
	}

	if err := database.DB.Delete(&budget).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}
