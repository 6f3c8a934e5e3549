package api

import (
	"strconv"
	"strings"

	"expensetracker/database"
	"expensetracker/middleware"
	"expensetracker/models"

	"github.com/gin-gonic/gin"
)

// PaymentMethodHandler 支付方式处理器
type PaymentMethodHandler struct{}

// NewPaymentMethodHandler 创建支付方式处理器
func NewPaymentMethodHandler() *PaymentMethodHandler {
	return &PaymentMethodHandler{}
}

// PaymentMethodRequest 支付方式创建/更新请求
type PaymentMethodRequest struct {
	Name string `json:"name" binding:"required,min=1,max=50" example:"微信支付"`
}

// List 获取支付方式列表
// @Summary 获取支付方式列表
// @Description 获取当前用户的全部支付方式
// @Tags 支付方式
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.PaymentMethod} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/payment-methods [get]
func (h *PaymentMethodHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var methods []models.PaymentMethod
	if err := database.DB.Where("user_id = ?", userID).Order("id ASC").Find(&methods).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, methods)
}

// Get 获取单个支付方式
// @Summary 获取单个支付方式
// @Tags 支付方式
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "支付方式ID"
// @Success 200 {object} Response{data=models.PaymentMethod} "获取成功"
// @Failure 404 {object} Response "支付方式不存在"
// @Router /api/v1/payment-methods/{id} [get]
func (h *PaymentMethodHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var method models.PaymentMethod
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&method).Error; err != nil {
		NotFound(c, "支付方式不存在")
		return
	}

	Success(c, method)
}

// Create 创建支付方式
// @Summary 创建支付方式
// @Tags 支付方式
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PaymentMethodRequest true "支付方式信息"
// @Success 200 {object} Response{data=models.PaymentMethod} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/payment-methods [post]
func (h *PaymentMethodHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req PaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		BadRequest(c, "支付方式名称不能为空")
		return
	}

	var existing models.PaymentMethod
	if err := database.DB.Where("user_id = ? AND name = ?", userID, name).First(&existing).Error; err == nil {
		BadRequest(c, "支付方式已存在")
		return
	}

	method := models.PaymentMethod{
		UserID: userID,
		Name:   name,
	}

	if err := database.DB.Create(&method).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建支付方式失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", method)
}

// Update 更新支付方式
// @Summary 更新支付方式
// @Tags 支付方式
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "支付方式ID"
// @Param request body PaymentMethodRequest true "支付方式信息"
// @Success 200 {object} Response{data=models.PaymentMethod} "更新成功"
// @Failure 404 {object} Response "支付方式不存在"
// @Router /api/v1/payment-methods/{id} [put]
func (h *PaymentMethodHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var method models.PaymentMethod
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&method).Error; err != nil {
		NotFound(c, "支付方式不存在")
		return
	}

	var req PaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		BadRequest(c, "支付方式名称不能为空")
		return
	}

	if err := database.DB.Model(&method).Update("name", name).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	database.DB.First(&method, method.ID)
	SuccessWithMessage(c, "更新成功", method)
}

// Delete 删除支付方式
// @Summary 删除支付方式
// @Tags 支付方式
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "支付方式ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "支付方式不存在"
// @Router /api/v1/payment-methods/{id} [delete]
func (h *PaymentMethodHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var method models.PaymentMethod
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&method).Error; err != nil {
		NotFound(c, "支付方式不存在")
		return
	}

	if err := database.DB.Delete(&method).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}
