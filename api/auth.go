package api

import (
	"strings"
	"time"

	"expensetracker/config"
	"expensetracker/database"
	"expensetracker/middleware"
	"expensetracker/models"
	"expensetracker/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	cfg *config.Config
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Name               string `json:"name" binding:"required,min=1,max=50" example:"张三"`
	Email              string `json:"email" binding:"required,email" example:"test@example.com"`
	Password           string `json:"password" binding:"required,min=6,max=50" example:"password123"`
	CurrencyPreference string `json:"currency_preference" binding:"omitempty,max=10" example:"CNY"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"test@example.com"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	UserInfo  models.User `json:"user_info"`
}

// Register 用户注册
// @Summary 用户注册
// @Description 创建新用户账号并直接返回会话令牌
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "注册信息"
// @Success 200 {object} Response{data=LoginResponse} "注册成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 500 {object} Response "服务器错误"
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	email := strings.TrimSpace(req.Email)

	// 检查邮箱是否已被注册
	var existingUser models.User
	if err := database.DB.Where("email = ?", email).First(&existingUser).Error; err == nil {
		BadRequest(c, "该邮箱已被注册")
		return
	}

	// 生成密码哈希
	hashedPassword, err := service.HashPassword(req.Password)
	if err != nil {
		BadRequest(c, "密码不能为空")
		return
	}

	currency := req.CurrencyPreference
	if currency == "" {
		currency = "CNY"
	}

	user := models.User{
		Name:               req.Name,
		Email:              email,
		Password:           hashedPassword,
		CurrencyPreference: currency,
	}

	if err := database.DB.Create(&user).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建用户失败"))
		return
	}

	token, expiresAt, err := middleware.GenerateToken(&user)
	if err != nil {
		InternalError(c, "生成 token 失败")
		return
	}

	SuccessWithMessage(c, "注册成功", LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		UserInfo:  user,
	})
}

// Login 用户登录
// @Summary 用户登录
// @Description 邮箱 + 密码登录，获取 JWT 会话令牌
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body LoginRequest true "登录信息"
// @Success 200 {object} Response{data=LoginResponse} "登录成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "邮箱或密码错误"
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	var user models.User
	if err := database.DB.Where("email = ?", strings.TrimSpace(req.Email)).First(&user).Error; err != nil {
		Unauthorized(c, "邮箱或密码错误")
		return
	}

	// 验证密码
	if !service.VerifyPassword(req.Password, user.Password) {
		Unauthorized(c, "邮箱或密码错误")
		return
	}

	token, expiresAt, err := middleware.GenerateToken(&user)
	if err != nil {
		InternalError(c, "生成 token 失败")
		return
	}

	Success(c, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		UserInfo:  user,
	})
}

// GetProfile 获取用户信息
// @Summary 获取当前用户信息
// @Description 获取当前登录用户的详细信息
// @Tags 认证
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=models.User} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/auth/profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		NotFound(c, "用户不存在")
		return
	}

	Success(c, user)
}

// UpdateProfileRequest 更新个人信息请求
type UpdateProfileRequest struct {
	Name               string `json:"name" binding:"required,min=1,max=50" example:"张三"`
	Email              string `json:"email" binding:"required,email" example:"test@example.com"`
	CurrencyPreference string `json:"currency_preference" binding:"required,max=10" example:"CNY"`
}

// UpdateProfile 更新个人信息
// @Summary 更新当前用户信息
// @Description 更新姓名、邮箱与货币偏好。更换邮箱会让已签发的密码重置令牌失效
// @Tags 认证
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "个人信息"
// @Success 200 {object} Response{data=models.User} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/auth/profile [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		NotFound(c, "用户不存在")
		return
	}

	email := strings.TrimSpace(req.Email)

	// 邮箱变更时检查新邮箱是否已被其他账号占用
	if !strings.EqualFold(email, user.Email) {
		var other models.User
		if err := database.DB.Where("email = ? AND id <> ?", email, userID).First(&other).Error; err == nil {
			BadRequest(c, "该邮箱已被注册")
			return
		}
	}

	updates := map[string]interface{}{
		"name":                req.Name,
		"email":               email,
		"currency_preference": req.CurrencyPreference,
	}
	if err := database.DB.Model(&user).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	database.DB.First(&user, userID)
	SuccessWithMessage(c, "更新成功", user)
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required" example:"oldpassword123"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=50" example:"newpassword123"`
}

// ChangePassword 修改密码
// @Summary 修改密码
// @Description 校验原密码后更新为新密码
// @Tags 认证
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChangePasswordRequest true "密码信息"
// @Success 200 {object} Response "修改成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "原密码错误"
// @Router /api/v1/auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		NotFound(c, "用户不存在")
		return
	}

	// 验证旧密码
	if !service.VerifyPassword(req.OldPassword, user.Password) {
		Unauthorized(c, "原密码错误")
		return
	}

	hashedPassword, err := service.HashPassword(req.NewPassword)
	if err != nil {
		BadRequest(c, "密码不能为空")
		return
	}

	if err := database.DB.Model(&user).Update("password", hashedPassword).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新密码失败"))
		return
	}

	SuccessWithMessage(c, "密码修改成功", nil)
}
