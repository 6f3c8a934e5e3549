package api

import (
	"log"
	"strings"
	"time"

	"expensetracker/config"
	"expensetracker/database"
	"expensetracker/middleware"
	"expensetracker/models"
	"expensetracker/service"

	"github.com/gin-gonic/gin"
)

// PasswordResetHandler 密码重置处理器
// 重置令牌是带类型标记的短时效签名令牌，不落库；
// 校验时会比对令牌内嵌邮箱与当前用户邮箱，改邮箱后旧令牌自动作废
type PasswordResetHandler struct {
	cfg          *config.Config
	emailService *service.EmailService
}

// NewPasswordResetHandler 创建密码重置处理器
func NewPasswordResetHandler(cfg *config.Config) *PasswordResetHandler {
	return &PasswordResetHandler{
		cfg:          cfg,
		emailService: service.NewEmailService(&cfg.Email),
	}
}

// RequestResetRequest 请求重置密码
type RequestResetRequest struct {
	Email string `json:"email" binding:"required,email" example:"test@example.com"`
}

// ResetPasswordRequest 重置密码请求
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=50" example:"newpassword123"`
}

// RequestPasswordReset 请求密码重置
// @Summary 请求密码重置
// @Description 通过邮箱请求密码重置。为了安全，无论邮箱是否存在都返回相同的提示；debug 模式下会在响应中附带令牌便于联调
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body RequestResetRequest true "邮箱地址"
// @Success 200 {object} Response "请求成功（无论用户是否存在）"
// @Failure 400 {object} Response "参数错误"
// @Router /api/v1/auth/password/request-reset [post]
func (h *PasswordResetHandler) RequestPasswordReset(c *gin.Context) {
	var req RequestResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "请输入有效的邮箱地址")
		return
	}

	const genericMessage = "如果该邮箱已注册，您将收到密码重置邮件"

	// 查找用户，不存在也返回相同提示，避免暴露邮箱是否注册
	var user models.User
	if err := database.DB.Where("email = ?", strings.TrimSpace(req.Email)).First(&user).Error; err != nil {
		SuccessWithMessage(c, genericMessage, nil)
		return
	}

	token, expiresAt, err := middleware.GenerateResetToken(&user)
	if err != nil {
		InternalError(c, "生成重置令牌失败")
		return
	}

	// 发送重置邮件（未启用邮件服务时跳过，仅记录日志）
	if h.emailService.Enabled() {
		resetLink := h.cfg.Server.BaseURL + "/#/reset-password?token=" + token
		if err := h.emailService.SendPasswordResetEmail(user.Email, user.Name, resetLink); err != nil {
			log.Printf("发送密码重置邮件失败 (user_id=%d): %v", user.ID, err)
		}
	}

	// debug 模式下回显令牌，便于没有邮件服务的本地联调；release 模式绝不回显
	if h.cfg.Server.Mode == "debug" {
		SuccessWithMessage(c, genericMessage, gin.H{
			"token":      token,
			"expires_at": expiresAt.Format(time.RFC3339),
		})
		return
	}

	SuccessWithMessage(c, genericMessage, nil)
}

// ResetPassword 重置密码
// @Summary 重置密码
// @Description 使用有效的重置令牌设置新密码。令牌过期、被篡改、类型不符或内嵌邮箱与当前邮箱不一致都会被拒绝
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body ResetPasswordRequest true "重置密码信息"
// @Success 200 {object} Response "密码重置成功"
// @Failure 400 {object} Response "参数错误或令牌无效"
// @Router /api/v1/auth/password/reset [post]
func (h *PasswordResetHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误")
		return
	}

	// 校验令牌：签名、有效期、类型标记
	userID, email, ok := middleware.ParseResetToken(req.Token)
	if !ok {
		BadRequest(c, "令牌无效或已过期")
		return
	}

	// 按令牌内嵌的用户ID重新加载用户
	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		BadRequest(c, "令牌无效或已过期")
		return
	}

	// 令牌签发后邮箱被修改过则拒绝（不区分大小写比对）
	if !strings.EqualFold(email, user.Email) {
		BadRequest(c, "令牌无效或已过期")
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

	SuccessWithMessage(c, "密码重置成功，请使用新密码登录", nil)
}
