package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"expensetracker/config"
	"expensetracker/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// TokenTypeSession 会话令牌类型标记
	TokenTypeSession = "session"
	// TokenTypeReset 密码重置令牌类型标记
	// 两种令牌共用签名密钥，靠类型标记互相隔离：重置令牌不能当会话令牌用，反之亦然
	TokenTypeReset = "pwd_reset"

	// clockSkew 校验时允许的时钟偏差
	clockSkew = time.Minute
)

// Claims JWT 声明
type Claims struct {
	UserID    uint   `json:"user_id"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

var (
	jwtSecret       []byte
	jwtIssuer       string
	jwtAudience     string
	sessionDuration time.Duration
	resetDuration   time.Duration
)

// InitJWT 初始化 JWT 签名配置
// 签名密钥未配置时返回错误，调用方应直接终止启动
func InitJWT(cfg *config.Config) error {
	if strings.TrimSpace(cfg.JWT.Secret) == "" {
		return errors.New("jwt.secret 未配置，请通过配置文件或 EXPENSE_JWT_SECRET 设置")
	}
	jwtSecret = []byte(cfg.JWT.Secret)
	jwtIssuer = cfg.JWT.Issuer
	jwtAudience = cfg.JWT.Audience

	sessionDuration = cfg.JWT.ExpireTime
	if sessionDuration <= 0 {
		sessionDuration = 60 * time.Minute
	}
	resetDuration = cfg.JWT.ResetExpireTime
	if resetDuration <= 0 {
		resetDuration = 15 * time.Minute
	}
	return nil
}

// GenerateToken 签发会话令牌，返回令牌字符串与过期时间
func GenerateToken(user *models.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(sessionDuration)

	claims := Claims{
		UserID:    user.ID,
		Name:      user.Name,
		Email:     user.Email,
		TokenType: TokenTypeSession,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    jwtIssuer,
			Audience:  jwt.ClaimStrings{jwtAudience},
			Subject:   fmt.Sprintf("%d", user.ID),
			ID:        strings.ReplaceAll(uuid.NewString(), "-", ""),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// GenerateResetToken 签发密码重置令牌
// 声明只包含用户ID与邮箱，类型标记为 pwd_reset
func GenerateResetToken(user *models.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(resetDuration)

	claims := Claims{
		UserID:    user.ID,
		Email:     user.Email,
		TokenType: TokenTypeReset,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    jwtIssuer,
			Audience:  jwt.ClaimStrings{jwtAudience},
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// parseClaims 解析并校验签名、签发者、受众与有效期
func parseClaims(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(jwtIssuer),
		jwt.WithAudience(jwtAudience),
		jwt.WithLeeway(clockSkew),
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("无效的令牌")
	}
	return claims, nil
}

// ParseToken 解析会话令牌
// 重置令牌在此处会因类型标记不符被拒绝
func ParseToken(tokenString string) (*Claims, error) {
	claims, err := parseClaims(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeSession {
		return nil, errors.New("令牌类型不符")
	}
	return claims, nil
}

// ParseResetToken 解析密码重置令牌
// 任何校验失败（格式错误、过期、签名错误、类型不符）都归结为 ok=false，不向上抛出
func ParseResetToken(tokenString string) (userID uint, email string, ok bool) {
	if strings.TrimSpace(tokenString) == "" {
		return 0, "", false
	}
	claims, err := parseClaims(tokenString)
	if err != nil {
		return 0, "", false
	}
	if claims.TokenType != TokenTypeReset {
		return 0, "", false
	}
	if claims.UserID == 0 || strings.TrimSpace(claims.Email) == "" {
		return 0, "", false
	}
	return claims.UserID, claims.Email, true
}

// JWTAuth JWT 认证中间件
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "请先登录",
			})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "认证格式错误，应为: Bearer <token>",
			})
			c.Abort()
			return
		}

		claims, err := ParseToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "登录已过期，请重新登录",
			})
			c.Abort()
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("userEmail", claims.Email)
		c.Next()
	}
}

// GetCurrentUserID 从上下文获取当前用户ID
func GetCurrentUserID(c *gin.Context) uint {
	if userID, exists := c.Get("userID"); exists {
		if id, ok := userID.(uint); ok {
			return id
		}
	}
	return 0
}
