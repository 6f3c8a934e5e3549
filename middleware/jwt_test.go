package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"expensetracker/config"
	"expensetracker/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initJWTTestConfig(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "debug"},
		JWT: config.JWTConfig{
			Secret:          "test-jwt-secret-key",
			Issuer:          "expensetracker",
			Audience:        "expensetracker",
			ExpireTime:      time.Hour,
			ResetExpireTime: 15 * time.Minute,
		},
	}
	config.GlobalConfig = cfg
	require.NoError(t, InitJWT(cfg))
}

func testUser() *models.User {
	return &models.User{
		ID:    1,
		Name:  "测试用户",
		Email: "test@example.com",
	}
}

func TestInitJWT_EmptySecret(t *testing.T) {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "   "}}
	err := InitJWT(cfg)
	assert.Error(t, err)
}

func TestGenerateToken(t *testing.T) {
	initJWTTestConfig(t)
	defer func() { config.GlobalConfig = nil }()

	token, expiresAt, err := GenerateToken(testUser())
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	// 可解析，且声明完整
	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(1), claims.UserID)
	assert.Equal(t, "测试用户", claims.Name)
	assert.Equal(t, "test@example.com", claims.Email)
	assert.Equal(t, TokenTypeSession, claims.TokenType)
	assert.Equal(t, "1", claims.Subject)
	assert.Len(t, claims.ID, 32)
	assert.NotContains(t, claims.ID, "-")
}

func TestGenerateToken_UniqueJTI(t *testing.T) {
	initJWTTestConfig(t)
	defer func() { config.GlobalConfig = nil }()

	t1, _, err := GenerateToken(testUser())
	require.NoError(t, err)
	t2, _, err := GenerateToken(testUser())
	require.NoError(t, err)

	c1, err := ParseToken(t1)
	require.NoError(t, err)
	c2, err := ParseToken(t2)
	require.NoError(t, err)
	assert.NotEqual(t, c1.ID, c2.ID)
}

func TestParseToken_Invalid(t *testing.T) {
	initJWTTestConfig(t)
	defer func() { config.GlobalConfig = nil }()

	// 空字符串
	_, err := ParseToken("")
	assert.Error(t, err)

	// 无效格式
	_, err = ParseToken("not.a.valid.jwt")
	assert.Error(t, err)

	// 签名密钥不一致
	token, _, err := GenerateToken(testUser())
	require.NoError(t, err)
	jwtSecret = []byte("another-secret")
	_, err = ParseToken(token)
	assert.Error(t, err)
}

func TestParseToken_RejectsResetToken(t *testing.T) {
	initJWTTestConfig(t)
	defer func() { config.GlobalConfig = nil }()

	// 重置令牌不能当会话令牌用
	resetToken, _, err := GenerateResetToken(testUser())
	require.NoError(t, err)
	_, err = ParseToken(resetToken)
	assert.Error(t, err)
}

func TestGenerateResetToken(t *testing.T) {
	initJWTTestConfig(t)
	defer func() { config.GlobalConfig = nil }()

	token, expiresAt, err := GenerateResetToken(testUser())
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)

	userID, email, ok := ParseResetToken(token)
	assert.True(t, ok)
	assert.Equal(t, uint(1), userID)
	assert.Equal(t, "test@example.com", email)
}

func TestParseResetToken_Invalid(t *testing.T) {
	initJWTTestConfig(t)
	defer func() { config.GlobalConfig = nil }()

	// 空与格式错误都归结为 ok=false
	_, _, ok := ParseResetToken("")
	assert.False(t, ok)
	_, _, ok = ParseResetToken("not.a.jwt")
	assert.False(t, ok)

	// 会话令牌不能当重置令牌用
	sessionToken, _, err := GenerateToken(testUser())
	require.NoError(t, err)
	_, _, ok = ParseResetToken(sessionToken)
	assert.False(t, ok)

	// 篡改后签名失效
	resetToken, _, err := GenerateResetToken(testUser())
	require.NoError(t, err)
	_, _, ok = ParseResetToken(resetToken + "x")
	assert.False(t, ok)
}

func TestParseResetToken_Expired(t *testing.T) {
	initJWTTestConfig(t)
	defer func() { config.GlobalConfig = nil }()

	// 过期时间为负数的令牌，超出 1 分钟时钟偏差后必须被拒绝
	resetDuration = -2 * time.Minute
	token, _, err := GenerateResetToken(testUser())
	require.NoError(t, err)
	resetDuration = 15 * time.Minute

	_, _, ok := ParseResetToken(token)
	assert.False(t, ok)
}

func TestJWTAuth(t *testing.T) {
	initJWTTestConfig(t)
	defer func() { config.GlobalConfig = nil }()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(JWTAuth())
	router.GET("/protected", func(c *gin.Context) {
		id := GetCurrentUserID(c)
		c.String(200, "id:%d", id)
	})

	// 无 token
	req := httptest.NewRequest("GET", "/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 格式错误（非 Bearer）
	req2 := httptest.NewRequest("GET", "/protected", nil)
	req2.Header.Set("Authorization", "Basic xyz")
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req2)
	assert.Equal(t, http.StatusUnauthorized, w2.Code)

	// 格式错误（仅 Bearer 无 token）
	req3 := httptest.NewRequest("GET", "/protected", nil)
	req3.Header.Set("Authorization", "Bearer ")
	w3 := httptest.NewRecorder()
	router.ServeHTTP(w3, req3)
	assert.Equal(t, http.StatusUnauthorized, w3.Code)

	// 重置令牌不能通过认证
	resetToken, _, _ := GenerateResetToken(testUser())
	req4 := httptest.NewRequest("GET", "/protected", nil)
	req4.Header.Set("Authorization", "Bearer "+resetToken)
	w4 := httptest.NewRecorder()
	router.ServeHTTP(w4, req4)
	assert.Equal(t, http.StatusUnauthorized, w4.Code)

	// 有效会话令牌
	user := testUser()
	user.ID = 42
	token, _, _ := GenerateToken(user)
	req5 := httptest.NewRequest("GET", "/protected", nil)
	req5.Header.Set("Authorization", "Bearer "+token)
	w5 := httptest.NewRecorder()
	router.ServeHTTP(w5, req5)
	assert.Equal(t, 200, w5.Code)
	assert.Equal(t, "id:42", w5.Body.String())
}

func TestGetCurrentUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, uint(0), GetCurrentUserID(c))

	c.Set("userID", uint(99))
	assert.Equal(t, uint(99), GetCurrentUserID(c))
}
