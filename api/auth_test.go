package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"expensetracker/config"
	"expensetracker/database"
	"expensetracker/middleware"
	"expensetracker/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (sqlmock.Sqlmock, func()) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	oldDB := database.DB
	database.DB = gormDB
	return mock, func() {
		database.DB = oldDB
		sqlDB.Close()
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Mode: "debug", BaseURL: "http://localhost:8080"},
		JWT: config.JWTConfig{
			Secret:          "test-secret",
			Issuer:          "expensetracker",
			Audience:        "expensetracker",
			ExpireTime:      time.Hour,
			ResetExpireTime: 15 * time.Minute,
		},
	}
}

func initTestAuth(t *testing.T) *config.Config {
	cfg := testConfig()
	config.GlobalConfig = cfg
	require.NoError(t, middleware.InitJWT(cfg))
	t.Cleanup(func() { config.GlobalConfig = nil })
	return cfg
}

func userRows(t *testing.T, id uint, email, password string) *sqlmock.Rows {
	hash, err := service.HashPassword(password)
	require.NoError(t, err)
	return sqlmock.NewRows([]string{"id", "name", "email", "password", "currency_preference", "created_at", "updated_at", "deleted_at"}).
		AddRow(id, "测试用户", email, hash, "CNY", time.Now(), time.Now(), nil)
}

func setUserIDMiddleware(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	}
}

func TestAuthHandler_Register(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	cfg := initTestAuth(t)

	// 检查邮箱不存在：SELECT 返回无记录
	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{}))

	// GORM Create 使用事务
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `users`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/register", NewAuthHandler(cfg).Register)

	body := `{"name":"张三","email":"new@example.com","password":"password123"}`
	req := httptest.NewRequest("POST", "/register", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(200), resp["code"])
	assert.Equal(t, "注册成功", resp["message"])

	// 响应中带会话令牌，且密码哈希不外泄
	data := resp["data"].(map[string]interface{})
	assert.NotEmpty(t, data["token"])
	userInfo := data["user_info"].(map[string]interface{})
	assert.NotContains(t, userInfo, "password")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthHandler_Register_EmailExists(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	cfg := initTestAuth(t)

	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnRows(userRows(t, 1, "dup@example.com", "password123"))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/register", NewAuthHandler(cfg).Register)

	body := `{"name":"张三","email":"dup@example.com","password":"password123"}`
	req := httptest.NewRequest("POST", "/register", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "已被注册")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthHandler_Login(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	cfg := initTestAuth(t)

	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnRows(userRows(t, 1, "test@example.com", "password123"))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/login", NewAuthHandler(cfg).Login)

	body := `{"email":"test@example.com","password":"password123"}`
	req := httptest.NewRequest("POST", "/login", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.NotEmpty(t, data["token"])

	// 签发的令牌可通过会话解析
	claims, err := middleware.ParseToken(data["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, uint(1), claims.UserID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	cfg := initTestAuth(t)

	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnRows(userRows(t, 1, "test@example.com", "password123"))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/login", NewAuthHandler(cfg).Login)

	body := `{"email":"test@example.com","password":"wrongpassword"}`
	req := httptest.NewRequest("POST", "/login", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 401, w.Code)
	assert.Contains(t, w.Body.String(), "邮箱或密码错误")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthHandler_Login_UnknownEmail(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	cfg := initTestAuth(t)

	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{}))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/login", NewAuthHandler(cfg).Login)

	body := `{"email":"nobody@example.com","password":"password123"}`
	req := httptest.NewRequest("POST", "/login", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// 未注册邮箱与密码错误返回同样的提示
	assert.Equal(t, 401, w.Code)
	assert.Contains(t, w.Body.String(), "邮箱或密码错误")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	cfg := initTestAuth(t)

	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnRows(userRows(t, 1, "test@example.com", "oldpassword"))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `users` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.PUT("/password", NewAuthHandler(cfg).ChangePassword)

	body := `{"old_password":"oldpassword","new_password":"newpassword123"}`
	req := httptest.NewRequest("PUT", "/password", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "密码修改成功")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthHandler_ChangePassword_WrongOldPassword(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	cfg := initTestAuth(t)

	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnRows(userRows(t, 1, "test@example.com", "oldpassword"))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.PUT("/password", NewAuthHandler(cfg).ChangePassword)

	body := `{"old_password":"guesswork","new_password":"newpassword123"}`
	req := httptest.NewRequest("PUT", "/password", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 401, w.Code)
	assert.Contains(t, w.Body.String(), "原密码错误")
	require.NoError(t, mock.ExpectationsWereMet())
}
