package api

import (
	"bytes"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func categoryRows(id uint, userID uint, name string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "name", "created_at", "updated_at", "deleted_at"}).
		AddRow(id, userID, name, time.Now(), time.Now(), nil)
}

func TestBudgetHandler_Create_CategoryBudget(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 类别预算：校验类别归属后插入
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnRows(categoryRows(1, 1, "餐饮"))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `budgets`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/budgets", NewBudgetHandler().Create)

	body := `{"category_id":1,"amount":500}`
	req := httptest.NewRequest("POST", "/budgets", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "创建成功")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetHandler_Create_OverallBudget(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 总预算：不校验类别，直接插入
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `budgets`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/budgets", NewBudgetHandler().Create)

	body := `{"name":"月度总预算","amount":3000}`
	req := httptest.NewRequest("POST", "/budgets", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetHandler_Create_OverallWithoutName(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/budgets", NewBudgetHandler().Create)

	// 未绑定类别又没有名称，形态非法
	body := `{"amount":3000}`
	req := httptest.NewRequest("POST", "/budgets", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "必须填写名称")
}

func TestBudgetHandler_Create_ForeignCategory(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 类别不属于当前用户
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnRows(sqlmock.NewRows([]string{}))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/budgets", NewBudgetHandler().Create)

	body := `{"category_id":42,"amount":500}`
	req := httptest.NewRequest("POST", "/budgets", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "无效的消费类别")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetHandler_Create_InvalidAmount(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/budgets", NewBudgetHandler().Create)

	body := `{"name":"月度总预算","amount":0}`
	req := httptest.NewRequest("POST", "/budgets", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}
