package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func accountRows(id uint, userID uint, initial, current float64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "name", "type", "initial_balance", "current_balance", "created_at", "updated_at", "deleted_at"}).
		AddRow(id, userID, "招行储蓄卡", "储蓄卡", initial, current, time.Now(), time.Now(), nil)
}

func TestAccountHandler_Create_DefaultCurrentBalance(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `accounts`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/accounts", NewAccountHandler().Create)

	// 省略 current_balance 时取 initial_balance
	body := `{"name":"招行储蓄卡","type":"储蓄卡","initial_balance":1000}`
	req := httptest.NewRequest("POST", "/accounts", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(1000), data["initial_balance"])
	assert.Equal(t, float64(1000), data["current_balance"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountHandler_Create_ExplicitCurrentBalance(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `accounts`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/accounts", NewAccountHandler().Create)

	body := `{"name":"招行储蓄卡","type":"储蓄卡","initial_balance":1000,"current_balance":800}`
	req := httptest.NewRequest("POST", "/accounts", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(800), data["current_balance"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountHandler_Get_NotFound(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `accounts`").
		WillReturnRows(sqlmock.NewRows([]string{}))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/accounts/:id", NewAccountHandler().Get)

	req := httptest.NewRequest("GET", "/accounts/999", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountHandler_List(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `accounts`").
		WillReturnRows(accountRows(1, 1, 1000, 700))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/accounts", NewAccountHandler().List)

	req := httptest.NewRequest("GET", "/accounts", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	list := resp["data"].([]interface{})
	require.Len(t, list, 1)
	account := list[0].(map[string]interface{})
	assert.Equal(t, float64(700), account["current_balance"])
	require.NoError(t, mock.ExpectationsWereMet())
}
