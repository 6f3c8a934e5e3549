package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"expensetracker/database"
	"expensetracker/middleware"
	"expensetracker/models"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportHandler 数据导出处理器
type ExportHandler struct{}

// NewExportHandler 创建数据导出处理器
func NewExportHandler() *ExportHandler {
	return &ExportHandler{}
}

// exportColumns 导出列标题
var exportColumns = []string{"日期", "类别", "支付方式", "账户", "金额", "备注"}

// loadExpenses 加载当前用户的消费记录（含关联），支持日期区间过滤
func (h *ExportHandler) loadExpenses(c *gin.Context) ([]models.Expense, error) {
	userID := middleware.GetCurrentUserID(c)

	query := database.DB.Where("user_id = ?", userID)
	if startDate := c.Query("start_date"); startDate != "" {
		if t, err := time.Parse("2006-01-02", startDate); err == nil {
			query = query.Where("expense_date >= ?", t)
		}
	}
	if endDate := c.Query("end_date"); endDate != "" {
		if t, err := time.Parse("2006-01-02", endDate); err == nil {
			query = query.Where("expense_date < ?", t.AddDate(0, 0, 1))
		}
	}

	var expenses []models.Expense
	err := query.
		Preload("Category").
		Preload("PaymentMethod").
		Preload("Account").
		Order("expense_date DESC, id DESC").
		Find(&expenses).Error
	return expenses, err
}

// rowValues 单条记录转为导出行
func rowValues(e *models.Expense) []string {
	accountName := ""
	if e.Account != nil {
		accountName = e.Account.Name
	}
	return []string{
		e.ExpenseDate.Format("2006-01-02"),
		e.Category.Name,
		e.PaymentMethod.Name,
		accountName,
		fmt.Sprintf("%.2f", e.Amount),
		e.Description,
	}
}

// ExportCSV 导出消费记录为CSV
// @Summary 导出消费记录为CSV
// @Description 导出当前用户的消费记录，UTF-8 带 BOM，Excel 可直接打开
// @Tags 导出
// @Accept json
// @Produce text/csv
// @Security BearerAuth
// @Param start_date query string false "开始日期 YYYY-MM-DD"
// @Param end_date query string false "结束日期 YYYY-MM-DD"
// @Success 200 {string} string "CSV文件"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	expenses, err := h.loadExpenses(c)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	var buf bytes.Buffer
	// BOM 让 Excel 按 UTF-8 识别中文
	buf.WriteString("\xEF\xBB\xBF")

	writer := csv.NewWriter(&buf)
	if err := writer.Write(exportColumns); err != nil {
		InternalError(c, "生成CSV失败")
		return
	}
	for i := range expenses {
		if err := writer.Write(rowValues(&expenses[i])); err != nil {
			InternalError(c, "生成CSV失败")
			return
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		InternalError(c, "生成CSV失败")
		return
	}

	filename := fmt.Sprintf("expenses_%s.csv", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportExcel 导出消费记录为Excel
// @Summary 导出消费记录为Excel
// @Tags 导出
// @Accept json
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param start_date query string false "开始日期 YYYY-MM-DD"
// @Param end_date query string false "结束日期 YYYY-MM-DD"
// @Success 200 {string} string "Excel文件"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/excel [get]
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	expenses, err := h.loadExpenses(c)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "消费记录"
	index, err := f.NewSheet(sheet)
	if err != nil {
		InternalError(c, "生成Excel失败")
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for i, col := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, col)
	}

	for rowIdx := range expenses {
		values := rowValues(&expenses[rowIdx])
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			// 金额列写入数值，便于在表格里直接求和
			if colIdx == 4 {
				f.SetCellValue(sheet, cell, expenses[rowIdx].Amount)
			} else {
				f.SetCellValue(sheet, cell, v)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		InternalError(c, "生成Excel失败")
		return
	}

	filename := fmt.Sprintf("expenses_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
