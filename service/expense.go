package service

import (
	"context"
	"errors"
	"time"

	"expensetracker/models"

	"gorm.io/gorm"
)

// ExpenseService 消费记录服务
// 维护不变量：关联账户的滚动余额始终等于基准余额减去所有关联消费的金额之和。
// 每次增删改与对应的余额核销在同一个事务内完成，余额调整用原子的
// UPDATE 表达式执行，避免并发请求下的丢失更新
type ExpenseService struct {
	db *gorm.DB
}

// NewExpenseService 创建消费记录服务
func NewExpenseService(db *gorm.DB) *ExpenseService {
	return &ExpenseService{db: db}
}

// ExpenseInput 消费记录写入参数
type ExpenseInput struct {
	UserID          uint
	CategoryID      uint
	PaymentMethodID uint
	AccountID       *uint
	Amount          float64
	ExpenseDate     time.Time
	Description     string
}

// Create 创建消费记录
// 若关联了存在的账户，从其滚动余额中扣减金额；
// 账户不存在时静默跳过余额调整，消费记录照常创建
func (s *ExpenseService) Create(ctx context.Context, input ExpenseInput) (*models.Expense, error) {
	expense := models.Expense{
		UserID:          input.UserID,
		CategoryID:      input.CategoryID,
		PaymentMethodID: input.PaymentMethodID,
		AccountID:       input.AccountID,
		Amount:          input.Amount,
		ExpenseDate:     input.ExpenseDate,
		Description:     input.Description,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&expense).Error; err != nil {
			return err
		}
		return adjustAccountBalance(tx, input.AccountID, -input.Amount)
	})
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

// Update 更新消费记录
// 先撤销原记录对原账户的影响，再覆盖字段，最后对新账户应用新影响。
// 原账户与新账户可以相同，此时净效果为按金额差调整，但仍按两次独立调整执行
func (s *ExpenseService) Update(ctx context.Context, id uint, input ExpenseInput) (bool, error) {
	found := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Expense
		if err := tx.First(&existing, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		found = true

		// 1. 撤销旧影响：把旧金额加回旧账户
		if err := adjustAccountBalance(tx, existing.AccountID, existing.Amount); err != nil {
			return err
		}

		// 2. 覆盖全部字段
		updates := map[string]interface{}{
			"user_id":           input.UserID,
			"category_id":       input.CategoryID,
			"payment_method_id": input.PaymentMethodID,
			"account_id":        input.AccountID,
			"amount":            input.Amount,
			"expense_date":      input.ExpenseDate,
			"description":       input.Description,
		}
		if err := tx.Model(&models.Expense{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}

		// 3. 应用新影响：从新账户扣减新金额
		return adjustAccountBalance(tx, input.AccountID, -input.Amount)
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// Delete 删除消费记录
// 删除前把金额加回关联账户，撤销其对余额的影响
func (s *ExpenseService) Delete(ctx context.Context, id uint) (bool, error) {
	found := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Expense
		if err := tx.First(&existing, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		found = true

		if err := adjustAccountBalance(tx, existing.AccountID, existing.Amount); err != nil {
			return err
		}
		return tx.Delete(&existing).Error
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// Get 获取单条消费记录，不存在时返回 (nil, nil)
func (s *ExpenseService) Get(ctx context.Context, id uint) (*models.Expense, error) {
	var expense models.Expense
	if err := s.db.WithContext(ctx).First(&expense, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &expense, nil
}

// GetByUser 获取用户的全部消费记录，按消费日期倒序
func (s *ExpenseService) GetByUser(ctx context.Context, userID uint) ([]models.Expense, error) {
	var expenses []models.Expense
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("expense_date DESC, id DESC").
		Find(&expenses).Error; err != nil {
		return nil, err
	}
	return expenses, nil
}

// adjustAccountBalance 按 delta 调整账户滚动余额
// accountID 为空或账户不存在时视为"无需调整"，静默跳过；
// 调整本身是原子的 UPDATE 表达式，不做读-改-写
func adjustAccountBalance(tx *gorm.DB, accountID *uint, delta float64) error {
	if accountID == nil {
		return nil
	}

	var account models.Account
	if err := tx.First(&account, *accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	return tx.Model(&models.Account{}).
		Where("id = ?", *accountID).
		Update("current_balance", gorm.Expr("current_balance + ?", delta)).Error
}
