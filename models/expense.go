package models

import (
	"time"

	"gorm.io/gorm"
)

// Expense 消费记录模型
// AccountID 可为空：未关联账户的消费不参与余额核销
type Expense struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	UserID          uint           `json:"user_id" gorm:"index;not null"`
	CategoryID      uint           `json:"category_id" gorm:"index;not null"`
	PaymentMethodID uint           `json:"payment_method_id" gorm:"index;not null"`
	AccountID       *uint          `json:"account_id" gorm:"index"`
	Amount          float64        `json:"amount" gorm:"type:decimal(10,2);not null"`
	ExpenseDate     time.Time      `json:"expense_date" gorm:"not null"`
	Description     string         `json:"description" gorm:"size:255"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`
	User            User           `json:"-" gorm:"foreignKey:UserID"`
	Category        Category       `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	PaymentMethod   PaymentMethod  `json:"payment_method,omitempty" gorm:"foreignKey:PaymentMethodID"`
	Account         *Account       `json:"account,omitempty" gorm:"foreignKey:AccountID"`
}

// TableName 设置表名
func (Expense) TableName() string {
	return "expenses"
}
