package models

import (
	"time"

	"gorm.io/gorm"
)

// Account 账户模型
// initial_balance 为建账时的基准余额，不随消费变化；
// current_balance 为滚动余额，始终等于基准余额减去所有关联消费记录的金额之和
type Account struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	UserID         uint           `json:"user_id" gorm:"index;not null"`
	Name           string         `json:"name" gorm:"size:50;not null"`
	Type           string         `json:"type" gorm:"size:20;not null"` // 账户类型，如 现金/储蓄卡/信用卡
	InitialBalance float64        `json:"initial_balance" gorm:"type:decimal(10,2);not null"`
	CurrentBalance float64        `json:"current_balance" gorm:"type:decimal(10,2);not null"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
	User           User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (Account) TableName() string {
	return "accounts"
}
