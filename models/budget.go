package models

import (
	"time"

	"gorm.io/gorm"
)

// Budget 预算模型
// 两种形态：CategoryID 非空为类别预算；CategoryID 为空时 Name 必填，表示月度总预算。
// 预算只是描述性数据，进度由前端按消费统计计算，后端不做强制约束
type Budget struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	UserID     uint           `json:"user_id" gorm:"index;not null"`
	CategoryID *uint          `json:"category_id" gorm:"index"`
	Name       string         `json:"name" gorm:"size:50"`
	Amount     float64        `json:"amount" gorm:"type:decimal(10,2);not null"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
	User       User           `json:"-" gorm:"foreignKey:UserID"`
	Category   *Category      `json:"-" gorm:"foreignKey:CategoryID"`
}

// TableName 设置表名
func (Budget) TableName() string {
	return "budgets"
}

// IsOverall 是否为月度总预算（未绑定类别）
func (b *Budget) IsOverall() bool {
	return b.CategoryID == nil
}
