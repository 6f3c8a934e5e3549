package models

import (
	"time"

	"gorm.io/gorm"
)

// User 用户模型
// 密码字段存储 PBKDF2 自描述哈希串，永不序列化到响应
type User struct {
	ID                 uint           `json:"id" gorm:"primaryKey"`
	Name               string         `json:"name" gorm:"size:50;not null"`
	Email              string         `json:"email" gorm:"uniqueIndex;size:100;not null"`
	Password           string         `json:"-" gorm:"size:255;not null"`
	CurrencyPreference string         `json:"currency_preference" gorm:"size:10;default:CNY"` // 货币偏好，如 CNY/USD
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName 设置表名
func (User) TableName() string {
	return "users"
}
