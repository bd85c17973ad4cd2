package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Account 账号
type Account struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	IsAdmin      bool      `json:"isAdmin" gorm:"default:false"`
	CreatedAt    time.Time `json:"createdAt"`
}

// BeforeCreate 生成主键
func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// Summary 返回给客户端的账号摘要
func (a *Account) Summary() AccountSummary {
	return AccountSummary{
		ID:      a.ID,
		Email:   a.Email,
		IsAdmin: a.IsAdmin,
	}
}

// AccountSummary 登录返回的用户信息
type AccountSummary struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}
