package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

const OperatorTable = "kc_operators"

// Operator 前台/管理员登录账号（密码登录 + Redis 会话）
type Operator struct {
	ID           string `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string `gorm:"uniqueIndex;size:255;not null" json:"username"`
	DisplayName  string `gorm:"size:255;not null" json:"displayName"`
	PasswordHash string `gorm:"size:128;not null" json:"-"`
	IsAdmin      bool   `gorm:"not null;default:false" json:"isAdmin"`
	Active       bool   `gorm:"not null;default:true" json:"active"`

	LastLoginAt *time.Time `gorm:"index" json:"lastLoginAt,omitempty"`
	LastSeenAt  *time.Time `gorm:"index" json:"lastSeenAt,omitempty"`
	LoginCount  int64      `gorm:"not null;default:0" json:"loginCount"`
	LastLoginIP string     `gorm:"size:45" json:"-"`
	LastLoginUA string     `gorm:"size:255" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Operator) TableName() string { return OperatorTable }

func (o *Operator) SetPassword(raw string) error {
	b, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	o.PasswordHash = string(b)
	return nil
}

func (o *Operator) CheckPassword(raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(o.PasswordHash), []byte(raw)) == nil
}
