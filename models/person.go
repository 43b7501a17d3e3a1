package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

const PersonTable = "kc_persons"

// Person 借钥匙的人，不是登录账号。取钥匙时用 PIN 确认身份。
type Person struct {
	ID      string `gorm:"type:uuid;primaryKey" json:"id"`
	Name    string `gorm:"size:200;not null" json:"name"`
	Company string `gorm:"size:100" json:"company,omitempty"`
	// CPF / 内部工号，全局唯一（含已停用的）
	ExternalID string `gorm:"size:20;uniqueIndex;not null" json:"externalId"`
	PINHash    string `gorm:"size:128;not null" json:"-"`
	Active     bool   `gorm:"not null;default:true" json:"active"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Person) TableName() string { return PersonTable }

// SetPIN 单向加盐哈希，明文不落库
func (p *Person) SetPIN(raw string) error {
	b, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.PINHash = string(b)
	return nil
}

func (p *Person) CheckPIN(raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(p.PINHash), []byte(raw)) == nil
}

// ValidPIN 要求 4~6 位纯数字
func ValidPIN(raw string) bool {
	if len(raw) < 4 || len(raw) > 6 {
		return false
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
