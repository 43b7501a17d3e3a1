// models/key_loan.go
package models

import "time"

const LoanTable = "kc_loans"
const KeyTable = "kc_keys"

type Key struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	Description string    `gorm:"size:150;uniqueIndex;not null" json:"description"` // 唯一描述
	LocationID  string    `gorm:"type:uuid;index;not null" json:"locationId"`
	Available   bool      `gorm:"not null;default:true" json:"available"` // ✅ 冗余列：当前是否在柜（只由借还事务写）
	Active      bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Loan struct {
	ID           string     `gorm:"type:uuid;primaryKey" json:"id"`
	KeyID        string     `gorm:"type:uuid;index;not null" json:"keyId"`
	PersonID     string     `gorm:"type:uuid;index;not null" json:"personId"`
	CheckedOutAt time.Time  `gorm:"index;not null" json:"checkedOutAt"`
	DueAt        *time.Time `json:"dueAt,omitempty"`

	ReturnedAt *time.Time `gorm:"index" json:"returnedAt,omitempty"`

	Note      string    `gorm:"size:255" json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Open 表示未归还
func (l *Loan) Open() bool { return l.ReturnedAt == nil }

func (Key) TableName() string  { return KeyTable }
func (Loan) TableName() string { return LoanTable }
