package db

import (
	"context"
	"errors"
	"time"

	"keycabinet/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CheckoutInput struct {
	KeyID    string
	PersonID string
	RawPIN   string
	At       time.Time // 零值 = 现在
	DueAt    *time.Time
	Note     string
}

// Checkout 取钥匙：原子操作 = 验 PIN → 锁住 key → 占用 available → 新建 loan
// PIN 在可用性检查之前验证：PIN 错的请求不泄露钥匙状态，也不落任何记录。
func (r *Repo) Checkout(ctx context.Context, in CheckoutInput) (*models.Loan, error) {
	var loan *models.Loan
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1) 找人 + 验 PIN
		var p models.Person
		if err := tx.First(&p, "id = ?", in.PersonID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPersonNotFound
			}
			return err
		}
		if !p.CheckPIN(in.RawPIN) {
			return ErrInvalidPIN
		}

		// 2) 锁住该钥匙
		var k models.Key
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&k, "id = ?", in.KeyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrKeyNotFound
			}
			return err
		}
		if !k.Active {
			return ErrKeyInactive
		}

		// 3) 防并发：页面上看着可借，提交时可能已被别人借走
		if !k.Available {
			return ErrKeyUnavailable
		}
		var n int64
		if err := tx.Model(&models.Loan{}).
			Where("key_id = ? AND returned_at IS NULL", k.ID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrKeyUnavailable
		}

		// 4) 先占位
		if err := tx.Model(&models.Key{}).
			Where("id = ? AND available = TRUE", k.ID).
			Update("available", false).Error; err != nil {
			return err
		}

		// 5) 新建 Loan
		at := in.At
		if at.IsZero() {
			at = time.Now().UTC()
		}
		l := &models.Loan{
			ID:           uuid.NewString(),
			KeyID:        k.ID,
			PersonID:     p.ID,
			CheckedOutAt: at,
			DueAt:        in.DueAt,
			Note:         in.Note,
		}
		if err := tx.Create(l).Error; err != nil {
			return err
		}
		loan = l
		return nil
	})
	return loan, err
}

// ReturnLoan 归还：原子操作 = 完成 loan → 释放 available。
// 已归还的重复提交是幂等的：返回 already=true，两张表都不动。
func (r *Repo) ReturnLoan(ctx context.Context, loanID string, at time.Time) (*models.Loan, bool, error) {
	var l models.Loan
	already := false
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&l, "id = ?", loanID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLoanNotFound
			}
			return err
		}
		if l.ReturnedAt != nil {
			already = true
			return nil
		}
		when := at
		if when.IsZero() {
			when = time.Now().UTC()
		}
		l.ReturnedAt = &when
		if err := tx.Save(&l).Error; err != nil {
			return err
		}
		// 释放占用
		if err := tx.Model(&models.Key{}).
			Where("id = ?", l.KeyID).
			Update("available", true).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &l, already, nil
}

type LoanQuery struct {
	PersonID string
	KeyID    string
	Status   string // "", "pending", "returned"
	Start    string // YYYY-MM-DD，按取出日期过滤（含）
	End      string
	Page     int
	Size     int
}

type PagedLoans struct {
	Total int64         `json:"total"`
	Loans []models.Loan `json:"loans"`
}

// ListLoans 历史记录，最近的在前
func (r *Repo) ListLoans(ctx context.Context, q LoanQuery) (*PagedLoans, error) {
	q.Page, q.Size = normPage(q.Page, q.Size)

	tx := r.DB.WithContext(ctx).Model(&models.Loan{})
	if q.PersonID != "" {
		tx = tx.Where("person_id = ?", q.PersonID)
	}
	if q.KeyID != "" {
		tx = tx.Where("key_id = ?", q.KeyID)
	}
	if q.Status == "pending" {
		tx = tx.Where("returned_at IS NULL")
	} else if q.Status == "returned" {
		tx = tx.Where("returned_at IS NOT NULL")
	}
	if q.Start != "" {
		tx = tx.Where("DATE(checked_out_at) >= ?", q.Start)
	}
	if q.End != "" {
		tx = tx.Where("DATE(checked_out_at) <= ?", q.End)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, err
	}

	var ls []models.Loan
	if err := tx.
		Order("checked_out_at DESC").
		Offset((q.Page - 1) * q.Size).
		Limit(q.Size).
		Find(&ls).Error; err != nil {
		return nil, err
	}
	return &PagedLoans{Total: total, Loans: ls}, nil
}

// OpenLoanRow 归还页用的连表行：借着谁、哪把钥匙
type OpenLoanRow struct {
	ID           string     `json:"id"`
	KeyID        string     `json:"keyId"`
	Description  string     `json:"description"`
	LocationName string     `json:"locationName"`
	PersonID     string     `json:"personId"`
	PersonName   string     `json:"personName"`
	CheckedOutAt time.Time  `json:"checkedOutAt"`
	DueAt        *time.Time `json:"dueAt,omitempty"`
	Note         string     `json:"note,omitempty"`
	Overdue      bool       `json:"overdue"` // 由 SQL 计算
}

func (r *Repo) ListOpenLoans(ctx context.Context, keyID, personID string) ([]OpenLoanRow, error) {
	tx := r.DB.WithContext(ctx).
		Table(models.LoanTable+" l").
		Select(`
			l.id, l.key_id, l.person_id, l.checked_out_at, l.due_at, l.note,
			k.description,
			loc.name AS location_name,
			p.name   AS person_name,
			CASE WHEN l.due_at IS NOT NULL AND l.due_at < NOW() THEN TRUE ELSE FALSE END AS overdue
		`).
		Joins("JOIN "+models.KeyTable+" k ON k.id = l.key_id").
		Joins("JOIN "+models.LocationTable+" loc ON loc.id = k.location_id").
		Joins("JOIN "+models.PersonTable+" p ON p.id = l.person_id").
		Where("l.returned_at IS NULL")
	if keyID != "" {
		tx = tx.Where("l.key_id = ?", keyID)
	}
	if personID != "" {
		tx = tx.Where("l.person_id = ?", personID)
	}

	var rows []OpenLoanRow
	if err := tx.Order("l.checked_out_at DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
