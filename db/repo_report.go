package db

import (
	"context"
	"strings"
	"time"

	"keycabinet/models"

	"gorm.io/gorm"
)

type ReportQuery struct {
	Start      string // YYYY-MM-DD（含）
	End        string // YYYY-MM-DD（含）
	LocationID string
	KeyID      string
}

// LoanReportRows 报表数据源：取出日期落在区间内的借还记录。
// 只读，不加锁；和借还事务并发跑没关系。
func (r *Repo) LoanReportRows(ctx context.Context, q ReportQuery) ([]models.Loan, error) {
	tx := r.DB.WithContext(ctx).
		Table(models.LoanTable+" l").
		Select("l.*").
		Where("DATE(l.checked_out_at) >= ? AND DATE(l.checked_out_at) <= ?", q.Start, q.End)
	if q.LocationID != "" {
		tx = tx.Joins("JOIN "+models.KeyTable+" k ON k.id = l.key_id").
			Where("k.location_id = ?", q.LocationID)
	}
	if q.KeyID != "" {
		tx = tx.Where("l.key_id = ?", q.KeyID)
	}

	var ls []models.Loan
	if err := tx.Order("l.checked_out_at ASC").Scan(&ls).Error; err != nil {
		return nil, err
	}
	return ls, nil
}

type DashboardStats struct {
	TotalKeys     int64         `json:"totalKeys"`
	KeysOnLoan    int64         `json:"keysOnLoan"`
	KeysAvailable int64         `json:"keysAvailable"`
	OverdueCount  int64         `json:"overdueCount"`
	Recent        []models.Loan `json:"recent"`       // 最近 5 次取出
	OverdueLoans  []OpenLoanRow `json:"overdueLoans"` // 逾期未还，最久的在前
}

func (r *Repo) Dashboard(ctx context.Context) (*DashboardStats, error) {
	db := r.DB.WithContext(ctx)
	var s DashboardStats

	if err := db.Model(&models.Key{}).Where("active = TRUE").Count(&s.TotalKeys).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Loan{}).Where("returned_at IS NULL").Count(&s.KeysOnLoan).Error; err != nil {
		return nil, err
	}
	s.KeysAvailable = s.TotalKeys - s.KeysOnLoan

	if err := db.Model(&models.Loan{}).
		Where("returned_at IS NULL AND due_at IS NOT NULL AND due_at < ?", time.Now().UTC()).
		Count(&s.OverdueCount).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.Loan{}).
		Order("checked_out_at DESC").
		Limit(5).
		Find(&s.Recent).Error; err != nil {
		return nil, err
	}

	rows, err := r.overdueOpenLoans(ctx)
	if err != nil {
		return nil, err
	}
	s.OverdueLoans = rows
	return &s, nil
}

func (r *Repo) overdueOpenLoans(ctx context.Context) ([]OpenLoanRow, error) {
	var rows []OpenLoanRow
	err := r.DB.WithContext(ctx).
		Table(models.LoanTable+" l").
		Select(`
			l.id, l.key_id, l.person_id, l.checked_out_at, l.due_at, l.note,
			k.description,
			loc.name AS location_name,
			p.name   AS person_name,
			TRUE     AS overdue
		`).
		Joins("JOIN "+models.KeyTable+" k ON k.id = l.key_id").
		Joins("JOIN "+models.LocationTable+" loc ON loc.id = k.location_id").
		Joins("JOIN "+models.PersonTable+" p ON p.id = l.person_id").
		Where("l.returned_at IS NULL AND l.due_at IS NOT NULL AND l.due_at < NOW()").
		Order("l.due_at ASC").
		Scan(&rows).Error
	return rows, err
}

// KeyRow 钥匙管理页：钥匙 + 当前未归还的借用（可空）
type KeyRow struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	LocationID  string    `json:"locationId"`
	Location    string    `json:"location"`
	Available   bool      `json:"available"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`

	LoanID       *string    `json:"loanId,omitempty"`
	HolderID     *string    `json:"holderId,omitempty"`
	HolderName   *string    `json:"holderName,omitempty"`
	CheckedOutAt *time.Time `json:"checkedOutAt,omitempty"`
	DueAt        *time.Time `json:"dueAt,omitempty"`
	Overdue      bool       `json:"overdue"` // 由 SQL 计算
}

type KeyRowsQuery struct {
	Q      string // 模糊搜索：description/location
	Status string // "", "open", "available", "overdue", "inactive"
	Page   int
	Size   int
}

type PagedKeyRows struct {
	Total int64    `json:"total"`
	Keys  []KeyRow `json:"keys"`
}

// ListKeysWithCurrentLoan 部分唯一索引保证每把钥匙至多一条未归还，直接 LEFT JOIN 即可
func (r *Repo) ListKeysWithCurrentLoan(ctx context.Context, q KeyRowsQuery) (*PagedKeyRows, error) {
	q.Page, q.Size = normPage(q.Page, q.Size)
	offset := (q.Page - 1) * q.Size

	base := func() *gorm.DB {
		tx := r.DB.WithContext(ctx).
			Table(models.KeyTable+" k").
			Joins("LEFT JOIN "+models.LoanTable+" ol ON ol.key_id = k.id AND ol.returned_at IS NULL").
			Joins("LEFT JOIN "+models.PersonTable+" p ON p.id = ol.person_id").
			Joins("JOIN "+models.LocationTable+" loc ON loc.id = k.location_id")
		if s := strings.TrimSpace(q.Q); s != "" {
			pat := "%" + strings.ToLower(s) + "%"
			tx = tx.Where("LOWER(k.description) LIKE ? OR LOWER(loc.name) LIKE ?", pat, pat)
		}
		switch q.Status {
		case "open":
			tx = tx.Where("k.available = FALSE")
		case "available":
			tx = tx.Where("k.available = TRUE AND k.active = TRUE")
		case "overdue":
			tx = tx.Where("ol.due_at IS NOT NULL AND ol.due_at < NOW()")
		case "inactive":
			tx = tx.Where("k.active = FALSE")
		default:
			// all
		}
		return tx
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, err
	}

	var rows []KeyRow
	if err := base().
		Select(`
			k.id, k.description, k.location_id, k.available, k.active, k.created_at,
			loc.name AS location,
			ol.id         AS loan_id,
			ol.person_id  AS holder_id,
			ol.checked_out_at,
			ol.due_at,
			p.name AS holder_name,
			CASE WHEN ol.due_at IS NOT NULL AND ol.due_at < NOW() THEN TRUE ELSE FALSE END AS overdue
		`).
		Order("k.created_at DESC").
		Offset(offset).
		Limit(q.Size).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	return &PagedKeyRows{Total: total, Keys: rows}, nil
}
