package db

import (
	"context"
	"errors"
	"strings"

	"keycabinet/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RegisterPersonInput struct {
	Name       string
	Company    string
	ExternalID string
	RawPIN     string
}

// RegisterPerson 登记借钥匙的人。PIN 规则在这里统一兜底（表单、导入都会走到）。
func (r *Repo) RegisterPerson(ctx context.Context, in RegisterPersonInput) (*models.Person, error) {
	if !models.ValidPIN(in.RawPIN) {
		return nil, ErrPINFormat
	}
	p := &models.Person{
		ID:         uuid.NewString(),
		Name:       strings.TrimSpace(in.Name),
		Company:    strings.TrimSpace(in.Company),
		ExternalID: strings.TrimSpace(in.ExternalID),
	}
	if err := p.SetPIN(in.RawPIN); err != nil {
		return nil, err
	}
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 唯一性覆盖已停用的人：历史记录还挂在旧 ID 上
		var n int64
		if err := tx.Model(&models.Person{}).
			Where("external_id = ?", p.ExternalID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrDuplicateExternalID
		}
		return tx.Create(p).Error
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Repo) FindPersonByID(ctx context.Context, id string) (*models.Person, error) {
	var p models.Person
	if err := r.DB.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPersonNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *Repo) FindPersonByExternalID(ctx context.Context, externalID string) (*models.Person, error) {
	var p models.Person
	if err := r.DB.WithContext(ctx).Where("external_id = ?", externalID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPersonNotFound
		}
		return nil, err
	}
	return &p, nil
}

type ListPersonsResult struct {
	Persons []models.Person `json:"persons"`
	Total   int64           `json:"total"`
}

// 列表（分页 + 关键词，关键词匹配姓名/单位）
func (r *Repo) ListPersons(ctx context.Context, q string, page, size int) (ListPersonsResult, error) {
	page, size = normPage(page, size)

	tx := r.DB.WithContext(ctx).Model(&models.Person{}).Where("active = TRUE")
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("LOWER(name) LIKE ? OR LOWER(company) LIKE ?", like, like)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return ListPersonsResult{}, err
	}

	var ps []models.Person
	if err := tx.
		Order("name ASC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&ps).Error; err != nil {
		return ListPersonsResult{}, err
	}
	return ListPersonsResult{Persons: ps, Total: total}, nil
}

type UpdatePersonInput struct {
	Name       string
	Company    string
	ExternalID string
	NewPIN     string // 空 = 不改
}

func (r *Repo) UpdatePerson(ctx context.Context, id string, in UpdatePersonInput) (*models.Person, error) {
	if in.NewPIN != "" && !models.ValidPIN(in.NewPIN) {
		return nil, ErrPINFormat
	}
	var p models.Person
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&p, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPersonNotFound
			}
			return err
		}
		externalID := strings.TrimSpace(in.ExternalID)
		var n int64
		if err := tx.Model(&models.Person{}).
			Where("external_id = ? AND id <> ?", externalID, id).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrDuplicateExternalID
		}
		p.Name = strings.TrimSpace(in.Name)
		p.Company = strings.TrimSpace(in.Company)
		p.ExternalID = externalID
		if in.NewPIN != "" {
			if err := p.SetPIN(in.NewPIN); err != nil {
				return err
			}
		}
		return tx.Save(&p).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DeactivatePerson 软删除；有未归还的钥匙时拒绝
func (r *Repo) DeactivatePerson(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Person
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&p, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPersonNotFound
			}
			return err
		}
		open, err := personHasOpenLoans(tx, id)
		if err != nil {
			return err
		}
		if open {
			return ErrHasOpenLoans
		}
		return tx.Model(&p).Update("active", false).Error
	})
}
