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

// Operators（登录账号）

func (r *Repo) FindOperatorByID(ctx context.Context, id string) (*models.Operator, error) {
	var o models.Operator
	if err := r.DB.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOperatorNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *Repo) FindOperatorByUsername(ctx context.Context, username string) (*models.Operator, error) {
	var o models.Operator
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOperatorNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *Repo) TouchOperatorLogin(ctx context.Context, id, ip, ua string) error {
	// 用数据库时间更准，且避免并发覆盖：NOW() + 计数自增
	return r.DB.WithContext(ctx).Model(&models.Operator{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_login_at": gorm.Expr("NOW()"),
			"last_seen_at":  gorm.Expr("NOW()"),
			"login_count":   gorm.Expr("COALESCE(login_count, 0) + 1"),
			"last_login_ip": ip,
			"last_login_ua": ua,
		}).Error
}

func (r *Repo) TouchOperatorSeen(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Model(&models.Operator{}).
		Where("id = ?", id).
		Update("last_seen_at", gorm.Expr("NOW()")).Error
}

type ListOperatorsResult struct {
	Operators []models.Operator `json:"operators"`
	Total     int64             `json:"total"`
}

func (r *Repo) ListOperators(ctx context.Context, q string, page, size int) (ListOperatorsResult, error) {
	page, size = normPage(page, size)

	tx := r.DB.WithContext(ctx).Model(&models.Operator{}).Where("active = TRUE")
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("LOWER(username) LIKE ? OR LOWER(display_name) LIKE ?", like, like)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return ListOperatorsResult{}, err
	}

	var os []models.Operator
	if err := tx.
		Order("username ASC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&os).Error; err != nil {
		return ListOperatorsResult{}, err
	}
	return ListOperatorsResult{Operators: os, Total: total}, nil
}

type CreateOperatorInput struct {
	Username    string
	DisplayName string
	Password    string
	IsAdmin     bool
}

func (r *Repo) CreateOperator(ctx context.Context, in CreateOperatorInput) (*models.Operator, error) {
	o := &models.Operator{
		ID:          uuid.NewString(),
		Username:    strings.TrimSpace(in.Username),
		DisplayName: strings.TrimSpace(in.DisplayName),
		IsAdmin:     in.IsAdmin,
		Active:      true,
	}
	if o.DisplayName == "" {
		o.DisplayName = o.Username
	}
	if err := o.SetPassword(in.Password); err != nil {
		return nil, err
	}
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Operator{}).
			Where("username = ?", o.Username).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrDuplicateName
		}
		return tx.Create(o).Error
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

type UpdateOperatorInput struct {
	DisplayName string
	IsAdmin     bool
	NewPassword string // 空 = 不改
}

func (r *Repo) UpdateOperator(ctx context.Context, id string, in UpdateOperatorInput) (*models.Operator, error) {
	var o models.Operator
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&o, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOperatorNotFound
			}
			return err
		}
		o.DisplayName = strings.TrimSpace(in.DisplayName)
		o.IsAdmin = in.IsAdmin
		if in.NewPassword != "" {
			if err := o.SetPassword(in.NewPassword); err != nil {
				return err
			}
		}
		return tx.Save(&o).Error
	})
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// DeactivateOperator 软删除；会话由 controller 负责撤销
func (r *Repo) DeactivateOperator(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Model(&models.Operator{}).
		Where("id = ?", id).
		Update("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOperatorNotFound
	}
	return nil
}

func (r *Repo) CountOperators(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Operator{}).Count(&n).Error
	return n, err
}
