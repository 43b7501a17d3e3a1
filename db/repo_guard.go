package db

import (
	"context"
	"keycabinet/models"

	"gorm.io/gorm"
)

// 停用前的只读检查。各 Deactivate* 在自己的事务里调用，
// 所以这里同时提供 *gorm.DB 版本，外部调用走 ctx 版本。

func personHasOpenLoans(tx *gorm.DB, personID string) (bool, error) {
	var n int64
	err := tx.Model(&models.Loan{}).
		Where("person_id = ? AND returned_at IS NULL", personID).
		Count(&n).Error
	return n > 0, err
}

func locationHasActiveKeys(tx *gorm.DB, locationID string) (bool, error) {
	var n int64
	err := tx.Model(&models.Key{}).
		Where("location_id = ? AND active = TRUE", locationID).
		Count(&n).Error
	return n > 0, err
}

func (r *Repo) PersonHasOpenLoans(ctx context.Context, personID string) (bool, error) {
	return personHasOpenLoans(r.DB.WithContext(ctx), personID)
}

// KeyIsOnLoan 等价于 !key.available
func (r *Repo) KeyIsOnLoan(ctx context.Context, keyID string) (bool, error) {
	var available bool
	if err := r.DB.WithContext(ctx).
		Model(&models.Key{}).
		Select("available").
		Where("id = ?", keyID).
		Scan(&available).Error; err != nil {
		return false, err
	}
	return !available, nil
}

func (r *Repo) LocationHasActiveKeys(ctx context.Context, locationID string) (bool, error) {
	return locationHasActiveKeys(r.DB.WithContext(ctx), locationID)
}
