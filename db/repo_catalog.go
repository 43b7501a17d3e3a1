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

// Locations

func (r *Repo) CreateLocation(ctx context.Context, name string) (*models.Location, error) {
	loc := &models.Location{ID: uuid.NewString(), Name: strings.TrimSpace(name), Active: true}
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 名称精确匹配去重
		var n int64
		if err := tx.Model(&models.Location{}).
			Where("name = ?", loc.Name).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrDuplicateName
		}
		return tx.Create(loc).Error
	})
	if err != nil {
		return nil, err
	}
	return loc, nil
}

func (r *Repo) FindLocationByID(ctx context.Context, id string) (*models.Location, error) {
	var loc models.Location
	if err := r.DB.WithContext(ctx).First(&loc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLocationNotFound
		}
		return nil, err
	}
	return &loc, nil
}

func (r *Repo) ListLocations(ctx context.Context) ([]models.Location, error) {
	var locs []models.Location
	err := r.DB.WithContext(ctx).
		Where("active = TRUE").
		Order("name ASC").
		Find(&locs).Error
	return locs, err
}

func (r *Repo) UpdateLocation(ctx context.Context, id, name string) (*models.Location, error) {
	var loc models.Location
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&loc, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLocationNotFound
			}
			return err
		}
		name = strings.TrimSpace(name)
		var n int64
		if err := tx.Model(&models.Location{}).
			Where("name = ? AND id <> ?", name, id).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrDuplicateName
		}
		loc.Name = name
		return tx.Save(&loc).Error
	})
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

// DeactivateLocation 还挂着活跃钥匙的地点不能停用
func (r *Repo) DeactivateLocation(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var loc models.Location
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&loc, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLocationNotFound
			}
			return err
		}
		has, err := locationHasActiveKeys(tx, id)
		if err != nil {
			return err
		}
		if has {
			return ErrHasActiveKeys
		}
		return tx.Model(&loc).Update("active", false).Error
	})
}

// FindOrCreateLocation 导入钥匙时按名称取或建
func (r *Repo) FindOrCreateLocation(ctx context.Context, name string) (*models.Location, error) {
	name = strings.TrimSpace(name)
	var loc models.Location
	err := r.DB.WithContext(ctx).Where("name = ?", name).First(&loc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		loc = models.Location{ID: uuid.NewString(), Name: name, Active: true}
		if err := r.DB.WithContext(ctx).Create(&loc).Error; err != nil {
			return nil, err
		}
		return &loc, nil
	}
	return &loc, err
}

// Keys

func (r *Repo) CreateKey(ctx context.Context, description, locationID string) (*models.Key, error) {
	k := &models.Key{
		ID:          uuid.NewString(),
		Description: strings.TrimSpace(description),
		LocationID:  locationID,
		Available:   true,
		Active:      true,
	}
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var loc models.Location
		if err := tx.First(&loc, "id = ? AND active = TRUE", locationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLocationNotFound
			}
			return err
		}
		var n int64
		if err := tx.Model(&models.Key{}).
			Where("description = ?", k.Description).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrDuplicateName
		}
		return tx.Create(k).Error
	})
	if err != nil {
		return nil, err
	}
	return k, nil
}

func (r *Repo) KeyExistsByDescription(ctx context.Context, description string) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Key{}).
		Where("description = ?", strings.TrimSpace(description)).
		Count(&n).Error
	return n > 0, err
}

func (r *Repo) FindKeyByID(ctx context.Context, id string) (*models.Key, error) {
	var k models.Key
	if err := r.DB.WithContext(ctx).First(&k, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	return &k, nil
}

type KeyQuery struct {
	LocationID    string
	AvailableOnly bool
}

// ListKeys 取钥匙页的下拉数据：可按地点过滤、只看可借的
func (r *Repo) ListKeys(ctx context.Context, q KeyQuery) ([]models.Key, error) {
	tx := r.DB.WithContext(ctx).Where("active = TRUE")
	if q.LocationID != "" {
		tx = tx.Where("location_id = ?", q.LocationID)
	}
	if q.AvailableOnly {
		tx = tx.Where("available = TRUE")
	}
	var ks []models.Key
	err := tx.Order("description ASC").Find(&ks).Error
	return ks, err
}

func (r *Repo) UpdateKey(ctx context.Context, id, description, locationID string) (*models.Key, error) {
	var k models.Key
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&k, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrKeyNotFound
			}
			return err
		}
		var loc models.Location
		if err := tx.First(&loc, "id = ? AND active = TRUE", locationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLocationNotFound
			}
			return err
		}
		description = strings.TrimSpace(description)
		var n int64
		if err := tx.Model(&models.Key{}).
			Where("description = ? AND id <> ?", description, id).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrDuplicateName
		}
		k.Description = description
		k.LocationID = locationID
		return tx.Save(&k).Error
	})
	if err != nil {
		return nil, err
	}
	return &k, nil
}

// DeactivateKey 借出中的钥匙不能停用（available=false 即在外面）
func (r *Repo) DeactivateKey(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var k models.Key
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&k, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrKeyNotFound
			}
			return err
		}
		if !k.Available {
			return ErrKeyOnLoan
		}
		return tx.Model(&k).Update("active", false).Error
	})
}
