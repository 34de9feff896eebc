package repository

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/shinyyama/shopping-items/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ShoppingItemRepository only ever sees active rows. Lookups of missing or
// inactive ids return gorm.ErrRecordNotFound.
type ShoppingItemRepository interface {
	GetAll(ctx context.Context) ([]model.ShoppingItem, error)
	GetByID(ctx context.Context, id uint64) (*model.ShoppingItem, error)
	Add(ctx context.Context, item *model.ShoppingItem) (*model.ShoppingItem, error)
	Update(ctx context.Context, item *model.ShoppingItem) (*model.ShoppingItem, error)
	Delete(ctx context.Context, id uint64) (bool, error)
	GetByCategory(ctx context.Context, category string) ([]model.ShoppingItem, error)
	Exists(ctx context.Context, id uint64) (bool, error)
	SetDB(db *gorm.DB)
	Ready() bool
}

type shoppingItemRepository struct {
	// Swapped in by SetDB once the connection comes up after server start.
	db atomic.Pointer[gorm.DB]
}

var ErrDBNotReady = errors.New("database not initialized")

func NewShoppingItemRepository(db *gorm.DB) ShoppingItemRepository {
	r := &shoppingItemRepository{}
	r.db.Store(db)
	return r
}

func active(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true)
}

// forUpdate holds the row until the surrounding transaction ends. SQLite has
// no row locks; its single writer already serializes the read and the write.
func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (r *shoppingItemRepository) GetAll(ctx context.Context) ([]model.ShoppingItem, error) {
	db := r.db.Load()
	if db == nil {
		return nil, ErrDBNotReady
	}
	var items []model.ShoppingItem
	if err := db.WithContext(ctx).
		Scopes(active).
		Order("name asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *shoppingItemRepository) GetByID(ctx context.Context, id uint64) (*model.ShoppingItem, error) {
	db := r.db.Load()
	if db == nil {
		return nil, ErrDBNotReady
	}
	var item model.ShoppingItem
	if err := db.WithContext(ctx).Scopes(active).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *shoppingItemRepository) Add(ctx context.Context, item *model.ShoppingItem) (*model.ShoppingItem, error) {
	db := r.db.Load()
	if db == nil {
		return nil, ErrDBNotReady
	}
	now := db.NowFunc()
	item.CreatedAt = now
	item.UpdatedAt = now
	if err := db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// Update writes item as a full replacement of the stored row. Field merging is
// the caller's job.
func (r *shoppingItemRepository) Update(ctx context.Context, item *model.ShoppingItem) (*model.ShoppingItem, error) {
	db := r.db.Load()
	if db == nil {
		return nil, ErrDBNotReady
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current model.ShoppingItem
		if err := tx.Scopes(active, forUpdate).Select("id").First(&current, item.ID).Error; err != nil {
			return err
		}
		item.UpdatedAt = tx.NowFunc()
		return tx.Save(item).Error
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *shoppingItemRepository) Delete(ctx context.Context, id uint64) (bool, error) {
	db := r.db.Load()
	if db == nil {
		return false, ErrDBNotReady
	}
	deleted := false
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item model.ShoppingItem
		if err := tx.Scopes(active, forUpdate).First(&item, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		item.IsActive = false
		item.UpdatedAt = tx.NowFunc()
		if err := tx.Save(&item).Error; err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// GetByCategory matches category exactly as stored; callers normalize.
func (r *shoppingItemRepository) GetByCategory(ctx context.Context, category string) ([]model.ShoppingItem, error) {
	db := r.db.Load()
	if db == nil {
		return nil, ErrDBNotReady
	}
	var items []model.ShoppingItem
	if err := db.WithContext(ctx).
		Scopes(active).
		Where("category = ?", category).
		Order("name asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *shoppingItemRepository) Exists(ctx context.Context, id uint64) (bool, error) {
	db := r.db.Load()
	if db == nil {
		return false, ErrDBNotReady
	}
	var cnt int64
	if err := db.WithContext(ctx).
		Model(&model.ShoppingItem{}).
		Scopes(active).
		Where("id = ?", id).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *shoppingItemRepository) SetDB(db *gorm.DB) {
	r.db.Store(db)
}

func (r *shoppingItemRepository) Ready() bool {
	return r.db.Load() != nil
}
