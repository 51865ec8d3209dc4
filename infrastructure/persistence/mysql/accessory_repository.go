package mysql

import (
	"context"
	"errors"

	"maintdesk/domain/stock"
	"maintdesk/infrastructure/persistence"
	"maintdesk/infrastructure/persistence/mysql/po"

	"gorm.io/gorm"
)

// AccessoryRepository MySQL/GORM implementation of the accessory
// repository. The quantity column is only ever written through the
// optimistic version check, which is what keeps two concurrent
// settlements from exporting the same stock.
type AccessoryRepository struct {
	db *gorm.DB
}

// NewAccessoryRepository Create accessory repository
func NewAccessoryRepository(db *gorm.DB) *AccessoryRepository {
	return &AccessoryRepository{db: db}
}

func (r *AccessoryRepository) getDB(ctx context.Context) *gorm.DB {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

// Save persists the accessory under an optimistic version check.
func (r *AccessoryRepository) Save(ctx context.Context, a *stock.Accessory) error {
	if tx := persistence.TxFromContext(ctx); tx != nil {
		return r.saveWithTx(tx, a)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.saveWithTx(tx, a)
	})
}

func (r *AccessoryRepository) saveWithTx(tx *gorm.DB, a *stock.Accessory) error {
	accessoryPO := po.FromAccessoryDomain(a)

	if a.IsNew() {
		if err := tx.Create(accessoryPO).Error; err != nil {
			return err
		}
		a.ClearDirtyTracking()
		return nil
	}

	expectedVersion := a.Version()

	result := tx.Model(&po.AccessoryPO{}).
		Where("id = ? AND version = ?", a.ID(), expectedVersion).
		Updates(map[string]interface{}{
			"name":           accessoryPO.Name,
			"price_amount":   accessoryPO.PriceAmount,
			"price_currency": accessoryPO.PriceCurrency,
			"quantity":       accessoryPO.Quantity,
			"version":        expectedVersion + 1,
			"updated_at":     accessoryPO.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&po.AccessoryPO{}).Where("id = ?", a.ID()).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return stock.NewAccessoryNotFoundError(a.ID())
		}
		return stock.NewConcurrentModificationError(a.ID())
	}

	a.IncrementVersionForSave()
	a.ClearDirtyTracking()
	return nil
}

// FindByID loads an accessory.
func (r *AccessoryRepository) FindByID(ctx context.Context, id string) (*stock.Accessory, error) {
	db := r.getDB(ctx)

	var accessoryPO po.AccessoryPO
	result := db.First(&accessoryPO, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, stock.NewAccessoryNotFoundError(id)
		}
		return nil, result.Error
	}

	return accessoryPO.ToDomain(), nil
}

// FindAll lists the catalogue ordered by name.
func (r *AccessoryRepository) FindAll(ctx context.Context) ([]*stock.Accessory, error) {
	db := r.getDB(ctx)

	var accessoryPOs []po.AccessoryPO
	if err := db.Order("name ASC").Find(&accessoryPOs).Error; err != nil {
		return nil, err
	}

	accessories := make([]*stock.Accessory, len(accessoryPOs))
	for i, p := range accessoryPOs {
		accessories[i] = p.ToDomain()
	}
	return accessories, nil
}
