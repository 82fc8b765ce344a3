package service

import (
	"context"
	"time"

	"railtrace/internal/model"
	"railtrace/pkg/logger"
	"railtrace/prometheus"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Stock status thresholds (fixed by contract)
const (
	criticalStockThreshold = 5
	lowStockThreshold      = 15
)

// StatusForStock derives the inventory status from a stock count. This is the
// only place the thresholds live; status is never stored independently.
func StatusForStock(count int) string {
	switch {
	case count <= criticalStockThreshold:
		return model.StockCritical
	case count <= lowStockThreshold:
		return model.StockLow
	default:
		return model.StockOK
	}
}

// Ledger is the inventory bookkeeping service: per-warehouse stock counts
// derived from component registry events and manual restocks.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// Apply adjusts the stock count for (itemCode, warehouseID) by delta inside
// the given transaction. The row is locked for the duration of the update so
// racing adjustments serialize. Negative resulting stock is rejected.
func (l *Ledger) Apply(tx *gorm.DB, itemCode, warehouseID string, delta int, now time.Time) (*model.InventoryItem, error) {
	if itemCode == "" || warehouseID == "" {
		return nil, Validationf("item_code and warehouse_id are required")
	}
	if delta == 0 {
		return nil, Validationf("delta must be non-zero")
	}

	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.InventoryItem{
			ItemCode:    itemCode,
			WarehouseID: warehouseID,
			StockCount:  0,
			Status:      StatusForStock(0),
		}).Error; err != nil {
		return nil, wrapDBErr(err, "inventory item")
	}

	var item model.InventoryItem
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("item_code = ? AND warehouse_id = ?", itemCode, warehouseID).
		First(&item).Error; err != nil {
		return nil, wrapDBErr(err, "inventory item")
	}

	newCount := item.StockCount + delta
	if newCount < 0 {
		return nil, Validationf("stock for %s at %s cannot go negative (have %d, delta %d)",
			itemCode, warehouseID, item.StockCount, delta)
	}

	item.StockCount = newCount
	item.Status = StatusForStock(newCount)
	if delta > 0 {
		restockAt := now
		item.LastRestockDate = &restockAt
	}

	if err := tx.Model(&model.InventoryItem{}).
		Where("item_code = ? AND warehouse_id = ?", itemCode, warehouseID).
		Updates(map[string]interface{}{
			"stock_count":       item.StockCount,
			"status":            item.Status,
			"last_restock_date": item.LastRestockDate,
		}).Error; err != nil {
		return nil, wrapDBErr(err, "inventory item")
	}

	prometheus.UpdateInventoryLevel(itemCode, warehouseID, float64(item.StockCount))
	return &item, nil
}

// Query returns the current inventory snapshot, optionally filtered by
// warehouse and/or item code.
func (l *Ledger) Query(ctx context.Context, warehouseID, itemCode string) ([]model.InventoryItem, error) {
	log := logger.FromContext(ctx)

	var items []model.InventoryItem
	err := retryTransient(log, func() error {
		query := l.db.WithContext(ctx).Order("warehouse_id, item_code")
		if warehouseID != "" {
			query = query.Where("warehouse_id = ?", warehouseID)
		}
		if itemCode != "" {
			query = query.Where("item_code = ?", itemCode)
		}
		return wrapDBErr(query.Find(&items).Error, "inventory")
	})
	if err != nil {
		return nil, err
	}

	return items, nil
}

// Restock applies a manual stock adjustment as its own atomic unit
func (l *Ledger) Restock(ctx context.Context, itemCode, warehouseID string, delta int) (*model.InventoryItem, error) {
	var item *model.InventoryItem
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		item, txErr = l.Apply(tx, itemCode, warehouseID, delta, time.Now().UTC())
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}
