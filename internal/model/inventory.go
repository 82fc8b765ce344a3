package model

import "time"

// Inventory stock statuses, derived from stock count only
const (
	StockOK       = "OK"
	StockLow      = "Low"
	StockCritical = "Critical"
)

// Replenishment request statuses (Open is the only non-terminal state)
const (
	RequestOpen     = "Open"
	RequestAccepted = "Accepted"
	RequestRejected = "Rejected"
)

// InventoryItem is the aggregate stock count for one component type at one
// warehouse. Status is never written independently of StockCount.
type InventoryItem struct {
	ID              uint       `json:"-" gorm:"primarykey"`
	ItemCode        string     `json:"item_code" gorm:"type:varchar(100);not null;uniqueIndex:idx_item_warehouse"`
	WarehouseID     string     `json:"warehouse_id" gorm:"type:varchar(100);not null;uniqueIndex:idx_item_warehouse"`
	StockCount      int        `json:"stock_count" gorm:"not null;default:0"`
	Status          string     `json:"status" gorm:"type:varchar(20);not null;default:'Critical'"`
	LastRestockDate *time.Time `json:"last_restock_date,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ReplenishmentRequest is a warehouse's ask for more units of a component type
type ReplenishmentRequest struct {
	ID          uint       `json:"-" gorm:"primarykey"`
	RequestID   string     `json:"request_id" gorm:"type:varchar(100);uniqueIndex;not null"`
	WarehouseID string     `json:"warehouse_id" gorm:"type:varchar(100);index;not null"`
	ItemCode    string     `json:"item_code" gorm:"type:varchar(100);index;not null"`
	Quantity    int        `json:"quantity" gorm:"not null"`
	Note        string     `json:"note,omitempty" gorm:"type:text"`
	Status      string     `json:"status" gorm:"type:varchar(20);index;default:'Open'"`
	RequestedBy string     `json:"requested_by,omitempty" gorm:"type:varchar(100)"`
	RequestedAt time.Time  `json:"requested_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
