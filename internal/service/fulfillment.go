package service

import (
	"context"
	"fmt"
	"time"

	"railtrace/internal/model"
	"railtrace/pkg/logger"
	"railtrace/prometheus"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const requestCounterName = "replenishment_request"

// Coordinator matches warehouse replenishment requests to manufacturer batch
// generation. Accept is the one cross-aggregate operation in the system and
// runs as a single transaction: component creation, ledger increment and the
// status flip commit together or not at all.
type Coordinator struct {
	db       *gorm.DB
	registry *Registry
	idgen    *IDGenerator
}

func NewCoordinator(db *gorm.DB, registry *Registry, idgen *IDGenerator) *Coordinator {
	return &Coordinator{db: db, registry: registry, idgen: idgen}
}

// CreateRequest opens a replenishment request for a warehouse
func (c *Coordinator) CreateRequest(ctx context.Context, warehouseID, itemCode string, quantity int, note, requestedBy string) (*model.ReplenishmentRequest, error) {
	if warehouseID == "" || itemCode == "" {
		return nil, Validationf("warehouse_id and item_code are required")
	}
	if quantity <= 0 {
		return nil, Validationf("quantity must be positive, got %d", quantity)
	}

	var request model.ReplenishmentRequest
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.ComponentType{}).Where("code = ?", itemCode).Count(&count).Error; err != nil {
			return wrapDBErr(err, "component type catalog")
		}
		if count == 0 {
			return NotFoundf("unknown item_code %q", itemCode)
		}

		seq, err := c.idgen.advance(tx, requestCounterName, 1)
		if err != nil {
			return err
		}

		request = model.ReplenishmentRequest{
			RequestID:   fmt.Sprintf("REQ%06d", seq),
			WarehouseID: warehouseID,
			ItemCode:    itemCode,
			Quantity:    quantity,
			Note:        note,
			Status:      model.RequestOpen,
			RequestedBy: requestedBy,
			RequestedAt: time.Now().UTC(),
		}
		return wrapDBErr(tx.Create(&request).Error, "replenishment request")
	})
	if err != nil {
		return nil, err
	}

	return &request, nil
}

// ListRequests returns requests, optionally narrowed by warehouse and/or status
func (c *Coordinator) ListRequests(ctx context.Context, warehouseID, status string) ([]model.ReplenishmentRequest, error) {
	log := logger.FromContext(ctx)

	var requests []model.ReplenishmentRequest
	err := retryTransient(log, func() error {
		query := c.db.WithContext(ctx).Order("requested_at DESC")
		if warehouseID != "" {
			query = query.Where("warehouse_id = ?", warehouseID)
		}
		if status != "" {
			query = query.Where("status = ?", status)
		}
		return wrapDBErr(query.Find(&requests).Error, "replenishment requests")
	})
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// Accept resolves an open request: exactly Quantity new components of the
// requested item code are manufactured and attributed to the requesting
// warehouse, the warehouse ledger gains Quantity units, and the request flips
// to Accepted. All three effects commit atomically; a failure in any step
// leaves the request open and nothing manufactured.
func (c *Coordinator) Accept(ctx context.Context, requestID string, manufacturerID uint) (*model.ReplenishmentRequest, []model.Component, error) {
	var request model.ReplenishmentRequest
	var components []model.Component

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("request_id = ?", requestID).
			First(&request).Error; err != nil {
			return wrapDBErr(err, "replenishment request")
		}

		if request.Status != model.RequestOpen {
			return Conflictf("request %s already resolved as %s", requestID, request.Status)
		}

		var err error
		components, err = c.registry.CreateInTx(tx, CreateComponentParams{
			ManufacturerID: manufacturerID,
			ItemCode:       request.ItemCode,
			BatchSize:      request.Quantity,
			WarehouseID:    request.WarehouseID,
		})
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		request.Status = model.RequestAccepted
		request.ResolvedAt = &now
		return wrapDBErr(tx.Model(&model.ReplenishmentRequest{}).
			Where("request_id = ?", requestID).
			Updates(map[string]interface{}{
				"status":      model.RequestAccepted,
				"resolved_at": now,
			}).Error, "replenishment request")
	})
	if err != nil {
		return nil, nil, err
	}

	prometheus.RecordRequestOutcome(model.RequestAccepted)
	prometheus.RecordComponentsGenerated(request.ItemCode, len(components))
	return &request, components, nil
}

// Reject resolves an open request with no side effects
func (c *Coordinator) Reject(ctx context.Context, requestID string) (*model.ReplenishmentRequest, error) {
	var request model.ReplenishmentRequest

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("request_id = ?", requestID).
			First(&request).Error; err != nil {
			return wrapDBErr(err, "replenishment request")
		}

		if request.Status != model.RequestOpen {
			return Conflictf("request %s already resolved as %s", requestID, request.Status)
		}

		now := time.Now().UTC()
		request.Status = model.RequestRejected
		request.ResolvedAt = &now
		return wrapDBErr(tx.Model(&model.ReplenishmentRequest{}).
			Where("request_id = ?", requestID).
			Updates(map[string]interface{}{
				"status":      model.RequestRejected,
				"resolved_at": now,
			}).Error, "replenishment request")
	})
	if err != nil {
		return nil, err
	}

	prometheus.RecordRequestOutcome(model.RequestRejected)
	return &request, nil
}
