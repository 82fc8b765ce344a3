package service

import (
	"context"
	"time"

	"railtrace/internal/model"
	"railtrace/pkg/logger"
	"railtrace/prometheus"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// warrantyMonthDays converts warranty months to an expiry horizon
const warrantyMonthDays = 30

// CreateComponentParams describes one batch-generation call
type CreateComponentParams struct {
	ManufacturerID   uint
	ItemCode         string
	ComponentName    string
	Specifications   model.JSONMap
	BatchSize        int
	ProductionDate   time.Time
	WarrantyPeriod   int
	UnitWeight       decimal.Decimal
	IRSSpecification string
	WarehouseID      string
}

// ComponentFilter narrows List results
type ComponentFilter struct {
	ManufacturerID uint
	QCStatus       string
	Status         string
	Search         string
	Page           int
	PerPage        int
}

// Registry is the authoritative record of every manufactured component
type Registry struct {
	db     *gorm.DB
	idgen  *IDGenerator
	ledger *Ledger
	cache  *ComponentCache
}

func NewRegistry(db *gorm.DB, idgen *IDGenerator, ledger *Ledger, cache *ComponentCache) *Registry {
	return &Registry{db: db, idgen: idgen, ledger: ledger, cache: cache}
}

// Create manufactures a batch of components as one atomic unit: identifiers
// are issued, records inserted with qc_status Pending and status Manufactured,
// and the inventory ledger is incremented for the attributed warehouse.
func (r *Registry) Create(ctx context.Context, params CreateComponentParams) ([]model.Component, error) {
	var components []model.Component
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		components, txErr = r.CreateInTx(tx, params)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	prometheus.RecordComponentsGenerated(params.ItemCode, len(components))
	return components, nil
}

// CreateInTx runs the creation inside an existing transaction so the
// fulfillment coordinator can bind it together with a request resolution.
func (r *Registry) CreateInTx(tx *gorm.DB, params CreateComponentParams) ([]model.Component, error) {
	if params.ItemCode == "" {
		return nil, Validationf("item_code is required")
	}
	if params.ManufacturerID == 0 {
		return nil, Validationf("manufacturer is required")
	}
	if params.WarehouseID == "" {
		return nil, Validationf("warehouse_id is required")
	}

	var componentType model.ComponentType
	if err := tx.Where("code = ?", params.ItemCode).First(&componentType).Error; err != nil {
		return nil, wrapDBErr(err, "component type")
	}

	// Catalog values fill anything the caller left blank
	if params.ComponentName == "" {
		params.ComponentName = componentType.Name
	}
	if params.IRSSpecification == "" {
		params.IRSSpecification = componentType.IRSSpecification
	}
	if params.UnitWeight.IsZero() {
		params.UnitWeight = componentType.UnitWeight
	}
	if params.WarrantyPeriod == 0 {
		params.WarrantyPeriod = componentType.WarrantyMonths
	}
	if params.ProductionDate.IsZero() {
		params.ProductionDate = time.Now().UTC()
	}
	if params.Specifications == nil {
		params.Specifications = model.JSONMap{}
	}

	now := time.Now().UTC()
	identities, err := r.idgen.NextBatch(tx, params.ItemCode, params.BatchSize, now)
	if err != nil {
		return nil, err
	}

	expectedExpiry := params.ProductionDate.AddDate(0, 0, params.WarrantyPeriod*warrantyMonthDays)

	components := make([]model.Component, len(identities))
	for i, identity := range identities {
		components[i] = model.Component{
			ComponentID:      identity.ComponentID,
			QRPayload:        identity.ComponentID,
			ItemCode:         params.ItemCode,
			ComponentName:    params.ComponentName,
			Specifications:   params.Specifications,
			SerialNumber:     identity.SerialNumber,
			BatchNumber:      identity.BatchNumber,
			ManufacturerID:   params.ManufacturerID,
			WarehouseID:      params.WarehouseID,
			ProductionDate:   params.ProductionDate,
			WarrantyPeriod:   params.WarrantyPeriod,
			UnitWeight:       params.UnitWeight,
			IRSSpecification: params.IRSSpecification,
			GeneratedAt:      now,
			ExpectedExpiry:   expectedExpiry,
			QCStatus:         model.QCPending,
			Status:           model.StatusManufactured,
		}
	}

	if err := tx.Create(&components).Error; err != nil {
		return nil, wrapDBErr(err, "component batch")
	}

	if _, err := r.ledger.Apply(tx, params.ItemCode, params.WarehouseID, len(components), now); err != nil {
		return nil, err
	}

	return components, nil
}

// Get returns one component by its public id (the QR payload value)
func (r *Registry) Get(ctx context.Context, componentID string) (*model.Component, error) {
	log := logger.FromContext(ctx)

	if cached := r.cache.Get(ctx, componentID); cached != nil {
		log.Debug("Component cache hit", zap.String("component_id", componentID))
		return cached, nil
	}

	var component model.Component
	err := retryTransient(log, func() error {
		return wrapDBErr(
			r.db.WithContext(ctx).Where("component_id = ?", componentID).First(&component).Error,
			"component")
	})
	if err != nil {
		return nil, err
	}

	r.cache.Set(ctx, &component)
	return &component, nil
}

// List returns a page of components matching the filter plus the total count
func (r *Registry) List(ctx context.Context, filter ComponentFilter) ([]model.Component, int64, error) {
	log := logger.FromContext(ctx)

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 || filter.PerPage > 200 {
		filter.PerPage = 50
	}

	var components []model.Component
	var total int64
	err := retryTransient(log, func() error {
		query := r.db.WithContext(ctx).Model(&model.Component{})
		if filter.ManufacturerID != 0 {
			query = query.Where("manufacturer_id = ?", filter.ManufacturerID)
		}
		if filter.QCStatus != "" {
			query = query.Where("qc_status = ?", filter.QCStatus)
		}
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
		if filter.Search != "" {
			like := "%" + filter.Search + "%"
			query = query.Where(
				"component_name ILIKE ? OR item_code ILIKE ? OR batch_number ILIKE ?",
				like, like, like)
		}

		if err := query.Count(&total).Error; err != nil {
			return wrapDBErr(err, "components")
		}

		offset := (filter.Page - 1) * filter.PerPage
		return wrapDBErr(
			query.Order("generated_at DESC").Offset(offset).Limit(filter.PerPage).Find(&components).Error,
			"components")
	})
	if err != nil {
		return nil, 0, err
	}

	return components, total, nil
}

// DailyCounts aggregates production per day and component name for one
// manufacturer. When date is non-empty only that day is returned.
func (r *Registry) DailyCounts(ctx context.Context, manufacturerID uint, date string) (map[string]map[string]int, error) {
	log := logger.FromContext(ctx)

	type row struct {
		Day           string
		ComponentName string
		Count         int
	}

	var rows []row
	err := retryTransient(log, func() error {
		query := r.db.WithContext(ctx).Model(&model.Component{}).
			Select("to_char(generated_at, 'YYYY-MM-DD') AS day, component_name, count(*) AS count").
			Where("manufacturer_id = ?", manufacturerID).
			Group("day, component_name")
		if date != "" {
			query = query.Having("to_char(generated_at, 'YYYY-MM-DD') = ?", date)
		}
		return wrapDBErr(query.Scan(&rows).Error, "component counts")
	})
	if err != nil {
		return nil, err
	}

	counts := make(map[string]map[string]int)
	for _, r := range rows {
		if counts[r.Day] == nil {
			counts[r.Day] = make(map[string]int)
		}
		counts[r.Day][r.ComponentName] = r.Count
	}

	return counts, nil
}
