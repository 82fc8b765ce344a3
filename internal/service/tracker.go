package service

import (
	"context"
	"strings"
	"time"

	"railtrace/internal/model"
	"railtrace/pkg/logger"
	"railtrace/prometheus"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CanInstall reports whether a component in the given installation status may
// be installed. Only fresh and replaced units are installable; an installed
// unit must go through NeedsReplacement first.
func CanInstall(status string) bool {
	return status == model.StatusManufactured || status == model.StatusNeedsReplacement
}

// CanInspect reports whether a field inspection may be recorded
func CanInspect(status string) bool {
	return status == model.StatusInstalled
}

// CanReplace reports whether a replacement may be recorded
func CanReplace(status string) bool {
	return status == model.StatusNeedsReplacement
}

// NormalizeFieldResult maps a submitted field-inspection result onto the two
// recognized values, or returns a validation error.
func NormalizeFieldResult(result string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(result)) {
	case model.ResultOK:
		return model.ResultOK, nil
	case model.ResultDefected:
		return model.ResultDefected, nil
	default:
		return "", Validationf("result must be %q or %q, got %q", model.ResultOK, model.ResultDefected, result)
	}
}

// Tracker records field installations and periodic inspections keyed by the
// component id carried in the scanned QR payload.
type Tracker struct {
	db    *gorm.DB
	cache *ComponentCache
}

func NewTracker(db *gorm.DB, cache *ComponentCache) *Tracker {
	return &Tracker{db: db, cache: cache}
}

// Install marks a component as installed at the given coordinates. Requires
// status Manufactured or NeedsReplacement; a second install on an installed
// unit is a state error.
func (t *Tracker) Install(ctx context.Context, componentID string, latitude, longitude float64, installedBy string) (*model.Component, error) {
	if latitude < -90 || latitude > 90 || longitude < -180 || longitude > 180 {
		return nil, Validationf("coordinates out of range: %f, %f", latitude, longitude)
	}

	var component model.Component
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("component_id = ?", componentID).
			First(&component).Error; err != nil {
			return wrapDBErr(err, "component")
		}

		if !CanInstall(component.Status) {
			return Statef("component %s cannot be installed from status %s", componentID, component.Status)
		}

		now := time.Now().UTC()
		component.Status = model.StatusInstalled
		component.InstallationLatitude = &latitude
		component.InstallationLongitude = &longitude
		component.InstalledBy = installedBy
		component.InstalledAt = &now

		return wrapDBErr(tx.Model(&model.Component{}).
			Where("component_id = ?", componentID).
			Updates(map[string]interface{}{
				"status":                 model.StatusInstalled,
				"installation_latitude":  latitude,
				"installation_longitude": longitude,
				"installed_by":           installedBy,
				"installed_at":           now,
			}).Error, "component")
	})
	if err != nil {
		return nil, err
	}

	t.cache.Invalidate(ctx, componentID)
	prometheus.InstallationsCounter.Inc()
	return &component, nil
}

// Inspect appends a field inspection record for an installed component. A
// DEFECTED result moves the component to NeedsReplacement.
func (t *Tracker) Inspect(ctx context.Context, componentID, inspectorID, result string, defectType *string, comments string) (*model.InspectionRecord, error) {
	normalized, err := NormalizeFieldResult(result)
	if err != nil {
		return nil, err
	}

	var record model.InspectionRecord
	err = t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var component model.Component
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("component_id = ?", componentID).
			First(&component).Error; err != nil {
			return wrapDBErr(err, "component")
		}

		if !CanInspect(component.Status) {
			return Statef("component %s is not installed (status %s)", componentID, component.Status)
		}

		record = model.InspectionRecord{
			InspectionID: uuid.New().String(),
			ComponentID:  componentID,
			InspectorID:  inspectorID,
			Stage:        model.StageField,
			Result:       normalized,
			DefectType:   defectType,
			Comments:     comments,
			InspectedAt:  time.Now().UTC(),
		}
		if err := tx.Create(&record).Error; err != nil {
			return wrapDBErr(err, "inspection record")
		}

		if normalized == model.ResultDefected {
			return wrapDBErr(tx.Model(&model.Component{}).
				Where("component_id = ?", componentID).
				Update("status", model.StatusNeedsReplacement).Error, "component")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	t.cache.Invalidate(ctx, componentID)
	prometheus.RecordFieldInspection(normalized)
	return &record, nil
}

// Replace records a physical swap for a component flagged NeedsReplacement
// and starts a new inspection cycle at Installed. The component keeps its
// identifier: the QR tag stays with the track position record, and the
// replacement marker in the inspection history delimits the old cycle.
func (t *Tracker) Replace(ctx context.Context, componentID, replacedBy string) (*model.Component, error) {
	var component model.Component
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("component_id = ?", componentID).
			First(&component).Error; err != nil {
			return wrapDBErr(err, "component")
		}

		if !CanReplace(component.Status) {
			return Statef("component %s is not awaiting replacement (status %s)", componentID, component.Status)
		}

		now := time.Now().UTC()
		record := model.InspectionRecord{
			InspectionID: uuid.New().String(),
			ComponentID:  componentID,
			InspectorID:  replacedBy,
			Stage:        model.StageReplacement,
			Result:       model.ResultReplaced,
			Comments:     "unit physically replaced, new inspection cycle",
			InspectedAt:  now,
		}
		if err := tx.Create(&record).Error; err != nil {
			return wrapDBErr(err, "inspection record")
		}

		component.Status = model.StatusInstalled
		return wrapDBErr(tx.Model(&model.Component{}).
			Where("component_id = ?", componentID).
			Updates(map[string]interface{}{
				"status":       model.StatusInstalled,
				"installed_at": now,
				"installed_by": replacedBy,
			}).Error, "component")
	})
	if err != nil {
		return nil, err
	}

	t.cache.Invalidate(ctx, componentID)
	prometheus.ReplacementsCounter.Inc()
	return &component, nil
}

// History returns the inspection records for a component, newest first
func (t *Tracker) History(ctx context.Context, componentID string) ([]model.InspectionRecord, error) {
	log := logger.FromContext(ctx)

	var records []model.InspectionRecord
	err := retryTransient(log, func() error {
		return wrapDBErr(
			t.db.WithContext(ctx).
				Where("component_id = ?", componentID).
				Order("inspected_at DESC").
				Find(&records).Error,
			"inspection history")
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}
