package service

import (
	"context"
	"time"

	"railtrace/internal/model"
	"railtrace/pkg/logger"
	"railtrace/prometheus"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Test result values accepted in a QC submission
const (
	TestPass = "pass"
	TestFail = "fail"
)

// QCOutcome is the verdict of one evaluated submission
type QCOutcome struct {
	Approved     bool
	MissingTests []string
	FailedTests  []string
}

// Evaluate applies the test catalog to a submission: approved iff every
// required test is present and passed. Unknown test types are rejected so a
// submission cannot smuggle results past the catalog.
func Evaluate(catalog []model.QCTest, results map[string]string) (QCOutcome, error) {
	known := make(map[string]bool, len(catalog))
	for _, test := range catalog {
		known[test.TestType] = true
	}
	for testType, value := range results {
		if !known[testType] {
			return QCOutcome{}, Validationf("unknown test type %q", testType)
		}
		if value != TestPass && value != TestFail {
			return QCOutcome{}, Validationf("test %q must be %q or %q, got %q", testType, TestPass, TestFail, value)
		}
	}

	// Only required tests decide the verdict; a failed optional test is
	// recorded in the submission but does not reject the component.
	outcome := QCOutcome{Approved: true}
	for _, test := range catalog {
		if !test.Required {
			continue
		}
		result, submitted := results[test.TestType]
		switch {
		case !submitted:
			outcome.Approved = false
			outcome.MissingTests = append(outcome.MissingTests, test.TestType)
		case result == TestFail:
			outcome.Approved = false
			outcome.FailedTests = append(outcome.FailedTests, test.TestType)
		}
	}

	return outcome, nil
}

// QCEngine advances components through the quality-control state machine
type QCEngine struct {
	db    *gorm.DB
	cache *ComponentCache
}

func NewQCEngine(db *gorm.DB, cache *ComponentCache) *QCEngine {
	return &QCEngine{db: db, cache: cache}
}

// Catalog returns the configured test catalog
func (q *QCEngine) Catalog(ctx context.Context) ([]model.QCTest, error) {
	log := logger.FromContext(ctx)

	var tests []model.QCTest
	err := retryTransient(log, func() error {
		return wrapDBErr(q.db.WithContext(ctx).Order("id").Find(&tests).Error, "qc test catalog")
	})
	if err != nil {
		return nil, err
	}
	return tests, nil
}

// Pending lists components still awaiting quality control
func (q *QCEngine) Pending(ctx context.Context) ([]model.Component, error) {
	log := logger.FromContext(ctx)

	var components []model.Component
	err := retryTransient(log, func() error {
		return wrapDBErr(
			q.db.WithContext(ctx).
				Where("qc_status = ?", model.QCPending).
				Order("generated_at").
				Find(&components).Error,
			"pending components")
	})
	if err != nil {
		return nil, err
	}
	return components, nil
}

// SubmitInspection evaluates the test results against the catalog and moves
// the component from Pending to Approved or Rejected. Terminal states are
// immutable; a rejected unit is re-manufactured, never re-inspected.
func (q *QCEngine) SubmitInspection(ctx context.Context, componentID, inspectorID string, results map[string]string, notes string) (*model.Component, *model.InspectionRecord, error) {
	if len(results) == 0 {
		return nil, nil, Validationf("test_results are required")
	}

	var component model.Component
	var record model.InspectionRecord

	err := q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var catalog []model.QCTest
		if err := tx.Order("id").Find(&catalog).Error; err != nil {
			return wrapDBErr(err, "qc test catalog")
		}

		outcome, err := Evaluate(catalog, results)
		if err != nil {
			return err
		}

		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("component_id = ?", componentID).
			First(&component).Error; err != nil {
			return wrapDBErr(err, "component")
		}

		if component.QCStatus != model.QCPending {
			return Conflictf("component %s already has terminal qc_status %s", componentID, component.QCStatus)
		}

		now := time.Now().UTC()
		newStatus := model.QCApproved
		result := model.ResultPassed
		if !outcome.Approved {
			newStatus = model.QCRejected
			result = model.ResultFailed
		}

		testResults := make(model.JSONMap, len(results))
		for testType, value := range results {
			testResults[testType] = value
		}

		record = model.InspectionRecord{
			InspectionID: uuid.New().String(),
			ComponentID:  componentID,
			InspectorID:  inspectorID,
			Stage:        model.StageQC,
			Result:       result,
			Comments:     notes,
			TestResults:  testResults,
			InspectedAt:  now,
		}
		if err := tx.Create(&record).Error; err != nil {
			return wrapDBErr(err, "inspection record")
		}

		component.QCStatus = newStatus
		component.QCDate = &now
		component.InspectorID = inspectorID
		return wrapDBErr(tx.Model(&model.Component{}).
			Where("component_id = ?", componentID).
			Updates(map[string]interface{}{
				"qc_status":    newStatus,
				"qc_date":      now,
				"inspector_id": inspectorID,
			}).Error, "component")
	})
	if err != nil {
		return nil, nil, err
	}

	q.cache.Invalidate(ctx, componentID)
	prometheus.RecordQCResult(component.QCStatus)
	return &component, &record, nil
}
