package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// QC statuses (spec: Pending is the only non-terminal state)
const (
	QCPending  = "Pending"
	QCApproved = "Approved"
	QCRejected = "Rejected"
)

// Installation lifecycle statuses
const (
	StatusManufactured     = "Manufactured"
	StatusInstalled        = "Installed"
	StatusNeedsReplacement = "NeedsReplacement"
)

// Inspection results
const (
	ResultOK       = "OK"
	ResultDefected = "DEFECTED"
	ResultPassed   = "Passed"
	ResultFailed   = "Failed"
	ResultReplaced = "Replaced"
)

// Inspection stages
const (
	StageQC          = "qc"
	StageField       = "field"
	StageReplacement = "replacement"
)

// JSONMap stores a free-form key/value document in a jsonb column
type JSONMap map[string]interface{}

func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan JSONMap: %v", value)
	}

	return json.Unmarshal(bytes, m)
}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	return json.Marshal(m)
}

// Component is the authoritative record of one manufactured physical unit.
// The QR payload scanned in the field carries ComponentID.
type Component struct {
	ID                    uint            `json:"-" gorm:"primarykey"`
	ComponentID           string          `json:"component_id" gorm:"type:varchar(100);uniqueIndex;not null"`
	QRPayload             string          `json:"qr_payload" gorm:"type:varchar(100);not null"`
	ItemCode              string          `json:"item_code" gorm:"type:varchar(100);index;not null"`
	ComponentName         string          `json:"component_name" gorm:"type:varchar(255);not null"`
	Specifications        JSONMap         `json:"specifications" gorm:"type:jsonb"`
	SerialNumber          string          `json:"serial_number" gorm:"type:varchar(100);uniqueIndex;not null"`
	BatchNumber           string          `json:"batch_number" gorm:"type:varchar(100);index;not null"`
	ManufacturerID        uint            `json:"manufacturer_id" gorm:"index;not null"`
	WarehouseID           string          `json:"warehouse_id" gorm:"type:varchar(100);index"`
	ProductionDate        time.Time       `json:"production_date"`
	WarrantyPeriod        int             `json:"warranty_period" gorm:"default:24"`
	UnitWeight            decimal.Decimal `json:"unit_weight" gorm:"type:numeric(12,3)"`
	IRSSpecification      string          `json:"irs_specification" gorm:"type:varchar(100)"`
	GeneratedAt           time.Time       `json:"generated_at"`
	ExpectedExpiry        time.Time       `json:"expected_expiry"`
	QCStatus              string          `json:"qc_status" gorm:"type:varchar(20);index;default:'Pending'"`
	QCDate                *time.Time      `json:"qc_date,omitempty"`
	InspectorID           string          `json:"inspector_id,omitempty" gorm:"type:varchar(100)"`
	Status                string          `json:"status" gorm:"type:varchar(30);index;default:'Manufactured'"`
	InstallationLatitude  *float64        `json:"installation_latitude,omitempty"`
	InstallationLongitude *float64        `json:"installation_longitude,omitempty"`
	InstalledBy           string          `json:"installed_by,omitempty" gorm:"type:varchar(100)"`
	InstalledAt           *time.Time      `json:"installed_at,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// InspectionRecord is one QC or field inspection event against a component.
// Rows are append-only; a component's current state is a fold over them.
type InspectionRecord struct {
	ID           uint      `json:"-" gorm:"primarykey"`
	InspectionID string    `json:"inspection_id" gorm:"type:varchar(100);uniqueIndex;not null"`
	ComponentID  string    `json:"component_id" gorm:"type:varchar(100);index;not null"`
	InspectorID  string    `json:"inspector_id" gorm:"type:varchar(100)"`
	Stage        string    `json:"stage" gorm:"type:varchar(20);not null"`
	Result       string    `json:"result" gorm:"type:varchar(20);not null"`
	DefectType   *string   `json:"defect_type,omitempty" gorm:"type:varchar(100)"`
	Comments     string    `json:"comments" gorm:"type:text"`
	TestResults  JSONMap   `json:"test_results,omitempty" gorm:"type:jsonb"`
	InspectedAt  time.Time `json:"inspected_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// ComponentType is the catalog of manufacturable item codes
type ComponentType struct {
	ID               uint            `json:"id" gorm:"primarykey"`
	Code             string          `json:"code" gorm:"type:varchar(100);uniqueIndex;not null"`
	Name             string          `json:"name" gorm:"type:varchar(255);not null"`
	IRSSpecification string          `json:"irs_specification" gorm:"type:varchar(100)"`
	UnitWeight       decimal.Decimal `json:"unit_weight" gorm:"type:numeric(12,3)"`
	WarrantyMonths   int             `json:"warranty_months" gorm:"default:24"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// QCTest is one entry of the configurable quality-control test catalog
type QCTest struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	TestType  string    `json:"test_type" gorm:"type:varchar(50);uniqueIndex;not null"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	Required  bool      `json:"required" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SequenceCounter backs the identifier generator. Counters survive restarts
// and are advanced under a row lock inside the issuing transaction.
type SequenceCounter struct {
	Name      string    `gorm:"type:varchar(150);primarykey"`
	Value     int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time
}
