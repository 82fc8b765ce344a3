package model

import "time"

// User roles
const (
	RoleManufacturer     = "MANUFACTURER"
	RoleQualityInspector = "QUALITY_INSPECTOR"
	RoleWarehouseManager = "WAREHOUSE_MANAGER"
	RoleInstallationTeam = "INSTALLATION_TEAM"
	RoleFieldInspector   = "FIELD_INSPECTOR"
)

// ValidRoles lists every role accepted at registration
var ValidRoles = []string{
	RoleManufacturer,
	RoleQualityInspector,
	RoleWarehouseManager,
	RoleInstallationTeam,
	RoleFieldInspector,
}

// User is an account for any of the role-specific clients
type User struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	Username    string    `json:"username" gorm:"type:varchar(100);uniqueIndex;not null"`
	Email       string    `json:"email" gorm:"type:varchar(255);not null"`
	Phone       string    `json:"phone" gorm:"type:varchar(50)"`
	Role        string    `json:"role" gorm:"type:varchar(50);not null"`
	Password    string    `json:"-" gorm:"type:varchar(255);not null"`
	Status      string    `json:"status" gorm:"type:varchar(20);default:'ACTIVE'"`
	EmployeeID  *string   `json:"employee_id,omitempty" gorm:"type:varchar(100)"`
	Department  *string   `json:"department,omitempty" gorm:"type:varchar(100)"`
	RailwayZone *string   `json:"railway_zone,omitempty" gorm:"type:varchar(100)"`
	Division    *string   `json:"division,omitempty" gorm:"type:varchar(100)"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Manufacturer is the company profile behind a MANUFACTURER user
type Manufacturer struct {
	ID               uint       `json:"id" gorm:"primarykey"`
	Username         string     `json:"username" gorm:"type:varchar(100);uniqueIndex;not null"`
	CompanyName      string     `json:"company_name" gorm:"type:varchar(255)"`
	ContactEmail     string     `json:"contact_email" gorm:"type:varchar(255)"`
	Address          string     `json:"address" gorm:"type:text"`
	LicenseNumber    string     `json:"license_number" gorm:"type:varchar(100)"`
	ApprovalStatus   string     `json:"approval_status" gorm:"type:varchar(20);default:'PENDING'"`
	Rating           float64    `json:"rating" gorm:"default:0"`
	Specialization   *string    `json:"specialization,omitempty" gorm:"type:varchar(255)"`
	RegistrationDate time.Time  `json:"registration_date"`
	LastAuditDate    *time.Time `json:"last_audit_date,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
