package database

import (
	"railtrace/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// defaultComponentTypes is the manufacturable item-code catalog
var defaultComponentTypes = []model.ComponentType{
	{Code: "ERC-60E1-A", Name: "Rail Clip", IRSSpecification: "IRS-T-40-2018", UnitWeight: decimal.NewFromFloat(0.85), WarrantyMonths: 24},
	{Code: "FPL-52KG-B", Name: "Fish Plate", IRSSpecification: "IRS-T-12-2019", UnitWeight: decimal.NewFromFloat(12.5), WarrantyMonths: 36},
	{Code: "RPD-EVA-C", Name: "Rail Pad", IRSSpecification: "IRS-T-18-2020", UnitWeight: decimal.NewFromFloat(0.15), WarrantyMonths: 24},
	{Code: "SLP-PSC-D", Name: "Sleeper", IRSSpecification: "IRS-T-58-2017", UnitWeight: decimal.NewFromFloat(285.0), WarrantyMonths: 60},
	{Code: "BPL-CI-E", Name: "Base Plate", IRSSpecification: "IRS-T-25-2018", UnitWeight: decimal.NewFromFloat(18.5), WarrantyMonths: 36},
	{Code: "RAIL-60E1", Name: "Rail", IRSSpecification: "IRS-T-12-2009", UnitWeight: decimal.NewFromFloat(60.0), WarrantyMonths: 120},
}

// defaultQCTests is the quality-control test catalog. Which tests exist and
// which are required is data, not logic; operators adjust the rows directly.
var defaultQCTests = []model.QCTest{
	{TestType: "visual", Name: "Visual Inspection", Required: true},
	{TestType: "dimensional", Name: "Dimensional Check", Required: true},
	{TestType: "material", Name: "Material Testing", Required: false},
	{TestType: "tensile", Name: "Tensile Strength", Required: false},
	{TestType: "surface", Name: "Surface Finish", Required: true},
	{TestType: "documentation", Name: "Documentation Review", Required: true},
}

// Seed inserts catalog rows that are not already present
func Seed(db *gorm.DB) error {
	for _, componentType := range defaultComponentTypes {
		if err := db.Where(model.ComponentType{Code: componentType.Code}).
			FirstOrCreate(&componentType).Error; err != nil {
			return err
		}
	}

	for _, test := range defaultQCTests {
		if err := db.Where(model.QCTest{TestType: test.TestType}).
			FirstOrCreate(&test).Error; err != nil {
			return err
		}
	}

	return nil
}
