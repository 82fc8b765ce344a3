package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"railtrace/internal/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func TestGenerateQRRejectsExplicitZeroBatchSize(t *testing.T) {
	db, mock := newMockDB(t)

	idgen := service.NewIDGenerator()
	registry := service.NewRegistry(db, idgen, service.NewLedger(db), service.NewComponentCache(nil))
	coordinator := service.NewCoordinator(db, registry, idgen)
	h := NewManufacturerHandler(db, registry, coordinator, "W-CENTRAL")

	mock.ExpectQuery(`SELECT (.+) FROM "manufacturers"`).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "username", "company_name"}).
			AddRow(7, "maker1", "Rail Parts Ltd"))
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "component_types"`).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "code", "name", "irs_specification", "unit_weight", "warranty_months"}).
			AddRow(1, "ERC-60E1-A", "Rail Clip", "IRS-T-40-2018", "0.85", 24))
	mock.ExpectRollback()

	e := echo.New()
	body := `{"item_code":"ERC-60E1-A","batch_size":0}`
	req := httptest.NewRequest(http.MethodPost, "/manufacturer/components/generate_qr", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("username", "maker1")

	require.NoError(t, h.GenerateQR(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "batch_size")
	assert.NoError(t, mock.ExpectationsWereMet())
}
