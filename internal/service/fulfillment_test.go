package service

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
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

func newTestCoordinator(db *gorm.DB) *Coordinator {
	idgen := NewIDGenerator()
	registry := NewRegistry(db, idgen, NewLedger(db), NewComponentCache(nil))
	return NewCoordinator(db, registry, idgen)
}

func TestCreateRequestValidatesInput(t *testing.T) {
	c := newTestCoordinator(nil)
	ctx := context.Background()

	_, err := c.CreateRequest(ctx, "", "ERC-60E1-A", 5, "", "wh1")
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = c.CreateRequest(ctx, "W-NORTH", "", 5, "", "wh1")
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = c.CreateRequest(ctx, "W-NORTH", "ERC-60E1-A", 0, "", "wh1")
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestCreateRequestRejectsUnknownItemCode(t *testing.T) {
	db, mock := newMockDB(t)
	c := newTestCoordinator(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "component_types"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectRollback()

	_, err := c.CreateRequest(context.Background(), "W-NORTH", "NOT-A-CODE", 5, "", "wh1")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcceptRejectsAlreadyResolvedRequest(t *testing.T) {
	db, mock := newMockDB(t)
	c := newTestCoordinator(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "replenishment_requests"`).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "request_id", "warehouse_id", "item_code", "quantity", "status"}).
			AddRow(1, "REQ000001", "W-NORTH", "ERC-60E1-A", 5, "Accepted"))
	mock.ExpectRollback()

	_, _, err := c.Accept(context.Background(), "REQ000001", 7)
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcceptUnknownRequestIsNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	c := newTestCoordinator(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "replenishment_requests"`).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "request_id", "warehouse_id", "item_code", "quantity", "status"}))
	mock.ExpectRollback()

	_, _, err := c.Accept(context.Background(), "REQ999999", 7)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcceptRollsBackWhenGenerationFails(t *testing.T) {
	db, mock := newMockDB(t)
	c := newTestCoordinator(db)

	// The request is open but its item code has vanished from the catalog;
	// the whole transaction must roll back and leave the request untouched.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "replenishment_requests"`).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "request_id", "warehouse_id", "item_code", "quantity", "status"}).
			AddRow(1, "REQ000002", "W-NORTH", "GONE-CODE", 5, "Open"))
	mock.ExpectQuery(`SELECT (.+) FROM "component_types"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, _, err := c.Accept(context.Background(), "REQ000002", 7)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRejectResolvesOpenRequest(t *testing.T) {
	db, mock := newMockDB(t)
	c := newTestCoordinator(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "replenishment_requests"`).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "request_id", "warehouse_id", "item_code", "quantity", "status"}).
			AddRow(1, "REQ000003", "W-NORTH", "ERC-60E1-A", 5, "Open"))
	mock.ExpectExec(`UPDATE "replenishment_requests"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	request, err := c.Reject(context.Background(), "REQ000003")
	require.NoError(t, err)
	assert.Equal(t, "Rejected", request.Status)
	assert.NotNil(t, request.ResolvedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}
