package service

import (
	"context"
	"testing"
	"time"

	"railtrace/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusForStock(t *testing.T) {
	tests := []struct {
		count int
		want  string
	}{
		{0, model.StockCritical},
		{1, model.StockCritical},
		{5, model.StockCritical},
		{6, model.StockLow},
		{10, model.StockLow},
		{15, model.StockLow},
		{16, model.StockOK},
		{1000, model.StockOK},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusForStock(tt.count), "count=%d", tt.count)
	}
}

func TestApplyValidatesInput(t *testing.T) {
	l := NewLedger(nil)
	now := time.Now().UTC()

	_, err := l.Apply(nil, "", "W-CENTRAL", 5, now)
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = l.Apply(nil, "ERC-60E1-A", "", 5, now)
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = l.Apply(nil, "ERC-60E1-A", "W-CENTRAL", 0, now)
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestRestockRejectsNegativeResultingStock(t *testing.T) {
	db, mock := newMockDB(t)
	l := NewLedger(db)

	// Five units on hand; withdrawing ten must fail validation and roll the
	// whole adjustment back, leaving the stored count untouched.
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "inventory_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(`SELECT (.+) FROM "inventory_items"`).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "item_code", "warehouse_id", "stock_count", "status"}).
			AddRow(1, "ERC-60E1-A", "W-NORTH", 5, "Critical"))
	mock.ExpectRollback()

	_, err := l.Restock(context.Background(), "ERC-60E1-A", "W-NORTH", -10)
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
