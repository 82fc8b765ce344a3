package service

import (
	"context"
	"testing"

	"railtrace/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() []model.QCTest {
	return []model.QCTest{
		{TestType: "visual", Required: true},
		{TestType: "dimensional", Required: true},
		{TestType: "material", Required: false},
		{TestType: "tensile", Required: false},
		{TestType: "surface", Required: true},
		{TestType: "documentation", Required: true},
	}
}

func TestEvaluateApprovesWhenAllRequiredPass(t *testing.T) {
	outcome, err := Evaluate(testCatalog(), map[string]string{
		"visual":        TestPass,
		"dimensional":   TestPass,
		"surface":       TestPass,
		"documentation": TestPass,
	})
	require.NoError(t, err)
	assert.True(t, outcome.Approved)
	assert.Empty(t, outcome.MissingTests)
	assert.Empty(t, outcome.FailedTests)
}

func TestEvaluateOptionalTestsMayBeOmitted(t *testing.T) {
	outcome, err := Evaluate(testCatalog(), map[string]string{
		"visual":        TestPass,
		"dimensional":   TestPass,
		"material":      TestPass,
		"surface":       TestPass,
		"documentation": TestPass,
	})
	require.NoError(t, err)
	assert.True(t, outcome.Approved)
}

func TestEvaluateRejectsOnMissingRequiredTest(t *testing.T) {
	outcome, err := Evaluate(testCatalog(), map[string]string{
		"visual":        TestPass,
		"surface":       TestPass,
		"documentation": TestPass,
	})
	require.NoError(t, err)
	assert.False(t, outcome.Approved)
	assert.Equal(t, []string{"dimensional"}, outcome.MissingTests)
}

func TestEvaluateRejectsOnFailedRequiredTest(t *testing.T) {
	outcome, err := Evaluate(testCatalog(), map[string]string{
		"visual":        TestPass,
		"dimensional":   TestFail,
		"surface":       TestPass,
		"documentation": TestPass,
	})
	require.NoError(t, err)
	assert.False(t, outcome.Approved)
	assert.Equal(t, []string{"dimensional"}, outcome.FailedTests)
}

func TestEvaluateFailedOptionalTestDoesNotReject(t *testing.T) {
	// Approval depends on required tests only; an optional failure is noted
	// in the submitted results but must not condemn the component.
	outcome, err := Evaluate(testCatalog(), map[string]string{
		"visual":        TestPass,
		"dimensional":   TestPass,
		"tensile":       TestFail,
		"surface":       TestPass,
		"documentation": TestPass,
	})
	require.NoError(t, err)
	assert.True(t, outcome.Approved)
	assert.Empty(t, outcome.FailedTests)
}

func TestEvaluateRejectsUnknownTestType(t *testing.T) {
	_, err := Evaluate(testCatalog(), map[string]string{
		"visual":   TestPass,
		"hardness": TestPass,
	})
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestEvaluateRejectsUnknownResultValue(t *testing.T) {
	_, err := Evaluate(testCatalog(), map[string]string{
		"visual": "maybe",
	})
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestSubmitInspectionRejectsTerminalComponent(t *testing.T) {
	db, mock := newMockDB(t)
	qc := NewQCEngine(db, NewComponentCache(nil))

	// Approved and Rejected are terminal; a second submission must conflict
	// and leave no new inspection record behind.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "qc_tests"`).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "test_type", "name", "required"}).
			AddRow(1, "visual", "Visual Inspection", true))
	mock.ExpectQuery(`SELECT (.+) FROM "components"`).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "component_id", "qc_status", "status"}).
			AddRow(1, "COMP20260831000001", "Approved", "Manufactured"))
	mock.ExpectRollback()

	_, _, err := qc.SubmitInspection(context.Background(),
		"COMP20260831000001", "qc1", map[string]string{"visual": TestPass}, "")
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
