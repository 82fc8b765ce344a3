package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatSerialNumber(t *testing.T) {
	assert.Equal(t, "SER1", FormatSerialNumber(1))
	assert.Equal(t, "SER42", FormatSerialNumber(42))
	assert.Equal(t, "SER100000", FormatSerialNumber(100000))
}

func TestFormatBatchNumber(t *testing.T) {
	assert.Equal(t, "BATCH-ERC-60E1-A-0001", FormatBatchNumber("ERC-60E1-A", 1))
	assert.Equal(t, "BATCH-SLP-PSC-D-0217", FormatBatchNumber("SLP-PSC-D", 217))
	// The width is a minimum, not a cap
	assert.Equal(t, "BATCH-RAIL-60E1-12345", FormatBatchNumber("RAIL-60E1", 12345))
}

func TestFormatComponentID(t *testing.T) {
	day := time.Date(2026, 8, 31, 14, 5, 0, 0, time.UTC)
	assert.Equal(t, "COMP20260831000001", FormatComponentID(day, 1))
	assert.Equal(t, "COMP20260831000930", FormatComponentID(day, 930))

	other := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "COMP20250102000042", FormatComponentID(other, 42))
}

func TestNextBatchRejectsNonPositiveSize(t *testing.T) {
	g := NewIDGenerator()

	for _, size := range []int{0, -1, -100} {
		_, err := g.NextBatch(nil, "ERC-60E1-A", size, time.Now())
		require.Error(t, err)
		assert.Equal(t, KindValidation, KindOf(err))
	}
}
