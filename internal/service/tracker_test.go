package service

import (
	"context"
	"testing"

	"railtrace/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanInstall(t *testing.T) {
	assert.True(t, CanInstall(model.StatusManufactured))
	assert.True(t, CanInstall(model.StatusNeedsReplacement))
	assert.False(t, CanInstall(model.StatusInstalled))
	assert.False(t, CanInstall(""))
}

func TestCanInspect(t *testing.T) {
	assert.True(t, CanInspect(model.StatusInstalled))
	assert.False(t, CanInspect(model.StatusManufactured))
	assert.False(t, CanInspect(model.StatusNeedsReplacement))
}

func TestCanReplace(t *testing.T) {
	assert.True(t, CanReplace(model.StatusNeedsReplacement))
	assert.False(t, CanReplace(model.StatusInstalled))
	assert.False(t, CanReplace(model.StatusManufactured))
}

func TestNormalizeFieldResult(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"OK", model.ResultOK, false},
		{"ok", model.ResultOK, false},
		{" Ok ", model.ResultOK, false},
		{"DEFECTED", model.ResultDefected, false},
		{"defected", model.ResultDefected, false},
		{"broken", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := NormalizeFieldResult(tt.in)
		if tt.wantErr {
			require.Error(t, err, "input=%q", tt.in)
			assert.Equal(t, KindValidation, KindOf(err))
			continue
		}
		require.NoError(t, err, "input=%q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestInstallRejectsOutOfRangeCoordinates(t *testing.T) {
	tracker := NewTracker(nil, NewComponentCache(nil))

	cases := []struct{ lat, lon float64 }{
		{91, 0},
		{-91, 0},
		{0, 181},
		{0, -181},
	}
	for _, tc := range cases {
		_, err := tracker.Install(context.Background(), "COMP20260831000001", tc.lat, tc.lon, "installer1")
		require.Error(t, err, "lat=%f lon=%f", tc.lat, tc.lon)
		assert.Equal(t, KindValidation, KindOf(err))
	}
}
