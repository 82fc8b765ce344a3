package service

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(Validationf("bad input")))
	assert.Equal(t, KindConflict, KindOf(Conflictf("duplicate")))
	assert.Equal(t, KindNotFound, KindOf(NotFoundf("missing")))
	assert.Equal(t, KindState, KindOf(Statef("wrong state")))
	assert.Equal(t, KindTransient, KindOf(Transientf(nil, "db down")))

	// Unclassified errors are treated as retryable infrastructure failures
	assert.Equal(t, KindTransient, KindOf(errors.New("plain")))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(Validationf("bad input")))
	assert.Equal(t, http.StatusConflict, HTTPStatus(Conflictf("duplicate")))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFoundf("missing")))
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(Statef("wrong state")))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(errors.New("plain")))
}

func TestWrapDBErr(t *testing.T) {
	assert.NoError(t, wrapDBErr(nil, "component"))

	err := wrapDBErr(gorm.ErrDuplicatedKey, "component")
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, "component already exists", err.Error())

	err = wrapDBErr(gorm.ErrRecordNotFound, "component")
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "component not found", err.Error())

	cause := errors.New("connection refused")
	err = wrapDBErr(cause, "component")
	assert.Equal(t, KindTransient, KindOf(err))
	assert.ErrorIs(t, err, cause)
}
