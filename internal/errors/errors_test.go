package errors_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"dishuflix/internal/errors"
)

func TestIs_MatchesByCode(t *testing.T) {
	err := errors.Validationf("invite position %d out of range", 9)

	assert.True(t, errors.Is(err, errors.ErrValidation))
	assert.False(t, errors.Is(err, errors.ErrConflict))

	wrapped := fmt.Errorf("enter char: %w", err)
	assert.True(t, errors.Is(wrapped, errors.ErrValidation))
}

func TestStorage_WrapsCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := errors.Storage(cause, "dishuflix_myList")

	assert.ErrorIs(t, err, errors.ErrStorage)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "storage slot dishuflix_myList: disk full", err.Error())
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  *errors.Error
		want int
	}{
		{errors.NotFoundf("title %d", 1), http.StatusNotFound},
		{errors.Validation("bad"), http.StatusUnprocessableEntity},
		{errors.Conflictf("wrong state"), http.StatusConflict},
		{errors.Storage(nil, "k"), http.StatusServiceUnavailable},
		{errors.ExternalService("down"), http.StatusBadGateway},
		{errors.Wrap(fmt.Errorf("x"), errors.CodeInternal, "boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.HTTPStatus(), string(tt.err.Code))
	}
}

func TestWithDetails_DoesNotMutate(t *testing.T) {
	base := errors.Validation("bad char")
	withDetails := base.WithDetails(map[string]int{"position": 2})

	assert.Nil(t, base.Details)
	assert.NotNil(t, withDetails.Details)
	assert.ErrorIs(t, withDetails, errors.ErrValidation)
}
