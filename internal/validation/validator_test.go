package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dishuflix/internal/errors"
	"dishuflix/internal/validation"
)

type testRequest struct {
	Name    string `json:"name" validate:"notblank,max=64"`
	Outcome string `json:"outcome" validate:"required,oneof=success failure cancelled"`
	Episode int    `json:"episode" validate:"gte=1,lte=8"`
}

func TestValidator_Valid(t *testing.T) {
	v := validation.New()
	assert.NoError(t, v.Validate(testRequest{Name: "Asha", Outcome: "success", Episode: 3}))
}

func TestValidator_Errors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name  string
		req   testRequest
		field string
		msg   string
	}{
		{"blank name", testRequest{Name: "   ", Outcome: "success", Episode: 1}, "name", "must not be blank"},
		{"unknown outcome", testRequest{Name: "Asha", Outcome: "refunded", Episode: 1}, "outcome", "must be one of: success failure cancelled"},
		{"missing outcome", testRequest{Name: "Asha", Episode: 1}, "outcome", "is required"},
		{"episode too high", testRequest{Name: "Asha", Outcome: "failure", Episode: 9}, "episode", "must be less than or equal to 8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.ErrorIs(t, err, errors.ErrValidation)

			var de *errors.Error
			require.True(t, errors.As(err, &de))
			details, ok := de.Details.(map[string]string)
			require.True(t, ok)
			assert.Equal(t, tt.msg, details[tt.field])
		})
	}
}
