package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ratingPayload struct {
	RatingID int64 `validate:"required,gt=0"`
	Value    int   `validate:"rating_value"`
}

func TestValidateStruct(t *testing.T) {
	t.Run("valid payload passes", func(t *testing.T) {
		err := ValidateStruct(ratingPayload{RatingID: 10, Value: 4})
		assert.NoError(t, err)
	})

	t.Run("out of range rating value is rejected", func(t *testing.T) {
		err := ValidateStruct(ratingPayload{RatingID: 10, Value: 6})
		require.Error(t, err)

		var validationErr *ValidationError
		require.True(t, errors.As(err, &validationErr))
		assert.Contains(t, validationErr.Error(), "must be between 1 and 5")
	})

	t.Run("missing identifier is rejected", func(t *testing.T) {
		err := ValidateStruct(ratingPayload{Value: 4})
		require.Error(t, err)

		var validationErr *ValidationError
		require.True(t, errors.As(err, &validationErr))
		assert.Contains(t, validationErr.Error(), "RatingID")
	})

	t.Run("all failures are reported together", func(t *testing.T) {
		err := ValidateStruct(ratingPayload{Value: 0})
		require.Error(t, err)

		var validationErr *ValidationError
		require.True(t, errors.As(err, &validationErr))
		assert.Len(t, validationErr.Errors, 2)
	})
}
