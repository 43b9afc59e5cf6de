package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")

	t.Run("tags cause", func(t *testing.T) {
		err := Wrap(ErrStoreUnavailable, cause)
		assert.ErrorIs(t, err, ErrStoreUnavailable)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("keeps existing kind", func(t *testing.T) {
		inner := fmt.Errorf("lookup: %w", ErrNotFound)
		err := Wrap(ErrStoreUnavailable, inner)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NotErrorIs(t, err, ErrStoreUnavailable)
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, Wrap(ErrAllocationIO, nil))
	})
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"not found", Wrap(ErrNotFound, errors.New("no rows")), http.StatusNotFound, "Thread not found"},
		{"collision", ErrCollision, http.StatusConflict, "Conflict, please retry"},
		{"store", Wrap(ErrStoreUnavailable, errors.New("dial tcp")), http.StatusInternalServerError, "Internal error"},
		{"allocation", ErrAllocationIO, http.StatusInternalServerError, "Internal error"},
		{"corrupt", ErrCorruptCounterState, http.StatusInternalServerError, "Internal error"},
		{"with status", &ErrorWithStatusCode{Message: "Title is required", StatusCode: http.StatusBadRequest}, http.StatusBadRequest, "Title is required"},
		{"plain", errors.New("boom"), http.StatusInternalServerError, "Internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, StatusCode(tt.err))
			assert.Equal(t, tt.message, PublicMessage(tt.err))
		})
	}
}
