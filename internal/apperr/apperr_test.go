package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindSurvivesWrapping(t *testing.T) {
	err := Conflictf("report %d already reviewed", 7)
	wrapped := fmt.Errorf("review: %w", err)

	assert.Equal(t, KindConflict, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindConflict))
	assert.False(t, IsKind(wrapped, KindNotFound))
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestInfrastructureUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := Infrastructure(cause, "insert report")

	assert.True(t, IsKind(err, KindInfrastructure))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "insert report")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestErrorMessageWithoutCause(t *testing.T) {
	err := Validationf("title is required")
	assert.Equal(t, "title is required", err.Error())
}
