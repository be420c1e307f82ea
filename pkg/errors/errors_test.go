package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceError(t *testing.T) {
	cause := New("connection refused")
	err := NewSourceError("moneycontrol", cause)

	assert.Equal(t, "source moneycontrol failed: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestPersistError(t *testing.T) {
	cause := New("disk full")
	err := NewPersistError("Acme Industries Ltd", cause)

	assert.Contains(t, err.Error(), "Acme Industries Ltd")
	assert.ErrorIs(t, err, cause)
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "url", Value: "", Message: "http source requires a url"}

	assert.Contains(t, err.Error(), "url")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestIOError(t *testing.T) {
	cause := New("permission denied")
	err := WrapIO("read", "/etc/sources.yaml", cause)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "/etc/sources.yaml")
	assert.ErrorIs(t, err, cause)

	assert.NoError(t, WrapIO("read", "x", nil))
}

func TestHelpers(t *testing.T) {
	assert.True(t, IsNotFound(ErrNotFound))
	assert.True(t, IsNotFound(errors.Join(New("wrapped"), ErrNotFound)))
	assert.False(t, IsNotFound(New("other")))

	assert.True(t, IsTimeout(ErrTimeout))
	assert.False(t, IsTimeout(ErrNotFound))
}
