package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(cause, CodeInternalError, "Internal server error", http.StatusInternalServerError)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Internal server error: connection reset", err.Error())
	assert.Nil(t, Wrap(nil, CodeInternalError, "x", http.StatusInternalServerError))
}

func TestAsFindsWrappedAppError(t *testing.T) {
	err := fmt.Errorf("update task: %w", ErrNotFound)

	appErr, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, appErr.HTTPStatus)
	assert.True(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(errors.New("plain"), CodeNotFound))
}
