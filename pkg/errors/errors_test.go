package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppErrorMessageIncludesInternal(t *testing.T) {
	base := New("TEST", "something broke", http.StatusTeapot)
	require.Equal(t, "something broke", base.Error())

	wrapped := base.WithInternal(errors.New("disk full"))
	require.Equal(t, "something broke: disk full", wrapped.Error())
	require.Equal(t, http.StatusTeapot, wrapped.StatusCode)
}

func TestFromErrorRecognisesAppErrors(t *testing.T) {
	require.Nil(t, FromError(nil))

	err := fmt.Errorf("outer: %w", ErrTenantNotEmpty)
	require.Equal(t, ErrTenantNotEmpty, FromError(err))

	generic := FromError(errors.New("boom"))
	require.Equal(t, ErrInternalServer.Code, generic.Code)
	require.EqualError(t, generic.Unwrap(), "boom")
}

func TestWrapPreservesOriginal(t *testing.T) {
	original := errors.New("constraint violated")
	wrapped := Wrap(original, "save tenant")
	require.True(t, errors.Is(wrapped, original))
	require.Equal(t, http.StatusInternalServerError, wrapped.StatusCode)
}
