package errors_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GNOME/libgdata-sub004/pkg/errors"
)

func TestProtocolErrorStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{401, errors.ErrAuthenticationRequired},
		{403, errors.ErrAuthenticationRequired},
		{404, errors.ErrNotFound},
		{409, errors.ErrConflict},
		{412, errors.ErrConflict},
		{503, errors.ErrUnavailable},
		{500, errors.ErrProtocol},
		{418, errors.ErrProtocol},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d", tt.status), func(t *testing.T) {
			err := errors.NewProtocolError(tt.status, "boom")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestProtocolErrorMessage(t *testing.T) {
	assert.Equal(t, "server error (status 404): no such contact",
		errors.NewProtocolError(404, "no such contact").Error())
	assert.Equal(t, "server error (status 500)",
		errors.NewProtocolError(500, "").Error())
}

func TestProtocolErrorSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("querying contacts: %w", errors.NewProtocolError(404, "gone"))
	assert.True(t, errors.IsNotFound(err))

	var pe *errors.ProtocolError
	assert.True(t, errors.As(err, &pe))
	assert.Equal(t, 404, pe.StatusCode)
}

func TestAuthErrorMapping(t *testing.T) {
	assert.ErrorIs(t, errors.NewAuthError(errors.AuthBadCredentials), errors.ErrBadCredentials)
	assert.ErrorIs(t, errors.NewAuthError(errors.AuthCaptchaRequired), errors.ErrCaptchaRequired)
	assert.ErrorIs(t, errors.NewAuthError(errors.AuthServiceUnavailable), errors.ErrUnavailable)
	assert.ErrorIs(t, errors.NewAuthError(errors.AuthAccountDisabled), errors.ErrAuthenticationRequired)
}

func TestNetworkError(t *testing.T) {
	err := errors.NewNetworkError("send", "http://example.com/feed", errors.New("connection reset"))
	assert.ErrorIs(t, err, errors.ErrNetwork)
	assert.Contains(t, err.Error(), "http://example.com/feed")
}

func TestParseErrorFormatting(t *testing.T) {
	err := &errors.ParseError{
		Kind:    errors.ParseUnknownValue,
		Element: "gd:when",
		Value:   "sometimes",
	}
	assert.Equal(t, `unknown property value: gd:when (value "sometimes")`, err.Error())
	assert.True(t, errors.IsParseError(err))
	assert.True(t, errors.IsParseError(fmt.Errorf("loading feed: %w", err)))
	assert.False(t, errors.IsParseError(errors.New("plain")))
}

func TestBatchErrorCarriesOperationID(t *testing.T) {
	err := &errors.BatchError{OperationID: 3, Err: errors.NewProtocolError(412, "etag mismatch")}
	assert.True(t, errors.IsConflict(err))
	assert.Contains(t, err.Error(), "batch operation 3")
}

func TestWrapCanceled(t *testing.T) {
	assert.True(t, errors.IsCanceled(errors.WrapCanceled(context.Canceled)))
}
