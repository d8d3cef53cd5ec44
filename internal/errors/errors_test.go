package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("redis down")
	err := Wrap(cause, ErrCodeUnavailable, "status store unavailable")

	assert.Equal(t, "status store unavailable: redis down", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "x"))
	assert.Equal(t, "plain", NotFound("plain").Error())
}

func TestCodeHelpers(t *testing.T) {
	wrapped := fmt.Errorf("enqueue: %w", RateLimited("Daily limit reached"))

	assert.True(t, IsRateLimited(wrapped))
	assert.False(t, IsNotFound(wrapped))
	assert.Equal(t, ErrCodeRateLimited, GetCode(wrapped))
	assert.Equal(t, ErrorCode(""), GetCode(errors.New("x")))
	assert.Equal(t, "topic", GetField(ValidationField("topic", "too short")))
	assert.True(t, IsValidation(Validation("bad")))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[ErrorCode]int{
		ErrCodeNotFound:    http.StatusNotFound,
		ErrCodeValidation:  http.StatusBadRequest,
		ErrCodeRateLimited: http.StatusTooManyRequests,
		ErrCodeUnavailable: http.StatusServiceUnavailable,
		ErrCodeInternal:    http.StatusInternalServerError,
		ErrorCode("other"): http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, code.HTTPStatus(), code)
	}
}

func TestPublicMessage(t *testing.T) {
	err := Wrapf(errors.New("secret stack detail"), ErrCodeInternal, "could not load %s", "presentation")
	assert.Equal(t, "could not load presentation", PublicMessage(err))
	assert.Equal(t, "Internal server error", PublicMessage(errors.New("secret stack detail")))
}

func TestErrorClass(t *testing.T) {
	err := fmt.Errorf("enqueue: %w", RateLimited("daily limit reached"))
	var classed interface{ ErrorClass() string }
	assert.True(t, errors.As(err, &classed))
	assert.Equal(t, "rate_limited", classed.ErrorClass())

	var nilErr *AppError
	assert.Empty(t, nilErr.ErrorClass())
}
