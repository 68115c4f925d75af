package httperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, Validation("x").Status())
	assert.Equal(t, http.StatusNotFound, NotFound("x").Status())
	assert.Equal(t, http.StatusInternalServerError, Config("x").Status())
	assert.Equal(t, http.StatusInternalServerError, Relay("x", nil).Status())
	assert.Equal(t, http.StatusInternalServerError, Storage("x", nil).Status())
}

func TestStatusForUntypedError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.New("boom")))
}

func TestStatusForWrappedError(t *testing.T) {
	err := fmt.Errorf("outer: %w", NotFound("thread not found"))
	assert.Equal(t, http.StatusNotFound, StatusFor(err))
	assert.Equal(t, "thread not found", MessageFor(err))
}

func TestMessageForHidesInternals(t *testing.T) {
	assert.Equal(t, "internal server error", MessageFor(errors.New("pq: connection refused")))
}

func TestErrorStringIncludesCause(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := Relay("bot error", cause)
	assert.Contains(t, err.Error(), "bot error")
	assert.Contains(t, err.Error(), "dial tcp")
	assert.ErrorIs(t, err, cause)
}
