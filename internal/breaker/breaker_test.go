package breaker

import (
	"errors"
	"net/http"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestBreakerOpensAfterThreeFailures(t *testing.T) {
	cb := New("test", zap.NewNop())
	fail := func() (interface{}, error) { return nil, errors.New("boom") }

	for i := 0; i < 3; i++ {
		_, err := cb.Execute(fail)
		assert.EqualError(t, err, "boom")
	}
	assert.Equal(t, gobreaker.StateOpen, cb.State())

	_, err := cb.Execute(fail)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestBreakerIgnoresClientErrors(t *testing.T) {
	cb := New("test", zap.NewNop())
	notFound := func() (interface{}, error) {
		return nil, &StatusError{Service: "lookup", StatusCode: http.StatusNotFound}
	}

	for i := 0; i < 5; i++ {
		_, err := cb.Execute(notFound)
		assert.EqualError(t, err, "lookup returned status 404")
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())

	for i := 0; i < 3; i++ {
		_, _ = cb.Execute(func() (interface{}, error) {
			return nil, &StatusError{Service: "lookup", StatusCode: http.StatusServiceUnavailable}
		})
	}
	assert.Equal(t, gobreaker.StateOpen, cb.State())
}
