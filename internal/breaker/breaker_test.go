package breaker

import (
	"errors"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_TripsAfterThreeFailures(t *testing.T) {
	t.Parallel()

	cb := New("breaker-test")
	fail := func() (any, error) { return nil, errors.New("connection refused") }

	for i := range 3 {
		_, err := cb.Execute(fail)
		require.Error(t, err, "call %d", i+1)
		assert.NotErrorIs(t, err, gobreaker.ErrOpenState)
	}

	_, err := cb.Execute(fail)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, gobreaker.StateOpen, cb.State())
}

func TestErr(t *testing.T) {
	t.Parallel()

	cause := errors.New("HTTP 500")

	tests := []struct {
		name     string
		in       error
		wantNil  bool
		wantOpen bool
	}{
		{name: "nil", in: nil, wantNil: true},
		{name: "open state", in: gobreaker.ErrOpenState, wantOpen: true},
		{name: "too many requests", in: gobreaker.ErrTooManyRequests, wantOpen: true},
		{name: "plain failure", in: cause},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := Err(tc.in)
			if tc.wantNil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.in)
			if tc.wantOpen {
				assert.Contains(t, err.Error(), "circuit open")
			} else {
				assert.Same(t, tc.in, err)
			}
		})
	}
}
