package scoreerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategories(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"state", InvalidState("constraint (%s) missing", "p/c"), ErrInvalidState},
		{"argument", InvalidArgument("level (%d) out of range", 3), ErrInvalidArgument},
		{"unsupported", Unsupported("no long support"), ErrUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.kind)
			for _, other := range []error{ErrInvalidState, ErrInvalidArgument, ErrUnsupported} {
				if other != tt.kind {
					assert.NotErrorIs(t, tt.err, other)
				}
			}
		})
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("constructor exploded")
	err := Wrap(ErrInvalidState, cause, "custom score holder (%s) failed", "mine")

	assert.ErrorIs(t, err, ErrInvalidState)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "mine")
	assert.Contains(t, err.Error(), "constructor exploded")
}
