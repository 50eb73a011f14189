package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhaseError_MessageAndUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := &PhaseError{Phase: "resolve_plans", Day: 3, Err: cause}

	assert.Equal(t, "day 3: phase resolve_plans: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
}
