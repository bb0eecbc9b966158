package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesByKind(t *testing.T) {
	err := fmt.Errorf("lookup: %w", NotFound("employee not found"))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrValidation))
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestUpstreamKeepsExistingAppErrors(t *testing.T) {
	validation := Validation("bad input", Issue{Field: "kpiScore", Reason: "must be between 0 and 100"})

	assert.Same(t, validation, Upstream(validation, "storage failed"))
	assert.Nil(t, Upstream(nil, "storage failed"))

	wrapped := Upstream(errors.New("connection reset"), "failed to save employee")
	assert.True(t, errors.Is(wrapped, ErrUpstream))
	assert.Equal(t, "failed to save employee: connection reset", wrapped.Error())
}

func TestKindOfForeignError(t *testing.T) {
	assert.Equal(t, KindUpstream, KindOf(errors.New("boom")))
}
