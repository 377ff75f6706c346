package sales

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lns-erp/lns-erp/internal/shared"
)

func TestErrNotFoundMatchesSharedSentinel(t *testing.T) {
	assert.ErrorIs(t, ErrNotFound, shared.ErrNotFound)
	assert.ErrorIs(t, fmt.Errorf("get inquiry: %w", ErrNotFound), shared.ErrNotFound)
}
