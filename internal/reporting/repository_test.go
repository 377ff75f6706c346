package reporting

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExcludedInquiryStatusKeepsTrailingSpace(t *testing.T) {
	require.Equal(t, "closed ", excludedInquiryStatus)
	assert.NotEqual(t, strings.TrimRight(excludedInquiryStatus, " "), excludedInquiryStatus,
		"the trailing space distinguishes excluded rows from plain 'closed' ones")
}

func TestCountInquiriesQueryUsesTrailingSpaceLiteral(t *testing.T) {
	for _, scoped := range []bool{false, true} {
		query := countInquiriesQuery(scoped)
		assert.Contains(t, query, "status <> 'closed '")
		assert.NotContains(t, query, "'closed'")
	}
	assert.Contains(t, countInquiriesQuery(true), "business_unit_id = $3")
	assert.NotContains(t, countInquiriesQuery(false), "business_unit_id")
}
