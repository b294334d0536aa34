package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindMatchQuery_LiteralContainment(t *testing.T) {
	assert.Contains(t, findMatchQuery, "strpos(lower($2), lower(pattern)) > 0")
	assert.NotContains(t, findMatchQuery, "LIKE")
}
