package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummary(t *testing.T) {
	assert.Equal(t, "parker dev (UNKNOWN, built UNKNOWN)", Summary())
}
