package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/ssq-forecast/internal/service"
)

func TestJoinNumbers(t *testing.T) {
	assert.Equal(t, "03 09 14 21 27 33", joinNumbers([]int{3, 9, 14, 21, 27, 33}))
	assert.Equal(t, "", joinNumbers(nil))
}

func TestFormatEmptyBatch(t *testing.T) {
	out := formatBatch(&service.RecommendationBatch{Target: "Tuesday"})
	assert.Contains(t, out, "Target weekday: Tuesday")
	assert.Contains(t, out, "No sets generated")
	assert.NotContains(t, out, "Sum constraint")
}
