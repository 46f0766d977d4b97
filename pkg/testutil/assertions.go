package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// AssertErrorContains checks that err contains the expected substring.
func AssertErrorContains(t *testing.T, err error, expected string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), expected)
	}
}

// AssertFloatsInDelta compares two float slices element-wise.
func AssertFloatsInDelta(t *testing.T, expected, actual []float64, delta float64) {
	t.Helper()
	if !assert.Len(t, actual, len(expected)) {
		return
	}
	for i := range expected {
		assert.InDelta(t, expected[i], actual[i], delta, "index %d", i)
	}
}
