package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNear(t *testing.T) {
	assert.True(t, Near(1, 1+1.e-9))
	assert.False(t, Near(1, 1+1.e-7))
	// relative above one
	assert.True(t, Near(1.e6, 1.e6+1.e-3))
	assert.False(t, Near(1.e6, 1.e6+1))
	// absolute near zero
	assert.True(t, Near(0, 1.e-9))
	assert.True(t, Near(0, 1.e-4, 1.e-3))
	assert.False(t, Near(0, 1.e-2, 1.e-3))
}
