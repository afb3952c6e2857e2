package display

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitRGBA(t *testing.T) {
	r, g, b, a := SplitRGBA(0x11223344)

	assert.Equal(t, uint8(0x11), r)
	assert.Equal(t, uint8(0x22), g)
	assert.Equal(t, uint8(0x33), b)
	assert.Equal(t, uint8(0x44), a)
}
