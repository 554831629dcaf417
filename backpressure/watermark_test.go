package backpressure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWatermark_InitialState(t *testing.T) {
	w := &Watermark{Low: 2, High: 5}
	assert.True(t, w.OnYield(0))
	assert.False(t, (&Watermark{Low: 2, High: 5}).OnYield(10))
}

func TestWatermark_Hysteresis(t *testing.T) {
	w := &Watermark{Low: 2, High: 5}
	assert.True(t, w.OnYield(0))
	assert.True(t, w.OnYield(2))
	assert.True(t, w.OnYield(4)) // above Low, below High: holds true
	assert.False(t, w.OnYield(5))
	assert.False(t, w.OnConsume(3)) // below High, above Low: holds false
	assert.True(t, w.OnConsume(2))
}
