package pwm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"rpwm/pwm"
)

func TestIDStrings(t *testing.T) {
	assert.Equal(t, "pwm0", pwm.SliceID(0).String())
	assert.Equal(t, "pwm7", pwm.SliceID(7).String())
	assert.Equal(t, "pwm12", pwm.SliceID(12).String())
	assert.Equal(t, "B", pwm.ChannelB.String())
	assert.Equal(t, "count_falling_edge", pwm.ModeCountFallingEdge.String())
	assert.Equal(t, "mode(9)", pwm.SliceMode(9).String())
}

func TestParseSliceMode(t *testing.T) {
	for m := pwm.ModeFreeRunning; m <= pwm.ModeCountFallingEdge; m++ {
		got, ok := pwm.ParseSliceMode(m.String())
		assert.True(t, ok)
		assert.Equal(t, m, got)
	}
	_, ok := pwm.ParseSliceMode("sideways")
	assert.False(t, ok)
}
