package pwm_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpwm/pwm"
)

func TestPinRoute(t *testing.T) {
	tests := []struct {
		gpio  uint8
		slice pwm.SliceID
		ch    pwm.ChannelID
	}{
		{0, 0, pwm.ChannelA},
		{1, 0, pwm.ChannelB},
		{15, 7, pwm.ChannelB},
		{16, 0, pwm.ChannelA},
		{25, 4, pwm.ChannelB},
		{29, 6, pwm.ChannelB},
	}
	for _, tt := range tests {
		slice, ch := pwm.PinRoute(tt.gpio)
		assert.Equal(t, tt.slice, slice, "gpio%d", tt.gpio)
		assert.Equal(t, tt.ch, ch, "gpio%d", tt.gpio)
	}
}

func TestOutputTo(t *testing.T) {
	p := newPeripheral(t)
	c := pwm.NewDynChannelUnchecked(7, pwm.ModeFreeRunning, pwm.ChannelB)

	require.NoError(t, c.OutputTo(p.Pin(15)))
	assert.True(t, p.PinIsPWM(15))
}

func TestOutputToWrongPin(t *testing.T) {
	p := newPeripheral(t)
	c := pwm.NewDynChannelUnchecked(7, pwm.ModeFreeRunning, pwm.ChannelB)
	c.SetDuty(42)

	err := c.OutputTo(p.Pin(14)) // channel A of slice 7
	assert.True(t, errors.Is(err, pwm.ErrIncompatiblePinFunction))
	assert.False(t, p.PinIsPWM(14))

	err = c.OutputTo(p.Pin(40))
	assert.True(t, errors.Is(err, pwm.ErrIncompatiblePinFunction))

	// The channel is untouched and still usable.
	assert.Equal(t, uint16(42), c.Duty())
	require.NoError(t, c.OutputTo(p.Pin(31-16)))
}

func TestOutputToPinMuxFailure(t *testing.T) {
	p := newPeripheral(t)
	c := pwm.NewDynChannelUnchecked(0, pwm.ModeFreeRunning, pwm.ChannelA)
	p.FailPin(0, nil)

	err := c.OutputTo(p.Pin(0))
	assert.True(t, errors.Is(err, pwm.ErrIncompatiblePinFunction))
	assert.Contains(t, err.Error(), "gpio0")

	// Retry on the other pin wired to the same channel.
	assert.NoError(t, c.OutputTo(p.Pin(16)))
}

func TestInputFromRequiresChannelB(t *testing.T) {
	p := newPeripheral(t)
	c := pwm.NewDynChannelUnchecked(2, pwm.ModeCountRisingEdge, pwm.ChannelA)

	err := c.InputFrom(p.Pin(4))
	assert.True(t, errors.Is(err, pwm.ErrIncompatiblePinFunction), "gpio4 is 2A")

	assert.NoError(t, c.InputFrom(p.Pin(5)))
	assert.True(t, p.PinIsPWM(5))
}
