package pwm

import (
	"errors"

	pkgerrors "github.com/pkg/errors"
)

// ErrIncompatiblePinFunction is returned when a pin cannot be routed to a
// PWM channel, either because it sits on a different slice/channel or
// because the pin multiplexer refused the PWM function.
var ErrIncompatiblePinFunction = errors.New("pwm: incompatible pin function")

// NumGPIO is the number of user GPIOs on the RP2040.
const NumGPIO = 30

// Pin is a GPIO that can be switched to the PWM function.
type Pin interface {
	// GPIO returns the pin number.
	GPIO() uint8

	// IntoPWM selects the PWM function on the pin.
	IntoPWM() error
}

// PinRoute returns the slice and channel a GPIO is hard-wired to.
// GPIO N maps to slice (N>>1)&7, channel A for even N and B for odd N.
func PinRoute(gpio uint8) (SliceID, ChannelID) {
	return SliceID((gpio >> 1) & 7), ChannelID(gpio & 1)
}

// OutputTo routes pin to this channel's output. On failure the channel is
// left unchanged and the error wraps ErrIncompatiblePinFunction.
func (c *DynChannel) OutputTo(pin Pin) error {
	return c.route(pin, c.id, "output")
}

// InputFrom routes pin to this slice's B input, which feeds the gated and
// edge counting modes. Only channel B pins can be inputs.
func (c *DynChannel) InputFrom(pin Pin) error {
	return c.route(pin, ChannelB, "input")
}

func (c *DynChannel) route(pin Pin, want ChannelID, dir string) error {
	gpio := pin.GPIO()
	if gpio >= NumGPIO {
		return pkgerrors.Wrapf(ErrIncompatiblePinFunction, "gpio%d does not exist", gpio)
	}
	slice, ch := PinRoute(gpio)
	if slice != c.SliceID() || ch != want {
		RecordEvent(EvtRouteFail, c.SliceID(), uint32(gpio))
		return pkgerrors.Wrapf(ErrIncompatiblePinFunction,
			"gpio%d is %s channel %s, not %s %s channel %s", gpio, slice, ch, dir, c.SliceID(), want)
	}
	if err := pin.IntoPWM(); err != nil {
		RecordEvent(EvtRouteFail, c.SliceID(), uint32(gpio))
		DebugPrintln("[PWM] gpio" + itoa(int(gpio)) + " refused PWM function: " + err.Error())
		return pkgerrors.Wrapf(ErrIncompatiblePinFunction, "gpio%d: %v", gpio, err)
	}
	DebugPrintln("[PWM] gpio" + itoa(int(gpio)) + " " + dir + " " + c.SliceID().String() + c.id.String())
	return nil
}
