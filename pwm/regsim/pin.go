package regsim

import (
	"errors"

	"rpwm/pwm"
)

// ErrPinFunction is the default failure of a pin marked with FailPin.
var ErrPinFunction = errors.New("regsim: pin function select failed")

// Pin is a simulated GPIO whose function select can be made to fail.
type Pin struct {
	p    *Peripheral
	gpio uint8
}

var _ pwm.Pin = (*Pin)(nil)

// Pin returns the simulated GPIO with the given number.
func (p *Peripheral) Pin(gpio uint8) *Pin {
	return &Pin{p: p, gpio: gpio}
}

// FailPin makes IntoPWM fail on gpio with err (ErrPinFunction if nil).
func (p *Peripheral) FailPin(gpio uint8, err error) {
	if err == nil {
		err = ErrPinFunction
	}
	p.pinFail[gpio] = err
}

// PinIsPWM reports whether gpio has been switched to the PWM function.
func (p *Peripheral) PinIsPWM(gpio uint8) bool {
	return p.pinFunc[gpio]
}

func (pin *Pin) GPIO() uint8 { return pin.gpio }

// IntoPWM selects the PWM function on the pin.
func (pin *Pin) IntoPWM() error {
	if err, ok := pin.p.pinFail[pin.gpio]; ok {
		return err
	}
	pin.p.pinFunc[pin.gpio] = true
	return nil
}
