//go:build rp2040

package hw

import (
	"errors"
	"machine"

	"rpwm/pwm"
)

var errNoSuchPin = errors.New("hw: no such GPIO")

// Pin routes a machine.Pin to the PWM function.
type Pin machine.Pin

var _ pwm.Pin = Pin(0)

func (p Pin) GPIO() uint8 { return uint8(p) }

// IntoPWM selects GPIO function 4 (PWM) on the pin.
func (p Pin) IntoPWM() error {
	if p >= pwm.NumGPIO {
		return errNoSuchPin
	}
	machine.Pin(p).Configure(machine.PinConfig{Mode: machine.PinPWM})
	return nil
}
