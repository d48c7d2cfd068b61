//go:build rp2040

package main

// FirmwareConfig holds the compile-time board setup.
type FirmwareConfig struct {
	// LEDPin is driven by the breathing output; any GPIO works, the slice
	// and channel are derived at runtime.
	LEDPin uint8

	// CountPin is the B input of the edge counting slice. Must be odd.
	CountPin uint8

	// Top and DivInt set the LED carrier: 125MHz / DivInt / (Top+1).
	Top    uint16
	DivInt uint8

	// BreatheStep is the duty change per carrier wrap.
	BreatheStep uint16

	// Debug enables the [PWM] log lines on USB CDC.
	Debug bool
}

// GetConfig returns the board configuration.
func GetConfig() FirmwareConfig {
	// Pico onboard LED on GP25 (slice 4, channel B); counting input on GP5
	// (slice 2, channel B). ~1kHz carrier.
	return FirmwareConfig{
		LEDPin:      25,
		CountPin:    5,
		Top:         12499,
		DivInt:      10,
		BreatheStep: 25,
		Debug:       true,
	}
}
