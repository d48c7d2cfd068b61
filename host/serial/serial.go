// Package serial reads the firmware's debug lines from its USB console.
package serial

import (
	"io"
	"time"

	"github.com/pkg/errors"
)

// Port is the read side of a console. The firmware never reads its
// console, so nothing is written back.
type Port interface {
	io.ReadCloser

	// Flush drops bytes the driver received before the monitor started, so
	// the first line shown is a whole one.
	Flush() error
}

// Config describes the console to open and which of its lines to show.
type Config struct {
	// Device path (e.g., "/dev/ttyACM0", "COM3")
	Device string

	// Baud is ignored by USB CDC but required by UART bridges.
	Baud int

	// ReadTimeout bounds each read so a following monitor notices
	// cancellation while the firmware is quiet.
	ReadTimeout time.Duration

	// Filter is the [TAG] to show; empty shows every line.
	Filter string
}

// DefaultConfig shows the [PWM] lines of the console at device.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 100 * time.Millisecond,
		Filter:      "PWM",
	}
}

// Attach flushes port and returns a following monitor over it filtered by
// cfg.Filter.
func Attach(port Port, cfg *Config) (*Monitor, Port, error) {
	if err := port.Flush(); err != nil {
		port.Close()
		return nil, nil, errors.Wrap(err, "flush console")
	}
	return NewMonitor(port, cfg.Filter, true), port, nil
}
