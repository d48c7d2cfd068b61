//go:build !wasm

package serial

import (
	"github.com/pkg/errors"
	"github.com/tarm/serial"
)

// consolePort is a console opened through tarm/serial. Read, Close and
// Flush come from the embedded port.
type consolePort struct {
	*serial.Port
}

// Open opens the console described by cfg.
func Open(cfg *Config) (Port, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.ReadTimeout <= 0 {
		return nil, errors.Errorf("%s: read timeout must be positive", cfg.Device)
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open serial port %s", cfg.Device)
	}
	return consolePort{port}, nil
}

// OpenMonitor opens the console, drops stale input and returns a following
// monitor over it. The caller closes the port.
func OpenMonitor(cfg *Config) (*Monitor, Port, error) {
	port, err := Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return Attach(port, cfg)
}
