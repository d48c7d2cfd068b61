// Package config loads a YAML description of a PWM bench setup and applies
// it through the pwm handles.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"rpwm/pwm"
)

// Config is the root of a bench file.
type Config struct {
	// Debug turns on the pwm debug writer.
	Debug  bool          `yaml:"debug"`
	Slices []SliceConfig `yaml:"slices"`
}

// SliceConfig describes one slice and its channels.
type SliceConfig struct {
	ID           uint8  `yaml:"id"`
	Mode         string `yaml:"mode"`
	DivFrac      uint8  `yaml:"div_frac"`
	PhaseCorrect bool   `yaml:"phase_correct"`
	Interrupt    bool   `yaml:"interrupt"`
	Enabled      bool   `yaml:"enabled"`

	// DivInt and Top are nil when absent. An explicit 0 is kept: div_int 0
	// divides by 256 and top 0 wraps every count.
	DivInt *uint8  `yaml:"div_int,omitempty"`
	Top    *uint16 `yaml:"top,omitempty"`

	// InputPin is routed to the slice's B input.
	InputPin *uint8 `yaml:"input_pin,omitempty"`

	// Channels is keyed by "A" or "B".
	Channels map[string]ChannelConfig `yaml:"channels"`
}

// ChannelConfig describes one channel.
type ChannelConfig struct {
	Duty     uint16 `yaml:"duty"`
	Inverted bool   `yaml:"inverted"`
	Enabled  bool   `yaml:"enabled"`

	// Pin is routed to the channel output.
	Pin *uint8 `yaml:"pin,omitempty"`
}

// Load reads and parses a bench file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	return Parse(data)
}

// Parse parses a YAML bench description, applies defaults and validates it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in missing configuration values with sensible defaults
func applyDefaults(cfg *Config) {
	for i := range cfg.Slices {
		s := &cfg.Slices[i]
		if s.Mode == "" {
			s.Mode = pwm.ModeFreeRunning.String()
		}
		if s.DivInt == nil {
			div := uint8(1)
			s.DivInt = &div
		}
		if s.Top == nil {
			top := uint16(0xFFFF)
			s.Top = &top
		}
	}
}

// Validate checks ids, modes, channel names and pin routing.
func (c *Config) Validate() error {
	seen := make(map[uint8]bool)
	for _, s := range c.Slices {
		id := pwm.SliceID(s.ID)
		if !id.Valid() {
			return errors.Errorf("slice %d: id out of range", s.ID)
		}
		if seen[s.ID] {
			return errors.Errorf("slice %d: listed twice", s.ID)
		}
		seen[s.ID] = true

		if _, ok := pwm.ParseSliceMode(s.Mode); !ok {
			return errors.Errorf("slice %d: unknown mode %q", s.ID, s.Mode)
		}
		if s.InputPin != nil {
			if err := checkRoute(*s.InputPin, id, pwm.ChannelB); err != nil {
				return errors.Wrapf(err, "slice %d input_pin", s.ID)
			}
		}
		var named [2]bool
		for name, ch := range s.Channels {
			cid, ok := pwm.ParseChannelID(name)
			if !ok {
				return errors.Errorf("slice %d: unknown channel %q", s.ID, name)
			}
			if named[cid] {
				return errors.Errorf("slice %d: channel %s listed twice", s.ID, cid)
			}
			named[cid] = true
			if ch.Pin != nil {
				if err := checkRoute(*ch.Pin, id, cid); err != nil {
					return errors.Wrapf(err, "slice %d channel %s pin", s.ID, cid)
				}
			}
		}
	}
	return nil
}

func checkRoute(gpio uint8, id pwm.SliceID, ch pwm.ChannelID) error {
	if gpio >= pwm.NumGPIO {
		return errors.Errorf("gpio%d does not exist", gpio)
	}
	if s, c := pwm.PinRoute(gpio); s != id || c != ch {
		return errors.Errorf("gpio%d is wired to %s channel %s", gpio, s, c)
	}
	return nil
}

type namedChannel struct {
	id  pwm.ChannelID
	cfg ChannelConfig
}

// channels returns the configured channels in A, B order. Names must have
// been checked by Validate.
func (s *SliceConfig) channels() []namedChannel {
	out := make([]namedChannel, 0, 2)
	for _, want := range []pwm.ChannelID{pwm.ChannelA, pwm.ChannelB} {
		for name, ch := range s.Channels {
			if id, _ := pwm.ParseChannelID(name); id == want {
				out = append(out, namedChannel{id, ch})
			}
		}
	}
	return out
}
