package config

import (
	"github.com/pkg/errors"

	"rpwm/pwm"
)

// PinSource returns the GPIO a configured pin number refers to.
type PinSource func(gpio uint8) pwm.Pin

// Bench holds the handles claimed for a configuration.
type Bench struct {
	Slices   map[pwm.SliceID]*pwm.DynSlice
	Channels map[pwm.SliceID]*[2]*pwm.DynChannel
}

// Channel returns the claimed channel, or nil.
func (b *Bench) Channel(id pwm.SliceID, ch pwm.ChannelID) *pwm.DynChannel {
	if pair, ok := b.Channels[id]; ok {
		return pair[ch]
	}
	return nil
}

// Close releases every handle in the bench.
func (b *Bench) Close() {
	for _, pair := range b.Channels {
		for _, c := range pair {
			if c != nil {
				c.Release()
			}
		}
	}
	for _, s := range b.Slices {
		s.Release()
	}
	b.Slices = map[pwm.SliceID]*pwm.DynSlice{}
	b.Channels = map[pwm.SliceID]*[2]*pwm.DynChannel{}
}

// Apply claims the configured slices and channels and programs them. On
// failure everything claimed so far is released.
func (c *Config) Apply(pins PinSource) (*Bench, error) {
	pwm.SetDebugEnabled(c.Debug)

	b := &Bench{
		Slices:   map[pwm.SliceID]*pwm.DynSlice{},
		Channels: map[pwm.SliceID]*[2]*pwm.DynChannel{},
	}
	for i := range c.Slices {
		if err := b.applySlice(&c.Slices[i], pins); err != nil {
			b.Close()
			return nil, err
		}
	}
	return b, nil
}

func (b *Bench) applySlice(sc *SliceConfig, pins PinSource) error {
	id := pwm.SliceID(sc.ID)
	mode, ok := pwm.ParseSliceMode(sc.Mode)
	if !ok {
		return errors.Errorf("slice %d: unknown mode %q", sc.ID, sc.Mode)
	}

	s, err := pwm.Claim(id, mode)
	if err != nil {
		return errors.Wrapf(err, "slice %d", sc.ID)
	}
	b.Slices[id] = s

	s.DefaultConfig()
	if sc.DivInt != nil {
		s.SetDivInt(*sc.DivInt)
	}
	s.SetDivFrac(sc.DivFrac)
	if sc.Top != nil {
		s.SetTop(*sc.Top)
	}
	if sc.PhaseCorrect {
		s.SetPhCorrect()
	}

	pair := &[2]*pwm.DynChannel{}
	b.Channels[id] = pair
	for _, nc := range sc.channels() {
		ch, err := pwm.ClaimChannel(id, mode, nc.id)
		if err != nil {
			return errors.Wrapf(err, "slice %d channel %s", sc.ID, nc.id)
		}
		pair[nc.id] = ch

		if nc.cfg.Inverted {
			ch.SetInverted()
		}
		ch.SetDuty(nc.cfg.Duty)
		if nc.cfg.Pin != nil && pins != nil {
			if err := ch.OutputTo(pins(*nc.cfg.Pin)); err != nil {
				return errors.Wrapf(err, "slice %d channel %s", sc.ID, nc.id)
			}
		}
		if nc.cfg.Enabled {
			ch.Enable()
		}
	}

	if sc.InputPin != nil && pins != nil {
		in := pair[pwm.ChannelB]
		if in == nil {
			in, err = pwm.ClaimChannel(id, mode, pwm.ChannelB)
			if err != nil {
				return errors.Wrapf(err, "slice %d input", sc.ID)
			}
			pair[pwm.ChannelB] = in
		}
		if err := in.InputFrom(pins(*sc.InputPin)); err != nil {
			return errors.Wrapf(err, "slice %d input", sc.ID)
		}
	}

	if sc.Interrupt {
		s.ClearInterrupt()
		s.EnableInterrupt()
	}
	if sc.Enabled {
		s.Enable()
	}
	return nil
}
