package regsim

import "rpwm/pwm"

// div16 is the divider in 1/16 cycles. An integer part of 0 means 256.
func (s *sliceState) div16() uint32 {
	i := (s.DIV & DivIntMask) >> divIntShift
	if i == 0 {
		i = 256
	}
	return i*divFracScale + s.DIV&DivFracMask
}

func (s *sliceState) fullSpeed() bool {
	return s.CSR&CSREn != 0 && s.div16() == divFracScale
}

func (s *sliceState) mode() pwm.SliceMode {
	return pwm.SliceMode((s.CSR & CSRDivMode) >> csrDivModeShift)
}

// Step runs the peripheral for the given number of system clock cycles.
// Free running slices count through their divider; input high slices count
// only while their B input is high. Edge counting slices are driven by
// SetInput.
func (p *Peripheral) Step(cycles int) {
	for i := range p.slices {
		s := &p.slices[i]
		if s.CSR&CSREn == 0 {
			continue
		}
		switch s.mode() {
		case pwm.ModeFreeRunning:
		case pwm.ModeInputHighRunning:
			if !s.input {
				continue
			}
		default:
			continue
		}
		for c := 0; c < cycles; c++ {
			p.clock(pwm.SliceID(i))
		}
	}
}

// SetInput drives the B pin of slice id. In the edge counting modes a
// matching edge clocks the divider once.
func (p *Peripheral) SetInput(id pwm.SliceID, level bool) {
	s := &p.slices[id]
	prev := s.input
	s.input = level
	if s.CSR&CSREn == 0 || prev == level {
		return
	}
	switch s.mode() {
	case pwm.ModeCountRisingEdge:
		if level {
			p.clock(id)
		}
	case pwm.ModeCountFallingEdge:
		if !level {
			p.clock(id)
		}
	}
}

// Input returns the level last driven onto the B pin of slice id.
func (p *Peripheral) Input(id pwm.SliceID) bool {
	return p.slices[id].input
}

// clock feeds one input clock into the fractional divider.
func (p *Peripheral) clock(id pwm.SliceID) {
	s := &p.slices[id]
	s.acc += divFracScale
	for d := s.div16(); s.acc >= d; s.acc -= d {
		p.count(id)
	}
}

// count advances the counter by one and latches the wrap interrupt.
func (p *Peripheral) count(id pwm.SliceID) {
	s := &p.slices[id]
	if s.CSR&CSRPhCorrect == 0 {
		if s.CTR >= s.TOP {
			s.CTR = 0
			p.Wrap(id)
		} else {
			s.CTR++
		}
		return
	}

	// Phase correct: 0 .. TOP .. 0, wrapping at the bottom.
	if !s.down {
		if s.CTR < s.TOP {
			s.CTR++
			return
		}
		s.down = true
	}
	if s.CTR > 0 {
		s.CTR--
	}
	if s.CTR == 0 {
		s.down = false
		p.Wrap(id)
	}
}

// Output returns the current level of channel ch of slice id: high while
// the counter is below the compare value, inverted if requested.
func (p *Peripheral) Output(id pwm.SliceID, ch pwm.ChannelID) bool {
	s := &p.slices[id]
	cc, inv := s.CC&0xFFFF, s.CSR&CSRAInv != 0
	if ch == pwm.ChannelB {
		cc, inv = s.CC>>16, s.CSR&CSRBInv != 0
	}
	return (s.CTR < cc) != inv
}
