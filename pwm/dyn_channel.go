package pwm

// Output is the generic PWM output contract: a duty cycle in counts that can
// be gated on and off.
type Output interface {
	Enable()
	Disable()
	Duty() uint16
	MaxDuty() uint16
	SetDuty(duty uint16)
}

var _ Output = (*DynChannel)(nil)

// DynChannel is a runtime handle bound to one channel of one slice.
//
// While disabled the hardware compare register is held at zero and the
// configured duty lives in the handle. While enabled the hardware register
// is authoritative.
type DynChannel struct {
	regs    Registers
	mode    SliceMode
	id      ChannelID
	duty    uint16 // valid while !enabled
	enabled bool
}

// NewDynChannelUnchecked builds a disabled DynChannel for channel ch of
// slice id without consulting the claim registry. It panics if id is out
// of range.
//
// The caller must guarantee exclusive use of the slice's registers.
func NewDynChannelUnchecked(id SliceID, mode SliceMode, ch ChannelID) *DynChannel {
	mustValid(id)
	return newDynChannel(MustBackend().Registers(id), mode, ch)
}

func newDynChannel(regs Registers, mode SliceMode, ch ChannelID) *DynChannel {
	return &DynChannel{regs: regs, mode: mode, id: ch}
}

func (c *DynChannel) r() Registers {
	if c.regs == nil {
		panic("pwm: channel handle released")
	}
	return c.regs
}

// SliceID returns the slice driving this channel.
func (c *DynChannel) SliceID() SliceID {
	return c.r().ID()
}

// Mode returns the slice's counting mode snapshot.
func (c *DynChannel) Mode() SliceMode {
	return c.mode
}

// ID returns the channel selector.
func (c *DynChannel) ID() ChannelID {
	return c.id
}

// Enabled reports whether the channel output is gated on.
func (c *DynChannel) Enabled() bool {
	return c.enabled
}

// SetInverted inverts the channel output.
func (c *DynChannel) SetInverted() {
	c.writeInv(true)
}

// ClrInverted stops inverting the channel output.
func (c *DynChannel) ClrInverted() {
	c.writeInv(false)
}

func (c *DynChannel) writeInv(on bool) {
	switch c.id {
	case ChannelA:
		c.r().WriteInvA(on)
	case ChannelB:
		c.r().WriteInvB(on)
	}
}

func (c *DynChannel) readCC() uint16 {
	if c.id == ChannelB {
		return c.r().ReadCCB()
	}
	return c.r().ReadCCA()
}

func (c *DynChannel) writeCC(v uint16) {
	if c.id == ChannelB {
		c.r().WriteCCB(v)
		return
	}
	c.r().WriteCCA(v)
}

// Enable restores the remembered duty cycle to hardware. No-op if already
// enabled.
func (c *DynChannel) Enable() {
	if c.enabled {
		return
	}
	c.enabled = true
	c.writeCC(c.duty)
}

// Disable remembers the live duty cycle and forces the output to 0%.
// Calling it on a disabled channel keeps the remembered value.
func (c *DynChannel) Disable() {
	if c.enabled {
		c.duty = c.readCC()
		c.enabled = false
	}
	c.writeCC(0)
}

// Duty returns the live compare value when enabled, the remembered one
// otherwise.
func (c *DynChannel) Duty() uint16 {
	if c.enabled {
		return c.readCC()
	}
	return c.duty
}

// SetDuty sets the duty cycle. When disabled the value is applied on the
// next Enable.
func (c *DynChannel) SetDuty(duty uint16) {
	c.duty = duty
	if c.enabled {
		c.writeCC(duty)
	}
}

// MaxDuty returns the slice's top value.
func (c *DynChannel) MaxDuty() uint16 {
	return c.r().ReadTop()
}
