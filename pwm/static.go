package pwm

import "sync/atomic"

// SliceIdent is implemented by the slice marker types Pwm0 to Pwm7.
type SliceIdent interface {
	sliceID() SliceID
}

// ModeKind is implemented by the mode marker types.
type ModeKind interface {
	sliceMode() SliceMode
}

// ChannelIdent is implemented by ChA and ChB.
type ChannelIdent interface {
	channelID() ChannelID
}

// Slice markers.
type (
	Pwm0 struct{}
	Pwm1 struct{}
	Pwm2 struct{}
	Pwm3 struct{}
	Pwm4 struct{}
	Pwm5 struct{}
	Pwm6 struct{}
	Pwm7 struct{}
)

func (Pwm0) sliceID() SliceID { return 0 }
func (Pwm1) sliceID() SliceID { return 1 }
func (Pwm2) sliceID() SliceID { return 2 }
func (Pwm3) sliceID() SliceID { return 3 }
func (Pwm4) sliceID() SliceID { return 4 }
func (Pwm5) sliceID() SliceID { return 5 }
func (Pwm6) sliceID() SliceID { return 6 }
func (Pwm7) sliceID() SliceID { return 7 }

// Mode markers.
type (
	FreeRunning      struct{}
	InputHighRunning struct{}
	CountRisingEdge  struct{}
	CountFallingEdge struct{}
)

func (FreeRunning) sliceMode() SliceMode      { return ModeFreeRunning }
func (InputHighRunning) sliceMode() SliceMode { return ModeInputHighRunning }
func (CountRisingEdge) sliceMode() SliceMode  { return ModeCountRisingEdge }
func (CountFallingEdge) sliceMode() SliceMode { return ModeCountFallingEdge }

// Channel markers.
type (
	ChA struct{}
	ChB struct{}
)

func (ChA) channelID() ChannelID { return ChannelA }
func (ChB) channelID() ChannelID { return ChannelB }

// Slice is a statically-typed slice handle. Its id and mode are fixed by the
// type parameters. The embedded DynSlice provides the operations; it is nil
// once the handle has been converted, and any further call panics.
type Slice[I SliceIdent, M ModeKind] struct {
	*DynSlice

	// The channels are independent handles and survive conversion of the
	// slice.
	ChannelA *Channel[I, M, ChA]
	ChannelB *Channel[I, M, ChB]
}

// Channel is a statically-typed channel handle.
type Channel[I SliceIdent, M ModeKind, C ChannelIdent] struct {
	*DynChannel
}

func newSlice[I SliceIdent, M ModeKind](b Backend) *Slice[I, M] {
	var id I
	var mode M
	regs := b.Registers(id.sliceID())
	return &Slice[I, M]{
		DynSlice: newDynSlice(regs, b.Interrupts(), mode.sliceMode()),
		ChannelA: &Channel[I, M, ChA]{DynChannel: newDynChannel(regs, mode.sliceMode(), ChannelA)},
		ChannelB: &Channel[I, M, ChB]{DynChannel: newDynChannel(regs, mode.sliceMode(), ChannelB)},
	}
}

// SliceToDyn consumes a static slice and returns the equivalent DynSlice.
// The static handle is unusable afterwards.
func SliceToDyn[I SliceIdent, M ModeKind](s *Slice[I, M]) *DynSlice {
	if s.DynSlice == nil {
		panic("pwm: slice handle already consumed")
	}
	s.DynSlice = nil

	var id I
	var mode M
	RecordEvent(EvtConvert, id.sliceID(), uint32(mode.sliceMode()))
	return NewDynSliceUnchecked(id.sliceID(), mode.sliceMode())
}

// ChannelToDyn consumes a static channel and returns the equivalent
// DynChannel. The enabled state carries over; the remembered duty does not.
func ChannelToDyn[I SliceIdent, M ModeKind, C ChannelIdent](c *Channel[I, M, C]) *DynChannel {
	if c.DynChannel == nil {
		panic("pwm: channel handle already consumed")
	}
	enabled := c.DynChannel.enabled
	c.DynChannel = nil

	var id I
	var mode M
	var ch C
	RecordEvent(EvtConvert, id.sliceID(), 0x100|uint32(ch.channelID()))
	d := NewDynChannelUnchecked(id.sliceID(), mode.sliceMode(), ch.channelID())
	d.enabled = enabled
	return d
}

// Retype consumes a slice, programs counting mode N and returns the slice
// and its channels retyped to N.
func Retype[N ModeKind, I SliceIdent, M ModeKind](s *Slice[I, M]) *Slice[I, N] {
	if s.DynSlice == nil || s.ChannelA.DynChannel == nil || s.ChannelB.DynChannel == nil {
		panic("pwm: slice or channel handle already consumed")
	}
	var mode N
	m := mode.sliceMode()

	d, a, b := s.DynSlice, s.ChannelA.DynChannel, s.ChannelB.DynChannel
	s.DynSlice, s.ChannelA.DynChannel, s.ChannelB.DynChannel = nil, nil, nil

	d.regs.WriteDivMode(m)
	d.mode, a.mode, b.mode = m, m, m
	return &Slice[I, N]{
		DynSlice: d,
		ChannelA: &Channel[I, N, ChA]{DynChannel: a},
		ChannelB: &Channel[I, N, ChB]{DynChannel: b},
	}
}

// Release consumes the static slice and returns it to the registry. The
// channels are separate handles and keep their claims.
func (s *Slice[I, M]) Release() {
	if s.DynSlice == nil {
		panic("pwm: slice handle already consumed")
	}
	d := s.DynSlice
	s.DynSlice = nil
	d.Release()
}

// Release consumes the static channel, disables it and returns it to the
// registry.
func (c *Channel[I, M, C]) Release() {
	if c.DynChannel == nil {
		panic("pwm: channel handle already consumed")
	}
	d := c.DynChannel
	c.DynChannel = nil
	d.Release()
}

// Slices is the whole peripheral as static handles, all free running.
type Slices struct {
	Pwm0 *Slice[Pwm0, FreeRunning]
	Pwm1 *Slice[Pwm1, FreeRunning]
	Pwm2 *Slice[Pwm2, FreeRunning]
	Pwm3 *Slice[Pwm3, FreeRunning]
	Pwm4 *Slice[Pwm4, FreeRunning]
	Pwm5 *Slice[Pwm5, FreeRunning]
	Pwm6 *Slice[Pwm6, FreeRunning]
	Pwm7 *Slice[Pwm7, FreeRunning]
}

// taken latches the first successful Take.
var taken atomic.Bool

// Take returns the static handles for every slice and channel. It succeeds
// once per process, and only while no slice or channel has been claimed.
// Releasing the handles later does not make it succeed again.
func Take() (*Slices, error) {
	if !taken.CompareAndSwap(false, true) {
		return nil, ErrAlreadyTaken
	}
	if !tryClaim(allClaimBits) {
		taken.Store(false)
		return nil, ErrAlreadyTaken
	}
	b := MustBackend()
	for id := SliceID(0); id < NumSlices; id++ {
		b.Registers(id).WriteDivMode(ModeFreeRunning)
	}
	DebugPrintln("[PWM] peripheral taken")
	return &Slices{
		Pwm0: newSlice[Pwm0, FreeRunning](b),
		Pwm1: newSlice[Pwm1, FreeRunning](b),
		Pwm2: newSlice[Pwm2, FreeRunning](b),
		Pwm3: newSlice[Pwm3, FreeRunning](b),
		Pwm4: newSlice[Pwm4, FreeRunning](b),
		Pwm5: newSlice[Pwm5, FreeRunning](b),
		Pwm6: newSlice[Pwm6, FreeRunning](b),
		Pwm7: newSlice[Pwm7, FreeRunning](b),
	}, nil
}
