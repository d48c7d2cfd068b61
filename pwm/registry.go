package pwm

import (
	"errors"
	"sync/atomic"

	pkgerrors "github.com/pkg/errors"
)

var (
	ErrInvalidSlice = errors.New("pwm: invalid slice id")
	ErrSliceInUse   = errors.New("pwm: slice already claimed")
	ErrChannelInUse = errors.New("pwm: channel already claimed")
	ErrAlreadyTaken = errors.New("pwm: peripheral already taken")
)

// claimed holds one bit per handle that may exist: bits 0-7 for slices,
// 8-15 for channel A and 16-23 for channel B of each slice.
var claimed atomic.Uint32

func sliceBit(id SliceID) uint32 {
	return 1 << id
}

func channelBit(id SliceID, ch ChannelID) uint32 {
	return 1 << (NumSlices*(1+uint32(ch)) + uint32(id))
}

// allClaimBits covers every slice and channel bit.
const allClaimBits = 1<<(3*NumSlices) - 1

// tryClaim sets bits in the claim mask if none of them is already set.
func tryClaim(bits uint32) bool {
	for {
		old := claimed.Load()
		if old&bits != 0 {
			return false
		}
		if claimed.CompareAndSwap(old, old|bits) {
			return true
		}
	}
}

func unclaim(bits uint32) {
	for {
		old := claimed.Load()
		if claimed.CompareAndSwap(old, old&^bits) {
			return
		}
	}
}

// Claim returns the DynSlice for id, failing if another handle for the
// same slice is live. The slice's hardware counting mode is set to mode.
func Claim(id SliceID, mode SliceMode) (*DynSlice, error) {
	if !id.Valid() {
		return nil, pkgerrors.Wrapf(ErrInvalidSlice, "slice %d", id)
	}
	if !tryClaim(sliceBit(id)) {
		return nil, pkgerrors.Wrapf(ErrSliceInUse, "%s", id)
	}
	RecordEvent(EvtClaim, id, uint32(mode))
	DebugPrintln("[PWM] claim " + id.String() + " " + mode.String())
	s := NewDynSliceUnchecked(id, mode)
	s.regs.WriteDivMode(mode)
	return s, nil
}

// ClaimChannel returns a disabled DynChannel for channel ch of slice id,
// failing if another handle for the same channel is live.
func ClaimChannel(id SliceID, mode SliceMode, ch ChannelID) (*DynChannel, error) {
	if !id.Valid() {
		return nil, pkgerrors.Wrapf(ErrInvalidSlice, "slice %d", id)
	}
	if !tryClaim(channelBit(id, ch)) {
		return nil, pkgerrors.Wrapf(ErrChannelInUse, "%s channel %s", id, ch)
	}
	RecordEvent(EvtClaim, id, 0x100|uint32(ch))
	DebugPrintln("[PWM] claim " + id.String() + ch.String())
	return NewDynChannelUnchecked(id, mode, ch), nil
}

// Release returns a slice to the registry and invalidates the handle: any
// later method call panics. Releasing twice is a no-op.
func (s *DynSlice) Release() {
	if s.regs == nil {
		return
	}
	id := s.regs.ID()
	s.regs, s.irq = nil, nil
	unclaim(sliceBit(id))
	RecordEvent(EvtRelease, id, 0)
	DebugPrintln("[PWM] release " + id.String())
}

// Release returns a channel to the registry and invalidates the handle.
// The channel is disabled first so no output is left running without an
// owner. Releasing twice is a no-op.
func (c *DynChannel) Release() {
	if c.regs == nil {
		return
	}
	c.Disable()
	id := c.regs.ID()
	c.regs = nil
	unclaim(channelBit(id, c.id))
	RecordEvent(EvtRelease, id, 0x100|uint32(c.id))
	DebugPrintln("[PWM] release " + id.String() + c.id.String())
}

// Claimed reports whether the slice handle for id is live.
func Claimed(id SliceID) bool {
	return id.Valid() && claimed.Load()&sliceBit(id) != 0
}

// ChannelClaimed reports whether the handle for channel ch of slice id is
// live.
func ChannelClaimed(id SliceID, ch ChannelID) bool {
	return id.Valid() && claimed.Load()&channelBit(id, ch) != 0
}
