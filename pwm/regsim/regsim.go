// Package regsim simulates the RP2040 PWM register block.
//
// Registers use the hardware bit layout so that tests can assert on raw
// register words. The shared interrupt words are atomic; everything else
// assumes a single caller, like the real per-slice registers.
package regsim

import (
	"sync/atomic"

	"rpwm/pwm"
)

// CSR bits
const (
	CSREn        = 1 << 0
	CSRPhCorrect = 1 << 1
	CSRAInv      = 1 << 2
	CSRBInv      = 1 << 3
	CSRDivMode   = 3 << 4
	CSRPhRet     = 1 << 6
	CSRPhAdv     = 1 << 7

	csrDivModeShift = 4
)

// DIV fields
const (
	DivFracMask  = 0x00F
	DivIntMask   = 0xFF0
	divIntShift  = 4
	divFracScale = 16
)

// RawSlice is a copy of one slice's register words.
type RawSlice struct {
	CSR uint32
	DIV uint32
	CTR uint32
	CC  uint32
	TOP uint32
}

type sliceState struct {
	RawSlice

	input bool   // level on the B pin
	acc   uint32 // divider accumulator, 1/16 cycles
	down  bool   // phase correct direction
}

// Peripheral is a simulated PWM block. The zero value is not usable; use New.
type Peripheral struct {
	slices [pwm.NumSlices]sliceState

	en   word // EN, mirrors CSR.EN
	intr word // raw interrupts
	inte word
	intf word

	irq pwm.InterruptRegisters

	pinFunc map[uint8]bool
	pinFail map[uint8]error
}

var _ pwm.Backend = (*Peripheral)(nil)

// New returns a peripheral in its reset state: every slice disabled,
// divider 1.0, top 0xFFFF.
func New() *Peripheral {
	p := &Peripheral{
		pinFunc: make(map[uint8]bool),
		pinFail: make(map[uint8]error),
	}
	for i := range p.slices {
		p.slices[i].DIV = 1 << divIntShift
		p.slices[i].TOP = 0xFFFF
	}
	p.irq = pwm.InterruptRegisters{
		Enable: &p.inte,
		Status: statusWord{p},
		Clear:  clearWord{p},
		Force:  &p.intf,
	}
	return p
}

// Registers returns the register interface for slice id.
func (p *Peripheral) Registers(id pwm.SliceID) pwm.Registers {
	if !id.Valid() {
		panic("regsim: slice id out of range")
	}
	return &sliceRegisters{p: p, id: id}
}

// Interrupts returns the shared interrupt block.
func (p *Peripheral) Interrupts() *pwm.InterruptRegisters {
	return &p.irq
}

// Raw returns a copy of the register words of slice id.
func (p *Peripheral) Raw(id pwm.SliceID) RawSlice {
	return p.slices[id].RawSlice
}

// EnableMask returns the EN register, one bit per running slice.
func (p *Peripheral) EnableMask() uint32 {
	return p.en.Get()
}

// RawInterrupts returns INTR, INTE, INTF and INTS.
func (p *Peripheral) RawInterrupts() (intr, inte, intf, ints uint32) {
	return p.intr.Get(), p.inte.Get(), p.intf.Get(), p.status()
}

func (p *Peripheral) status() uint32 {
	return p.intr.Get()&p.inte.Get() | p.intf.Get()
}

// Wrap latches the wrap interrupt of slice id as if its counter had just
// wrapped.
func (p *Peripheral) Wrap(id pwm.SliceID) {
	p.intr.SetBits(pwm.Bitmask(id))
}

// word is a shared register backed by an atomic.
type word struct {
	v atomic.Uint32
}

func (w *word) Get() uint32           { return w.v.Load() }
func (w *word) Set(v uint32)          { w.v.Store(v) }
func (w *word) SetBits(mask uint32)   { w.v.Or(mask) }
func (w *word) ClearBits(mask uint32) { w.v.And(^mask) }

// statusWord is INTS, computed from the raw, enable and force words.
type statusWord struct{ p *Peripheral }

func (s statusWord) Get() uint32    { return s.p.status() }
func (statusWord) Set(uint32)       {}
func (statusWord) SetBits(uint32)   {}
func (statusWord) ClearBits(uint32) {}

// clearWord is INTR seen through its write-one-to-clear interface.
type clearWord struct{ p *Peripheral }

func (c clearWord) Get() uint32         { return c.p.intr.Get() }
func (c clearWord) Set(v uint32)        { c.p.intr.ClearBits(v) }
func (c clearWord) SetBits(mask uint32) { c.p.intr.ClearBits(mask) }
func (clearWord) ClearBits(uint32)      {}
