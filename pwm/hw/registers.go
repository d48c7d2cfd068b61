//go:build rp2040

// Package hw is the memory-mapped RP2040 PWM backend.
package hw

import (
	"runtime/interrupt"
	"runtime/volatile"
	"unsafe"

	"rpwm/pwm"
)

// RP2040 PWM peripheral memory map
const (
	pwmBase     = 0x40050000
	sliceStride = 0x14

	offCSR = 0x00
	offDIV = 0x04
	offCTR = 0x08
	offCC  = 0x0C
	offTOP = 0x10

	offINTR = 0xA4
	offINTE = 0xA8
	offINTF = 0xAC
	offINTS = 0xB0

	// Atomic register aliases (RP2040 datasheet 2.1.2)
	aliasSet = 0x2000
	aliasClr = 0x3000
)

// CSR / DIV fields
const (
	csrEn        = 1 << 0
	csrPhCorrect = 1 << 1
	csrAInv      = 1 << 2
	csrBInv      = 1 << 3
	csrDivMode   = 3 << 4
	csrPhRet     = 1 << 6
	csrPhAdv     = 1 << 7
	divModeShift = 4
	divFracMask  = 0x00F
	divIntMask   = 0xFF0
	divIntShift  = 4
	ccBShift     = 16
	ccALowMask   = 0x0000FFFF
	ccBHighMask  = 0xFFFF0000
)

func reg(addr uintptr) *volatile.Register32 {
	return (*volatile.Register32)(unsafe.Pointer(addr))
}

// hwWord is a shared interrupt word. SetBits/ClearBits go through the
// SET/CLR aliases so they never race with an interrupt handler or another
// slice's handle.
type hwWord uintptr

func (w hwWord) Get() uint32           { return reg(uintptr(w)).Get() }
func (w hwWord) Set(v uint32)          { reg(uintptr(w)).Set(v) }
func (w hwWord) SetBits(mask uint32)   { reg(uintptr(w) + aliasSet).Set(mask) }
func (w hwWord) ClearBits(mask uint32) { reg(uintptr(w) + aliasClr).Set(mask) }

// Backend implements pwm.Backend on the memory-mapped peripheral.
type Backend struct {
	irq pwm.InterruptRegisters
}

var _ pwm.Backend = (*Backend)(nil)

// New returns the backend. There is one peripheral, so every Backend
// addresses the same registers.
func New() *Backend {
	return &Backend{
		irq: pwm.InterruptRegisters{
			Enable: hwWord(pwmBase + offINTE),
			Status: hwWord(pwmBase + offINTS),
			Clear:  hwWord(pwmBase + offINTR),
			Force:  hwWord(pwmBase + offINTF),
		},
	}
}

// Registers panics for an id past the last slice; its address would fall
// on the shared EN and interrupt words.
func (b *Backend) Registers(id pwm.SliceID) pwm.Registers {
	if !id.Valid() {
		panic("hw: slice id out of range")
	}
	return hwSlice{id: id, base: pwmBase + uintptr(id)*sliceStride}
}

func (b *Backend) Interrupts() *pwm.InterruptRegisters {
	return &b.irq
}

// hwSlice is the register interface of one slice.
type hwSlice struct {
	id   pwm.SliceID
	base uintptr
}

func (s hwSlice) ID() pwm.SliceID { return s.id }

func (s hwSlice) csr() *volatile.Register32 { return reg(s.base + offCSR) }

// writeCSRBit uses the aliases; CSR single-bit fields never need a
// read-modify-write.
func (s hwSlice) writeCSRBit(bit uint32, on bool) {
	if on {
		reg(s.base + offCSR + aliasSet).Set(bit)
	} else {
		reg(s.base + offCSR + aliasClr).Set(bit)
	}
}

func (s hwSlice) ReadPhCorrect() bool    { return s.csr().HasBits(csrPhCorrect) }
func (s hwSlice) WritePhCorrect(on bool) { s.writeCSRBit(csrPhCorrect, on) }
func (s hwSlice) ReadInvA() bool         { return s.csr().HasBits(csrAInv) }
func (s hwSlice) WriteInvA(on bool)      { s.writeCSRBit(csrAInv, on) }
func (s hwSlice) ReadInvB() bool         { return s.csr().HasBits(csrBInv) }
func (s hwSlice) WriteInvB(on bool)      { s.writeCSRBit(csrBInv, on) }
func (s hwSlice) ReadEnable() bool       { return s.csr().HasBits(csrEn) }
func (s hwSlice) WriteEnable(on bool)    { s.writeCSRBit(csrEn, on) }

func (s hwSlice) ReadDivMode() pwm.SliceMode {
	return pwm.SliceMode((s.csr().Get() & csrDivMode) >> divModeShift)
}

func (s hwSlice) WriteDivMode(m pwm.SliceMode) {
	s.csr().ReplaceBits(uint32(m), 3, divModeShift)
}

func (s hwSlice) ReadDivInt() uint8 {
	return uint8((reg(s.base+offDIV).Get() & divIntMask) >> divIntShift)
}

func (s hwSlice) WriteDivInt(v uint8) {
	reg(s.base+offDIV).ReplaceBits(uint32(v), 0xFF, divIntShift)
}

func (s hwSlice) ReadDivFrac() uint8 {
	return uint8(reg(s.base+offDIV).Get() & divFracMask)
}

func (s hwSlice) WriteDivFrac(v uint8) {
	reg(s.base+offDIV).ReplaceBits(uint32(v), divFracMask, 0)
}

func (s hwSlice) ReadTop() uint16   { return uint16(reg(s.base + offTOP).Get()) }
func (s hwSlice) WriteTop(v uint16) { reg(s.base + offTOP).Set(uint32(v)) }
func (s hwSlice) ReadCtr() uint16   { return uint16(reg(s.base + offCTR).Get()) }
func (s hwSlice) WriteCtr(v uint16) { reg(s.base + offCTR).Set(uint32(v)) }

func (s hwSlice) ReadCCA() uint16 { return uint16(reg(s.base + offCC).Get()) }
func (s hwSlice) ReadCCB() uint16 { return uint16(reg(s.base+offCC).Get() >> ccBShift) }

// The two channels share CC. Each half is updated with interrupts off so a
// handler touching the other channel cannot lose its write.
func (s hwSlice) WriteCCA(v uint16) {
	state := interrupt.Disable()
	cc := reg(s.base + offCC)
	cc.Set(cc.Get()&ccBHighMask | uint32(v))
	interrupt.Restore(state)
}

func (s hwSlice) WriteCCB(v uint16) {
	state := interrupt.Disable()
	cc := reg(s.base + offCC)
	cc.Set(cc.Get()&ccALowMask | uint32(v)<<ccBShift)
	interrupt.Restore(state)
}

// AdvancePhase sets PH_ADV and waits for the hardware to consume it.
// On a stopped slice or at divider 1.0 the bit is never consumed and this
// spins forever.
func (s hwSlice) AdvancePhase() {
	s.writeCSRBit(csrPhAdv, true)
	for s.csr().HasBits(csrPhAdv) {
	}
}

// RetardPhase sets PH_RET and waits for the hardware to consume it.
// Same hang conditions as AdvancePhase.
func (s hwSlice) RetardPhase() {
	s.writeCSRBit(csrPhRet, true)
	for s.csr().HasBits(csrPhRet) {
	}
}
