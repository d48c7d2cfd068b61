package regsim

import "rpwm/pwm"

// sliceRegisters implements pwm.Registers for one simulated slice.
type sliceRegisters struct {
	p  *Peripheral
	id pwm.SliceID
}

var _ pwm.Registers = (*sliceRegisters)(nil)

func (r *sliceRegisters) s() *sliceState {
	return &r.p.slices[r.id]
}

func (r *sliceRegisters) ID() pwm.SliceID { return r.id }

func (r *sliceRegisters) csrBit(bit uint32) bool {
	return r.s().CSR&bit != 0
}

func (r *sliceRegisters) writeCSRBit(bit uint32, on bool) {
	if on {
		r.s().CSR |= bit
	} else {
		r.s().CSR &^= bit
	}
}

func (r *sliceRegisters) ReadPhCorrect() bool      { return r.csrBit(CSRPhCorrect) }
func (r *sliceRegisters) WritePhCorrect(on bool)   { r.writeCSRBit(CSRPhCorrect, on) }
func (r *sliceRegisters) ReadInvA() bool           { return r.csrBit(CSRAInv) }
func (r *sliceRegisters) WriteInvA(on bool)        { r.writeCSRBit(CSRAInv, on) }
func (r *sliceRegisters) ReadInvB() bool           { return r.csrBit(CSRBInv) }
func (r *sliceRegisters) WriteInvB(on bool)        { r.writeCSRBit(CSRBInv, on) }
func (r *sliceRegisters) ReadEnable() bool         { return r.csrBit(CSREn) }
func (r *sliceRegisters) ReadDivMode() pwm.SliceMode {
	return pwm.SliceMode((r.s().CSR & CSRDivMode) >> csrDivModeShift)
}

func (r *sliceRegisters) WriteDivMode(m pwm.SliceMode) {
	s := r.s()
	s.CSR = s.CSR&^CSRDivMode | uint32(m)<<csrDivModeShift&CSRDivMode
}

// WriteEnable sets CSR.EN and keeps the EN alias register in step.
func (r *sliceRegisters) WriteEnable(on bool) {
	r.writeCSRBit(CSREn, on)
	if on {
		r.p.en.SetBits(pwm.Bitmask(r.id))
	} else {
		r.p.en.ClearBits(pwm.Bitmask(r.id))
	}
}

func (r *sliceRegisters) ReadDivInt() uint8 {
	return uint8((r.s().DIV & DivIntMask) >> divIntShift)
}

func (r *sliceRegisters) WriteDivInt(v uint8) {
	s := r.s()
	s.DIV = s.DIV&^DivIntMask | uint32(v)<<divIntShift
}

func (r *sliceRegisters) ReadDivFrac() uint8 {
	return uint8(r.s().DIV & DivFracMask)
}

func (r *sliceRegisters) WriteDivFrac(v uint8) {
	s := r.s()
	s.DIV = s.DIV&^DivFracMask | uint32(v)&DivFracMask
}

func (r *sliceRegisters) ReadTop() uint16   { return uint16(r.s().TOP) }
func (r *sliceRegisters) WriteTop(v uint16) { r.s().TOP = uint32(v) }
func (r *sliceRegisters) ReadCtr() uint16   { return uint16(r.s().CTR) }
func (r *sliceRegisters) WriteCtr(v uint16) { r.s().CTR = uint32(v) }

func (r *sliceRegisters) ReadCCA() uint16 { return uint16(r.s().CC) }
func (r *sliceRegisters) ReadCCB() uint16 { return uint16(r.s().CC >> 16) }

func (r *sliceRegisters) WriteCCA(v uint16) {
	s := r.s()
	s.CC = s.CC&0xFFFF0000 | uint32(v)
}

func (r *sliceRegisters) WriteCCB(v uint16) {
	s := r.s()
	s.CC = s.CC&0x0000FFFF | uint32(v)<<16
}

// phaseNudgeTaken reports whether a running counter would consume a
// PH_ADV or PH_RET request: the slice must be enabled and below full speed.
func (s *sliceState) phaseNudgeTaken() bool {
	return s.CSR&CSREn != 0 && !s.fullSpeed()
}

// AdvancePhase adds one count. The request is dropped where the hardware
// would never consume it: a stopped slice or one at divider 1.0.
func (r *sliceRegisters) AdvancePhase() {
	s := r.s()
	if !s.phaseNudgeTaken() {
		return
	}
	if s.CTR >= s.TOP {
		s.CTR = 0
	} else {
		s.CTR++
	}
}

// RetardPhase holds back one count. Same restriction as AdvancePhase.
func (r *sliceRegisters) RetardPhase() {
	s := r.s()
	if !s.phaseNudgeTaken() {
		return
	}
	if s.CTR == 0 {
		s.CTR = s.TOP
	} else {
		s.CTR--
	}
}
