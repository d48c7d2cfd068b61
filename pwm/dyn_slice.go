package pwm

// DynSlice is a runtime handle bound to one physical PWM slice.
//
// At most one DynSlice (or static Slice) may reference a given slice at any
// time. Handles obtained from Claim, Take or SliceToDyn satisfy this; handles
// built with NewDynSliceUnchecked rely on the caller.
type DynSlice struct {
	regs Registers
	irq  *InterruptRegisters
	mode SliceMode
}

// NewDynSliceUnchecked builds a DynSlice for id on the registered backend
// without consulting the claim registry. It panics if id is out of range.
//
// The caller must guarantee that no other handle references the same slice
// for the lifetime of the returned value. Prefer Claim.
func NewDynSliceUnchecked(id SliceID, mode SliceMode) *DynSlice {
	mustValid(id)
	b := MustBackend()
	return newDynSlice(b.Registers(id), b.Interrupts(), mode)
}

func newDynSlice(regs Registers, irq *InterruptRegisters, mode SliceMode) *DynSlice {
	return &DynSlice{regs: regs, irq: irq, mode: mode}
}

func (s *DynSlice) r() Registers {
	if s.regs == nil {
		panic("pwm: slice handle released")
	}
	return s.regs
}

func (s *DynSlice) ints() *InterruptRegisters {
	if s.irq == nil {
		panic("pwm: slice handle released")
	}
	return s.irq
}

// ID returns the slice id.
func (s *DynSlice) ID() SliceID {
	return s.r().ID()
}

// Mode returns the counting mode the slice was created with.
func (s *DynSlice) Mode() SliceMode {
	return s.mode
}

// DefaultConfig resets the slice to a known state: phase correct off,
// divider 1.0, no inversion, top 0xFFFF, counter 0, both duties 0.
func (s *DynSlice) DefaultConfig() {
	s.r().WritePhCorrect(false)
	s.r().WriteDivInt(1)
	s.r().WriteDivFrac(0)
	s.r().WriteInvA(false)
	s.r().WriteInvB(false)
	s.r().WriteTop(0xFFFF)
	s.r().WriteCtr(0)
	s.r().WriteCCA(0)
	s.r().WriteCCB(0)
}

// AdvancePhase advances the counter by one count.
//
// The slice must be enabled and run at less than full speed
// (DivInt + DivFrac/16 > 1). On hardware the call waits for the counter to
// take the request, so on a stopped or full speed slice it never returns.
// This is not checked.
func (s *DynSlice) AdvancePhase() {
	s.r().AdvancePhase()
}

// RetardPhase holds the counter back by one count.
//
// Same precondition as AdvancePhase.
func (s *DynSlice) RetardPhase() {
	s.r().RetardPhase()
}

// SetPhCorrect enables phase correct (up/down) counting.
func (s *DynSlice) SetPhCorrect() {
	s.r().WritePhCorrect(true)
}

// ClrPhCorrect returns to sawtooth counting.
func (s *DynSlice) ClrPhCorrect() {
	s.r().WritePhCorrect(false)
}

// Enable starts the slice counter.
func (s *DynSlice) Enable() {
	s.r().WriteEnable(true)
}

// Disable stops the slice counter. Channel duty state is untouched.
func (s *DynSlice) Disable() {
	s.r().WriteEnable(false)
}

// SetDivInt sets the integer part of the clock divider.
func (s *DynSlice) SetDivInt(v uint8) {
	s.r().WriteDivInt(v)
}

// SetDivFrac sets the fractional part of the clock divider.
func (s *DynSlice) SetDivFrac(v uint8) {
	s.r().WriteDivFrac(v)
}

// Counter returns the counter register.
func (s *DynSlice) Counter() uint16 {
	return s.r().ReadCtr()
}

// SetCounter writes the counter register.
func (s *DynSlice) SetCounter(v uint16) {
	s.r().WriteCtr(v)
}

// Top returns the wrap value.
func (s *DynSlice) Top() uint16 {
	return s.r().ReadTop()
}

// SetTop writes the wrap value.
func (s *DynSlice) SetTop(v uint16) {
	s.r().WriteTop(v)
}

// Bitmask is this slice's bit in the shared interrupt words.
func (s *DynSlice) Bitmask() uint32 {
	return Bitmask(s.ID())
}

// Bitmask returns 1 << id.
func Bitmask(id SliceID) uint32 {
	return 1 << id
}

// EnableInterrupt enables PWM_IRQ_WRAP for this slice.
func (s *DynSlice) EnableInterrupt() {
	s.ints().Enable.SetBits(s.Bitmask())
}

// DisableInterrupt disables PWM_IRQ_WRAP for this slice.
func (s *DynSlice) DisableInterrupt() {
	s.ints().Enable.ClearBits(s.Bitmask())
}

// HasOverflown reports whether this slice has a pending wrap interrupt.
func (s *DynSlice) HasOverflown() bool {
	mask := s.Bitmask()
	return s.ints().Status.Get()&mask == mask
}

// ClearInterrupt acknowledges the wrap interrupt for this slice.
func (s *DynSlice) ClearInterrupt() {
	s.ints().Clear.Set(s.Bitmask())
}

// ForceInterrupt asserts the interrupt for this slice.
//
// The force bit is not cleared by hardware when the interrupt is serviced.
// Callers must call ClearForceInterrupt, or the interrupt stays asserted.
func (s *DynSlice) ForceInterrupt() {
	s.ints().Force.SetBits(s.Bitmask())
}

// ClearForceInterrupt releases a forced interrupt.
func (s *DynSlice) ClearForceInterrupt() {
	s.ints().Force.ClearBits(s.Bitmask())
}
