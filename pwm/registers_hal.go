package pwm

// Registers is the per-slice register interface. An implementation is bound
// to exactly one physical slice and exposes its fields as typed accessors.
// All accesses are infallible register transactions.
type Registers interface {
	// ID returns the slice this interface is bound to.
	ID() SliceID

	ReadPhCorrect() bool
	WritePhCorrect(on bool)

	ReadDivInt() uint8
	WriteDivInt(v uint8)

	// ReadDivFrac/WriteDivFrac access the fractional divider in 1/16 steps.
	// Hardware keeps only the low four bits.
	ReadDivFrac() uint8
	WriteDivFrac(v uint8)

	ReadInvA() bool
	WriteInvA(on bool)
	ReadInvB() bool
	WriteInvB(on bool)

	ReadTop() uint16
	WriteTop(v uint16)

	ReadCtr() uint16
	WriteCtr(v uint16)

	ReadCCA() uint16
	WriteCCA(v uint16)
	ReadCCB() uint16
	WriteCCB(v uint16)

	ReadEnable() bool
	WriteEnable(on bool)

	// ReadDivMode/WriteDivMode access the counting mode. Only the static
	// layer writes it; dynamic handles treat the mode as a snapshot.
	ReadDivMode() SliceMode
	WriteDivMode(m SliceMode)

	// AdvancePhase and RetardPhase nudge the counter by one count.
	AdvancePhase()
	RetardPhase()
}

// SharedRegister is one 32-bit word shared by every slice, bit i belonging
// to slice i. SetBits and ClearBits must be atomic with respect to other
// writers of the same word.
type SharedRegister interface {
	Get() uint32
	Set(v uint32)
	SetBits(mask uint32)
	ClearBits(mask uint32)
}

// InterruptRegisters is the peripheral-wide interrupt block.
type InterruptRegisters struct {
	// Enable is INTE.
	Enable SharedRegister
	// Status is INTS, the masked status. Read only.
	Status SharedRegister
	// Clear is INTR. Writing a one clears the raw bit.
	Clear SharedRegister
	// Force is INTF. Bits stay set until software clears them.
	Force SharedRegister
}

// Backend hands out register interfaces for a PWM peripheral.
// Platform-specific implementations handle actual hardware access.
type Backend interface {
	// Registers returns a register interface bound to slice id.
	Registers(id SliceID) Registers

	// Interrupts returns the shared interrupt block.
	Interrupts() *InterruptRegisters
}

// Global singleton used by the handles.
var backend Backend

// SetBackend is called by target-specific code to register its backend.
func SetBackend(b Backend) {
	backend = b
}

// MustBackend returns the configured backend or panics if missing.
func MustBackend() Backend {
	if backend == nil {
		panic("PWM backend not configured")
	}
	return backend
}
