package pwm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpwm/pwm"
	"rpwm/pwm/regsim"
)

func TestBitmaskUniquePerSlice(t *testing.T) {
	newPeripheral(t)

	seen := make(map[uint32]pwm.SliceID)
	for id := pwm.SliceID(0); id < pwm.NumSlices; id++ {
		s := pwm.NewDynSliceUnchecked(id, pwm.ModeFreeRunning)
		mask := s.Bitmask()
		assert.Equal(t, uint32(1)<<id, mask)
		prev, dup := seen[mask]
		assert.False(t, dup, "slices %d and %d share bitmask %#x", prev, id, mask)
		seen[mask] = id
	}
}

func TestBitmaskSlice3(t *testing.T) {
	newPeripheral(t)
	s := pwm.NewDynSliceUnchecked(3, pwm.ModeFreeRunning)
	assert.Equal(t, uint32(0b1000), s.Bitmask())
}

func TestDefaultConfig(t *testing.T) {
	p := newPeripheral(t)
	s := pwm.NewDynSliceUnchecked(2, pwm.ModeFreeRunning)
	regs := p.Registers(2)

	// Dirty every field first.
	s.SetPhCorrect()
	s.SetDivInt(9)
	s.SetDivFrac(5)
	s.SetTop(100)
	s.SetCounter(42)
	regs.WriteCCA(7)
	regs.WriteCCB(8)
	regs.WriteInvA(true)
	regs.WriteInvB(true)

	s.DefaultConfig()

	assert.False(t, regs.ReadPhCorrect())
	assert.Equal(t, uint8(1), regs.ReadDivInt())
	assert.Equal(t, uint8(0), regs.ReadDivFrac())
	assert.Equal(t, uint16(0), regs.ReadCCA())
	assert.Equal(t, uint16(0), regs.ReadCCB())
	assert.Equal(t, uint16(0xFFFF), s.Top())
	assert.Equal(t, uint16(0), s.Counter())
	assert.False(t, regs.ReadInvA())
	assert.False(t, regs.ReadInvB())
	assert.Equal(t, regsim.RawSlice{DIV: 0x10, TOP: 0xFFFF}, p.Raw(2))
}

func TestSliceEnableDisable(t *testing.T) {
	p := newPeripheral(t)
	s := pwm.NewDynSliceUnchecked(5, pwm.ModeFreeRunning)

	s.Enable()
	assert.True(t, p.Registers(5).ReadEnable())
	assert.Equal(t, uint32(1<<5), p.EnableMask())

	s.Disable()
	assert.False(t, p.Registers(5).ReadEnable())
	assert.Zero(t, p.EnableMask())
}

func TestSliceCounterTopDivider(t *testing.T) {
	p := newPeripheral(t)
	s := pwm.NewDynSliceUnchecked(1, pwm.ModeFreeRunning)

	s.SetTop(999)
	s.SetCounter(123)
	s.SetDivInt(4)
	s.SetDivFrac(3)
	assert.Equal(t, uint16(999), s.Top())
	assert.Equal(t, uint16(123), s.Counter())
	assert.Equal(t, uint32(4<<4|3), p.Raw(1).DIV)

	s.SetPhCorrect()
	assert.Equal(t, uint32(regsim.CSRPhCorrect), p.Raw(1).CSR)
	s.ClrPhCorrect()
	assert.Zero(t, p.Raw(1).CSR)
}

func TestPhaseAdjust(t *testing.T) {
	newPeripheral(t)
	s := pwm.NewDynSliceUnchecked(0, pwm.ModeFreeRunning)
	s.DefaultConfig()
	s.SetDivInt(2)
	s.SetTop(10)
	s.SetCounter(10)
	s.Enable()

	s.AdvancePhase()
	assert.Equal(t, uint16(0), s.Counter(), "advance wraps at top")
	s.RetardPhase()
	s.RetardPhase()
	assert.Equal(t, uint16(9), s.Counter())
}

func TestPhaseAdjustIgnoredAtFullSpeed(t *testing.T) {
	newPeripheral(t)
	s := pwm.NewDynSliceUnchecked(0, pwm.ModeFreeRunning)
	s.DefaultConfig()
	s.SetCounter(5)
	s.Enable()

	s.AdvancePhase()
	assert.Equal(t, uint16(5), s.Counter())
}

func TestPhaseAdjustIgnoredWhenStopped(t *testing.T) {
	newPeripheral(t)
	s := pwm.NewDynSliceUnchecked(0, pwm.ModeFreeRunning)
	s.DefaultConfig()
	s.SetDivInt(4)
	s.SetCounter(5)

	s.AdvancePhase()
	s.RetardPhase()
	s.RetardPhase()
	assert.Equal(t, uint16(5), s.Counter())
}

func TestInterruptEnableIsPerSlice(t *testing.T) {
	p := newPeripheral(t)
	s1 := pwm.NewDynSliceUnchecked(1, pwm.ModeFreeRunning)
	s6 := pwm.NewDynSliceUnchecked(6, pwm.ModeFreeRunning)

	s1.EnableInterrupt()
	s6.EnableInterrupt()
	_, inte, _, _ := p.RawInterrupts()
	assert.Equal(t, uint32(1<<1|1<<6), inte)

	s1.DisableInterrupt()
	_, inte, _, _ = p.RawInterrupts()
	assert.Equal(t, uint32(1<<6), inte)
}

func TestOverflowAndClear(t *testing.T) {
	p := newPeripheral(t)
	s := pwm.NewDynSliceUnchecked(4, pwm.ModeFreeRunning)
	other := pwm.NewDynSliceUnchecked(2, pwm.ModeFreeRunning)
	s.EnableInterrupt()
	other.EnableInterrupt()

	assert.False(t, s.HasOverflown())
	p.Wrap(4)
	p.Wrap(2)
	assert.True(t, s.HasOverflown())
	// HasOverflown has no side effect.
	assert.True(t, s.HasOverflown())

	s.ClearInterrupt()
	assert.False(t, s.HasOverflown())
	assert.True(t, other.HasOverflown(), "clearing one slice leaves the others pending")

	_, _, _, once := p.RawInterrupts()
	s.ClearInterrupt()
	_, _, _, twice := p.RawInterrupts()
	assert.Equal(t, once, twice)
}

func TestOverflowMaskedWhenDisabled(t *testing.T) {
	p := newPeripheral(t)
	s := pwm.NewDynSliceUnchecked(3, pwm.ModeFreeRunning)

	p.Wrap(3)
	assert.False(t, s.HasOverflown(), "status is masked by INTE")
	s.EnableInterrupt()
	assert.True(t, s.HasOverflown())
}

func TestForceInterrupt(t *testing.T) {
	p := newPeripheral(t)
	s := pwm.NewDynSliceUnchecked(7, pwm.ModeFreeRunning)

	s.ForceInterrupt()
	assert.True(t, s.HasOverflown())

	// Servicing does not drop a forced interrupt.
	s.ClearInterrupt()
	assert.True(t, s.HasOverflown())

	s.ClearForceInterrupt()
	assert.False(t, s.HasOverflown())
	_, _, intf, _ := p.RawInterrupts()
	assert.Zero(t, intf)
}

func TestConcurrentInterruptEnable(t *testing.T) {
	p := newPeripheral(t)
	slices := make([]*pwm.DynSlice, pwm.NumSlices)
	for i := range slices {
		slices[i] = pwm.NewDynSliceUnchecked(pwm.SliceID(i), pwm.ModeFreeRunning)
	}

	done := make(chan struct{})
	for _, s := range slices {
		go func(s *pwm.DynSlice) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 1000; i++ {
				s.EnableInterrupt()
				s.DisableInterrupt()
			}
			s.EnableInterrupt()
		}(s)
	}
	for range slices {
		<-done
	}

	_, inte, _, _ := p.RawInterrupts()
	require.Equal(t, uint32(0xFF), inte)
}

func TestMustBackendPanicsWhenUnset(t *testing.T) {
	pwm.SetBackend(nil)
	assert.Panics(t, func() { pwm.MustBackend() })
}
