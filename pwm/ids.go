// Package pwm provides runtime handles for the RP2040 PWM peripheral.
//
// The peripheral has NumSlices independent counters ("slices"), each driving
// two output channels, A and B. Statically-typed handles (Slice, Channel)
// carry their slice, mode and channel in type parameters; DynSlice and
// DynChannel carry the same information as runtime values so that code which
// only learns the slice or pin at runtime can still drive the hardware.
package pwm

// NumSlices is the number of PWM slices on the RP2040.
const NumSlices = 8

// SliceID is the value-level index of a PWM slice (0 to NumSlices-1).
type SliceID uint8

func mustValid(id SliceID) {
	if !id.Valid() {
		panic("pwm: slice id out of range")
	}
}

// Valid reports whether the id addresses a physical slice.
func (id SliceID) Valid() bool {
	return id < NumSlices
}

// String returns the id as "pwm<N>".
func (id SliceID) String() string {
	return "pwm" + itoa(int(id))
}

// ChannelID selects one of the two outputs of a slice.
type ChannelID uint8

const (
	ChannelA ChannelID = iota
	ChannelB
)

func (c ChannelID) String() string {
	switch c {
	case ChannelA:
		return "A"
	case ChannelB:
		return "B"
	default:
		return "?"
	}
}

// ParseChannelID accepts "A", "a", "B" or "b".
func ParseChannelID(s string) (ChannelID, bool) {
	switch s {
	case "A", "a":
		return ChannelA, true
	case "B", "b":
		return ChannelB, true
	}
	return 0, false
}

// SliceMode is the counting behaviour of a slice. The values match the
// hardware DIVMODE field.
type SliceMode uint8

const (
	// ModeFreeRunning counts continuously whenever the slice is enabled.
	ModeFreeRunning SliceMode = iota
	// ModeInputHighRunning counts while the B pin is high.
	ModeInputHighRunning
	// ModeCountRisingEdge counts once per rising edge on the B pin.
	ModeCountRisingEdge
	// ModeCountFallingEdge counts once per falling edge on the B pin.
	ModeCountFallingEdge
)

var modeNames = [...]string{
	ModeFreeRunning:      "free_running",
	ModeInputHighRunning: "input_high_running",
	ModeCountRisingEdge:  "count_rising_edge",
	ModeCountFallingEdge: "count_falling_edge",
}

func (m SliceMode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "mode(" + itoa(int(m)) + ")"
}

// ParseSliceMode converts a mode name as printed by String back to a mode.
func ParseSliceMode(s string) (SliceMode, bool) {
	for i, name := range modeNames {
		if name == s {
			return SliceMode(i), true
		}
	}
	return 0, false
}
