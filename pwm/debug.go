package pwm

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// Event is a handle lifecycle or interrupt event kept for post-mortem
// analysis.
type Event struct {
	Type  uint8   // Event type code
	Slice SliceID // Slice the event refers to
	Value uint32  // Context-dependent value
}

// Event type codes
const (
	EvtClaim     = 1 // Slice claimed through the registry
	EvtRelease   = 2 // Slice released
	EvtConvert   = 3 // Static handle converted to a dynamic one
	EvtWrap      = 4 // Wrap interrupt serviced (Value = counter)
	EvtForce     = 5 // Interrupt forced (Value = 1 set, 0 cleared)
	EvtRouteFail = 6 // Pin routing refused (Value = gpio)
)

// EventRingSize is the number of events kept.
const EventRingSize = 32

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {}

	// debugEnabled controls whether debug output is active
	debugEnabled bool

	eventRing     [EventRingSize]Event
	eventRingHead uint8
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, USB, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// RecordEvent stores an event in the ring buffer. It never blocks and is
// safe to call from an interrupt handler on a single core.
func RecordEvent(typ uint8, slice SliceID, value uint32) {
	idx := eventRingHead
	eventRing[idx] = Event{Type: typ, Slice: slice, Value: value}
	eventRingHead = (idx + 1) % EventRingSize
}

// Events returns the recorded events, oldest first.
func Events() []Event {
	out := make([]Event, 0, EventRingSize)
	start := eventRingHead
	for i := uint8(0); i < EventRingSize; i++ {
		evt := eventRing[(start+i)%EventRingSize]
		if evt.Type == 0 {
			continue // Empty slot
		}
		out = append(out, evt)
	}
	return out
}

func eventName(typ uint8) string {
	switch typ {
	case EvtClaim:
		return "CLAIM"
	case EvtRelease:
		return "RELEASE"
	case EvtConvert:
		return "CONVERT"
	case EvtWrap:
		return "WRAP"
	case EvtForce:
		return "FORCE"
	case EvtRouteFail:
		return "ROUTE_FAIL!"
	default:
		return "UNKNOWN"
	}
}

func (e Event) String() string {
	return eventName(e.Type) + " " + e.Slice.String() + " v=" + itoa(int(e.Value))
}

// DumpEvents writes the ring buffer through the debug writer regardless of
// the enabled flag (call on fault).
func DumpEvents() {
	if debugPrintln == nil {
		return
	}
	debugPrintln("[PWM] === Event Dump ===")
	for _, evt := range Events() {
		debugPrintln("[PWM] " + evt.String())
	}
	debugPrintln("[PWM] === End Dump ===")
}

// ClearEvents clears the event buffer
func ClearEvents() {
	for i := range eventRing {
		eventRing[i] = Event{}
	}
	eventRingHead = 0
}
