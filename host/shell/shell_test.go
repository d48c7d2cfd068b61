package shell

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpwm/config"
	"rpwm/pwm"
	"rpwm/pwm/regsim"
)

func newShell(t *testing.T) (*Shell, *regsim.Peripheral, *bytes.Buffer) {
	t.Helper()
	p := regsim.New()
	pwm.SetBackend(p)
	var out bytes.Buffer
	sh := New(p, &out)
	t.Cleanup(func() {
		sh.Close()
		pwm.SetBackend(nil)
	})
	return sh, p, &out
}

func run(t *testing.T, sh *Shell, lines ...string) {
	t.Helper()
	for _, l := range lines {
		require.NoError(t, sh.Exec(l), l)
	}
}

func TestSliceCommands(t *testing.T) {
	sh, p, out := newShell(t)

	run(t, sh,
		"slice 1 default",
		"slice pwm1 div 2 8",
		"slice 1 top 0x10",
		"slice 1 ctr 3",
		"slice 1 phase on",
		"slice 1 enable",
		"slice 1 status",
	)

	raw := p.Raw(1)
	assert.Equal(t, uint32(2<<4|8), raw.DIV)
	assert.Equal(t, uint32(16), raw.TOP)
	assert.Equal(t, uint32(3), raw.CTR)
	assert.Equal(t, uint32(regsim.CSREn|regsim.CSRPhCorrect), raw.CSR)
	assert.Equal(t, "pwm1 mode=free_running en=true ph=true div=2.8 top=16 ctr=3 cc=00000000 irq=false pending=false\n", out.String())
	assert.True(t, pwm.Claimed(1))

	run(t, sh, "slice 1 disable", "slice 1 phase off")
	assert.Zero(t, p.Raw(1).CSR)
}

func TestSliceClaimMode(t *testing.T) {
	sh, p, _ := newShell(t)

	run(t, sh, "slice 2 claim count_falling_edge")
	assert.Equal(t, pwm.ModeCountFallingEdge, p.Registers(2).ReadDivMode())

	err := sh.Exec("slice 2 claim")
	assert.True(t, errors.Is(err, pwm.ErrSliceInUse))

	run(t, sh, "slice 2 release", "slice 2 claim")
	assert.Equal(t, pwm.ModeFreeRunning, p.Registers(2).ReadDivMode())
}

func TestInterruptCommands(t *testing.T) {
	sh, p, out := newShell(t)

	run(t, sh, "slice 3 irq on", "slice 3 force")
	_, inte, intf, ints := p.RawInterrupts()
	assert.Equal(t, uint32(1<<3), inte)
	assert.Equal(t, uint32(1<<3), intf)
	assert.Equal(t, uint32(1<<3), ints)

	run(t, sh, "slice 3 unforce", "slice 3 irq off", "irq")
	assert.Equal(t, "intr=00 inte=00 intf=00 ints=00\n", out.String())
}

func TestChannelCommands(t *testing.T) {
	sh, p, out := newShell(t)

	run(t, sh,
		"slice 0 top 9",
		"ch 0 A duty 4",
		"ch 0 A get",
	)
	assert.Equal(t, "pwm0/A enabled=false duty=4 max=9 out=false\n", out.String())
	assert.Zero(t, p.Registers(0).ReadCCA())

	out.Reset()
	run(t, sh, "ch 0 a enable", "slice 0 enable", "step 2", "ch 0 A get")
	assert.Equal(t, "pwm0/A enabled=true duty=4 max=9 out=true\n", out.String())

	run(t, sh, "ch 0 A disable", "ch 0 A duty 7", "ch 0 A enable")
	assert.Equal(t, uint16(7), p.Registers(0).ReadCCA())

	run(t, sh, "ch 0 B inv on")
	assert.True(t, p.Registers(0).ReadInvB())
	run(t, sh, "ch 0 B inv off")
	assert.False(t, p.Registers(0).ReadInvB())
}

func TestChannelRouting(t *testing.T) {
	sh, p, _ := newShell(t)

	run(t, sh, "ch 0 A out 16")
	assert.True(t, p.PinIsPWM(16))

	err := sh.Exec("ch 0 A out 17")
	assert.True(t, errors.Is(err, pwm.ErrIncompatiblePinFunction))

	err = sh.Exec("ch 2 A in 4")
	assert.True(t, errors.Is(err, pwm.ErrIncompatiblePinFunction))
	run(t, sh, "ch 2 B in 5")
	assert.True(t, p.PinIsPWM(5))
}

func TestStepAndInput(t *testing.T) {
	sh, p, _ := newShell(t)

	run(t, sh, "slice 2 claim count_rising_edge", "slice 2 enable")
	for i := 0; i < 3; i++ {
		run(t, sh, "input 2 1", "input 2 0")
	}
	assert.Equal(t, uint16(3), p.Registers(2).ReadCtr())

	run(t, sh, "slice 4 enable", "step 10")
	assert.Equal(t, uint16(10), p.Registers(4).ReadCtr())
}

func TestAdopt(t *testing.T) {
	sh, p, _ := newShell(t)

	cfg, err := config.Parse([]byte("slices:\n  - id: 5\n    channels: {B: {duty: 9, enabled: true}}\n"))
	require.NoError(t, err)
	b, err := cfg.Apply(nil)
	require.NoError(t, err)
	sh.Adopt(b)

	run(t, sh, "ch 5 B duty 11")
	assert.Equal(t, uint16(11), p.Registers(5).ReadCCB())

	sh.Close()
	assert.False(t, pwm.Claimed(5))
	assert.False(t, pwm.ChannelClaimed(5, pwm.ChannelB))
}

func TestEventsAndDump(t *testing.T) {
	sh, _, out := newShell(t)
	pwm.ClearEvents()

	var dumped []string
	pwm.SetDebugWriter(func(s string) { dumped = append(dumped, s) })
	defer pwm.SetDebugWriter(func(string) {})

	run(t, sh, "slice 6 enable", "events", "dump")
	assert.Equal(t, "CLAIM pwm6 v=0\n", out.String())
	assert.Equal(t, []string{
		"[PWM] === Event Dump ===",
		"[PWM] CLAIM pwm6 v=0",
		"[PWM] === End Dump ===",
	}, dumped)
}

func TestErrors(t *testing.T) {
	sh, _, _ := newShell(t)

	tests := []struct {
		line string
		is   error
		msg  string
	}{
		{"slice 8 enable", pwm.ErrInvalidSlice, ""},
		{"slice x enable", pwm.ErrInvalidSlice, ""},
		{"slice 1", ErrUsage, ""},
		{"slice 1 top", ErrUsage, ""},
		{"slice 1 div 1 16", nil, "bad number"},
		{"slice 1 phase sideways", ErrUsage, ""},
		{"slice 1 claim sideways", nil, `unknown mode "sideways"`},
		{"slice 1 spin", nil, `unknown slice operation "spin"`},
		{"ch 1 C get", nil, `unknown channel "C"`},
		{"ch 1 A duty 70000", nil, "bad number"},
		{"ch 1 A", ErrUsage, ""},
		{"input 1 maybe", ErrUsage, ""},
		{"debug", ErrUsage, ""},
		{"frobnicate", nil, `unknown command "frobnicate"`},
		{`slice "1`, nil, "parse"},
	}
	for _, tt := range tests {
		err := sh.Exec(tt.line)
		require.Error(t, err, tt.line)
		if tt.is != nil {
			assert.True(t, errors.Is(err, tt.is), "%s: %v", tt.line, err)
		}
		if tt.msg != "" {
			assert.Contains(t, err.Error(), tt.msg, tt.line)
		}
	}
}

func TestBlankAndComment(t *testing.T) {
	sh, _, out := newShell(t)
	run(t, sh, "", "   ", "# nothing")
	assert.Empty(t, out.String())
}

func TestHelp(t *testing.T) {
	sh, _, out := newShell(t)
	run(t, sh, "help")
	assert.True(t, strings.HasPrefix(out.String(), "Available commands:"))
	assert.Contains(t, out.String(), "step <cycles>")
}
