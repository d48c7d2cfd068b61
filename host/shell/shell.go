// Package shell is a line-oriented command interpreter for driving PWM
// handles against the simulated register block.
package shell

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/shlex"
	"github.com/pkg/errors"

	"rpwm/config"
	"rpwm/pwm"
	"rpwm/pwm/regsim"
)

// ErrUsage is returned for malformed commands.
var ErrUsage = errors.New("usage")

// Shell holds the handles opened by commands. Slices and channels are
// claimed on first use in free running mode unless claimed explicitly.
type Shell struct {
	p   *regsim.Peripheral
	out io.Writer

	slices   [pwm.NumSlices]*pwm.DynSlice
	channels [pwm.NumSlices][2]*pwm.DynChannel
}

// New returns a shell over p writing to out. p must be the installed
// pwm backend.
func New(p *regsim.Peripheral, out io.Writer) *Shell {
	return &Shell{p: p, out: out}
}

// Adopt takes over the handles of an applied bench.
func (sh *Shell) Adopt(b *config.Bench) {
	for id, s := range b.Slices {
		sh.slices[id] = s
	}
	for id, pair := range b.Channels {
		sh.channels[id] = *pair
	}
}

// Close releases every handle the shell holds.
func (sh *Shell) Close() {
	for id := range sh.channels {
		for ch, c := range sh.channels[id] {
			if c != nil {
				c.Release()
				sh.channels[id][ch] = nil
			}
		}
	}
	for id, s := range sh.slices {
		if s != nil {
			s.Release()
			sh.slices[id] = nil
		}
	}
}

// Exec runs one command line. Blank lines and # comments are ignored.
func (sh *Shell) Exec(line string) error {
	args, err := shlex.Split(line)
	if err != nil {
		return errors.Wrap(err, "parse")
	}
	if len(args) == 0 {
		return nil
	}

	switch args[0] {
	case "slice", "s":
		return sh.sliceCmd(args[1:])
	case "ch", "c":
		return sh.channelCmd(args[1:])
	case "step":
		return sh.step(args[1:])
	case "input":
		return sh.input(args[1:])
	case "debug":
		on, err := parseOnOff(args[1:])
		if err != nil {
			return err
		}
		pwm.SetDebugEnabled(on)
		return nil
	case "dump":
		pwm.DumpEvents()
		return nil
	case "events":
		for _, e := range pwm.Events() {
			fmt.Fprintln(sh.out, e)
		}
		return nil
	case "irq":
		intr, inte, intf, ints := sh.p.RawInterrupts()
		fmt.Fprintf(sh.out, "intr=%02x inte=%02x intf=%02x ints=%02x\n", intr, inte, intf, ints)
		return nil
	case "help", "?":
		sh.help()
		return nil
	default:
		return errors.Errorf("unknown command %q (type 'help' for available commands)", args[0])
	}
}

func (sh *Shell) help() {
	fmt.Fprintln(sh.out, `Available commands:
  slice <id> claim [mode]         - Claim a slice in a counting mode
  slice <id> release              - Release the slice handle
  slice <id> default              - Reset the slice configuration
  slice <id> enable|disable       - Start or stop the counter
  slice <id> top|ctr <n>          - Set TOP or the counter
  slice <id> div <int> [frac]     - Set the clock divider
  slice <id> phase on|off|adv|ret - Phase correct mode and phase nudges
  slice <id> irq on|off|clear     - Wrap interrupt enable and clear
  slice <id> force|unforce        - Force or unforce the wrap interrupt
  slice <id> status               - Show the slice registers
  ch <id> <A|B> enable|disable    - Gate the channel output
  ch <id> <A|B> duty <n>          - Set the duty
  ch <id> <A|B> inv on|off        - Invert the output
  ch <id> <A|B> get               - Show duty and output level
  ch <id> <A|B> out|in <gpio>     - Route a pin to the channel
  ch <id> <A|B> release           - Release the channel handle
  step <cycles>                   - Advance the clock
  input <id> 0|1                  - Drive a slice's B input
  irq                             - Show the interrupt words
  debug on|off                    - Toggle debug output
  events | dump                   - Show the event ring
  help                            - Show this help message`)
}

func (sh *Shell) sliceCmd(args []string) error {
	if len(args) < 2 {
		return errors.Wrap(ErrUsage, "slice <id> <op> [args]")
	}
	id, err := parseSlice(args[0])
	if err != nil {
		return err
	}
	op, rest := args[1], args[2:]

	switch op {
	case "claim":
		mode := pwm.ModeFreeRunning
		if len(rest) > 0 {
			m, ok := pwm.ParseSliceMode(rest[0])
			if !ok {
				return errors.Errorf("unknown mode %q", rest[0])
			}
			mode = m
		}
		if sh.slices[id] != nil {
			return errors.Wrapf(pwm.ErrSliceInUse, "%s", id)
		}
		s, err := pwm.Claim(id, mode)
		if err != nil {
			return err
		}
		sh.slices[id] = s
		return nil
	case "release":
		if s := sh.slices[id]; s != nil {
			s.Release()
			sh.slices[id] = nil
		}
		return nil
	}

	s, err := sh.slice(id)
	if err != nil {
		return err
	}
	switch op {
	case "default":
		s.DefaultConfig()
	case "enable":
		s.Enable()
	case "disable":
		s.Disable()
	case "top", "ctr":
		if len(rest) != 1 {
			return errors.Wrapf(ErrUsage, "slice <id> %s <n>", op)
		}
		v, err := parseUint(rest[0], 16)
		if err != nil {
			return err
		}
		if op == "top" {
			s.SetTop(uint16(v))
		} else {
			s.SetCounter(uint16(v))
		}
	case "div":
		if len(rest) < 1 || len(rest) > 2 {
			return errors.Wrap(ErrUsage, "slice <id> div <int> [frac]")
		}
		i, err := parseUint(rest[0], 8)
		if err != nil {
			return err
		}
		var f uint64
		if len(rest) == 2 {
			if f, err = parseUint(rest[1], 4); err != nil {
				return err
			}
		}
		s.SetDivInt(uint8(i))
		s.SetDivFrac(uint8(f))
	case "phase":
		if len(rest) != 1 {
			return errors.Wrap(ErrUsage, "slice <id> phase on|off|adv|ret")
		}
		switch rest[0] {
		case "on":
			s.SetPhCorrect()
		case "off":
			s.ClrPhCorrect()
		case "adv":
			s.AdvancePhase()
		case "ret":
			s.RetardPhase()
		default:
			return errors.Wrap(ErrUsage, "slice <id> phase on|off|adv|ret")
		}
	case "irq":
		if len(rest) != 1 {
			return errors.Wrap(ErrUsage, "slice <id> irq on|off|clear")
		}
		switch rest[0] {
		case "on":
			s.EnableInterrupt()
		case "off":
			s.DisableInterrupt()
		case "clear":
			s.ClearInterrupt()
		default:
			return errors.Wrap(ErrUsage, "slice <id> irq on|off|clear")
		}
	case "force":
		s.ForceInterrupt()
	case "unforce":
		s.ClearForceInterrupt()
	case "status":
		sh.status(s)
	default:
		return errors.Errorf("unknown slice operation %q", op)
	}
	return nil
}

func (sh *Shell) status(s *pwm.DynSlice) {
	raw := sh.p.Raw(s.ID())
	fmt.Fprintf(sh.out, "%s mode=%s en=%t ph=%t div=%d.%d top=%d ctr=%d cc=%08x irq=%t pending=%t\n",
		s.ID(), s.Mode(),
		raw.CSR&regsim.CSREn != 0,
		raw.CSR&regsim.CSRPhCorrect != 0,
		(raw.DIV&regsim.DivIntMask)>>4, raw.DIV&regsim.DivFracMask,
		s.Top(), s.Counter(), raw.CC,
		sh.p.Interrupts().Enable.Get()&s.Bitmask() != 0,
		s.HasOverflown())
}

func (sh *Shell) channelCmd(args []string) error {
	if len(args) < 3 {
		return errors.Wrap(ErrUsage, "ch <id> <A|B> <op> [args]")
	}
	id, err := parseSlice(args[0])
	if err != nil {
		return err
	}
	chID, ok := pwm.ParseChannelID(args[1])
	if !ok {
		return errors.Errorf("unknown channel %q", args[1])
	}
	op, rest := args[2], args[3:]

	if op == "release" {
		if c := sh.channels[id][chID]; c != nil {
			c.Release()
			sh.channels[id][chID] = nil
		}
		return nil
	}

	c, err := sh.channel(id, chID)
	if err != nil {
		return err
	}
	switch op {
	case "enable":
		c.Enable()
	case "disable":
		c.Disable()
	case "duty":
		if len(rest) != 1 {
			return errors.Wrap(ErrUsage, "ch <id> <A|B> duty <n>")
		}
		v, err := parseUint(rest[0], 16)
		if err != nil {
			return err
		}
		c.SetDuty(uint16(v))
	case "inv":
		on, err := parseOnOff(rest)
		if err != nil {
			return err
		}
		if on {
			c.SetInverted()
		} else {
			c.ClrInverted()
		}
	case "get":
		fmt.Fprintf(sh.out, "%s/%s enabled=%t duty=%d max=%d out=%t\n",
			id, chID, c.Enabled(), c.Duty(), c.MaxDuty(), sh.p.Output(id, chID))
	case "out", "in":
		if len(rest) != 1 {
			return errors.Wrapf(ErrUsage, "ch <id> <A|B> %s <gpio>", op)
		}
		gpio, err := parseUint(rest[0], 8)
		if err != nil {
			return err
		}
		pin := sh.p.Pin(uint8(gpio))
		if op == "out" {
			return c.OutputTo(pin)
		}
		return c.InputFrom(pin)
	default:
		return errors.Errorf("unknown channel operation %q", op)
	}
	return nil
}

func (sh *Shell) step(args []string) error {
	if len(args) != 1 {
		return errors.Wrap(ErrUsage, "step <cycles>")
	}
	n, err := parseUint(args[0], 31)
	if err != nil {
		return err
	}
	sh.p.Step(int(n))
	return nil
}

func (sh *Shell) input(args []string) error {
	if len(args) != 2 {
		return errors.Wrap(ErrUsage, "input <id> 0|1")
	}
	id, err := parseSlice(args[0])
	if err != nil {
		return err
	}
	switch args[1] {
	case "0", "low":
		sh.p.SetInput(id, false)
	case "1", "high":
		sh.p.SetInput(id, true)
	default:
		return errors.Wrap(ErrUsage, "input <id> 0|1")
	}
	return nil
}

func (sh *Shell) slice(id pwm.SliceID) (*pwm.DynSlice, error) {
	if s := sh.slices[id]; s != nil {
		return s, nil
	}
	s, err := pwm.Claim(id, pwm.ModeFreeRunning)
	if err != nil {
		return nil, err
	}
	sh.slices[id] = s
	return s, nil
}

func (sh *Shell) channel(id pwm.SliceID, ch pwm.ChannelID) (*pwm.DynChannel, error) {
	if c := sh.channels[id][ch]; c != nil {
		return c, nil
	}
	mode := pwm.ModeFreeRunning
	if s := sh.slices[id]; s != nil {
		mode = s.Mode()
	}
	c, err := pwm.ClaimChannel(id, mode, ch)
	if err != nil {
		return nil, err
	}
	sh.channels[id][ch] = c
	return c, nil
}

func parseSlice(s string) (pwm.SliceID, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "pwm"), 10, 8)
	if err != nil || !pwm.SliceID(v).Valid() {
		return 0, errors.Wrapf(pwm.ErrInvalidSlice, "%q", s)
	}
	return pwm.SliceID(v), nil
}

func parseUint(s string, bits int) (uint64, error) {
	v, err := strconv.ParseUint(s, 0, bits)
	if err != nil {
		return 0, errors.Wrapf(err, "bad number %q", s)
	}
	return v, nil
}

func parseOnOff(args []string) (bool, error) {
	if len(args) == 1 {
		switch args[0] {
		case "on", "1", "true":
			return true, nil
		case "off", "0", "false":
			return false, nil
		}
	}
	return false, errors.Wrap(ErrUsage, "on|off")
}
