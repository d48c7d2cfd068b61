//go:build rp2040

package main

import (
	"device/rp"
	"runtime/interrupt"
	"strconv"
	"time"

	"rpwm/pwm"
	"rpwm/pwm/hw"
)

// countSlice is retyped to edge counting at startup; its B pin is the input.
const countSlice = 2

var (
	// Dynamic handles for every slice and channel, indexed by id.
	slices   [pwm.NumSlices]*pwm.DynSlice
	channels [pwm.NumSlices][2]*pwm.DynChannel

	// Breathing LED state, owned by the wrap interrupt.
	ledSlice *pwm.DynSlice
	led      *pwm.DynChannel
	ledStep  uint16
	ledUp    = true
	wraps    uint32
)

func main() {
	InitUSB()
	cfg := GetConfig()

	pwm.SetDebugWriter(usbWriteLine)
	pwm.SetDebugEnabled(cfg.Debug)
	pwm.SetBackend(hw.New())

	static, err := pwm.Take()
	if err != nil {
		halt("take: " + err.Error())
	}
	counter := pwm.Retype[pwm.CountRisingEdge](static.Pwm2)

	slices[0], channels[0] = toDyn(static.Pwm0)
	slices[1], channels[1] = toDyn(static.Pwm1)
	slices[2], channels[2] = toDyn(counter)
	slices[3], channels[3] = toDyn(static.Pwm3)
	slices[4], channels[4] = toDyn(static.Pwm4)
	slices[5], channels[5] = toDyn(static.Pwm5)
	slices[6], channels[6] = toDyn(static.Pwm6)
	slices[7], channels[7] = toDyn(static.Pwm7)

	// The LED slice is only known at runtime, from the pin number.
	id, ch := pwm.PinRoute(cfg.LEDPin)
	if id == countSlice {
		halt("LED pin " + strconv.Itoa(int(cfg.LEDPin)) + " collides with the counting slice")
	}
	ledSlice, led = slices[id], channels[id][ch]
	if err := led.OutputTo(hw.Pin(cfg.LEDPin)); err != nil {
		halt(err.Error())
	}
	ledStep = cfg.BreatheStep

	ledSlice.DefaultConfig()
	ledSlice.SetDivInt(cfg.DivInt)
	ledSlice.SetTop(cfg.Top)
	ledSlice.ClearInterrupt()
	ledSlice.EnableInterrupt()
	led.Enable()
	ledSlice.Enable()

	cs := slices[countSlice]
	cs.DefaultConfig()
	if err := channels[countSlice][pwm.ChannelB].InputFrom(hw.Pin(cfg.CountPin)); err != nil {
		halt(err.Error())
	}
	cs.Enable()

	interrupt.New(rp.IRQ_PWM_IRQ_WRAP, onWrap).Enable()

	for tick := 0; ; tick++ {
		time.Sleep(time.Second)

		pwm.DebugPrintln("[PWM] " + cs.ID().String() + " edges=" + strconv.Itoa(int(cs.Counter())) +
			" wraps=" + strconv.Itoa(int(wraps)))

		// Every five seconds gate the LED off for a second. The breathing
		// duty survives the gap.
		switch tick % 5 {
		case 3:
			state := interrupt.Disable()
			led.Disable()
			interrupt.Restore(state)
		case 4:
			state := interrupt.Disable()
			led.Enable()
			interrupt.Restore(state)
		}
	}
}

// toDyn converts a static slice and both its channels.
func toDyn[I pwm.SliceIdent, M pwm.ModeKind](s *pwm.Slice[I, M]) (*pwm.DynSlice, [2]*pwm.DynChannel) {
	a := pwm.ChannelToDyn(s.ChannelA)
	b := pwm.ChannelToDyn(s.ChannelB)
	return pwm.SliceToDyn(s), [2]*pwm.DynChannel{a, b}
}

// onWrap services PWM_IRQ_WRAP for every slice and steps the LED duty.
func onWrap(interrupt.Interrupt) {
	for _, s := range slices {
		if !s.HasOverflown() {
			continue
		}
		s.ClearInterrupt()
		if s != ledSlice {
			continue
		}
		wraps++
		if wraps%1024 == 0 {
			pwm.RecordEvent(pwm.EvtWrap, s.ID(), wraps)
		}
		breathe()
	}
}

// breathe moves the LED duty one step, bouncing between 0 and top. The
// step is applied to the remembered duty while the LED is gated off.
func breathe() {
	duty, top := led.Duty(), led.MaxDuty()
	if ledUp {
		if top-duty <= ledStep {
			duty, ledUp = top, false
		} else {
			duty += ledStep
		}
	} else {
		if duty <= ledStep {
			duty, ledUp = 0, true
		} else {
			duty -= ledStep
		}
	}
	led.SetDuty(duty)
}

// halt logs the reason and the event ring, then parks the core.
func halt(msg string) {
	pwm.SetDebugEnabled(true)
	pwm.DebugPrintln("[PWM] fatal: " + msg)
	pwm.DumpEvents()
	for {
		time.Sleep(time.Hour)
	}
}
