package pwm_test

import (
	"testing"

	"rpwm/pwm"
	"rpwm/pwm/regsim"
)

// newPeripheral installs a fresh simulated peripheral as the backend.
func newPeripheral(t *testing.T) *regsim.Peripheral {
	t.Helper()
	p := regsim.New()
	pwm.SetBackend(p)
	pwm.ResetClaims()
	t.Cleanup(func() {
		pwm.SetBackend(nil)
		pwm.ResetClaims()
	})
	return p
}
