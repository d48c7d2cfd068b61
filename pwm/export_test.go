package pwm

// ResetClaims forgets every registry claim and the Take latch between tests.
func ResetClaims() {
	claimed.Store(0)
	taken.Store(false)
}
