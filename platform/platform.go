// Package platform supplies the board services a node runs on: watchdog,
// error indicator, clock, reset, and the transport buses sensors talk over.
package platform

import (
	"tinygo.org/x/drivers"
)

// Platform is what the node loop needs from the board.
type Platform interface {
	FeedWatchdog()
	DisableWatchdog()
	// ErrorIndicator signals a fault once (one blink). Callers loop it.
	ErrorIndicator()
	EpochMillis() uint64
	ResetWithReason(reason string, restart bool)
}

// I2CBuses resolves bus ids such as "i2c0".
type I2CBuses interface {
	ByID(id string) (drivers.I2C, bool)
}

// StaticBuses is a fixed bus table.
type StaticBuses map[string]drivers.I2C

func (s StaticBuses) ByID(id string) (drivers.I2C, bool) {
	b, ok := s[id]
	return b, ok
}
