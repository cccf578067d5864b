// Package devices holds the shared environment of the concrete sensor
// classes. Each class lives in its own subpackage and registers itself on
// a factory through Register.
package devices

import (
	"log/slog"

	"sensornode-go/errcode"
	"sensornode-go/model"
	"sensornode-go/platform"
	"sensornode-go/x/mathx"

	"tinygo.org/x/drivers"
)

// Env is what sensor classes get from the firmware around them.
type Env struct {
	Clock  model.Clock
	Buses  platform.I2CBuses
	Logger *slog.Logger
}

// Log returns the environment logger or the default one.
func (e Env) Log() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// I2C looks up bus id, failing with UnknownBus.
func (e Env) I2C(op, id string) (drivers.I2C, error) {
	if e.Buses != nil {
		if b, ok := e.Buses.ByID(id); ok {
			return b, nil
		}
	}
	return nil, &errcode.E{C: errcode.UnknownBus, Op: op, Msg: id}
}

// ParseAddr reads an I2C address from a configuration value, falling back
// to def when v is out of the 7-bit range.
func ParseAddr(v int64, def uint16) uint16 {
	if !mathx.InRange(v, 1, 0x7F) {
		return def
	}
	return uint16(v)
}
