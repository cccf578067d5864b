// Package all registers every sensor class.
package all

import (
	"sensornode-go/devices"
	aht20dev "sensornode-go/devices/aht20"
	shtc3dev "sensornode-go/devices/shtc3"
	staticdev "sensornode-go/devices/static"
	"sensornode-go/factory"
)

// Register installs the static, aht20 and shtc3 classes on f.
func Register(f *factory.Factory, env devices.Env) {
	staticdev.Register(f, env)
	aht20dev.Register(f, env)
	shtc3dev.Register(f, env)
}
