// Package all registers every communicator class.
package all

import (
	"github.com/prometheus/client_golang/prometheus"

	"sensornode-go/comms"
	"sensornode-go/comms/logcomm"
	"sensornode-go/comms/promcomm"
	"sensornode-go/comms/wscomm"
	"sensornode-go/factory"
)

// Register installs the log, prometheus and websocket classes on f. The
// prometheus class registers its collectors on reg.
func Register(f *factory.Factory, env comms.Env, reg prometheus.Registerer) {
	logcomm.Register(f, env)
	promcomm.Register(f, env, reg)
	wscomm.Register(f, env)
}
