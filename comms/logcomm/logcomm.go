// Package logcomm is the "log" communicator class: readings and statuses
// go to the structured log. Readings are rate limited; statuses are not.
package logcomm

import (
	"log/slog"

	"golang.org/x/time/rate"

	"sensornode-go/comms"
	"sensornode-go/factory"
	"sensornode-go/model"
	"sensornode-go/x/jsondoc"
)

const Class = "log"

type Config struct {
	Name  string
	Rate  float64 // readings per second; 0 logs every reading
	Burst int
}

func ConfigFrom(o jsondoc.Object) Config {
	return Config{
		Name:  o.NonEmpty("name", Class),
		Rate:  o.Float("rate", 1),
		Burst: int(o.Int("burst", 5)),
	}
}

func (c Config) FillData(o jsondoc.Object) {
	o.Set("name", c.Name)
	o.Set("rate", c.Rate)
	o.Set("burst", c.Burst)
}
func (c Config) ExpectedCapacity() int { return 3 }

func Register(f *factory.Factory, env comms.Env) {
	f.Register(Class, func(frag jsondoc.Object) factory.Result {
		return f.CommunicatorFactory(New(ConfigFrom(frag), env), frag)
	})
}

type Communicator struct {
	model.CommunicatorBase
	cfg        Config
	log        *slog.Logger
	lim        *rate.Limiter
	suppressed int
}

func New(cfg Config, env comms.Env) *Communicator {
	c := &Communicator{log: env.Log()}
	c.InitCommunicator(c, cfg.Name, Class)
	c.apply(cfg)
	return c
}

func (c *Communicator) apply(cfg Config) {
	cfg.Name = c.Name()
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	c.cfg = cfg
	lim := rate.Inf
	if cfg.Rate > 0 {
		lim = rate.Limit(cfg.Rate)
	}
	c.lim = rate.NewLimiter(lim, cfg.Burst)
}

// Setup marks the log sink connected; it has no link to lose.
func (c *Communicator) Setup() error {
	c.NetworkConnected()
	return nil
}

func (c *Communicator) NewReading(b model.MeasurementBundle) {
	if !c.lim.Allow() {
		c.suppressed++
		return
	}
	c.log.Info("reading", comms.Reading(b).LogAttrs()...)
}

func (c *Communicator) NewStatus(status model.Measurement, src model.Object) {
	attrs := comms.Status(status, src).LogAttrs()
	switch {
	case status.State() == model.Error:
		c.log.Error("status", attrs...)
	case status.Text() != model.StatusOK:
		c.log.Warn("status", attrs...)
	default:
		c.log.Info("status", attrs...)
	}
}

// Loop reports readings dropped by the rate limit since the last tick.
func (c *Communicator) Loop() {
	if c.suppressed == 0 {
		return
	}
	c.log.Debug("readings suppressed", "count", c.suppressed)
	c.suppressed = 0
}

// Suppressed is the number of readings dropped since the last Loop.
func (c *Communicator) Suppressed() int { return c.suppressed }

func (c *Communicator) Config() model.Configuration { return c.cfg }

func (c *Communicator) Reconfigure(cfg model.Configuration) bool {
	nc, ok := cfg.(Config)
	if !ok {
		return false
	}
	c.apply(nc)
	return true
}
