// Package promcomm is the "prometheus" communicator class: the latest
// reading of every quantity and the status of every object as gauges.
package promcomm

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"sensornode-go/comms"
	"sensornode-go/factory"
	"sensornode-go/model"
	"sensornode-go/x/jsondoc"
)

const Class = "prometheus"

type Config struct {
	Name      string
	Namespace string
}

func ConfigFrom(o jsondoc.Object) Config {
	return Config{
		Name:      o.NonEmpty("name", Class),
		Namespace: o.NonEmpty("namespace", "sensornode"),
	}
}

func (c Config) FillData(o jsondoc.Object) {
	o.Set("name", c.Name)
	o.Set("namespace", c.Namespace)
}
func (c Config) ExpectedCapacity() int { return 2 }

// Register installs the class; its collectors go to reg, or to the process
// default registerer when reg is nil.
func Register(f *factory.Factory, env comms.Env, reg prometheus.Registerer) {
	f.Register(Class, func(frag jsondoc.Object) factory.Result {
		return f.CommunicatorFactory(New(ConfigFrom(frag), env, reg), frag)
	})
}

type Communicator struct {
	model.CommunicatorBase
	cfg Config
	env comms.Env
	reg prometheus.Registerer

	value    *prometheus.GaugeVec
	valid    *prometheus.GaugeVec
	readings *prometheus.CounterVec
	statusOK *prometheus.GaugeVec
	fatal    *prometheus.GaugeVec
}

func New(cfg Config, env comms.Env, reg prometheus.Registerer) *Communicator {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Communicator{cfg: cfg, env: env, reg: reg}
	c.InitCommunicator(c, cfg.Name, Class)
	ns := cfg.Namespace
	c.value = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: ns, Subsystem: "sensor", Name: "value",
		Help: "Latest valid reading of a quantity",
	}, []string{"source", "quantity", "unit"})
	c.valid = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: ns, Subsystem: "sensor", Name: "valid",
		Help: "1 when the latest reading of a quantity was valid",
	}, []string{"source", "quantity"})
	c.readings = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns, Subsystem: "sensor", Name: "bundles_total",
		Help: "Measurement bundles received per source",
	}, []string{"source"})
	c.statusOK = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: ns, Subsystem: "object", Name: "status_ok",
		Help: "1 when the object's status message is OK",
	}, []string{"source", "class"})
	c.fatal = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: ns, Subsystem: "object", Name: "status_fatal",
		Help: "1 when the object reports a fatal error",
	}, []string{"source", "class"})
	return c
}

func (c *Communicator) collectors() []prometheus.Collector {
	return []prometheus.Collector{c.value, c.valid, c.readings, c.statusOK, c.fatal}
}

// Setup registers the collectors. A collector already registered under
// the same description is reused.
func (c *Communicator) Setup() error {
	reg := c.reg
	for i, col := range c.collectors() {
		err := reg.Register(col)
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			c.adopt(i, are.ExistingCollector)
			continue
		}
		if err != nil {
			c.SetStatus(err.Error(), false)
			return err
		}
	}
	c.NetworkConnected()
	return nil
}

func (c *Communicator) adopt(i int, col prometheus.Collector) {
	switch i {
	case 0:
		c.value = col.(*prometheus.GaugeVec)
	case 1:
		c.valid = col.(*prometheus.GaugeVec)
	case 2:
		c.readings = col.(*prometheus.CounterVec)
	case 3:
		c.statusOK = col.(*prometheus.GaugeVec)
	case 4:
		c.fatal = col.(*prometheus.GaugeVec)
	}
}

func (c *Communicator) NewReading(b model.MeasurementBundle) {
	src := ""
	if b.Src() != nil {
		src = b.Src().QualifiedName(model.NameSep)
	}
	c.readings.WithLabelValues(src).Inc()
	for _, m := range b.Measurements() {
		md := m.MetaData()
		if md == nil {
			continue
		}
		if !m.IsValid() {
			c.valid.WithLabelValues(src, md.Name()).Set(0)
			continue
		}
		c.valid.WithLabelValues(src, md.Name()).Set(1)
		if md.Type == model.TypeInt || md.Type == model.TypeFloat {
			c.value.WithLabelValues(src, md.Name(), md.Unit).Set(m.Float())
		}
	}
}

func (c *Communicator) NewStatus(status model.Measurement, src model.Object) {
	if src == nil || status.State() == model.NoData {
		return
	}
	name, class := src.QualifiedName(model.NameSep), src.ClassName()
	c.statusOK.WithLabelValues(name, class).Set(boolGauge(status.IsValid() && status.Text() == model.StatusOK))
	c.fatal.WithLabelValues(name, class).Set(boolGauge(status.State() == model.Error))
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Close unregisters the collectors.
func (c *Communicator) Close() error {
	reg := c.reg
	for _, col := range c.collectors() {
		reg.Unregister(col)
	}
	c.NetworkDisconnected()
	return nil
}

func (c *Communicator) Config() model.Configuration { return c.cfg }
