// Package staticdev is the "static" sensor class: a sensor that reports a
// configured value. It stands in for hardware on hosts and in tests.
package staticdev

import (
	"sensornode-go/devices"
	"sensornode-go/factory"
	"sensornode-go/model"
	"sensornode-go/x/jsondoc"
	"sensornode-go/x/mathx"
)

const Class = "static"

type Config struct {
	Name      string
	Quantity  string
	Unit      string
	Type      model.DataType
	Value     float64
	Text      string
	Precision int
	Status    string
	Fatal     bool
	FailSetup bool
	FailRead  bool
}

func parseType(s string) model.DataType {
	switch s {
	case "int":
		return model.TypeInt
	case "string":
		return model.TypeString
	default:
		return model.TypeFloat
	}
}

func ConfigFrom(o jsondoc.Object) Config {
	return Config{
		Name:      o.NonEmpty("name", Class),
		Quantity:  o.NonEmpty("quantity", "Value"),
		Unit:      o.String("unit", ""),
		Type:      parseType(o.String("type", "float")),
		Value:     o.Float("value", 0),
		Text:      o.String("text", ""),
		Precision: int(mathx.Clamp(o.Int("precision", model.DefaultPrecision), 0, model.MaxPrecision)),
		Status:    o.NonEmpty("status", model.StatusOK),
		Fatal:     o.Bool("fatal", false),
		FailSetup: o.Bool("fail_setup", false),
		FailRead:  o.Bool("fail_read", false),
	}
}

func (c Config) FillData(o jsondoc.Object) {
	o.Set("name", c.Name)
	o.Set("quantity", c.Quantity)
	o.Set("unit", c.Unit)
	o.Set("type", c.Type.String())
	o.Set("value", c.Value)
	o.Set("text", c.Text)
	o.Set("precision", c.Precision)
	o.Set("status", c.Status)
	o.Set("fatal", c.Fatal)
	o.Set("fail_setup", c.FailSetup)
	o.Set("fail_read", c.FailRead)
}
func (c Config) ExpectedCapacity() int { return 11 }

func Register(f *factory.Factory, env devices.Env) {
	f.Register(Class, func(frag jsondoc.Object) factory.Result {
		return f.SensorFactory(New(ConfigFrom(frag), env), frag)
	})
}

type Sensor struct {
	model.SensorBase
	env   devices.Env
	cfg   Config
	md    *model.MetaData
	reads int
}

func New(cfg Config, env devices.Env) *Sensor {
	s := &Sensor{env: env}
	s.InitSensor(s, cfg.Name, Class)
	s.md = s.AddMetaData(cfg.Quantity, cfg.Unit, cfg.Type)
	s.apply(cfg)
	return s
}

func (s *Sensor) apply(cfg Config) {
	cfg.Name = s.Name()
	cfg.Quantity = s.md.Name()
	s.cfg = cfg
	s.md.Unit = cfg.Unit
	s.md.Precision = cfg.Precision
}

// Setup fails when configured to; otherwise it installs the configured
// status.
func (s *Sensor) Setup() bool {
	if s.cfg.FailSetup {
		s.SetStatus("setup failed", true)
		return false
	}
	s.SetStatus(s.cfg.Status, s.cfg.Fatal)
	return true
}

func (s *Sensor) Read() []model.MeasurementBundle {
	s.reads++
	var m model.Measurement
	switch {
	case s.cfg.FailRead:
		m = s.md.Failure(s.cfg.Text)
	case s.md.Type == model.TypeInt:
		m = s.md.Int(mathx.RoundInt32(s.cfg.Value))
	case s.md.Type == model.TypeString:
		m = s.md.Text(s.cfg.Text)
	default:
		m = s.md.Float(s.cfg.Value)
	}
	return []model.MeasurementBundle{model.NewBundle(s.env.Clock, s, m)}
}

// Reads counts Read calls.
func (s *Sensor) Reads() int { return s.reads }

func (s *Sensor) Config() model.Configuration { return s.cfg }

// Reconfigure changes value, status and failure switches. The name, the
// quantity and its type are fixed.
func (s *Sensor) Reconfigure(c model.Configuration) bool {
	nc, ok := c.(Config)
	if !ok || nc.Type != s.md.Type {
		return false
	}
	s.apply(nc)
	return true
}
