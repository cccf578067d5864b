// Package aht20dev is the "aht20" sensor class: temperature and relative
// humidity from an AHT20 on an I2C bus.
package aht20dev

import (
	"sensornode-go/devices"
	"sensornode-go/errcode"
	"sensornode-go/factory"
	"sensornode-go/model"
	"sensornode-go/x/jsondoc"
	"sensornode-go/x/mathx"

	"tinygo.org/x/drivers/aht20"
)

const Class = "aht20"

type Config struct {
	Name string
	Bus  string // e.g. "i2c0"
	Addr uint16 // defaults to aht20.Address (0x38)
}

func ConfigFrom(o jsondoc.Object) Config {
	return Config{
		Name: o.NonEmpty("name", Class),
		Bus:  o.NonEmpty("bus", "i2c0"),
		Addr: devices.ParseAddr(o.Int("addr", 0), aht20.Address),
	}
}

func (c Config) FillData(o jsondoc.Object) {
	o.Set("name", c.Name)
	o.Set("bus", c.Bus)
	o.Set("addr", int64(c.Addr))
}
func (c Config) ExpectedCapacity() int { return 3 }

// Register installs the class on f.
func Register(f *factory.Factory, env devices.Env) {
	f.Register(Class, func(frag jsondoc.Object) factory.Result {
		return f.SensorFactory(New(ConfigFrom(frag), env), frag)
	})
}

type Sensor struct {
	model.SensorBase
	env   devices.Env
	cfg   Config
	drv   aht20.Device
	ready bool

	temp *model.MetaData
	hum  *model.MetaData
}

func New(cfg Config, env devices.Env) *Sensor {
	s := &Sensor{env: env, cfg: cfg}
	s.InitSensor(s, cfg.Name, Class)
	s.temp = s.AddMetaData("Temperature", "C", model.TypeFloat)
	s.hum = s.AddMetaData("Humidity", "%", model.TypeFloat)
	return s
}

func (s *Sensor) Setup() bool {
	const op = "aht20.setup"
	bus, err := s.env.I2C(op, s.cfg.Bus)
	if err != nil {
		s.SetStatus(err.Error(), true)
		return false
	}
	// The driver swallows bus errors on configure; probe first.
	st := []byte{0}
	if err := bus.Tx(s.cfg.Addr, []byte{aht20.CMD_STATUS}, st); err != nil {
		s.SetStatus(errcode.Wrap(errcode.SetupFailed, op, err).Error(), true)
		return false
	}
	s.drv = aht20.New(bus)
	s.drv.Address = s.cfg.Addr
	s.drv.Configure()
	s.ready = true
	s.SetStatus(model.StatusOK, false)
	s.env.Log().Debug("sensor ready", "object", s.QualifiedName(model.NameSep), "bus", s.cfg.Bus, "addr", s.cfg.Addr)
	return true
}

func (s *Sensor) Stop() bool {
	s.ready = false
	return true
}

func (s *Sensor) Read() []model.MeasurementBundle {
	if !s.ready {
		return []model.MeasurementBundle{s.failed(string(errcode.SetupFailed))}
	}
	if err := s.drv.Read(); err != nil {
		code := string(errcode.MapDriverErr(err))
		s.SetStatus(code, false)
		return []model.MeasurementBundle{s.failed(code)}
	}
	s.SetStatus(model.StatusOK, false)
	t := mathx.Clamp(float64(s.drv.Celsius()), -40, 85)
	h := mathx.Clamp(float64(s.drv.RelHumidity()), 0, 100)
	return []model.MeasurementBundle{model.NewBundle(s.env.Clock, s, s.temp.Float(t), s.hum.Float(h))}
}

func (s *Sensor) failed(msg string) model.MeasurementBundle {
	return model.NewBundle(s.env.Clock, s, s.temp.Failure(msg), s.hum.Failure(msg))
}

func (s *Sensor) Config() model.Configuration { return s.cfg }

// Reconfigure moves the sensor to another bus or address. The name is
// fixed; the change takes effect at the next Setup.
func (s *Sensor) Reconfigure(c model.Configuration) bool {
	nc, ok := c.(Config)
	if !ok || (nc.Name != "" && nc.Name != s.Name()) {
		return false
	}
	nc.Name = s.Name()
	s.cfg = nc
	s.ready = false
	return true
}
