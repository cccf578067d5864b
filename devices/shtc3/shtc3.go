// Package shtc3dev is the "shtc3" sensor class.
package shtc3dev

import (
	"time"

	"sensornode-go/devices"
	"sensornode-go/errcode"
	"sensornode-go/factory"
	"sensornode-go/model"
	"sensornode-go/x/jsondoc"
	"sensornode-go/x/mathx"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/shtc3"
)

const Class = "shtc3"

// Config selects the bus; the SHTC3 address is fixed.
type Config struct {
	Name string
	Bus  string
}

func ConfigFrom(o jsondoc.Object) Config {
	return Config{
		Name: o.NonEmpty("name", Class),
		Bus:  o.NonEmpty("bus", "i2c0"),
	}
}

func (c Config) FillData(o jsondoc.Object) {
	o.Set("name", c.Name)
	o.Set("bus", c.Bus)
}
func (c Config) ExpectedCapacity() int { return 2 }

func Register(f *factory.Factory, env devices.Env) {
	f.Register(Class, func(frag jsondoc.Object) factory.Result {
		return f.SensorFactory(New(ConfigFrom(frag), env), frag)
	})
}

type Sensor struct {
	model.SensorBase
	env   devices.Env
	cfg   Config
	bus   drivers.I2C
	drv   shtc3.Device
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
	const op = "shtc3.setup"
	bus, err := s.env.I2C(op, s.cfg.Bus)
	if err != nil {
		s.SetStatus(err.Error(), true)
		return false
	}
	s.bus = bus
	if err := s.wake(); err != nil {
		s.SetStatus(errcode.Wrap(errcode.SetupFailed, op, err).Error(), true)
		return false
	}
	s.drv = shtc3.New(bus)
	_ = s.drv.Sleep()
	s.ready = true
	s.SetStatus(model.StatusOK, false)
	return true
}

func (s *Sensor) Stop() bool {
	if s.ready {
		_ = s.drv.Sleep()
	}
	s.ready = false
	return true
}

func (s *Sensor) Read() []model.MeasurementBundle {
	if !s.ready {
		return []model.MeasurementBundle{s.failed(string(errcode.SetupFailed))}
	}
	if err := s.wake(); err != nil {
		return []model.MeasurementBundle{s.failed(s.readErr(err))}
	}
	milliC, rhx100, err := s.drv.ReadTemperatureHumidity()
	_ = s.drv.Sleep()
	if err != nil {
		return []model.MeasurementBundle{s.failed(s.readErr(err))}
	}
	s.SetStatus(model.StatusOK, false)
	t := mathx.Clamp(float64(milliC)/1000, -40, 125)
	h := mathx.Clamp(float64(rhx100)/100, 0, 100)
	return []model.MeasurementBundle{model.NewBundle(s.env.Clock, s, s.temp.Float(t), s.hum.Float(h))}
}

// wake sends the wake-up command itself; the driver drops bus errors.
func (s *Sensor) wake() error {
	err := s.bus.Tx(shtc3.SHTC3_ADDRESS, []byte(shtc3.SHTC3_CMD_WAKEUP), nil)
	time.Sleep(time.Millisecond)
	return err
}

func (s *Sensor) readErr(err error) string {
	code := string(errcode.MapDriverErr(err))
	s.SetStatus(code, false)
	s.env.Log().Warn("read failed", "object", s.QualifiedName(model.NameSep), "err", err)
	return code
}

func (s *Sensor) failed(msg string) model.MeasurementBundle {
	return model.NewBundle(s.env.Clock, s, s.temp.Failure(msg), s.hum.Failure(msg))
}

func (s *Sensor) Config() model.Configuration { return s.cfg }

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
