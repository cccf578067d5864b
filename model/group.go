package model

import "errors"

// SensorGroup is a named, ordered collection of sensors.
type SensorGroup struct {
	Base
	sensors   []Sensor
	isDefault bool
}

// NewSensorGroup creates an empty group. Groups carry no status of their own.
func NewSensorGroup(cfg GroupConfig) *SensorGroup {
	g := &SensorGroup{}
	g.Init(g, cfg.Name, false)
	g.SetClassName("group")
	return g
}

func (g *SensorGroup) AddSensor(s Sensor) {
	s.SetParent(g)
	g.sensors = append(g.sensors, s)
}

func (g *SensorGroup) Sensors() []Sensor { return g.sensors }
func (g *SensorGroup) IsDefault() bool   { return g.isDefault }

func (g *SensorGroup) Accept(v Visitor) {
	v.EnterGroup(g)
	for _, s := range g.sensors {
		s.Accept(v)
	}
	v.LeaveGroup(g)
}

func (g *SensorGroup) Config() Configuration { return GroupConfig{Name: g.Name()} }

// Reconfigure renames the group. The default group keeps its name.
func (g *SensorGroup) Reconfigure(c Configuration) bool {
	gc, ok := c.(GroupConfig)
	if !ok || g.isDefault {
		return false
	}
	g.name = gc.Name
	return true
}

// Close releases every sensor that holds resources.
func (g *SensorGroup) Close() error {
	var errs []error
	for _, s := range g.sensors {
		if err := Release(s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// takeSensors moves the group's sensors out, leaving it empty.
func (g *SensorGroup) takeSensors() []Sensor {
	s := g.sensors
	g.sensors = nil
	return s
}
