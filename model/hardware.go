package model

import (
	"errors"

	"sensornode-go/bus"
)

// Hardware is the root of the tree. It owns the sensor groups, the first of
// which is always the default group, and the communicators.
type Hardware struct {
	Base
	groups []*SensorGroup
	comms  []Communicator
}

func NewHardware(cfg HardwareConfig) *Hardware {
	h := &Hardware{}
	h.Init(h, cfg.Name, true)
	h.SetClassName("hw")
	def := NewSensorGroup(GroupConfig{Name: DefaultGroupName})
	def.isDefault = true
	def.SetParent(h)
	h.groups = []*SensorGroup{def}
	return h
}

func (h *Hardware) SourceType() bus.SourceType { return bus.SourceHardware }

func (h *Hardware) DefaultGroup() *SensorGroup    { return h.groups[0] }
func (h *Hardware) Groups() []*SensorGroup        { return h.groups }
func (h *Hardware) Communicators() []Communicator { return h.comms }

// AddSensor puts s into the default group.
func (h *Hardware) AddSensor(s Sensor) { h.groups[0].AddSensor(s) }

// AddSensorGroup appends g. A group named like the default group is merged
// into it instead.
func (h *Hardware) AddSensorGroup(g *SensorGroup) {
	if g.Name() == DefaultGroupName {
		for _, s := range g.takeSensors() {
			h.groups[0].AddSensor(s)
		}
		return
	}
	g.SetParent(h)
	h.groups = append(h.groups, g)
}

func (h *Hardware) AddCommunicator(c Communicator) {
	c.SetParent(h)
	h.comms = append(h.comms, c)
}

// Sensors lists every sensor in group order.
func (h *Hardware) Sensors() []Sensor {
	var out []Sensor
	for _, g := range h.groups {
		out = append(out, g.sensors...)
	}
	return out
}

// PublishStatus pushes status to every communicator.
func (h *Hardware) PublishStatus(status Measurement, src Object) {
	for _, c := range h.comms {
		c.NewStatus(status, src)
	}
}

// Accept visits communicators before groups.
func (h *Hardware) Accept(v Visitor) {
	v.EnterHardware(h)
	h.acceptStatus(v)
	for _, c := range h.comms {
		c.Accept(v)
	}
	for _, g := range h.groups {
		g.Accept(v)
	}
	v.LeaveHardware(h)
}

func (h *Hardware) Config() Configuration { return HardwareConfig{Name: h.Name()} }

func (h *Hardware) Reconfigure(c Configuration) bool {
	hc, ok := c.(HardwareConfig)
	if !ok {
		return false
	}
	h.name = hc.Name
	return true
}

// Close releases every group and communicator.
func (h *Hardware) Close() error {
	var errs []error
	for _, c := range h.comms {
		if err := Release(c); err != nil {
			errs = append(errs, err)
		}
	}
	for _, g := range h.groups {
		if err := g.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
