package model

import "sensornode-go/bus"

// Sensor produces measurement bundles.
type Sensor interface {
	Object
	// Setup prepares the device. A false return is fatal for the node.
	Setup() bool
	Stop() bool
	Read() []MeasurementBundle
	MetaData() []*MetaData
}

// SensorBase implements the bookkeeping half of Sensor.
type SensorBase struct {
	Base
	meta []*MetaData
}

// InitSensor wires the embedding sensor and gives it a status descriptor.
func (s *SensorBase) InitSensor(self Sensor, name, class string) {
	s.Base.Init(self, name, true)
	s.SetClassName(class)
}

// AddMetaData registers a quantity reported by this sensor.
func (s *SensorBase) AddMetaData(name, unit string, t DataType) *MetaData {
	md := newMetaData(name, unit, t)
	md.SetParent(s.self)
	s.meta = append(s.meta, md)
	return md
}

func (s *SensorBase) MetaData() []*MetaData      { return s.meta }
func (s *SensorBase) SourceType() bus.SourceType { return bus.SourceSensor }
func (s *SensorBase) Stop() bool                 { return true }

func (s *SensorBase) Accept(v Visitor) {
	self := s.self.(Sensor)
	v.EnterSensor(self)
	s.acceptStatus(v)
	for _, md := range s.meta {
		md.Accept(v)
	}
	v.LeaveSensor(self)
}
