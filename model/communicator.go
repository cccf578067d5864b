package model

import "sensornode-go/bus"

// Communicator is a push target for readings and statuses.
type Communicator interface {
	Object
	Setup() error
	// Loop runs once per node tick.
	Loop()
	NewReading(MeasurementBundle)
	NewStatus(status Measurement, src Object)
	NetworkConnected()
	NetworkDisconnected()
	IsConnected() bool
}

// CommunicatorBase implements the optional half of Communicator.
type CommunicatorBase struct {
	Base
	connected bool
}

// InitCommunicator wires the embedding communicator and gives it a status
// descriptor.
func (c *CommunicatorBase) InitCommunicator(self Communicator, name, class string) {
	c.Base.Init(self, name, true)
	c.SetClassName(class)
}

func (c *CommunicatorBase) Setup() error               { return nil }
func (c *CommunicatorBase) Loop()                      {}
func (c *CommunicatorBase) NetworkConnected()          { c.connected = true }
func (c *CommunicatorBase) NetworkDisconnected()       { c.connected = false }
func (c *CommunicatorBase) IsConnected() bool          { return c.connected }
func (c *CommunicatorBase) SourceType() bus.SourceType { return bus.SourceCommunicator }

func (c *CommunicatorBase) Accept(v Visitor) {
	v.VisitCommunicator(c.self.(Communicator))
	c.acceptStatus(v)
}
