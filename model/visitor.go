package model

// Visitor walks the object tree. Containers call Enter/Leave around their
// children; communicators and metadata get a single Visit.
type Visitor interface {
	EnterHardware(*Hardware)
	LeaveHardware(*Hardware)
	EnterGroup(*SensorGroup)
	LeaveGroup(*SensorGroup)
	EnterSensor(Sensor)
	LeaveSensor(Sensor)
	VisitCommunicator(Communicator)
	VisitMetaData(*MetaData)
}

// NopVisitor ignores everything. Embed it and override what you need.
type NopVisitor struct{}

func (NopVisitor) EnterHardware(*Hardware)        {}
func (NopVisitor) LeaveHardware(*Hardware)        {}
func (NopVisitor) EnterGroup(*SensorGroup)        {}
func (NopVisitor) LeaveGroup(*SensorGroup)        {}
func (NopVisitor) EnterSensor(Sensor)             {}
func (NopVisitor) LeaveSensor(Sensor)             {}
func (NopVisitor) VisitCommunicator(Communicator) {}
func (NopVisitor) VisitMetaData(*MetaData)        {}
