// Package model holds the object tree of a monitoring node: hardware root,
// sensor groups, sensors, communicators and measurement metadata, plus the
// visitor protocol used to walk it.
package model

import (
	"io"

	"sensornode-go/bus"
)

const (
	// StatusItem is the name of every object's own status descriptor.
	StatusItem = "Status"
	// StatusOK is the status message of a healthy object.
	StatusOK = "OK"
	// NameSep is the default separator for qualified names.
	NameSep = "."
)

// Custom field bits carried by events the node publishes itself.
const (
	FieldReading uint8 = 1 << 0
	FieldStatus  uint8 = 1 << 1
	FieldFatal   uint8 = 1 << 2
)

// Object is implemented by every node of the tree.
type Object interface {
	Name() string
	ClassName() string
	SetClassName(string)
	Parent() Object
	SetParent(Object)
	QualifiedName(sep string) string
	SourceType() bus.SourceType

	// Status reports the object's own status; objects without a status
	// descriptor report NO_DATA.
	Status() Measurement
	SetStatus(msg string, fatal bool)

	Accept(Visitor)
	Config() Configuration
	Reconfigure(Configuration) bool
}

// Clock supplies bundle timestamps.
type Clock interface {
	EpochMillis() uint64
}

// Base carries the state shared by every object. Concrete types embed it
// and call Init from their constructor.
type Base struct {
	self      Object
	name      string
	class     string
	parent    Object
	statusMsg string
	fatal     bool
	status    *MetaData
}

// Init wires the embedding object. withStatus gives the object its own
// status descriptor.
func (b *Base) Init(self Object, name string, withStatus bool) {
	b.self = self
	b.name = name
	b.statusMsg = StatusOK
	if withStatus {
		b.status = newMetaData(StatusItem, "", TypeStatus)
		b.status.SetParent(self)
	}
}

func (b *Base) Name() string          { return b.name }
func (b *Base) ClassName() string     { return b.class }
func (b *Base) SetClassName(c string) { b.class = c }
func (b *Base) Parent() Object        { return b.parent }
func (b *Base) SetParent(p Object)    { b.parent = p }

// StatusMetaData is the object's status descriptor, nil when it has none.
func (b *Base) StatusMetaData() *MetaData { return b.status }

func (b *Base) QualifiedName(sep string) string {
	if b.parent != nil {
		return b.parent.QualifiedName(sep) + sep + b.name
	}
	return b.name
}

func (b *Base) SetStatus(msg string, fatal bool) {
	b.statusMsg = msg
	b.fatal = fatal
}

func (b *Base) Status() Measurement {
	if b.status == nil {
		return noData
	}
	return b.status.StatusOf(b.statusMsg, b.fatal)
}

func (b *Base) SourceType() bus.SourceType { return bus.SourceOther }

// Reconfigure is refused unless the concrete type supports it.
func (b *Base) Reconfigure(Configuration) bool { return false }

// acceptStatus visits the status descriptor, if any.
func (b *Base) acceptStatus(v Visitor) {
	if b.status != nil {
		b.status.Accept(v)
	}
}

// Release closes o if it holds resources. Containers close their children.
func Release(o Object) error {
	if c, ok := o.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
