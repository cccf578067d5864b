package model

import (
	"sensornode-go/bus"
	"sensornode-go/x/strconvx"
)

// DataType is the logical type of a measured quantity.
type DataType uint8

const (
	TypeInt DataType = iota
	TypeFloat
	TypeString
	TypeStatus
)

func (t DataType) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	case TypeStatus:
		return "status"
	}
	return "unknown"
}

// DefaultPrecision is the number of fractional digits for float readings.
// Renderings clamp Precision to [0, MaxPrecision].
const (
	DefaultPrecision = 1
	MaxPrecision     = strconvx.MaxPrec
)

// MetaData describes one measurable quantity and makes Measurements of it.
type MetaData struct {
	Base
	Unit      string
	Type      DataType
	Precision int
}

func newMetaData(name, unit string, t DataType) *MetaData {
	md := &MetaData{Unit: unit, Type: t, Precision: DefaultPrecision}
	md.Base.Init(md, name, false)
	return md
}

// NewMetaData creates a detached descriptor.
func NewMetaData(name, unit string, t DataType) *MetaData {
	return newMetaData(name, unit, t)
}

func (md *MetaData) Accept(v Visitor)      { v.VisitMetaData(md) }
func (md *MetaData) Config() Configuration { return nil }

// SourceType is the kind of the owning object.
func (md *MetaData) SourceType() bus.SourceType {
	if p := md.Parent(); p != nil {
		return p.SourceType()
	}
	return bus.SourceOther
}

// IsStatus reports whether this is an object's status descriptor.
func (md *MetaData) IsStatus() bool { return md.Type == TypeStatus }

func (md *MetaData) Float(v float64) Measurement {
	return newMeasurement(md, Valid, FloatValue(v))
}

func (md *MetaData) Int(v int32) Measurement {
	return newMeasurement(md, Valid, IntValue(v))
}

func (md *MetaData) Text(v string) Measurement {
	return newMeasurement(md, Valid, TextValue(v))
}

// StatusOf is a text measurement in state ERROR when fatal is set.
func (md *MetaData) StatusOf(msg string, fatal bool) Measurement {
	st := Valid
	if fatal {
		st = Error
	}
	return newMeasurement(md, st, TextValue(msg))
}

func (md *MetaData) NoData() Measurement { return newMeasurement(md, NoData, nil) }

// Failure is an ERROR measurement; msg may be empty.
func (md *MetaData) Failure(msg string) Measurement {
	if msg == "" {
		return newMeasurement(md, Error, nil)
	}
	return newMeasurement(md, Error, TextValue(msg))
}

func (md *MetaData) eventKind() (bus.EventType, uint8) {
	if md.IsStatus() {
		return bus.EventStatusUpdate, FieldStatus
	}
	return bus.EventMeasurement, FieldReading
}

// EventBuilder returns a builder for events carrying measurements of md.
func (md *MetaData) EventBuilder() bus.EventBuilder {
	et, field := md.eventKind()
	return bus.NewEvent(md.SourceType()).
		Type(et).
		Data(bus.DataMeasurement).
		CustomField(field).
		Name(md.QualifiedName(NameSep))
}

// SubscriberBuilder returns a builder matching the events of EventBuilder.
// Status subscribers also see fatal statuses.
func (md *MetaData) SubscriberBuilder() bus.SubscriberBuilder {
	et, field := md.eventKind()
	b := bus.Empty().
		SetSource(md.SourceType()).
		SetEvent(et).
		SetDataType(bus.DataMeasurement).
		SetName(md.QualifiedName(NameSep))
	if md.IsStatus() {
		return b.SetCustomFieldMask(field | FieldFatal)
	}
	return b.SetCustomFieldMask(field)
}
