package model

import (
	"slices"
	"time"

	"sensornode-go/x/mathx"
	"sensornode-go/x/strconvx"
)

// State of a measurement.
type State uint8

const (
	Valid State = iota
	NoData
	Error
)

func (s State) String() string {
	switch s {
	case Valid:
		return "valid"
	case NoData:
		return "no_data"
	default:
		return "error"
	}
}

const (
	noDataText = "<NO_DATA>"
	errorText  = "<ERROR>"
)

// Value is the payload of a measurement. The concrete type is fixed by the
// metadata type: IntValue, FloatValue or TextValue.
type Value interface{ isValue() }

type (
	IntValue   int32
	FloatValue float64
	TextValue  string
)

func (IntValue) isValue()   {}
func (FloatValue) isValue() {}
func (TextValue) isValue()  {}

// Measurement is one immutable reading of a quantity.
type Measurement struct {
	meta  *MetaData
	state State
	value Value
	text  string
}

var noData = Measurement{state: NoData, text: noDataText}

func newMeasurement(md *MetaData, st State, v Value) Measurement {
	m := Measurement{meta: md, state: st, value: v}
	m.text = m.render()
	return m
}

func (m Measurement) render() string {
	if m.state == NoData {
		return noDataText
	}
	switch v := m.value.(type) {
	case IntValue:
		return strconvx.Itoa(int(v))
	case FloatValue:
		prec := DefaultPrecision
		if m.meta != nil {
			prec = m.meta.Precision
		}
		return strconvx.FormatFixed(float64(v), prec)
	case TextValue:
		return string(v)
	}
	return errorText
}

func (m Measurement) MetaData() *MetaData { return m.meta }
func (m Measurement) State() State        { return m.state }
func (m Measurement) Value() Value        { return m.value }
func (m Measurement) IsValid() bool       { return m.state == Valid }

// Text is the precomputed transmit representation.
func (m Measurement) Text() string { return m.text }

// Int reads the value as an integer. Floats are rounded half away from zero
// and saturate to the int32 range; text is parsed as base 10. Anything that
// is not a valid reading yields 0.
func (m Measurement) Int() int32 {
	if m.state != Valid {
		return 0
	}
	switch v := m.value.(type) {
	case IntValue:
		return int32(v)
	case FloatValue:
		return mathx.RoundInt32(float64(v))
	case TextValue:
		if f, err := strconvx.ParseFloat(string(v)); err == nil {
			return mathx.RoundInt32(f)
		}
	}
	return 0
}

// Float reads the value as a float; unparsable text yields 0.
func (m Measurement) Float() float64 {
	if m.state != Valid {
		return 0
	}
	switch v := m.value.(type) {
	case IntValue:
		return float64(v)
	case FloatValue:
		return float64(v)
	case TextValue:
		if f, err := strconvx.ParseFloat(string(v)); err == nil {
			return f
		}
	}
	return 0
}

// String renders "name=value unit" for logs.
func (m Measurement) String() string {
	if m.meta == nil {
		return m.text
	}
	s := m.meta.Name() + "=" + m.text
	if m.meta.Unit != "" && m.state == Valid {
		s += " " + m.meta.Unit
	}
	return s
}

// MeasurementBundle is an immutable timestamped set of measurements from
// one source.
type MeasurementBundle struct {
	timestamp uint64
	data      []Measurement
	src       Object
}

// NewBundle stamps the measurements with clock's epoch time, or the host
// wall clock when clock is nil.
func NewBundle(clock Clock, src Object, ms ...Measurement) MeasurementBundle {
	var ts uint64
	if clock != nil {
		ts = clock.EpochMillis()
	} else {
		ts = uint64(time.Now().UnixMilli())
	}
	return MeasurementBundle{timestamp: ts, data: slices.Clone(ms), src: src}
}

func (b MeasurementBundle) Timestamp() uint64 { return b.timestamp }
func (b MeasurementBundle) Src() Object       { return b.src }
func (b MeasurementBundle) Len() int          { return len(b.data) }
func (b MeasurementBundle) At(i int) Measurement {
	return b.data[i]
}

// Measurements returns a copy of the bundle's contents.
func (b MeasurementBundle) Measurements() []Measurement { return slices.Clone(b.data) }
