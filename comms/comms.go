// Package comms holds what the communicator classes share: their
// environment and the generic rendering of readings and statuses.
package comms

import (
	"log/slog"

	"sensornode-go/model"
)

// Env is what communicator classes get from the firmware around them.
type Env struct {
	Logger *slog.Logger
}

func (e Env) Log() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// Message kinds.
const (
	KindReading = "reading"
	KindStatus  = "status"
)

// Value is one rendered measurement.
type Value struct {
	Name  string `json:"name"`
	Unit  string `json:"unit,omitempty"`
	State string `json:"state"`
	Text  string `json:"text"`
}

// Message is the generic rendering of a bundle or a status push.
type Message struct {
	Kind      string  `json:"kind"`
	Source    string  `json:"source"`
	Class     string  `json:"class,omitempty"`
	Timestamp uint64  `json:"ts,omitempty"`
	Values    []Value `json:"values"`
}

func ValueOf(m model.Measurement) Value {
	v := Value{State: m.State().String(), Text: m.Text()}
	if md := m.MetaData(); md != nil {
		v.Name = md.Name()
		v.Unit = md.Unit
	}
	return v
}

func sourceOf(o model.Object) (string, string) {
	if o == nil {
		return "", ""
	}
	return o.QualifiedName(model.NameSep), o.ClassName()
}

// Reading renders a bundle.
func Reading(b model.MeasurementBundle) Message {
	msg := Message{Kind: KindReading, Timestamp: b.Timestamp(), Values: make([]Value, 0, b.Len())}
	msg.Source, msg.Class = sourceOf(b.Src())
	for i := 0; i < b.Len(); i++ {
		msg.Values = append(msg.Values, ValueOf(b.At(i)))
	}
	return msg
}

// Status renders a status push from src.
func Status(status model.Measurement, src model.Object) Message {
	msg := Message{Kind: KindStatus, Values: []Value{ValueOf(status)}}
	msg.Source, msg.Class = sourceOf(src)
	return msg
}

// LogAttrs flattens the values of msg for structured logging.
func (m Message) LogAttrs() []any {
	out := make([]any, 0, 2+2*len(m.Values))
	out = append(out, "source", m.Source)
	for _, v := range m.Values {
		text := v.Text
		if v.Unit != "" && v.State == model.Valid.String() {
			text += " " + v.Unit
		}
		out = append(out, v.Name, text)
	}
	return out
}
