// event.go
package bus

import (
	"hash/fnv"
	"strconv"
)

// -----------------------------------------------------------------------------
// Event dimensions
// -----------------------------------------------------------------------------

// SourceType is the kind of object that emitted an event.
type SourceType uint8

const (
	SourceSensor SourceType = iota
	SourceActuator
	SourceCommunicator
	SourceFilter
	SourceHardware
	SourceOther

	SourceUndefined SourceType = 255
)

var sourceNames = [...]string{"sensor", "actuator", "communicator", "filter", "hardware", "other"}

func (s SourceType) String() string {
	if int(s) < len(sourceNames) {
		return sourceNames[s]
	}
	return "undefined"
}

// EventType selects the bucket an event is routed through.
type EventType uint8

const (
	EventStatusUpdate EventType = iota
	EventMeasurement
	EventRequest
	EventRequestResponse
	EventLogging
	EventData
	EventEvent
	EventLifecycle

	EventUndefined EventType = 255
)

// NumEventTypes is the number of routable event kinds (one bucket each).
const NumEventTypes = 8

var eventNames = [...]string{"status", "measurement", "request", "response", "logging", "data", "event", "lifecycle"}

func (e EventType) String() string {
	if int(e) < len(eventNames) {
		return eventNames[e]
	}
	return "undefined"
}

// DataType describes the payload. The top bit marks a collection.
type DataType uint8

const (
	DataUndefined DataType = iota
	DataInt
	DataFloat
	DataString
	DataMeasurement
	DataMeasurementBundle
	DataConfiguration

	DataOther  DataType = 127
	DataVector DataType = 128
)

var dataNames = [...]string{"undefined", "int", "float", "string", "measurement", "bundle", "configuration"}

func (d DataType) IsVector() bool { return d&DataVector != 0 }

func (d DataType) String() string {
	base := d &^ DataVector
	var s string
	switch {
	case int(base) < len(dataNames):
		s = dataNames[base]
	case base == DataOther:
		s = "other"
	default:
		s = strconv.Itoa(int(base))
	}
	if d.IsVector() {
		return "[]" + s
	}
	return s
}

// HashName returns the 32-bit name hash used for subscriptions.
// 0 is reserved as the wildcard, so it is never returned.
func HashName(name string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	if v := h.Sum32(); v != 0 {
		return v
	}
	return 1
}

// -----------------------------------------------------------------------------
// Event
// -----------------------------------------------------------------------------

type Event struct {
	Source       SourceType
	Type         EventType
	Data         DataType
	CustomFields uint8
	NameHash     uint32
	Payload      any
}

func (e Event) String() string {
	return "event{src=" + e.Source.String() +
		" type=" + e.Type.String() +
		" data=" + e.Data.String() +
		" custom=0x" + strconv.FormatUint(uint64(e.CustomFields), 16) +
		" hash=0x" + strconv.FormatUint(uint64(e.NameHash), 16) + "}"
}

// EventBuilder is an immutable builder; every setter returns a new value.
type EventBuilder struct {
	ev Event
}

// NewEvent starts a builder for the given source kind.
func NewEvent(src SourceType) EventBuilder {
	return EventBuilder{ev: Event{Source: src, Type: EventUndefined, Data: DataUndefined}}
}

func (b EventBuilder) Source(s SourceType) EventBuilder { b.ev.Source = s; return b }
func (b EventBuilder) Type(t EventType) EventBuilder    { b.ev.Type = t; return b }
func (b EventBuilder) Data(d DataType) EventBuilder     { b.ev.Data = d; return b }
func (b EventBuilder) CustomField(f uint8) EventBuilder { b.ev.CustomFields = f; return b }
func (b EventBuilder) Hash(h uint32) EventBuilder       { b.ev.NameHash = h; return b }
func (b EventBuilder) Name(n string) EventBuilder       { b.ev.NameHash = HashName(n); return b }

// Build returns the event with payload attached. It fails when source, type
// or data kind is undefined, or when no name hash has been set.
func (b EventBuilder) Build(payload any) (Event, bool) {
	ev := b.ev
	if ev.Source == SourceUndefined || ev.Type == EventUndefined || ev.Data == DataUndefined || ev.NameHash == 0 {
		return Event{}, false
	}
	ev.Payload = payload
	return ev, true
}
