// subscriber.go
package bus

import "strconv"

// Wildcard masks.
const (
	AllSources      uint8  = 0xFF
	AllEvents       uint8  = 0xFF
	AllData         uint8  = 0
	AllCustomFields uint16 = 0xFF00
	AllHashes       uint32 = 0
)

// anyFieldThreshold splits the custom field mask into its two modes:
// values below it require an exact match, values at or above it carry an
// any-bit-set mask in the high byte.
const anyFieldThreshold = 256

// Handler receives matching events.
type Handler func(Event)

// Subscriber is a five-dimension filter plus a delivery callback. The bus only
// keeps a weak reference; the subscriber stays registered as long as the
// caller keeps it alive.
type Subscriber struct {
	SourceMask       uint8
	EventMask        uint8
	DataTypeMask     uint8
	CustomFieldsMask uint16
	NameHashMask     uint32

	handler Handler
}

// Matches applies all five tests.
func (s *Subscriber) Matches(ev Event) bool {
	if uint8(ev.Source) >= 8 || (1<<ev.Source)&s.SourceMask == 0 {
		return false
	}
	if uint8(ev.Type) >= 8 || (1<<ev.Type)&s.EventMask == 0 {
		return false
	}
	if uint8(ev.Data)|s.DataTypeMask != uint8(ev.Data) {
		return false
	}
	if s.CustomFieldsMask < anyFieldThreshold {
		if uint16(ev.CustomFields) != s.CustomFieldsMask {
			return false
		}
	} else if uint16(ev.CustomFields)&(s.CustomFieldsMask>>8) == 0 {
		return false
	}
	if s.NameHashMask != 0 && ev.NameHash != s.NameHashMask {
		return false
	}
	return true
}

func (s *Subscriber) deliver(ev Event) { s.handler(ev) }

func (s *Subscriber) String() string {
	return "sub{src=0x" + strconv.FormatUint(uint64(s.SourceMask), 16) +
		" evt=0x" + strconv.FormatUint(uint64(s.EventMask), 16) +
		" data=0x" + strconv.FormatUint(uint64(s.DataTypeMask), 16) +
		" custom=0x" + strconv.FormatUint(uint64(s.CustomFieldsMask), 16) +
		" hash=0x" + strconv.FormatUint(uint64(s.NameHashMask), 16) + "}"
}

// -----------------------------------------------------------------------------
// SubscriberBuilder
// -----------------------------------------------------------------------------

// SubscriberBuilder is an immutable builder; every setter returns a new value.
type SubscriberBuilder struct {
	src    uint8
	evt    uint8
	data   uint8
	custom uint16
	hash   uint32
}

// Empty matches nothing until sources and events are added. Its custom field
// mask is exact zero, so it only sees events built without a custom field
// unless a field mask is set.
func Empty() SubscriberBuilder {
	return SubscriberBuilder{}
}

// Everything matches every well-formed event.
func Everything() SubscriberBuilder {
	return SubscriberBuilder{src: AllSources, evt: AllEvents, data: AllData, custom: AllCustomFields, hash: AllHashes}
}

// ForEvent matches exactly the events that look like ev.
func ForEvent(ev Event) SubscriberBuilder {
	return Empty().
		SetSource(ev.Source).
		SetEvent(ev.Type).
		SetDataType(ev.Data).
		SetExactCustomField(ev.CustomFields).
		SetHashedName(ev.NameHash)
}

func bit(v uint8) uint8 {
	if v >= 8 {
		return 0
	}
	return 1 << v
}

func (b SubscriberBuilder) AllSources() SubscriberBuilder { b.src = AllSources; return b }
func (b SubscriberBuilder) SetSource(s SourceType) SubscriberBuilder {
	b.src = bit(uint8(s))
	return b
}
func (b SubscriberBuilder) AddSource(s SourceType) SubscriberBuilder {
	b.src |= bit(uint8(s))
	return b
}
func (b SubscriberBuilder) ExcludeSource(s SourceType) SubscriberBuilder {
	b.src &^= bit(uint8(s))
	return b
}

func (b SubscriberBuilder) AllEvents() SubscriberBuilder { b.evt = AllEvents; return b }
func (b SubscriberBuilder) SetEvent(e EventType) SubscriberBuilder {
	b.evt = bit(uint8(e))
	return b
}
func (b SubscriberBuilder) AddEvent(e EventType) SubscriberBuilder {
	b.evt |= bit(uint8(e))
	return b
}
func (b SubscriberBuilder) ExcludeEvent(e EventType) SubscriberBuilder {
	b.evt &^= bit(uint8(e))
	return b
}

func (b SubscriberBuilder) AllDataTypes() SubscriberBuilder { b.data = AllData; return b }

// SetDataType requires every bit of d to be present in the event's data kind.
func (b SubscriberBuilder) SetDataType(d DataType) SubscriberBuilder {
	b.data = uint8(d)
	return b
}

func (b SubscriberBuilder) AllCustomFields() SubscriberBuilder { b.custom = AllCustomFields; return b }

// SetCustomFieldMask switches to any-bit mode with exactly the bits in m.
func (b SubscriberBuilder) SetCustomFieldMask(m uint8) SubscriberBuilder {
	b.custom = uint16(m) << 8
	return b
}

// AddCustomFieldMask widens the any-bit mask. An exact-mode mask is dropped.
func (b SubscriberBuilder) AddCustomFieldMask(m uint8) SubscriberBuilder {
	b.custom = (b.custom & 0xFF00) | uint16(m)<<8
	return b
}

// ExcludeCustomFieldMask narrows the any-bit mask. An exact-mode mask is dropped.
func (b SubscriberBuilder) ExcludeCustomFieldMask(m uint8) SubscriberBuilder {
	b.custom = (b.custom & 0xFF00) &^ (uint16(m) << 8)
	return b
}

// SetExactCustomField requires the event's custom field to equal v.
func (b SubscriberBuilder) SetExactCustomField(v uint8) SubscriberBuilder {
	b.custom = uint16(v)
	return b
}

func (b SubscriberBuilder) AllHashedNames() SubscriberBuilder { b.hash = AllHashes; return b }
func (b SubscriberBuilder) SetHashedName(h uint32) SubscriberBuilder {
	b.hash = h
	return b
}
func (b SubscriberBuilder) SetName(n string) SubscriberBuilder {
	b.hash = HashName(n)
	return b
}

// Build returns a subscriber delivering to h. It fails when no source or
// event kind is selected, or when h is nil.
func (b SubscriberBuilder) Build(h Handler) (*Subscriber, bool) {
	if b.src == 0 || b.evt == 0 || h == nil {
		return nil, false
	}
	return &Subscriber{
		SourceMask:       b.src,
		EventMask:        b.evt,
		DataTypeMask:     b.data,
		CustomFieldsMask: b.custom,
		NameHashMask:     b.hash,
		handler:          h,
	}, true
}
