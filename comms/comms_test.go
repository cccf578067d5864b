package comms

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sensornode-go/model"
)

func TestReadingRender(t *testing.T) {
	hw := model.NewHardware(model.HardwareConfig{Name: "node"})
	md := model.NewMetaData("Temperature", "C", model.TypeFloat)
	md2 := model.NewMetaData("Door", "", model.TypeString)
	b := model.NewBundle(fixed(42), hw, md.Float(20), md2.NoData())

	m := Reading(b)
	assert.Equal(t, Message{
		Kind:      KindReading,
		Source:    "node",
		Class:     "hw",
		Timestamp: 42,
		Values: []Value{
			{Name: "Temperature", Unit: "C", State: "valid", Text: "20.0"},
			{Name: "Door", State: "no_data", Text: "<NO_DATA>"},
		},
	}, m)
	assert.Equal(t, []any{"source", "node", "Temperature", "20.0 C", "Door", "<NO_DATA>"}, m.LogAttrs())
}

func TestStatusRender(t *testing.T) {
	m := Status(model.NewMetaData(model.StatusItem, "", model.TypeStatus).StatusOf("bad", true), nil)
	assert.Equal(t, KindStatus, m.Kind)
	assert.Empty(t, m.Source)
	assert.Equal(t, []Value{{Name: "Status", State: "error", Text: "bad"}}, m.Values)
}

type fixed uint64

func (f fixed) EpochMillis() uint64 { return uint64(f) }
